package main

import (
	"container/heap"
	"math"
)

// Node represents a node in the A* search over the occupancy grid
type Node struct {
	Cell   Cell
	G      float64 // Cost from start to this node
	H      float64 // Heuristic cost from this node to goal
	F      float64 // Total cost (G + H)
	Parent *Node
	Index  int // Index in the heap
}

// PriorityQueue implements heap.Interface for A* algorithm
type PriorityQueue []*Node

func (pq PriorityQueue) Len() int { return len(pq) }

func (pq PriorityQueue) Less(i, j int) bool {
	return pq[i].F < pq[j].F
}

func (pq PriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *PriorityQueue) Push(x interface{}) {
	n := len(*pq)
	node := x.(*Node)
	node.Index = n
	*pq = append(*pq, node)
}

func (pq *PriorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.Index = -1
	*pq = old[0 : n-1]
	return node
}

// neighborOffsets enumerates 8-connected moves in a fixed order:
// right, left, down, up, then the four diagonals.
var neighborOffsets = [8][2]int{
	{0, 1}, {0, -1},
	{1, 0}, {-1, 0},
	{1, 1}, {1, -1},
	{-1, 1}, {-1, -1},
}

// AStarPlanner searches the occupancy grid with 8-connected moves.
// Edge cost is the Euclidean length of the move plus, when an elevation
// field is present, elevationPenalty times the absolute elevation delta.
// The heuristic is straight-line distance in cell units; since the
// elevation term only ever adds non-negative cost, the heuristic never
// overestimates and the search stays optimal.
type AStarPlanner struct {
	world            *World
	elevationPenalty float64
}

// NewAStarPlanner creates a grid A* planner over the given world.
func NewAStarPlanner(world *World, elevationPenalty float64) *AStarPlanner {
	return &AStarPlanner{world: world, elevationPenalty: elevationPenalty}
}

// Plan computes the cost-optimal path between two grid cells. Returns
// false when the frontier is exhausted without reaching the goal. All
// search state is local to the call.
func (p *AStarPlanner) Plan(start, goal Cell) (Path, bool) {
	if start == goal {
		return GridPath([]Cell{start}), true
	}

	openSet := &PriorityQueue{}
	heap.Init(openSet)

	startNode := &Node{
		Cell: start,
		G:    0,
		H:    start.Distance(goal),
	}
	startNode.F = startNode.H
	heap.Push(openSet, startNode)

	closedSet := make(map[Cell]bool)
	openSetMap := make(map[Cell]*Node)
	openSetMap[start] = startNode

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*Node)
		delete(openSetMap, current.Cell)

		// Check if we reached the goal
		if current.Cell == goal {
			path := []Cell{}
			for node := current; node != nil; node = node.Parent {
				path = append([]Cell{node.Cell}, path...)
			}
			return GridPath(path), true
		}

		closedSet[current.Cell] = true

		// Explore neighbors
		for _, off := range neighborOffsets {
			neighborCell := Cell{Row: current.Cell.Row + off[0], Col: current.Cell.Col + off[1]}

			if !p.world.Free(neighborCell.Row, neighborCell.Col) {
				continue
			}
			if closedSet[neighborCell] {
				continue
			}

			// Calculate costs
			cost := math.Sqrt(float64(off[0]*off[0] + off[1]*off[1]))
			if p.world.HasElevation() {
				delta := p.world.ElevationAt(neighborCell.Row, neighborCell.Col) -
					p.world.ElevationAt(current.Cell.Row, current.Cell.Col)
				cost += p.elevationPenalty * math.Abs(delta)
			}
			tentativeG := current.G + cost

			neighbor, exists := openSetMap[neighborCell]
			if !exists {
				neighbor = &Node{
					Cell:   neighborCell,
					G:      tentativeG,
					H:      neighborCell.Distance(goal),
					Parent: current,
				}
				neighbor.F = neighbor.G + neighbor.H
				heap.Push(openSet, neighbor)
				openSetMap[neighborCell] = neighbor
			} else if tentativeG < neighbor.G {
				// Found a better path to this neighbor
				neighbor.G = tentativeG
				neighbor.F = neighbor.G + neighbor.H
				neighbor.Parent = current
				heap.Fix(openSet, neighbor.Index)
			}
		}
	}

	// No path found
	return Path{}, false
}
