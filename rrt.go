package main

import (
	"math/rand"
)

// treeNode is one entry in the sampling-tree arena. Parent is the index
// of the node it was steered from, or -1 for the root.
type treeNode struct {
	point  GridPoint
	parent int
}

// RRT grows a rapidly-exploring random tree over the occupancy grid.
// Sampling is goal-biased: with probability goalBias the goal itself is
// returned, otherwise a point is drawn uniformly over the grid extent.
// The tree is an arena of nodes addressed by index; all of it is built
// fresh per Plan call and discarded on return.
type RRT struct {
	world    *World
	stepSize float64
	maxIter  int
	goalBias float64
	rng      *rand.Rand
}

// NewRRT creates an RRT planner. The random source is owned by the
// caller, so independently seeded planners never interfere.
func NewRRT(world *World, stepSize float64, maxIter int, rng *rand.Rand) *RRT {
	return &RRT{
		world:    world,
		stepSize: stepSize,
		maxIter:  maxIter,
		goalBias: 0.1,
		rng:      rng,
	}
}

// samplePoint randomly samples a point, with a small bias toward the goal.
func (p *RRT) samplePoint(goal GridPoint) GridPoint {
	if p.rng.Float64() < p.goalBias {
		return goal
	}
	return GridPoint{
		Row: p.rng.Float64() * float64(p.world.Rows()),
		Col: p.rng.Float64() * float64(p.world.Cols()),
	}
}

// nearestNeighbor finds the existing tree node closest to the sample.
// Linear scan; ties resolve to the first node found.
func nearestNeighbor(nodes []treeNode, point GridPoint) int {
	nearest := 0
	minDist := nodes[0].point.Distance(point)
	for i := 1; i < len(nodes); i++ {
		if d := nodes[i].point.Distance(point); d < minDist {
			minDist = d
			nearest = i
		}
	}
	return nearest
}

// steer moves from 'nearest' toward 'sampled' by at most stepSize.
// If the sample is closer than stepSize, the sample itself is returned.
func (p *RRT) steer(nearest, sampled GridPoint) GridPoint {
	dist := nearest.Distance(sampled)
	if dist <= p.stepSize {
		return sampled
	}
	scale := p.stepSize / dist
	return GridPoint{
		Row: nearest.Row + (sampled.Row-nearest.Row)*scale,
		Col: nearest.Col + (sampled.Col-nearest.Col)*scale,
	}
}

// collisionFree checks that a fractional point falls on an in-bounds,
// unoccupied cell. The containing cell is found by truncation.
func (p *RRT) collisionFree(pt GridPoint) bool {
	if pt.Row < 0 || pt.Row >= float64(p.world.Rows()) ||
		pt.Col < 0 || pt.Col >= float64(p.world.Cols()) {
		return false
	}
	return p.world.Free(int(pt.Row), int(pt.Col))
}

// Plan builds a tree from start toward goal within maxIter attempts.
// Success is reaching any point within stepSize of the goal; the path is
// reconstructed by walking parent indices back to the root. Returns
// false when the iteration budget is exhausted.
func (p *RRT) Plan(start, goal Cell) (Path, bool) {
	if start == goal {
		return GridPath([]Cell{start}), true
	}

	startPt := cellPoint(start)
	goalPt := cellPoint(goal)
	nodes := []treeNode{{point: startPt, parent: -1}}

	for i := 0; i < p.maxIter; i++ {
		sampled := p.samplePoint(goalPt)
		nearest := nearestNeighbor(nodes, sampled)
		newPoint := p.steer(nodes[nearest].point, sampled)

		if !p.collisionFree(newPoint) {
			continue
		}
		nodes = append(nodes, treeNode{point: newPoint, parent: nearest})

		// Check if we're close enough to goal
		if newPoint.Distance(goalPt) < p.stepSize {
			return GridPath(reconstructTreePath(nodes, len(nodes)-1, goal)), true
		}
	}
	return Path{}, false
}

// reconstructTreePath walks parent indices from endIdx back to the
// root, reverses the walk, converts to grid cells, and appends the goal
// cell. Consecutive duplicates produced by cell truncation are dropped.
func reconstructTreePath(nodes []treeNode, endIdx int, goal Cell) []Cell {
	var reversed []GridPoint
	for idx := endIdx; idx != -1; idx = nodes[idx].parent {
		reversed = append(reversed, nodes[idx].point)
	}

	path := make([]Cell, 0, len(reversed)+1)
	for i := len(reversed) - 1; i >= 0; i-- {
		cell := reversed[i].Cell()
		if len(path) > 0 && path[len(path)-1] == cell {
			continue
		}
		path = append(path, cell)
	}
	if path[len(path)-1] != goal {
		path = append(path, goal)
	}
	return path
}
