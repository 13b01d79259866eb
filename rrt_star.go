package main

import (
	"math"
	"math/rand"

	"github.com/dhconnelly/rtreego"
)

// nnEntry wraps a tree node index for R-tree storage
type nnEntry struct {
	id   int
	rect rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *nnEntry) Bounds() rtreego.Rect {
	return e.rect
}

const nnTolerance = 1e-9

// RRTStar is the refined sampling planner. Compared to RRT it adds a
// goal bias that grows as the tree approaches the goal, an adaptive
// step size, and validation of the whole edge from parent to candidate
// rather than just the candidate point. Nearest-neighbor lookups go
// through an R-tree over the node arena instead of a linear scan.
//
// When a proposed edge crosses occupied space the iteration is spent:
// the loop moves on to a fresh sample rather than retrying within the
// same iteration.
type RRTStar struct {
	world        *World
	delta        float64 // Max step size, in cell units
	targetRadius float64
	maxIter      int
	biasMin      float64
	biasMax      float64
	rng          *rand.Rand
}

// NewRRTStar creates an RRT* planner with the given step size and
// iteration budget. Goal bias adapts within [0.4, 0.95].
func NewRRTStar(world *World, delta float64, maxIter int, rng *rand.Rand) *RRTStar {
	return &RRTStar{
		world:        world,
		delta:        delta,
		targetRadius: delta,
		maxIter:      maxIter,
		biasMin:      0.4,
		biasMax:      0.95,
		rng:          rng,
	}
}

// goalBias scales with how close the tree already is to the goal:
// closer means higher bias, clamped into [biasMin, biasMax].
func (p *RRTStar) goalBias(nearestGoalDist float64) float64 {
	extent := math.Max(float64(p.world.Rows()), float64(p.world.Cols()))
	bias := 1.0 - nearestGoalDist/extent
	return math.Min(p.biasMax, math.Max(p.biasMin, bias))
}

// samplePoint draws a free point, biased toward the goal. Up to ten
// uniform draws are attempted before falling back to the goal itself.
func (p *RRTStar) samplePoint(goal GridPoint, bias float64) GridPoint {
	if p.rng.Float64() < bias {
		return goal
	}
	for attempt := 0; attempt < 10; attempt++ {
		pt := GridPoint{
			Row: p.rng.Float64() * float64(p.world.Rows()),
			Col: p.rng.Float64() * float64(p.world.Cols()),
		}
		if p.pointFree(pt) {
			return pt
		}
	}
	return goal
}

func (p *RRTStar) pointFree(pt GridPoint) bool {
	if pt.Row < 0 || pt.Row >= float64(p.world.Rows()) ||
		pt.Col < 0 || pt.Col >= float64(p.world.Cols()) {
		return false
	}
	return p.world.Free(int(pt.Row), int(pt.Col))
}

// steer moves from nearest toward the sample with an adaptive step:
// the lesser of delta and 70% of the remaining distance. A zero-length
// direction is treated as no movement.
func (p *RRTStar) steer(nearest, sampled GridPoint) (GridPoint, bool) {
	dist := nearest.Distance(sampled)
	if dist == 0 {
		return nearest, false
	}
	step := math.Min(p.delta, dist*0.7)
	scale := step / dist
	return GridPoint{
		Row: nearest.Row + (sampled.Row-nearest.Row)*scale,
		Col: nearest.Col + (sampled.Col-nearest.Col)*scale,
	}, true
}

// edgeFree samples the segment between two points at a resolution
// proportional to its length and rejects the edge if any sample lands
// on an occupied or out-of-bounds cell.
func (p *RRTStar) edgeFree(a, b GridPoint) bool {
	dist := a.Distance(b)
	samples := int(math.Ceil(dist * 2))
	if samples < 2 {
		samples = 2
	}
	for i := 0; i < samples; i++ {
		t := float64(i) / float64(samples-1)
		pt := GridPoint{
			Row: a.Row + (b.Row-a.Row)*t,
			Col: a.Col + (b.Col-a.Col)*t,
		}
		if !p.pointFree(pt) {
			return false
		}
	}
	return true
}

func nnPoint(pt GridPoint) rtreego.Point {
	return rtreego.Point{pt.Row, pt.Col}
}

// Plan grows the tree until a node lands within targetRadius of the
// goal or the iteration budget runs out. All tree state, including the
// R-tree index, is allocated per call.
func (p *RRTStar) Plan(start, goal Cell) (Path, bool) {
	if start == goal {
		return GridPath([]Cell{start}), true
	}

	startPt := cellPoint(start)
	goalPt := cellPoint(goal)

	nodes := []treeNode{{point: startPt, parent: -1}}
	index := rtreego.NewTree(2, 25, 50)
	index.Insert(&nnEntry{id: 0, rect: nnPoint(startPt).ToRect(nnTolerance)})

	// Closest approach to the goal so far, drives the adaptive bias.
	closestGoalDist := startPt.Distance(goalPt)

	for i := 0; i < p.maxIter; i++ {
		sampled := p.samplePoint(goalPt, p.goalBias(closestGoalDist))

		nearestEntry := index.NearestNeighbor(nnPoint(sampled)).(*nnEntry)
		nearest := nearestEntry.id

		newPoint, moved := p.steer(nodes[nearest].point, sampled)
		if !moved {
			continue
		}
		if !p.pointFree(newPoint) {
			continue
		}
		if !p.edgeFree(nodes[nearest].point, newPoint) {
			continue
		}

		nodes = append(nodes, treeNode{point: newPoint, parent: nearest})
		index.Insert(&nnEntry{id: len(nodes) - 1, rect: nnPoint(newPoint).ToRect(nnTolerance)})

		if d := newPoint.Distance(goalPt); d < closestGoalDist {
			closestGoalDist = d
		}

		if newPoint.Distance(goalPt) <= p.targetRadius {
			return GridPath(reconstructTreePath(nodes, len(nodes)-1, goal)), true
		}
	}
	return Path{}, false
}
