package main

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// ErrUnsupportedVariant rejects unknown planner names at construction
// time; no default is silently substituted.
var ErrUnsupportedVariant = errors.New("planner: unsupported planner variant")

// CoordSpace tags which coordinate space a path's points live in.
type CoordSpace int

const (
	// SpaceGrid means the path is a sequence of occupancy grid cells.
	SpaceGrid CoordSpace = iota
	// SpaceGeo means the path is a sequence of geographic positions.
	SpaceGeo
)

// Path is an ordered sequence of points in one coordinate space. It is
// a terminal artifact: built once by a planner, read-only afterwards.
type Path struct {
	Space CoordSpace
	Cells []Cell
	Geo   []Waypoint
}

// GridPath wraps grid cells as a path.
func GridPath(cells []Cell) Path {
	return Path{Space: SpaceGrid, Cells: cells}
}

// GeoPath wraps geographic positions as a path.
func GeoPath(points []Waypoint) Path {
	return Path{Space: SpaceGeo, Geo: points}
}

// Len returns the number of points on the path.
func (p Path) Len() int {
	if p.Space == SpaceGeo {
		return len(p.Geo)
	}
	return len(p.Cells)
}

// PlannerOptions is the shared configuration surface for all variants.
// Fields irrelevant to a variant are ignored by it.
type PlannerOptions struct {
	// ElevationPenalty is the cost multiplier per unit of elevation
	// change (A* only).
	ElevationPenalty float64
	// StepSize is the sampling step for the RRT family, in cell units.
	StepSize float64
	// MaxIterations bounds the sampling budget for the RRT family.
	MaxIterations int
	// Seed fixes the random source of the sampling planners. Zero
	// means a time-derived seed, which is non-deterministic run to run.
	Seed int64
}

// DefaultPlannerOptions returns the option defaults: elevation penalty
// 1.0, step size 1.0, iteration budget 1000, unseeded randomness.
func DefaultPlannerOptions() PlannerOptions {
	return PlannerOptions{
		ElevationPenalty: 1.0,
		StepSize:         1.0,
		MaxIterations:    1000,
	}
}

func (o PlannerOptions) rng() *rand.Rand {
	seed := o.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// PathPlanner is the single contract every variant satisfies: plan a
// route between two grid cells, or report that none was found.
// Planners hold no mutable state across calls.
type PathPlanner interface {
	Plan(start, goal Cell) (Path, bool)
}

// NewPlanner selects a planner variant by name and normalizes its
// construction. Grid variants ("astar", "rrt", "rrt*") return grid-cell
// paths; geo variants ("geo_rrt", "geo_rrt*") wrap the corresponding
// sampling planner and return geographic paths with terrain elevation
// attached.
func NewPlanner(variant string, world *World, opts PlannerOptions) (PathPlanner, error) {
	switch strings.ToLower(variant) {
	case "astar":
		return NewAStarPlanner(world, opts.ElevationPenalty), nil
	case "rrt":
		return NewRRT(world, opts.StepSize, opts.MaxIterations, opts.rng()), nil
	case "rrt*":
		return NewRRTStar(world, opts.StepSize, opts.MaxIterations, opts.rng()), nil
	case "geo_rrt":
		return NewGeoPlanner(world, NewRRT(world, opts.StepSize, opts.MaxIterations, opts.rng())), nil
	case "geo_rrt*":
		return NewGeoPlanner(world, NewRRTStar(world, opts.StepSize, opts.MaxIterations, opts.rng())), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVariant, variant)
	}
}
