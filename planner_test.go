package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlannerVariants(t *testing.T) {
	world := testWorld(t, freeGrid(10, 10), nil)

	for _, variant := range []string{"astar", "rrt", "rrt*", "geo_rrt", "geo_rrt*", "AStar", "RRT*"} {
		t.Run(variant, func(t *testing.T) {
			planner, err := NewPlanner(variant, world, DefaultPlannerOptions())
			require.NoError(t, err)
			assert.NotNil(t, planner)
		})
	}
}

func TestNewPlannerUnsupportedVariant(t *testing.T) {
	world := testWorld(t, freeGrid(4, 4), nil)

	_, err := NewPlanner("dijkstra", world, DefaultPlannerOptions())
	assert.ErrorIs(t, err, ErrUnsupportedVariant)
	assert.Contains(t, err.Error(), "dijkstra")
}

func TestGridPlannerReturnsGridSpace(t *testing.T) {
	world := testWorld(t, freeGrid(10, 10), nil)
	planner, err := NewPlanner("astar", world, DefaultPlannerOptions())
	require.NoError(t, err)

	path, ok := planner.Plan(Cell{0, 0}, Cell{5, 5})
	require.True(t, ok)
	assert.Equal(t, SpaceGrid, path.Space)
	assert.NotEmpty(t, path.Cells)
	assert.Empty(t, path.Geo)
}

func TestGeoPlannerReturnsGeoSpace(t *testing.T) {
	world, err := NewFlatWorld(50.85, 5.69, 20, 20, 10.0)
	require.NoError(t, err)

	opts := DefaultPlannerOptions()
	opts.Seed = 7
	planner, err := NewPlanner("geo_rrt", world, opts)
	require.NoError(t, err)

	path, ok := planner.Plan(Cell{2, 2}, Cell{10, 10})
	require.True(t, ok)
	assert.Equal(t, SpaceGeo, path.Space)
	require.NotEmpty(t, path.Geo)
	assert.Empty(t, path.Cells)

	for _, wp := range path.Geo {
		assert.InDelta(t, 50.85, wp.Lat, 0.01)
		assert.InDelta(t, 5.69, wp.Lon, 0.01)
	}
}

func TestGeoPlannerPlanLatLon(t *testing.T) {
	world, err := NewFlatWorld(50.85, 5.69, 20, 20, 10.0)
	require.NoError(t, err)

	inner, err := NewPlanner("astar", world, DefaultPlannerOptions())
	require.NoError(t, err)
	geo := NewGeoPlanner(world, inner)

	startLat, startLon := world.CellToLatLon(Cell{3, 3})
	goalLat, goalLon := world.CellToLatLon(Cell{15, 15})

	path, ok := geo.PlanLatLon(Waypoint{Lat: startLat, Lon: startLon}, Waypoint{Lat: goalLat, Lon: goalLon})
	require.True(t, ok)
	require.NotEmpty(t, path.Geo)

	first, last := path.Geo[0], path.Geo[len(path.Geo)-1]
	assert.InDelta(t, startLat, first.Lat, 1e-9)
	assert.InDelta(t, startLon, first.Lon, 1e-9)
	assert.InDelta(t, goalLat, last.Lat, 1e-9)
	assert.InDelta(t, goalLon, last.Lon, 1e-9)
}
