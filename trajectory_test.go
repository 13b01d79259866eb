package main

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func synthWorld(t *testing.T) *World {
	t.Helper()
	world, err := NewFlatWorld(50.85, 5.69, 64, 64, 10.0)
	require.NoError(t, err)
	return world
}

func synthConfig() SynthesisConfig {
	return SynthesisConfig{
		SpeedMPS:         5.0,
		SampleIntervalMS: 1000,
		NoiseStd:         0.00001,
	}
}

// northOf returns a waypoint the given number of meters due north.
func northOf(wp Waypoint, meters float64) Waypoint {
	return Waypoint{Lat: wp.Lat + meters/111000.0, Lon: wp.Lon}
}

func TestSynthesizeSampleCountAndSpacing(t *testing.T) {
	world := synthWorld(t)
	planner := NewAStarPlanner(world, 0)
	synth := NewSynthesizer(world, planner, synthConfig(), rand.New(rand.NewSource(42)))

	// Two waypoints ~100m apart at 5 m/s sampled once a second gives
	// roughly 20 points over the whole segment.
	start := Waypoint{Lat: 50.85, Lon: 5.69}
	begin := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	trace, err := synth.Synthesize([]Waypoint{start, northOf(start, 100)}, begin)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(trace), 15)
	assert.LessOrEqual(t, len(trace), 25)

	for i, p := range trace {
		want := begin.Add(time.Duration(i) * time.Second)
		assert.Equal(t, want, p.Timestamp, "sample %d timestamp drifts", i)
	}
}

func TestSynthesizeTimestampsStrictlyIncreasing(t *testing.T) {
	world := synthWorld(t)
	planner := NewAStarPlanner(world, 0)
	synth := NewSynthesizer(world, planner, synthConfig(), rand.New(rand.NewSource(7)))

	start := Waypoint{Lat: 50.85, Lon: 5.69}
	waypoints := []Waypoint{start, northOf(start, 80), northOf(start, 160)}
	trace, err := synth.Synthesize(waypoints, time.Now().UTC())
	require.NoError(t, err)
	require.NotEmpty(t, trace)

	for i := 1; i < len(trace); i++ {
		assert.True(t, trace[i].Timestamp.After(trace[i-1].Timestamp),
			"timestamps not strictly increasing at sample %d", i)
	}
}

func TestSynthesizeHeadingRange(t *testing.T) {
	world := synthWorld(t)
	planner := NewAStarPlanner(world, 0)
	synth := NewSynthesizer(world, planner, synthConfig(), rand.New(rand.NewSource(11)))

	start := Waypoint{Lat: 50.85, Lon: 5.69}
	waypoints := []Waypoint{
		start,
		northOf(start, 120),
		{Lat: start.Lat, Lon: start.Lon + 0.001},
	}
	trace, err := synth.Synthesize(waypoints, time.Now().UTC())
	require.NoError(t, err)
	require.NotEmpty(t, trace)

	for _, p := range trace {
		assert.GreaterOrEqual(t, p.Heading, 0.0)
		assert.Less(t, p.Heading, 360.0)
	}
}

func TestSynthesizeSkipsUnreachableSegment(t *testing.T) {
	// Wall off the eastern half of the grid so waypoints there are
	// unreachable; synthesis must keep the reachable segment and move on.
	occupancy := freeGrid(64, 64)
	for r := 0; r < 64; r++ {
		occupancy[r][40] = 1
	}
	flat := synthWorld(t)
	world, err := NewWorld(occupancy, flat.Elevation, flat.Transform)
	require.NoError(t, err)

	planner := NewAStarPlanner(world, 0)
	synth := NewSynthesizer(world, planner, synthConfig(), rand.New(rand.NewSource(3)))

	start := Waypoint{Lat: 50.85, Lon: 5.69}
	lat, lon := world.CellToLatLon(Cell{Row: 32, Col: 60}) // beyond the wall
	waypoints := []Waypoint{
		start,
		northOf(start, 100),
		{Lat: lat, Lon: lon},
	}

	trace, err := synth.Synthesize(waypoints, time.Now().UTC())
	require.NoError(t, err)
	assert.NotEmpty(t, trace, "reachable segment should still be synthesized")
}

func TestSynthesizeTooFewWaypoints(t *testing.T) {
	world := synthWorld(t)
	synth := NewSynthesizer(world, NewAStarPlanner(world, 0), synthConfig(), rand.New(rand.NewSource(1)))

	_, err := synth.Synthesize([]Waypoint{{Lat: 50.85, Lon: 5.69}}, time.Now())
	assert.ErrorIs(t, err, ErrTooFewWaypoints)
}

func TestSynthesizeDeterministicWithFixedSeed(t *testing.T) {
	world := synthWorld(t)
	start := Waypoint{Lat: 50.85, Lon: 5.69}
	waypoints := []Waypoint{start, northOf(start, 100)}
	begin := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	run := func(seed int64) []TrajectoryPoint {
		synth := NewSynthesizer(world, NewAStarPlanner(world, 0), synthConfig(), rand.New(rand.NewSource(seed)))
		trace, err := synth.Synthesize(waypoints, begin)
		require.NoError(t, err)
		return trace
	}

	assert.Equal(t, run(42), run(42), "same seed must reproduce the trace")
	assert.NotEqual(t, run(42), run(43), "different seeds must perturb the trace")
}

func TestSynthesizeSimplifiedSegment(t *testing.T) {
	world := synthWorld(t)
	cfg := synthConfig()
	cfg.SimplifyEpsilon = 0.0001

	start := Waypoint{Lat: 50.85, Lon: 5.69}
	waypoints := []Waypoint{start, northOf(start, 100)}

	synth := NewSynthesizer(world, NewAStarPlanner(world, 0), cfg, rand.New(rand.NewSource(5)))
	trace, err := synth.Synthesize(waypoints, time.Now().UTC())
	require.NoError(t, err)
	assert.NotEmpty(t, trace)
}
