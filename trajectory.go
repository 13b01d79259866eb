package main

import (
	"errors"
	"log"
	"math/rand"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// ErrTooFewWaypoints indicates there is nothing to synthesize: a trace
// needs at least one waypoint pair to plan between.
var ErrTooFewWaypoints = errors.New("trajectory: at least two waypoints are required")

// TrajectoryPoint is one time-stamped position sample of the simulated
// drone.
type TrajectoryPoint struct {
	Timestamp time.Time `json:"ts"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Alt       float64   `json:"alt"`
	Heading   float64   `json:"heading"`
}

// TraceBatch is the ordered trace handed off to the ingestion
// collaborator, keyed by the drone that flew it.
type TraceBatch struct {
	DroneID string            `json:"drone_id"`
	Points  []TrajectoryPoint `json:"data"`
}

// SynthesisConfig tunes the motion model of the synthesizer.
type SynthesisConfig struct {
	// SpeedMPS is the constant ground speed of the drone.
	SpeedMPS float64
	// SampleIntervalMS is the spacing between emitted samples.
	SampleIntervalMS int
	// NoiseStd is the standard deviation, in degrees, of the Gaussian
	// positioning error added to every sample.
	NoiseStd float64
	// SimplifyEpsilon, when positive, runs Douglas-Peucker over each
	// planned segment before interpolation to remove grid jaggedness.
	SimplifyEpsilon float64
}

// Synthesizer turns an ordered waypoint list into a continuous,
// GPS-like position trace: it plans each consecutive waypoint pair
// through the planner, converts the path to geographic points, and
// walks the drone along it at constant speed with eased interpolation
// and noisy positions.
type Synthesizer struct {
	world   *World
	planner PathPlanner
	cfg     SynthesisConfig
	rng     *rand.Rand
}

// NewSynthesizer builds a synthesizer. The random source drives the
// positioning noise and is owned by the caller for seed isolation.
func NewSynthesizer(world *World, planner PathPlanner, cfg SynthesisConfig, rng *rand.Rand) *Synthesizer {
	return &Synthesizer{world: world, planner: planner, cfg: cfg, rng: rng}
}

// Synthesize generates the full trace along the ordered waypoints,
// starting the clock at start. Unreachable segments are logged and
// skipped; the trace continues with the next pair. Timestamps are
// strictly increasing across the whole trace.
func (s *Synthesizer) Synthesize(waypoints []Waypoint, start time.Time) ([]TrajectoryPoint, error) {
	if len(waypoints) < 2 {
		return nil, ErrTooFewWaypoints
	}

	cells := make([]Cell, len(waypoints))
	for i, wp := range waypoints {
		cells[i] = s.world.LatLonToCell(wp.Lat, wp.Lon)
	}

	var trace []TrajectoryPoint
	clock := start

	for i := 0; i < len(cells)-1; i++ {
		path, ok := s.planner.Plan(cells[i], cells[i+1])
		if !ok {
			log.Printf("⚠️  Skipping unreachable segment %d: %v -> %v\n", i, cells[i], cells[i+1])
			continue
		}

		points := path.Geo
		if path.Space == SpaceGrid {
			points = s.world.cellsToGeo(path.Cells)
		}
		if s.cfg.SimplifyEpsilon > 0 {
			points = s.simplifySegment(points)
		}

		for j := 0; j < len(points)-1; j++ {
			var samples []TrajectoryPoint
			samples, clock = s.interpolate(points[j], points[j+1], clock)
			trace = append(trace, samples...)
		}
	}

	log.Printf("✅ Synthesized %d trajectory points\n", len(trace))
	return trace, nil
}

// interpolate walks from p1 to p2 at the configured speed, easing the
// interpolation fraction with a logistic curve over [-6, 6] so the
// drone accelerates out of p1 and decelerates into p2. Gaussian noise
// perturbs each position; altitude is re-read from the terrain under
// the noisy position rather than interpolated. Heading is the constant
// forward azimuth from p1 to p2.
func (s *Synthesizer) interpolate(p1, p2 Waypoint, clock time.Time) ([]TrajectoryPoint, time.Time) {
	dist := geoDistanceMeters(p1.Lat, p1.Lon, p2.Lat, p2.Lon)
	durationS := dist / s.cfg.SpeedMPS
	steps := int(durationS * 1000 / float64(s.cfg.SampleIntervalMS))
	if steps <= 0 {
		return nil, clock
	}

	heading := initialBearing(p1.Lat, p1.Lon, p2.Lat, p2.Lon)
	interval := time.Duration(s.cfg.SampleIntervalMS) * time.Millisecond

	samples := make([]TrajectoryPoint, 0, steps)
	for i := 0; i < steps; i++ {
		t := -6.0
		if steps > 1 {
			t += 12.0 * float64(i) / float64(steps-1)
		}
		eased := sigmoid(t)

		lat := p1.Lat + (p2.Lat-p1.Lat)*eased + s.rng.NormFloat64()*s.cfg.NoiseStd
		lon := p1.Lon + (p2.Lon-p1.Lon)*eased + s.rng.NormFloat64()*s.cfg.NoiseStd

		samples = append(samples, TrajectoryPoint{
			Timestamp: clock,
			Lat:       lat,
			Lon:       lon,
			Alt:       s.world.ElevationAtLatLon(lat, lon),
			Heading:   heading,
		})
		clock = clock.Add(interval)
	}
	return samples, clock
}

// simplifySegment runs Douglas-Peucker over the segment's geographic
// points, then re-samples terrain altitude for the survivors.
func (s *Synthesizer) simplifySegment(points []Waypoint) []Waypoint {
	if len(points) <= 2 {
		return points
	}

	line := make(orb.LineString, len(points))
	for i, p := range points {
		line[i] = orb.Point{p.Lon, p.Lat}
	}
	line = simplify.DouglasPeucker(s.cfg.SimplifyEpsilon).LineString(line)

	simplified := make([]Waypoint, len(line))
	for i, p := range line {
		simplified[i] = Waypoint{
			Lat: p.Lat(),
			Lon: p.Lon(),
			Alt: s.world.ElevationAtLatLon(p.Lat(), p.Lon()),
		}
	}
	return simplified
}
