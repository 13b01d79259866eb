package main

import (
	"encoding/json"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

type server struct {
	cfg *Config

	mu        sync.RWMutex
	world     *World
	waypoints []Waypoint
	sink      TraceSink
}

type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type RouteRequest struct {
	Start   LatLon `json:"start"`
	End     LatLon `json:"end"`
	Variant string `json:"variant,omitempty"` // Optional: overrides the configured planner
}

type RouteResponse struct {
	Path           []Waypoint `json:"path"`
	Success        bool       `json:"success"`
	Message        string     `json:"message,omitempty"`
	DistanceMeters float64    `json:"distanceMeters,omitempty"`
}

type SimulateRequest struct {
	DroneID string `json:"droneId,omitempty"`
	Metric  string `json:"metric,omitempty"`
	Ingest  bool   `json:"ingest,omitempty"`
}

type SimulateResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message,omitempty"`
	DroneID   string            `json:"droneId,omitempty"`
	Tour      *Tour             `json:"tour,omitempty"`
	NumPoints int               `json:"numPoints"`
	Trace     []TrajectoryPoint `json:"trace,omitempty"`
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func (s *server) plannerOptions() PlannerOptions {
	opts := DefaultPlannerOptions()
	opts.ElevationPenalty = s.cfg.Simulation.ElevationPenalty
	opts.StepSize = s.cfg.Simulation.StepSize
	opts.MaxIterations = s.cfg.Simulation.MaxIterations
	opts.Seed = s.cfg.Simulation.Seed
	return opts
}

func (s *server) routeHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("📍 Route request received")

	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	log.Printf("   Start: (%.6f, %.6f)\n", req.Start.Lat, req.Start.Lon)
	log.Printf("   End:   (%.6f, %.6f)\n", req.End.Lat, req.End.Lon)

	s.mu.RLock()
	world := s.world
	s.mu.RUnlock()

	variant := req.Variant
	if variant == "" {
		variant = s.cfg.Simulation.PlannerVariant
	}

	inner, err := NewPlanner(variant, world, s.plannerOptions())
	if err != nil {
		log.Printf("❌ %v\n", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	planner := NewGeoPlanner(world, inner)

	start := Waypoint{Lat: req.Start.Lat, Lon: req.Start.Lon}
	end := Waypoint{Lat: req.End.Lat, Lon: req.End.Lon}

	log.Printf("🔍 Planning with %s...\n", variant)
	path, ok := planner.PlanLatLon(start, end)

	response := RouteResponse{Success: ok}
	if !ok {
		log.Println("❌ No path found")
		response.Message = "No path found between start and end"
	} else {
		response.Path = path.Geo
		for i := 0; i < len(path.Geo)-1; i++ {
			response.DistanceMeters += geoDistanceMeters(
				path.Geo[i].Lat, path.Geo[i].Lon,
				path.Geo[i+1].Lat, path.Geo[i+1].Lon)
		}
		log.Printf("✅ Path found with %d waypoints\n", len(path.Geo))
		log.Printf("   Distance: %.2f meters (%.2f km)\n", response.DistanceMeters, response.DistanceMeters/1000)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
	log.Println("========================================")
}

func (s *server) simulateHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("🚁 Simulate request received")

	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	world := s.world
	waypoints := s.waypoints
	sink := s.sink
	s.mu.RUnlock()

	if len(waypoints) == 0 {
		log.Println("❌ No flight plan loaded")
		http.Error(w, "No flight plan loaded", http.StatusBadRequest)
		return
	}

	metric := req.Metric
	if metric == "" {
		metric = s.cfg.Simulation.TourMetric
	}
	droneID := req.DroneID
	if droneID == "" {
		droneID = s.cfg.DroneSimulator.DroneID
	}
	if droneID == "" {
		droneID = "drone_" + uuid.NewString()[:8]
	}

	log.Printf("   Drone: %s\n", droneID)
	log.Printf("   Waypoints: %d, metric: %s\n", len(waypoints), metric)

	tour, err := OrderWaypoints(waypoints, metric)
	if err != nil {
		log.Printf("❌ %v\n", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.Printf("✅ Tour ordered, cost %.2f\n", tour.Cost)

	ordered := make([]Waypoint, len(tour.Order))
	for i, idx := range tour.Order {
		ordered[i] = waypoints[idx]
	}

	planner, err := NewPlanner(s.cfg.Simulation.PlannerVariant, world, s.plannerOptions())
	if err != nil {
		log.Printf("❌ %v\n", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	seed := s.cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	synth := NewSynthesizer(world, planner, SynthesisConfig{
		SpeedMPS:         s.cfg.DroneSimulator.SpeedMPS,
		SampleIntervalMS: s.cfg.DroneSimulator.IntervalMS,
		NoiseStd:         s.cfg.DroneSimulator.GPSNoiseStd,
		SimplifyEpsilon:  s.cfg.DroneSimulator.SimplifyEpsilon,
	}, rand.New(rand.NewSource(seed)))

	trace, err := synth.Synthesize(ordered, time.Now().UTC())
	if err != nil {
		log.Printf("❌ %v\n", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	response := SimulateResponse{
		Success:   true,
		DroneID:   droneID,
		Tour:      &tour,
		NumPoints: len(trace),
		Trace:     trace,
	}

	if req.Ingest {
		if sink == nil {
			response.Message = "Ingestion requested but no sink is configured"
			log.Println("⚠️  Ingestion requested but no sink is configured")
		} else {
			batch := TraceBatch{DroneID: droneID, Points: trace}
			if err := sink.WriteBatch(r.Context(), batch); err != nil {
				log.Printf("⚠️  Failed to ingest trace: %v\n", err)
				response.Message = "Trace generated but ingestion failed"
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
	log.Println("========================================")
}

// GET /health - Health check endpoint
func (s *server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	hasWorld := s.world != nil
	numWaypoints := len(s.waypoints)
	var rows, cols int
	if hasWorld {
		rows, cols = s.world.Rows(), s.world.Cols()
	}
	s.mu.RUnlock()

	status := "ready"
	if !hasWorld {
		status = "waiting for world data"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":       status,
		"hasWorld":     hasWorld,
		"gridRows":     rows,
		"gridCols":     cols,
		"numWaypoints": numWaypoints,
	})
}

func main() {
	log.Println("========================================")
	log.Println("🚀 Drone Simulation Platform")
	log.Println("========================================")

	configPath := os.Getenv("SIM_CONFIG")
	if configPath == "" {
		configPath = "simulation_config.yaml"
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Printf("ℹ️  No config file loaded (%v), using defaults\n", err)
		cfg = DefaultConfig()
	}

	srv := &server{cfg: cfg}

	// Load a prepared world if one exists, otherwise start from a flat
	// synthetic world around the configured location.
	if cfg.Paths.World != "" {
		if world, err := LoadWorld(cfg.Paths.World); err == nil {
			srv.world = world
		} else {
			log.Printf("⚠️  Failed to load world: %v\n", err)
		}
	}
	if srv.world == nil {
		log.Println("ℹ️  Building flat synthetic world")
		world, err := NewFlatWorld(cfg.Location.Lat, cfg.Location.Lon,
			cfg.DroneSimulator.GridRows, cfg.DroneSimulator.GridCols,
			cfg.DroneSimulator.CellSizeM)
		if err != nil {
			log.Fatal(err)
		}
		srv.world = world
	}
	log.Printf("✅ World ready: %dx%d cells\n", srv.world.Rows(), srv.world.Cols())

	if cfg.Paths.FlightPlan != "" {
		if waypoints, err := LoadFlightPlan(cfg.Paths.FlightPlan); err == nil {
			srv.waypoints = waypoints
		} else {
			log.Printf("⚠️  Failed to load flight plan: %v\n", err)
		}
	}

	if cfg.Influx.URL != "" && cfg.Influx.Token != "" {
		sink := NewInfluxSink(cfg.Influx.URL, cfg.Influx.Token, cfg.Influx.Org, cfg.Influx.Bucket)
		defer sink.Close()
		srv.sink = sink
		log.Printf("✅ InfluxDB sink configured (%s)\n", cfg.Influx.URL)
	}

	http.HandleFunc("/route", corsMiddleware(srv.routeHandler))
	http.HandleFunc("/simulate", corsMiddleware(srv.simulateHandler))
	http.HandleFunc("/health", corsMiddleware(srv.healthHandler))

	log.Printf("Server starting on %s\n", cfg.Server.Addr)
	log.Println("")
	log.Println("Endpoints:")
	log.Println("  POST /route     - Plan a route between two geographic points")
	log.Println("  POST /simulate  - Order waypoints, synthesize and optionally ingest a trace")
	log.Println("  GET  /health    - Check server status")
	log.Println("")
	log.Println("CORS enabled for all origins")
	log.Println("========================================")

	if err := http.ListenAndServe(cfg.Server.Addr, nil); err != nil {
		log.Fatal(err)
	}
}
