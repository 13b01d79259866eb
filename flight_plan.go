package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Waypoint is a geographic point of interest supplied by the geodata
// collaborator. Altitude is optional and read-only to the core.
type Waypoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	Alt float64 `json:"alt,omitempty"`
}

// LoadFlightPlan reads a waypoint list from disk. Files ending in
// .geojson are parsed as a FeatureCollection of Points (an "alt"
// property becomes the waypoint altitude); anything else is treated as
// a plain JSON array of waypoints.
func LoadFlightPlan(filename string) ([]Waypoint, error) {
	log.Printf("📂 Loading flight plan from %s...\n", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read flight plan: %w", err)
	}

	var waypoints []Waypoint
	if strings.HasSuffix(filename, ".geojson") {
		waypoints, err = parseGeoJSONWaypoints(data)
	} else {
		err = json.Unmarshal(data, &waypoints)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse flight plan: %w", err)
	}

	log.Printf("   ✅ Loaded %d waypoints\n", len(waypoints))
	return waypoints, nil
}

// parseGeoJSONWaypoints extracts Point features; non-point geometries
// are skipped with a warning.
func parseGeoJSONWaypoints(data []byte) ([]Waypoint, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	waypoints := make([]Waypoint, 0, len(fc.Features))
	for _, feature := range fc.Features {
		point, ok := feature.Geometry.(orb.Point)
		if !ok {
			log.Printf("⚠️  Skipping non-point feature of type %s\n", feature.Geometry.GeoJSONType())
			continue
		}
		wp := Waypoint{Lat: point.Lat(), Lon: point.Lon()}
		if alt, ok := feature.Properties["alt"].(float64); ok {
			wp.Alt = alt
		}
		waypoints = append(waypoints, wp)
	}
	return waypoints, nil
}

// SaveFlightPlan writes a waypoint list as a plain JSON array.
func SaveFlightPlan(waypoints []Waypoint, filename string) error {
	data, err := json.Marshal(waypoints)
	if err != nil {
		return fmt.Errorf("failed to marshal flight plan: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write flight plan: %w", err)
	}
	log.Printf("💾 Flight plan saved to %s (%d waypoints)\n", filename, len(waypoints))
	return nil
}
