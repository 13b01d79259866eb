package main

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/katalvlaran/lvlath/matrix"
	"github.com/katalvlaran/lvlath/tsp"
)

// ErrUnsupportedMetric rejects unknown distance metric names.
var ErrUnsupportedMetric = errors.New("tour: unsupported distance metric")

// Tour is a cyclic visiting order over waypoint indices plus its total
// cost under the metric the cost matrix was built with.
type Tour struct {
	Order []int   `json:"order"`
	Cost  float64 `json:"cost"`
}

// CostMatrix builds the symmetric waypoint distance matrix with a zero
// diagonal. Metric "euclidean" measures straight-line distance over raw
// coordinates; "geodesic" measures great-circle distance in meters.
// Both satisfy the triangle inequality, which the tour approximation
// bound depends on.
func CostMatrix(waypoints []Waypoint, metric string) ([][]float64, error) {
	metric = strings.ToLower(metric)
	if metric != "euclidean" && metric != "geodesic" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMetric, metric)
	}

	n := len(waypoints)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			var dist float64
			if metric == "euclidean" {
				dLat := waypoints[i].Lat - waypoints[j].Lat
				dLon := waypoints[i].Lon - waypoints[j].Lon
				dist = math.Sqrt(dLat*dLat + dLon*dLon)
			} else {
				dist = geoDistanceMeters(waypoints[i].Lat, waypoints[i].Lon,
					waypoints[j].Lat, waypoints[j].Lon)
			}
			matrix[i][j] = dist
			matrix[j][i] = dist
		}
	}
	return matrix, nil
}

// OrderWaypoints computes an approximate minimum-cost visiting order
// over the waypoints. On metric inputs the resulting cycle stays within
// a constant factor of the optimal tour.
func OrderWaypoints(waypoints []Waypoint, metric string) (Tour, error) {
	matrix, err := CostMatrix(waypoints, metric)
	if err != nil {
		return Tour{}, err
	}
	return solveTour(matrix)
}

// solveTour runs the Christofides pipeline over the cost matrix. The
// solver requires at least two vertices, so the degenerate sizes are
// answered directly.
func solveTour(costs [][]float64) (Tour, error) {
	n := len(costs)
	if n == 0 {
		return Tour{Order: []int{}}, nil
	}
	if n == 1 {
		return Tour{Order: []int{0}}, nil
	}

	dense, err := matrix.NewDense(n, n)
	if err != nil {
		return Tour{}, fmt.Errorf("tour: solver failed: %w", err)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if err := dense.Set(i, j, costs[i][j]); err != nil {
				return Tour{}, fmt.Errorf("tour: solver failed: %w", err)
			}
		}
	}

	result, err := tsp.ChristofidesSolve(dense, tsp.DefaultOptions())
	if err != nil {
		return Tour{}, fmt.Errorf("tour: solver failed: %w", err)
	}

	// The solver closes the cycle back at its start vertex; Order keeps
	// each waypoint exactly once.
	return Tour{Order: result.Tour[:n], Cost: result.Cost}, nil
}
