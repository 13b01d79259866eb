package main

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomWaypoints(n int, seed int64) []Waypoint {
	rng := rand.New(rand.NewSource(seed))
	waypoints := make([]Waypoint, n)
	for i := range waypoints {
		waypoints[i] = Waypoint{
			Lat: 50.8 + rng.Float64()*0.1,
			Lon: 5.6 + rng.Float64()*0.1,
		}
	}
	return waypoints
}

// mstWeight computes the minimum spanning tree weight of the complete
// graph, a lower bound on the optimal tour cost.
func mstWeight(matrix [][]float64) float64 {
	n := len(matrix)
	inTree := make([]bool, n)
	best := make([]float64, n)
	for i := range best {
		best[i] = matrix[0][i]
	}
	inTree[0] = true

	total := 0.0
	for k := 1; k < n; k++ {
		next := -1
		for v := 0; v < n; v++ {
			if !inTree[v] && (next == -1 || best[v] < best[next]) {
				next = v
			}
		}
		inTree[next] = true
		total += best[next]
		for v := 0; v < n; v++ {
			if !inTree[v] && matrix[next][v] < best[v] {
				best[v] = matrix[next][v]
			}
		}
	}
	return total
}

func TestCostMatrixSymmetricWithZeroDiagonal(t *testing.T) {
	waypoints := randomWaypoints(8, 3)

	for _, metric := range []string{"euclidean", "geodesic"} {
		t.Run(metric, func(t *testing.T) {
			matrix, err := CostMatrix(waypoints, metric)
			require.NoError(t, err)
			require.Len(t, matrix, 8)

			for i := range matrix {
				assert.Zero(t, matrix[i][i])
				for j := range matrix[i] {
					assert.Equal(t, matrix[i][j], matrix[j][i])
					if i != j {
						assert.Positive(t, matrix[i][j])
					}
				}
			}
		})
	}
}

func TestCostMatrixUnsupportedMetric(t *testing.T) {
	_, err := CostMatrix(randomWaypoints(3, 1), "manhattan")
	assert.ErrorIs(t, err, ErrUnsupportedMetric)

	_, err = OrderWaypoints(randomWaypoints(3, 1), "chebyshev")
	assert.ErrorIs(t, err, ErrUnsupportedMetric)
}

func TestTourVisitsEveryWaypointOnce(t *testing.T) {
	for _, n := range []int{2, 3, 5, 10, 25} {
		waypoints := randomWaypoints(n, int64(n))
		tour, err := OrderWaypoints(waypoints, "geodesic")
		require.NoError(t, err)
		require.Len(t, tour.Order, n)

		seen := make(map[int]bool, n)
		for _, idx := range tour.Order {
			assert.False(t, seen[idx], "index %d visited twice", idx)
			assert.GreaterOrEqual(t, idx, 0)
			assert.Less(t, idx, n)
			seen[idx] = true
		}
	}
}

// The solver returns the cycle closed back at its start vertex; Order
// must drop the closing repeat and begin at the first waypoint.
func TestTourOrderOpensTheCycle(t *testing.T) {
	for _, n := range []int{2, 4, 9} {
		tour, err := OrderWaypoints(randomWaypoints(n, int64(n)), "euclidean")
		require.NoError(t, err)
		require.Len(t, tour.Order, n)
		assert.Equal(t, 0, tour.Order[0])
		assert.NotEqual(t, tour.Order[0], tour.Order[n-1])
	}
}

// The tour is built from an MST plus a matching, so its cost cannot
// stray past a small constant multiple of the MST weight, itself a
// lower bound on the optimal tour.
func TestTourCostWithinApproximationBound(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		waypoints := randomWaypoints(15, seed)
		matrix, err := CostMatrix(waypoints, "euclidean")
		require.NoError(t, err)

		tour, err := solveTour(matrix)
		require.NoError(t, err)
		lower := mstWeight(matrix)
		assert.LessOrEqual(t, tour.Cost, 3*lower, "seed %d: tour cost %.4f vs MST %.4f", seed, tour.Cost, lower)
	}
}

func TestTourTrivialSizes(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		tour, err := OrderWaypoints(nil, "euclidean")
		require.NoError(t, err)
		assert.Empty(t, tour.Order)
		assert.Zero(t, tour.Cost)
	})

	t.Run("Single", func(t *testing.T) {
		tour, err := OrderWaypoints(randomWaypoints(1, 1), "euclidean")
		require.NoError(t, err)
		assert.Equal(t, []int{0}, tour.Order)
		assert.Zero(t, tour.Cost)
	})

	t.Run("Pair", func(t *testing.T) {
		waypoints := randomWaypoints(2, 1)
		tour, err := OrderWaypoints(waypoints, "euclidean")
		require.NoError(t, err)
		require.Len(t, tour.Order, 2)

		matrix, err := CostMatrix(waypoints, "euclidean")
		require.NoError(t, err)
		assert.InDelta(t, 2*matrix[0][1], tour.Cost, 1e-9)
	})
}
