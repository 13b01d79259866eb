package main

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// GridPoint is a fractional position in grid coordinates, used by the
// sampling-based planners between cell centers.
type GridPoint struct {
	Row float64
	Col float64
}

// Distance calculates Euclidean distance between two grid points
func (p GridPoint) Distance(other GridPoint) float64 {
	dr := p.Row - other.Row
	dc := p.Col - other.Col
	return math.Sqrt(dr*dr + dc*dc)
}

// Cell truncates the point to its containing grid cell.
func (p GridPoint) Cell() Cell {
	return Cell{Row: int(p.Row), Col: int(p.Col)}
}

// cellPoint places a grid point at a cell's origin.
func cellPoint(c Cell) GridPoint {
	return GridPoint{Row: float64(c.Row), Col: float64(c.Col)}
}

// sigmoid is the logistic easing curve used for trajectory interpolation.
func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// initialBearing computes the forward azimuth in degrees from one
// geographic position to another, normalized into [0, 360).
func initialBearing(lat1, lon1, lat2, lon2 float64) float64 {
	b := geo.Bearing(orb.Point{lon1, lat1}, orb.Point{lon2, lat2})
	return math.Mod(b+360, 360)
}

// geoDistanceMeters is the great-circle distance in meters between two
// geographic positions.
func geoDistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	return geo.DistanceHaversine(orb.Point{lon1, lat1}, orb.Point{lon2, lat2})
}
