package main

// GeoPlanner wraps a grid planner with the world's coordinate
// transform: geographic queries are converted to grid cells, delegated
// to the underlying planner against the occupancy grid, and the
// resulting cells are mapped back to geographic positions with terrain
// elevation attached per point.
type GeoPlanner struct {
	world *World
	inner PathPlanner
}

// NewGeoPlanner wraps a grid planner for geographic queries.
func NewGeoPlanner(world *World, inner PathPlanner) *GeoPlanner {
	return &GeoPlanner{world: world, inner: inner}
}

// Plan satisfies PathPlanner: plans between grid cells but returns the
// path in geographic coordinates.
func (g *GeoPlanner) Plan(start, goal Cell) (Path, bool) {
	path, ok := g.inner.Plan(start, goal)
	if !ok {
		return Path{}, false
	}
	return GeoPath(g.world.cellsToGeo(path.Cells)), true
}

// PlanLatLon plans between two geographic positions.
func (g *GeoPlanner) PlanLatLon(start, goal Waypoint) (Path, bool) {
	startCell := g.world.LatLonToCell(start.Lat, start.Lon)
	goalCell := g.world.LatLonToCell(goal.Lat, goal.Lon)
	return g.Plan(startCell, goalCell)
}

// cellsToGeo converts grid path cells to geographic waypoints, sampling
// the elevation field for each point's altitude.
func (w *World) cellsToGeo(cells []Cell) []Waypoint {
	points := make([]Waypoint, len(cells))
	for i, c := range cells {
		lat, lon := w.CellToLatLon(c)
		points[i] = Waypoint{
			Lat: lat,
			Lon: lon,
			Alt: w.ElevationAt(c.Row, c.Col),
		}
	}
	return points
}
