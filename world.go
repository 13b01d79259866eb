package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
)

// Sentinel errors for world construction and coordinate lookups.
var (
	ErrEmptyGrid        = errors.New("world: occupancy grid must have at least one row and one column")
	ErrNonRectangular   = errors.New("world: all grid rows must have the same length")
	ErrShapeMismatch    = errors.New("world: elevation and occupancy grids must share dimensions")
	ErrInvalidTransform = errors.New("world: grid transform is not invertible")
)

// Cell addresses a single occupancy grid cell.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Distance calculates Euclidean distance between two cells, in cell units
func (c Cell) Distance(other Cell) float64 {
	dr := float64(c.Row - other.Row)
	dc := float64(c.Col - other.Col)
	return math.Sqrt(dr*dr + dc*dc)
}

// AffineTransform maps fractional grid coordinates (col, row) to
// geographic coordinates (lon, lat):
//
//	lon = A*col + B*row + C
//	lat = D*col + E*row + F
//
// This is the same six-parameter layout raster libraries use for
// georeferenced elevation tiles.
type AffineTransform struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
	D float64 `json:"d"`
	E float64 `json:"e"`
	F float64 `json:"f"`
}

// Apply maps fractional grid coordinates to (lon, lat).
func (t AffineTransform) Apply(col, row float64) (lon, lat float64) {
	lon = t.A*col + t.B*row + t.C
	lat = t.D*col + t.E*row + t.F
	return lon, lat
}

// Invert returns the inverse transform, mapping (lon, lat) back to
// fractional (col, row). Fails if the transform is degenerate.
func (t AffineTransform) Invert() (AffineTransform, error) {
	det := t.A*t.E - t.B*t.D
	if det == 0 {
		return AffineTransform{}, ErrInvalidTransform
	}
	inv := AffineTransform{
		A: t.E / det,
		B: -t.B / det,
		D: -t.D / det,
		E: t.A / det,
	}
	inv.C = -(inv.A*t.C + inv.B*t.F)
	inv.F = -(inv.D*t.C + inv.E*t.F)
	return inv, nil
}

// World is the immutable planning environment: an occupancy grid, an
// optional elevation field of the same shape, and the affine transform
// tying grid cells to geographic coordinates.
type World struct {
	Occupancy [][]int         `json:"occupancy"`
	Elevation [][]float64     `json:"elevation,omitempty"`
	Transform AffineTransform `json:"transform"`

	inverse AffineTransform
}

// NewWorld validates the grids and precomputes the inverse transform.
func NewWorld(occupancy [][]int, elevation [][]float64, transform AffineTransform) (*World, error) {
	if len(occupancy) == 0 || len(occupancy[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	cols := len(occupancy[0])
	for _, row := range occupancy {
		if len(row) != cols {
			return nil, ErrNonRectangular
		}
	}
	if elevation != nil {
		if len(elevation) != len(occupancy) {
			return nil, ErrShapeMismatch
		}
		for _, row := range elevation {
			if len(row) != cols {
				return nil, ErrShapeMismatch
			}
		}
	}

	inverse, err := transform.Invert()
	if err != nil {
		return nil, err
	}

	return &World{
		Occupancy: occupancy,
		Elevation: elevation,
		Transform: transform,
		inverse:   inverse,
	}, nil
}

// Rows returns the grid height.
func (w *World) Rows() int { return len(w.Occupancy) }

// Cols returns the grid width.
func (w *World) Cols() int { return len(w.Occupancy[0]) }

// InBounds reports whether (row, col) lies inside the grid.
func (w *World) InBounds(row, col int) bool {
	return row >= 0 && row < w.Rows() && col >= 0 && col < w.Cols()
}

// Free reports whether (row, col) is inside the grid and unoccupied.
func (w *World) Free(row, col int) bool {
	return w.InBounds(row, col) && w.Occupancy[row][col] == 0
}

// HasElevation reports whether an elevation field is attached.
func (w *World) HasElevation() bool { return w.Elevation != nil }

// ElevationAt returns the terrain height at a cell, or 0 when the cell
// is out of bounds or no elevation field is present. Terrain sampling
// is best-effort and must not fail a running synthesis.
func (w *World) ElevationAt(row, col int) float64 {
	if w.Elevation == nil || !w.InBounds(row, col) {
		return 0
	}
	return w.Elevation[row][col]
}

// ElevationAtLatLon samples the terrain under a geographic position.
func (w *World) ElevationAtLatLon(lat, lon float64) float64 {
	colf, rowf := w.inverse.Apply(lon, lat)
	return w.ElevationAt(int(math.Floor(rowf)), int(math.Floor(colf)))
}

// CellToLatLon maps a grid cell to its geographic coordinates.
func (w *World) CellToLatLon(c Cell) (lat, lon float64) {
	lon, lat = w.Transform.Apply(float64(c.Col), float64(c.Row))
	return lat, lon
}

// LatLonToCell maps a geographic coordinate to the containing grid
// cell, clamped into grid bounds.
func (w *World) LatLonToCell(lat, lon float64) Cell {
	colf, rowf := w.inverse.Apply(lon, lat)
	row := int(math.Floor(rowf))
	col := int(math.Floor(colf))

	row = min(max(row, 0), w.Rows()-1)
	col = min(max(col, 0), w.Cols()-1)
	return Cell{Row: row, Col: col}
}

// SaveWorld serializes and saves the world to a JSON file
func SaveWorld(w *World, filename string) error {
	log.Printf("💾 Saving world to %s...\n", filename)

	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("failed to marshal world: %w", err)
	}

	err = os.WriteFile(filename, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	log.Printf("   ✅ World saved (%d bytes)\n", len(data))
	return nil
}

// LoadWorld deserializes and loads a world from a JSON file
func LoadWorld(filename string) (*World, error) {
	log.Printf("📂 Loading world from %s...\n", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var raw World
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal world: %w", err)
	}

	world, err := NewWorld(raw.Occupancy, raw.Elevation, raw.Transform)
	if err != nil {
		return nil, err
	}

	log.Printf("   ✅ World loaded: %dx%d cells\n", world.Rows(), world.Cols())
	return world, nil
}

// NewFlatWorld builds a synthetic all-free world of the given dimensions
// centered on (lat, lon), with cellSizeM meters per cell. Used when no
// prepared world file is available.
func NewFlatWorld(lat, lon float64, rows, cols int, cellSizeM float64) (*World, error) {
	occupancy := make([][]int, rows)
	elevation := make([][]float64, rows)
	for r := range occupancy {
		occupancy[r] = make([]int, cols)
		elevation[r] = make([]float64, cols)
	}

	// Degrees per cell, shrinking longitude spacing with latitude.
	dLat := cellSizeM / 111000.0
	dLon := cellSizeM / (111000.0 * math.Cos(lat*math.Pi/180.0))

	transform := AffineTransform{
		A: dLon,
		C: lon - dLon*float64(cols)/2,
		E: -dLat,
		F: lat + dLat*float64(rows)/2,
	}
	return NewWorld(occupancy, elevation, transform)
}
