package hexgrid

import (
	"fmt"

	h3 "github.com/uber/h3-go/v4"

	"github.com/runterra/territory-backend/internal/models"
)

// DefaultResolution is the fixed H3 resolution used across the system.
// Resolution 9 cells average ~0.1 km², street-block sized for runners.
const DefaultResolution = 9

// H3Indexer implements Indexer on top of Uber's H3 library.
type H3Indexer struct{}

// NewH3Indexer creates an H3-backed grid indexer.
func NewH3Indexer() *H3Indexer {
	return &H3Indexer{}
}

// CellFor maps a coordinate to its containing H3 cell.
func (x *H3Indexer) CellFor(lat, lng float64, resolution int) (Cell, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(lat, lng), resolution)
	if err != nil {
		return "", fmt.Errorf("latlng to cell (%f, %f) res %d: %w", lat, lng, resolution, err)
	}
	return Cell(cell.String()), nil
}

// PathBetween returns the shortest cell path from a to b, both endpoints
// included.
func (x *H3Indexer) PathBetween(a, b Cell) ([]Cell, error) {
	from, err := parseCell(a)
	if err != nil {
		return nil, err
	}
	to, err := parseCell(b)
	if err != nil {
		return nil, err
	}

	path, err := h3.GridPath(from, to)
	if err != nil {
		return nil, fmt.Errorf("grid path %s -> %s: %w", a, b, err)
	}

	cells := make([]Cell, len(path))
	for i, c := range path {
		cells[i] = Cell(c.String())
	}
	return cells, nil
}

// BoundaryOf returns the cell's hexagon outline as lat/lng vertices.
func (x *H3Indexer) BoundaryOf(c Cell) ([]models.GPSCoord, error) {
	cell, err := parseCell(c)
	if err != nil {
		return nil, err
	}

	boundary, err := h3.CellToBoundary(cell)
	if err != nil {
		return nil, fmt.Errorf("cell boundary %s: %w", c, err)
	}

	coords := make([]models.GPSCoord, len(boundary))
	for i, v := range boundary {
		coords[i] = models.GPSCoord{Lat: v.Lat, Lng: v.Lng}
	}
	return coords, nil
}

func parseCell(c Cell) (h3.Cell, error) {
	cell := h3.Cell(h3.IndexFromString(string(c)))
	if !cell.IsValid() {
		return 0, fmt.Errorf("invalid h3 cell %q", c)
	}
	return cell, nil
}
