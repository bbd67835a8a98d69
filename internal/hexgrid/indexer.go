package hexgrid

import "github.com/runterra/territory-backend/internal/models"

// Cell is an opaque grid cell identifier at the system-wide resolution.
type Cell string

// Indexer is the hexagonal grid primitive the capture engine depends on.
// Implementations must be safe for concurrent use.
type Indexer interface {
	// CellFor maps a coordinate to its containing cell at the given
	// resolution.
	CellFor(lat, lng float64, resolution int) (Cell, error)

	// PathBetween returns the shortest grid-adjacency path from a to b,
	// inclusive of both endpoints. Fails when the cells cannot be
	// connected (invalid cell, pentagon distortion, distance too large).
	PathBetween(a, b Cell) ([]Cell, error)

	// BoundaryOf returns the cell's polygon outline. Read-side only; the
	// capture engine itself never calls it.
	BoundaryOf(c Cell) ([]models.GPSCoord, error)
}
