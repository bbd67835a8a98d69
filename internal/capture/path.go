package capture

import (
	"fmt"

	"github.com/runterra/territory-backend/internal/hexgrid"
	"github.com/runterra/territory-backend/internal/models"
)

// GPSToPath converts a raw trace into the continuous, ordered sequence
// of grid cells the run traversed. Consecutive points in the same cell
// collapse to one entry; gaps between distinct cells are bridged with
// the grid's shortest adjacency path so the sequence never teleports.
// A path failure between two specific cells aborts the whole run.
func GPSToPath(points []models.GPSPoint, resolution int, idx hexgrid.Indexer) ([]hexgrid.Cell, error) {
	if len(points) == 0 {
		return nil, nil
	}

	pts := sortByTime(points)

	cells := make([]hexgrid.Cell, len(pts))
	for i, p := range pts {
		c, err := idx.CellFor(p.Lat, p.Lng, resolution)
		if err != nil {
			return nil, fmt.Errorf("index point (%f, %f): %w", p.Lat, p.Lng, err)
		}
		cells[i] = c
	}

	path := make([]hexgrid.Cell, 0, len(cells))
	path = append(path, cells[0])
	for i := 1; i < len(cells); i++ {
		if cells[i] == cells[i-1] {
			continue
		}
		segment, err := idx.PathBetween(cells[i-1], cells[i])
		if err != nil {
			return nil, fmt.Errorf("connect cells %s -> %s: %w", cells[i-1], cells[i], err)
		}
		// The segment includes both endpoints; its first cell is already
		// the tail of the accumulated path.
		path = append(path, segment[1:]...)
	}

	return DedupeSequential(path), nil
}

// DedupeSequential collapses adjacent repeats only. A runner who leaves
// a cell and comes back later must show it twice, so non-adjacent
// repeats are preserved.
func DedupeSequential(cells []hexgrid.Cell) []hexgrid.Cell {
	if len(cells) == 0 {
		return cells
	}
	out := make([]hexgrid.Cell, 0, len(cells))
	out = append(out, cells[0])
	for _, c := range cells[1:] {
		if c != out[len(out)-1] {
			out = append(out, c)
		}
	}
	return out
}
