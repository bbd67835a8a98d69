package capture

import (
	"fmt"
	"sort"
	"time"

	"github.com/runterra/territory-backend/internal/hexgrid"
	"github.com/runterra/territory-backend/internal/models"
	"github.com/runterra/territory-backend/internal/spatial"
)

// CellContribution is the distance a single run contributed to one grid
// cell, with the earliest time the run first entered it.
type CellContribution struct {
	Cell      hexgrid.Cell
	DistanceM float64
	FirstAt   time.Time
}

// RunContributions is the per-cell attribution of one run within one
// ownership cycle.
type RunContributions struct {
	Cycle models.CycleWindow
	Cells []CellContribution
}

// LoopBonusRule is an extension point for awarding LOOP_BONUS
// contributions when a run qualifies as a closed loop. The core ships no
// implementation; eligibility belongs to whatever deployment wires a
// rule in. Returning an empty slice means no bonus.
type LoopBonusRule interface {
	Bonus(points []models.GPSPoint, metrics models.RunMetrics, base *RunContributions) []CellContribution
}

// ComputeContributions splits each segment's haversine distance evenly
// across the grid cells the segment's adjacency path touches, and
// aggregates per cell. Output is sorted by cell identifier so repeated
// invocations over the same trace are byte-identical.
func ComputeContributions(points []models.GPSPoint, resolution int, cycleAt time.Time, idx hexgrid.Indexer) (*RunContributions, error) {
	out := &RunContributions{Cycle: WeeklyCycle(cycleAt)}
	if len(points) < 2 {
		return out, nil
	}

	pts := sortByTime(points)

	type accum struct {
		distance float64
		firstAt  time.Time
	}
	totals := make(map[hexgrid.Cell]*accum)

	for i := 1; i < len(pts); i++ {
		start, end := pts[i-1], pts[i]
		segDist := spatial.HaversineDistance(start.Lat, start.Lng, end.Lat, end.Lng)

		startCell, err := idx.CellFor(start.Lat, start.Lng, resolution)
		if err != nil {
			return nil, fmt.Errorf("index point (%f, %f): %w", start.Lat, start.Lng, err)
		}
		endCell, err := idx.CellFor(end.Lat, end.Lng, resolution)
		if err != nil {
			return nil, fmt.Errorf("index point (%f, %f): %w", end.Lat, end.Lng, err)
		}

		segCells := []hexgrid.Cell{startCell}
		if startCell != endCell {
			segCells, err = idx.PathBetween(startCell, endCell)
			if err != nil {
				return nil, fmt.Errorf("connect cells %s -> %s: %w", startCell, endCell, err)
			}
		}

		share := segDist / float64(len(segCells))
		for _, cell := range segCells {
			acc, ok := totals[cell]
			if !ok {
				totals[cell] = &accum{distance: share, firstAt: start.Time}
				continue
			}
			acc.distance += share
			if start.Time.Before(acc.firstAt) {
				acc.firstAt = start.Time
			}
		}
	}

	cells := make([]CellContribution, 0, len(totals))
	for cell, acc := range totals {
		cells = append(cells, CellContribution{
			Cell:      cell,
			DistanceM: acc.distance,
			FirstAt:   acc.firstAt,
		})
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Cell < cells[j].Cell })

	out.Cells = cells
	return out, nil
}
