package models

import "time"

// CycleWindow is a 7-day UTC ownership window starting Monday 00:00:00.
// Never stored on its own, only derived from an instant and embedded.
type CycleWindow struct {
	Key   string    `json:"cycleKey"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether at falls inside the window (start inclusive,
// end exclusive).
func (w CycleWindow) Contains(at time.Time) bool {
	return !at.Before(w.Start) && at.Before(w.End)
}

// ContributionSource tags how a contribution row was earned.
type ContributionSource string

const (
	SourceDistance  ContributionSource = "DISTANCE"
	SourceLoopBonus ContributionSource = "LOOP_BONUS"
)

// RunHex is one step of the ordered, adjacency-deduplicated grid path a
// finalized run traced. Rows for a run are fully replaced on recompute.
type RunHex struct {
	RunID         string `json:"runId" db:"run_id"`
	SequenceIndex int    `json:"sequenceIndex" db:"sequence_index"`
	H3Index       string `json:"h3Index" db:"h3_index"`
}

// RunZoneContribution is the distance one run contributed to one grid
// cell within one cycle. Replaced per (runId, cycleKey, source) tuple.
type RunZoneContribution struct {
	RunID      string             `json:"runId" db:"run_id"`
	UserID     string             `json:"userId" db:"user_id"`
	CycleKey   string             `json:"cycleKey" db:"cycle_key"`
	CycleStart time.Time          `json:"cycleStart" db:"cycle_start"`
	CycleEnd   time.Time          `json:"cycleEnd" db:"cycle_end"`
	H3Index    string             `json:"h3Index" db:"h3_index"`
	DistanceM  float64            `json:"distanceM" db:"distance_m"`
	FirstAt    time.Time          `json:"firstAt" db:"first_at"`
	Source     ContributionSource `json:"source" db:"source"`
}

// ZoneOwnership is the materialized winner of one cell for one cycle.
// At most one row per (cycleKey, h3Index); a cell nobody touched has no
// row at all.
type ZoneOwnership struct {
	CycleKey        string    `json:"cycleKey" db:"cycle_key"`
	CycleStart      time.Time `json:"cycleStart" db:"cycle_start"`
	CycleEnd        time.Time `json:"cycleEnd" db:"cycle_end"`
	H3Index         string    `json:"h3Index" db:"h3_index"`
	OwnerUserID     string    `json:"ownerUserId" db:"owner_user_id"`
	OwnerDistanceM  float64   `json:"ownerDistanceM" db:"owner_distance_m"`
	TieBreakFirstAt time.Time `json:"tieBreakFirstAt" db:"tie_break_first_at"`
}

// LeaderboardEntry aggregates one user's standing within a cycle.
type LeaderboardEntry struct {
	UserID         string  `json:"userId" db:"user_id"`
	CellsOwned     int     `json:"cellsOwned" db:"cells_owned"`
	TotalDistanceM float64 `json:"totalDistanceM" db:"total_distance_m"`
}

// ZoneBoundary is the polygon outline of a single grid cell, used by the
// read side for map rendering.
type ZoneBoundary struct {
	H3Index  string     `json:"h3Index"`
	Vertices []GPSCoord `json:"vertices"`
}

// GPSCoord is a bare coordinate without a timestamp.
type GPSCoord struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
