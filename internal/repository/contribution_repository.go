package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/runterra/territory-backend/internal/models"
)

// ContributionRepository handles database operations for run hex paths
// and per-cell zone contributions. Both tables follow the same
// replace-scope pattern: delete the scope, then bulk insert.
type ContributionRepository struct {
	db *sql.DB
}

// NewContributionRepository creates a new contribution repository
func NewContributionRepository(db *sql.DB) *ContributionRepository {
	return &ContributionRepository{db: db}
}

// ReplaceRunHexesTx fully replaces the stored hex path of one run
func (r *ContributionRepository) ReplaceRunHexesTx(tx *sql.Tx, runID string, hexes []models.RunHex) error {
	if _, err := tx.Exec("DELETE FROM run_hexes WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("failed to clear run hexes for %s: %w", runID, err)
	}

	if len(hexes) == 0 {
		return nil
	}

	stmt, err := tx.Prepare("INSERT INTO run_hexes (run_id, sequence_index, h3_index) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare hex insert: %w", err)
	}
	defer stmt.Close()

	for _, h := range hexes {
		if _, err := stmt.Exec(h.RunID, h.SequenceIndex, h.H3Index); err != nil {
			return fmt.Errorf("failed to insert hex %d for run %s: %w", h.SequenceIndex, h.RunID, err)
		}
	}

	return nil
}

// GetRunHexes retrieves the stored hex path of a run in sequence order
func (r *ContributionRepository) GetRunHexes(runID string) ([]models.RunHex, error) {
	query := `SELECT run_id, sequence_index, h3_index FROM run_hexes
		WHERE run_id = ? ORDER BY sequence_index ASC`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run hexes: %w", err)
	}
	defer rows.Close()

	var hexes []models.RunHex
	for rows.Next() {
		var h models.RunHex
		if err := rows.Scan(&h.RunID, &h.SequenceIndex, &h.H3Index); err != nil {
			return nil, fmt.Errorf("failed to scan run hex: %w", err)
		}
		hexes = append(hexes, h)
	}

	return hexes, rows.Err()
}

// ReplaceContributionsTx replaces all contribution rows for one
// (run, cycle, source) scope. Scopes of other runs, cycles and sources
// are untouched, which keeps recomputation per run independent.
func (r *ContributionRepository) ReplaceContributionsTx(tx *sql.Tx, runID, cycleKey string, source models.ContributionSource, contributions []models.RunZoneContribution) error {
	_, err := tx.Exec(
		"DELETE FROM run_zone_contributions WHERE run_id = ? AND cycle_key = ? AND source = ?",
		runID, cycleKey, string(source))
	if err != nil {
		return fmt.Errorf("failed to clear contributions for run %s cycle %s: %w", runID, cycleKey, err)
	}

	if len(contributions) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(`INSERT INTO run_zone_contributions
		(run_id, user_id, cycle_key, cycle_start, cycle_end, h3_index, distance_m, first_at, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare contribution insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range contributions {
		_, err := stmt.Exec(
			c.RunID, c.UserID, c.CycleKey,
			c.CycleStart.Unix(), c.CycleEnd.Unix(),
			c.H3Index, c.DistanceM, c.FirstAt.Unix(), string(c.Source))
		if err != nil {
			return fmt.Errorf("failed to insert contribution for cell %s: %w", c.H3Index, err)
		}
	}

	return nil
}

// GetForCycle retrieves every contribution row of one cycle across all
// runs, users and sources. This is the full input set the ownership
// resolver requires.
func (r *ContributionRepository) GetForCycle(cycleKey string) ([]models.RunZoneContribution, error) {
	query := `SELECT run_id, user_id, cycle_key, cycle_start, cycle_end,
		h3_index, distance_m, first_at, source
		FROM run_zone_contributions WHERE cycle_key = ?`

	rows, err := r.db.Query(query, cycleKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query contributions: %w", err)
	}
	defer rows.Close()

	var contributions []models.RunZoneContribution
	for rows.Next() {
		var (
			c          models.RunZoneContribution
			cycleStart int64
			cycleEnd   int64
			firstAt    int64
			source     string
		)
		err := rows.Scan(&c.RunID, &c.UserID, &c.CycleKey, &cycleStart, &cycleEnd,
			&c.H3Index, &c.DistanceM, &firstAt, &source)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		c.CycleStart = time.Unix(cycleStart, 0).UTC()
		c.CycleEnd = time.Unix(cycleEnd, 0).UTC()
		c.FirstAt = time.Unix(firstAt, 0).UTC()
		c.Source = models.ContributionSource(source)
		contributions = append(contributions, c)
	}

	return contributions, rows.Err()
}
