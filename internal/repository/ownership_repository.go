package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/runterra/territory-backend/internal/models"
)

// OwnershipRepository handles database operations for the materialized
// zone ownership view
type OwnershipRepository struct {
	db *sql.DB
}

// NewOwnershipRepository creates a new ownership repository
func NewOwnershipRepository(db *sql.DB) *OwnershipRepository {
	return &OwnershipRepository{db: db}
}

// ReplaceForCellsTx replaces ownership rows for exactly the cells named
// in owners. Rows for cells outside that set are left alone: a backfill
// that recomputed only part of a cycle must not wipe the rest.
func (r *OwnershipRepository) ReplaceForCellsTx(tx *sql.Tx, cycleKey string, owners []models.ZoneOwnership) error {
	if len(owners) == 0 {
		return nil
	}

	placeholders := make([]string, len(owners))
	args := make([]interface{}, 0, len(owners)+1)
	args = append(args, cycleKey)
	for i, o := range owners {
		placeholders[i] = "?"
		args = append(args, o.H3Index)
	}

	deleteQuery := fmt.Sprintf(
		"DELETE FROM zone_ownerships WHERE cycle_key = ? AND h3_index IN (%s)",
		strings.Join(placeholders, ","))
	if _, err := tx.Exec(deleteQuery, args...); err != nil {
		return fmt.Errorf("failed to clear ownerships for cycle %s: %w", cycleKey, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO zone_ownerships
		(cycle_key, cycle_start, cycle_end, h3_index, owner_user_id, owner_distance_m, tie_break_first_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare ownership insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range owners {
		_, err := stmt.Exec(
			o.CycleKey, o.CycleStart.Unix(), o.CycleEnd.Unix(),
			o.H3Index, o.OwnerUserID, o.OwnerDistanceM, o.TieBreakFirstAt.Unix())
		if err != nil {
			return fmt.Errorf("failed to insert ownership for cell %s: %w", o.H3Index, err)
		}
	}

	return nil
}

// GetByCycle retrieves all ownership rows for a cycle, sorted by cell
func (r *OwnershipRepository) GetByCycle(cycleKey string) ([]models.ZoneOwnership, error) {
	query := `SELECT cycle_key, cycle_start, cycle_end, h3_index,
		owner_user_id, owner_distance_m, tie_break_first_at
		FROM zone_ownerships WHERE cycle_key = ? ORDER BY h3_index ASC`

	rows, err := r.db.Query(query, cycleKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query ownerships: %w", err)
	}
	defer rows.Close()

	var ownerships []models.ZoneOwnership
	for rows.Next() {
		var (
			o          models.ZoneOwnership
			cycleStart int64
			cycleEnd   int64
			firstAt    int64
		)
		err := rows.Scan(&o.CycleKey, &cycleStart, &cycleEnd, &o.H3Index,
			&o.OwnerUserID, &o.OwnerDistanceM, &firstAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ownership: %w", err)
		}
		o.CycleStart = time.Unix(cycleStart, 0).UTC()
		o.CycleEnd = time.Unix(cycleEnd, 0).UTC()
		o.TieBreakFirstAt = time.Unix(firstAt, 0).UTC()
		ownerships = append(ownerships, o)
	}

	return ownerships, rows.Err()
}

// Leaderboard aggregates cells owned and total owned distance per user
// within a cycle, best first
func (r *OwnershipRepository) Leaderboard(cycleKey string) ([]models.LeaderboardEntry, error) {
	query := `SELECT owner_user_id, COUNT(*) AS cells_owned, SUM(owner_distance_m) AS total_distance_m
		FROM zone_ownerships
		WHERE cycle_key = ?
		GROUP BY owner_user_id
		ORDER BY cells_owned DESC, total_distance_m DESC, owner_user_id ASC`

	rows, err := r.db.Query(query, cycleKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.CellsOwned, &e.TotalDistanceM); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
