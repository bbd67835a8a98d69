package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/runterra/territory-backend/internal/models"
)

// RunRepository handles database operations for runs
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new PENDING run with its raw trace
func (r *RunRepository) Create(run *models.Run) error {
	raw, err := json.Marshal(run.RawPoints)
	if err != nil {
		return fmt.Errorf("failed to encode raw points: %w", err)
	}

	query := `INSERT INTO runs (id, user_id, status, reject_reason, raw_points, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.Exec(query,
		run.ID, run.UserID, string(run.Status), string(run.RejectReason),
		string(raw), run.CreatedAt.Unix(), run.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// GetByID retrieves a single run by ID, or nil when it does not exist
func (r *RunRepository) GetByID(id string) (*models.Run, error) {
	query := `SELECT id, user_id, status, reject_reason,
		distance_m, duration_s, avg_pace_s_per_km, max_speed_m_s,
		raw_points, created_at, updated_at
		FROM runs WHERE id = ?`

	var (
		run        models.Run
		status     string
		reason     string
		distance   sql.NullFloat64
		duration   sql.NullFloat64
		pace       sql.NullFloat64
		maxSpeed   sql.NullFloat64
		raw        string
		createdAt  int64
		updatedAt  int64
	)

	err := r.db.QueryRow(query, id).Scan(
		&run.ID, &run.UserID, &status, &reason,
		&distance, &duration, &pace, &maxSpeed,
		&raw, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.Status = models.RunStatus(status)
	run.RejectReason = models.RejectReason(reason)
	run.CreatedAt = time.Unix(createdAt, 0).UTC()
	run.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	if distance.Valid {
		run.Metrics = &models.RunMetrics{
			DistanceM:     distance.Float64,
			DurationS:     duration.Float64,
			AvgPaceSPerKm: pace.Float64,
			MaxSpeedMS:    maxSpeed.Float64,
		}
	}

	if err := json.Unmarshal([]byte(raw), &run.RawPoints); err != nil {
		return nil, fmt.Errorf("failed to decode raw points for run %s: %w", id, err)
	}

	return &run, nil
}

// ListIDsByStatus retrieves run IDs in a status, oldest first. Used by
// the backfill entry points.
func (r *RunRepository) ListIDsByStatus(status models.RunStatus, limit int) ([]string, error) {
	query := `SELECT id FROM runs WHERE status = ? ORDER BY created_at ASC LIMIT ?`

	rows, err := r.db.Query(query, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// TransitionFromPendingTx moves a run out of PENDING and records its
// metrics, but only if it is still PENDING. Returns false when another
// finalize already won the race; the caller must then re-read the run
// and return the stored result.
func (r *RunRepository) TransitionFromPendingTx(tx *sql.Tx, id string, status models.RunStatus, reason models.RejectReason, metrics models.RunMetrics) (bool, error) {
	query := `UPDATE runs
		SET status = ?, reject_reason = ?,
			distance_m = ?, duration_s = ?, avg_pace_s_per_km = ?, max_speed_m_s = ?,
			updated_at = ?
		WHERE id = ? AND status = 'PENDING'`

	res, err := tx.Exec(query,
		string(status), string(reason),
		metrics.DistanceM, metrics.DurationS, metrics.AvgPaceSPerKm, metrics.MaxSpeedMS,
		time.Now().UTC().Unix(), id)
	if err != nil {
		return false, fmt.Errorf("failed to transition run %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected == 1, nil
}
