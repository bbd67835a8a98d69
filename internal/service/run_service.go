package service

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/runterra/territory-backend/internal/capture"
	"github.com/runterra/territory-backend/internal/database"
	"github.com/runterra/territory-backend/internal/hexgrid"
	"github.com/runterra/territory-backend/internal/models"
	"github.com/runterra/territory-backend/internal/repository"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// RunService handles run upload, finalization and derived-data
// recomputation. Finalization runs under one transaction covering the
// status transition, the hex path replacement and the contribution
// replacement: a partial failure leaves the run PENDING.
type RunService struct {
	db         *sql.DB
	runs       *repository.RunRepository
	contribs   *repository.ContributionRepository
	indexer    hexgrid.Indexer
	resolution int
	loopBonus  capture.LoopBonusRule
}

// NewRunService creates a new run service
func NewRunService(db *sql.DB, runs *repository.RunRepository, contribs *repository.ContributionRepository, indexer hexgrid.Indexer, resolution int) *RunService {
	return &RunService{
		db:         db,
		runs:       runs,
		contribs:   contribs,
		indexer:    indexer,
		resolution: resolution,
	}
}

// SetLoopBonusRule wires an optional LOOP_BONUS eligibility rule. The
// core ships none; without a rule only DISTANCE contributions exist.
func (s *RunService) SetLoopBonusRule(rule capture.LoopBonusRule) {
	s.loopBonus = rule
}

// Upload stores a new PENDING run holding only the raw trace
func (s *RunService) Upload(userID string, points []models.GPSPoint) (*models.Run, error) {
	now := time.Now().UTC()
	run := &models.Run{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    models.RunStatusPending,
		RawPoints: points,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.runs.Create(run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	log.Printf("[RunService] Created run %s for user %s (%d points)", run.ID, userID, len(points))
	return run, nil
}

// Get retrieves a run by ID
func (s *RunService) Get(id string) (*models.Run, error) {
	run, err := s.runs.GetByID(id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, ErrRunNotFound
	}
	return run, nil
}

// GetPath retrieves the stored hex path of a run
func (s *RunService) GetPath(id string) ([]models.RunHex, error) {
	run, err := s.runs.GetByID(id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, ErrRunNotFound
	}
	return s.contribs.GetRunHexes(id)
}

// Finalize recomputes a PENDING run's metrics, validates them and
// transitions the run exactly once. Finalizing an already-terminal run
// returns the stored result and performs no writes, so client retries
// are safe. Two concurrent calls are serialized by the PENDING status
// guard inside the transaction.
func (s *RunService) Finalize(id string) (*models.FinalizeResult, error) {
	run, err := s.runs.GetByID(id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, ErrRunNotFound
	}
	if run.Status.Terminal() {
		return finalizeResult(run), nil
	}

	metrics := capture.CalculateMetrics(run.RawPoints)
	valid, reason := capture.ValidateRun(metrics)

	var lostRace bool
	err = database.Transaction(s.db, func(tx *sql.Tx) error {
		if !valid {
			// Metrics are still recorded on rejection, for audit.
			ok, err := s.runs.TransitionFromPendingTx(tx, id, models.RunStatusRejected, reason, metrics)
			if err != nil {
				return err
			}
			lostRace = !ok
			return nil
		}

		ok, err := s.runs.TransitionFromPendingTx(tx, id, models.RunStatusFinalized, models.RejectNone, metrics)
		if err != nil {
			return err
		}
		if !ok {
			lostRace = true
			return nil
		}

		return s.recomputeDerivedTx(tx, run, metrics)
	})
	if err != nil {
		return nil, err
	}

	if lostRace {
		// A concurrent finalize got there first; honour its result.
		current, err := s.runs.GetByID(id)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrRunNotFound
		}
		return finalizeResult(current), nil
	}

	if valid {
		log.Printf("[RunService] Finalized run %s: %.0f m in %.0f s", id, metrics.DistanceM, metrics.DurationS)
	} else {
		log.Printf("[RunService] Rejected run %s: %s", id, reason)
	}

	run.Status = models.RunStatusFinalized
	run.RejectReason = models.RejectNone
	if !valid {
		run.Status = models.RunStatusRejected
		run.RejectReason = reason
	}
	run.Metrics = &metrics
	return finalizeResult(run), nil
}

// RecomputeRun rebuilds the hex path and contributions of a single
// already-finalized run. Backfill entry point for repairs and
// migrations; rejected or pending runs are skipped.
func (s *RunService) RecomputeRun(id string) error {
	run, err := s.runs.GetByID(id)
	if err != nil {
		return err
	}
	if run == nil {
		return ErrRunNotFound
	}
	if run.Status != models.RunStatusFinalized {
		return fmt.Errorf("run %s is %s, only finalized runs carry derived data", id, run.Status)
	}

	metrics := capture.CalculateMetrics(run.RawPoints)
	return database.Transaction(s.db, func(tx *sql.Tx) error {
		return s.recomputeDerivedTx(tx, run, metrics)
	})
}

// RecomputeFinalized rebuilds derived data for up to limit finalized
// runs, returning how many succeeded. A failing run is logged and
// skipped; its previously committed rows stay intact.
func (s *RunService) RecomputeFinalized(limit int) (int, error) {
	ids, err := s.runs.ListIDsByStatus(models.RunStatusFinalized, limit)
	if err != nil {
		return 0, err
	}

	recomputed := 0
	for _, id := range ids {
		if err := s.RecomputeRun(id); err != nil {
			log.Printf("[RunService] Recompute failed for run %s: %v", id, err)
			continue
		}
		recomputed++
	}

	log.Printf("[RunService] Recomputed %d/%d finalized runs", recomputed, len(ids))
	return recomputed, nil
}

// recomputeDerivedTx replaces the run's hex path and contribution rows
// inside the caller's transaction. A grid path failure aborts here and
// rolls the whole transaction back.
func (s *RunService) recomputeDerivedTx(tx *sql.Tx, run *models.Run, metrics models.RunMetrics) error {
	cells, err := capture.GPSToPath(run.RawPoints, s.resolution, s.indexer)
	if err != nil {
		return fmt.Errorf("hex path for run %s: %w", run.ID, err)
	}

	hexes := make([]models.RunHex, len(cells))
	for i, c := range cells {
		hexes[i] = models.RunHex{RunID: run.ID, SequenceIndex: i, H3Index: string(c)}
	}
	if err := s.contribs.ReplaceRunHexesTx(tx, run.ID, hexes); err != nil {
		return err
	}

	contribs, err := capture.ComputeContributions(run.RawPoints, s.resolution, traceEnd(run.RawPoints), s.indexer)
	if err != nil {
		return fmt.Errorf("contributions for run %s: %w", run.ID, err)
	}

	rows := contributionRows(run, contribs.Cycle, contribs.Cells, models.SourceDistance)
	if err := s.contribs.ReplaceContributionsTx(tx, run.ID, contribs.Cycle.Key, models.SourceDistance, rows); err != nil {
		return err
	}

	if s.loopBonus != nil {
		bonus := s.loopBonus.Bonus(run.RawPoints, metrics, contribs)
		bonusRows := contributionRows(run, contribs.Cycle, bonus, models.SourceLoopBonus)
		// Replaced even when empty, so a rule change clears stale rows.
		if err := s.contribs.ReplaceContributionsTx(tx, run.ID, contribs.Cycle.Key, models.SourceLoopBonus, bonusRows); err != nil {
			return err
		}
	}

	return nil
}

func contributionRows(run *models.Run, cycle models.CycleWindow, cells []capture.CellContribution, source models.ContributionSource) []models.RunZoneContribution {
	rows := make([]models.RunZoneContribution, len(cells))
	for i, c := range cells {
		rows[i] = models.RunZoneContribution{
			RunID:      run.ID,
			UserID:     run.UserID,
			CycleKey:   cycle.Key,
			CycleStart: cycle.Start,
			CycleEnd:   cycle.End,
			H3Index:    string(c.Cell),
			DistanceM:  c.DistanceM,
			FirstAt:    c.FirstAt,
			Source:     source,
		}
	}
	return rows
}

// traceEnd returns the latest sample time; the run's cycle is anchored
// to when the run ended.
func traceEnd(points []models.GPSPoint) time.Time {
	var end time.Time
	for _, p := range points {
		if p.Time.After(end) {
			end = p.Time
		}
	}
	return end
}

func finalizeResult(run *models.Run) *models.FinalizeResult {
	return &models.FinalizeResult{
		RunID:        run.ID,
		Status:       run.Status,
		Metrics:      run.Metrics,
		RejectReason: run.RejectReason,
	}
}
