package service

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/runterra/territory-backend/internal/capture"
	"github.com/runterra/territory-backend/internal/database"
	"github.com/runterra/territory-backend/internal/hexgrid"
	"github.com/runterra/territory-backend/internal/models"
	"github.com/runterra/territory-backend/internal/repository"
)

// OwnershipService resolves and serves per-cell zone ownership.
type OwnershipService struct {
	db         *sql.DB
	contribs   *repository.ContributionRepository
	ownerships *repository.OwnershipRepository
	indexer    hexgrid.Indexer
}

// NewOwnershipService creates a new ownership service
func NewOwnershipService(db *sql.DB, contribs *repository.ContributionRepository, ownerships *repository.OwnershipRepository, indexer hexgrid.Indexer) *OwnershipService {
	return &OwnershipService{
		db:         db,
		contribs:   contribs,
		ownerships: ownerships,
		indexer:    indexer,
	}
}

// ParseCycleKey validates a cycle key and returns its window. The key
// must be a date that actually starts a cycle, i.e. a Monday.
func ParseCycleKey(cycleKey string) (models.CycleWindow, error) {
	start, err := time.ParseInLocation(capture.CycleKeyFormat, cycleKey, time.UTC)
	if err != nil {
		return models.CycleWindow{}, fmt.Errorf("invalid cycle key %q: %w", cycleKey, err)
	}
	window := capture.WeeklyCycle(start)
	if window.Key != cycleKey {
		return models.CycleWindow{}, fmt.Errorf("cycle key %q is not a cycle start (expected %s)", cycleKey, window.Key)
	}
	return window, nil
}

// CurrentCycle returns the window containing the current instant.
func (s *OwnershipService) CurrentCycle() models.CycleWindow {
	return capture.WeeklyCycle(time.Now())
}

// RecomputeCycle reads every contribution row of the cycle, resolves one
// winner per touched cell and atomically replaces the ownership rows for
// exactly that cell set. Returns the number of owned cells.
func (s *OwnershipService) RecomputeCycle(cycleKey string) (int, error) {
	window, err := ParseCycleKey(cycleKey)
	if err != nil {
		return 0, err
	}

	contributions, err := s.contribs.GetForCycle(cycleKey)
	if err != nil {
		return 0, err
	}

	rows := make([]capture.ContributionRow, len(contributions))
	for i, c := range contributions {
		rows[i] = capture.ContributionRow{
			H3Index:   c.H3Index,
			UserID:    c.UserID,
			DistanceM: c.DistanceM,
			FirstAt:   c.FirstAt,
		}
	}

	owners := capture.ResolveOwners(rows)

	ownerships := make([]models.ZoneOwnership, len(owners))
	for i, o := range owners {
		ownerships[i] = models.ZoneOwnership{
			CycleKey:        window.Key,
			CycleStart:      window.Start,
			CycleEnd:        window.End,
			H3Index:         o.H3Index,
			OwnerUserID:     o.UserID,
			OwnerDistanceM:  o.DistanceM,
			TieBreakFirstAt: o.FirstAt,
		}
	}

	err = database.Transaction(s.db, func(tx *sql.Tx) error {
		return s.ownerships.ReplaceForCellsTx(tx, cycleKey, ownerships)
	})
	if err != nil {
		return 0, err
	}

	log.Printf("[OwnershipService] Resolved %d owned cells for cycle %s", len(ownerships), cycleKey)
	return len(ownerships), nil
}

// GetOwnership retrieves all ownership rows for a cycle
func (s *OwnershipService) GetOwnership(cycleKey string) ([]models.ZoneOwnership, error) {
	if _, err := ParseCycleKey(cycleKey); err != nil {
		return nil, err
	}
	return s.ownerships.GetByCycle(cycleKey)
}

// Leaderboard retrieves the per-user standings for a cycle
func (s *OwnershipService) Leaderboard(cycleKey string) ([]models.LeaderboardEntry, error) {
	if _, err := ParseCycleKey(cycleKey); err != nil {
		return nil, err
	}
	return s.ownerships.Leaderboard(cycleKey)
}

// Boundary returns the polygon outline of one grid cell for map
// rendering.
func (s *OwnershipService) Boundary(h3Index string) (*models.ZoneBoundary, error) {
	vertices, err := s.indexer.BoundaryOf(hexgrid.Cell(h3Index))
	if err != nil {
		return nil, err
	}
	return &models.ZoneBoundary{H3Index: h3Index, Vertices: vertices}, nil
}
