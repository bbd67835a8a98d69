package repository

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/runterra/territory-backend/internal/database"
	"github.com/runterra/territory-backend/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func ownership(cycleKey, cell, user string, dist float64) models.ZoneOwnership {
	start, _ := time.ParseInLocation("2006-01-02", cycleKey, time.UTC)
	return models.ZoneOwnership{
		CycleKey:        cycleKey,
		CycleStart:      start,
		CycleEnd:        start.AddDate(0, 0, 7),
		H3Index:         cell,
		OwnerUserID:     user,
		OwnerDistanceM:  dist,
		TieBreakFirstAt: start.Add(9 * time.Hour),
	}
}

func TestReplaceForCellsTxScopedToComputedSet(t *testing.T) {
	db := newTestDB(t)
	repo := NewOwnershipRepository(db)

	// Seed two cells for the cycle.
	err := database.Transaction(db, func(tx *sql.Tx) error {
		return repo.ReplaceForCellsTx(tx, "2025-07-07", []models.ZoneOwnership{
			ownership("2025-07-07", "cellA", "userA", 100),
			ownership("2025-07-07", "cellB", "userB", 200),
		})
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	// A narrower recomputation covering only cellA must replace cellA
	// and leave cellB alone.
	err = database.Transaction(db, func(tx *sql.Tx) error {
		return repo.ReplaceForCellsTx(tx, "2025-07-07", []models.ZoneOwnership{
			ownership("2025-07-07", "cellA", "userC", 150),
		})
	})
	if err != nil {
		t.Fatalf("partial replace failed: %v", err)
	}

	rows, err := repo.GetByCycle("2025-07-07")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].H3Index != "cellA" || rows[0].OwnerUserID != "userC" {
		t.Errorf("cellA not replaced: %+v", rows[0])
	}
	if rows[1].H3Index != "cellB" || rows[1].OwnerUserID != "userB" {
		t.Errorf("cellB should be untouched: %+v", rows[1])
	}
}

func TestReplaceForCellsTxEmptyIsNoOp(t *testing.T) {
	db := newTestDB(t)
	repo := NewOwnershipRepository(db)

	err := database.Transaction(db, func(tx *sql.Tx) error {
		return repo.ReplaceForCellsTx(tx, "2025-07-07", nil)
	})
	if err != nil {
		t.Fatalf("empty replace failed: %v", err)
	}

	rows, err := repo.GetByCycle("2025-07-07")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	db := newTestDB(t)
	repo := NewOwnershipRepository(db)

	err := database.Transaction(db, func(tx *sql.Tx) error {
		return repo.ReplaceForCellsTx(tx, "2025-07-07", []models.ZoneOwnership{
			ownership("2025-07-07", "cellA", "userA", 100),
			ownership("2025-07-07", "cellB", "userB", 900),
			ownership("2025-07-07", "cellC", "userA", 100),
		})
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	board, err := repo.Leaderboard("2025-07-07")
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(board))
	}
	// More cells beats more distance.
	if board[0].UserID != "userA" || board[0].CellsOwned != 2 {
		t.Errorf("unexpected first entry: %+v", board[0])
	}
	if board[1].UserID != "userB" || board[1].TotalDistanceM != 900 {
		t.Errorf("unexpected second entry: %+v", board[1])
	}
}
