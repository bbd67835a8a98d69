package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations holds the full schema history, applied in order. The
// replace-scope tables (run_hexes, run_zone_contributions,
// zone_ownerships) carry composite primary keys matching their replace
// granularity.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_runs",
		SQL: `
			CREATE TABLE IF NOT EXISTS runs (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'PENDING'
					CHECK (status IN ('PENDING', 'FINALIZED', 'REJECTED')),
				reject_reason TEXT NOT NULL DEFAULT '',
				distance_m REAL,
				duration_s REAL,
				avg_pace_s_per_km REAL,
				max_speed_m_s REAL,
				raw_points TEXT NOT NULL,
				created_at INTEGER NOT NULL,
				updated_at INTEGER NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_runs_user ON runs(user_id);
			CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
		`,
	},
	{
		Version: 2,
		Name:    "create_run_hexes",
		SQL: `
			CREATE TABLE IF NOT EXISTS run_hexes (
				run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
				sequence_index INTEGER NOT NULL,
				h3_index TEXT NOT NULL,
				PRIMARY KEY (run_id, sequence_index)
			);
			CREATE INDEX IF NOT EXISTS idx_run_hexes_cell ON run_hexes(h3_index);
		`,
	},
	{
		Version: 3,
		Name:    "create_run_zone_contributions",
		SQL: `
			CREATE TABLE IF NOT EXISTS run_zone_contributions (
				run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
				user_id TEXT NOT NULL,
				cycle_key TEXT NOT NULL,
				cycle_start INTEGER NOT NULL,
				cycle_end INTEGER NOT NULL,
				h3_index TEXT NOT NULL,
				distance_m REAL NOT NULL CHECK (distance_m >= 0),
				first_at INTEGER NOT NULL,
				source TEXT NOT NULL DEFAULT 'DISTANCE'
					CHECK (source IN ('DISTANCE', 'LOOP_BONUS')),
				PRIMARY KEY (run_id, cycle_key, source, h3_index)
			);
			CREATE INDEX IF NOT EXISTS idx_contributions_cycle ON run_zone_contributions(cycle_key);
		`,
	},
	{
		Version: 4,
		Name:    "create_zone_ownerships",
		SQL: `
			CREATE TABLE IF NOT EXISTS zone_ownerships (
				cycle_key TEXT NOT NULL,
				cycle_start INTEGER NOT NULL,
				cycle_end INTEGER NOT NULL,
				h3_index TEXT NOT NULL,
				owner_user_id TEXT NOT NULL,
				owner_distance_m REAL NOT NULL,
				tie_break_first_at INTEGER NOT NULL,
				PRIMARY KEY (cycle_key, h3_index)
			);
			CREATE INDEX IF NOT EXISTS idx_ownerships_owner ON zone_ownerships(cycle_key, owner_user_id);
		`,
	},
}

// initMigrationsTable creates the migrations tracking table
func initMigrationsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// appliedMigrations returns the set of applied migration versions
func appliedMigrations(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// applyMigration applies a single migration inside a transaction
func applyMigration(db *sql.DB, migration Migration) error {
	return Transaction(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(migration.SQL); err != nil {
			return fmt.Errorf("failed to execute migration %d: %w", migration.Version, err)
		}
		if _, err := tx.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)",
			migration.Version, migration.Name); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
		return nil
	})
}

// RunMigrations runs all pending migrations
func RunMigrations(db *sql.DB) error {
	if err := initMigrationsTable(db); err != nil {
		return err
	}

	applied, err := appliedMigrations(db)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			continue
		}
		if err := applyMigration(db, migration); err != nil {
			return err
		}
		log.Printf("Applied migration %d: %s", migration.Version, migration.Name)
	}

	return nil
}
