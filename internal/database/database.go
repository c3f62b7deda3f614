// Package database persists the powerfetch run log: one row per update run
// and one row per station fetch inside it.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/climateops/powerfetch/internal/paths"
	_ "modernc.org/sqlite"
)

// RunDB is the run-log database handle.
type RunDB struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at the default location.
func Open() (*RunDB, error) {
	dbPath, err := paths.DatabasePath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}
	return OpenPath(dbPath)
}

// OpenPath opens or creates the database at a specific path.
func OpenPath(path string) (*RunDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL keeps the daemon's writers from blocking status reads.
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	rdb := &RunDB{db: db, path: path}
	if err := rdb.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return rdb, nil
}

func (r *RunDB) migrate() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TIMESTAMP NOT NULL,
	finished_at TIMESTAMP,
	start_date TEXT NOT NULL,
	end_date TEXT NOT NULL,
	stations_ok INTEGER NOT NULL DEFAULT 0,
	stations_failed INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS station_fetches (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL REFERENCES runs(id),
	station_code TEXT NOT NULL,
	rows INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	error TEXT
);

CREATE INDEX IF NOT EXISTS idx_station_fetches_run ON station_fetches(run_id);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

// Path returns the database file location.
func (r *RunDB) Path() string {
	return r.path
}

// Close closes the underlying handle.
func (r *RunDB) Close() error {
	return r.db.Close()
}
