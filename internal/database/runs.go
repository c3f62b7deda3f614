package database

import (
	"database/sql"
	"fmt"
	"time"
)

// Fetch statuses recorded per station.
const (
	FetchOK      = "ok"
	FetchFailed  = "failed"
	FetchSkipped = "skipped"
)

// Run is one update run.
type Run struct {
	ID             string     `json:"id"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	StartDate      string     `json:"start_date"`
	EndDate        string     `json:"end_date"`
	StationsOK     int        `json:"stations_ok"`
	StationsFailed int        `json:"stations_failed"`
}

// StationFetch is one station download inside a run.
type StationFetch struct {
	RunID       string `json:"run_id"`
	StationCode string `json:"station_code"`
	Rows        int    `json:"rows"`
	DurationMS  int64  `json:"duration_ms"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

// BeginRun records the start of an update run.
func (r *RunDB) BeginRun(id, startDate, endDate string) error {
	_, err := r.db.Exec(
		`INSERT INTO runs (id, started_at, start_date, end_date) VALUES (?, ?, ?, ?)`,
		id, time.Now().UTC(), startDate, endDate,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", id, err)
	}
	return nil
}

// FinishRun closes out a run with its final counters.
func (r *RunDB) FinishRun(id string, stationsOK, stationsFailed int) error {
	_, err := r.db.Exec(
		`UPDATE runs SET finished_at = ?, stations_ok = ?, stations_failed = ? WHERE id = ?`,
		time.Now().UTC(), stationsOK, stationsFailed, id,
	)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", id, err)
	}
	return nil
}

// RecordFetch stores the outcome of one station download.
func (r *RunDB) RecordFetch(f StationFetch) error {
	var errText sql.NullString
	if f.Error != "" {
		errText = sql.NullString{String: f.Error, Valid: true}
	}
	_, err := r.db.Exec(
		`INSERT INTO station_fetches (run_id, station_code, rows, duration_ms, status, error)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		f.RunID, f.StationCode, f.Rows, f.DurationMS, f.Status, errText,
	)
	if err != nil {
		return fmt.Errorf("recording fetch %s/%s: %w", f.RunID, f.StationCode, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (r *RunDB) RecentRuns(limit int) ([]Run, error) {
	rows, err := r.db.Query(
		`SELECT id, started_at, finished_at, start_date, end_date, stations_ok, stations_failed
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var finished sql.NullTime
		if err := rows.Scan(&run.ID, &run.StartedAt, &finished, &run.StartDate, &run.EndDate,
			&run.StationsOK, &run.StationsFailed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunFetches returns the station fetches of one run in insert order.
func (r *RunDB) RunFetches(runID string) ([]StationFetch, error) {
	rows, err := r.db.Query(
		`SELECT run_id, station_code, rows, duration_ms, status, COALESCE(error, '')
		 FROM station_fetches WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying fetches for %s: %w", runID, err)
	}
	defer rows.Close()

	var fetches []StationFetch
	for rows.Next() {
		var f StationFetch
		if err := rows.Scan(&f.RunID, &f.StationCode, &f.Rows, &f.DurationMS, &f.Status, &f.Error); err != nil {
			return nil, fmt.Errorf("scanning fetch: %w", err)
		}
		fetches = append(fetches, f)
	}
	return fetches, rows.Err()
}
