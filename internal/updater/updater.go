// Package updater drives the incremental download workflow: derive the next
// date window from the history directory, fetch the missing window for every
// eligible station, then fold the fresh files into history.
package updater

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/climateops/powerfetch/internal/config"
	"github.com/climateops/powerfetch/internal/database"
	"github.com/climateops/powerfetch/internal/history"
	"github.com/climateops/powerfetch/internal/logging"
	"github.com/climateops/powerfetch/internal/power"
	"github.com/climateops/powerfetch/internal/series"
	"github.com/climateops/powerfetch/internal/stations"
	"github.com/google/uuid"
)

// Fetcher is the POWER API surface the updater needs; *power.Client
// satisfies it.
type Fetcher interface {
	FetchDaily(ctx context.Context, req power.Request) (*series.Daily, error)
}

// Updater runs incremental update cycles.
type Updater struct {
	cfg       *config.Config
	client    Fetcher
	catalogue *stations.Catalogue
	db        *database.RunDB
	log       *logging.Logger
	deriver   *history.Deriver
	metrics   *Metrics

	// sleep is swapped out in tests to avoid real waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option adjusts an Updater.
type Option func(*Updater)

// WithDeriver overrides the date deriver, mainly to pin the clock in tests.
func WithDeriver(d *history.Deriver) Option {
	return func(u *Updater) { u.deriver = d }
}

// WithMetrics attaches Prometheus instruments.
func WithMetrics(m *Metrics) Option {
	return func(u *Updater) { u.metrics = m }
}

// WithSleep overrides the pacing/retry sleep.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(u *Updater) { u.sleep = sleep }
}

// New creates an Updater. db may be nil when no run log is wanted.
func New(cfg *config.Config, client Fetcher, catalogue *stations.Catalogue, db *database.RunDB, log *logging.Logger, opts ...Option) *Updater {
	u := &Updater{
		cfg:       cfg,
		client:    client,
		catalogue: catalogue,
		db:        db,
		log:       log,
		deriver:   history.NewDeriver(),
		sleep:     sleepCtx,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Result summarizes one update run.
type Result struct {
	RunID           string
	Start           string
	End             string
	StationsOK      int
	StationsFailed  int
	StationsSkipped int
	Merged          int
	Duration        time.Duration
}

// UpToDate reports whether the history directory already covers the derived
// end date, in which case a run would fetch nothing new.
func (u *Updater) UpToDate() (bool, error) {
	name, err := history.RandomFile(u.cfg.Data.HistoryDir(), ".csv")
	if err != nil {
		return false, err
	}
	_, _, storedEnd, err := history.ParseHistoryName(name)
	if err != nil {
		return false, err
	}

	_, end, err := u.deriver.DateRange(u.cfg.Data.HistoryDir())
	if err != nil {
		return false, err
	}
	return end == storedEnd, nil
}

// Run executes one full update cycle.
func (u *Updater) Run(ctx context.Context) (*Result, error) {
	began := time.Now()

	start, end, err := u.deriver.DateRange(u.cfg.Data.HistoryDir())
	if err != nil {
		return nil, fmt.Errorf("deriving date window: %w", err)
	}

	result := &Result{
		RunID: uuid.NewString(),
		Start: start,
		End:   end,
	}

	u.log.Info("updater", "starting run",
		logging.F("run_id", result.RunID),
		logging.F("start", start),
		logging.F("end", end))

	if u.db != nil {
		if err := u.db.BeginRun(result.RunID, start, end); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(u.cfg.Data.UpdateDir(), 0755); err != nil {
		return nil, fmt.Errorf("creating update dir: %w", err)
	}

	eligible := u.catalogue.Eligible(u.cfg.Stations.ValidStates)
	for i, st := range eligible {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		target := filepath.Join(u.cfg.Data.UpdateDir(), fmt.Sprintf("%s_%s_%s.csv", st.Code, start, end))
		if _, err := os.Stat(target); err == nil {
			result.StationsSkipped++
			u.recordFetch(result.RunID, st.Code, 0, 0, database.FetchSkipped, nil)
			continue
		}

		u.log.Debug("updater", "fetching station",
			logging.F("station", st.Code),
			logging.F("name", st.Name),
			logging.F("progress", fmt.Sprintf("%d/%d", i+1, len(eligible))))

		daily, dur, err := u.fetchWithRetry(ctx, st, start, end)
		if err != nil {
			result.StationsFailed++
			u.recordFetch(result.RunID, st.Code, 0, dur, database.FetchFailed, err)
			u.log.Error("updater", "station failed", err, logging.F("station", st.Code))
			continue
		}

		if err := daily.WriteCSVFile(target); err != nil {
			return result, err
		}
		result.StationsOK++
		u.recordFetch(result.RunID, st.Code, daily.Len(), dur, database.FetchOK, nil)

		if pacing := u.cfg.Updater.Pacing(); pacing > 0 && i < len(eligible)-1 {
			if err := u.sleep(ctx, pacing); err != nil {
				return result, err
			}
		}
	}

	merged, err := u.mergeUpdates(end)
	if err != nil {
		return result, err
	}
	result.Merged = merged

	result.Duration = time.Since(began)
	u.metrics.observeRun()
	if u.db != nil {
		if err := u.db.FinishRun(result.RunID, result.StationsOK, result.StationsFailed); err != nil {
			return result, err
		}
	}

	u.log.Info("updater", "run finished",
		logging.F("run_id", result.RunID),
		logging.F("ok", result.StationsOK),
		logging.F("failed", result.StationsFailed),
		logging.F("merged", result.Merged),
		logging.F("duration", result.Duration.Round(time.Second)))

	return result, nil
}

// fetchWithRetry downloads one station window, retrying until the
// consecutive-failure cap. An empty payload counts as a failure, matching
// the POWER API's habit of returning header-only responses under load.
func (u *Updater) fetchWithRetry(ctx context.Context, st stations.Station, start, end string) (*series.Daily, time.Duration, error) {
	var lastErr error
	began := time.Now()

	for attempt := 1; attempt <= u.cfg.Updater.MaxConsecutiveFailures; attempt++ {
		daily, err := u.client.FetchDaily(ctx, power.Request{
			Parameters: u.cfg.Power.Parameters,
			Longitude:  st.Longitude,
			Latitude:   st.Latitude,
			Start:      start,
			End:        end,
		})
		if err == nil {
			return daily, time.Since(began), nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, time.Since(began), ctx.Err()
		}
		if attempt < u.cfg.Updater.MaxConsecutiveFailures {
			u.log.Warn("updater", "fetch attempt failed",
				logging.F("station", st.Code),
				logging.F("attempt", fmt.Sprintf("%d/%d", attempt, u.cfg.Updater.MaxConsecutiveFailures)),
				logging.F("error", err))
			if serr := u.sleep(ctx, u.cfg.Updater.RetryPause()); serr != nil {
				return nil, time.Since(began), serr
			}
		}
	}

	return nil, time.Since(began), fmt.Errorf("station %s: %d consecutive failures: %w",
		st.Code, u.cfg.Updater.MaxConsecutiveFailures, lastErr)
}

// mergeUpdates folds every staged update file into its history counterpart.
// The merged file is renamed to carry the new end date; the old history file
// and the consumed update file are removed so a later run cannot replay
// stale rows over fresher data.
func (u *Updater) mergeUpdates(newEnd string) (int, error) {
	historyDir := u.cfg.Data.HistoryDir()

	updates, err := filepath.Glob(filepath.Join(u.cfg.Data.UpdateDir(), "*.csv"))
	if err != nil {
		return 0, err
	}

	merged := 0
	for _, updPath := range updates {
		code, _, _, err := history.ParseHistoryName(filepath.Base(updPath))
		if err != nil {
			u.log.Warn("updater", "skipping unrecognized update file", logging.F("file", filepath.Base(updPath)))
			continue
		}

		histMatches, err := filepath.Glob(filepath.Join(historyDir, code+"_*_*.csv"))
		if err != nil {
			return merged, err
		}
		if len(histMatches) == 0 {
			u.log.Warn("updater", "no history file for station", logging.F("station", code))
			continue
		}
		histPath := histMatches[0]

		_, origStart, _, err := history.ParseHistoryName(filepath.Base(histPath))
		if err != nil {
			return merged, err
		}

		histDaily, err := series.ReadCSVFile(histPath)
		if err != nil {
			return merged, err
		}
		updDaily, err := series.ReadCSVFile(updPath)
		if err != nil {
			return merged, err
		}

		combined, err := series.Merge(histDaily, updDaily)
		if err != nil {
			return merged, fmt.Errorf("station %s: %w", code, err)
		}

		outPath := filepath.Join(historyDir, fmt.Sprintf("%s_%s_%s.csv", code, origStart, newEnd))
		if err := combined.WriteCSVFile(outPath); err != nil {
			return merged, err
		}
		if !strings.EqualFold(histPath, outPath) {
			if err := os.Remove(histPath); err != nil {
				return merged, fmt.Errorf("removing %s: %w", histPath, err)
			}
		}
		if err := os.Remove(updPath); err != nil {
			return merged, fmt.Errorf("removing %s: %w", updPath, err)
		}

		merged++
	}

	return merged, nil
}

func (u *Updater) recordFetch(runID, code string, rows int, dur time.Duration, status string, fetchErr error) {
	u.metrics.observeFetch(status, rows, dur)
	if u.db == nil {
		return
	}
	f := database.StationFetch{
		RunID:       runID,
		StationCode: code,
		Rows:        rows,
		DurationMS:  dur.Milliseconds(),
		Status:      status,
	}
	if fetchErr != nil {
		f.Error = fetchErr.Error()
	}
	if err := u.db.RecordFetch(f); err != nil {
		u.log.Warn("updater", "run log write failed", logging.F("error", err))
	}
}
