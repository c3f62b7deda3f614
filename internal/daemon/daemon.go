// Package daemon runs powerfetch as a background service: scheduled update
// runs, history watching and a small HTTP surface.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/climateops/powerfetch/internal/aggregate"
	"github.com/climateops/powerfetch/internal/config"
	"github.com/climateops/powerfetch/internal/database"
	"github.com/climateops/powerfetch/internal/logging"
	"github.com/climateops/powerfetch/internal/updater"
	"github.com/climateops/powerfetch/internal/watcher"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
)

// Daemon wires the scheduler, watcher and HTTP server together.
type Daemon struct {
	cfg        *config.Config
	updater    *updater.Updater
	aggregator *aggregate.Aggregator
	db         *database.RunDB
	log        *logging.Logger
	registry   *prometheus.Registry
	cron       *cron.Cron
}

// New creates a Daemon.
func New(cfg *config.Config, upd *updater.Updater, agg *aggregate.Aggregator, db *database.RunDB, log *logging.Logger, registry *prometheus.Registry) *Daemon {
	return &Daemon{
		cfg:        cfg,
		updater:    upd,
		aggregator: agg,
		db:         db,
		log:        log,
		registry:   registry,
		cron:       cron.New(),
	}
}

// Start runs the daemon until a signal arrives or ctx is cancelled.
func (d *Daemon) Start(ctx context.Context) error {
	if _, err := cron.ParseStandard(d.cfg.Daemon.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", d.cfg.Daemon.Schedule, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if _, err := d.cron.AddFunc(d.cfg.Daemon.Schedule, func() { d.runUpdate(ctx) }); err != nil {
		return fmt.Errorf("scheduling update runs: %w", err)
	}
	d.cron.Start()
	defer d.cron.Stop()
	d.log.Info("daemon", "update schedule active", logging.F("schedule", d.cfg.Daemon.Schedule))

	errChan := make(chan error, 2)

	server := &http.Server{
		Addr:    d.cfg.Daemon.HTTPAddr,
		Handler: NewRouter(d.db, d.registry),
	}
	go func() {
		d.log.Info("daemon", "http server listening", logging.F("addr", d.cfg.Daemon.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server: %w", err)
		}
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		server.Shutdown(shutdownCtx)
	}()

	if d.cfg.Daemon.WatchHistory {
		w, err := watcher.New(d.cfg.Data.HistoryDir(), d.log, func() { d.runAggregate() })
		if err != nil {
			return fmt.Errorf("starting history watcher: %w", err)
		}
		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errChan <- fmt.Errorf("history watcher: %w", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		d.log.Info("daemon", "shutting down", logging.F("signal", sig))
		return nil
	case err := <-errChan:
		return err
	case <-ctx.Done():
		d.log.Info("daemon", "context cancelled")
		return ctx.Err()
	}
}

func (d *Daemon) runUpdate(ctx context.Context) {
	current, err := d.updater.UpToDate()
	if err != nil {
		d.log.Error("daemon", "freshness check failed", err)
		return
	}
	if current {
		d.log.Info("daemon", "history already up to date")
		return
	}

	if _, err := d.updater.Run(ctx); err != nil {
		d.log.Error("daemon", "scheduled update failed", err)
	}
}

func (d *Daemon) runAggregate() {
	d.log.Info("daemon", "history changed, rebuilding aggregates")
	if _, err := d.aggregator.Run(); err != nil {
		d.log.Error("daemon", "aggregation failed", err)
	}
}
