package main

import (
	"github.com/climateops/powerfetch/internal/aggregate"
	"github.com/climateops/powerfetch/internal/daemon"
	"github.com/climateops/powerfetch/internal/database"
	"github.com/climateops/powerfetch/internal/power"
	"github.com/climateops/powerfetch/internal/stations"
	"github.com/climateops/powerfetch/internal/updater"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func newDaemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run powerfetch as a background service",
		Long: `Daemon schedules update runs via the configured cron expression, watches
the history directory to keep aggregate tables fresh, and serves /healthz,
/status and /metrics on the configured address.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Close()

			catalogue, err := stations.Load(cfg.Data.BasePath)
			if err != nil {
				return err
			}

			db, err := database.Open()
			if err != nil {
				return err
			}
			defer db.Close()

			registry := prometheus.NewRegistry()
			registry.MustRegister(collectors.NewGoCollector())
			registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			client := power.NewClient(power.Config{
				BaseURL:   cfg.Power.BaseURL,
				Community: cfg.Power.Community,
				Timeout:   cfg.Power.Timeout(),
			})

			upd := updater.New(cfg, client, catalogue, db, log,
				updater.WithMetrics(updater.NewMetrics(registry)))
			agg := aggregate.New(cfg, catalogue, log)

			return daemon.New(cfg, upd, agg, db, log, registry).Start(cmd.Context())
		},
	}
}
