package main

import (
	"fmt"
	"time"

	"github.com/climateops/powerfetch/internal/database"
	"github.com/climateops/powerfetch/internal/power"
	"github.com/climateops/powerfetch/internal/stations"
	"github.com/climateops/powerfetch/internal/ui"
	"github.com/climateops/powerfetch/internal/updater"
	"github.com/spf13/cobra"
)

func newUpdateCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Run one incremental update of the history archive",
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

			client := power.NewClient(power.Config{
				BaseURL:   cfg.Power.BaseURL,
				Community: cfg.Power.Community,
				Timeout:   cfg.Power.Timeout(),
			})

			upd := updater.New(cfg, client, catalogue, db, log)

			if !force {
				current, err := upd.UpToDate()
				if err != nil {
					return err
				}
				if current {
					fmt.Println(ui.Success("History is already up to date."))
					return nil
				}
			}

			result, err := upd.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("%s %s..%s: %d ok, %d failed, %d skipped, %d merged (%s)\n",
				ui.Success("Update complete"),
				result.Start, result.End,
				result.StationsOK, result.StationsFailed, result.StationsSkipped,
				result.Merged, result.Duration.Round(time.Second))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "run even when the archive looks current")
	return cmd
}
