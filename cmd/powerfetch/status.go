package main

import (
	"fmt"
	"time"

	"github.com/climateops/powerfetch/internal/database"
	"github.com/climateops/powerfetch/internal/ui"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var (
		limit int
		runID string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recent update runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open()
			if err != nil {
				return err
			}
			defer db.Close()

			if runID != "" {
				return printRunDetail(db, runID)
			}
			return printRecentRuns(db, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "number of runs to show")
	cmd.Flags().StringVar(&runID, "run", "", "show per-station detail for one run ID")
	return cmd
}

func printRecentRuns(db *database.RunDB, limit int) error {
	runs, err := db.RecentRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println(ui.Dim("No update runs recorded yet."))
		return nil
	}

	fmt.Println(ui.Header(fmt.Sprintf("%-36s  %-16s  %-17s  %5s  %6s", "RUN", "STARTED", "WINDOW", "OK", "FAILED")))
	for _, run := range runs {
		window := fmt.Sprintf("%s..%s", run.StartDate, run.EndDate)
		line := fmt.Sprintf("%-36s  %-16s  %-17s  %5d  %6d",
			run.ID, run.StartedAt.Format("2006-01-02 15:04"), window,
			run.StationsOK, run.StationsFailed)

		switch {
		case run.FinishedAt == nil:
			fmt.Println(ui.Warning(line + "  (running)"))
		case run.StationsFailed > 0:
			fmt.Println(ui.Warning(line))
		default:
			fmt.Println(line)
		}
	}
	return nil
}

func printRunDetail(db *database.RunDB, runID string) error {
	fetches, err := db.RunFetches(runID)
	if err != nil {
		return err
	}
	if len(fetches) == 0 {
		fmt.Println(ui.Dim("No fetches recorded for run " + runID))
		return nil
	}

	fmt.Println(ui.Header(fmt.Sprintf("%-8s  %-8s  %6s  %9s", "STATION", "STATUS", "ROWS", "DURATION")))
	for _, f := range fetches {
		dur := time.Duration(f.DurationMS) * time.Millisecond
		line := fmt.Sprintf("%-8s  %-8s  %6d  %9s", f.StationCode, f.Status, f.Rows, dur.Round(time.Millisecond))

		switch f.Status {
		case database.FetchFailed:
			fmt.Println(ui.Error(line + "  " + f.Error))
		case database.FetchSkipped:
			fmt.Println(ui.Dim(line))
		default:
			fmt.Println(line)
		}
	}
	return nil
}
