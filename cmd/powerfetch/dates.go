package main

import (
	"fmt"

	"github.com/climateops/powerfetch/internal/history"
	"github.com/spf13/cobra"
)

func newDatesCmd() *cobra.Command {
	var historyDir string

	cmd := &cobra.Command{
		Use:   "dates",
		Short: "Show the date window the next update run would fetch",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := historyDir
			if dir == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				if err := cfg.Validate(); err != nil {
					return err
				}
				dir = cfg.Data.HistoryDir()
			}

			start, end, err := history.NewDeriver().DateRange(dir)
			if err != nil {
				return err
			}

			fmt.Printf("start: %s\nend:   %s\n", start, end)
			return nil
		},
	}

	cmd.Flags().StringVar(&historyDir, "history", "", "history directory (default: <base_path>/history from config)")
	return cmd
}
