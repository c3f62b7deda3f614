package main

import (
	"fmt"
	"path/filepath"

	"github.com/climateops/powerfetch/internal/aggregate"
	"github.com/climateops/powerfetch/internal/stations"
	"github.com/spf13/cobra"
)

func newAggregateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "aggregate",
		Short: "Build daily state-average tables from the history archive",
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

			written, err := aggregate.New(cfg, catalogue, log).Run()
			if err != nil {
				return err
			}

			for _, path := range written {
				fmt.Printf("Exported %s\n", filepath.Base(path))
			}
			return nil
		},
	}
}
