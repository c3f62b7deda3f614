package main

import (
	"fmt"

	"github.com/climateops/powerfetch/internal/config"
	"github.com/climateops/powerfetch/internal/paths"
	"github.com/climateops/powerfetch/internal/ui"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the powerfetch configuration",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var basePath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.ConfigExists() {
				path, _ := paths.ConfigPath()
				return fmt.Errorf("config already exists at %s", path)
			}

			cfg := config.DefaultConfig()
			cfg.Data.BasePath = basePath
			if err := cfg.Save(); err != nil {
				return err
			}

			path, _ := paths.ConfigPath()
			fmt.Println(ui.Success("Wrote " + path))
			if basePath == "" {
				fmt.Println(ui.Warning("data.base_path is empty; edit the config before running updates."))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&basePath, "base-path", "", "dataset root to record in the config")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fmt.Print(cfg.ToTOML())
			return nil
		},
	}
}
