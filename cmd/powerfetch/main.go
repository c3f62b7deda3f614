package main

import (
	"fmt"
	"os"

	"github.com/climateops/powerfetch/internal/config"
	"github.com/climateops/powerfetch/internal/logging"
	"github.com/spf13/cobra"
)

var (
	version = "dev" // Set by build flags: -ldflags="-X main.version=1.0.0"
	cfgFile string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "powerfetch",
		Short: "Incremental NASA POWER climate data downloader",
		Long: `powerfetch keeps a local archive of daily NASA POWER observations for
INMET weather stations up to date.

It derives the next download window from the files already on disk, fetches
the missing days per station, folds them into the consolidated history and
builds daily state-average tables from the result.`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/powerfetch/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newDatesCmd())
	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newAggregateCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newDaemonCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration, honoring the --config flag.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadPath(cfgFile)
	}
	return config.Load()
}

// newLogger builds the logger from config, bumping the level when --verbose
// is set.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	if verbose {
		log.SetLevel(logging.LevelDebug)
	}
	return log, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the powerfetch version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("powerfetch %s\n", version)
		},
	}
}
