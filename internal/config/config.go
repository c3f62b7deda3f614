package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/climateops/powerfetch/internal/logging"
	"github.com/climateops/powerfetch/internal/paths"
	"github.com/spf13/viper"
)

// DataConfig locates the on-disk dataset.
type DataConfig struct {
	// BasePath is the dataset root; metadata/, history/, update/ and
	// treated_data/ live underneath it.
	BasePath string `mapstructure:"base_path"`
}

// HistoryDir returns the consolidated per-station CSV directory.
func (d DataConfig) HistoryDir() string { return filepath.Join(d.BasePath, "history") }

// UpdateDir returns the staging directory for freshly fetched CSVs.
func (d DataConfig) UpdateDir() string { return filepath.Join(d.BasePath, "update") }

// TreatedDir returns the aggregated output directory.
func (d DataConfig) TreatedDir() string { return filepath.Join(d.BasePath, "treated_data") }

// PowerConfig holds NASA POWER API settings.
type PowerConfig struct {
	BaseURL        string   `mapstructure:"base_url"`
	Community      string   `mapstructure:"community"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
	Parameters     []string `mapstructure:"parameters"`
}

// Timeout returns the HTTP timeout as a duration.
func (p PowerConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// StationsConfig controls which catalogue stations are fetched.
type StationsConfig struct {
	ValidStates []string `mapstructure:"valid_states"`
}

// UpdaterConfig tunes the incremental download loop.
type UpdaterConfig struct {
	// MaxConsecutiveFailures is the per-station failure cap before the
	// station is skipped for the run.
	MaxConsecutiveFailures int `mapstructure:"max_consecutive_failures"`
	// RetryPauseSeconds is the wait between failed attempts.
	RetryPauseSeconds int `mapstructure:"retry_pause_seconds"`
	// PacingSeconds is the base wait between stations, keeping request
	// rates polite toward the POWER API.
	PacingSeconds int `mapstructure:"pacing_seconds"`
}

// RetryPause returns the inter-attempt pause as a duration.
func (u UpdaterConfig) RetryPause() time.Duration {
	return time.Duration(u.RetryPauseSeconds) * time.Second
}

// Pacing returns the inter-station pause as a duration.
func (u UpdaterConfig) Pacing() time.Duration {
	return time.Duration(u.PacingSeconds) * time.Second
}

// DaemonConfig controls the background service.
type DaemonConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Schedule is a standard cron expression for update runs.
	Schedule string `mapstructure:"schedule"`
	// HTTPAddr serves /healthz, /status and /metrics.
	HTTPAddr string `mapstructure:"http_addr"`
	// WatchHistory re-aggregates when history files change.
	WatchHistory bool `mapstructure:"watch_history"`
}

// Config is the full powerfetch configuration.
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Power    PowerConfig    `mapstructure:"power"`
	Stations StationsConfig `mapstructure:"stations"`
	Updater  UpdaterConfig  `mapstructure:"updater"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
	Logging  logging.Config `mapstructure:"logging"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			BasePath: "",
		},
		Power: PowerConfig{
			BaseURL:        "https://power.larc.nasa.gov/api/temporal/daily/point",
			Community:      "AG",
			TimeoutSeconds: 60,
			Parameters:     []string{"IMERG_PRECTOT", "T2M"},
		},
		Stations: StationsConfig{
			ValidStates: []string{"DF", "GO", "MG", "MS", "MT", "PR", "RJ", "RS", "SC", "SP"},
		},
		Updater: UpdaterConfig{
			MaxConsecutiveFailures: 4,
			RetryPauseSeconds:      40,
			PacingSeconds:          3,
		},
		Daemon: DaemonConfig{
			Enabled:      false,
			Schedule:     "0 6 * * *",
			HTTPAddr:     ":8787",
			WatchHistory: true,
		},
		Logging: logging.Config{
			Level:      "info",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
	}
}

// Load reads the config file if present, layered over defaults.
func Load() (*Config, error) {
	configPath, err := paths.ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("unable to get config path: %w", err)
	}
	return LoadPath(configPath)
}

// LoadPath reads a specific config file, layered over defaults. A missing
// file is not an error; defaults are returned.
func LoadPath(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)

	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate checks settings that every command depends on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Data.BasePath) == "" {
		return fmt.Errorf("data.base_path is not set; run 'powerfetch config init'")
	}
	if len(c.Power.Parameters) == 0 {
		return fmt.Errorf("power.parameters must list at least one parameter")
	}
	if c.Updater.MaxConsecutiveFailures < 1 {
		return fmt.Errorf("updater.max_consecutive_failures must be >= 1")
	}
	return nil
}

// Save writes the configuration to the default location.
func (c *Config) Save() error {
	configFile, err := paths.ConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("unable to create config dir: %w", err)
	}

	return os.WriteFile(configFile, []byte(c.ToTOML()), 0644)
}

// ConfigExists reports whether a config file is present.
func ConfigExists() bool {
	path, err := paths.ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func tomlStringList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// ToTOML renders the config as an annotated TOML document.
func (c *Config) ToTOML() string {
	return fmt.Sprintf(`# powerfetch configuration
# Generated by: powerfetch config init

[data]
# Dataset root. Expects metadata/catalogue.csv (and optionally coastal.csv)
# underneath; history/, update/ and treated_data/ are created as needed.
base_path = %q

[power]
base_url = %q
community = %q
timeout_seconds = %d
# POWER parameter codes to request per station.
parameters = %s

[stations]
# State abbreviations to include; coastal stations are always excluded.
valid_states = %s

[updater]
max_consecutive_failures = %d
retry_pause_seconds = %d
pacing_seconds = %d

[daemon]
enabled = %v
# Standard cron expression for scheduled update runs.
schedule = %q
http_addr = %q
watch_history = %v

[logging]
level = %q
file = %q
max_size_mb = %d
max_backups = %d
`,
		c.Data.BasePath,
		c.Power.BaseURL, c.Power.Community, c.Power.TimeoutSeconds,
		tomlStringList(c.Power.Parameters),
		tomlStringList(c.Stations.ValidStates),
		c.Updater.MaxConsecutiveFailures, c.Updater.RetryPauseSeconds, c.Updater.PacingSeconds,
		c.Daemon.Enabled, c.Daemon.Schedule, c.Daemon.HTTPAddr, c.Daemon.WatchHistory,
		c.Logging.Level, c.Logging.File, c.Logging.MaxSizeMB, c.Logging.MaxBackups,
	)
}
