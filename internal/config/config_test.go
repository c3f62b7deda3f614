package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://power.larc.nasa.gov/api/temporal/daily/point", cfg.Power.BaseURL)
	assert.Equal(t, "AG", cfg.Power.Community)
	assert.Equal(t, 4, cfg.Updater.MaxConsecutiveFailures)
	assert.Contains(t, cfg.Stations.ValidStates, "SP")
	assert.Equal(t, "0 6 * * *", cfg.Daemon.Schedule)
}

func TestLoadPathMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadPath(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Power.BaseURL, cfg.Power.BaseURL)
}

func TestLoadPathOverridesDefaults(t *testing.T) {
	content := `
[data]
base_path = "/srv/climate"

[power]
timeout_seconds = 15
parameters = ["T2M"]

[updater]
max_consecutive_failures = 2
`
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadPath(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/climate", cfg.Data.BasePath)
	assert.Equal(t, 15, cfg.Power.TimeoutSeconds)
	assert.Equal(t, []string{"T2M"}, cfg.Power.Parameters)
	assert.Equal(t, 2, cfg.Updater.MaxConsecutiveFailures)
	// Untouched sections keep their defaults.
	assert.Equal(t, "AG", cfg.Power.Community)
	assert.Equal(t, 40, cfg.Updater.RetryPauseSeconds)
}

func TestDataDirs(t *testing.T) {
	d := DataConfig{BasePath: "/srv/climate"}
	assert.Equal(t, filepath.Join("/srv/climate", "history"), d.HistoryDir())
	assert.Equal(t, filepath.Join("/srv/climate", "update"), d.UpdateDir())
	assert.Equal(t, filepath.Join("/srv/climate", "treated_data"), d.TreatedDir())
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.Error(t, cfg.Validate(), "base_path unset must fail")

	cfg.Data.BasePath = "/srv/climate"
	require.NoError(t, cfg.Validate())

	cfg.Power.Parameters = nil
	require.Error(t, cfg.Validate())
}

func TestToTOMLRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Data.BasePath = "/srv/climate"
	cfg.Power.Parameters = []string{"IMERG_PRECTOT"}

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(cfg.ToTOML()), 0644))

	got, err := LoadPath(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/climate", got.Data.BasePath)
	assert.Equal(t, []string{"IMERG_PRECTOT"}, got.Power.Parameters)
	assert.Equal(t, cfg.Daemon.Schedule, got.Daemon.Schedule)
}
