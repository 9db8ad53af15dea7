package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alejandrodnm/wattcast/config"
	"github.com/alejandrodnm/wattcast/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Europe/Stockholm", cfg.Tibber.Timezone)
	assert.Equal(t, 168, cfg.Tibber.ChunkHours)
	assert.Equal(t, 720, cfg.Tibber.LastHours)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "raw", cfg.Storage.Dataset)
	assert.Equal(t, 60, cfg.Backtest.TrainDays)
	assert.Equal(t, []int{24, 168}, cfg.Backtest.SeasonHours)
	assert.Equal(t, 3, cfg.Monthly.Horizon)
	assert.Equal(t, 6, cfg.Monthly.RollingWindow)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLValues(t *testing.T) {
	path := writeYAML(t, `
tibber:
  home_id: abc
  chunk_hours: 24
backtest:
  train_days: 30
  expanding: true
  season_hours: [24]
monthly:
  rolling_window: 3
log:
  format: json
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "abc", cfg.Tibber.HomeID)
	assert.Equal(t, 24, cfg.Tibber.ChunkHours)
	assert.Equal(t, 30, cfg.Backtest.TrainDays)
	assert.True(t, cfg.Backtest.Expanding)
	assert.Equal(t, []int{24}, cfg.Backtest.SeasonHours)
	assert.Equal(t, 3, cfg.Monthly.RollingWindow)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeYAML(t, "tibber:\n  chunk_hours: 24\n")
	t.Setenv("TIBBER_CHUNK_HOURS", "48")
	t.Setenv("TIBBER_TOKEN", "secret")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/energy")
	t.Setenv("MONTHLY_FORECAST_HORIZON", "6")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 48, cfg.Tibber.ChunkHours)
	assert.Equal(t, "secret", cfg.Tibber.Token)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "postgres://u:p@localhost/energy", cfg.Storage.DSN)
	assert.Equal(t, 6, cfg.Monthly.Horizon)
}

func TestLoad_InvalidEnvInt(t *testing.T) {
	t.Setenv("BACKTEST_STEP_DAYS", "seven")
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := config.Load(writeYAML(t, "tibber: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"negative train days", func(c *config.Config) { c.Backtest.TrainDays = -1 }},
		{"negative horizon", func(c *config.Config) { c.Monthly.Horizon = -3 }},
		{"zero season", func(c *config.Config) { c.Backtest.SeasonHours = []int{24, 0} }},
		{"unknown driver", func(c *config.Config) { c.Storage.Driver = "mysql" }},
		{"unknown timezone", func(c *config.Config) { c.Tibber.Timezone = "Mars/Olympus" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), domain.ErrInvalidParameter)
		})
	}
}
