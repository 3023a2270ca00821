package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/solatis/tallykeeper/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tallykeeper.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.False(t, cfg.Time.StoreHourly)
	assert.Equal(t, "UTC", cfg.Time.Timezone)
	assert.Equal(t, []string{"event"}, cfg.Mapping.Add)
	assert.Equal(t, types.DefaultMaxFieldLength, cfg.Limits.MaxFieldLength)
	assert.Equal(t, types.DefaultMaxMetricsPerEvent, cfg.Limits.MaxMetricsPerEvent)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
time:
  store_hourly: true
  timezone: America/New_York
mapping:
  bitmap:
    - ip
  add:
    - event
    - event~offer
  add_value:
    - pattern: event
      value_field: amount
limits:
  max_metrics_per_event: 200
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.Time.StoreHourly)
	assert.Equal(t, "America/New_York", cfg.Time.Timezone)
	assert.Equal(t, []string{"ip"}, cfg.Mapping.Bitmap)
	assert.Equal(t, []string{"event", "event~offer"}, cfg.Mapping.Add)
	require.Len(t, cfg.Mapping.AddValue, 1)
	assert.Equal(t, "event", cfg.Mapping.AddValue[0].Pattern)
	assert.Equal(t, "amount", cfg.Mapping.AddValue[0].ValueField)
	assert.Equal(t, 200, cfg.Limits.MaxMetricsPerEvent)
	// Unset limits keep defaults
	assert.Equal(t, types.DefaultMaxValueLength, cfg.Limits.MaxValueLength)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("TALLY_TIME_TIMEZONE", "Europe/Amsterdam")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "Europe/Amsterdam", cfg.Time.Timezone)
}

func TestLoadConfig_InvalidTimezone(t *testing.T) {
	path := writeConfig(t, `
time:
  timezone: Mars/Olympus_Mons
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrConfig)
}

func TestLoadConfig_InvalidPattern(t *testing.T) {
	path := writeConfig(t, `
mapping:
  add:
    - event~event
`)

	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, types.ErrConfig)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
