// Package config provides configuration management for tallykeeper services.
//
// The declarative metrics mapping itself lives in internal/metrics; this
// package layers file and environment loading on top of it for the CLI and
// any embedding service.
package config

import (
	"fmt"
	"strings"

	"github.com/solatis/tallykeeper/internal/metrics"
	"github.com/spf13/viper"
)

// LoadConfig loads the declarative metrics config using viper.
// Environment > config file > defaults precedence; environment variables
// use the TALLY_ prefix (e.g. TALLY_TIME_TIMEZONE).
//
// The loaded config is compiled once for validation before being returned,
// so a successful load guarantees a later Compile cannot fail.
func LoadConfig(configPath string) (metrics.Config, error) {
	v := viper.New()

	defaults := metrics.DefaultConfig()
	v.SetDefault("time.store_hourly", defaults.Time.StoreHourly)
	v.SetDefault("time.timezone", defaults.Time.Timezone)
	v.SetDefault("mapping.bitmap", defaults.Mapping.Bitmap)
	v.SetDefault("mapping.add", defaults.Mapping.Add)
	v.SetDefault("limits.max_field_length", defaults.Limits.MaxFieldLength)
	v.SetDefault("limits.max_value_length", defaults.Limits.MaxValueLength)
	v.SetDefault("limits.max_combinations", defaults.Limits.MaxCombinations)
	v.SetDefault("limits.max_metrics_per_event", defaults.Limits.MaxMetricsPerEvent)

	v.SetEnvPrefix("TALLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return metrics.Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg metrics.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return metrics.Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if _, err := metrics.Compile(cfg); err != nil {
		return metrics.Config{}, err
	}

	return cfg, nil
}
