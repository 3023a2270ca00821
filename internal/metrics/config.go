// internal/metrics/config.go
package metrics

import "github.com/solatis/tallykeeper/internal/types"

// TimeConfig controls time-bucket derivation.
type TimeConfig struct {
	// StoreHourly doubles every emitted metric: one daily plus one hourly key.
	StoreHourly bool `mapstructure:"store_hourly" json:"store_hourly"`
	// Timezone is the IANA zone name used for bucket boundaries.
	Timezone string `mapstructure:"timezone" json:"timezone"`
}

// AddValueConfig pairs a compound pattern with the field whose numeric
// payload is summed under it.
type AddValueConfig struct {
	Pattern    string `mapstructure:"pattern" json:"pattern"`
	ValueField string `mapstructure:"value_field" json:"value_field"`
}

// MappingConfig declares which event properties to track and in what
// combinations.
type MappingConfig struct {
	// Bitmap lists field names whose values are cardinality-tracked.
	Bitmap []string `mapstructure:"bitmap" json:"bitmap"`
	// Add lists '~'-joined pattern specs for count aggregation.
	Add []string `mapstructure:"add" json:"add"`
	// AddValue lists pattern/value-field pairs for sum aggregation.
	AddValue []AddValueConfig `mapstructure:"add_value" json:"add_value"`
}

// LimitsConfig bounds per-event work and output volume. All four limits
// must be positive.
type LimitsConfig struct {
	MaxFieldLength     int `mapstructure:"max_field_length" json:"max_field_length"`
	MaxValueLength     int `mapstructure:"max_value_length" json:"max_value_length"`
	MaxCombinations    int `mapstructure:"max_combinations" json:"max_combinations"`
	MaxMetricsPerEvent int `mapstructure:"max_metrics_per_event" json:"max_metrics_per_event"`
}

// Config is the declarative event-to-metrics mapping. Built once per process
// (or on hot-reload), compiled via Compile, immutable thereafter.
type Config struct {
	Time    TimeConfig    `mapstructure:"time" json:"time"`
	Mapping MappingConfig `mapstructure:"mapping" json:"mapping"`
	Limits  LimitsConfig  `mapstructure:"limits" json:"limits"`
}

// DefaultConfig returns a config with default values: daily buckets only,
// UTC, event-name counting, and the default limits.
func DefaultConfig() Config {
	return Config{
		Time: TimeConfig{
			StoreHourly: false,
			Timezone:    types.DefaultTimezone,
		},
		Mapping: MappingConfig{
			Add: []string{types.EventField},
		},
		Limits: DefaultLimits(),
	}
}

// DefaultLimits returns the default processing limits.
func DefaultLimits() LimitsConfig {
	return LimitsConfig{
		MaxFieldLength:     types.DefaultMaxFieldLength,
		MaxValueLength:     types.DefaultMaxValueLength,
		MaxCombinations:    types.DefaultMaxCombinations,
		MaxMetricsPerEvent: types.DefaultMaxMetricsPerEvent,
	}
}
