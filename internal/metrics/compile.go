// internal/metrics/compile.go
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/solatis/tallykeeper/internal/types"
)

/*
 * Config compilation and validation.
 *
 * Compiles the declarative Config to Compiled with sanitized field names,
 * canonicalized patterns, and cached rendered pattern strings so per-event
 * work is O(event size + emitted commands).
 *
 * Compilation workflow:
 *   1. Validate limits (all positive) and resolve the timezone
 *   2. Sanitize every configured field name
 *   3. Parse pattern specs, sort fields lexicographically (canonical form)
 *   4. Deduplicate equivalent entries, preserving first-appearance order
 *
 * Why compile-time validation: enforcing charset, pattern, and limit rules
 * during compilation moves error detection to config creation time rather
 * than event time. Event processing then assumes a well-formed table.
 *
 * Why sorted field tuples: sorting is the canonicalization rule. The specs
 * "event~offer" and "offer~event" denote the same pattern and compile to one
 * entry producing byte-identical keys.
 */

// Pattern is a canonicalized compound key: field names lexicographically
// sorted, with the rendered '~'-joined form cached.
type Pattern struct {
	Fields []string
	// Key is the cached canonical pattern string, e.g. "event~offer".
	Key string
}

// AddValueSpec pairs a compiled pattern with the field whose numeric payload
// is summed under it.
type AddValueSpec struct {
	Pattern    Pattern
	ValueField string
}

// Compiled is the read-only lookup table queried by the generator. Safe to
// share by reference across goroutines.
type Compiled struct {
	BitmapFields  []string
	AddPatterns   []Pattern
	AddValueSpecs []AddValueSpec

	Location    *time.Location
	StoreHourly bool
	Limits      LimitsConfig
}

// Compile validates the declarative config and precomputes the lookup
// structures. Atomic: either a fully valid Compiled is returned or none is.
// All validation failures surface as ErrConfig with a precise reason.
func Compile(cfg Config) (*Compiled, error) {
	if err := validateLimits(cfg.Limits); err != nil {
		return nil, err
	}

	tz := cfg.Time.Timezone
	if tz == "" {
		tz = types.DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", tz, types.ErrConfig)
	}

	compiled := &Compiled{
		Location:    loc,
		StoreHourly: cfg.Time.StoreHourly,
		Limits:      cfg.Limits,
	}

	seenBitmap := make(map[string]bool)
	for _, raw := range cfg.Mapping.Bitmap {
		name, err := compileFieldName(raw, cfg.Limits.MaxFieldLength)
		if err != nil {
			return nil, err
		}
		if seenBitmap[name] {
			continue
		}
		seenBitmap[name] = true
		compiled.BitmapFields = append(compiled.BitmapFields, name)
	}

	seenAdd := make(map[string]bool)
	for _, spec := range cfg.Mapping.Add {
		p, err := compilePattern(spec, cfg.Limits.MaxFieldLength)
		if err != nil {
			return nil, err
		}
		if seenAdd[p.Key] {
			// "event~offer" and "offer~event" collapse to one entry
			continue
		}
		seenAdd[p.Key] = true
		compiled.AddPatterns = append(compiled.AddPatterns, p)
	}

	seenAddValue := make(map[string]bool)
	for _, av := range cfg.Mapping.AddValue {
		p, err := compilePattern(av.Pattern, cfg.Limits.MaxFieldLength)
		if err != nil {
			return nil, err
		}
		valueField, err := compileFieldName(av.ValueField, cfg.Limits.MaxFieldLength)
		if err != nil {
			return nil, err
		}
		for _, f := range p.Fields {
			if f == valueField {
				return nil, fmt.Errorf("add_value field %q appears in its own pattern %q: %w", valueField, p.Key, types.ErrConfig)
			}
		}
		dedup := p.Key + string(types.KeyDelimiter) + valueField
		if seenAddValue[dedup] {
			continue
		}
		seenAddValue[dedup] = true
		compiled.AddValueSpecs = append(compiled.AddValueSpecs, AddValueSpec{Pattern: p, ValueField: valueField})
	}

	return compiled, nil
}

// validateLimits rejects non-positive limits.
func validateLimits(l LimitsConfig) error {
	checks := []struct {
		name  string
		value int
	}{
		{"max_field_length", l.MaxFieldLength},
		{"max_value_length", l.MaxValueLength},
		{"max_combinations", l.MaxCombinations},
		{"max_metrics_per_event", l.MaxMetricsPerEvent},
	}
	for _, c := range checks {
		if c.value <= 0 {
			return fmt.Errorf("limit %s must be positive, got %d: %w", c.name, c.value, types.ErrConfig)
		}
	}
	return nil
}

// compileFieldName sanitizes a configured field name. Any sanitization
// failure, including emptiness, is a config error here (unlike ingest,
// where empty names drop the field).
func compileFieldName(raw string, maxLen int) (string, error) {
	name, ok, err := SanitizeFieldName(raw, maxLen)
	if err != nil {
		return "", fmt.Errorf("field name %q: %v: %w", raw, err, types.ErrConfig)
	}
	if !ok {
		return "", fmt.Errorf("empty field name: %w", types.ErrConfig)
	}
	return name, nil
}

// compilePattern parses a '~'-joined pattern spec into canonical form:
// sanitized fields, lexicographically sorted, duplicates rejected.
func compilePattern(spec string, maxLen int) (Pattern, error) {
	if strings.TrimSpace(spec) == "" {
		return Pattern{}, fmt.Errorf("empty pattern: %w", types.ErrConfig)
	}

	parts := strings.Split(spec, string(types.PatternSeparator))
	fields := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))

	for _, part := range parts {
		name, err := compileFieldName(part, maxLen)
		if err != nil {
			return Pattern{}, fmt.Errorf("pattern %q: %w", spec, err)
		}
		if seen[name] {
			return Pattern{}, fmt.Errorf("pattern %q repeats field %q: %w", spec, name, types.ErrConfig)
		}
		seen[name] = true
		fields = append(fields, name)
	}

	sort.Strings(fields)

	return Pattern{
		Fields: fields,
		Key:    strings.Join(fields, string(types.PatternSeparator)),
	}, nil
}
