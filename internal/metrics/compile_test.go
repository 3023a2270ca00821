// internal/metrics/compile_test.go
package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/solatis/tallykeeper/internal/types"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Mapping = MappingConfig{
		Bitmap: []string{"ip"},
		Add:    []string{"event", "event~offer"},
		AddValue: []AddValueConfig{
			{Pattern: "event", ValueField: "amount"},
		},
	}
	return cfg
}

func TestCompile_Valid(t *testing.T) {
	compiled, err := Compile(validConfig())
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	if len(compiled.BitmapFields) != 1 || compiled.BitmapFields[0] != "ip" {
		t.Errorf("BitmapFields = %v, want [ip]", compiled.BitmapFields)
	}
	if len(compiled.AddPatterns) != 2 {
		t.Fatalf("len(AddPatterns) = %d, want 2", len(compiled.AddPatterns))
	}
	if compiled.AddPatterns[1].Key != "event~offer" {
		t.Errorf("AddPatterns[1].Key = %q, want %q", compiled.AddPatterns[1].Key, "event~offer")
	}
	if len(compiled.AddValueSpecs) != 1 {
		t.Fatalf("len(AddValueSpecs) = %d, want 1", len(compiled.AddValueSpecs))
	}
	if compiled.AddValueSpecs[0].ValueField != "amount" {
		t.Errorf("ValueField = %q, want %q", compiled.AddValueSpecs[0].ValueField, "amount")
	}
}

func TestCompile_PatternCanonicalization(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mapping.Add = []string{"offer~event"}

	compiled, err := Compile(cfg)
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	p := compiled.AddPatterns[0]
	if p.Key != "event~offer" {
		t.Errorf("Key = %q, want %q (lexicographic canonicalization)", p.Key, "event~offer")
	}
	if p.Fields[0] != "event" || p.Fields[1] != "offer" {
		t.Errorf("Fields = %v, want [event offer]", p.Fields)
	}
}

func TestCompile_EquivalentPatternsCollapse(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mapping.Add = []string{"event~offer", "offer~event", "Event~Offer"}

	compiled, err := Compile(cfg)
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	if len(compiled.AddPatterns) != 1 {
		t.Fatalf("len(AddPatterns) = %d, want 1 (permutations denote the same pattern)", len(compiled.AddPatterns))
	}
}

func TestCompile_FirstAppearanceOrderPreserved(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mapping.Add = []string{"zone", "event~offer", "country"}

	compiled, err := Compile(cfg)
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	want := []string{"zone", "event~offer", "country"}
	for i, p := range compiled.AddPatterns {
		if p.Key != want[i] {
			t.Errorf("AddPatterns[%d].Key = %q, want %q", i, p.Key, want[i])
		}
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "unknown timezone",
			mutate: func(c *Config) { c.Time.Timezone = "Mars/Olympus_Mons" },
		},
		{
			name:   "empty pattern",
			mutate: func(c *Config) { c.Mapping.Add = []string{""} },
		},
		{
			name:   "pattern with empty component",
			mutate: func(c *Config) { c.Mapping.Add = []string{"event~"} },
		},
		{
			name:   "duplicate field within pattern",
			mutate: func(c *Config) { c.Mapping.Add = []string{"event~event"} },
		},
		{
			name:   "field name with delimiter",
			mutate: func(c *Config) { c.Mapping.Bitmap = []string{"bad:name"} },
		},
		{
			name:   "non-positive limit",
			mutate: func(c *Config) { c.Limits.MaxMetricsPerEvent = 0 },
		},
		{
			name:   "negative limit",
			mutate: func(c *Config) { c.Limits.MaxCombinations = -1 },
		},
		{
			name: "value field inside its own pattern",
			mutate: func(c *Config) {
				c.Mapping.AddValue = []AddValueConfig{{Pattern: "amount~event", ValueField: "amount"}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			_, err := Compile(cfg)
			if !errors.Is(err, types.ErrConfig) {
				t.Errorf("Compile() error = %v, want ErrConfig", err)
			}
		})
	}
}

func TestCompile_DefaultTimezone(t *testing.T) {
	cfg := validConfig()
	cfg.Time.Timezone = ""

	compiled, err := Compile(cfg)
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}
	if compiled.Location != time.UTC && compiled.Location.String() != "UTC" {
		t.Errorf("Location = %v, want UTC", compiled.Location)
	}
}
