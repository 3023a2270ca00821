// internal/metrics/engine.go
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/solatis/tallykeeper/internal/types"
)

// Engine binds a compiled config to the processing pipeline. Processing is
// re-entrant: the compiled config is read-only, so any number of goroutines
// may call Process concurrently. Hot-reload swaps the config atomically;
// in-flight events continue with the config they began with.
type Engine struct {
	compiled atomic.Pointer[Compiled]
}

// NewEngine compiles the config and returns a ready engine.
func NewEngine(cfg Config) (*Engine, error) {
	cc, err := Compile(cfg)
	if err != nil {
		return nil, err
	}
	en := &Engine{}
	en.compiled.Store(cc)
	return en, nil
}

// Reload compiles and atomically swaps in a new config. On compile failure
// the current config stays active.
func (en *Engine) Reload(cfg Config) error {
	cc, err := Compile(cfg)
	if err != nil {
		return err
	}
	en.compiled.Store(cc)
	return nil
}

// Compiled returns the active compiled config.
func (en *Engine) Compiled() *Compiled {
	return en.compiled.Load()
}

// Process ingests a raw JSON event and returns its command bag.
func (en *Engine) Process(raw []byte, at time.Time) (Result, error) {
	cc := en.compiled.Load()
	ev, err := ParseEvent(raw, cc.Limits)
	if err != nil {
		return Result{}, err
	}
	return Generate(cc, ev, at)
}

// ProcessEvent generates commands for an already-constructed event.
func (en *Engine) ProcessEvent(ev *types.Event, at time.Time) (Result, error) {
	return Generate(en.compiled.Load(), ev, at)
}
