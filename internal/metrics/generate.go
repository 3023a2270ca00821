// internal/metrics/generate.go
package metrics

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/solatis/tallykeeper/internal/types"
)

/*
 * Metric generation.
 *
 * Drives the composer across every configured metric and emits the final
 * command bag for one event. Single-threaded per event, fully re-entrant:
 * the compiled config is read-only, all mutable state lives in the local
 * emitter.
 *
 * Emission order is deterministic: bitmap metrics in config order, then
 * add metrics in compiled-pattern order, then add-value metrics in
 * compiled-spec order; within each metric, daily precedes hourly.
 *
 * Deduplication: redundant (kind, key, member) records within one event
 * collapse to one; colliding IncrementBy payloads are summed. The dedup
 * index is keyed on a 64-bit xxhash fingerprint of the record identity,
 * which at per-event cardinality (bounded by max_metrics_per_event) makes
 * accidental collision odds negligible.
 *
 * Atomicity: output accumulates in the local buffer and is returned
 * wholesale on success. ErrLimitExceeded discards all partial output so
 * the caller observes all-or-nothing emission per event.
 */

// Result carries the command bag for one event plus per-kind metric counts
// (distinct metrics before bucket fan-out), mirroring what a caller needs
// for summary output.
type Result struct {
	Commands []types.Command

	BitmapMetrics   int
	AddMetrics      int
	AddValueMetrics int
}

// Generate transforms one event at the given instant into its command bag.
func Generate(cc *Compiled, e *types.Event, at time.Time) (Result, error) {
	buckets := ComputeBuckets(at, cc.Location, cc.StoreHourly).each()

	em := emitter{
		index: make(map[uint64]int),
		limit: cc.Limits.MaxMetricsPerEvent,
	}
	res := Result{}

	for _, field := range cc.BitmapFields {
		element, ok := composeElement(field, e)
		if !ok {
			continue
		}
		res.BitmapMetrics++
		for _, b := range buckets {
			if err := em.emit(types.Command{
				Kind:   types.CmdBitmap,
				Key:    encodeBitmapKey(b, field),
				Member: element,
			}); err != nil {
				return Result{}, err
			}
		}
	}

	for _, p := range cc.AddPatterns {
		values, ok := composeValues(p, e)
		if !ok {
			continue
		}
		if err := checkCombinations(p, cc.Limits.MaxCombinations); err != nil {
			return Result{}, err
		}
		res.AddMetrics++
		for _, b := range buckets {
			if err := em.emit(types.Command{
				Kind:   types.CmdIncrement,
				Key:    encodeAddKey(b, p.Key, values),
				Amount: 1,
			}); err != nil {
				return Result{}, err
			}
		}
	}

	for _, spec := range cc.AddValueSpecs {
		values, ok := composeValues(spec.Pattern, e)
		if !ok {
			continue
		}
		amount, ok := e.Get(spec.ValueField)
		if !ok || !amount.IsNumeric() {
			// Absent or non-numeric value field skips the spec, not the event
			continue
		}
		if err := checkCombinations(spec.Pattern, cc.Limits.MaxCombinations); err != nil {
			return Result{}, err
		}
		res.AddValueMetrics++
		for _, b := range buckets {
			if err := em.emit(types.Command{
				Kind:   types.CmdIncrementBy,
				Key:    encodeAddValueKey(b, spec.ValueField, spec.Pattern.Key, values),
				Amount: amount.Numeric(),
			}); err != nil {
				return Result{}, err
			}
		}
	}

	res.Commands = em.records
	return res, nil
}

// checkCombinations enforces the per-pattern expansion cap. Each pattern
// currently yields exactly one combination (single-valued fields), so the
// guard only fires once a multi-value generalization enumerates Cartesian
// products.
func checkCombinations(p Pattern, limit int) error {
	const combinations = 1
	if combinations > limit {
		return fmt.Errorf("pattern %q expands to %d combinations, cap %d: %w", p.Key, combinations, limit, types.ErrLimitExceeded)
	}
	return nil
}

// emitter accumulates commands with dedup and the per-event cap.
type emitter struct {
	records []types.Command
	index   map[uint64]int
	limit   int
}

// emit appends a command unless an identical record was already emitted.
// Duplicate IncrementBy records sum their amounts. Exceeding the per-event
// cap fails the whole event.
func (em *emitter) emit(cmd types.Command) error {
	h := fingerprint(cmd)
	if i, dup := em.index[h]; dup {
		if cmd.Kind == types.CmdIncrementBy {
			em.records[i].Amount += cmd.Amount
		}
		return nil
	}

	if len(em.records) >= em.limit {
		return fmt.Errorf("event exceeds %d metrics: %w", em.limit, types.ErrLimitExceeded)
	}

	em.index[h] = len(em.records)
	em.records = append(em.records, cmd)
	return nil
}

// fingerprint hashes the record identity (kind, key, member).
func fingerprint(cmd types.Command) uint64 {
	var d xxhash.Digest
	d.Reset()
	d.Write([]byte{byte(cmd.Kind)})
	d.WriteString(cmd.Key)
	d.Write([]byte{0})
	d.WriteString(cmd.Member)
	return d.Sum64()
}
