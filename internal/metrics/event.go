// internal/metrics/event.go
package metrics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/solatis/tallykeeper/internal/types"
)

/*
 * Event construction.
 *
 * Builds the internal Event from a raw JSON document or a native map:
 * sanitize each field name, coerce each scalar, drop nulls and
 * empty-after-trim fields, reject nested structures and duplicate
 * sanitized keys.
 *
 * Raw keys are visited in sorted order. Insertion order carries no
 * correctness weight, but a deterministic order keeps event dumps and
 * test fixtures stable across runs (map iteration order is randomized).
 *
 * The discriminator field must survive sanitization; an event without it
 * is unusable for any configured mapping and rejects with ErrInvalidEvent.
 */

// ParseEvent decodes a raw JSON document into an Event. The root must be an
// object of scalar members. Numbers are decoded lexically (json.Number) so
// integer and floating forms are distinguished before coercion.
func ParseEvent(raw []byte, limits LimitsConfig) (*types.Event, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("malformed JSON: %v: %w", err, types.ErrInvalidEvent)
	}

	obj, ok := root.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("root is %T, not an object: %w", root, types.ErrInvalidEvent)
	}

	return NewEvent(obj, limits)
}

// NewEvent builds an Event from raw field/value pairs, applying the full
// sanitization and coercion policy.
func NewEvent(fields map[string]any, limits LimitsConfig) (*types.Event, error) {
	rawKeys := make([]string, 0, len(fields))
	for k := range fields {
		rawKeys = append(rawKeys, k)
	}
	sort.Strings(rawKeys)

	ev := &types.Event{}

	for _, rawKey := range rawKeys {
		name, ok, err := SanitizeFieldName(rawKey, limits.MaxFieldLength)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		value, ok, err := CoerceScalar(fields[rawKey], limits.MaxValueLength)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		if !ok {
			continue
		}

		if !ev.Put(name, value) {
			return nil, fmt.Errorf("duplicate field %q after sanitization: %w", name, types.ErrInvalidEvent)
		}
	}

	if ev.Len() == 0 {
		return nil, fmt.Errorf("no fields survived sanitization: %w", types.ErrInvalidEvent)
	}

	name, ok := ev.Get(types.EventField)
	if !ok {
		return nil, fmt.Errorf("missing %q field: %w", types.EventField, types.ErrInvalidEvent)
	}
	ev.Name = RenderValue(name)

	return ev, nil
}
