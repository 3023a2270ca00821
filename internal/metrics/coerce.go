// internal/metrics/coerce.go
package metrics

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/solatis/tallykeeper/internal/types"
)

/*
 * Scalar coercion and canonical rendering.
 *
 * Maps raw JSON scalars onto the closed Value union (Text, Integer,
 * Floating, Boolean) and renders values back to the canonical string form
 * embedded in command keys and bitmap elements.
 *
 * Coercion rules:
 *   - null drops the field (not an error)
 *   - JSON numbers without a fractional component become Integer,
 *     the rest Floating
 *   - nested objects and arrays are structural errors (ErrInvalidEvent)
 *   - NaN and infinities reject with ErrValueDomain; they have no
 *     round-trippable decimal form and would poison counter sums
 *
 * Rendering is fixed so the same value always produces byte-identical key
 * material: shortest decimal for Integer, shortest round-trippable decimal
 * for Floating (strconv 'f' precision -1), lowercase true/false for Boolean.
 */

// CoerceScalar converts a raw JSON scalar into a Value. Returns ok=false
// when the field should be dropped (null, or text empty after trimming).
// Accepts the types produced by encoding/json with UseNumber plus native
// Go scalars for programmatic event construction.
func CoerceScalar(raw any, maxValueLen int) (types.Value, bool, error) {
	switch v := raw.(type) {
	case nil:
		return types.Value{}, false, nil
	case string:
		s, ok, err := SanitizeText(v, maxValueLen)
		if err != nil || !ok {
			return types.Value{}, false, err
		}
		return types.TextValue(s), true, nil
	case json.Number:
		return coerceNumber(v)
	case float64:
		return coerceFloat(v)
	case float32:
		return coerceFloat(float64(v))
	case int:
		return types.IntegerValue(int64(v)), true, nil
	case int64:
		return types.IntegerValue(v), true, nil
	case bool:
		return types.BooleanValue(v), true, nil
	default:
		return types.Value{}, false, fmt.Errorf("nested structure %T not allowed: %w", raw, types.ErrInvalidEvent)
	}
}

// coerceNumber maps a lexical JSON number onto Integer or Floating.
// Integer parse is attempted first: "42" is Integer, "42.5" and "4e2"
// fall through to float parsing, where whole results ("4e2" = 400) still
// collapse to Integer.
func coerceNumber(n json.Number) (types.Value, bool, error) {
	if i, err := n.Int64(); err == nil {
		return types.IntegerValue(i), true, nil
	}
	f, err := n.Float64()
	if err != nil {
		return types.Value{}, false, fmt.Errorf("unparseable number %q: %w", n.String(), types.ErrValueDomain)
	}
	return coerceFloat(f)
}

// coerceFloat validates finiteness and collapses whole floats to Integer.
func coerceFloat(f float64) (types.Value, bool, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return types.Value{}, false, fmt.Errorf("non-finite number: %w", types.ErrValueDomain)
	}
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return types.IntegerValue(int64(f)), true, nil
	}
	return types.FloatingValue(f), true, nil
}

// RenderValue produces the canonical string form of a value as it appears
// in key segments and bitmap elements. Values reaching here are already
// sanitized and finite.
func RenderValue(v types.Value) string {
	switch v.Kind {
	case types.ValueText:
		return v.Text
	case types.ValueInteger:
		return strconv.FormatInt(v.Int, 10)
	case types.ValueFloating:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	default:
		if v.Bool {
			return "true"
		}
		return "false"
	}
}
