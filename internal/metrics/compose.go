// internal/metrics/compose.go
package metrics

import (
	"strings"

	"github.com/solatis/tallykeeper/internal/types"
)

/*
 * Key composition.
 *
 * Builds the values string for a compiled pattern and the element string
 * for a bitmap field. Pure functions over (compiled entry, event).
 *
 * Absent fields skip: a pattern referencing a field the event does not
 * carry emits nothing for this event, and that is not an error. Incoming
 * events are heterogeneous; the config tracks a superset of any one
 * event's shape.
 *
 * Allocation: the pattern string is cached in the compiled config; the
 * values string is built in one buffer pre-sized from the rendered
 * component lengths.
 */

// composeValues renders the '~'-joined values string parallel to the
// pattern's sorted fields. Returns ok=false when any pattern field is
// absent from the event.
func composeValues(p Pattern, e *types.Event) (string, bool) {
	rendered := make([]string, len(p.Fields))
	size := len(p.Fields) - 1
	for i, f := range p.Fields {
		v, ok := e.Get(f)
		if !ok {
			return "", false
		}
		rendered[i] = RenderValue(v)
		size += len(rendered[i])
	}

	var b strings.Builder
	b.Grow(size)
	for i, s := range rendered {
		if i > 0 {
			b.WriteByte(types.PatternSeparator)
		}
		b.WriteString(s)
	}
	return b.String(), true
}

// composeElement renders the bitmap element for a tracked field. Returns
// ok=false when the field is absent from the event.
func composeElement(field string, e *types.Event) (string, bool) {
	v, ok := e.Get(field)
	if !ok {
		return "", false
	}
	return RenderValue(v), true
}
