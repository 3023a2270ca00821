// internal/metrics/sanitize.go
package metrics

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/solatis/tallykeeper/internal/types"
)

/*
 * Field-name and text-value sanitization.
 *
 * Centralizes all charset and length policy so downstream components may
 * assume well-formed inputs and never re-validate. Two outcomes besides
 * success: drop (empty after trim, never an error) and reject (length or
 * charset violation, surfaced as ErrFieldSanitization / ErrValueDomain).
 *
 * Disallowed characters: the pattern separator '~', the key delimiter ':',
 * and control characters. Any of these inside a name or value would corrupt
 * the emitted key grammar, so they reject rather than silently rewrite.
 *
 * Field names additionally lowercase: keys are case-insensitive at ingest
 * so "UserID" and "userid" land on the same metric.
 */

// SanitizeFieldName normalizes a raw field name: lowercase, trim surrounding
// whitespace. Returns ok=false when the name is empty after trimming (caller
// drops the field). Returns ErrFieldSanitization for length or charset
// violations.
func SanitizeFieldName(raw string, maxLen int) (string, bool, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return "", false, nil
	}
	if len(name) > maxLen {
		return "", false, fmt.Errorf("field name %q exceeds %d bytes: %w", name, maxLen, types.ErrFieldSanitization)
	}
	if i := disallowedIndex(name); i >= 0 {
		return "", false, fmt.Errorf("field name %q contains disallowed character %q: %w", name, name[i], types.ErrFieldSanitization)
	}
	return name, true, nil
}

// SanitizeText normalizes a raw text value: trim surrounding whitespace.
// Returns ok=false when empty after trimming (caller drops the field).
// Returns ErrValueDomain for length or charset violations. Case is
// preserved: values are identity-bearing, unlike field names.
func SanitizeText(raw string, maxLen int) (string, bool, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false, nil
	}
	if len(s) > maxLen {
		return "", false, fmt.Errorf("value of %d bytes exceeds %d: %w", len(s), maxLen, types.ErrValueDomain)
	}
	if i := disallowedIndex(s); i >= 0 {
		return "", false, fmt.Errorf("value contains disallowed character %q: %w", s[i], types.ErrValueDomain)
	}
	return s, true, nil
}

// disallowedIndex returns the byte index of the first disallowed character,
// or -1 when the string is clean.
func disallowedIndex(s string) int {
	for i, r := range s {
		if r == types.PatternSeparator || r == types.KeyDelimiter || unicode.IsControl(r) {
			return i
		}
	}
	return -1
}
