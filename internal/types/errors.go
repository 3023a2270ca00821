package types

import "errors"

// Sentinel errors forming the closed failure taxonomy surfaced to callers.
// Call sites wrap these with fmt.Errorf("...: %w", ...) to attach the
// precise reason; callers discriminate with errors.Is.
var (
	// ErrInvalidEvent indicates a structurally unusable event: root not an
	// object, nested structure, duplicate sanitized key, missing
	// discriminator field, or empty after sanitization.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrFieldSanitization indicates a field name failing length or charset
	// rules.
	ErrFieldSanitization = errors.New("field name failed sanitization")

	// ErrValueDomain indicates a value length or charset violation, or a
	// non-finite float.
	ErrValueDomain = errors.New("value outside permitted domain")

	// ErrConfig indicates an invalid declarative config: unknown timezone,
	// malformed pattern, non-positive limit, or internal inconsistency.
	// Raised at compile time only, never during event processing.
	ErrConfig = errors.New("invalid config")

	// ErrLimitExceeded indicates the per-event metric cap or per-pattern
	// combination cap would be exceeded. The whole event fails; no partial
	// output is returned.
	ErrLimitExceeded = errors.New("processing limit exceeded")
)
