package domain

import "errors"

// Failure kinds shared by every external lookup. Adapters wrap one of these so
// callers can classify a failure with errors.Is.
var (
	// The service could not be reached or answered with an error.
	ErrLookupUnavailable = errors.New("lookup unavailable")
	// The lookup succeeded but produced no usable match.
	ErrUnresolvable = errors.New("unresolvable")
	// Input or response was missing required fields.
	ErrMalformedInput = errors.New("malformed input")
)

// ErrorKind names the failure class of err for diagnostics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedInput):
		return "malformed-input"
	case errors.Is(err, ErrUnresolvable):
		return "unresolvable"
	default:
		return "lookup-unavailable"
	}
}
