package codec

import (
	"errors"
	"fmt"
)

// ErrorKind classifies codec failures. Every kind is a deterministic function
// of (value, config); none of them is transient.
type ErrorKind string

const (
	KindConfigurationRange      ErrorKind = "configuration_range"
	KindOffsetRange             ErrorKind = "offset_range"
	KindNotANumber              ErrorKind = "not_a_number"
	KindMagnitudeExceedsTypeMax ErrorKind = "magnitude_exceeds_type_max"
	KindMissingConfiguration    ErrorKind = "missing_configuration"
)

// Sentinels for errors.Is. A *Error matches the sentinel of its kind.
var (
	ErrConfigurationRange      = &Error{Kind: KindConfigurationRange}
	ErrOffsetRange             = &Error{Kind: KindOffsetRange}
	ErrNotANumber              = &Error{Kind: KindNotANumber}
	ErrMagnitudeExceedsTypeMax = &Error{Kind: KindMagnitudeExceedsTypeMax}
	ErrMissingConfiguration    = &Error{Kind: KindMissingConfiguration}
)

type Error struct {
	Kind  ErrorKind
	Value string // offending input, as text
	Msg   string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Value != "" && e.Msg != "":
		return fmt.Sprintf("codec: %s: %s (value=%q)", e.Kind, e.Msg, e.Value)
	case e.Msg != "":
		return fmt.Sprintf("codec: %s: %s", e.Kind, e.Msg)
	default:
		return fmt.Sprintf("codec: %s", e.Kind)
	}
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind ErrorKind, value, format string, args ...any) *Error {
	return &Error{Kind: kind, Value: value, Msg: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err carries a codec error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// MissingConfiguration builds the error reported when a numeric value has to
// be encoded but no codec was attached.
func MissingConfiguration(value string) *Error {
	return newError(KindMissingConfiguration, value, "numeric value has no codec attached")
}
