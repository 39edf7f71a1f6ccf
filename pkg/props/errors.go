package props

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPropertyType is matched by a PropertyError whose value
	// did not have the field's expected type.
	ErrInvalidPropertyType = errors.New("invalid property type")

	// ErrUnrecognizedKey is matched by a PropertyError whose key names no
	// field or decomposition part.
	ErrUnrecognizedKey = errors.New("unrecognized property key")
)

// ErrorCode classifies a recoverable per-key edit failure.
type ErrorCode int

const (
	InvalidPropertyType ErrorCode = iota
	UnrecognizedKey
)

func (c ErrorCode) String() string {
	switch c {
	case InvalidPropertyType:
		return "InvalidPropertyType"
	case UnrecognizedKey:
		return "UnrecognizedKey"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
}

// PropertyError reports a single rejected bag entry. It never aborts the
// edit it occurred in.
type PropertyError struct {
	Code ErrorCode
	Key  string
	Want Kind // expected kind, for InvalidPropertyType
	Got  any  // offending value
}

func (e *PropertyError) Error() string {
	switch e.Code {
	case InvalidPropertyType:
		return fmt.Sprintf("property %q: expected %s, got %T", e.Key, e.Want, e.Got)
	default:
		return fmt.Sprintf("property %q: unrecognized key", e.Key)
	}
}

// Is matches the sentinel corresponding to the error code.
func (e *PropertyError) Is(target error) bool {
	switch target {
	case ErrInvalidPropertyType:
		return e.Code == InvalidPropertyType
	case ErrUnrecognizedKey:
		return e.Code == UnrecognizedKey
	}
	return false
}

// InternalError reports that a full state snapshot could not be built.
// No partial bag accompanies it.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("props: %s: internal error: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}
