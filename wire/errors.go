package wire

import (
	"errors"
	"fmt"
	"strings"
)

// Decode errors
var (
	ErrBufferExhausted      = errors.New("unexpected end of buffer")
	ErrInvalidBoolean       = errors.New("invalid boolean byte")
	ErrInvalidUTF8          = errors.New("invalid UTF-8 in string")
	ErrInvalidDefKind       = errors.New("invalid definition kind")
	ErrUndefinedEnumValue   = errors.New("undefined enum value")
	ErrUnrecognizedFieldTag = errors.New("unrecognized message field tag")
	ErrTypeIDOutOfRange     = errors.New("type id out of range")
	ErrLengthMismatch       = errors.New("length-delimited read did not consume its range")
	ErrMaxDepthExceeded     = errors.New("maximum nesting depth exceeded")
)

// Encode errors
var (
	ErrUnknownDef   = errors.New("unknown definition")
	ErrUnknownField = errors.New("unknown field")
	ErrMissingField = errors.New("missing struct field")
	ErrTypeMismatch = errors.New("value does not match field type")
)

// FieldError represents an encoding/decoding error with a field path.
type FieldError struct {
	FieldPath []string // e.g., ["Message", "a_struct", "v_enum"]
	Err       error    // underlying error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if len(e.FieldPath) == 0 {
		return e.Err.Error()
	}

	return fmt.Sprintf("error at kiwi path %s: %v", strings.Join(e.FieldPath, "."), e.Err)
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// WrapField prefixes the path of err with fieldName. A FieldError is
// extended rather than nested, so the message never repeats its prefix. Any
// other error, including one that wraps a FieldError with extra context, is
// kept whole as the cause.
func WrapField(err error, fieldName string) error {
	if err == nil {
		return nil
	}

	if fe, ok := err.(*FieldError); ok {
		return &FieldError{
			FieldPath: append([]string{fieldName}, fe.FieldPath...),
			Err:       fe.Err,
		}
	}

	return &FieldError{
		FieldPath: []string{fieldName},
		Err:       err,
	}
}
