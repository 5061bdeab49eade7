package codec

import (
	"errors"
	"fmt"
)

// Error kinds returned by the MIN codec. Use errors.Is to test for them.
var (
	// ErrFormat is returned for a bad magic constant, an unsupported version,
	// an unknown file-type byte, or bytes left over after the last row.
	ErrFormat = errors.New("min: invalid format")

	// ErrRange is returned when an integer does not fit in a varint.
	ErrRange = errors.New("min: value out of varint range")

	// ErrMalformedVarint is returned when a varint does not terminate within
	// MaxVarintLen bytes or the input ends mid-sequence.
	ErrMalformedVarint = errors.New("min: malformed varint")

	// ErrTruncatedInput is returned when a declared length exceeds the bytes
	// remaining.
	ErrTruncatedInput = errors.New("min: truncated input")

	// ErrInvalidEncoding is returned when string bytes are not valid UTF-8.
	ErrInvalidEncoding = errors.New("min: invalid utf-8")

	// ErrInvalidReference is returned when a dictionary index is out of bounds.
	ErrInvalidReference = errors.New("min: invalid dictionary reference")

	// ErrInvalidFlag is returned for an unrecognized field flag byte.
	ErrInvalidFlag = errors.New("min: invalid field flag")
)

// Error describes a codec failure at a byte offset.
type Error struct {
	Kind   error  // one of the Err* kinds above
	Offset int    // byte offset in the buffer being parsed, -1 if unknown
	Detail string // human readable context
}

func (e *Error) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("%v: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("%v at offset %d: %s", e.Kind, e.Offset, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, offset int, format string, args ...any) *Error {
	return &Error{Kind: kind, Offset: offset, Detail: fmt.Sprintf(format, args...)}
}
