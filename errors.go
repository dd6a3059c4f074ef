package csvgo

import (
	"errors"
	"fmt"
)

var (
	// ErrOffsetOutOfRange is returned when a fetch addresses a byte offset at
	// or beyond the end of the source table.
	ErrOffsetOutOfRange = errors.New("offset out of range")
)

// DecodeError indicates that a line could not be decoded into a record.
//
// Line is the 0-based index of the failing data line during a build, or -1
// when the line was fetched by offset. Raw is the undecoded line with its
// terminator stripped. The decoder's error can be accessed via errors.Unwrap.
type DecodeError struct {
	Source string
	Line   int
	Offset int64
	Raw    string
	cause  error
}

func (e *DecodeError) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("decode line %d of %s (offset %d): %v", e.Line, e.Source, e.Offset, e.cause)
	}
	return fmt.Sprintf("decode record at offset %d of %s: %v", e.Offset, e.Source, e.cause)
}

func (e *DecodeError) Unwrap() error { return e.cause }
