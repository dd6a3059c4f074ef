// Package lines provides sequential line reading with byte-offset tracking.
//
// A Reader yields each line of a byte stream together with the offset at
// which the line begins, in a caller-chosen unsigned offset width. Narrow
// widths shrink the memory footprint of anything that stores the offsets;
// the trade-off is the maximum addressable file size, and conversions are
// checked so a position outside the chosen range is reported instead of
// silently truncated.
package lines

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/hupe1980/csvgo/internal/conv"
)

// Offset is the set of unsigned integer types usable as line offsets.
type Offset interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Line is a single line of input plus the byte offset of its first byte.
// The trailing line terminator is stripped: a trailing "\n" is removed, and
// a "\r" immediately before it is removed too. A bare "\r" is preserved.
type Line[O Offset] struct {
	Text   string
	Offset O
}

// ErrRead indicates a failure while producing the next line.
//
// Line is the number of lines successfully produced before the failure
// (0-based index of the failing line). The underlying cause can be accessed
// via errors.Unwrap; offset-narrowing failures unwrap to *conv.OverflowError.
type ErrRead struct {
	Name  string
	Line  int
	cause error
}

func (e *ErrRead) Error() string {
	return fmt.Sprintf("read line %d of %s: %v", e.Line, e.Name, e.cause)
}

func (e *ErrRead) Unwrap() error { return e.cause }

// Reader yields lines from a byte stream together with their offsets.
//
// The sequence is lazy, finite and non-restartable: it ends when the stream
// is exhausted, or after the first error. Offsets are tracked by accumulating
// raw line lengths, so no seeking is required of the underlying reader.
type Reader[O Offset] struct {
	name string
	br   *bufio.Reader
	c    io.Closer
	pos  int64
	n    int
	done bool
}

// New returns a Reader over r. name is used in errors for diagnostics.
func New[O Offset](r io.Reader, name string) *Reader[O] {
	return &Reader[O]{
		name: name,
		// Batch reads; line scans are strictly sequential.
		br: bufio.NewReaderSize(r, 256*1024),
	}
}

// Open opens the file at path for line reading.
// The returned Reader owns the file handle; Close releases it.
func Open[O Offset](path string) (*Reader[O], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := New[O](f, path)
	r.c = f
	return r, nil
}

// Name returns the display name used in errors.
func (r *Reader[O]) Name() string { return r.name }

// Close releases the underlying file handle, if the Reader owns one.
func (r *Reader[O]) Close() error {
	if r.c == nil {
		return nil
	}
	return r.c.Close()
}

// Next produces the next line. It returns ok=false when the sequence has
// ended. An error ends the sequence; subsequent calls return ok=false.
func (r *Reader[O]) Next() (Line[O], bool, error) {
	if r.done {
		return Line[O]{}, false, nil
	}

	start := r.pos
	raw, err := r.br.ReadString('\n')
	if len(raw) == 0 {
		// End of stream, clean or not.
		r.done = true
		if err == nil || err == io.EOF {
			return Line[O]{}, false, nil
		}
		return Line[O]{}, false, &ErrRead{Name: r.name, Line: r.n, cause: err}
	}
	if err != nil && err != io.EOF {
		r.done = true
		return Line[O]{}, false, &ErrRead{Name: r.name, Line: r.n, cause: err}
	}

	off, err := conv.ToOffset[O](start)
	if err != nil {
		r.done = true
		return Line[O]{}, false, &ErrRead{Name: r.name, Line: r.n, cause: err}
	}

	r.pos = start + int64(len(raw))
	r.n++

	text := raw
	if strings.HasSuffix(text, "\n") {
		text = text[:len(text)-1]
		if strings.HasSuffix(text, "\r") {
			text = text[:len(text)-1]
		}
	}

	return Line[O]{Text: text, Offset: off}, true, nil
}

// All returns a single-use iterator over the remaining lines.
// The iteration ends after yielding at most one error.
//
// Example:
//
//	for ln, err := range r.All() {
//	    if err != nil {
//	        return err
//	    }
//	    process(ln.Text, ln.Offset)
//	}
func (r *Reader[O]) All() iter.Seq2[Line[O], error] {
	return func(yield func(Line[O], error) bool) {
		for {
			ln, ok, err := r.Next()
			if err != nil {
				yield(Line[O]{}, err)
				return
			}
			if !ok {
				return
			}
			if !yield(ln, nil) {
				return
			}
		}
	}
}
