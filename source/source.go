package source

import (
	"context"
	"io"
	"os"
	"time"
)

// ErrNotFound is returned when the backing file or object does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Source is a named, re-openable, immutable byte source holding one table.
// Implementations must be safe for concurrent use.
type Source interface {
	// Name identifies the source in logs and errors.
	Name() string

	// OpenRead opens a sequential read over the whole table.
	OpenRead(ctx context.Context) (io.ReadCloser, error)

	// ReadFrom opens an independent read positioned at the given byte
	// offset. Reads at or past the end yield an immediate EOF or a ranged
	// request error, depending on the backend.
	ReadFrom(ctx context.Context, offset int64) (io.ReadCloser, error)

	// ModTime returns the table's last modification time, used for
	// snapshot staleness checks.
	ModTime(ctx context.Context) (time.Time, error)
}
