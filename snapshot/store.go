package snapshot

import (
	"context"
	"io"
	"os"
	"time"
)

// ErrNotExist is returned by ModTime and Open when no snapshot has been
// written yet.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotExist)`. The default maps to `os.ErrNotExist`.
var ErrNotExist = os.ErrNotExist

// Store is a location holding at most one snapshot.
// Implementations must be safe for concurrent use.
type Store interface {
	// Name identifies the store location in logs and errors.
	Name() string

	// ModTime returns the snapshot's last modification time, or ErrNotExist
	// when nothing has been written yet.
	ModTime(ctx context.Context) (time.Time, error)

	// Open opens the snapshot for reading.
	Open(ctx context.Context) (io.ReadCloser, error)

	// Save replaces the snapshot with whatever write produces. The previous
	// snapshot stays readable until the new one is complete; a failed write
	// never installs a partial snapshot.
	Save(ctx context.Context, write func(w io.Writer) error) error
}
