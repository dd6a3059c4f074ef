package snapshot

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"time"
)

// FileStore keeps the snapshot in a single local file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given file path. The parent
// directory must exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Name returns the snapshot file path.
func (s *FileStore) Name() string {
	return s.path
}

// ModTime returns the snapshot file's modification time. A missing file
// satisfies errors.Is(err, ErrNotExist).
func (s *FileStore) ModTime(_ context.Context) (time.Time, error) {
	fi, err := os.Stat(s.path)
	if err != nil {
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}

// Open opens the snapshot file for reading.
func (s *FileStore) Open(_ context.Context) (io.ReadCloser, error) {
	return os.Open(s.path)
}

// Save writes the snapshot atomically: write produces into a temp file in
// the target directory, which is fsynced and renamed over the target. A
// failed write leaves the previous snapshot untouched.
func (s *FileStore) Save(_ context.Context, write func(w io.Writer) error) error {
	dir := filepath.Dir(s.path)
	base := filepath.Base(s.path)

	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	// Match typical file permissions (best-effort).
	_ = tmp.Chmod(0644)

	// Use buffered writer to batch writes
	buf := bufio.NewWriterSize(tmp, 256*1024) // 256KB buffer
	if err := write(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Atomically replace target.
	if err := os.Rename(tmpName, s.path); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	// Success: prevent deferred cleanup from removing the final file.
	tmpName = ""
	return nil
}
