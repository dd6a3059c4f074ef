package source

import (
	"bytes"
	"context"
	"io"
	"os"
	"time"

	"github.com/hupe1980/csvgo/internal/mmap"
)

// Mapped is a Source backed by a memory-mapped local file. Reads are served
// straight from the mapping, avoiding a per-fetch open/seek.
//
// The mapping stays live until Close; callers own the lifecycle. The mapped
// file must not be truncated while the source is open.
type Mapped struct {
	path string
	m    *mmap.Mapping
}

// OpenMapped maps the file at path read-only.
func OpenMapped(path string) (*Mapped, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	return &Mapped{path: path, m: m}, nil
}

// Name returns the mapped file's path.
func (s *Mapped) Name() string {
	return s.path
}

// OpenRead returns a reader over the whole mapping.
func (s *Mapped) OpenRead(_ context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.m.Bytes())), nil
}

// ReadFrom returns a reader positioned at offset within the mapping.
// Offsets at or past the end yield an immediate EOF.
func (s *Mapped) ReadFrom(_ context.Context, offset int64) (io.ReadCloser, error) {
	size := int64(s.m.Size())
	if offset >= size {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return io.NopCloser(io.NewSectionReader(s.m, offset, size-offset)), nil
}

// ModTime returns the underlying file's modification time.
func (s *Mapped) ModTime(_ context.Context) (time.Time, error) {
	fi, err := os.Stat(s.path)
	if err != nil {
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}

// Close unmaps the file. Readers obtained earlier must not be used after
// Close.
func (s *Mapped) Close() error {
	return s.m.Close()
}
