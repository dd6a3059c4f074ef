package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// File is a Source backed by a plain local file. Every read opens its own
// handle, so concurrent fetches never share file position.
type File struct {
	path string
}

// NewFile creates a file source for the given path. The file is not opened
// until the first read.
func NewFile(path string) *File {
	return &File{path: path}
}

// Name returns the file path.
func (f *File) Name() string {
	return f.path
}

// OpenRead opens the file for a sequential read from the start.
func (f *File) OpenRead(_ context.Context) (io.ReadCloser, error) {
	return os.Open(f.path)
}

// ReadFrom opens the file and seeks to offset. Offsets at or past EOF
// produce a reader that immediately reports EOF.
func (f *File) ReadFrom(_ context.Context, offset int64) (io.ReadCloser, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	if _, err := fh.Seek(offset, io.SeekStart); err != nil {
		_ = fh.Close()
		return nil, fmt.Errorf("failed to seek %s to %d: %w", f.path, offset, err)
	}
	return fh, nil
}

// ModTime returns the file's modification time.
func (f *File) ModTime(_ context.Context) (time.Time, error) {
	fi, err := os.Stat(f.path)
	if err != nil {
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}
