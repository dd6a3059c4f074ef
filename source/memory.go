package source

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

// Memory is an in-memory Source implementation for testing.
// Thread-safe for concurrent reads and swaps.
type Memory struct {
	name string

	mu      sync.RWMutex
	data    []byte
	modTime time.Time
}

// NewMemory creates an in-memory source holding data.
func NewMemory(name string, data []byte) *Memory {
	return &Memory{
		name:    name,
		data:    data,
		modTime: time.Now(),
	}
}

// Name identifies the source in logs and errors.
func (m *Memory) Name() string {
	return m.name
}

// OpenRead returns a reader over the whole table.
func (m *Memory) OpenRead(_ context.Context) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return io.NopCloser(bytes.NewReader(m.data)), nil
}

// ReadFrom returns a reader positioned at offset. Offsets at or past the
// end yield an immediate EOF.
func (m *Memory) ReadFrom(_ context.Context, offset int64) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if offset >= int64(len(m.data)) {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return io.NopCloser(bytes.NewReader(m.data[offset:])), nil
}

// ModTime returns the stored modification time.
func (m *Memory) ModTime(_ context.Context) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.modTime, nil
}

// SetModTime overrides the modification time. Tests use this to force
// snapshot staleness without sleeping.
func (m *Memory) SetModTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.modTime = t
}

// SetData replaces the table bytes and bumps the modification time.
func (m *Memory) SetData(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = data
	m.modTime = time.Now()
}
