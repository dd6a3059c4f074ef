package snapshot

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store implementation for testing.
// Thread-safe for concurrent reads and writes.
type MemoryStore struct {
	mu      sync.RWMutex
	data    []byte
	modTime time.Time
	written bool
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Name identifies the store in logs and errors.
func (m *MemoryStore) Name() string {
	return "memory"
}

// ModTime returns the time of the last Save, or ErrNotExist before the
// first one.
func (m *MemoryStore) ModTime(_ context.Context) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.written {
		return time.Time{}, ErrNotExist
	}
	return m.modTime, nil
}

// SetModTime overrides the stored modification time. Tests use this to
// force staleness without sleeping.
func (m *MemoryStore) SetModTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.modTime = t
}

// Open returns a reader over the stored snapshot bytes.
func (m *MemoryStore) Open(_ context.Context) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.written {
		return nil, ErrNotExist
	}

	// Return a copy to prevent external mutation
	copied := make([]byte, len(m.data))
	copy(copied, m.data)

	return io.NopCloser(bytes.NewReader(copied)), nil
}

// Save buffers the write and installs it whole; a failed write leaves the
// previous snapshot in place.
func (m *MemoryStore) Save(_ context.Context, write func(w io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = buf.Bytes()
	m.modTime = time.Now()
	m.written = true
	return nil
}
