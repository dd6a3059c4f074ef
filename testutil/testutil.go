package testutil

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
)

// Header is the first line of every generated table. Index builds skip it
// like any other table header.
const Header = "id,name,population"

// Row is one data row of a generated table.
type Row struct {
	ID   uint64
	Name string
	Pop  int64
}

// CSVLine renders the row as "id,name,population".
func (r Row) CSVLine() string {
	return fmt.Sprintf("%d,%s,%d", r.ID, r.Name, r.Pop)
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Name returns a pronounceable lowercase name of length n.
func (r *RNG) Name(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nameLocked(n)
}

const (
	consonants = "bcdfghklmnprstvw"
	vowels     = "aeiou"
)

func (r *RNG) nameLocked(n int) string {
	var sb strings.Builder
	sb.Grow(n)
	for i := range n {
		if i%2 == 0 {
			sb.WriteByte(consonants[r.rand.Intn(len(consonants))])
		} else {
			sb.WriteByte(vowels[r.rand.Intn(len(vowels))])
		}
	}
	return sb.String()
}

// SortedRows generates n rows with strictly increasing ids.
// Gaps between consecutive ids keep both hits and misses reachable in
// lookups. Locks only once per call (preferred over per-row helpers).
func (r *RNG) SortedRows(n int) []Row {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([]Row, n)
	id := uint64(0)
	for i := range rows {
		id += 1 + uint64(r.rand.Intn(3))
		rows[i] = Row{
			ID:   id,
			Name: r.nameLocked(4 + r.rand.Intn(8)),
			Pop:  int64(r.rand.Intn(10_000_000)),
		}
	}
	return rows
}

// TableBytes renders header plus one line per row, each newline-terminated.
func TableBytes(rows []Row) []byte {
	var sb strings.Builder
	sb.WriteString(Header)
	sb.WriteByte('\n')
	for _, row := range rows {
		sb.WriteString(row.CSVLine())
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

// WriteTable writes header plus rows to path.
func WriteTable(path string, rows []Row) error {
	return os.WriteFile(path, TableBytes(rows), 0o644)
}
