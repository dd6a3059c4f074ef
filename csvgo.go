package csvgo

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"time"

	"github.com/hupe1980/csvgo/codec"
	"github.com/hupe1980/csvgo/lines"
	"github.com/hupe1980/csvgo/resource"
	"github.com/hupe1980/csvgo/snapshot"
	"github.com/hupe1980/csvgo/source"
)

// Offset is the set of unsigned integer types usable as record offsets.
// Narrow widths shrink the resident index; the trade-off is the maximum
// addressable table size. Offsets outside the chosen range are reported as
// errors during the build, never truncated.
type Offset = lines.Offset

// Record is the constraint on partial record types: anything that reports
// the byte offset of the line it was decoded from.
type Record[O Offset] interface {
	Offset() O
}

// DecodeFunc decodes one data line into a partial record. offset is the byte
// position of the line's first byte in the source table and must be carried
// into the returned record for later fetches.
type DecodeFunc[T any, O Offset] func(line string, offset O) (T, error)

// Index is an immutable in-memory index over the rows of a delimited text
// table. It holds one partial record per data row, in build order; the full
// rows stay in the source and are fetched on demand by byte offset.
//
// An Index is safe for concurrent use: it is never mutated after
// construction, and every fetch opens its own positioned read.
type Index[T Record[O], O Offset] struct {
	src     source.Source
	records []T

	codec            codec.Codec
	compression      snapshot.CompressionType
	metrics          MetricsCollector
	logger           *Logger
	res              *resource.Controller
	fetchConcurrency int
}

// New builds an index over the table in the file at path.
//
// The first line is treated as a header and skipped unparsed; every following
// line is passed to decode together with its byte offset. Any read or decode
// failure aborts the build. An empty file yields an empty index.
func New[T Record[O], O Offset](ctx context.Context, path string, decode DecodeFunc[T, O], optFns ...Option) (*Index[T, O], error) {
	return NewFromSource(ctx, source.NewFile(path), decode, optFns...)
}

// NewFromSource builds an index over the table served by src.
// See New for the build contract.
func NewFromSource[T Record[O], O Offset](ctx context.Context, src source.Source, decode DecodeFunc[T, O], optFns ...Option) (*Index[T, O], error) {
	opts := applyOptions(optFns)

	start := time.Now()
	records, err := buildRecords(ctx, src, decode)
	opts.metricsCollector.RecordBuild(len(records), time.Since(start), err)
	opts.logger.LogBuild(ctx, src.Name(), len(records), err)
	if err != nil {
		return nil, err
	}

	return newIndex(src, records, opts), nil
}

// FromSnapshot builds or reloads an index over the file at path, caching the
// resident records in a snapshot file at snapshotPath. It is shorthand for
// FromSnapshotStore with a file source and a file store.
func FromSnapshot[T Record[O], O Offset](ctx context.Context, path, snapshotPath string, decode DecodeFunc[T, O], optFns ...Option) (*Index[T, O], error) {
	return FromSnapshotStore(ctx, source.NewFile(path), snapshot.NewFileStore(snapshotPath), decode, optFns...)
}

// FromSnapshotStore builds or reloads an index over src, caching the resident
// records in store.
//
// The snapshot is expired when it does not exist or when its modification
// time is not strictly newer than the source's. An expired snapshot triggers
// a full build followed by a snapshot write; a write failure fails the call
// even though the build succeeded. A fresh snapshot is deserialized without
// touching the source rows, selecting the codec named in its header. A fresh
// but unreadable snapshot is an error; there is no automatic rebuild.
//
// The returned index always fetches from src, never from the snapshot.
func FromSnapshotStore[T Record[O], O Offset](ctx context.Context, src source.Source, store snapshot.Store, decode DecodeFunc[T, O], optFns ...Option) (*Index[T, O], error) {
	opts := applyOptions(optFns)

	expired, err := snapshotExpired(ctx, src, store)
	if err != nil {
		return nil, err
	}

	if !expired {
		start := time.Now()
		records, err := loadRecords[T](ctx, store, opts.resourceController)
		opts.metricsCollector.RecordSnapshotLoad(len(records), time.Since(start), err)
		opts.logger.LogSnapshotLoad(ctx, store.Name(), len(records), err)
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot %s: %w", store.Name(), err)
		}
		return newIndex(src, records, opts), nil
	}

	ix, err := NewFromSource(ctx, src, decode, optFns...)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	err = saveRecords(ctx, store, ix)
	opts.metricsCollector.RecordSnapshotSave(time.Since(start), err)
	opts.logger.LogSnapshotSave(ctx, store.Name(), ix.Len(), err)
	if err != nil {
		return nil, fmt.Errorf("failed to save snapshot %s: %w", store.Name(), err)
	}
	return ix, nil
}

func newIndex[T Record[O], O Offset](src source.Source, records []T, opts options) *Index[T, O] {
	c := opts.codec
	if c == nil {
		c = codec.Default
	}
	fc := opts.fetchConcurrency
	if fc <= 0 {
		fc = DefaultFetchConcurrency
	}

	return &Index[T, O]{
		src:              src,
		records:          records,
		codec:            c,
		compression:      opts.compression,
		metrics:          opts.metricsCollector,
		logger:           opts.logger,
		res:              opts.resourceController,
		fetchConcurrency: fc,
	}
}

// buildRecords streams the table once, decoding every data line.
func buildRecords[T Record[O], O Offset](ctx context.Context, src source.Source, decode DecodeFunc[T, O]) ([]T, error) {
	rc, err := src.OpenRead(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", src.Name(), err)
	}
	defer rc.Close()

	r := lines.New[O](rc, src.Name())

	// The first line is the header; it is skipped without validation. An
	// empty source has no header and yields an empty index.
	if _, _, err := r.Next(); err != nil {
		return nil, err
	}

	var records []T
	n := 0
	for ln, err := range r.All() {
		if err != nil {
			return nil, err
		}
		rec, err := decode(ln.Text, ln.Offset)
		if err != nil {
			return nil, &DecodeError{
				Source: src.Name(),
				Line:   n,
				Offset: int64(ln.Offset),
				Raw:    ln.Text,
				cause:  err,
			}
		}
		records = append(records, rec)
		n++
	}
	return records, nil
}

// snapshotExpired reports whether the snapshot must be rebuilt. A missing
// snapshot is expired; an existing one is fresh only when strictly newer
// than the source.
func snapshotExpired(ctx context.Context, src source.Source, store snapshot.Store) (bool, error) {
	snapMod, err := store.ModTime(ctx)
	if errors.Is(err, snapshot.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat snapshot %s: %w", store.Name(), err)
	}

	srcMod, err := src.ModTime(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", src.Name(), err)
	}

	return !snapMod.After(srcMod), nil
}

func loadRecords[T any](ctx context.Context, store snapshot.Store, res *resource.Controller) ([]T, error) {
	rc, err := store.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	br := bufio.NewReaderSize(resource.NewRateLimitedReader(rc, res, ctx), 256*1024)
	return snapshot.Read[T](br)
}

func saveRecords[T Record[O], O Offset](ctx context.Context, store snapshot.Store, ix *Index[T, O]) error {
	return store.Save(ctx, func(w io.Writer) error {
		return snapshot.Write(resource.NewRateLimitedWriter(w, ix.res, ctx), ix.codec, ix.compression, ix.records)
	})
}

// Len returns the number of indexed records.
func (ix *Index[T, O]) Len() int {
	return len(ix.records)
}

// At returns the record at position i. Positions follow build order, which
// is the order of the data lines in the table.
func (ix *Index[T, O]) At(i int) T {
	return ix.records[i]
}

// Records returns a copy of the resident records.
func (ix *Index[T, O]) Records() []T {
	return slices.Clone(ix.records)
}

// All returns an iterator over (position, record) pairs in build order.
func (ix *Index[T, O]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, rec := range ix.records {
			if !yield(i, rec) {
				return
			}
		}
	}
}

// Source returns the source the index was built over and fetches from.
func (ix *Index[T, O]) Source() source.Source {
	return ix.src
}
