package csvgo

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/csvgo/internal/conv"
	"github.com/hupe1980/csvgo/resource"
	"github.com/hupe1980/csvgo/source"
)

// DefaultFetchConcurrency is the FetchSet concurrency used when neither
// WithFetchConcurrency nor a per-call override is given.
const DefaultFetchConcurrency = 8

// FullRecord fetches the complete row behind rec and decodes it with decode.
//
// Each call opens an independent positioned read on the index's source at the
// record's offset, reads exactly one line, strips its terminator and decodes
// it. Results are never cached and the index is not touched, so any number of
// goroutines may fetch concurrently. ctx bounds the wait on the resource
// controller, if one is configured, and is honored by remote sources.
//
// An offset at or beyond the end of the source fails with a wrapped
// ErrOffsetOutOfRange. Decode failures are reported as *DecodeError with the
// raw line and Line set to -1.
func FullRecord[D any, T Record[O], O Offset](ctx context.Context, ix *Index[T, O], rec T, decode func(line string) (D, error)) (D, error) {
	start := time.Now()
	d, pos, err := fetchRecord(ctx, ix, rec, decode)
	ix.metrics.RecordFetch(time.Since(start), err)
	ix.logger.LogFetch(ctx, ix.src.Name(), pos, err)
	if err != nil {
		var zero D
		return zero, err
	}
	return d, nil
}

func fetchRecord[D any, T Record[O], O Offset](ctx context.Context, ix *Index[T, O], rec T, decode func(line string) (D, error)) (D, int64, error) {
	var zero D

	pos, err := conv.FromOffset(rec.Offset())
	if err != nil {
		return zero, -1, fmt.Errorf("invalid offset in %s: %w", ix.src.Name(), err)
	}

	line, err := readLineAt(ctx, ix.src, ix.res, pos)
	if err != nil {
		return zero, pos, err
	}

	d, err := decode(line)
	if err != nil {
		return zero, pos, &DecodeError{
			Source: ix.src.Name(),
			Line:   -1,
			Offset: pos,
			Raw:    line,
			cause:  err,
		}
	}
	return d, pos, nil
}

// readLineAt reads the single line starting at pos through an independent
// handle on src. The line terminator is stripped the same way the build
// strips it, so fetched text matches what the decode function saw.
func readLineAt(ctx context.Context, src source.Source, res *resource.Controller, pos int64) (string, error) {
	if err := res.AcquireFetch(ctx); err != nil {
		return "", err
	}
	defer res.ReleaseFetch()

	rc, err := src.ReadFrom(ctx, pos)
	if err != nil {
		return "", fmt.Errorf("failed to read %s at offset %d: %w", src.Name(), pos, err)
	}
	defer rc.Close()

	br := bufio.NewReader(resource.NewRateLimitedReader(rc, res, ctx))
	raw, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read %s at offset %d: %w", src.Name(), pos, err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: %s at offset %d", ErrOffsetOutOfRange, src.Name(), pos)
	}

	if strings.HasSuffix(raw, "\n") {
		raw = raw[:len(raw)-1]
		if strings.HasSuffix(raw, "\r") {
			raw = raw[:len(raw)-1]
		}
	}
	return raw, nil
}

// FetchOptions configures a FetchSet call.
type FetchOptions struct {
	// Concurrency bounds the number of in-flight fetches. Values below 1
	// fall back to the index default.
	Concurrency int
}

// FetchSet fetches the full row behind every position in set, in parallel,
// and returns the decoded records ordered by position.
//
// Concurrency is bounded by the index default (see WithFetchConcurrency)
// unless overridden per call. The first failing fetch cancels the rest and
// is returned.
//
// Example:
//
//	set := ix.Select(func(r cityRecord) bool { return r.Pop > 1_000_000 })
//	rows, err := csvgo.FetchSet(ctx, ix, set, decodeFull, func(o *csvgo.FetchOptions) {
//	    o.Concurrency = 4
//	})
func FetchSet[D any, T Record[O], O Offset](ctx context.Context, ix *Index[T, O], set *RowSet, decode func(line string) (D, error), optFns ...func(*FetchOptions)) ([]D, error) {
	opts := FetchOptions{
		Concurrency: ix.fetchConcurrency,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultFetchConcurrency
	}

	positions := set.Positions()
	for _, p := range positions {
		if int(p) >= len(ix.records) {
			return nil, fmt.Errorf("position %d out of range (%d records)", p, len(ix.records))
		}
	}

	out := make([]D, len(positions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, p := range positions {
		g.Go(func() error {
			d, err := FullRecord(gctx, ix, ix.records[p], decode)
			if err != nil {
				return err
			}
			out[i] = d
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
