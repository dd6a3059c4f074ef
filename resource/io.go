package resource

import (
	"context"
	"io"
)

// ioChunkSize caps a single IO budget request. It never exceeds a
// controller's burst, so arbitrarily large reads and writes stay admissible
// under any configured limit.
const ioChunkSize = 256 * 1024

// RateLimitedReader wraps an io.Reader with the controller's IO budget.
type RateLimitedReader struct {
	r   io.Reader
	rc  *Controller
	ctx context.Context
}

// NewRateLimitedReader creates a new RateLimitedReader. A nil controller
// passes reads through unchanged.
func NewRateLimitedReader(r io.Reader, rc *Controller, ctx context.Context) *RateLimitedReader {
	return &RateLimitedReader{
		r:   r,
		rc:  rc,
		ctx: ctx,
	}
}

func (r *RateLimitedReader) Read(p []byte) (n int, err error) {
	// The true read size is unknown up front, so budget the buffer size
	// (the maximum potential read).
	if len(p) > ioChunkSize {
		p = p[:ioChunkSize]
	}
	if err := r.rc.AcquireIO(r.ctx, len(p)); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// RateLimitedWriter wraps an io.Writer with the controller's IO budget.
type RateLimitedWriter struct {
	w   io.Writer
	rc  *Controller
	ctx context.Context
}

// NewRateLimitedWriter creates a new RateLimitedWriter. A nil controller
// passes writes through unchanged.
func NewRateLimitedWriter(w io.Writer, rc *Controller, ctx context.Context) *RateLimitedWriter {
	return &RateLimitedWriter{
		w:   w,
		rc:  rc,
		ctx: ctx,
	}
}

func (w *RateLimitedWriter) Write(p []byte) (n int, err error) {
	for len(p) > 0 {
		chunk := p
		if len(chunk) > ioChunkSize {
			chunk = chunk[:ioChunkSize]
		}

		if err := w.rc.AcquireIO(w.ctx, len(chunk)); err != nil {
			return n, err
		}

		m, werr := w.w.Write(chunk)
		n += m
		if werr != nil {
			return n, werr
		}

		p = p[m:]
	}

	return n, nil
}
