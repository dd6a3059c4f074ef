package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits for full-record fetches.
type Config struct {
	// MaxConcurrentFetches is the maximum number of in-flight fetches.
	// If 0, unlimited.
	MaxConcurrentFetches int64

	// IOLimitBytesPerSec is the maximum read throughput for fetches.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller coordinates fetch concurrency and read throughput across all
// indexes that share it. A nil *Controller is valid and enforces nothing.
type Controller struct {
	cfg Config

	// Concurrency
	fetchSem *semaphore.Weighted // nil if unlimited
	inFlight atomic.Int64

	// IO
	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MaxConcurrentFetches > 0 {
		c.fetchSem = semaphore.NewWeighted(cfg.MaxConcurrentFetches)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		burst := int(cfg.IOLimitBytesPerSec)
		// Burst must cover one buffered read so limits below the buffer
		// size still make progress.
		if burst < 256*1024 {
			burst = 256 * 1024
		}
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), burst)
	}

	return c
}

// AcquireFetch reserves a fetch slot. If all slots are busy this blocks
// until one frees or ctx is canceled.
func (c *Controller) AcquireFetch(ctx context.Context) error {
	if c == nil {
		return nil
	}

	if c.fetchSem != nil {
		if err := c.fetchSem.Acquire(ctx, 1); err != nil {
			return err
		}
	}

	c.inFlight.Add(1)
	return nil
}

// TryAcquireFetch reserves a fetch slot without blocking.
// Returns true if acquired, false if all slots are busy.
func (c *Controller) TryAcquireFetch() bool {
	if c == nil {
		return true
	}

	if c.fetchSem != nil {
		if !c.fetchSem.TryAcquire(1) {
			return false
		}
	}

	c.inFlight.Add(1)
	return true
}

// ReleaseFetch releases a fetch slot.
func (c *Controller) ReleaseFetch() {
	if c == nil {
		return
	}

	if c.fetchSem != nil {
		c.fetchSem.Release(1)
	}
	c.inFlight.Add(-1)
}

// InFlight returns the current number of reserved fetch slots.
func (c *Controller) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	return c.ioLimiter.WaitN(ctx, bytes)
}
