package csvgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    fetchCounter   prometheus.Counter
//	    fetchHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordFetch(duration time.Duration, err error) {
//	    p.fetchCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordBuild is called after each index build.
	// rows is the number of records indexed, duration is the total time taken,
	// err is nil if successful.
	RecordBuild(rows int, duration time.Duration, err error)

	// RecordFind is called after each lookup.
	// found reports whether a record matched, duration is the time taken.
	RecordFind(found bool, duration time.Duration)

	// RecordFetch is called after each full-record fetch.
	RecordFetch(duration time.Duration, err error)

	// RecordSnapshotLoad is called after each snapshot load.
	// rows is the number of records restored.
	RecordSnapshotLoad(rows int, duration time.Duration, err error)

	// RecordSnapshotSave is called after each snapshot write.
	RecordSnapshotSave(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int, time.Duration, error)        {}
func (NoopMetricsCollector) RecordFind(bool, time.Duration)               {}
func (NoopMetricsCollector) RecordFetch(time.Duration, error)             {}
func (NoopMetricsCollector) RecordSnapshotLoad(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordSnapshotSave(time.Duration, error)      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount         atomic.Int64
	BuildErrors        atomic.Int64
	BuildRows          atomic.Int64
	BuildTotalNanos    atomic.Int64
	FindCount          atomic.Int64
	FindMisses         atomic.Int64
	FindTotalNanos     atomic.Int64
	FetchCount         atomic.Int64
	FetchErrors        atomic.Int64
	FetchTotalNanos    atomic.Int64
	SnapshotLoadCount  atomic.Int64
	SnapshotLoadErrors atomic.Int64
	SnapshotSaveCount  atomic.Int64
	SnapshotSaveErrors atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(rows int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
	} else {
		b.BuildRows.Add(int64(rows))
	}
}

// RecordFind implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFind(found bool, duration time.Duration) {
	b.FindCount.Add(1)
	b.FindTotalNanos.Add(duration.Nanoseconds())
	if !found {
		b.FindMisses.Add(1)
	}
}

// RecordFetch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFetch(duration time.Duration, err error) {
	b.FetchCount.Add(1)
	b.FetchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FetchErrors.Add(1)
	}
}

// RecordSnapshotLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshotLoad(rows int, duration time.Duration, err error) {
	b.SnapshotLoadCount.Add(1)
	if err != nil {
		b.SnapshotLoadErrors.Add(1)
	}
}

// RecordSnapshotSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshotSave(duration time.Duration, err error) {
	b.SnapshotSaveCount.Add(1)
	if err != nil {
		b.SnapshotSaveErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:         b.BuildCount.Load(),
		BuildErrors:        b.BuildErrors.Load(),
		BuildRows:          b.BuildRows.Load(),
		BuildAvgNanos:      b.getAvgBuildNanos(),
		FindCount:          b.FindCount.Load(),
		FindMisses:         b.FindMisses.Load(),
		FetchCount:         b.FetchCount.Load(),
		FetchErrors:        b.FetchErrors.Load(),
		FetchAvgNanos:      b.getAvgFetchNanos(),
		SnapshotLoadCount:  b.SnapshotLoadCount.Load(),
		SnapshotLoadErrors: b.SnapshotLoadErrors.Load(),
		SnapshotSaveCount:  b.SnapshotSaveCount.Load(),
		SnapshotSaveErrors: b.SnapshotSaveErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgBuildNanos() int64 {
	count := b.BuildCount.Load()
	if count == 0 {
		return 0
	}
	return b.BuildTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgFetchNanos() int64 {
	count := b.FetchCount.Load()
	if count == 0 {
		return 0
	}
	return b.FetchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount         int64
	BuildErrors        int64
	BuildRows          int64
	BuildAvgNanos      int64
	FindCount          int64
	FindMisses         int64
	FetchCount         int64
	FetchErrors        int64
	FetchAvgNanos      int64
	SnapshotLoadCount  int64
	SnapshotLoadErrors int64
	SnapshotSaveCount  int64
	SnapshotSaveErrors int64
}
