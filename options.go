package csvgo

import (
	"log/slog"

	"github.com/hupe1980/csvgo/codec"
	"github.com/hupe1980/csvgo/resource"
	"github.com/hupe1980/csvgo/snapshot"
)

type options struct {
	codec              codec.Codec
	compression        snapshot.CompressionType
	metricsCollector   MetricsCollector
	logger             *Logger
	resourceController *resource.Controller
	fetchConcurrency   int
}

// Option configures index constructor/load behavior.
//
// Today options primarily exist to avoid exploding the API surface
// (e.g. codec-specific constructor variants).
type Option func(*options)

// WithCodec configures the codec used for encoding and decoding snapshots.
//
// If nil is passed, codec.Default is used. On load the codec is selected by
// the snapshot header, so an index can read snapshots written with any
// registered codec regardless of this option.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression configures the compression applied to snapshot payloads.
//
// The compression type is recorded in the snapshot header; loading picks it
// up from there, so this option only affects writes.
//
// Example:
//
//	ix, _ := csvgo.FromSnapshot(ctx, "cities.csv", "cities.snap", decode,
//	    csvgo.WithCompression(snapshot.CompressionZSTD))
func WithCompression(ct snapshot.CompressionType) Option {
	return func(o *options) {
		o.compression = ct
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
//
// Example with BasicMetricsCollector:
//
//	metrics := &csvgo.BasicMetricsCollector{}
//	ix, _ := csvgo.New(ctx, "cities.csv", decode, csvgo.WithMetricsCollector(metrics))
//	// ... use ix ...
//	stats := metrics.GetStats()
//	fmt.Printf("Fetches: %d, Avg latency: %dns\n", stats.FetchCount, stats.FetchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
//
// Example with JSON logging:
//
//	logger := csvgo.NewJSONLogger(slog.LevelInfo)
//	ix, _ := csvgo.New(ctx, "cities.csv", decode, csvgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceController bounds fetch concurrency and read throughput across
// every fetch issued through the index. A nil controller leaves fetches
// uncoordinated, which is the default.
//
// Example:
//
//	rc := resource.NewController(resource.Config{
//	    MaxConcurrentFetches: 16,
//	    IOLimitBytesPerSec:   8 << 20,
//	})
//	ix, _ := csvgo.New(ctx, "cities.csv", decode, csvgo.WithResourceController(rc))
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resourceController = rc
	}
}

// WithFetchConcurrency sets the default number of concurrent fetches used by
// FetchSet. Values below 1 keep the package default.
func WithFetchConcurrency(n int) Option {
	return func(o *options) {
		o.fetchConcurrency = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            nil,
		compression:      snapshot.CompressionNone,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
