package csvgo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with csvgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithSource adds a source field to the logger (the table being indexed).
func (l *Logger) WithSource(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("source", name),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogBuild logs an index build.
func (l *Logger) LogBuild(ctx context.Context, source string, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"source", source,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "build completed",
			"source", source,
			"rows", rows,
		)
	}
}

// LogFind logs a lookup.
func (l *Logger) LogFind(ctx context.Context, source string, found bool) {
	l.DebugContext(ctx, "find completed",
		"source", source,
		"found", found,
	)
}

// LogFetch logs a full-record fetch.
func (l *Logger) LogFetch(ctx context.Context, source string, offset int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "fetch failed",
			"source", source,
			"offset", offset,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "fetch completed",
			"source", source,
			"offset", offset,
		)
	}
}

// LogSnapshotSave logs a snapshot write.
func (l *Logger) LogSnapshotSave(ctx context.Context, name string, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot save failed",
			"snapshot", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"snapshot", name,
			"rows", rows,
		)
	}
}

// LogSnapshotLoad logs a snapshot load.
func (l *Logger) LogSnapshotLoad(ctx context.Context, name string, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot load failed",
			"snapshot", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot loaded",
			"snapshot", name,
			"rows", rows,
		)
	}
}

// LogReload logs a live index rebuild.
func (l *Logger) LogReload(ctx context.Context, source string, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "reload failed",
			"source", source,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "reload completed",
			"source", source,
			"rows", rows,
		)
	}
}
