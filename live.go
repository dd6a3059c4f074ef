package csvgo

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Live wraps an Index over a local file that is rebuilt automatically when
// the file changes. Safe for concurrent use; the index is swapped atomically.
//
// Readers keep whichever index they grabbed; every index is immutable, so a
// swap never invalidates in-flight lookups or fetches. A failed rebuild
// keeps the previous index current and is logged at error level.
type Live[T Record[O], O Offset] struct {
	path   string
	decode DecodeFunc[T, O]
	optFns []Option
	logger *Logger

	current atomic.Pointer[Index[T, O]]
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// OpenLive builds an index over the file at path and starts watching it for
// changes. Write and create events on the path trigger a rebuild.
//
// The watch covers the containing directory so that editors and atomic
// replacers, which recreate the file, keep triggering rebuilds; a watch on
// the file itself would go stale after the first replace.
func OpenLive[T Record[O], O Offset](ctx context.Context, path string, decode DecodeFunc[T, O], optFns ...Option) (*Live[T, O], error) {
	ix, err := New(ctx, path, decode, optFns...)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	lv := &Live[T, O]{
		path:    path,
		decode:  decode,
		optFns:  optFns,
		logger:  applyOptions(optFns).logger,
		watcher: w,
		done:    make(chan struct{}),
	}
	lv.current.Store(ix)

	go lv.watchLoop()

	return lv, nil
}

// Index returns the current index. Never nil after a successful OpenLive.
func (l *Live[T, O]) Index() *Index[T, O] {
	return l.current.Load()
}

// Reload rebuilds the index from the current file contents and swaps it in.
// On failure the previous index stays current and the error is returned.
func (l *Live[T, O]) Reload(ctx context.Context) error {
	ix, err := New(ctx, l.path, l.decode, l.optFns...)
	if err != nil {
		return err
	}
	l.current.Store(ix)
	return nil
}

// Close stops the file watcher. The last swapped index remains usable.
func (l *Live[T, O]) Close() error {
	err := l.watcher.Close()
	<-l.done
	return err
}

func (l *Live[T, O]) watchLoop() {
	defer close(l.done)
	for {
		select {
		case ev, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(l.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			ctx := context.Background()
			err := l.Reload(ctx)
			l.logger.LogReload(ctx, l.path, l.Index().Len(), err)
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.logger.ErrorContext(context.Background(), "watch error",
				"source", l.path,
				"error", err,
			)
		}
	}
}
