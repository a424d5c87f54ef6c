package notes

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultWatchDebounce groups bursts of file writes into one invalidation.
const DefaultWatchDebounce = 50 * time.Millisecond

// WatchFile invalidates live queries when dbPath (or its WAL) is written by
// another process. It returns once the watcher is installed; watching stops
// when ctx is done.
func (s *SQLStore) WatchFile(ctx context.Context, dbPath string, debounce time.Duration) error {
	if dbPath == "" {
		return fmt.Errorf("cannot watch an in-memory database")
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return fmt.Errorf("failed to resolve database path '%s': %w", dbPath, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory: SQLite replaces and creates sidecar files (-wal, -journal).
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch '%s': %w", filepath.Dir(absPath), err)
	}

	watched := map[string]bool{
		absPath:              true,
		absPath + "-wal":     true,
		absPath + "-journal": true,
	}
	d := newDebouncer(debounce, s.notify)

	go func() {
		defer d.stop()
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !watched[event.Name] || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Remove) {
					continue
				}
				s.logger.Debug("database file changed", zap.String("name", event.Name), zap.Stringer("op", event.Op))
				d.trigger()
			case wErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Error("fsnotify error", zap.Error(wErr))
			}
		}
	}()

	return nil
}

// debouncer calls fn once per quiet period after the last trigger.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	timer   *time.Timer
	stopped bool
}

func newDebouncer(delay time.Duration, fn func()) *debouncer {
	return &debouncer{delay: delay, fn: fn}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
