package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/parthkaria14/GenAdvisor/internal/types"
)

// Watcher watches a market data directory and emits a refresh trigger when
// feed files change. Rapid bursts of file events (editors, atomic renames)
// are collapsed into a single trigger per debounce window.
type Watcher struct {
	fsw      *fsnotify.Watcher
	events   chan string
	debounce time.Duration
	logger   *slog.Logger
}

// NewWatcher creates a Watcher over dir. Call Start to begin watching and
// Close to release the underlying file system watcher.
func NewWatcher(dir string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "failed to create file watcher", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "failed to watch market data directory", err)
	}
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	return &Watcher{
		fsw:      fsw,
		events:   make(chan string, 1),
		debounce: debounce,
		logger:   logger,
	}, nil
}

// Events returns the channel on which debounced change triggers are
// delivered. The value is the path of the last file that changed.
func (w *Watcher) Events() <-chan string {
	return w.events
}

// Start runs the watch loop until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *Watcher) run(ctx context.Context) {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending string
	)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !isFeedEvent(ev) {
				continue
			}
			pending = ev.Name
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
		case <-timerC:
			timer = nil
			timerC = nil
			select {
			case w.events <- pending:
			default:
				// A trigger is already queued; the consumer will refresh.
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("market data watch error", "error", err)
		}
	}
}

// Close releases the underlying file system watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// isFeedEvent reports whether ev is a content change to a feed file.
func isFeedEvent(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	switch strings.ToLower(filepath.Ext(ev.Name)) {
	case ".json", ".csv", ".yaml", ".yml":
		return true
	}
	return false
}
