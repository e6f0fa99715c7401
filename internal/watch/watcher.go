// Package watch provides debounced file watching for watch mode: when
// scenario or configuration files change, the suite is rerun.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceTime = 250 * time.Millisecond

// Options contains configuration options for the file watcher.
type Options struct {
	// Paths is a list of file paths or directories to watch.
	Paths []string

	// Extensions limits events to these file extensions. If empty,
	// all files are watched.
	Extensions []string

	// IgnorePaths is a list of path substrings to ignore.
	IgnorePaths []string
}

// Watcher watches files and invokes a callback after changes settle.
// A burst of events within the debounce window triggers one callback.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	options  Options
	notify   func(path string)
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a file watcher. notify runs on the watcher goroutine;
// long reruns should be handed off by the caller.
func New(logger *slog.Logger, options Options, notify func(path string)) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher: fsWatcher,
		logger:  logger,
		options: options,
		notify:  notify,
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching. It returns immediately; events are handled on
// a background goroutine until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	for _, path := range w.options.Paths {
		if err := w.watcher.Add(path); err != nil {
			w.logger.Error("watch: adding path", "path", path, "error", err)
		}
	}
	go w.watch(ctx)
	return nil
}

// Stop stops watching. Safe to call more than once; context
// cancellation also stops the watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

func (w *Watcher) watch(ctx context.Context) {
	debounce := time.NewTimer(debounceTime)
	debounce.Stop()
	var lastEvent fsnotify.Event

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.shouldIgnore(event.Name) || !w.hasWatchedExtension(event.Name) {
				continue
			}
			lastEvent = event
			debounce.Reset(debounceTime)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch: watcher error", "error", err)

		case <-debounce.C:
			w.logger.Info("watch: change detected", "path", lastEvent.Name, "op", lastEvent.Op.String())
			w.notify(lastEvent.Name)
		}
	}
}

func (w *Watcher) shouldIgnore(path string) bool {
	for _, ignorePath := range w.options.IgnorePaths {
		if strings.Contains(path, ignorePath) {
			return true
		}
	}
	return false
}

func (w *Watcher) hasWatchedExtension(path string) bool {
	if len(w.options.Extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, watchExt := range w.options.Extensions {
		if ext == watchExt {
			return true
		}
	}
	return false
}
