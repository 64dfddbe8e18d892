// Package watch discovers new asset files in the watch directory. It
// combines fsnotify events with an initial scan and a periodic rescan as a
// safety net for events lost during bursts or editor renames.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"amberpipe/internal/logging"
)

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".bmp":  {},
	".gif":  {},
	".tif":  {},
	".tiff": {},
}

// IsImage reports whether the filename has a decodable image extension.
func IsImage(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Watcher monitors one directory and hands each new image file to the
// dispatch callback exactly once per watcher lifetime.
type Watcher struct {
	dir        string
	rescan     time.Duration
	errorRetry time.Duration
	logger     *slog.Logger
	dispatch   func(path string)

	mu   sync.Mutex
	seen map[string]struct{}

	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a watcher. errorRetry is the pause after a monitoring error
// before the loop resumes. The dispatch callback must not block; it is
// expected to hand work to its own goroutine.
func New(dir string, rescan, errorRetry time.Duration, logger *slog.Logger, dispatch func(path string)) *Watcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	if rescan <= 0 {
		rescan = 2 * time.Second
	}
	if errorRetry <= 0 {
		errorRetry = 5 * time.Second
	}
	return &Watcher{
		dir:        dir,
		rescan:     rescan,
		errorRetry: errorRetry,
		logger:     logging.WithComponent(logger, "watcher"),
		dispatch:   dispatch,
		seen:       make(map[string]struct{}),
	}
}

// Start begins monitoring. It returns once the initial scan has been
// dispatched; discovery continues in the background until Stop.
func (w *Watcher) Start(ctx context.Context) error {
	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := notifier.Add(w.dir); err != nil {
		notifier.Close()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	if err := w.scan(); err != nil {
		w.logger.Warn("initial scan failed", logging.Error(err))
	}

	go w.loop(runCtx, notifier)
	return nil
}

// Stop halts discovery, waiting up to timeout for the loop to exit. Work
// already dispatched is unaffected.
func (w *Watcher) Stop(timeout time.Duration) {
	if w.cancel == nil {
		return
	}
	w.cancel()
	select {
	case <-w.done:
	case <-time.After(timeout):
		w.logger.Warn("watcher loop did not stop within timeout",
			logging.Duration("timeout", timeout))
	}
}

func (w *Watcher) loop(ctx context.Context, notifier *fsnotify.Watcher) {
	defer close(w.done)
	defer notifier.Close()

	ticker := time.NewTicker(w.rescan)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-notifier.Events:
			if !ok {
				return
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Rename) {
				w.consider(event.Name)
			}
		case err, ok := <-notifier.Errors:
			if !ok {
				return
			}
			// Transient; the rescan ticker covers anything missed.
			w.logger.Warn("watch error", logging.Error(err))
			if !w.backoff(ctx) {
				return
			}
		case <-ticker.C:
			if err := w.scan(); err != nil {
				w.logger.Warn("rescan failed", logging.Error(err))
				if !w.backoff(ctx) {
					return
				}
			}
		}
	}
}

// backoff pauses after a monitoring error so a persistent failure does not
// spin the loop. It reports false when the context ended during the pause.
func (w *Watcher) backoff(ctx context.Context) bool {
	timer := time.NewTimer(w.errorRetry)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// scan walks the directory and dispatches anything not yet seen.
func (w *Watcher) scan() error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.consider(filepath.Join(w.dir, entry.Name()))
	}
	return nil
}

func (w *Watcher) consider(path string) {
	if !IsImage(path) {
		return
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return
	}

	w.mu.Lock()
	if _, dup := w.seen[path]; dup {
		w.mu.Unlock()
		return
	}
	w.seen[path] = struct{}{}
	w.mu.Unlock()

	w.logger.Info("discovered asset", logging.String(logging.FieldAsset, filepath.Base(path)))
	w.dispatch(path)
}
