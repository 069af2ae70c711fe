// Package hotreload watches a configuration file and delivers validated
// reloads. Rapid change bursts are debounced, and a config that fails
// validation is reported but never applied.
package hotreload

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/airsstack/airssys-osl/pkg/config"
)

// Stats counts reload outcomes.
type Stats struct {
	mu            sync.RWMutex
	ReloadsTotal  int64     `json:"reloads_total"`
	ReloadsOK     int64     `json:"reloads_ok"`
	ReloadsFailed int64     `json:"reloads_failed"`
	LastReload    time.Time `json:"last_reload,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
}

// Watcher reloads one configuration file on change.
type Watcher struct {
	path     string
	debounce time.Duration
	onReload func(*config.Config, error)
	logger   *slog.Logger

	watcher *fsnotify.Watcher
	running atomic.Bool
	stats   Stats
}

// Options configures a Watcher.
type Options struct {
	// Path is the configuration file to watch.
	Path string

	// OnReload receives every reload outcome: a validated config on
	// success, or the validation error with a nil config.
	OnReload func(*config.Config, error)

	// Debounce collapses bursts of change events. Zero means 100ms.
	Debounce time.Duration

	// Logger receives watcher diagnostics (slog.Default when nil).
	Logger *slog.Logger
}

// New creates a watcher for the configuration at opts.Path.
func New(opts Options) (*Watcher, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("config path is required")
	}
	if opts.OnReload == nil {
		return nil, fmt.Errorf("reload callback is required")
	}
	debounce := opts.Debounce
	if debounce == 0 {
		debounce = 100 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     opts.Path,
		debounce: debounce,
		onReload: opts.OnReload,
		logger:   logger,
	}, nil
}

// Start begins watching. It returns immediately; reloads are delivered
// from a background goroutine until ctx ends or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return fmt.Errorf("watcher already running")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.running.Store(false)
		return fmt.Errorf("creating watcher: %w", err)
	}
	// Watch the directory: editors replace files by rename, which
	// drops a watch set on the file itself.
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		w.running.Store(false)
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}
	w.watcher = fw

	go w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	var pending time.Time
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !sameFile(event.Name, w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.Now()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", slog.Any("error", err))

		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < w.debounce {
				continue
			}
			pending = time.Time{}
			w.reload()

		case <-ctx.Done():
			return
		}
	}
}

func sameFile(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

func (w *Watcher) reload() {
	w.stats.mu.Lock()
	w.stats.ReloadsTotal++
	w.stats.mu.Unlock()

	cfg, err := config.Load(w.path)
	if err != nil {
		w.stats.mu.Lock()
		w.stats.ReloadsFailed++
		w.stats.LastError = err.Error()
		w.stats.mu.Unlock()
		w.logger.Warn("config reload rejected",
			slog.String("path", w.path),
			slog.Any("error", err))
		w.onReload(nil, err)
		return
	}

	w.stats.mu.Lock()
	w.stats.ReloadsOK++
	w.stats.LastReload = time.Now().UTC()
	w.stats.mu.Unlock()
	w.logger.Info("config reloaded", slog.String("path", w.path))
	w.onReload(cfg, nil)
}

// Stats returns a snapshot of reload counters.
func (w *Watcher) Stats() Stats {
	w.stats.mu.RLock()
	defer w.stats.mu.RUnlock()
	return Stats{
		ReloadsTotal:  w.stats.ReloadsTotal,
		ReloadsOK:     w.stats.ReloadsOK,
		ReloadsFailed: w.stats.ReloadsFailed,
		LastReload:    w.stats.LastReload,
		LastError:     w.stats.LastError,
	}
}

// Stop ends watching. It is safe to call multiple times.
func (w *Watcher) Stop() error {
	if !w.running.CompareAndSwap(true, false) {
		return nil
	}
	return w.watcher.Close()
}
