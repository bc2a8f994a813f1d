// Package watcher provides file system watching with automatic
// re-synchronization.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"codescout/internal/fs"
	"codescout/internal/syncer"
)

// Watcher watches a directory tree and runs a synchronization pass when
// files change. A full pass is cheap: unchanged files are skipped by
// fingerprint, so only the touched files do real work.
type Watcher struct {
	root   string
	syncer *Syncer

	// debounce holds pending file events so bursts collapse into one pass
	debounce     map[string]fsnotify.Op
	debounceMu   sync.Mutex
	debounceTime time.Duration

	// callback for status updates
	onSync func(report *syncer.Report)
}

// Syncer is the subset of the syncer the watcher drives.
type Syncer = syncer.Syncer

// Option configures the watcher.
type Option func(*Watcher)

// WithDebounceTime sets the debounce duration for batching events.
func WithDebounceTime(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounceTime = d
	}
}

// WithSyncCallback sets a callback invoked after each triggered pass.
func WithSyncCallback(fn func(report *syncer.Report)) Option {
	return func(w *Watcher) {
		w.onSync = fn
	}
}

// New creates a new file watcher.
func New(root string, sync *Syncer, opts ...Option) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:         absRoot,
		syncer:       sync,
		debounce:     make(map[string]fsnotify.Op),
		debounceTime: 500 * time.Millisecond,
		onSync:       func(*syncer.Report) {}, // noop default
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Start begins watching for file changes. Blocks until context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Add all directories recursively
	if err := w.addDirectories(watcher); err != nil {
		return err
	}

	log.Info("Watching for file changes", "root", w.root)

	// Start debounce processor
	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event, watcher)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("Watcher error", "error", err)
		}
	}
}

// addDirectories recursively adds all directories to the watcher.
func (w *Watcher) addDirectories(watcher *fsnotify.Watcher) error {
	return filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip errors
		}

		if !d.IsDir() {
			return nil
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") && name != "." {
			return filepath.SkipDir
		}
		if shouldSkipDir(name) {
			return filepath.SkipDir
		}

		if err := watcher.Add(path); err != nil {
			log.Debug("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// shouldSkipDir returns true if directory should not be watched.
func shouldSkipDir(name string) bool {
	skipDirs := []string{
		"node_modules", "vendor", "dist", "build", "out", "target",
		"bin", "obj", ".git", ".idea", ".vscode", "__pycache__",
		"coverage", ".nyc_output",
	}
	for _, skip := range skipDirs {
		if name == skip {
			return true
		}
	}
	return false
}

// handleEvent queues a single file system event.
func (w *Watcher) handleEvent(event fsnotify.Event, watcher *fsnotify.Watcher) {
	path := event.Name

	// Skip hidden files
	if strings.HasPrefix(filepath.Base(path), ".") {
		return
	}

	// For new directories, add to watcher
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !shouldSkipDir(filepath.Base(path)) {
				watcher.Add(path)
				log.Debug("Added directory to watch", "path", path)
			}
			return
		}
	}

	// Removes and renames always matter; for everything else only
	// source files do
	if !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return
		}
		if fs.DetectLanguage(path) == fs.LangUnknown {
			return
		}
	}

	w.debounceMu.Lock()
	w.debounce[path] = event.Op
	w.debounceMu.Unlock()
}

// processDebounced runs a synchronization pass when events settle.
func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(w.debounceTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.flushDebounced(ctx)
		}
	}
}

// flushDebounced drains pending events and runs one pass for the batch.
func (w *Watcher) flushDebounced(ctx context.Context) {
	w.debounceMu.Lock()
	pending := len(w.debounce)
	w.debounce = make(map[string]fsnotify.Op)
	w.debounceMu.Unlock()

	if pending == 0 {
		return
	}

	log.Debug("Changes detected, synchronizing", "events", pending)

	report, err := w.syncer.Sync(ctx, syncer.SyncOptions{Root: w.root})
	if err != nil {
		log.Error("Synchronization failed", "error", err)
		return
	}

	if report.Updated > 0 || report.Removed > 0 {
		log.Info("Index updated",
			"updated", report.Updated,
			"removed", report.Removed,
			"skipped", report.Skipped,
		)
	}
	w.onSync(report)
}
