package dev

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeType represents the type of file change.
type ChangeType int

const (
	ChangeCreate ChangeType = iota
	ChangeWrite
	ChangeRemove
	ChangeRename
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreate:
		return "create"
	case ChangeWrite:
		return "write"
	case ChangeRemove:
		return "remove"
	case ChangeRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Change represents a detected file change.
type Change struct {
	Path string
	Type ChangeType
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the directories to watch, recursively.
	Paths []string

	// Ignore patterns to skip (names, path fragments or globs).
	Ignore []string

	// Extensions limits reported changes to files with these suffixes.
	// Empty means every file.
	Extensions []string

	// Debounce is the quiet period after the last event before changes are
	// delivered.
	Debounce time.Duration

	// Logger receives watcher diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	"*_test.go",
	".git",
	"node_modules",
	"*.tmp",
	"*.swp",
	"*~",
}

// DefaultDebounce is used when WatcherConfig.Debounce is zero.
const DefaultDebounce = 100 * time.Millisecond

// Watcher delivers batches of file changes to a callback.
//
// Events are debounced, and batches are delivered one at a time from a
// single goroutine: changes that arrive while the callback runs are
// coalesced into exactly one follow-up delivery.
type Watcher struct {
	config   WatcherConfig
	logger   *slog.Logger
	onChange func([]Change)

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	pending []Change

	// dirs holds the watched directories. Only the event loop touches it.
	dirs map[string]struct{}

	ready     chan struct{}
	readyOnce sync.Once
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Debounce == 0 {
		config.Debounce = DefaultDebounce
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		config: config,
		logger: logger,
		ready:  make(chan struct{}),
	}
}

// OnChange sets the callback for file changes.
func (w *Watcher) OnChange(fn func([]Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start watches until ctx is cancelled or Stop is called. It returns nil in
// both cases.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("dev: watcher already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	w.dirs = make(map[string]struct{})
	for _, path := range w.config.Paths {
		if err := w.addRecursive(fsw, path); err != nil {
			return err
		}
	}

	w.readyOnce.Do(func() { close(w.ready) })

	trigger := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range trigger {
			w.deliver()
		}
	}()
	defer func() {
		close(trigger)
		<-done
	}()

	debounce := time.NewTimer(w.config.Debounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-stopCh:
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(fsw, event) {
				debounce.Reset(w.config.Debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)

		case <-debounce.C:
			select {
			case trigger <- struct{}{}:
			default:
				// A delivery is already queued; it will pick up this batch.
			}
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running && w.stopCh != nil {
		close(w.stopCh)
		w.stopCh = nil
	}
}

// Ready is closed once the first Start has registered its watches.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// handleEvent records a relevant event and reports whether it was queued.
//
// A directory that appears (created or moved in) is watched, and counts as
// a change when it already holds matching files. A watched directory that
// is removed or moved away always counts as a change.
func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, event fsnotify.Event) bool {
	if w.shouldIgnore(event.Name) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(fsw, event.Name); err != nil {
				w.logger.Warn("watcher could not follow directory", "path", event.Name, "error", err)
			}
			if !w.hasMatchingFiles(event.Name) {
				return false
			}
			w.queue(Change{Path: event.Name, Type: ChangeCreate})
			return true
		}
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if w.forgetDir(fsw, event.Name) {
			change, _ := classifyEvent(event)
			w.queue(change)
			return true
		}
	}

	if !w.matchesExtension(event.Name) {
		return false
	}

	change, ok := classifyEvent(event)
	if !ok {
		return false
	}
	w.queue(change)
	return true
}

func (w *Watcher) queue(change Change) {
	w.mu.Lock()
	w.pending = append(w.pending, change)
	w.mu.Unlock()
}

// deliver hands the pending batch to the callback.
func (w *Watcher) deliver() {
	w.mu.Lock()
	batch := w.pending
	w.pending = nil
	callback := w.onChange
	w.mu.Unlock()

	if len(batch) == 0 || callback == nil {
		return
	}
	callback(dedupe(batch))
}

func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && w.shouldIgnore(p) {
			return filepath.SkipDir
		}
		if err := fsw.Add(p); err != nil {
			return err
		}
		w.dirs[p] = struct{}{}
		return nil
	})
}

// forgetDir drops the watches of dir and everything below it. It reports
// whether dir was a watched directory.
func (w *Watcher) forgetDir(fsw *fsnotify.Watcher, dir string) bool {
	if _, ok := w.dirs[dir]; !ok {
		return false
	}
	prefix := dir + string(filepath.Separator)
	for p := range w.dirs {
		if p == dir || strings.HasPrefix(p, prefix) {
			delete(w.dirs, p)
			// The kernel may already have dropped the watch.
			_ = fsw.Remove(p)
		}
	}
	return true
}

// hasMatchingFiles reports whether dir holds a file that would be reported
// on its own.
func (w *Watcher) hasMatchingFiles(dir string) bool {
	found := false
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if w.shouldIgnore(p) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && w.matchesExtension(p) {
			found = true
			return fs.SkipAll
		}
		return nil
	})
	return found
}

func (w *Watcher) matchesExtension(path string) bool {
	if len(w.config.Extensions) == 0 {
		return true
	}
	for _, ext := range w.config.Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// shouldIgnore matches relative to the watched root containing path, so the
// root's own location never triggers a pattern.
func (w *Watcher) shouldIgnore(path string) bool {
	for _, root := range w.config.Paths {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return MatchIgnore(rel, w.config.Ignore)
	}
	return MatchIgnore(path, w.config.Ignore)
}

func classifyEvent(event fsnotify.Event) (Change, bool) {
	switch {
	case event.Has(fsnotify.Remove):
		return Change{Path: event.Name, Type: ChangeRemove}, true
	case event.Has(fsnotify.Rename):
		return Change{Path: event.Name, Type: ChangeRename}, true
	case event.Has(fsnotify.Create):
		return Change{Path: event.Name, Type: ChangeCreate}, true
	case event.Has(fsnotify.Write):
		return Change{Path: event.Name, Type: ChangeWrite}, true
	default:
		return Change{}, false
	}
}

// dedupe keeps the last change per path, in first-seen order.
func dedupe(batch []Change) []Change {
	index := make(map[string]int, len(batch))
	out := make([]Change, 0, len(batch))
	for _, c := range batch {
		if i, ok := index[c.Path]; ok {
			out[i] = c
			continue
		}
		index[c.Path] = len(out)
		out = append(out, c)
	}
	return out
}
