// Package watch reports which expanded directories of a local tree changed
// on disk, so the navigator can refresh them.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"filelens/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a directory must be quiet before its change
// is reported.
const DefaultDebounce = 250 * time.Millisecond

// Watcher watches a set of directories under one local root. Directories
// are named by slash-separated paths relative to the root ("." for the root
// itself), matching source.Handle.Path.
type Watcher struct {
	mu          sync.Mutex
	fsw         *fsnotify.Watcher
	root        string
	watched     map[string]bool
	debounceMap map[string]time.Time
	debounceDur time.Duration
	changes     chan string
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounceDur = d }
}

// New creates a watcher rooted at the local directory root. Nothing is
// watched until Add or Sync.
func New(root string, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	w := &Watcher{
		fsw:         fsw,
		root:        abs,
		watched:     make(map[string]bool),
		debounceMap: make(map[string]time.Time),
		debounceDur: DefaultDebounce,
		changes:     make(chan string, 16),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Changes delivers the relative path of each directory whose listing
// changed. It is closed when Run returns.
func (w *Watcher) Changes() <-chan string { return w.changes }

// Add starts watching one directory.
func (w *Watcher) Add(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.addLocked(dir)
}

func (w *Watcher) addLocked(dir string) error {
	if w.watched[dir] {
		return nil
	}
	if err := w.fsw.Add(w.abs(dir)); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.watched[dir] = true
	logging.WatchDebug("watching %s", dir)
	return nil
}

// Remove stops watching one directory.
func (w *Watcher) Remove(dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.removeLocked(dir)
}

func (w *Watcher) removeLocked(dir string) {
	if !w.watched[dir] {
		return
	}
	delete(w.watched, dir)
	delete(w.debounceMap, dir)
	// The directory may already be gone, which also drops the OS watch.
	_ = w.fsw.Remove(w.abs(dir))
	logging.WatchDebug("unwatched %s", dir)
}

// Sync makes the watched set equal to dirs. Directories that cannot be
// watched are logged and skipped.
func (w *Watcher) Sync(dirs []string) {
	want := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		want[d] = true
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for d := range w.watched {
		if !want[d] {
			w.removeLocked(d)
		}
	}
	for _, d := range dirs {
		if err := w.addLocked(d); err != nil {
			logging.Get(logging.CategoryWatch).Warn("%v", err)
		}
	}
}

// Watched returns the watched directories, sorted.
func (w *Watcher) Watched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.watched))
	for d := range w.watched {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Run processes filesystem events until ctx is done or the watcher is
// closed. Changes is closed on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.changes)

	tick := w.debounceDur / 4
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.WatchDebug("watcher context done")
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logging.Get(logging.CategoryWatch).Error("watcher error: %v", err)

		case <-ticker.C:
			for _, dir := range w.settled(time.Now()) {
				select {
				case w.changes <- dir:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

// Close releases the OS watches. Run returns shortly after.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// handleEvent records a change against the watched directory containing it.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 {
		return
	}
	dir, ok := w.rel(filepath.Dir(event.Name))
	if !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.watched[dir] {
		return
	}
	w.debounceMap[dir] = time.Now()
	logging.WatchDebug("%s in %s", event.Op, dir)
}

// settled pops directories that have been quiet for the debounce window.
func (w *Watcher) settled(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []string
	for dir, last := range w.debounceMap {
		if now.Sub(last) >= w.debounceDur {
			out = append(out, dir)
			delete(w.debounceMap, dir)
		}
	}
	sort.Strings(out)
	return out
}

func (w *Watcher) abs(dir string) string {
	if dir == "." || dir == "" {
		return w.root
	}
	return filepath.Join(w.root, filepath.FromSlash(dir))
}

func (w *Watcher) rel(path string) (string, bool) {
	r, err := filepath.Rel(w.root, path)
	if err != nil || r == ".." || (len(r) > 2 && r[:3] == ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(r), true
}
