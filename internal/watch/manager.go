package watch

import (
	"context"
	"sync"

	"filelens/internal/logging"
)

// Change is a settled change in one watched directory under Root.
type Change struct {
	Root string
	Dir  string
}

// Manager follows whichever local root the UI is showing. Switching roots
// replaces the underlying Watcher, and changes from every watcher are
// merged onto one channel tagged with their root.
type Manager struct {
	mu     sync.Mutex
	opts   []Option
	root   string
	w      *Watcher
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
	out    chan Change
}

// NewManager returns a manager watching nothing.
func NewManager(opts ...Option) *Manager {
	return &Manager{opts: opts, out: make(chan Change, 16)}
}

// Changes delivers settled changes. It is closed by Close.
func (m *Manager) Changes() <-chan Change { return m.out }

// Watch points the manager at root and makes dirs the watched set. An empty
// root stops watching.
func (m *Manager) Watch(root string, dirs []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}

	if root != m.root {
		m.stopLocked()
		if root == "" {
			return
		}
		if err := m.startLocked(root); err != nil {
			logging.Get(logging.CategoryWatch).Warn("cannot watch %s: %v", root, err)
			return
		}
	}
	if m.w != nil {
		m.w.Sync(dirs)
	}
}

func (m *Manager) startLocked(root string) error {
	w, err := New(root, m.opts...)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.root, m.w, m.cancel = root, w, cancel

	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		_ = w.Run(ctx)
	}()
	go func() {
		defer m.wg.Done()
		for dir := range w.Changes() {
			select {
			case m.out <- Change{Root: root, Dir: dir}:
			case <-ctx.Done():
				return
			}
		}
	}()
	logging.Watch("watching root %s", root)
	return nil
}

func (m *Manager) stopLocked() {
	if m.w == nil {
		m.root = ""
		return
	}
	m.cancel()
	if err := m.w.Close(); err != nil {
		logging.Get(logging.CategoryWatch).Warn("closing watcher for %s: %v", m.root, err)
	}
	logging.Watch("stopped watching %s", m.root)
	m.root, m.w, m.cancel = "", nil, nil
}

// Close stops the current watcher, waits for its goroutines and closes
// Changes. Calling Close more than once is safe.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.stopLocked()
	m.mu.Unlock()

	m.wg.Wait()
	close(m.out)
}
