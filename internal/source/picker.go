package source

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"filelens/internal/logging"
)

// Picker is the "choose a local directory" capability. It turns a path chosen
// in the terminal into a LazyHandle and classifies why that can fail.
type Picker struct {
	enabled    bool
	showHidden bool
}

// NewPicker creates a picker. A disabled picker reports
// ErrCapabilityUnavailable, which models a sandboxed session.
func NewPicker(enabled, showHidden bool) *Picker {
	return &Picker{enabled: enabled, showHidden: showHidden}
}

// Available reports whether directory selection can be offered at all.
func (p *Picker) Available() error {
	if p == nil || !p.enabled {
		return ErrCapabilityUnavailable
	}
	return nil
}

// Open validates dir and returns a lazy source rooted there.
func (p *Picker) Open(dir string) (*LazyHandle, error) {
	if err := p.Available(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, classifyOpenError(abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", abs)
	}

	// Check readability so a blocked directory fails here rather than
	// rendering as an empty tree.
	f, err := os.Open(abs)
	if err != nil {
		return nil, classifyOpenError(abs, err)
	}
	_, err = f.ReadDir(1)
	f.Close()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, classifyOpenError(abs, err)
	}

	logging.Source("opened directory %s", abs)
	return NewLazyHandle(filepath.Base(abs), os.DirFS(abs), WithLocalRoot(abs), WithHidden(p.showHidden)), nil
}

func classifyOpenError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%s: %w", path, ErrAccessDenied)
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return fmt.Errorf("failed to open %s: %w", path, err)
}
