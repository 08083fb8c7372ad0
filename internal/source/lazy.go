package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"filelens/internal/logging"
)

// LazyHandle enumerates an fs.FS one directory level per call. Nothing is
// cached: every ListChildren call re-reads the directory.
type LazyHandle struct {
	name       string
	fsys       fs.FS
	localRoot  string
	showHidden bool
}

// LazyOption configures a LazyHandle.
type LazyOption func(*LazyHandle)

// WithLocalRoot records the OS directory backing the fs.FS so callers such as
// the watcher can map handles back to real paths.
func WithLocalRoot(dir string) LazyOption {
	return func(l *LazyHandle) { l.localRoot = dir }
}

// WithHidden includes dot-prefixed entries in listings.
func WithHidden(show bool) LazyOption {
	return func(l *LazyHandle) { l.showHidden = show }
}

// NewLazyHandle wraps fsys. name is the display name of the root.
func NewLazyHandle(name string, fsys fs.FS, opts ...LazyOption) *LazyHandle {
	l := &LazyHandle{name: name, fsys: fsys}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *LazyHandle) Name() string     { return l.name }
func (l *LazyHandle) Variant() Variant { return VariantLazyHandle }

func (l *LazyHandle) Root() Handle {
	return Handle{Name: l.name, Path: RootPath, Kind: KindDirectory}
}

// LocalRoot returns the OS directory behind this source, or "" when the
// source is not backed by the local filesystem.
func (l *LazyHandle) LocalRoot() string { return l.localRoot }

// LocalPath maps a handle to its OS path. It returns "" without a local root.
func (l *LazyHandle) LocalPath(h Handle) string {
	if l.localRoot == "" {
		return ""
	}
	if h.Path == RootPath {
		return l.localRoot
	}
	return filepath.Join(l.localRoot, filepath.FromSlash(h.Path))
}

func (l *LazyHandle) ListChildren(ctx context.Context, dir Handle) ([]Handle, error) {
	if err := ctx.Err(); err != nil {
		return []Handle{}, fmt.Errorf("%w: %s: %w", ErrListFailed, dir.Path, err)
	}

	entries, err := fs.ReadDir(l.fsys, dir.Path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return []Handle{}, fmt.Errorf("%w: %s: %w", ErrListFailed, dir.Path, ErrAccessDenied)
		}
		return []Handle{}, fmt.Errorf("%w: %s: %w", ErrListFailed, dir.Path, err)
	}

	out := make([]Handle, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !l.showHidden && strings.HasPrefix(name, ".") {
			continue
		}
		p := childPath(dir.Path, name)
		kind := KindFile
		if entry.IsDir() {
			kind = KindDirectory
		} else if entry.Type()&fs.ModeSymlink != 0 {
			// Symlinks are classified by their target.
			if info, err := fs.Stat(l.fsys, p); err == nil && info.IsDir() {
				kind = KindDirectory
			}
		}
		out = append(out, Handle{Name: name, Path: p, Kind: kind})
	}
	SortHandles(out)

	logging.SourceDebug("listed %s: %d entries", dir.Path, len(out))
	return out, nil
}

func (l *LazyHandle) ReadFile(ctx context.Context, file Handle) (string, error) {
	if err := ctx.Err(); err != nil {
		return Placeholder(err.Error()), fmt.Errorf("%w: %s: %w", ErrFileUnreadable, file.Path, err)
	}

	// Size is checked before any bytes are read.
	info, err := fs.Stat(l.fsys, file.Path)
	if err != nil {
		return unreadable(file, err)
	}
	if info.IsDir() {
		return Placeholder("is a directory"), fmt.Errorf("%w: %s is a directory", ErrFileUnreadable, file.Path)
	}
	if info.Size() > MaxFileSize {
		return TooLargePlaceholder, fmt.Errorf("%s (%d bytes): %w", file.Path, info.Size(), ErrFileTooLarge)
	}

	f, err := l.fsys.Open(file.Path)
	if err != nil {
		return unreadable(file, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return unreadable(file, err)
	}
	if len(data) > MaxFileSize {
		// Grew between Stat and Read.
		return TooLargePlaceholder, fmt.Errorf("%s: %w", file.Path, ErrFileTooLarge)
	}
	if !utf8.Valid(data) {
		return Placeholder("content is not valid UTF-8 text"), fmt.Errorf("%w: %s: invalid UTF-8", ErrFileUnreadable, file.Path)
	}

	logging.SourceDebug("read %s: %d bytes", file.Path, len(data))
	return string(data), nil
}

func unreadable(file Handle, err error) (string, error) {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return Placeholder("permission denied"), fmt.Errorf("%w: %s: %w", ErrFileUnreadable, file.Path, ErrAccessDenied)
	case errors.Is(err, fs.ErrNotExist):
		return Placeholder("file not found"), fmt.Errorf("%w: %s: %w", ErrFileUnreadable, file.Path, ErrNotFound)
	}
	reason := err.Error()
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		reason = pathErr.Err.Error()
	}
	return Placeholder(reason), fmt.Errorf("%w: %s: %w", ErrFileUnreadable, file.Path, err)
}
