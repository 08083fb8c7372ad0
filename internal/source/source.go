// Package source unifies the two places a file tree can come from: the
// embedded demo dataset (StaticTree) and a lazily enumerated local directory
// (LazyHandle). The navigator is written once against Source.
package source

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"filelens/internal/tree"
)

// MaxFileSize is the largest file whose content will be displayed.
const MaxFileSize = 5 << 20

// RootPath is the Handle.Path of every source root.
const RootPath = "."

// Errors reported by sources and the directory picker.
var (
	ErrCapabilityUnavailable = errors.New("directory selection is not available")
	ErrCancelled             = errors.New("directory selection cancelled")
	ErrAccessDenied          = errors.New("access to the file system was denied")
	ErrFileTooLarge          = errors.New("file is too large to display (max 5MB)")
	ErrFileUnreadable        = errors.New("file could not be read")
	ErrListFailed            = errors.New("directory listing failed")
	ErrNotFound              = errors.New("no such file or directory")
)

const unreadableHint = "\n\nThis might be a binary file or you may lack permissions."

// TooLargePlaceholder is the content shown in place of an oversized file.
const TooLargePlaceholder = "Error reading file: File is too large to display (max 5MB)." + unreadableHint

// Placeholder renders the displayable content substituted for an unreadable file.
func Placeholder(reason string) string {
	return fmt.Sprintf("Error reading file: %s%s", reason, unreadableHint)
}

// Kind tags a handle as a file or a directory.
type Kind uint8

const (
	KindFile Kind = iota
	KindDirectory
)

func (k Kind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// Handle is an opaque reference to a file or directory inside a Source.
// It holds no data until listed or read.
type Handle struct {
	Name string
	Path string // slash-separated, relative to the source root
	Kind Kind
}

// IsDir reports whether the handle refers to a directory.
func (h Handle) IsDir() bool { return h.Kind == KindDirectory }

// Variant identifies the backing representation of a Source.
type Variant uint8

const (
	VariantStaticTree Variant = iota
	VariantLazyHandle
)

func (v Variant) String() string {
	if v == VariantLazyHandle {
		return "lazy"
	}
	return "static"
}

// Source exposes one directory level at a time.
//
// ListChildren returns a freshly computed listing, sorted directories first
// and then by name. On failure it returns an empty listing and an error
// wrapping ErrListFailed.
//
// ReadFile always returns displayable content. When the error is non-nil the
// content is a placeholder describing the failure.
type Source interface {
	Name() string
	Variant() Variant
	Root() Handle
	ListChildren(ctx context.Context, dir Handle) ([]Handle, error)
	ReadFile(ctx context.Context, file Handle) (string, error)
}

// SortHandles orders handles in listing order, in place.
func SortHandles(hs []Handle) {
	slices.SortStableFunc(hs, func(a, b Handle) int {
		return tree.Compare(a.Name, a.IsDir(), b.Name, b.IsDir())
	})
}

func childPath(parent, name string) string {
	if parent == RootPath || parent == "" {
		return name
	}
	return parent + "/" + name
}
