// Package tree holds the plain file and directory shapes used for the demo
// dataset, along with the ordering rule every listing in filelens follows.
package tree

import (
	"cmp"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"
)

// Node is either a *FileNode or a *DirectoryNode.
type Node interface {
	NodeName() string
	IsDir() bool
}

// FileNode is a named file with its text content.
type FileNode struct {
	Name    string
	Content string
}

func (f *FileNode) NodeName() string { return f.Name }
func (f *FileNode) IsDir() bool      { return false }

// DirectoryNode is a named directory with ordered children.
type DirectoryNode struct {
	Name     string
	Children []Node
}

func (d *DirectoryNode) NodeName() string { return d.Name }
func (d *DirectoryNode) IsDir() bool      { return true }

// Compare orders entries directories first, then by case-folded name.
// Names that fold equal fall back to byte order so the result is total.
func Compare(aName string, aDir bool, bName string, bDir bool) int {
	if aDir != bDir {
		if aDir {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(strings.ToLower(aName), strings.ToLower(bName)); c != 0 {
		return c
	}
	return cmp.Compare(aName, bName)
}

// Sorted returns a copy of children in listing order.
func Sorted(children []Node) []Node {
	out := slices.Clone(children)
	slices.SortStableFunc(out, func(a, b Node) int {
		return Compare(a.NodeName(), a.IsDir(), b.NodeName(), b.IsDir())
	})
	return out
}

// =============================================================================
// DEMO DATASET
// =============================================================================

// DemoRootName is the name of the embedded demo root directory.
const DemoRootName = "MCP_ROOT"

//go:embed demo
var demoFS embed.FS

var (
	demoOnce sync.Once
	demoRoot *DirectoryNode
)

// Demo returns the embedded demo tree. It is materialized once and must be
// treated as read-only by callers.
func Demo() *DirectoryNode {
	demoOnce.Do(func() {
		root, err := Load(demoFS, path.Join("demo", DemoRootName))
		if err != nil {
			panic(fmt.Sprintf("tree: embedded demo dataset is corrupt: %v", err))
		}
		demoRoot = root
	})
	return demoRoot
}

// Load materializes dir from fsys into a DirectoryNode, reading every file.
func Load(fsys fs.FS, dir string) (*DirectoryNode, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	node := &DirectoryNode{Name: path.Base(dir)}
	for _, entry := range entries {
		full := path.Join(dir, entry.Name())
		if entry.IsDir() {
			child, err := Load(fsys, full)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
			continue
		}
		data, err := fs.ReadFile(fsys, full)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", full, err)
		}
		node.Children = append(node.Children, &FileNode{Name: entry.Name(), Content: string(data)})
	}
	return node, nil
}
