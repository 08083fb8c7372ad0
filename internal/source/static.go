package source

import (
	"context"
	"fmt"

	"filelens/internal/tree"
)

// StaticTree serves a fully materialized tree.DirectoryNode.
type StaticTree struct {
	name  string
	root  *tree.DirectoryNode
	nodes map[string]tree.Node
}

// NewStaticTree indexes root by path. displayName is shown in headers; it
// defaults to the root directory name.
func NewStaticTree(root *tree.DirectoryNode, displayName string) *StaticTree {
	if displayName == "" {
		displayName = root.Name
	}
	s := &StaticTree{
		name:  displayName,
		root:  root,
		nodes: map[string]tree.Node{RootPath: root},
	}
	s.index(RootPath, root)
	return s
}

// NewDemo returns a StaticTree over the embedded demo dataset.
func NewDemo() *StaticTree {
	return NewStaticTree(tree.Demo(), "Demo Directory")
}

func (s *StaticTree) index(dirPath string, dir *tree.DirectoryNode) {
	for _, child := range dir.Children {
		p := childPath(dirPath, child.NodeName())
		s.nodes[p] = child
		if sub, ok := child.(*tree.DirectoryNode); ok {
			s.index(p, sub)
		}
	}
}

func (s *StaticTree) Name() string     { return s.name }
func (s *StaticTree) Variant() Variant { return VariantStaticTree }

func (s *StaticTree) Root() Handle {
	return Handle{Name: s.root.Name, Path: RootPath, Kind: KindDirectory}
}

func (s *StaticTree) ListChildren(_ context.Context, dir Handle) ([]Handle, error) {
	node, ok := s.nodes[dir.Path].(*tree.DirectoryNode)
	if !ok {
		return []Handle{}, fmt.Errorf("%w: %s: %w", ErrListFailed, dir.Path, ErrNotFound)
	}

	out := make([]Handle, 0, len(node.Children))
	for _, child := range tree.Sorted(node.Children) {
		kind := KindFile
		if child.IsDir() {
			kind = KindDirectory
		}
		out = append(out, Handle{
			Name: child.NodeName(),
			Path: childPath(dir.Path, child.NodeName()),
			Kind: kind,
		})
	}
	return out, nil
}

func (s *StaticTree) ReadFile(_ context.Context, file Handle) (string, error) {
	node, ok := s.nodes[file.Path].(*tree.FileNode)
	if !ok {
		return Placeholder("file not found"), fmt.Errorf("%w: %s: %w", ErrFileUnreadable, file.Path, ErrNotFound)
	}
	if len(node.Content) > MaxFileSize {
		return TooLargePlaceholder, fmt.Errorf("%s: %w", file.Path, ErrFileTooLarge)
	}
	return node.Content, nil
}
