// Package navigator tracks expand/collapse state for a directory tree whose
// children are fetched lazily from a source.Source.
//
// Nodes live in an arena keyed by their path. Parent/child links are IDs, so
// a fetch result can be matched back to its node (and rejected) without
// walking nested structures.
//
// Per directory:
//
//	Collapsed -> Expanding -> Loaded | Empty -> Collapsed
//
// Every transition that invalidates an outstanding fetch bumps the node's
// generation. Apply only accepts a listing whose generation is current, which
// is how stale results from collapsed or since-removed nodes are dropped.
package navigator

import (
	"context"

	"filelens/internal/logging"
	"filelens/internal/source"
)

// NodeID identifies a node by its slash-separated path within the source.
type NodeID string

// State is the expansion state of a directory node. Files are always Collapsed.
type State uint8

const (
	StateCollapsed State = iota
	StateExpanding
	StateLoaded
	StateEmpty
)

func (s State) String() string {
	switch s {
	case StateExpanding:
		return "expanding"
	case StateLoaded:
		return "loaded"
	case StateEmpty:
		return "empty"
	default:
		return "collapsed"
	}
}

// Node is one arena record.
type Node struct {
	ID       NodeID
	Parent   NodeID
	Handle   source.Handle
	Depth    int
	State    State
	Children []NodeID

	gen uint64
}

// Expanded reports whether the node is open (loading or loaded).
func (n *Node) Expanded() bool { return n.State != StateCollapsed }

// Request asks for the children of one directory at one generation.
type Request struct {
	ID     NodeID
	Handle source.Handle
	Gen    uint64
}

// Listing is the completed result of a Request.
type Listing struct {
	Request
	Children []source.Handle
	Err      error
}

// Options tunes initial expansion.
type Options struct {
	// Directories shallower than this depth expand as soon as their parent
	// loads. The root is depth 0, so 1 means "root only".
	AutoExpandDepth int
}

// DefaultOptions expands the first two levels of a static tree for
// discoverability and only the root of a lazy one.
func DefaultOptions(v source.Variant) Options {
	if v == source.VariantStaticTree {
		return Options{AutoExpandDepth: 2}
	}
	return Options{AutoExpandDepth: 1}
}

// Row is one visible line of the flattened tree.
type Row struct {
	ID    NodeID
	Name  string
	Path  string
	Depth int
	Kind  source.Kind
	State State
}

// IsDir reports whether the row is a directory.
func (r Row) IsDir() bool { return r.Kind == source.KindDirectory }

// Tree is the navigator arena. It is not safe for concurrent use; all calls
// are expected from the UI event loop.
type Tree struct {
	root  NodeID
	nodes map[NodeID]*Node
	opts  Options
	gen   uint64
}

// New creates a navigator whose root is already expanding. Call Start for
// the root's fetch request.
func New(root source.Handle, opts Options) *Tree {
	t := &Tree{
		root:  NodeID(root.Path),
		nodes: make(map[NodeID]*Node),
		opts:  opts,
	}
	t.nodes[t.root] = &Node{
		ID:     t.root,
		Handle: root,
		State:  StateExpanding,
		gen:    t.nextGen(),
	}
	return t
}

func (t *Tree) nextGen() uint64 {
	t.gen++
	return t.gen
}

// Start returns the fetch request for the root.
func (t *Tree) Start() Request {
	n := t.nodes[t.root]
	return Request{ID: n.ID, Handle: n.Handle, Gen: n.gen}
}

// Root returns the root node ID.
func (t *Tree) Root() NodeID { return t.root }

// Node looks up a node record.
func (t *Tree) Node(id NodeID) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Len returns the number of records in the arena.
func (t *Tree) Len() int { return len(t.nodes) }

// Toggle opens a collapsed directory (returning its fetch request) or closes
// an open one (returning nil). Toggling a file or unknown node does nothing.
func (t *Tree) Toggle(id NodeID) *Request {
	n, ok := t.nodes[id]
	if !ok || !n.Handle.IsDir() {
		return nil
	}

	if n.Expanded() {
		n.State = StateCollapsed
		n.gen = t.nextGen()
		t.release(n)
		logging.NavigatorDebug("collapsed %s", id)
		return nil
	}

	n.State = StateExpanding
	n.gen = t.nextGen()
	logging.NavigatorDebug("expanding %s (gen %d)", id, n.gen)
	return &Request{ID: n.ID, Handle: n.Handle, Gen: n.gen}
}

// Refresh re-fetches an open directory, keeping already-open children open.
// It returns nil for collapsed or unknown nodes.
func (t *Tree) Refresh(id NodeID) *Request {
	n, ok := t.nodes[id]
	if !ok || !n.Expanded() {
		return nil
	}
	n.gen = t.nextGen()
	return &Request{ID: n.ID, Handle: n.Handle, Gen: n.gen}
}

// Apply installs a completed listing. It returns false, and changes nothing,
// when the listing is stale: the node is gone, closed, or has been
// re-requested since. Follow-up requests cover auto-expanded children.
func (t *Tree) Apply(l Listing) ([]Request, bool) {
	n, ok := t.nodes[l.ID]
	if !ok || !n.Expanded() || n.gen != l.Gen {
		logging.NavigatorDebug("dropped stale listing for %s (gen %d)", l.ID, l.Gen)
		return nil, false
	}

	previous := make(map[NodeID]bool, len(n.Children))
	for _, c := range n.Children {
		previous[c] = true
	}

	var follow []Request
	children := make([]NodeID, 0, len(l.Children))
	for _, h := range l.Children {
		id := NodeID(h.Path)
		if existing, ok := t.nodes[id]; ok && previous[id] {
			delete(previous, id)
			if existing.Handle.Kind == h.Kind {
				existing.Handle = h
				children = append(children, id)
				continue
			}
			t.release(existing)
		}

		child := &Node{
			ID:     id,
			Parent: n.ID,
			Handle: h,
			Depth:  n.Depth + 1,
			State:  StateCollapsed,
		}
		if h.IsDir() && child.Depth < t.opts.AutoExpandDepth {
			child.State = StateExpanding
			child.gen = t.nextGen()
			follow = append(follow, Request{ID: id, Handle: h, Gen: child.gen})
		}
		t.nodes[id] = child
		children = append(children, id)
	}

	for id := range previous {
		if old, ok := t.nodes[id]; ok {
			t.release(old)
			delete(t.nodes, id)
		}
	}

	n.Children = children
	if len(children) == 0 {
		n.State = StateEmpty
	} else {
		n.State = StateLoaded
	}
	return follow, true
}

// release drops every descendant record of n.
func (t *Tree) release(n *Node) {
	for _, c := range n.Children {
		if child, ok := t.nodes[c]; ok {
			t.release(child)
			delete(t.nodes, c)
		}
	}
	n.Children = nil
}

// Rows flattens the visible tree, root first.
func (t *Tree) Rows() []Row {
	rows := make([]Row, 0, len(t.nodes))
	var walk func(id NodeID)
	walk = func(id NodeID) {
		n, ok := t.nodes[id]
		if !ok {
			return
		}
		rows = append(rows, Row{
			ID:    n.ID,
			Name:  n.Handle.Name,
			Path:  n.Handle.Path,
			Depth: n.Depth,
			Kind:  n.Handle.Kind,
			State: n.State,
		})
		if n.Expanded() {
			for _, c := range n.Children {
				walk(c)
			}
		}
	}
	walk(t.root)
	return rows
}

// ExpandedDirs returns the IDs of every open directory.
func (t *Tree) ExpandedDirs() []NodeID {
	var out []NodeID
	for _, row := range t.Rows() {
		if row.IsDir() && row.State != StateCollapsed {
			out = append(out, row.ID)
		}
	}
	return out
}

// Fetch runs req against src. A listing failure is logged and reported as an
// empty listing so the directory renders empty.
func Fetch(ctx context.Context, src source.Source, req Request) Listing {
	children, err := src.ListChildren(ctx, req.Handle)
	if err != nil {
		logging.Get(logging.CategoryNavigator).Warn("listing %s failed: %v", req.ID, err)
		children = nil
	}
	logging.Audit(logging.CategoryNavigator).DirList(string(req.ID), len(children), err)
	return Listing{Request: req, Children: children, Err: err}
}
