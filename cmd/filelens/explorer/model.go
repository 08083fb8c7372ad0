// Package explorer is the bubbletea front end: a navigator pane, the
// analysis panel, a directory picker and the welcome screen.
package explorer

import (
	"context"

	"filelens/cmd/filelens/ui"
	"filelens/internal/logging"
	"filelens/internal/navigator"
	"filelens/internal/source"

	ctl "filelens/internal/explorer"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewMode is the screen being shown.
type ViewMode int

const (
	WelcomeView ViewMode = iota
	BrowseView
	PickerView
)

// Focus is the pane receiving keys in BrowseView.
type Focus int

const (
	FocusTree Focus = iota
	FocusPanel
)

// Options wires the model to its collaborators.
type Options struct {
	Context  context.Context
	Demo     source.Source
	Picker   *source.Picker
	Analyzer Analyzer
	Styles   ui.Styles

	// StartDir is where the directory picker opens.
	StartDir string
	// DemoExpandDepth overrides how deep the demo tree opens; 0 keeps the default.
	DemoExpandDepth int
	// Watch is told the local root and its open directories after every
	// tree change. It may be nil.
	Watch func(root string, dirs []string)

	// StartDemo or Directory choose the initial root instead of the welcome screen.
	StartDemo bool
	Directory *source.LazyHandle
}

// Model is the top-level bubbletea model.
type Model struct {
	ctx      context.Context
	ctrl     *ctl.Controller
	picker   *source.Picker
	analyzer Analyzer
	watch    func(root string, dirs []string)

	tree      *navigator.Tree
	epoch     uint64
	treeView  treeView
	demoDepth int

	panel      Panel
	filepicker filepicker.Model
	startDir   string
	prevMode   ViewMode

	viewMode ViewMode
	focus    Focus
	keys     KeyMap
	help     help.Model
	styles   ui.Styles

	width  int
	height int
	ready  bool

	startCmd tea.Cmd
}

// New builds the model. When opts selects an initial root the first fetch
// is issued by Init.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	demo := opts.Demo
	if demo == nil {
		demo = source.NewDemo()
	}

	m := Model{
		ctx:       ctx,
		ctrl:      ctl.New(demo),
		picker:    opts.Picker,
		analyzer:  opts.Analyzer,
		watch:     opts.Watch,
		demoDepth: opts.DemoExpandDepth,
		panel:     newPanel(opts.Styles),
		startDir:  opts.StartDir,
		keys:      DefaultKeyMap,
		help:      help.New(),
		styles:    opts.Styles,
		viewMode:  WelcomeView,
	}

	switch {
	case opts.Directory != nil:
		m.ctrl.ChooseDirectory(opts.Directory)
		m.startCmd = m.mountRoot()
	case opts.StartDemo:
		m.ctrl.UseDemo()
		m.startCmd = m.mountRoot()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.startCmd
}

// mountRoot builds a fresh navigator for the controller's source and
// returns the root fetch.
func (m *Model) mountRoot() tea.Cmd {
	src := m.ctrl.Source()
	if src == nil {
		m.tree = nil
		m.viewMode = WelcomeView
		m.syncWatch()
		return nil
	}

	opts := navigator.DefaultOptions(src.Variant())
	if src.Variant() == source.VariantStaticTree && m.demoDepth > 0 {
		opts.AutoExpandDepth = m.demoDepth
	}

	m.epoch++
	m.tree = navigator.New(src.Root(), opts)
	m.treeView = treeView{cursorID: m.tree.Root(), height: m.treeView.height}
	m.panel.Clear()
	m.viewMode = BrowseView
	m.focus = FocusTree
	m.syncWatch()

	logging.UI("mounted %s root %q (epoch %d)", src.Variant(), src.Name(), m.epoch)
	return fetchCmd(m.ctx, m.epoch, src, m.tree.Start())
}

// localRoot returns the OS directory of the active source, if any.
func (m Model) localRoot() string {
	if lh, ok := m.ctrl.Source().(*source.LazyHandle); ok {
		return lh.LocalRoot()
	}
	return ""
}

// syncWatch tells the watcher which directories are open.
func (m Model) syncWatch() {
	if m.watch == nil {
		return
	}
	root := m.localRoot()
	if root == "" || m.tree == nil {
		m.watch("", nil)
		return
	}
	ids := m.tree.ExpandedDirs()
	dirs := make([]string, len(ids))
	for i, id := range ids {
		dirs[i] = string(id)
	}
	m.watch(root, dirs)
}

// Controller exposes the root controller (read-only use by the CLI and tests).
func (m Model) Controller() *ctl.Controller { return m.ctrl }

// Mode returns the current screen.
func (m Model) Mode() ViewMode { return m.viewMode }
