package explorer

import (
	"errors"

	"filelens/cmd/filelens/ui"
	"filelens/internal/logging"
	"filelens/internal/navigator"
	"filelens/internal/source"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = max(msg.Width, 0), max(msg.Height, 0)
		m.ready = true
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case listingMsg:
		return m.handleListing(msg)

	case readMsg:
		if m.ctrl.CompleteRead(msg.result) {
			if sel, ok := m.ctrl.Selected(); ok {
				m.panel.SetFile(sel)
			}
		}
		return m, nil

	case analysisMsg:
		if !m.panel.Finish(msg) {
			logging.UIDebug("dropped stale analysis (seq %d)", msg.seq)
		}
		return m, nil

	case pickedMsg:
		return m.handlePicked(msg)

	case DirChangedMsg:
		return m.handleDirChanged(msg)

	case spinner.TickMsg:
		if !m.panel.querying && m.panel.loading == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.panel.spinner, cmd = m.panel.spinner.Update(msg)
		return m, cmd
	}

	// Directory reads and other internal messages of the picker.
	if m.viewMode == PickerView {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)
		return m, cmd
	}

	if m.viewMode == BrowseView && m.focus == FocusPanel {
		var cmd tea.Cmd
		m.panel.question, cmd = m.panel.question.Update(msg)
		return m, cmd
	}
	return m, nil
}

// layout pushes the window size into the panes.
func (m *Model) layout() {
	_, right := ui.SplitPaneWidths(m.width)
	body := max(ui.BodyHeight(m.height)-m.bannerHeight(), 0)

	m.treeView.height = max(ui.PanelContentHeight(body)-1, 1)
	m.panel.SetSize(ui.PanelContentWidth(right), ui.PanelContentHeight(body))

	m.filepicker.Height = max(body-4, 3)
	m.help.Width = m.width
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}

	switch m.viewMode {
	case PickerView:
		return m.handlePickerKey(msg)
	case WelcomeView:
		return m.handleWelcomeKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Demo):
		return m.useDemo()
	case key.Matches(msg, m.keys.PickDir):
		return m.openPicker()
	case key.Matches(msg, m.keys.Focus):
		m.toggleFocus()
		return m, nil
	}

	if m.focus == FocusPanel {
		return m.handlePanelKey(msg)
	}
	return m.handleTreeKey(msg)
}

func (m Model) handleWelcomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.WelcomeDemo):
		return m.useDemo()
	case key.Matches(msg, m.keys.WelcomePick):
		return m.openPicker()
	case key.Matches(msg, m.keys.DismissError):
		m.ctrl.DismissError()
		m.layout()
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleTreeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.DismissError):
		m.ctrl.DismissError()
		m.layout()
	case key.Matches(msg, m.keys.Up):
		m.treeView.move(m.tree, -1)
	case key.Matches(msg, m.keys.Down):
		m.treeView.move(m.tree, 1)
	case key.Matches(msg, m.keys.PageUp):
		m.treeView.move(m.tree, -m.treeView.height)
	case key.Matches(msg, m.keys.PageDown):
		m.treeView.move(m.tree, m.treeView.height)
	case key.Matches(msg, m.keys.Top):
		m.treeView.move(m.tree, -m.tree.Len())
	case key.Matches(msg, m.keys.Bottom):
		m.treeView.move(m.tree, m.tree.Len())
	case key.Matches(msg, m.keys.Open):
		return m.activate()
	case key.Matches(msg, m.keys.Expand):
		if row, ok := m.treeView.current(m.tree); ok && row.IsDir() && row.State == navigator.StateCollapsed {
			return m.toggle(row.ID)
		}
	case key.Matches(msg, m.keys.Collapse):
		return m.collapseOrParent()
	case key.Matches(msg, m.keys.Refresh):
		if row, ok := m.treeView.current(m.tree); ok {
			if req := m.tree.Refresh(row.ID); req != nil {
				return m, fetchCmd(m.ctx, m.epoch, m.ctrl.Source(), *req)
			}
		}
	}
	return m, nil
}

func (m Model) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.focus = FocusTree
		m.panel.question.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.ScrollUp):
		m.panel.answer.HalfPageUp()
		return m, nil
	case key.Matches(msg, m.keys.ScrollDown):
		m.panel.answer.HalfPageDown()
		return m, nil
	case key.Matches(msg, m.keys.ContentUp):
		m.panel.content.ScrollUp(1)
		return m, nil
	case key.Matches(msg, m.keys.ContentDown):
		m.panel.content.ScrollDown(1)
		return m, nil
	}

	if m.panel.file == nil {
		return m, nil
	}
	var cmd tea.Cmd
	m.panel.question, cmd = m.panel.question.Update(msg)
	return m, cmd
}

func (m *Model) toggleFocus() {
	if m.focus == FocusTree {
		m.focus = FocusPanel
		m.panel.question.Focus()
		return
	}
	m.focus = FocusTree
	m.panel.question.Blur()
}

// activate toggles a directory or selects a file under the cursor.
func (m Model) activate() (tea.Model, tea.Cmd) {
	row, ok := m.treeView.current(m.tree)
	if !ok {
		return m, nil
	}
	if row.IsDir() {
		return m.toggle(row.ID)
	}

	node, _ := m.tree.Node(row.ID)
	req, ok := m.ctrl.Select(node.Handle)
	if !ok {
		return m, nil
	}
	m.panel.SetLoading(row.Name)
	return m, tea.Batch(readCmd(m.ctx, req), m.panel.spinner.Tick)
}

func (m Model) toggle(id navigator.NodeID) (tea.Model, tea.Cmd) {
	req := m.tree.Toggle(id)
	m.syncWatch()
	if req == nil {
		return m, nil
	}
	return m, fetchCmd(m.ctx, m.epoch, m.ctrl.Source(), *req)
}

func (m Model) collapseOrParent() (tea.Model, tea.Cmd) {
	row, ok := m.treeView.current(m.tree)
	if !ok {
		return m, nil
	}
	if row.IsDir() && row.State != navigator.StateCollapsed && row.ID != m.tree.Root() {
		return m.toggle(row.ID)
	}
	if node, ok := m.tree.Node(row.ID); ok && node.ID != m.tree.Root() {
		m.treeView.jump(node.Parent)
	}
	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.analyzer == nil {
		return m, nil
	}
	q, ok := m.panel.Submit()
	if !ok {
		return m, nil
	}
	logging.UIDebug("submitting query %d", q.seq)
	return m, tea.Batch(analyzeCmd(m.ctx, m.analyzer, q), m.panel.spinner.Tick)
}

func (m Model) handleListing(msg listingMsg) (tea.Model, tea.Cmd) {
	if m.tree == nil || msg.epoch != m.epoch {
		logging.NavigatorDebug("dropped listing from old root (epoch %d)", msg.epoch)
		return m, nil
	}
	follow, applied := m.tree.Apply(msg.listing)
	if !applied {
		return m, nil
	}
	m.syncWatch()
	return m, fetchAll(m.ctx, m.epoch, m.ctrl.Source(), follow)
}

func (m Model) handleDirChanged(msg DirChangedMsg) (tea.Model, tea.Cmd) {
	if m.tree == nil || msg.Root == "" || msg.Root != m.localRoot() {
		return m, nil
	}
	req := m.tree.Refresh(navigator.NodeID(msg.Dir))
	if req == nil {
		return m, nil
	}
	logging.WatchDebug("refreshing %s", msg.Dir)
	return m, fetchCmd(m.ctx, m.epoch, m.ctrl.Source(), *req)
}

func (m Model) useDemo() (tea.Model, tea.Cmd) {
	m.ctrl.UseDemo()
	cmd := m.mountRoot()
	m.layout()
	return m, cmd
}

// openPicker shows the directory picker, or reports why it cannot.
func (m Model) openPicker() (tea.Model, tea.Cmd) {
	if err := m.picker.Available(); err != nil {
		m.ctrl.PickerFailed(err)
		m.layout()
		return m, nil
	}

	m.filepicker = newFilePicker(m.startDir)
	m.prevMode = m.viewMode
	m.viewMode = PickerView
	m.layout()
	return m, m.filepicker.Init()
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.ctrl.PickerFailed(source.ErrCancelled)
		m.viewMode = m.prevMode
		return m, nil
	case key.Matches(msg, m.keys.PickHere):
		m.viewMode = m.prevMode
		return m, openDirCmd(m.picker, m.filepicker.CurrentDirectory)
	}

	var cmd tea.Cmd
	m.filepicker, cmd = m.filepicker.Update(msg)

	if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
		m.viewMode = m.prevMode
		return m, openDirCmd(m.picker, path)
	}
	return m, cmd
}

func (m Model) handlePicked(msg pickedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, source.ErrCancelled) {
			return m, nil
		}
		m.ctrl.PickerFailed(msg.err)
		m.layout()
		return m, nil
	}
	m.ctrl.ChooseDirectory(msg.src)
	cmd := m.mountRoot()
	m.layout()
	return m, cmd
}
