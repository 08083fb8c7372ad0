package explorer

import (
	"fmt"

	"filelens/cmd/filelens/ui"

	"github.com/charmbracelet/lipgloss"
)

const (
	appTitle    = "filelens"
	welcomeText = "To get started, select a directory from your local file system, or load a demo file system to explore the app's features."
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if ui.TooSmall(m.width, m.height) {
		return m.styles.Muted.Render(fmt.Sprintf("Terminal too small (%dx%d). Need at least %dx%d.",
			m.width, m.height, ui.MinimumTerminalWidth, ui.MinimumTerminalHeight))
	}

	var body string
	switch m.viewMode {
	case PickerView:
		body = m.renderPicker()
	case BrowseView:
		body = m.renderBrowse()
	default:
		body = m.renderWelcome()
	}

	parts := []string{m.renderHeader()}
	if banner := m.renderBanner(); banner != "" && m.viewMode == BrowseView {
		parts = append(parts, banner)
	}
	parts = append(parts, body, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	title := m.styles.Title.Render(appTitle)
	subtitle := m.styles.Subtitle.Render(m.ctrl.Subtitle())
	return m.styles.Header.Render(lipgloss.JoinVertical(lipgloss.Left, title, subtitle))
}

func (m Model) renderBanner() string {
	msg := m.ctrl.Error()
	if msg == "" {
		return ""
	}
	return m.styles.Banner.Width(max(m.width-4, 10)).Render(msg)
}

// bannerHeight is the number of rows the rendered banner occupies.
func (m Model) bannerHeight() int {
	banner := m.renderBanner()
	if banner == "" {
		return 0
	}
	return lipgloss.Height(banner)
}

func (m Model) renderFooter() string {
	switch m.viewMode {
	case WelcomeView:
		return m.styles.Footer.Render(m.help.View(welcomeKeys{m.keys}))
	case PickerView:
		return m.styles.Footer.Render(m.help.View(pickerKeys{m.keys}))
	}
	return m.styles.Footer.Render(m.help.View(m.keys))
}

func (m Model) renderWelcome() string {
	s := m.styles
	sections := []string{
		s.Title.Render("Welcome"),
		"",
		s.Body.Width(min(60, max(m.width-4, 20))).Render(welcomeText),
	}
	if msg := m.ctrl.Error(); msg != "" {
		sections = append(sections, "", s.Banner.Width(min(60, max(m.width-4, 20))).Render(msg))
	}
	sections = append(sections, "",
		lipgloss.JoinHorizontal(lipgloss.Top,
			s.Button.Render("[o] Select Directory"),
			"  ",
			s.Button.Render("[d] Load Demo"),
		),
	)
	if m.picker.Available() != nil {
		sections = append(sections, "", s.Muted.Render("Directory access is disabled; the demo file system is still available."))
	}

	box := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(m.width, ui.BodyHeight(m.height), lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderBrowse() string {
	left, right := ui.SplitPaneWidths(m.width)
	body := max(ui.BodyHeight(m.height)-m.bannerHeight(), 0)

	treeStyle, panelStyle := m.styles.Pane, m.styles.Pane
	if m.focus == FocusTree {
		treeStyle = m.styles.FocusedPane
	} else {
		panelStyle = m.styles.FocusedPane
	}

	innerLeft := ui.PanelContentWidth(left)
	tv := m.treeView
	treeBody := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Title.Render(m.ctrl.Title()),
		tv.render(m.tree, m.styles, m.ctrl.SelectedPath(), m.focus == FocusTree, innerLeft),
	)

	treePane := treeStyle.
		Width(max(left-2, 0)).
		Height(ui.PanelContentHeight(body)).
		Render(treeBody)
	panelPane := panelStyle.
		Width(max(right-2, 0)).
		Height(ui.PanelContentHeight(body)).
		Render(m.panel.View(m.focus == FocusPanel))

	return lipgloss.JoinHorizontal(lipgloss.Top, treePane, " ", panelPane)
}

func (m Model) renderPicker() string {
	s := m.styles
	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Select Directory"),
		s.Muted.Render(m.filepicker.CurrentDirectory),
		"",
		m.filepicker.View(),
	)
}
