package explorer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"filelens/cmd/filelens/ui"
	"filelens/internal/source"

	ctl "filelens/internal/explorer"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// WINDOW SIZE MESSAGE TESTS
// =============================================================================

func TestUpdate_WindowSize(t *testing.T) {
	m := NewTestModel()

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	result := next.(Model)

	assert.Equal(t, 100, result.width)
	assert.Equal(t, 30, result.height)
	assert.True(t, result.ready)
}

func TestUpdate_WindowSize_Degenerate(t *testing.T) {
	m := NewTestModel(WithDemoStart())
	for _, size := range []tea.WindowSizeMsg{{Width: 0, Height: 0}, {Width: -1, Height: -1}, {Width: 10000, Height: 5000}} {
		assert.NotPanics(t, func() {
			next, _ := m.Update(size)
			_ = next.(Model).View()
		})
	}
}

// =============================================================================
// ROOT SELECTION
// =============================================================================

func TestWelcome_Initial(t *testing.T) {
	m := NewTestModel()

	assert.Equal(t, WelcomeView, m.Mode())
	assert.Equal(t, ctl.ModeNoRoot, m.Controller().Mode())
	view := m.View()
	assert.Contains(t, view, "Welcome")
	assert.Contains(t, view, "Select a local directory to analyze its file content with Gemini")
}

func TestWelcome_LoadDemo(t *testing.T) {
	m := press(t, NewTestModel(), "d")

	require.Equal(t, BrowseView, m.Mode())
	want := []string{
		"MCP_ROOT",
		"  documents",
		"    project_brief.txt",
		"    quarterly_report.md",
		"  source_code",
		"    gemini_service",
		"    App.tsx",
		"  README.md",
	}
	if diff := cmp.Diff(want, rowNames(m)); diff != "" {
		t.Errorf("demo rows mismatch (-want +got):\n%s", diff)
	}

	view := m.View()
	assert.Contains(t, view, "Demo File Explorer")
	assert.Contains(t, view, "Analyzing files in: Demo Directory")
	assert.Contains(t, view, emptyPanelText)
}

func TestStartDemo_InitFetches(t *testing.T) {
	m := NewTestModel(WithDemoStart())
	m = drain(t, m, m.Init())
	assert.Len(t, m.tree.Rows(), 8)
}

func TestPicker_Unavailable(t *testing.T) {
	m := press(t, NewTestModel(WithPicker(source.NewPicker(false, false))), "o")

	assert.Equal(t, WelcomeView, m.Mode(), "mode stays on the welcome screen")
	assert.Equal(t, ctl.MsgPickerUnavailable, m.Controller().Error())
	assert.Contains(t, m.View(), "Directory access is disabled in this session.")

	m = press(t, m, "d")
	assert.Empty(t, m.Controller().Error(), "loading the demo clears the error")
}

func TestWelcome_DemoActionLooksActive(t *testing.T) {
	m := NewTestModel()
	assert.Contains(t, m.View(), m.styles.Button.Render("[d] Load Demo"))
}

func TestBanner_WrappedBannerShrinksPanes(t *testing.T) {
	m := press(t, NewTestModel(WithPicker(source.NewPicker(false, false))), "d")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	m = next.(Model)
	m = press(t, m, "ctrl+o")
	require.Equal(t, ctl.MsgPickerUnavailable, m.Controller().Error())

	banner := m.renderBanner()
	require.Greater(t, lipgloss.Height(banner), 3, "banner wraps on a narrow terminal")

	body := ui.BodyHeight(20) - lipgloss.Height(banner)
	assert.Equal(t, max(ui.PanelContentHeight(body)-1, 1), m.treeView.height)

	m = press(t, m, "x")
	assert.Empty(t, m.Controller().Error())
	assert.Equal(t, max(ui.PanelContentHeight(ui.BodyHeight(20))-1, 1), m.treeView.height)
}

func TestPicker_CancelIsSilent(t *testing.T) {
	m := press(t, NewTestModel(), "o")
	require.Equal(t, PickerView, m.Mode())

	m = press(t, m, "esc")
	assert.Equal(t, WelcomeView, m.Mode())
	assert.Empty(t, m.Controller().Error())
}

func TestPicker_CancelFromBrowseReturnsToTree(t *testing.T) {
	m := press(t, NewTestModel(WithDemoStart()), "ctrl+o")
	require.Equal(t, PickerView, m.Mode())

	m = press(t, m, "esc")
	assert.Equal(t, BrowseView, m.Mode())
	assert.Equal(t, ctl.ModeDemo, m.Controller().Mode())
}

func TestPicker_UseCurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644))

	m := NewTestModel()
	m.startDir = dir
	m = press(t, m, "o")
	require.Equal(t, PickerView, m.Mode())

	m = press(t, m, "s")
	require.Equal(t, BrowseView, m.Mode())
	assert.Equal(t, ctl.ModeDirectory, m.Controller().Mode())
	assert.Equal(t, "File Explorer", m.Controller().Title())
	assert.Contains(t, rowNames(m), "  notes.txt")
}

func TestPicked_Errors(t *testing.T) {
	m := NewTestModel()

	next, _ := m.Update(pickedMsg{err: source.ErrCancelled})
	m = next.(Model)
	assert.Empty(t, m.Controller().Error())

	next, _ = m.Update(pickedMsg{err: source.ErrAccessDenied})
	m = next.(Model)
	assert.Equal(t, ctl.MsgAccessDenied, m.Controller().Error())

	next, _ = m.Update(pickedMsg{err: errors.New("boom")})
	m = next.(Model)
	assert.Equal(t, ctl.MsgPickerFailed, m.Controller().Error())
	assert.Equal(t, ctl.ModeNoRoot, m.Controller().Mode())
}

// =============================================================================
// NAVIGATION
// =============================================================================

func TestTree_CollapseAndExpand(t *testing.T) {
	m := press(t, NewTestModel(WithDemoStart()), "ctrl+d")
	m = cursorTo(t, m, "documents")

	m = press(t, m, "enter")
	assert.NotContains(t, rowNames(m), "    project_brief.txt")

	m = press(t, m, "enter")
	assert.Contains(t, rowNames(m), "    project_brief.txt")

	m = press(t, m, "left")
	assert.NotContains(t, rowNames(m), "    project_brief.txt")
	m = press(t, m, "right")
	assert.Contains(t, rowNames(m), "    project_brief.txt")
}

func TestTree_LeftOnFileJumpsToParent(t *testing.T) {
	m := press(t, NewTestModel(), "d")
	m = cursorTo(t, m, "documents/quarterly_report.md")

	m = press(t, m, "left")
	row, ok := m.treeView.current(m.tree)
	require.True(t, ok)
	assert.Equal(t, "documents", row.Path)
}

func TestTree_CursorMovement(t *testing.T) {
	m := press(t, NewTestModel(), "d")

	m = press(t, m, "G")
	row, _ := m.treeView.current(m.tree)
	assert.Equal(t, "README.md", row.Path)

	m = press(t, m, "up")
	row, _ = m.treeView.current(m.tree)
	assert.Equal(t, "source_code/App.tsx", row.Path)

	m = press(t, m, "g")
	row, _ = m.treeView.current(m.tree)
	assert.Equal(t, ".", row.Path)

	m = press(t, m, "k")
	row, _ = m.treeView.current(m.tree)
	assert.Equal(t, ".", row.Path, "cursor clamps at the top")
}

func TestListing_FromOldRootIsDropped(t *testing.T) {
	m := NewTestModel()
	next, cmd := m.Update(keyMsg("d"))
	m = next.(Model)
	stale := runCmd(cmd)

	// Reload: a new tree with a new epoch.
	next, _ = m.Update(keyMsg("ctrl+d"))
	m = next.(Model)

	next, _ = m.Update(stale)
	m = next.(Model)
	assert.Len(t, m.tree.Rows(), 1, "old root's listing must not populate the new tree")
}

// =============================================================================
// SELECTION AND PANEL
// =============================================================================

func selectDemoFile(t *testing.T, m Model, path string) Model {
	t.Helper()
	m = cursorTo(t, m, path)
	return press(t, m, "enter")
}

func TestSelect_LoadsContent(t *testing.T) {
	m := press(t, NewTestModel(), "d")
	m = selectDemoFile(t, m, "README.md")

	sel, ok := m.Controller().Selected()
	require.True(t, ok)
	assert.Equal(t, "README.md", sel.Name())
	require.NotNil(t, m.panel.file)
	assert.Equal(t, sel.Content, m.panel.file.Content)
	assert.Contains(t, m.View(), "File Content:")
}

func TestSelect_SameFileIsNoop(t *testing.T) {
	m := press(t, NewTestModel(), "d")
	m = selectDemoFile(t, m, "README.md")

	m = press(t, m, "tab")
	m = typeText(m, "keep me")
	m = press(t, m, "esc")

	next, cmd := m.Update(keyMsg("enter"))
	m = next.(Model)
	assert.Nil(t, cmd, "no read is issued")
	assert.Equal(t, "keep me", m.panel.question.Value(), "nothing was cleared")
}

func TestSelect_DifferentFileClearsPanelFirst(t *testing.T) {
	analyzer := &fakeAnalyzer{answer: "first answer"}
	m := press(t, NewTestModel(WithAnalyzer(analyzer)), "d")
	m = selectDemoFile(t, m, "README.md")
	m = press(t, m, "tab")
	m = typeText(m, "What is this?")
	m = press(t, m, "enter")
	require.Equal(t, "first answer", m.panel.response)
	m = press(t, m, "esc")

	m = cursorTo(t, m, "documents/project_brief.txt")
	next, cmd := m.Update(keyMsg("enter"))
	m = next.(Model)
	require.NotNil(t, cmd)

	assert.Nil(t, m.panel.file, "old content is gone before the read lands")
	assert.Empty(t, m.panel.response)
	assert.Empty(t, m.panel.question.Value())
	assert.Contains(t, m.View(), "Loading project_brief.txt")

	m = drain(t, m, cmd)
	require.NotNil(t, m.panel.file)
	assert.Equal(t, "project_brief.txt", m.panel.file.Name())
}

func TestSubmit_ShowsAnswer(t *testing.T) {
	analyzer := &fakeAnalyzer{answer: "C"}
	m := press(t, NewTestModel(WithAnalyzer(analyzer)), "d")
	m = selectDemoFile(t, m, "README.md")
	m = press(t, m, "tab")
	m = typeText(m, "B")

	next, cmd := m.Update(keyMsg("enter"))
	m = next.(Model)
	assert.True(t, m.panel.querying)
	assert.Contains(t, m.View(), waitingText)

	m = drain(t, m, cmd)
	assert.False(t, m.panel.querying)
	assert.Equal(t, "C", m.panel.response)
	assert.Equal(t, "B", analyzer.question)
	sel, _ := m.Controller().Selected()
	assert.Equal(t, sel.Content, analyzer.content)
	assert.Contains(t, m.View(), "Gemini's Response")
}

func TestSubmit_EmptyQuestionDisabled(t *testing.T) {
	analyzer := &fakeAnalyzer{answer: "C"}
	m := press(t, NewTestModel(WithAnalyzer(analyzer)), "d")
	m = selectDemoFile(t, m, "README.md")
	m = press(t, m, "tab")

	m = press(t, m, "enter")
	m = typeText(m, "   ")
	m = press(t, m, "enter")
	assert.Zero(t, analyzer.Calls())
	assert.False(t, m.panel.CanSubmit())
}

func TestSubmit_BlankFileDisabled(t *testing.T) {
	fsys := fstest.MapFS{
		"empty.txt": {Data: []byte("")},
		"blank.txt": {Data: []byte(" \n\t\n")},
	}
	for _, name := range []string{"empty.txt", "blank.txt"} {
		t.Run(name, func(t *testing.T) {
			analyzer := &fakeAnalyzer{answer: "C"}
			m := NewTestModel(WithAnalyzer(analyzer), WithDirectory(source.NewLazyHandle("mem", fsys)))
			m = drain(t, m, m.Init())

			m = cursorTo(t, m, name)
			m = press(t, m, "enter")
			require.NotNil(t, m.panel.file)

			m = press(t, m, "tab")
			m = typeText(m, "What is this?")
			assert.False(t, m.panel.CanSubmit())

			m = press(t, m, "enter")
			assert.Zero(t, analyzer.Calls())
			assert.False(t, m.panel.querying)
			assert.Empty(t, m.panel.errText)
		})
	}
}

func TestSubmit_WithoutFileDisabled(t *testing.T) {
	analyzer := &fakeAnalyzer{answer: "C"}
	m := press(t, NewTestModel(WithAnalyzer(analyzer)), "d")
	m = press(t, m, "tab")
	m = typeText(m, "question")
	m = press(t, m, "enter")
	assert.Zero(t, analyzer.Calls())
}

func TestSubmit_ErrorThenRetry(t *testing.T) {
	analyzer := &fakeAnalyzer{err: errors.New("transport down")}
	m := press(t, NewTestModel(WithAnalyzer(analyzer)), "d")
	m = selectDemoFile(t, m, "README.md")
	m = press(t, m, "tab")
	m = typeText(m, "B")
	m = press(t, m, "enter")

	assert.Equal(t, ErrorText, m.panel.errText)
	assert.Contains(t, m.View(), "Failed to get response from Gemini.")
	assert.NotContains(t, m.View(), "transport down")

	analyzer.mu.Lock()
	analyzer.err, analyzer.answer = nil, "recovered"
	analyzer.mu.Unlock()

	m = press(t, m, "enter")
	assert.Empty(t, m.panel.errText)
	assert.Equal(t, "recovered", m.panel.response)
	assert.Equal(t, 2, analyzer.Calls())
}

func TestSubmit_StaleAnswerIgnored(t *testing.T) {
	m := press(t, NewTestModel(), "d")
	m = selectDemoFile(t, m, "README.md")
	m = press(t, m, "tab")
	m = typeText(m, "B")

	next, cmd := m.Update(keyMsg("enter"))
	m = next.(Model)
	var late analysisMsg
	for _, msg := range collect(cmd) {
		if am, ok := msg.(analysisMsg); ok {
			late = am
		}
	}
	require.Equal(t, "C", late.text)
	m = press(t, m, "esc")
	m = selectDemoFile(t, m, "documents/project_brief.txt")

	next, _ = m.Update(late)
	m = next.(Model)
	assert.Empty(t, m.panel.response, "answer for the previous file is dropped")
}

func TestSubmit_TooLargeFileShowsPlaceholder(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "big.log")
	require.NoError(t, os.WriteFile(big, []byte(strings.Repeat("x", source.MaxFileSize+1)), 0644))

	lh, err := source.NewPicker(true, false).Open(dir)
	require.NoError(t, err)
	m := NewTestModel(WithDirectory(lh))
	m = drain(t, m, m.Init())

	m = cursorTo(t, m, "big.log")
	m = press(t, m, "enter")
	require.NotNil(t, m.panel.file)
	assert.Equal(t, source.TooLargePlaceholder, m.panel.file.Content)
}

// =============================================================================
// WATCHER
// =============================================================================

func TestDirChanged_RefreshesOpenDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0644))

	var watched []string
	var watchedRoot string
	lh, err := source.NewPicker(true, false).Open(dir)
	require.NoError(t, err)
	m := NewTestModel(WithDirectory(lh), WithWatch(func(root string, dirs []string) {
		watchedRoot, watched = root, dirs
	}))
	m = drain(t, m, m.Init())
	assert.Equal(t, lh.LocalRoot(), watchedRoot)
	assert.Equal(t, []string{"."}, watched)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0644))

	next, cmd := m.Update(DirChangedMsg{Root: "/somewhere/else", Dir: "."})
	m = next.(Model)
	assert.Nil(t, cmd, "other roots are ignored")

	next, cmd = m.Update(DirChangedMsg{Root: lh.LocalRoot(), Dir: "."})
	m = drain(t, next.(Model), cmd)
	assert.Contains(t, rowNames(m), "  b.txt")
}

func TestWatch_StopsOnDemo(t *testing.T) {
	dir := t.TempDir()
	lh, err := source.NewPicker(true, false).Open(dir)
	require.NoError(t, err)

	root := "unset"
	m := NewTestModel(WithDirectory(lh), WithWatch(func(r string, _ []string) { root = r }))
	m = drain(t, m, m.Init())
	require.Equal(t, lh.LocalRoot(), root)

	press(t, m, "ctrl+d")
	assert.Empty(t, root)
}

// =============================================================================
// QUIT
// =============================================================================

func TestQuit(t *testing.T) {
	for _, k := range []string{"ctrl+c", "q"} {
		_, cmd := NewTestModel().Update(keyMsg(k))
		require.NotNil(t, cmd, k)
		assert.Equal(t, tea.QuitMsg{}, cmd(), k)
	}
}

func TestQuit_TypingQInPanel(t *testing.T) {
	m := press(t, NewTestModel(), "d")
	m = selectDemoFile(t, m, "README.md")
	m = press(t, m, "tab")
	m = typeText(m, "q")
	assert.Equal(t, "q", m.panel.question.Value())
}
