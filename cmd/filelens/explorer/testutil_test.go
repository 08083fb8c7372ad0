package explorer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"filelens/cmd/filelens/ui"
	"filelens/internal/navigator"
	"filelens/internal/source"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// fakeAnalyzer records calls and returns a canned answer.
type fakeAnalyzer struct {
	mu       sync.Mutex
	answer   string
	err      error
	calls    int
	content  string
	question string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, content, question string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.content, f.question = content, question
	return f.answer, f.err
}

func (f *fakeAnalyzer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// TestModelOption configures NewTestModel.
type TestModelOption func(*Options)

func WithAnalyzer(a Analyzer) TestModelOption {
	return func(o *Options) { o.Analyzer = a }
}

func WithPicker(p *source.Picker) TestModelOption {
	return func(o *Options) { o.Picker = p }
}

func WithDemoStart() TestModelOption {
	return func(o *Options) { o.StartDemo = true }
}

func WithDirectory(lh *source.LazyHandle) TestModelOption {
	return func(o *Options) { o.Directory = lh }
}

func WithWatch(fn func(root string, dirs []string)) TestModelOption {
	return func(o *Options) { o.Watch = fn }
}

// NewTestModel returns a sized model with safe defaults.
func NewTestModel(opts ...TestModelOption) Model {
	o := Options{
		Analyzer: &fakeAnalyzer{answer: "C"},
		Picker:   source.NewPicker(true, false),
		Styles:   ui.NewStyles(ui.DarkTheme()),
	}
	for _, opt := range opts {
		opt(&o)
	}
	m := New(o)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

// runCmd executes cmd, giving up on commands that sleep (blink, tick).
func runCmd(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(500 * time.Millisecond):
		return nil
	}
}

// collect runs cmd and returns the messages it and any batched commands produce.
func collect(cmd tea.Cmd) []tea.Msg {
	switch msg := runCmd(cmd).(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

// drain runs cmd and every command produced while handling its messages.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 1000 {
			t.Fatal("drain did not settle")
		}
		c := queue[0]
		queue = queue[1:]

		switch msg := runCmd(c).(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case listingMsg, readMsg, analysisMsg, pickedMsg:
			next, follow := m.Update(msg)
			m = next.(Model)
			queue = append(queue, follow)
		default:
			// The filepicker's directory reads are unexported.
			if m.viewMode == PickerView && strings.Contains(fmt.Sprintf("%T", msg), "filepicker") {
				next, follow := m.Update(msg)
				m = next.(Model)
				queue = append(queue, follow)
			}
		}
	}
	return m
}

// press sends one key and drains the result.
func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	next, cmd := m.Update(keyMsg(k))
	return drain(t, next.(Model), cmd)
}

// typeText sends runes to the focused textarea without draining blink commands.
func typeText(m Model, s string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(Model)
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// cursorTo moves the tree cursor onto the row with the given path.
func cursorTo(t *testing.T, m Model, path string) Model {
	t.Helper()
	for _, r := range m.tree.Rows() {
		if r.Path == path {
			m.treeView.jump(navigator.NodeID(path))
			return m
		}
	}
	t.Fatalf("no visible row %q", path)
	return m
}

func rowNames(m Model) []string {
	var out []string
	for _, r := range m.tree.Rows() {
		out = append(out, strings.Repeat("  ", r.Depth)+r.Name)
	}
	return out
}
