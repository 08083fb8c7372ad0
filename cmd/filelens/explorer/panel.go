package explorer

import (
	"strings"

	"filelens/cmd/filelens/ui"

	ctl "filelens/internal/explorer"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// ErrorText is shown in the panel for any failed analysis.
const ErrorText = "Failed to get response from Gemini. Please check your API key and try again."

const (
	emptyPanelText = "Select a file from the explorer to begin."
	waitingText    = "Waiting for Gemini..."
	questionHint   = `e.g., "Summarize this file" or "What is the goal of this project?"`
)

// query is one submitted question.
type query struct {
	seq      uint64
	content  string
	question string
}

// Panel shows the selected file and the question/answer exchange about it.
type Panel struct {
	file    *ctl.Selection
	loading string // name of the file being read, if any

	content  viewport.Model
	answer   viewport.Model
	question textarea.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	response string
	errText  string
	querying bool
	seq      uint64

	width  int
	height int
	styles ui.Styles
}

func newPanel(styles ui.Styles) Panel {
	ta := textarea.New()
	ta.Placeholder = questionHint
	ta.ShowLineNumbers = false
	ta.Prompt = "┃ "
	ta.CharLimit = 4000
	ta.SetHeight(ui.QuestionHeight)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return Panel{
		content:  viewport.New(0, 0),
		answer:   viewport.New(0, 0),
		question: ta,
		spinner:  sp,
		styles:   styles,
	}
}

// reset clears the exchange and invalidates any in-flight query.
func (p *Panel) reset() {
	p.question.Reset()
	p.response = ""
	p.errText = ""
	p.querying = false
	p.seq++
	p.answer.SetContent("")
	p.answer.GotoTop()
}

// SetLoading shows a placeholder while name is read.
func (p *Panel) SetLoading(name string) {
	p.file = nil
	p.loading = name
	p.reset()
	p.content.SetContent("")
}

// SetFile installs a loaded selection.
func (p *Panel) SetFile(sel ctl.Selection) {
	p.file = &sel
	p.loading = ""
	p.reset()
	p.refreshContent()
	p.content.GotoTop()
}

// Clear returns the panel to its empty state.
func (p *Panel) Clear() {
	p.file = nil
	p.loading = ""
	p.reset()
	p.content.SetContent("")
}

// CanSubmit reports whether the question can be sent. Both the file
// content and the question must be non-blank.
func (p *Panel) CanSubmit() bool {
	return p.file != nil && !p.querying &&
		strings.TrimSpace(p.file.Content) != "" &&
		strings.TrimSpace(p.question.Value()) != ""
}

// Submit starts a query. It clears the previous answer and error.
func (p *Panel) Submit() (query, bool) {
	if !p.CanSubmit() {
		return query{}, false
	}
	p.seq++
	p.querying = true
	p.response = ""
	p.errText = ""
	p.refreshAnswer()
	return query{seq: p.seq, content: p.file.Content, question: p.question.Value()}, true
}

// Finish applies an answer if it belongs to the current query.
func (p *Panel) Finish(msg analysisMsg) bool {
	if !p.querying || msg.seq != p.seq {
		return false
	}
	p.querying = false
	if msg.err != nil {
		p.errText = ErrorText
	} else {
		p.response = msg.text
	}
	p.refreshAnswer()
	p.answer.GotoTop()
	return true
}

// SetSize lays the panel out in a width x height box.
func (p *Panel) SetSize(width, height int) {
	p.width, p.height = max(width, 0), max(height, 0)

	// name, label, content, heading, question, button, heading, answer
	fixed := 1 + 1 + 1 + ui.QuestionHeight + ui.ButtonHeight + 1 + 2
	flex := max(p.height-fixed, 2)
	contentH := max(flex/2, 1)
	answerH := max(flex-contentH, 1)

	inner := max(p.width-2, 1)
	p.content.Width, p.content.Height = p.width, contentH
	p.answer.Width, p.answer.Height = p.width, answerH
	p.question.SetWidth(p.width)

	p.renderer, _ = glamour.NewTermRenderer(
		glamour.WithStylePath(glamourStyle(p.styles)),
		glamour.WithWordWrap(inner),
	)
	p.refreshContent()
	p.refreshAnswer()
}

func glamourStyle(s ui.Styles) string {
	if s.Theme.IsDark {
		return "dark"
	}
	return "light"
}

func (p *Panel) refreshContent() {
	if p.file == nil {
		return
	}
	text := p.file.Content
	if p.width > 0 {
		text = lipgloss.NewStyle().Width(p.width).Render(text)
	}
	p.content.SetContent(text)
}

func (p *Panel) refreshAnswer() {
	switch {
	case p.errText != "":
		p.answer.SetContent(p.styles.Error.Render(p.errText))
	case p.response != "":
		p.answer.SetContent(p.safeRenderMarkdown(p.response))
	default:
		p.answer.SetContent("")
	}
}

// safeRenderMarkdown renders markdown with panic recovery
func (p *Panel) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			// If glamour panics, return plain text
			result = content
		}
	}()

	if p.renderer != nil && content != "" {
		rendered, err := p.renderer.Render(content)
		if err == nil {
			return strings.TrimRight(rendered, "\n")
		}
	}
	return content
}

// View renders the panel body.
func (p Panel) View(focused bool) string {
	s := p.styles
	if p.file == nil {
		if p.loading != "" {
			return s.Muted.Render(p.spinner.View() + " Loading " + p.loading + "...")
		}
		return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center, s.Muted.Render(emptyPanelText))
	}

	var button string
	switch {
	case p.querying:
		button = s.Disabled.Render(p.spinner.View() + " Analyzing...")
	case p.CanSubmit():
		button = s.Button.Render("Generate Analysis")
	default:
		button = s.Disabled.Render("Generate Analysis")
	}

	question := p.question.View()
	if !focused {
		question = s.Muted.Render(question)
	}

	sections := []string{
		s.Bold.Render(p.file.Name()),
		s.Muted.Render("File Content:"),
		p.content.View(),
		s.Title.Render("Ask Gemini"),
		question,
		button,
	}

	if p.querying || p.response != "" || p.errText != "" {
		sections = append(sections, s.Title.Render("Gemini's Response"))
		if p.querying && p.response == "" {
			sections = append(sections, s.Muted.Render(waitingText))
		} else {
			sections = append(sections, p.answer.View())
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
