package explorer

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the explorer
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Open     key.Binding
	Expand   key.Binding
	Collapse key.Binding
	Refresh  key.Binding

	Focus        key.Binding
	Submit       key.Binding
	ScrollUp     key.Binding
	ScrollDown   key.Binding
	ContentUp    key.Binding
	ContentDown  key.Binding
	Back         key.Binding
	Demo         key.Binding
	PickDir      key.Binding
	PickHere     key.Binding
	ToggleHelp   key.Binding
	Quit         key.Binding
	ForceQuit    key.Binding
	WelcomeDemo  key.Binding
	WelcomePick  key.Binding
	DismissError key.Binding
}

// DefaultKeyMap returns the default keybindings
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "page down"),
	),
	Top: key.NewBinding(
		key.WithKeys("home", "g"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("G", "bottom"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "open/select"),
	),
	Expand: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "expand"),
	),
	Collapse: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "collapse"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Focus: key.NewBinding(
		key.WithKeys("tab", "shift+tab"),
		key.WithHelp("tab", "switch pane"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter", "ctrl+s"),
		key.WithHelp("enter", "ask Gemini"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "scroll answer"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "scroll answer"),
	),
	ContentUp: key.NewBinding(
		key.WithKeys("shift+up"),
		key.WithHelp("shift+↑", "scroll file"),
	),
	ContentDown: key.NewBinding(
		key.WithKeys("shift+down"),
		key.WithHelp("shift+↓", "scroll file"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Demo: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "load demo"),
	),
	PickDir: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("ctrl+o", "change directory"),
	),
	PickHere: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "use this directory"),
	),
	ToggleHelp: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	WelcomeDemo: key.NewBinding(
		key.WithKeys("d", "ctrl+d"),
		key.WithHelp("d", "load demo"),
	),
	WelcomePick: key.NewBinding(
		key.WithKeys("o", "ctrl+o", "enter"),
		key.WithHelp("o", "select directory"),
	),
	DismissError: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "dismiss error"),
	),
}

// ShortHelp returns keybindings to be shown in the mini help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Focus, k.Submit, k.Demo, k.PickDir, k.ToggleHelp, k.ForceQuit}
}

// FullHelp returns keybindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Open, k.Expand, k.Collapse, k.Refresh},
		{k.Focus, k.Submit, k.ScrollUp, k.ContentUp, k.ContentDown, k.Back},
		{k.Demo, k.PickDir, k.DismissError, k.ToggleHelp, k.Quit},
	}
}

// welcomeKeys is the help shown before a root is chosen.
type welcomeKeys struct{ k KeyMap }

func (w welcomeKeys) ShortHelp() []key.Binding {
	return []key.Binding{w.k.WelcomePick, w.k.WelcomeDemo, w.k.Quit}
}

func (w welcomeKeys) FullHelp() [][]key.Binding { return [][]key.Binding{w.ShortHelp()} }

// pickerKeys is the help shown in the directory picker.
type pickerKeys struct{ k KeyMap }

func (p pickerKeys) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose highlighted")),
		key.NewBinding(key.WithKeys("l"), key.WithHelp("→/l", "enter folder")),
		key.NewBinding(key.WithKeys("h"), key.WithHelp("←/h", "parent")),
		p.k.PickHere,
		p.k.Back,
	}
}

func (p pickerKeys) FullHelp() [][]key.Binding { return [][]key.Binding{p.ShortHelp()} }
