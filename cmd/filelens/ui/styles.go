// Package ui provides the visual styling for the filelens terminal UI.
// Colors follow a slate/blue palette with light and dark variants.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Light Mode Colors
	LightBackground = lipgloss.Color("#f9fafb") // gray-50
	LightForeground = lipgloss.Color("#1f2937") // gray-800
	LightPrimary    = lipgloss.Color("#2563eb") // blue-600
	LightAccent     = lipgloss.Color("#7c3aed") // violet-600
	LightMuted      = lipgloss.Color("#6b7280") // gray-500
	LightBorder     = lipgloss.Color("#d1d5db") // gray-300
	LightSelection  = lipgloss.Color("#dbeafe") // blue-100

	// Dark Mode Colors
	DarkBackground = lipgloss.Color("#111827") // gray-900
	DarkForeground = lipgloss.Color("#e5e7eb") // gray-200
	DarkPrimary    = lipgloss.Color("#60a5fa") // blue-400
	DarkAccent     = lipgloss.Color("#c084fc") // purple-400
	DarkMuted      = lipgloss.Color("#9ca3af") // gray-400
	DarkBorder     = lipgloss.Color("#374151") // gray-700
	DarkSelection  = lipgloss.Color("#1e3a8a") // blue-900

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#f87171") // red-400
	Highlight   = lipgloss.Color("#facc15") // yellow-400
	Folder      = lipgloss.Color("#eab308") // yellow-500
)

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Selection  lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		Selection:  LightSelection,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Selection:  DarkSelection,
		IsDark:     true,
	}
}

// ThemeFor resolves a ui.theme config value. "auto" and unknown values
// fall back to DetectTheme.
func ThemeFor(name string) Theme {
	switch strings.ToLower(name) {
	case "light":
		return LightTheme()
	case "dark":
		return DarkTheme()
	default:
		return DetectTheme()
	}
}

// DetectTheme picks a theme from the terminal's COLORFGBG hint, defaulting
// to dark.
func DetectTheme() Theme {
	// Format is usually "foreground;background"
	parts := strings.Split(os.Getenv("COLORFGBG"), ";")
	if len(parts) >= 2 {
		if bgIdx, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			// 0-6 and 8 (dark grey) are dark backgrounds
			if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
				return DarkTheme()
			}
			return LightTheme()
		}
	}
	return DarkTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Layout
	Header      lipgloss.Style
	Footer      lipgloss.Style
	Pane        lipgloss.Style
	FocusedPane lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	// Tree
	Directory lipgloss.Style
	File      lipgloss.Style
	Cursor    lipgloss.Style
	Selected  lipgloss.Style

	// Panel
	Content  lipgloss.Style
	Response lipgloss.Style
	Button   lipgloss.Style
	Disabled lipgloss.Style

	// Status
	Error   lipgloss.Style
	Banner  lipgloss.Style
	Spinner lipgloss.Style
	Divider lipgloss.Style
	Key     lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Pane:        pane,
		FocusedPane: pane.BorderForeground(theme.Primary),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Directory: lipgloss.NewStyle().
			Foreground(Folder),

		File: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Cursor: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Background(theme.Selection).
			Foreground(theme.Foreground).
			Bold(true),

		Content: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Border(lipgloss.NormalBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Response: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(Highlight),

		Button: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Disabled: lipgloss.NewStyle().
			Background(theme.Border).
			Foreground(theme.Muted).
			Padding(0, 2),

		Error: lipgloss.NewStyle().
			Foreground(Destructive),

		Banner: lipgloss.NewStyle().
			Foreground(Destructive).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Destructive).
			Padding(0, 1),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),

		Key: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),
	}
}

// DefaultStyles returns styles for the detected terminal theme
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// RenderDivider returns a horizontal divider
func (s Styles) RenderDivider(width int) string {
	if width < 0 {
		width = 0
	}
	return s.Divider.Render(strings.Repeat("─", width))
}
