// Package ui layout constants for consistent spacing and dimensions
package ui

// Layout constants for pane sizing
const (
	// Split pane dimensions
	SplitPaneLeftRatio = 0.33
	SplitPaneDivider   = 1
	MinTreeWidth       = 24
	MaxTreeWidth       = 60

	// Panel borders and spacing
	PanelBorderWidth = 1
	PanelPaddingH    = 1
	TreeIndent       = 2

	// Control areas
	HeaderHeight   = 2
	FooterHeight   = 1
	QuestionHeight = 3
	ButtonHeight   = 1

	// Responsive breakpoints
	MinimumTerminalWidth  = 60
	MinimumTerminalHeight = 16
)

// SplitPaneWidths calculates tree and panel widths for the main view.
func SplitPaneWidths(totalWidth int) (leftWidth, rightWidth int) {
	leftWidth = int(float64(totalWidth) * SplitPaneLeftRatio)
	if leftWidth < MinTreeWidth {
		leftWidth = MinTreeWidth
	}
	if leftWidth > MaxTreeWidth {
		leftWidth = MaxTreeWidth
	}
	if leftWidth > totalWidth-SplitPaneDivider {
		leftWidth = max(totalWidth-SplitPaneDivider, 0)
	}
	rightWidth = max(totalWidth-leftWidth-SplitPaneDivider, 0)
	return
}

// BodyHeight returns the rows left for panes below the header and above the footer.
func BodyHeight(terminalHeight int) int {
	return max(terminalHeight-HeaderHeight-FooterHeight, 0)
}

// PanelContentWidth returns the content width inside a bordered panel
func PanelContentWidth(panelWidth int) int {
	return max(panelWidth-(PanelBorderWidth*2)-(PanelPaddingH*2), 0)
}

// PanelContentHeight returns the content height inside a bordered panel
func PanelContentHeight(panelHeight int) int {
	return max(panelHeight-(PanelBorderWidth*2), 0)
}

// TooSmall reports whether the terminal is below the usable minimum.
func TooSmall(width, height int) bool {
	return width < MinimumTerminalWidth || height < MinimumTerminalHeight
}
