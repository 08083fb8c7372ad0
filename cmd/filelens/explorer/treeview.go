package explorer

import (
	"strings"

	"filelens/cmd/filelens/ui"
	"filelens/internal/navigator"

	"github.com/charmbracelet/lipgloss"
)

// treeView is the scroll state of the navigator pane. The cursor follows a
// node ID so it survives rows appearing above it.
type treeView struct {
	cursorID navigator.NodeID
	cursor   int
	offset   int
	height   int
}

// rows returns the visible rows and fixes the cursor index against them.
func (v *treeView) rows(t *navigator.Tree) []navigator.Row {
	if t == nil {
		return nil
	}
	rows := t.Rows()
	if len(rows) == 0 {
		v.cursor, v.offset = 0, 0
		return rows
	}
	found := false
	for i, r := range rows {
		if r.ID == v.cursorID {
			v.cursor, found = i, true
			break
		}
	}
	if !found {
		v.cursor = min(max(v.cursor, 0), len(rows)-1)
		v.cursorID = rows[v.cursor].ID
	}
	v.scroll()
	return rows
}

// move shifts the cursor by delta rows, clamped.
func (v *treeView) move(t *navigator.Tree, delta int) {
	rows := v.rows(t)
	if len(rows) == 0 {
		return
	}
	v.cursor = min(max(v.cursor+delta, 0), len(rows)-1)
	v.cursorID = rows[v.cursor].ID
	v.scroll()
}

// jump puts the cursor on id.
func (v *treeView) jump(id navigator.NodeID) {
	v.cursorID = id
}

// current returns the row under the cursor.
func (v *treeView) current(t *navigator.Tree) (navigator.Row, bool) {
	rows := v.rows(t)
	if len(rows) == 0 {
		return navigator.Row{}, false
	}
	return rows[v.cursor], true
}

func (v *treeView) scroll() {
	h := max(v.height, 1)
	if v.cursor < v.offset {
		v.offset = v.cursor
	}
	if v.cursor >= v.offset+h {
		v.offset = v.cursor - h + 1
	}
	v.offset = max(v.offset, 0)
}

// render draws the visible slice of rows into width columns.
func (v *treeView) render(t *navigator.Tree, s ui.Styles, selected string, focused bool, width int) string {
	rows := v.rows(t)
	if len(rows) == 0 {
		return ""
	}
	h := max(v.height, 1)
	end := min(v.offset+h, len(rows))

	var sb strings.Builder
	for i := v.offset; i < end; i++ {
		if i > v.offset {
			sb.WriteByte('\n')
		}
		sb.WriteString(renderRow(rows[i], s, i == v.cursor && focused, rows[i].Path == selected, width))
	}
	return sb.String()
}

func renderRow(r navigator.Row, s ui.Styles, cursor, selected bool, width int) string {
	indent := strings.Repeat(" ", r.Depth*ui.TreeIndent)

	var marker, name string
	if r.IsDir() {
		switch r.State {
		case navigator.StateCollapsed:
			marker = "▸ "
		case navigator.StateExpanding:
			marker = "… "
		default:
			marker = "▾ "
		}
		name = s.Directory.Render(r.Name + "/")
		if r.State == navigator.StateEmpty {
			name += s.Muted.Render(" (empty)")
		}
	} else {
		marker = "  "
		name = r.Name
		if selected {
			name = s.Selected.Render(name)
		} else {
			name = s.File.Render(name)
		}
	}

	prefix := "  "
	if cursor {
		prefix = s.Cursor.Render("> ")
	}
	line := prefix + indent + marker + name
	return truncate(line, width)
}

// truncate cuts a styled line to width display cells.
func truncate(line string, width int) string {
	if width <= 0 {
		return line
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(line)
}
