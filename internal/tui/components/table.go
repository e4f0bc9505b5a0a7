// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column.
type Column struct {
	Title string
	Width int
	Align lipgloss.Position
}

// Table is a simple table component.
type Table struct {
	columns     []Column
	rows        [][]string
	selected    int
	offset      int
	visibleRows int
	focused     bool
	styles      Styles
}

// NewTable creates a new table with the given columns.
func NewTable(columns []Column) *Table {
	return &Table{
		columns:     columns,
		rows:        [][]string{},
		visibleRows: 10,
		styles:      DefaultStyles(),
	}
}

// SetRows sets the table data. The selection is kept in range.
func (t *Table) SetRows(rows [][]string) {
	t.rows = rows
	if t.selected >= len(rows) {
		t.selected = max(len(rows)-1, 0)
	}
	if t.offset > t.selected {
		t.offset = t.selected
	}
}

// SetColumns replaces the column layout.
func (t *Table) SetColumns(columns []Column) {
	t.columns = columns
}

// Columns returns a copy of the column definitions.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// SetVisibleRows sets the number of visible rows.
func (t *Table) SetVisibleRows(n int) {
	if n < 1 {
		n = 1
	}
	t.visibleRows = n
}

// SetStyles sets the table styles.
func (t *Table) SetStyles(s Styles) {
	t.styles = s
}

// Focus sets the table focus state.
func (t *Table) Focus(focused bool) {
	t.focused = focused
}

// Selected returns the currently selected row index.
func (t *Table) Selected() int {
	return t.selected
}

// SelectedRow returns the currently selected row data.
func (t *Table) SelectedRow() []string {
	if t.selected >= 0 && t.selected < len(t.rows) {
		return t.rows[t.selected]
	}
	return nil
}

// MoveUp moves the selection up.
func (t *Table) MoveUp() {
	if t.selected > 0 {
		t.selected--
		if t.selected < t.offset {
			t.offset = t.selected
		}
	}
}

// MoveDown moves the selection down.
func (t *Table) MoveDown() {
	if t.selected < len(t.rows)-1 {
		t.selected++
		if t.selected >= t.offset+t.visibleRows {
			t.offset = t.selected - t.visibleRows + 1
		}
	}
}

// Render renders the table.
func (t *Table) Render() string {
	var b strings.Builder

	totalWidth := 0
	for _, col := range t.columns {
		totalWidth += col.Width + 3 // padding and separator
	}

	b.WriteString(t.renderRow(t.headers(), t.styles.Header))
	b.WriteString("\n")
	b.WriteString(t.styles.Border.Render(strings.Repeat("-", totalWidth)))
	b.WriteString("\n")

	end := min(t.offset+t.visibleRows, len(t.rows))
	for i := t.offset; i < end; i++ {
		style := t.styles.Row
		switch {
		case i == t.selected && t.focused:
			style = t.styles.Selected
		case (i-t.offset)%2 == 1:
			style = t.styles.RowAlt
		}
		b.WriteString(t.renderRow(t.rows[i], style))
		b.WriteString("\n")
	}

	if len(t.rows) > t.visibleRows {
		b.WriteString(t.styles.Muted.Render(fmt.Sprintf("%d-%d of %d", t.offset+1, end, len(t.rows))))
		b.WriteString("\n")
	}

	return b.String()
}

func (t *Table) headers() []string {
	headers := make([]string, len(t.columns))
	for i, col := range t.columns {
		headers[i] = col.Title
	}
	return headers
}

func (t *Table) renderRow(cells []string, style lipgloss.Style) string {
	parts := make([]string, 0, len(t.columns))

	for i, col := range t.columns {
		if col.Width <= 0 {
			continue
		}
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}

		runes := []rune(cell)
		if len(runes) > col.Width {
			cell = string(runes[:col.Width-1]) + "…"
		}

		pad := col.Width - lipgloss.Width(cell)
		switch col.Align {
		case lipgloss.Right:
			cell = strings.Repeat(" ", pad) + cell
		case lipgloss.Center:
			left := pad / 2
			cell = strings.Repeat(" ", left) + cell + strings.Repeat(" ", pad-left)
		default:
			cell += strings.Repeat(" ", pad)
		}

		parts = append(parts, style.Render(cell))
	}

	return " " + strings.Join(parts, " | ") + " "
}

// Empty returns true if the table has no rows.
func (t *Table) Empty() bool {
	return len(t.rows) == 0
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.rows)
}
