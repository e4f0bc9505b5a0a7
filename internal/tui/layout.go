package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	resviews "github.com/habmon/habmon/internal/tui/views/resources"
)

// Breakpoint classifies the terminal width.
type Breakpoint int

const (
	BreakpointNarrow Breakpoint = iota
	BreakpointMedium
	BreakpointWide
)

const (
	narrowWidth      = 60
	wideWidth        = 100
	minContentHeight = 5
)

// GetBreakpoint returns the width class for a terminal width.
func GetBreakpoint(width int) Breakpoint {
	switch {
	case width < narrowWidth:
		return BreakpointNarrow
	case width < wideWidth:
		return BreakpointMedium
	default:
		return BreakpointWide
	}
}

// ColumnSpec sizes one table column. A Fixed column always gets exactly
// Fixed cells; the others share the leftover width by Weight but never
// drop below MinWidth. When the row does not fit, columns with the lowest
// Priority are hidden first.
type ColumnSpec struct {
	MinWidth int
	Weight   float64
	Fixed    int
	Priority int
}

// CalculateColumnWidths fits specs into width, where gap is the width of
// one column separator. Hidden columns get width 0. At least one column
// always stays visible.
func CalculateColumnWidths(specs []ColumnSpec, width, gap int) []int {
	visible := make([]bool, len(specs))
	for i := range visible {
		visible[i] = true
	}

	dropOrder := make([]int, len(specs))
	for i := range dropOrder {
		dropOrder[i] = i
	}
	sort.SliceStable(dropOrder, func(a, b int) bool {
		return specs[dropOrder[a]].Priority < specs[dropOrder[b]].Priority
	})

	free := freeWidth(specs, visible, width, gap)
	shown := len(specs)
	for _, i := range dropOrder {
		if free >= 0 || shown <= 1 {
			break
		}
		visible[i] = false
		shown--
		free = freeWidth(specs, visible, width, gap)
	}
	free = max(free, 0)

	var weight float64
	for i, s := range specs {
		if visible[i] && s.Fixed == 0 {
			weight += s.Weight
		}
	}

	widths := make([]int, len(specs))
	for i, s := range specs {
		switch {
		case !visible[i]:
		case s.Fixed > 0:
			widths[i] = s.Fixed
		case weight > 0:
			widths[i] = max(int(float64(free)*s.Weight/weight), s.MinWidth)
		default:
			widths[i] = s.MinWidth
		}
	}
	return widths
}

// freeWidth is what is left of width after the visible fixed columns, the
// separators between visible columns and one cell of padding per side.
func freeWidth(specs []ColumnSpec, visible []bool, width, gap int) int {
	n, fixed := 0, 0
	for i, s := range specs {
		if !visible[i] {
			continue
		}
		n++
		fixed += s.Fixed
	}
	return width - fixed - max(n-1, 0)*gap - 2
}

// ContentHeight is the height left for module content once chromeLines
// of header, alert bar and footer are taken.
func ContentHeight(termHeight, chromeLines int) int {
	return max(termHeight-chromeLines, minContentHeight)
}

// Truncate cuts s to width cells, ending in an ellipsis when there is room
// for one.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 3 {
		return string(runes[:min(width, len(runes))])
	}
	return string(runes[:min(width-1, len(runes))]) + "…"
}

// PadRight pads s with spaces to width cells.
func PadRight(s string, width int) string {
	if pad := width - lipgloss.Width(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

// Panel draws content in a rounded box width cells wide with title set
// into the top edge.
func (t *Theme) Panel(title, content string, width int) string {
	border := lipgloss.RoundedBorder()
	edge := lipgloss.NewStyle().Foreground(t.SecondaryColor)
	inner := max(width-2, 0)

	body := lipgloss.NewStyle().
		Border(border, false, true, true, true).
		BorderForeground(t.SecondaryColor).
		Width(inner).
		Padding(0, 1).
		Render(content)

	label := ""
	if title != "" {
		label = t.Accent.Bold(true).Render(" " + title + " ")
	}

	var top string
	if fill := inner - 1 - lipgloss.Width(label); label != "" && fill >= 0 {
		top = edge.Render(border.TopLeft+border.Top) + label +
			edge.Render(strings.Repeat(border.Top, fill)+border.TopRight)
	} else {
		top = edge.Render(border.TopLeft + strings.Repeat(border.Top, inner) + border.TopRight)
	}

	return top + "\n" + body
}

// LevelBar renders a bracketed fill bar. It is red at or below critical
// and amber up to twice critical.
func (t *Theme) LevelBar(percentage, critical float64, width int) string {
	bar := "[" + resviews.FillBar(percentage, max(width-2, 4)) + "]"

	style := t.Success
	switch {
	case percentage <= critical:
		style = t.Error
	case percentage <= 2*critical:
		style = t.Warning
	}
	return style.Render(bar)
}
