package components

import "github.com/charmbracelet/lipgloss"

// Styles are the lipgloss styles components render with.
type Styles struct {
	Title    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Focused  lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Success  lipgloss.Style
	Header   lipgloss.Style
	Row      lipgloss.Style
	RowAlt   lipgloss.Style
	Selected lipgloss.Style
	Border   lipgloss.Style
}

// DefaultStyles returns the green phosphor styles.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true),
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")),
		Value:    lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		Focused:  lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#006600")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444")),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#66FF66")),
		Row:      lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		RowAlt:   lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")),
		Selected: lipgloss.NewStyle().Background(lipgloss.Color("#00FF00")).Foreground(lipgloss.Color("#000000")),
		Border:   lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")),
	}
}
