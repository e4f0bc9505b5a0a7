// Package tui provides the terminal dashboard for habmon.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/habmon/habmon/internal/config"
	"github.com/habmon/habmon/internal/tui/components"
)

// palette is the set of colors a theme is built from.
type palette struct {
	primary    lipgloss.Color
	secondary  lipgloss.Color
	accent     lipgloss.Color
	background lipgloss.Color
	muted      lipgloss.Color
	errorColor lipgloss.Color
	warning    lipgloss.Color
	success    lipgloss.Color
}

var palettes = map[config.ColorScheme]palette{
	config.ColorSchemeGreenPhosphor: {
		primary: "#00FF00", secondary: "#00AA00", accent: "#66FF66", background: "#000000",
		muted: "#006600", errorColor: "#FF4444", warning: "#FFAA00", success: "#00FF00",
	},
	config.ColorSchemeAmber: {
		primary: "#FFAA00", secondary: "#AA7700", accent: "#FFCC66", background: "#000000",
		muted: "#664400", errorColor: "#FF4444", warning: "#FFFF00", success: "#FFAA00",
	},
	config.ColorSchemeWhite: {
		primary: "#FFFFFF", secondary: "#AAAAAA", accent: "#FFFFFF", background: "#000000",
		muted: "#666666", errorColor: "#FF4444", warning: "#FFAA00", success: "#00FF00",
	},
}

// Theme contains all style definitions for the TUI.
type Theme struct {
	PrimaryColor   lipgloss.Color
	SecondaryColor lipgloss.Color

	Base      lipgloss.Style
	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Accent    lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Success   lipgloss.Style
	Muted     lipgloss.Style

	Header   lipgloss.Style
	Footer   lipgloss.Style
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Box      lipgloss.Style
	Selected lipgloss.Style

	Alert     lipgloss.Style
	AlertWarn lipgloss.Style
	AlertCrit lipgloss.Style

	StatusDivider lipgloss.Style

	styles components.Styles
}

// NewTheme creates a theme for the configured color scheme. Unknown
// schemes fall back to green phosphor.
func NewTheme(scheme config.ColorScheme) *Theme {
	p, ok := palettes[scheme]
	if !ok {
		p = palettes[config.ColorSchemeGreenPhosphor]
	}

	t := &Theme{PrimaryColor: p.primary, SecondaryColor: p.secondary}

	t.Base = lipgloss.NewStyle().Foreground(p.primary)
	t.Primary = lipgloss.NewStyle().Foreground(p.primary)
	t.Secondary = lipgloss.NewStyle().Foreground(p.secondary)
	t.Accent = lipgloss.NewStyle().Foreground(p.accent)
	t.Error = lipgloss.NewStyle().Foreground(p.errorColor)
	t.Warning = lipgloss.NewStyle().Foreground(p.warning)
	t.Success = lipgloss.NewStyle().Foreground(p.success)
	t.Muted = lipgloss.NewStyle().Foreground(p.muted)

	t.Header = lipgloss.NewStyle().Foreground(p.primary).Bold(true).Padding(0, 1)
	t.Footer = lipgloss.NewStyle().Foreground(p.secondary).Padding(0, 1)
	t.Title = lipgloss.NewStyle().Foreground(p.accent).Bold(true).Padding(0, 1)
	t.Subtitle = lipgloss.NewStyle().Foreground(p.primary).Padding(0, 1)
	t.Label = lipgloss.NewStyle().Foreground(p.secondary)
	t.Value = lipgloss.NewStyle().Foreground(p.primary)
	t.Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.secondary).
		Padding(0, 1)
	t.Selected = lipgloss.NewStyle().
		Foreground(p.background).
		Background(p.primary).
		Bold(true)

	t.Alert = lipgloss.NewStyle().Foreground(p.primary).Bold(true)
	t.AlertWarn = lipgloss.NewStyle().Foreground(p.warning).Bold(true)
	t.AlertCrit = lipgloss.NewStyle().Foreground(p.errorColor).Bold(true).Blink(true)

	t.StatusDivider = lipgloss.NewStyle().Foreground(p.muted).SetString(" │ ")

	t.styles = components.Styles{
		Title:    t.Title,
		Label:    t.Label,
		Value:    t.Value,
		Focused:  t.Accent.Bold(true),
		Muted:    t.Muted,
		Error:    t.Error,
		Warning:  t.Warning,
		Success:  t.Success,
		Header:   lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		Row:      t.Primary,
		RowAlt:   t.Secondary,
		Selected: t.Selected,
		Border:   t.Secondary,
	}

	return t
}

// Styles returns the component styles for this theme.
func (t *Theme) Styles() components.Styles {
	return t.styles
}

// DrawHorizontalLine draws a horizontal line.
func (t *Theme) DrawHorizontalLine(width int) string {
	return t.Secondary.Render(strings.Repeat("─", max(width, 0)))
}

// DrawDoubleLine draws a double horizontal line.
func (t *Theme) DrawDoubleLine(width int) string {
	return t.Primary.Render(strings.Repeat("═", max(width, 0)))
}
