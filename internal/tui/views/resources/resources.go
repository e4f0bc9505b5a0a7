// Package resources provides TUI views for resource monitoring.
package resources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/habmon/habmon/internal/models"
	"github.com/habmon/habmon/internal/tui/components"
)

// historyLimit is how many history entries the detail view shows.
const historyLimit = 12

// Source supplies the data the view displays.
type Source interface {
	ListForDashboard(ctx context.Context) ([]models.ResourceCard, error)
	History(ctx context.Context, code string, from, to *time.Time) ([]models.HistoryPoint, error)
}

// ListView displays the monitored resources and the detail of one of them.
type ListView struct {
	source  Source
	table   *components.Table
	styles  components.Styles
	cards   []models.ResourceCard
	history []models.HistoryPoint
	err     error

	dateTimeFormat string
}

// NewListView creates a new resource list view.
func NewListView(source Source) *ListView {
	table := components.NewTable([]components.Column{
		{Title: "Code", Width: 10},
		{Title: "Name", Width: 16},
		{Title: "Level", Width: 8, Align: lipgloss.Right},
		{Title: "Fill", Width: 12},
		{Title: "Autonomy", Width: 10, Align: lipgloss.Right},
		{Title: "Status", Width: 6},
	})
	table.SetVisibleRows(15)
	table.Focus(true)

	return &ListView{
		source:         source,
		table:          table,
		styles:         components.DefaultStyles(),
		dateTimeFormat: "2006-01-02 15:04:05",
	}
}

// SetStyles sets the render styles.
func (v *ListView) SetStyles(s components.Styles) {
	v.styles = s
	v.table.SetStyles(s)
}

// SetDateTimeFormat sets the layout used for history timestamps.
func (v *ListView) SetDateTimeFormat(layout string) {
	if layout != "" {
		v.dateTimeFormat = layout
	}
}

// SetColumnWidths resizes the table columns in display order. A zero
// width hides the column.
func (v *ListView) SetColumnWidths(widths []int) {
	columns := v.table.Columns()
	for i := range columns {
		if i < len(widths) {
			columns[i].Width = widths[i]
		}
	}
	v.table.SetColumns(columns)
}

// SetVisibleRows sets how many table rows fit on screen.
func (v *ListView) SetVisibleRows(n int) {
	v.table.SetVisibleRows(n)
}

// Load fetches the resource cards.
func (v *ListView) Load(ctx context.Context) error {
	cards, err := v.source.ListForDashboard(ctx)
	if err != nil {
		v.err = err
		return err
	}
	v.err = nil
	v.SetCards(cards)
	return nil
}

// SetCards replaces the displayed cards, keeping the selection in range.
func (v *ListView) SetCards(cards []models.ResourceCard) {
	v.cards = cards

	rows := make([][]string, len(cards))
	for i, c := range cards {
		status := "OK"
		if c.IsCritical {
			status = "CRIT"
		}
		rows[i] = []string{
			c.Code,
			c.Name,
			fmt.Sprintf("%.2f%%", c.CurrentPercentage),
			FillBar(c.CurrentPercentage, 12),
			FormatAutonomy(c.AutonomyHours),
			status,
		}
	}
	v.table.SetRows(rows)
}

// Cards returns the displayed cards.
func (v *ListView) Cards() []models.ResourceCard {
	return v.cards
}

// LoadHistory fetches the recent history of code.
func (v *ListView) LoadHistory(ctx context.Context, code string) error {
	points, err := v.source.History(ctx, code, nil, nil)
	if err != nil {
		v.history = nil
		return err
	}
	if len(points) > historyLimit {
		points = points[len(points)-historyLimit:]
	}
	v.history = points
	return nil
}

// SetHistory replaces the displayed history.
func (v *ListView) SetHistory(points []models.HistoryPoint) {
	v.history = points
}

// MoveUp moves the selection up.
func (v *ListView) MoveUp() {
	v.table.MoveUp()
}

// MoveDown moves the selection down.
func (v *ListView) MoveDown() {
	v.table.MoveDown()
}

// Selected returns the selected card, or nil when the list is empty.
func (v *ListView) Selected() *models.ResourceCard {
	idx := v.table.Selected()
	if idx >= 0 && idx < len(v.cards) {
		return &v.cards[idx]
	}
	return nil
}

// Render renders the resource list.
func (v *ListView) Render(width int) string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("═══ LIFE SUPPORT RESOURCES ═══"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	if v.table.Empty() {
		b.WriteString(v.styles.Label.Render("No resources monitored."))
		b.WriteString("\n")
	} else {
		b.WriteString(v.table.Render())
	}

	b.WriteString("\n")
	if width > 0 && width < 60 {
		b.WriteString(v.styles.Label.Render("Enter:Info d:Del"))
	} else {
		b.WriteString(v.styles.Label.Render("Up/Down:Select  Enter:Details  d:Delete"))
	}

	return b.String()
}

// RenderDetail renders the detail view of card with its recent history.
func (v *ListView) RenderDetail(card *models.ResourceCard) string {
	label := v.styles.Label.Width(24)

	if card == nil {
		return label.Render("No resource selected")
	}

	var b strings.Builder
	line := func(name, value string) {
		b.WriteString(label.Render(name+":") + " " + v.styles.Value.Render(value) + "\n")
	}

	b.WriteString(v.styles.Title.Render("═══ " + strings.ToUpper(card.Name) + " ═══"))
	b.WriteString("\n\n")

	b.WriteString(v.styles.Header.Render("LEVEL"))
	b.WriteString("\n")
	line("Code", card.Code)
	line("Level", fmt.Sprintf("%.2f%%", card.CurrentPercentage))
	line("Quantity", fmt.Sprintf("%.2f / %.2f %s", card.CurrentQuantity, card.MaxCapacity, card.Unit))
	line("Critical Threshold", fmt.Sprintf("%.2f%%", card.CriticalPercentage))
	status := v.styles.Success.Render("NOMINAL")
	if card.IsCritical {
		status = v.styles.Error.Render("CRITICAL")
	}
	b.WriteString(label.Render("Status:") + " " + status + "\n")
	b.WriteString("\n")

	b.WriteString(v.styles.Header.Render("CONSUMPTION"))
	b.WriteString("\n")
	line("Population", fmt.Sprintf("%d", card.Population))
	line("Per Capita", fmt.Sprintf("%.3f %s/h", card.PerCapitaConsumptionPerHour, card.Unit))
	line("Total", fmt.Sprintf("%.3f %s/h", card.TotalConsumptionPerHour, card.Unit))
	line("Autonomy", FormatAutonomy(card.AutonomyHours))
	line("Safe Window", fmt.Sprintf("%.1fh", card.SafeWindowHours))
	line("Safety Stock", fmt.Sprintf("%.2f %s", card.SafetyStockAmount, card.Unit))
	b.WriteString("\n")

	b.WriteString(v.styles.Header.Render("RECENT HISTORY"))
	b.WriteString("\n")
	if len(v.history) == 0 {
		b.WriteString(v.styles.Muted.Render("  No history recorded."))
		b.WriteString("\n")
	}
	for i := len(v.history) - 1; i >= 0; i-- {
		p := v.history[i]
		entry := fmt.Sprintf("  %s  %7.2f%%  %-16s", p.Timestamp.Format(v.dateTimeFormat), p.Percentage, p.EventType)
		if p.IsCritical {
			b.WriteString(v.styles.Warning.Render(entry + " CRIT"))
		} else {
			b.WriteString(v.styles.Value.Render(entry))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Label.Render("Esc:Back  d:Delete"))

	return b.String()
}

// FillBar renders an unstyled fill bar of the given width.
func FillBar(percentage float64, width int) string {
	if width < 1 {
		return ""
	}
	ratio := max(0, min(percentage/100, 1))
	filled := int(ratio * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// FormatAutonomy renders remaining hours. Nil means nothing is consumed.
func FormatAutonomy(hours *float64) string {
	switch {
	case hours == nil:
		return "--"
	case *hours >= 1000:
		return fmt.Sprintf("%.0fd", *hours/24)
	default:
		return fmt.Sprintf("%.1fh", *hours)
	}
}
