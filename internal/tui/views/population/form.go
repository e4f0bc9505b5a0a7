// Package population provides the TUI view for changing the colony
// population.
package population

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/habmon/habmon/internal/apperr"
	"github.com/habmon/habmon/internal/tui/components"
)

// Form collects a new colony population.
type Form struct {
	current    int
	population *components.Input
	form       *components.Form
	styles     components.Styles
}

// NewForm creates a population form prefilled with the current population.
func NewForm(current int) *Form {
	population := components.NewInput("Population").
		SetRequired(true).
		SetNumeric(true).
		SetWidth(10).
		SetMaxLength(10).
		SetPlaceholder(strconv.Itoa(current))

	return &Form{
		current:    current,
		population: population,
		form:       components.NewForm("COLONY POPULATION").AddField(population),
		styles:     components.DefaultStyles(),
	}
}

// SetStyles sets the render styles.
func (f *Form) SetStyles(s components.Styles) {
	f.styles = s
	f.population.SetStyles(s)
	f.form.SetStyles(s)
}

// HandleKey passes a key press to the form.
func (f *Form) HandleKey(key string) {
	f.form.HandleKey(key)
}

// IsSubmitted reports whether the user asked to save.
func (f *Form) IsSubmitted() bool {
	return f.form.IsSubmitted()
}

// IsCancelled reports whether the user backed out of the form.
func (f *Form) IsCancelled() bool {
	return f.form.IsCancelled()
}

// Value validates the input and returns the requested population. On
// failure the error is shown on the form and it is reopened for editing.
func (f *Form) Value() (float64, error) {
	if !f.population.Validate() {
		f.form.Reopen()
		return 0, apperr.Invalid("population is required").WithMeta("field", "population")
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(f.population.Value()), 64)
	if err != nil {
		f.population.SetError("Not a number")
		f.form.Reopen()
		return 0, apperr.Invalid("population %q is not a number", f.population.Value()).WithMeta("field", "population")
	}
	return v, nil
}

// SetError shows a save error and reopens the form.
func (f *Form) SetError(msg string) {
	f.form.SetError(msg)
	f.form.Reopen()
}

// Render renders the form.
func (f *Form) Render() string {
	var b strings.Builder

	b.WriteString(f.form.Render())
	b.WriteString("\n\n")
	b.WriteString(f.styles.Label.Render(fmt.Sprintf("Current population: %d", f.current)))
	b.WriteString("\n")
	b.WriteString(f.styles.Muted.Render("Fractional values are floored. Values below 1 become 1."))

	return b.String()
}
