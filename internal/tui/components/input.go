package components

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Input is a single-line text field. The value is kept as runes so the
// cursor moves by character.
type Input struct {
	label       string
	placeholder string
	value       []rune
	cursor      int
	width       int
	labelWidth  int
	maxLength   int
	focused     bool
	required    bool
	numeric     bool
	err         string
	styles      Styles
}

// NewInput creates an empty field.
func NewInput(label string) *Input {
	return &Input{
		label:      label,
		width:      20,
		labelWidth: 16,
		maxLength:  100,
		styles:     DefaultStyles(),
	}
}

// SetValue replaces the value and puts the cursor at its end.
func (i *Input) SetValue(v string) *Input {
	i.value = []rune(v)
	i.cursor = len(i.value)
	return i
}

// SetPlaceholder sets the text shown while the field is empty and unfocused.
func (i *Input) SetPlaceholder(p string) *Input {
	i.placeholder = p
	return i
}

// SetWidth sets the display width of the value area.
func (i *Input) SetWidth(w int) *Input {
	i.width = w
	return i
}

// SetMaxLength limits the value to m characters.
func (i *Input) SetMaxLength(m int) *Input {
	i.maxLength = m
	return i
}

// SetRequired marks the field as mandatory for Validate.
func (i *Input) SetRequired(r bool) *Input {
	i.required = r
	return i
}

// SetNumeric restricts typed characters to digits and one decimal point.
func (i *Input) SetNumeric(n bool) *Input {
	i.numeric = n
	return i
}

// SetStyles sets the render styles.
func (i *Input) SetStyles(s Styles) *Input {
	i.styles = s
	return i
}

// SetError sets the message rendered after the field.
func (i *Input) SetError(e string) *Input {
	i.err = e
	return i
}

// Error returns the current validation message.
func (i *Input) Error() string {
	return i.err
}

// Focus sets whether the field receives keys.
func (i *Input) Focus(focused bool) {
	i.focused = focused
	i.cursor = min(i.cursor, len(i.value))
}

// IsFocused reports whether the field receives keys.
func (i *Input) IsFocused() bool {
	return i.focused
}

// Value returns the current text.
func (i *Input) Value() string {
	return string(i.value)
}

// HandleKey applies a key name as reported by bubbletea. Unfocused fields
// ignore keys.
func (i *Input) HandleKey(key string) {
	if !i.focused {
		return
	}

	switch key {
	case "backspace":
		if i.cursor > 0 {
			i.value = slices.Delete(i.value, i.cursor-1, i.cursor)
			i.cursor--
		}
	case "delete":
		if i.cursor < len(i.value) {
			i.value = slices.Delete(i.value, i.cursor, i.cursor+1)
		}
	case "left":
		i.cursor = max(i.cursor-1, 0)
	case "right":
		i.cursor = min(i.cursor+1, len(i.value))
	case "home", "ctrl+a":
		i.cursor = 0
	case "end", "ctrl+e":
		i.cursor = len(i.value)
	default:
		i.insert(key)
	}
}

func (i *Input) insert(key string) {
	r, size := utf8.DecodeRuneInString(key)
	if size == 0 || size != len(key) || len(i.value) >= i.maxLength || !i.accepts(r) {
		return
	}
	i.value = slices.Insert(i.value, i.cursor, r)
	i.cursor++
}

func (i *Input) accepts(r rune) bool {
	if !i.numeric {
		return unicode.IsPrint(r)
	}
	return unicode.IsDigit(r) || (r == '.' && !slices.Contains(i.value, '.'))
}

// Validate reports whether the field is acceptable and sets or clears
// its error accordingly.
func (i *Input) Validate() bool {
	if i.required && strings.TrimSpace(string(i.value)) == "" {
		i.err = "Required"
		return false
	}
	i.err = ""
	return true
}

// Render draws "Label: value" with an underscore cursor when focused.
func (i *Input) Render() string {
	label := i.label
	if i.required {
		label += "*"
	}
	label += ":"

	shown := len(i.value)
	var display string
	switch {
	case i.focused:
		display = i.styles.Focused.Render(string(i.value[:i.cursor]) + "_" + string(i.value[i.cursor:]))
		shown++
	case len(i.value) == 0 && i.placeholder != "":
		display = i.styles.Muted.Render(i.placeholder)
		shown = utf8.RuneCountInString(i.placeholder)
	default:
		display = i.styles.Value.Render(string(i.value))
	}
	if pad := i.width - shown; pad > 0 {
		display += strings.Repeat(" ", pad)
	}

	out := i.styles.Label.Width(i.labelWidth).Render(label) + " " + display
	if i.err != "" {
		out += " " + i.styles.Error.Render(i.err)
	}
	return out
}

// FormField is a focusable form component.
type FormField interface {
	Focus(bool)
	IsFocused() bool
	HandleKey(string)
	Render() string
}

var _ FormField = (*Input)(nil)

// Form is a simple form container.
type Form struct {
	title      string
	fields     []FormField
	focusIndex int
	submitted  bool
	cancelled  bool
	err        string
	styles     Styles
}

// NewForm creates a new form.
func NewForm(title string) *Form {
	return &Form{title: title, styles: DefaultStyles()}
}

// SetStyles sets the render styles.
func (f *Form) SetStyles(s Styles) *Form {
	f.styles = s
	return f
}

// AddField adds a field to the form.
func (f *Form) AddField(field FormField) *Form {
	f.fields = append(f.fields, field)
	if len(f.fields) == 1 {
		field.Focus(true)
	}
	return f
}

// HandleKey handles form navigation.
func (f *Form) HandleKey(key string) {
	switch key {
	case "tab", "down":
		f.nextField()
	case "shift+tab", "up":
		f.prevField()
	case "ctrl+s":
		f.submitted = true
	case "esc":
		f.cancelled = true
	case "enter":
		if f.focusIndex == len(f.fields)-1 {
			f.submitted = true
		} else {
			f.nextField()
		}
	default:
		if f.focusIndex < len(f.fields) {
			f.fields[f.focusIndex].HandleKey(key)
		}
	}
}

func (f *Form) nextField() {
	if len(f.fields) == 0 {
		return
	}
	f.fields[f.focusIndex].Focus(false)
	f.focusIndex = (f.focusIndex + 1) % len(f.fields)
	f.fields[f.focusIndex].Focus(true)
}

func (f *Form) prevField() {
	if len(f.fields) == 0 {
		return
	}
	f.fields[f.focusIndex].Focus(false)
	f.focusIndex--
	if f.focusIndex < 0 {
		f.focusIndex = len(f.fields) - 1
	}
	f.fields[f.focusIndex].Focus(true)
}

// IsSubmitted returns true if form was submitted.
func (f *Form) IsSubmitted() bool {
	return f.submitted
}

// IsCancelled returns true if form was cancelled.
func (f *Form) IsCancelled() bool {
	return f.cancelled
}

// Reopen clears the submitted state so the form can be edited again.
func (f *Form) Reopen() {
	f.submitted = false
}

// SetError sets an error message.
func (f *Form) SetError(err string) {
	f.err = err
}

// Render renders the form.
func (f *Form) Render() string {
	var b strings.Builder

	b.WriteString(f.styles.Title.Render(fmt.Sprintf("═══ %s ═══", f.title)))
	b.WriteString("\n\n")

	for _, field := range f.fields {
		b.WriteString(field.Render())
		b.WriteString("\n")
	}

	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(f.styles.Error.Render("Error: " + f.err))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(f.styles.Label.Render("Enter:Save  Tab:Next  Esc:Cancel"))

	return b.String()
}
