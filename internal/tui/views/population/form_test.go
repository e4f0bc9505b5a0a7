package population

import (
	"strings"
	"testing"

	"github.com/habmon/habmon/internal/apperr"
)

func submit(f *Form, typed string) {
	for _, r := range typed {
		f.HandleKey(string(r))
	}
	f.HandleKey("enter")
}

func TestForm_Value(t *testing.T) {
	f := NewForm(10)
	submit(f, "12.7")

	if !f.IsSubmitted() {
		t.Fatal("expected form to be submitted")
	}
	v, err := f.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if v != 12.7 {
		t.Errorf("Value() = %v, want 12.7", v)
	}
}

func TestForm_ValueErrors(t *testing.T) {
	tests := []struct {
		name  string
		typed string
	}{
		{"empty", ""},
		{"lone decimal point", "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewForm(10)
			submit(f, tt.typed)

			_, err := f.Value()
			if !apperr.IsCode(err, apperr.CodeInvalid) {
				t.Fatalf("Value() error = %v, want invalid", err)
			}
			if f.IsSubmitted() {
				t.Error("form should reopen after a validation error")
			}
		})
	}
}

func TestForm_SetError(t *testing.T) {
	f := NewForm(10)
	submit(f, "5")
	f.SetError("database is locked")

	if f.IsSubmitted() {
		t.Error("SetError should reopen the form")
	}
	if out := f.Render(); !strings.Contains(out, "Error: database is locked") {
		t.Errorf("render missing error:\n%s", out)
	}
}

func TestForm_Render(t *testing.T) {
	out := NewForm(24).Render()
	for _, want := range []string{"COLONY POPULATION", "Population*:", "Current population: 24"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}

func TestForm_Cancel(t *testing.T) {
	f := NewForm(10)
	f.HandleKey("esc")
	if !f.IsCancelled() {
		t.Error("esc should cancel")
	}
}
