package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{"plain", New(CodeInvalid, "bad input"), "invalid: bad input"},
		{"wrapped", Wrap(errors.New("disk full"), CodeInternal, "saving"), "internal: saving: disk full"},
		{"not found", NotFound("resource OXYGEN"), "not_found: resource OXYGEN not found"},
		{"nil", nil, "<nil>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsCode_ThroughWrapping(t *testing.T) {
	base := NotFound("resource WATER")
	wrapped := fmt.Errorf("loading: %w", base)

	if !IsCode(wrapped, CodeNotFound) {
		t.Error("expected wrapped error to carry not_found")
	}
	if IsCode(wrapped, CodeInvalid) {
		t.Error("did not expect invalid code")
	}
	if IsCode(errors.New("plain"), CodeNotFound) {
		t.Error("plain error should not match any code")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(nil); got != "" {
		t.Errorf("CodeOf(nil) = %q, want empty", got)
	}
	if got := CodeOf(errors.New("boom")); got != CodeInternal {
		t.Errorf("CodeOf(plain) = %q, want internal", got)
	}
	if got := CodeOf(Invalid("negative %s", "amount")); got != CodeInvalid {
		t.Errorf("CodeOf(invalid) = %q, want invalid", got)
	}
}

func TestWrap_Unwrap(t *testing.T) {
	cause := errors.New("io error")
	err := Wrap(cause, CodeUnavailable, "database")
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if err.Meta != nil {
		t.Error("expected no metadata by default")
	}
	err.WithMeta("attempt", 2)
	if err.Meta["attempt"] != 2 {
		t.Errorf("Meta[attempt] = %v, want 2", err.Meta["attempt"])
	}
}
