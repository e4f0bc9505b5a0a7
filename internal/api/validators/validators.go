// Package validators configures request validation.
package validators

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/habmon/habmon/internal/apperr"
)

var (
	once     sync.Once
	validate *validator.Validate

	resourceCode = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
)

// New returns the shared validator. Field errors are reported by JSON name.
func New() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("resourcecode", func(fl validator.FieldLevel) bool {
			return resourceCode.MatchString(strings.TrimSpace(fl.Field().String()))
		})
	})
	return validate
}

// Struct validates v and converts failures to an apperr.Invalid naming the
// first offending field.
func Struct(v any) error {
	err := New().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Wrap(err, apperr.CodeInvalid, "invalid request")
	}
	fe := verrs[0]
	return apperr.Invalid("%s", describe(fe)).WithMeta("field", fe.Field())
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "resourcecode":
		return fmt.Sprintf("%s must start with a letter and contain only letters, digits, '_' or '-'", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
