package resources

import (
	"math"

	"github.com/habmon/habmon/internal/apperr"
)

// CreateResourceInput contains data for creating a resource. Nil fields are
// filled from the kind defaults and then the resource profile.
type CreateResourceInput struct {
	Code                        string
	DisplayName                 string
	Unit                        string
	CurrentAmount               *float64
	MaxCapacity                 *float64
	PerCapitaConsumptionPerHour *float64
	SafeWindowHours             *float64
	IsCritical                  *bool // overrides the computed flag
}

// Validate checks the numeric fields.
func (in CreateResourceInput) Validate() error {
	return validateAmounts(in.CurrentAmount, in.MaxCapacity, in.PerCapitaConsumptionPerHour, in.SafeWindowHours)
}

// UpdateResourceInput contains the fields to change on a resource. Nil
// fields keep their stored values.
type UpdateResourceInput struct {
	DisplayName                 *string
	Unit                        *string
	CurrentAmount               *float64
	MaxCapacity                 *float64
	PerCapitaConsumptionPerHour *float64
	SafeWindowHours             *float64
	IsCritical                  *bool
}

// Validate checks the numeric fields.
func (in UpdateResourceInput) Validate() error {
	if in.DisplayName != nil && *in.DisplayName == "" {
		return apperr.Invalid("display name cannot be empty")
	}
	return validateAmounts(in.CurrentAmount, in.MaxCapacity, in.PerCapitaConsumptionPerHour, in.SafeWindowHours)
}

func validateAmounts(currentAmount, maxCapacity, perCapita, safeWindow *float64) error {
	fields := []struct {
		name  string
		value *float64
	}{
		{"currentAmount", currentAmount},
		{"maxCapacity", maxCapacity},
		{"perCapitaConsumptionPerHour", perCapita},
		{"safeWindowHours", safeWindow},
	}

	for _, f := range fields {
		if f.value == nil {
			continue
		}
		v := *f.value
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return apperr.Invalid("%s must be a finite number", f.name).WithMeta("field", f.name)
		}
		if v < 0 {
			return apperr.Invalid("%s must be non-negative, got %v", f.name, v).WithMeta("field", f.name)
		}
	}
	return nil
}

// ClampPopulation converts a requested population to a whole number of at
// least one.
func ClampPopulation(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperr.Invalid("population must be a finite number")
	}
	p := math.Floor(v)
	if p < 1 {
		return 1, nil
	}
	if p > math.MaxInt32 {
		return 0, apperr.Invalid("population %v is out of range", v)
	}
	return int(p), nil
}
