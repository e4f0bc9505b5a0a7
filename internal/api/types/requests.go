package types

import "github.com/habmon/habmon/internal/services/resources"

// CreateResourceRequest is the body of POST /api/resources.
type CreateResourceRequest struct {
	Code                        string   `json:"code"                        validate:"required,max=32,resourcecode"`
	DisplayName                 string   `json:"displayName"                 validate:"max=128"`
	Unit                        string   `json:"unit"                        validate:"max=16"`
	CurrentAmount               *float64 `json:"currentAmount"               validate:"omitempty,gte=0"`
	MaxCapacity                 *float64 `json:"maxCapacity"                 validate:"omitempty,gte=0"`
	PerCapitaConsumptionPerHour *float64 `json:"perCapitaConsumptionPerHour" validate:"omitempty,gte=0"`
	SafeWindowHours             *float64 `json:"safeWindowHours"             validate:"omitempty,gte=0"`
	IsCritical                  *bool    `json:"isCritical"`
}

// Input converts the request to a service input.
func (r CreateResourceRequest) Input() resources.CreateResourceInput {
	return resources.CreateResourceInput{
		Code:                        r.Code,
		DisplayName:                 r.DisplayName,
		Unit:                        r.Unit,
		CurrentAmount:               r.CurrentAmount,
		MaxCapacity:                 r.MaxCapacity,
		PerCapitaConsumptionPerHour: r.PerCapitaConsumptionPerHour,
		SafeWindowHours:             r.SafeWindowHours,
		IsCritical:                  r.IsCritical,
	}
}

// UpdateResourceRequest is the body of PATCH /api/resources/{code}.
type UpdateResourceRequest struct {
	DisplayName                 *string  `json:"displayName"                 validate:"omitempty,min=1,max=128"`
	Unit                        *string  `json:"unit"                        validate:"omitempty,max=16"`
	CurrentAmount               *float64 `json:"currentAmount"               validate:"omitempty,gte=0"`
	MaxCapacity                 *float64 `json:"maxCapacity"                 validate:"omitempty,gte=0"`
	PerCapitaConsumptionPerHour *float64 `json:"perCapitaConsumptionPerHour" validate:"omitempty,gte=0"`
	SafeWindowHours             *float64 `json:"safeWindowHours"             validate:"omitempty,gte=0"`
	IsCritical                  *bool    `json:"isCritical"`
}

// Input converts the request to a service input.
func (r UpdateResourceRequest) Input() resources.UpdateResourceInput {
	return resources.UpdateResourceInput{
		DisplayName:                 r.DisplayName,
		Unit:                        r.Unit,
		CurrentAmount:               r.CurrentAmount,
		MaxCapacity:                 r.MaxCapacity,
		PerCapitaConsumptionPerHour: r.PerCapitaConsumptionPerHour,
		SafeWindowHours:             r.SafeWindowHours,
		IsCritical:                  r.IsCritical,
	}
}

// UpdatePopulationRequest is the body of PATCH /api/resources/population/update.
type UpdatePopulationRequest struct {
	Population *float64 `json:"population" validate:"required"`
}
