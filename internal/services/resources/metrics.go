package resources

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/habmon/habmon/internal/models"
)

// Inputs are the raw numeric fields the metrics are derived from.
type Inputs struct {
	Quantity                    float64
	MaxCapacity                 float64
	Population                  int
	PerCapitaConsumptionPerHour float64
	SafeWindowHours             float64
}

// Metrics are the derived figures of a resource.
type Metrics struct {
	CurrentPercentage           float64
	CriticalPercentage          float64
	AutonomyHours               *float64 // nil when nothing is being consumed
	IsCritical                  bool
	TotalConsumptionPerHour     float64
	PerCapitaConsumptionPerHour float64
	SafetyStockAmount           float64
	SafeWindowHours             float64
}

// InputsFromStatus reads metric inputs from a status, treating nil fields
// as zero. A nil population is replaced by fallbackPopulation.
func InputsFromStatus(s *models.ResourceStatus, fallbackPopulation int) Inputs {
	in := Inputs{
		Quantity:                    deref(s.CurrentQuantity),
		MaxCapacity:                 deref(s.MaxCapacity),
		Population:                  fallbackPopulation,
		PerCapitaConsumptionPerHour: deref(s.PerCapitaConsumptionPerHour),
		SafeWindowHours:             deref(s.SafeWindowHours),
	}
	if s.Population != nil {
		in.Population = *s.Population
	}
	return in
}

// TotalConsumptionPerHour is population times per-capita rate, or zero when
// either is not positive.
func TotalConsumptionPerHour(in Inputs) float64 {
	if in.Population > 0 && in.PerCapitaConsumptionPerHour > 0 {
		return float64(in.Population) * in.PerCapitaConsumptionPerHour
	}
	return 0
}

// ComputeMetrics derives percentages, autonomy, safety stock and criticality.
// Every derived value is rounded to two decimals on its own.
func ComputeMetrics(in Inputs) Metrics {
	m := Metrics{
		TotalConsumptionPerHour:     bounded(TotalConsumptionPerHour(in)),
		PerCapitaConsumptionPerHour: in.PerCapitaConsumptionPerHour,
		SafeWindowHours:             in.SafeWindowHours,
	}

	// Autonomy too large to represent is reported like no consumption.
	if m.TotalConsumptionPerHour > 0 {
		if autonomy := Round2(in.Quantity / m.TotalConsumptionPerHour); !math.IsInf(autonomy, 0) {
			m.AutonomyHours = &autonomy
		}
	}

	capped := in.Quantity
	if in.MaxCapacity > 0 {
		capped = math.Min(in.Quantity, in.MaxCapacity)
		m.CurrentPercentage = Round2(capped / in.MaxCapacity * 100)
	}

	if m.TotalConsumptionPerHour > 0 && in.SafeWindowHours > 0 {
		m.SafetyStockAmount = bounded(Round2(m.TotalConsumptionPerHour * in.SafeWindowHours))
	}

	if in.MaxCapacity > 0 {
		m.CriticalPercentage = bounded(Round2(m.SafetyStockAmount / in.MaxCapacity * 100))
	}

	// With no consumption the threshold is zero as well, so an idle resource
	// is critical only when empty.
	if m.AutonomyHours != nil && in.SafeWindowHours > 0 {
		m.IsCritical = *m.AutonomyHours < in.SafeWindowHours
	} else {
		m.IsCritical = m.CurrentPercentage <= m.CriticalPercentage
	}

	return m
}

// MinimumCapacity is the storage needed to hold the safety stock for
// population at the given rate and window.
func MinimumCapacity(perCapita float64, population int, safeWindowHours float64) float64 {
	return perCapita * float64(population) * safeWindowHours
}

// Round2 rounds v to two decimal places, half away from zero.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// bounded clamps an overflowed value to the largest finite float.
func bounded(v float64) float64 {
	switch {
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	}
	return v
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
