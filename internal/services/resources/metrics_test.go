package resources

import (
	"math"
	"testing"

	"github.com/habmon/habmon/internal/models"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.005, 1.01},
		{2.675, 2.68},
		{-1.005, -1.01},
		{28.799999999999997, 28.8},
		{0.004, 0},
		{199.999, 200},
		{0, 0},
	}

	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComputeMetrics_Scenarios(t *testing.T) {
	scenarioA := Inputs{Quantity: 4000, MaxCapacity: 5000, Population: 10, PerCapitaConsumptionPerHour: 2.0, SafeWindowHours: 72}

	t.Run("A: healthy stock", func(t *testing.T) {
		m := ComputeMetrics(scenarioA)

		if m.TotalConsumptionPerHour != 20 {
			t.Errorf("total consumption = %v, want 20", m.TotalConsumptionPerHour)
		}
		if m.AutonomyHours == nil || *m.AutonomyHours != 200 {
			t.Errorf("autonomy = %v, want 200", m.AutonomyHours)
		}
		if m.SafetyStockAmount != 1440 {
			t.Errorf("safety stock = %v, want 1440", m.SafetyStockAmount)
		}
		if m.CriticalPercentage != 28.8 {
			t.Errorf("critical percentage = %v, want 28.8", m.CriticalPercentage)
		}
		if m.CurrentPercentage != 80 {
			t.Errorf("current percentage = %v, want 80", m.CurrentPercentage)
		}
		if m.IsCritical {
			t.Error("expected not critical")
		}
	})

	t.Run("B: low stock", func(t *testing.T) {
		in := scenarioA
		in.Quantity = 1000
		m := ComputeMetrics(in)

		if m.CurrentPercentage != 20 {
			t.Errorf("current percentage = %v, want 20", m.CurrentPercentage)
		}
		if m.AutonomyHours == nil || *m.AutonomyHours != 50 {
			t.Errorf("autonomy = %v, want 50", m.AutonomyHours)
		}
		if !m.IsCritical {
			t.Error("expected critical")
		}
	})

	t.Run("C: zero capacity", func(t *testing.T) {
		for _, qty := range []float64{0, 1, 4000, 1e9} {
			in := scenarioA
			in.MaxCapacity = 0
			in.Quantity = qty
			m := ComputeMetrics(in)

			if m.CurrentPercentage != 0 {
				t.Errorf("quantity %v: current percentage = %v, want 0", qty, m.CurrentPercentage)
			}
			if m.CriticalPercentage != 0 {
				t.Errorf("quantity %v: critical percentage = %v, want 0", qty, m.CriticalPercentage)
			}
		}
	})
}

// Without consumption the critical flag falls back to comparing the
// percentage against a threshold that is itself zero. These cases pin that
// behavior: an idle resource is critical only when its percentage is zero.
func TestComputeMetrics_ZeroConsumptionFallback(t *testing.T) {
	tests := []struct {
		name         string
		in           Inputs
		wantCritical bool
	}{
		{"no population, stocked", Inputs{Quantity: 500, MaxCapacity: 1000, PerCapitaConsumptionPerHour: 2, SafeWindowHours: 72}, false},
		{"no population, empty", Inputs{Quantity: 0, MaxCapacity: 1000, PerCapitaConsumptionPerHour: 2, SafeWindowHours: 72}, true},
		{"no per-capita rate, nearly empty", Inputs{Quantity: 1, MaxCapacity: 1000, Population: 10, SafeWindowHours: 72}, false},
		{"no capacity, stocked", Inputs{Quantity: 500, Population: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ComputeMetrics(tt.in)
			if m.AutonomyHours != nil {
				t.Fatalf("expected nil autonomy, got %v", *m.AutonomyHours)
			}
			if m.CriticalPercentage != 0 {
				t.Errorf("critical percentage = %v, want 0", m.CriticalPercentage)
			}
			if m.IsCritical != tt.wantCritical {
				t.Errorf("IsCritical = %v, want %v", m.IsCritical, tt.wantCritical)
			}
		})
	}
}

func TestComputeMetrics_Properties(t *testing.T) {
	quantities := []float64{0, 0.01, 1, 999.995, 2500, 5000, 5000.01, 1e6}
	capacities := []float64{0, 1, 3, 5000, 60000}
	populations := []int{0, 1, 7, 50}

	for _, q := range quantities {
		for _, c := range capacities {
			for _, p := range populations {
				in := Inputs{Quantity: q, MaxCapacity: c, Population: p, PerCapitaConsumptionPerHour: 0.083, SafeWindowHours: 96}
				m := ComputeMetrics(in)

				if c > 0 && (m.CurrentPercentage < 0 || m.CurrentPercentage > 100) {
					t.Errorf("%+v: percentage %v out of range", in, m.CurrentPercentage)
				}

				wantCrit := 0.0
				if c > 0 {
					wantCrit = Round2(m.SafetyStockAmount / c * 100)
				}
				if m.CriticalPercentage != wantCrit {
					t.Errorf("%+v: critical percentage %v, want %v", in, m.CriticalPercentage, wantCrit)
				}

				again := ComputeMetrics(in)
				if !sameMetrics(m, again) {
					t.Errorf("%+v: metrics not idempotent: %+v vs %+v", in, m, again)
				}
			}
		}
	}
}

func TestInputsFromStatus(t *testing.T) {
	qty, pc := 10.0, 0.5
	pop := 3

	t.Run("nil fields read as zero", func(t *testing.T) {
		in := InputsFromStatus(&models.ResourceStatus{}, 0)
		if in != (Inputs{}) {
			t.Errorf("expected zero inputs, got %+v", in)
		}
	})

	t.Run("population falls back", func(t *testing.T) {
		in := InputsFromStatus(&models.ResourceStatus{CurrentQuantity: &qty, PerCapitaConsumptionPerHour: &pc}, 8)
		if in.Population != 8 || in.Quantity != 10 || in.PerCapitaConsumptionPerHour != 0.5 {
			t.Errorf("unexpected inputs %+v", in)
		}
	})

	t.Run("stored population wins", func(t *testing.T) {
		in := InputsFromStatus(&models.ResourceStatus{Population: &pop}, 8)
		if in.Population != 3 {
			t.Errorf("population = %d, want 3", in.Population)
		}
	})
}

func sameMetrics(a, b Metrics) bool {
	if (a.AutonomyHours == nil) != (b.AutonomyHours == nil) {
		return false
	}
	if a.AutonomyHours != nil && *a.AutonomyHours != *b.AutonomyHours {
		return false
	}
	a.AutonomyHours, b.AutonomyHours = nil, nil
	return a == b
}

func TestComputeMetrics_Overflow(t *testing.T) {
	tests := []struct {
		name         string
		in           Inputs
		wantAutonomy bool
	}{
		{"autonomy overflows", Inputs{Quantity: 1e308, MaxCapacity: 1e308, Population: 10, PerCapitaConsumptionPerHour: 1e-300, SafeWindowHours: 72}, false},
		{"consumption overflows", Inputs{Quantity: 1, MaxCapacity: 1e-300, Population: 10, PerCapitaConsumptionPerHour: 1e308, SafeWindowHours: 1e308}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ComputeMetrics(tt.in)

			if (m.AutonomyHours != nil) != tt.wantAutonomy {
				t.Fatalf("autonomy = %v, want present %v", m.AutonomyHours, tt.wantAutonomy)
			}
			values := []float64{m.CurrentPercentage, m.CriticalPercentage, m.TotalConsumptionPerHour, m.SafetyStockAmount}
			if m.AutonomyHours != nil {
				values = append(values, *m.AutonomyHours)
			}
			for _, v := range values {
				if math.IsInf(v, 0) || math.IsNaN(v) {
					t.Errorf("non-finite derived value in %+v", m)
				}
			}
		})
	}
}
