package testutil

import (
	"time"

	"github.com/habmon/habmon/internal/models"
	"github.com/habmon/habmon/internal/util"
)

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

// FixtureKind creates a test resource kind with WATER-like defaults.
func FixtureKind(overrides ...func(*models.ResourceKind)) *models.ResourceKind {
	now := time.Now().UTC()

	kind := &models.ResourceKind{
		ID:                              util.NewID(),
		Code:                            "WATER",
		DisplayName:                     "Water",
		Unit:                            "L",
		DefaultPerCapitaConsumptionHour: Float(2.1),
		DefaultSafeWindowHours:          Float(72),
		CreatedAt:                       now,
		UpdatedAt:                       now,
	}

	for _, override := range overrides {
		override(kind)
	}

	return kind
}

// FixtureStatus creates a test status owned by kind.
func FixtureStatus(kind *models.ResourceKind, overrides ...func(*models.ResourceStatus)) *models.ResourceStatus {
	status := &models.ResourceStatus{
		ID:                          util.NewID(),
		KindID:                      kind.ID,
		CurrentPercentage:           50,
		CriticalPercentage:          2.52,
		CurrentQuantity:             Float(30000),
		MaxCapacity:                 Float(60000),
		Population:                  Int(10),
		PerCapitaConsumptionPerHour: Float(2.1),
		SafeWindowHours:             Float(72),
		LastUpdated:                 time.Now().UTC(),
		Kind:                        kind,
	}

	for _, override := range overrides {
		override(status)
	}

	return status
}

// FixtureHistory creates a test history entry for status.
func FixtureHistory(statusID string, at time.Time, overrides ...func(*models.ResourceHistory)) *models.ResourceHistory {
	entry := &models.ResourceHistory{
		ID:         util.NewID(),
		StatusID:   statusID,
		MeasuredAt: at,
		Percentage: 50,
		EventType:  models.EventAdminUpdate,
	}

	for _, override := range overrides {
		override(entry)
	}

	return entry
}

// FixtureColonyState creates a test colony state.
func FixtureColonyState(population int, at time.Time) *models.ColonyState {
	return &models.ColonyState{
		ID:                util.NewID(),
		CurrentPopulation: population,
		UpdatedAt:         at,
	}
}
