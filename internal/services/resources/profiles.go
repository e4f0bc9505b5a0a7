package resources

import "github.com/habmon/habmon/internal/models"

// Profile holds the default simulation parameters for a resource code.
type Profile struct {
	Code                        string
	DisplayName                 string
	Unit                        string
	MaxCapacity                 float64
	PerCapitaConsumptionPerHour float64
	SafetyWindowHours           float64
}

const (
	fallbackUnit             = "unit"
	fallbackMaxCapacity      = 10000
	fallbackPerCapitaPerHour = 0.5
	defaultSafetyWindowHours = 48
)

// knownProfiles lists the built-in life-support consumables in display order.
var knownProfiles = []Profile{
	// ~50 L/person/day, 60 m3 of potable water
	{Code: "WATER", DisplayName: "Water", Unit: "L", MaxCapacity: 60000, PerCapitaConsumptionPerHour: 2.1, SafetyWindowHours: 72},
	// ~2 kg/person/day
	{Code: "FOOD", DisplayName: "Food", Unit: "kg", MaxCapacity: 8000, PerCapitaConsumptionPerHour: 0.083, SafetyWindowHours: 96},
	// ~0.84 kg/person/day
	{Code: "OXYGEN", DisplayName: "Oxygen", Unit: "kg", MaxCapacity: 3500, PerCapitaConsumptionPerHour: 0.035, SafetyWindowHours: defaultSafetyWindowHours},
	// ~36 kWh/person/day
	{Code: "ENERGY", DisplayName: "Energy", Unit: "kWh", MaxCapacity: 150000, PerCapitaConsumptionPerHour: 1.5, SafetyWindowHours: 24},
}

var profilesByCode = func() map[string]Profile {
	m := make(map[string]Profile, len(knownProfiles))
	for _, p := range knownProfiles {
		m[p.Code] = p
	}
	return m
}()

// GetProfile returns the simulation profile for code. Unknown codes get a
// generic profile measured in unitFallback ("unit" when empty).
func GetProfile(code, unitFallback string) Profile {
	code = models.NormalizeCode(code)
	if p, ok := profilesByCode[code]; ok {
		return p
	}

	if unitFallback == "" {
		unitFallback = fallbackUnit
	}
	return Profile{
		Code:                        code,
		DisplayName:                 code,
		Unit:                        unitFallback,
		MaxCapacity:                 fallbackMaxCapacity,
		PerCapitaConsumptionPerHour: fallbackPerCapitaPerHour,
		SafetyWindowHours:           defaultSafetyWindowHours,
	}
}

// KnownProfiles returns a copy of the built-in profiles.
func KnownProfiles() []Profile {
	out := make([]Profile, len(knownProfiles))
	copy(out, knownProfiles)
	return out
}
