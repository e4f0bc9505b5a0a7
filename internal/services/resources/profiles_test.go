package resources

import "testing"

func TestGetProfile(t *testing.T) {
	tests := []struct {
		name         string
		code         string
		unitFallback string
		want         Profile
	}{
		{"known code", "WATER", "", Profile{Code: "WATER", DisplayName: "Water", Unit: "L", MaxCapacity: 60000, PerCapitaConsumptionPerHour: 2.1, SafetyWindowHours: 72}},
		{"lookup ignores case", "oxygen", "m3", Profile{Code: "OXYGEN", DisplayName: "Oxygen", Unit: "kg", MaxCapacity: 3500, PerCapitaConsumptionPerHour: 0.035, SafetyWindowHours: 48}},
		{"unknown uses fallback unit", "spares", "crate", Profile{Code: "SPARES", DisplayName: "SPARES", Unit: "crate", MaxCapacity: 10000, PerCapitaConsumptionPerHour: 0.5, SafetyWindowHours: 48}},
		{"unknown without unit", "Nitrogen", "", Profile{Code: "NITROGEN", DisplayName: "NITROGEN", Unit: "unit", MaxCapacity: 10000, PerCapitaConsumptionPerHour: 0.5, SafetyWindowHours: 48}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetProfile(tt.code, tt.unitFallback); got != tt.want {
				t.Errorf("GetProfile(%q, %q) = %+v, want %+v", tt.code, tt.unitFallback, got, tt.want)
			}
		})
	}
}

func TestKnownProfiles(t *testing.T) {
	profiles := KnownProfiles()
	want := []string{"WATER", "FOOD", "OXYGEN", "ENERGY"}

	if len(profiles) != len(want) {
		t.Fatalf("expected %d profiles, got %d", len(want), len(profiles))
	}
	for i, code := range want {
		if profiles[i].Code != code {
			t.Errorf("profile %d = %s, want %s", i, profiles[i].Code, code)
		}
	}

	profiles[0].MaxCapacity = 1
	if KnownProfiles()[0].MaxCapacity != 60000 {
		t.Error("KnownProfiles must return a copy")
	}
}
