package models

import (
	"testing"
)

func TestEventType_Valid(t *testing.T) {
	tests := []struct {
		name  string
		event EventType
		want  bool
	}{
		{"Create", EventCreate, true},
		{"AdminUpdate", EventAdminUpdate, true},
		{"Decay", EventDecay, true},
		{"PopulationUpdate", EventPopulationUpdate, true},
		{"Unknown", EventType("RESUPPLY"), false},
		{"Empty", EventType(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Valid(); got != tt.want {
				t.Errorf("EventType(%q).Valid() = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"oxygen", "OXYGEN"},
		{"  Water ", "WATER"},
		{"CO2_SCRUB", "CO2_SCRUB"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeCode(tt.in); got != tt.want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResourceStatus_Code(t *testing.T) {
	s := &ResourceStatus{}
	if got := s.Code(); got != "" {
		t.Errorf("Code() without kind = %q, want empty", got)
	}

	s.Kind = &ResourceKind{Code: "FOOD"}
	if got := s.Code(); got != "FOOD" {
		t.Errorf("Code() = %q, want FOOD", got)
	}
}

func TestSummarizeCards(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		stats := SummarizeCards(nil, 12)
		if stats.Monitored != 0 || stats.Critical != 0 || stats.AveragePercentage != 0 {
			t.Errorf("unexpected stats for empty input: %+v", stats)
		}
		if stats.Population != 12 {
			t.Errorf("Population = %d, want 12", stats.Population)
		}
	})

	t.Run("mixed", func(t *testing.T) {
		cards := []ResourceCard{
			{Code: "WATER", CurrentPercentage: 80},
			{Code: "FOOD", CurrentPercentage: 20, IsCritical: true},
			{Code: "OXYGEN", CurrentPercentage: 50},
		}
		stats := SummarizeCards(cards, 10)
		if stats.Monitored != 3 {
			t.Errorf("Monitored = %d, want 3", stats.Monitored)
		}
		if stats.Critical != 1 {
			t.Errorf("Critical = %d, want 1", stats.Critical)
		}
		if stats.AveragePercentage != 50 {
			t.Errorf("AveragePercentage = %v, want 50", stats.AveragePercentage)
		}
	})
}
