package models

import (
	"strings"
	"time"
)

// ResourceKind is the definition of a monitored consumable and its defaults.
type ResourceKind struct {
	ID                              string    `json:"id"`
	Code                            string    `json:"code"` // "OXYGEN", "WATER", ...
	DisplayName                     string    `json:"name"`
	Unit                            string    `json:"unit"`
	DefaultPerCapitaConsumptionHour *float64  `json:"defaultPerCapitaConsumptionPerHour"`
	DefaultSafeWindowHours          *float64  `json:"defaultSafeWindowHours"`
	CreatedAt                       time.Time `json:"createdAt"`
	UpdatedAt                       time.Time `json:"updatedAt"`
}

// NormalizeCode returns the canonical form of a resource code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ResourceStatus is the live simulation state for one resource kind.
type ResourceStatus struct {
	ID                          string
	KindID                      string
	CurrentPercentage           float64
	CriticalPercentage          float64
	CurrentQuantity             *float64
	MaxCapacity                 *float64
	Population                  *int
	PerCapitaConsumptionPerHour *float64
	SafeWindowHours             *float64
	IsCritical                  bool
	LastUpdated                 time.Time

	// Joined fields
	Kind *ResourceKind
}

// Code returns the owning kind's code, or "" if the kind is not loaded.
func (s *ResourceStatus) Code() string {
	if s.Kind == nil {
		return ""
	}
	return s.Kind.Code
}

// EventType tags a history entry with what caused it.
type EventType string

const (
	EventCreate           EventType = "CREATE"
	EventAdminUpdate      EventType = "ADMIN_UPDATE"
	EventDecay            EventType = "DECAY"
	EventPopulationUpdate EventType = "POPULATION_UPDATE"
)

func (e EventType) String() string {
	return string(e)
}

// Valid reports whether e is a known event type.
func (e EventType) Valid() bool {
	switch e {
	case EventCreate, EventAdminUpdate, EventDecay, EventPopulationUpdate:
		return true
	}
	return false
}

// ResourceHistory is an append-only record of one state transition.
type ResourceHistory struct {
	ID         string
	StatusID   string
	MeasuredAt time.Time
	Percentage float64
	IsCritical bool
	EventType  EventType
	Note       *string
}

// ResourceCard is the display snapshot of a resource with all derived metrics.
type ResourceCard struct {
	Code                        string    `json:"id"`
	StatusID                    string    `json:"statusId"`
	Name                        string    `json:"name"`
	Unit                        string    `json:"unit"`
	CurrentPercentage           float64   `json:"currentPercentage"`
	CurrentQuantity             float64   `json:"currentQuantity"`
	MaxCapacity                 float64   `json:"maxCapacity"`
	CriticalPercentage          float64   `json:"criticalPercentage"`
	IsCritical                  bool      `json:"isCritical"`
	AutonomyHours               *float64  `json:"autonomyHours"`
	TotalConsumptionPerHour     float64   `json:"totalConsumptionPerHour"`
	PerCapitaConsumptionPerHour float64   `json:"perCapitaConsumptionPerHour"`
	SafeWindowHours             float64   `json:"safeWindowHours"`
	SafetyStockAmount           float64   `json:"safetyStockAmount"`
	Population                  int       `json:"population"`
	LastUpdated                 time.Time `json:"lastUpdated"`
}

// HistoryPoint is one entry of a resource's history as exposed to clients.
type HistoryPoint struct {
	Timestamp  time.Time `json:"timestamp"`
	Percentage float64   `json:"percentage"`
	IsCritical bool      `json:"isCritical"`
	EventType  EventType `json:"eventType"`
	Note       string    `json:"note,omitempty"`
}

// PopulationUpdate is the result of a colony population change.
type PopulationUpdate struct {
	Population int            `json:"population"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	Resources  []ResourceCard `json:"resources"`
}

// ResourceStats summarizes a set of resource cards for the overview panel.
type ResourceStats struct {
	Monitored         int     `json:"monitored"`
	Critical          int     `json:"critical"`
	AveragePercentage float64 `json:"averagePercentage"`
	Population        int     `json:"population"`
}

// SummarizeCards computes overview statistics from cards.
func SummarizeCards(cards []ResourceCard, population int) ResourceStats {
	stats := ResourceStats{Monitored: len(cards), Population: population}
	if len(cards) == 0 {
		return stats
	}

	var sum float64
	for _, c := range cards {
		sum += c.CurrentPercentage
		if c.IsCritical {
			stats.Critical++
		}
	}
	stats.AveragePercentage = sum / float64(len(cards))
	return stats
}
