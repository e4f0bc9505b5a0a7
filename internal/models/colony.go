package models

import "time"

// ColonyState is one entry in the append-only population log.
// The most recently appended row is the current population.
type ColonyState struct {
	ID                string    `json:"id"`
	CurrentPopulation int       `json:"population"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
