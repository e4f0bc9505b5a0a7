// Package util provides identifier, clock and formatting helpers for habmon.
package util

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID generates a new UUIDv7 identifier.
// UUIDv7 provides time-ordered identifiers for better database index locality.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does
		return uuid.New().String()
	}
	return id.String()
}

// ParseID validates and normalizes a UUID string.
func ParseID(s string) (string, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid ID format: %w", err)
	}
	return id.String(), nil
}
