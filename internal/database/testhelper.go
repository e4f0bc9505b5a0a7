package database

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/habmon/habmon/internal/config"
)

// NewInMemory creates an in-memory database for testing purposes.
// It enables foreign keys but does not run migrations or enable WAL mode.
func NewInMemory() (*DB, error) {
	sqlDB, err := sqlx.Open(DriverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	// Every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return &DB{
		DB:     sqlDB,
		path:   ":memory:",
		config: &config.DatabaseConfig{},
		logger: slog.Default().With("component", "database"),
	}, nil
}
