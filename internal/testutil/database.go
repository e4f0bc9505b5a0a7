// Package testutil provides utilities for testing.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/habmon/habmon/internal/database"
)

// TestDB wraps a migrated in-memory database.
type TestDB struct {
	*database.DB
}

// NewTestDB creates a new in-memory SQLite database with every embedded
// migration applied.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	db, err := database.NewInMemory()
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	tdb := &TestDB{DB: db}
	tdb.RunMigrations(t)
	return tdb
}

// NewTestDBWithoutSchema creates an in-memory database with no tables.
func NewTestDBWithoutSchema(t *testing.T) *TestDB {
	t.Helper()

	db, err := database.NewInMemory()
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	return &TestDB{DB: db}
}

// RunMigrations applies all pending embedded migrations.
func (tdb *TestDB) RunMigrations(t *testing.T) {
	t.Helper()

	migrator, err := database.NewMigrator(tdb.DB)
	if err != nil {
		t.Fatalf("failed to create migrator: %v", err)
	}
	if _, err := migrator.MigrateUp(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
}

// Close closes the test database and cleans up resources.
func (tdb *TestDB) Close(t *testing.T) {
	t.Helper()

	if err := tdb.DB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}

// Truncate removes all data from specified tables while maintaining schema.
func (tdb *TestDB) Truncate(t *testing.T, tables ...string) {
	t.Helper()

	ctx := context.Background()
	if _, err := tdb.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		t.Fatalf("failed to disable foreign keys: %v", err)
	}
	for _, table := range tables {
		if _, err := tdb.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Fatalf("failed to truncate table %s: %v", table, err)
		}
	}
	if _, err := tdb.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
}

// RowCount returns the number of rows in table.
func (tdb *TestDB) RowCount(t *testing.T, table string) int {
	t.Helper()

	var count int
	if err := tdb.Get(&count, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)); err != nil {
		t.Fatalf("failed to count rows in %s: %v", table, err)
	}
	return count
}

// AssertRowCount asserts the row count for a table.
func (tdb *TestDB) AssertRowCount(t *testing.T, table string, expected int) {
	t.Helper()

	if count := tdb.RowCount(t, table); count != expected {
		t.Errorf("expected %d rows in %s, got %d", expected, table, count)
	}
}

// ExecSQL executes arbitrary SQL (useful for test setup).
func (tdb *TestDB) ExecSQL(t *testing.T, sql string, args ...any) {
	t.Helper()

	if _, err := tdb.Exec(sql, args...); err != nil {
		t.Fatalf("failed to execute SQL: %v\nSQL: %s", err, sql)
	}
}
