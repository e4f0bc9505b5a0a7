package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"go.uber.org/goleak"

	"github.com/habmon/habmon/internal/config"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewInMemory()
	if err != nil {
		t.Fatalf("NewInMemory() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m, err := NewMigrator(db)
	if err != nil {
		t.Fatalf("NewMigrator() error = %v", err)
	}
	if _, err := m.MigrateUp(context.Background()); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	return db
}

func TestOpenFileDatabase(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	cfg := &config.DatabaseConfig{Path: "habmon.db", BackupIntervalHours: 24, BackupRetentionDays: 7}
	backups := filepath.Join(dir, "backups")
	if err := os.MkdirAll(backups, 0750); err != nil {
		t.Fatal(err)
	}

	db, err := Open(filepath.Join(dir, "nested", "habmon.db"), cfg, backups, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	ctx := context.Background()
	var mode string
	if err := db.GetContext(ctx, &mode, "PRAGMA journal_mode"); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	if err := db.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
	if err := db.CheckIntegrity(ctx); err != nil {
		t.Errorf("CheckIntegrity() error = %v", err)
	}

	path, err := db.Backup(ctx)
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("backup file missing: %v", err)
	}

	stats, err := db.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.JournalMode != "wal" || stats.PageSize <= 0 {
		t.Errorf("GetStats() = %+v", stats)
	}

	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if !db.IsClosed() {
		t.Error("IsClosed() = false after Close")
	}
	if err := db.HealthCheck(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("HealthCheck() after Close = %v, want ErrClosed", err)
	}
	if _, err := db.BeginTxx(ctx, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("BeginTxx() after Close = %v, want ErrClosed", err)
	}
}

func TestBackupWithoutDirectory(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.Backup(context.Background()); err == nil {
		t.Error("Backup() without a directory should fail")
	}
}

func TestWithTransaction(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	insert := func(tx *sqlx.Tx, id string) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO colony_state (id, current_population, updated_at) VALUES (?, ?, ?)",
			id, 10, "2026-03-01T08:00:00.000000000Z")
		return err
	}

	if err := db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		return insert(tx, "committed")
	}); err != nil {
		t.Fatalf("WithTransaction() error = %v", err)
	}

	boom := errors.New("boom")
	err := db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := insert(tx, "rolled-back"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTransaction() error = %v, want boom", err)
	}

	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM colony_state"); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("colony_state rows = %d, want 1", count)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic was not propagated")
			}
		}()
		_ = db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
			_ = insert(tx, "panicked")
			panic("fn exploded")
		})
	}()

	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM colony_state"); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("colony_state rows after panic = %d, want 1", count)
	}
}

func TestPopulationCheckConstraint(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Exec(
		"INSERT INTO colony_state (id, current_population, updated_at) VALUES (?, ?, ?)",
		"zero", 0, "2026-03-01T08:00:00.000000000Z")
	if err == nil {
		t.Error("population below 1 should be rejected")
	}
}
