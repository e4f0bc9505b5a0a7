// Package database provides SQLite database management for habmon: WAL mode,
// embedded migrations and scheduled backups.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/habmon/habmon/internal/config"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// ErrClosed is returned when an operation is attempted on a closed database.
var ErrClosed = errors.New("database is closed")

// DB wraps a sqlx.DB with lifecycle and maintenance helpers.
type DB struct {
	*sqlx.DB
	path      string
	config    *config.DatabaseConfig
	backupDir string
	logger    *slog.Logger

	mu     sync.RWMutex
	closed bool

	backupTicker *time.Ticker
	backupDone   chan struct{}
}

// Open creates a new database connection with WAL mode and foreign keys enabled.
func Open(dbPath string, cfg *config.DatabaseConfig, backupDir string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	connStr := fmt.Sprintf("file:%s?_txlock=immediate", dbPath)

	sqlDB, err := sqlx.Open(DriverName, connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sqlDB.SetMaxOpenConns(1) // SQLite only supports one writer
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	db := &DB{
		DB:        sqlDB,
		path:      dbPath,
		config:    cfg,
		backupDir: backupDir,
		logger:    logger.With("component", "database"),
	}

	if err := db.initPragmas(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("initializing pragmas: %w", err)
	}

	if err := db.CheckIntegrity(context.Background()); err != nil {
		db.logger.Warn("database integrity check failed", "error", err)
	}

	if cfg.BackupIntervalHours > 0 && backupDir != "" {
		db.startBackupScheduler()
	}

	return db, nil
}

// initPragmas sets the SQLite pragmas habmon relies on.
func (db *DB) initPragmas() error {
	pragmas := []struct {
		name   string
		pragma string
	}{
		{"journal_mode", "PRAGMA journal_mode=WAL"},
		{"synchronous", "PRAGMA synchronous=NORMAL"},
		{"busy_timeout", "PRAGMA busy_timeout=5000"},
		// resource_history cascades on resource_status deletion
		{"foreign_keys", "PRAGMA foreign_keys=ON"},
		{"cache_size", "PRAGMA cache_size=-16000"},
	}

	for _, p := range pragmas {
		if _, err := db.Exec(p.pragma); err != nil {
			return fmt.Errorf("setting %s: %w", p.name, err)
		}
	}

	return nil
}

// CheckIntegrity performs a database integrity check.
func (db *DB) CheckIntegrity(ctx context.Context) error {
	var results []string
	if err := db.SelectContext(ctx, &results, "PRAGMA integrity_check"); err != nil {
		return fmt.Errorf("running integrity check: %w", err)
	}

	if len(results) == 1 && results[0] == "ok" {
		return nil
	}

	return fmt.Errorf("integrity check failed: %v", results)
}

// Checkpoint forces a WAL checkpoint to sync all changes to the main database file.
func (db *DB) Checkpoint(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("WAL checkpoint: %w", err)
	}
	return nil
}

// Backup creates a backup of the database in the backup directory.
func (db *DB) Backup(ctx context.Context) (string, error) {
	if db.backupDir == "" {
		return "", errors.New("backup directory not configured")
	}

	timestamp := time.Now().Format("20060102-150405")
	backupPath := filepath.Join(db.backupDir, fmt.Sprintf("habmon-%s.db", timestamp))

	if err := db.Checkpoint(ctx); err != nil {
		db.logger.Warn("checkpoint before backup failed", "error", err)
	}

	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", backupPath); err != nil {
		return "", fmt.Errorf("creating backup: %w", err)
	}

	db.logger.Info("database backup created", "path", backupPath)

	if db.config.BackupRetentionDays > 0 {
		db.cleanOldBackups()
	}

	return backupPath, nil
}

// cleanOldBackups removes backups older than the retention period.
func (db *DB) cleanOldBackups() {
	cutoff := time.Now().AddDate(0, 0, -db.config.BackupRetentionDays)

	entries, err := os.ReadDir(db.backupDir)
	if err != nil {
		db.logger.Warn("reading backup directory", "error", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".db" {
			continue
		}

		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(db.backupDir, entry.Name())
		if err := os.Remove(path); err != nil {
			db.logger.Warn("removing old backup", "path", path, "error", err)
		} else {
			db.logger.Debug("removed old backup", "path", path)
		}
	}
}

// startBackupScheduler starts the background backup scheduler.
func (db *DB) startBackupScheduler() {
	interval := time.Duration(db.config.BackupIntervalHours) * time.Hour
	db.backupTicker = time.NewTicker(interval)
	db.backupDone = make(chan struct{})

	go func() {
		for {
			select {
			case <-db.backupTicker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				if _, err := db.Backup(ctx); err != nil {
					db.logger.Error("scheduled backup failed", "error", err)
				}
				cancel()
			case <-db.backupDone:
				return
			}
		}
	}()
}

// Close stops the backup scheduler, checkpoints the WAL and closes the connection.
func (db *DB) Close() error {
	db.mu.Lock()
	if db.closed {
		db.mu.Unlock()
		return nil
	}
	db.closed = true
	db.mu.Unlock()

	if db.backupTicker != nil {
		db.backupTicker.Stop()
		close(db.backupDone)
	}

	if db.path != ":memory:" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Checkpoint(ctx); err != nil {
			db.logger.Warn("final checkpoint failed", "error", err)
		}
	}

	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}

	db.logger.Debug("database closed")
	return nil
}

// IsClosed returns true if the database has been closed.
func (db *DB) IsClosed() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.closed
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// BeginTxx starts a transaction. If the database is closed, it returns ErrClosed.
func (db *DB) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	if db.IsClosed() {
		return nil, ErrClosed
	}
	return db.DB.BeginTxx(ctx, opts)
}

// WithTransaction executes fn within a transaction.
// The transaction is committed if fn returns nil, otherwise rolled back.
func (db *DB) WithTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back after error %v: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// HealthCheck verifies the connection answers a trivial query.
func (db *DB) HealthCheck(ctx context.Context) error {
	if db.IsClosed() {
		return ErrClosed
	}

	var result int
	if err := db.GetContext(ctx, &result, "SELECT 1"); err != nil {
		return fmt.Errorf("health check query: %w", err)
	}

	if result != 1 {
		return errors.New("unexpected health check result")
	}

	return nil
}

// Stats describes the on-disk state of the database.
type Stats struct {
	Path          string
	SizeBytes     int64
	WALSizeBytes  int64
	PageCount     int64
	FreePageCount int64
	PageSize      int64
	JournalMode   string
}

// GetStats retrieves current database statistics.
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Path: db.path}

	if info, err := os.Stat(db.path); err == nil {
		stats.SizeBytes = info.Size()
	}
	if info, err := os.Stat(db.path + "-wal"); err == nil {
		stats.WALSizeBytes = info.Size()
	}

	queries := []struct {
		pragma string
		dest   *int64
	}{
		{"PRAGMA page_count", &stats.PageCount},
		{"PRAGMA freelist_count", &stats.FreePageCount},
		{"PRAGMA page_size", &stats.PageSize},
	}

	for _, q := range queries {
		if err := db.GetContext(ctx, q.dest, q.pragma); err != nil {
			db.logger.Warn("getting stat", "pragma", q.pragma, "error", err)
		}
	}

	if err := db.GetContext(ctx, &stats.JournalMode, "PRAGMA journal_mode"); err != nil {
		db.logger.Warn("getting journal mode", "error", err)
	}

	return stats, nil
}
