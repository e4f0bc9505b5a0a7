package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migration represents a database migration.
type Migration struct {
	Version     int
	Description string
	UpSQL       string
	DownSQL     string
	Applied     bool
	AppliedAt   time.Time
}

// MigrationResult contains the result of running migrations.
type MigrationResult struct {
	Applied       []Migration
	FromVersion   int
	TargetVersion int
}

// Migrator handles database schema migrations.
type Migrator struct {
	db         *DB
	migrations []Migration
}

var migrationName = regexp.MustCompile(`^(\d{3})_(.+)\.sql$`)

// NewMigrator creates a Migrator over the embedded migration files.
func NewMigrator(db *DB) (*Migrator, error) {
	return newMigrator(db, migrationsFS, "migrations")
}

func newMigrator(db *DB, fsys fs.FS, dir string) (*Migrator, error) {
	m := &Migrator{db: db}

	if err := m.loadMigrations(fsys, dir); err != nil {
		return nil, fmt.Errorf("loading migrations: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)`); err != nil {
		return nil, fmt.Errorf("creating migrations table: %w", err)
	}

	return m, nil
}

// loadMigrations reads NNN_description.sql files from fsys.
func (m *Migrator) loadMigrations(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		matches := migrationName.FindStringSubmatch(entry.Name())
		if matches == nil {
			m.db.logger.Warn("skipping invalid migration filename", "name", entry.Name())
			continue
		}

		version, _ := strconv.Atoi(matches[1])

		content, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		upSQL, downSQL := parseMigration(string(content))
		m.migrations = append(m.migrations, Migration{
			Version:     version,
			Description: strings.ReplaceAll(matches[2], "_", " "),
			UpSQL:       upSQL,
			DownSQL:     downSQL,
		})
	}

	sort.Slice(m.migrations, func(i, j int) bool {
		return m.migrations[i].Version < m.migrations[j].Version
	})

	return nil
}

// parseMigration extracts UP and DOWN SQL from migration content.
// Format:
//
//	-- +migrate Up
//	SQL statements...
//	-- +migrate Down
//	SQL statements...
func parseMigration(content string) (upSQL, downSQL string) {
	const upMarker, downMarker = "-- +migrate Up", "-- +migrate Down"

	upIdx := strings.Index(content, upMarker)
	downIdx := strings.Index(content, downMarker)

	switch {
	case upIdx == -1:
		return strings.TrimSpace(content), ""
	case downIdx == -1:
		return strings.TrimSpace(content[upIdx+len(upMarker):]), ""
	case upIdx < downIdx:
		return strings.TrimSpace(content[upIdx+len(upMarker) : downIdx]),
			strings.TrimSpace(content[downIdx+len(downMarker):])
	default:
		return strings.TrimSpace(content[upIdx+len(upMarker):]),
			strings.TrimSpace(content[downIdx+len(downMarker) : upIdx])
	}
}

// CurrentVersion returns the current schema version.
func (m *Migrator) CurrentVersion(ctx context.Context) (int, error) {
	var version int
	err := m.db.GetContext(ctx, &version, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err != nil {
		return 0, fmt.Errorf("querying current version: %w", err)
	}
	return version, nil
}

// MigrateUp runs all pending migrations.
func (m *Migrator) MigrateUp(ctx context.Context) (*MigrationResult, error) {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}

	result := &MigrationResult{FromVersion: current, TargetVersion: current}

	for _, mig := range m.migrations {
		if mig.Version <= current {
			continue
		}

		m.db.logger.Info("applying migration", "version", mig.Version, "description", mig.Description)

		if err := m.run(ctx, mig.UpSQL, func(tx *sqlx.Tx) error {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)",
				mig.Version, mig.Description, time.Now().UTC().Format(time.RFC3339),
			)
			return err
		}); err != nil {
			return result, fmt.Errorf("migration %d failed: %w", mig.Version, err)
		}

		mig.Applied = true
		mig.AppliedAt = time.Now()
		result.Applied = append(result.Applied, mig)
		result.TargetVersion = mig.Version
	}

	if len(result.Applied) == 0 {
		m.db.logger.Debug("database is up to date", "version", current)
	} else {
		m.db.logger.Info("migrations complete", "from", current, "to", result.TargetVersion)
	}

	return result, nil
}

// MigrateDown rolls back the most recently applied migration.
func (m *Migrator) MigrateDown(ctx context.Context) (*MigrationResult, error) {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}

	result := &MigrationResult{FromVersion: current, TargetVersion: current}
	if current == 0 {
		return result, errors.New("no migrations to roll back")
	}

	idx := sort.Search(len(m.migrations), func(i int) bool { return m.migrations[i].Version >= current })
	if idx == len(m.migrations) || m.migrations[idx].Version != current {
		return result, fmt.Errorf("migration %d not found", current)
	}
	mig := m.migrations[idx]

	if mig.DownSQL == "" {
		return result, fmt.Errorf("migration %d has no rollback SQL", current)
	}

	m.db.logger.Info("rolling back migration", "version", mig.Version, "description", mig.Description)

	if err := m.run(ctx, mig.DownSQL, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = ?", mig.Version)
		return err
	}); err != nil {
		return result, fmt.Errorf("rollback %d failed: %w", mig.Version, err)
	}

	result.Applied = append(result.Applied, mig)
	if idx > 0 {
		result.TargetVersion = m.migrations[idx-1].Version
	} else {
		result.TargetVersion = 0
	}

	return result, nil
}

// run executes script and then record inside one transaction.
func (m *Migrator) run(ctx context.Context, script string, record func(tx *sqlx.Tx) error) error {
	return m.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		for _, stmt := range splitStatements(script) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("executing statement: %w\nSQL: %s", err, stmt)
			}
		}
		if err := record(tx); err != nil {
			return fmt.Errorf("recording migration: %w", err)
		}
		return nil
	})
}

// Status returns every known migration with its applied state.
func (m *Migrator) Status(ctx context.Context) ([]Migration, error) {
	var rows []struct {
		Version   int    `db:"version"`
		AppliedAt string `db:"applied_at"`
	}
	if err := m.db.SelectContext(ctx, &rows,
		"SELECT version, applied_at FROM schema_migrations ORDER BY version",
	); err != nil {
		return nil, fmt.Errorf("querying applied migrations: %w", err)
	}

	applied := make(map[int]time.Time, len(rows))
	for _, r := range rows {
		t, _ := time.Parse(time.RFC3339, r.AppliedAt)
		applied[r.Version] = t
	}

	result := make([]Migration, len(m.migrations))
	for i, mig := range m.migrations {
		result[i] = mig
		if t, ok := applied[mig.Version]; ok {
			result[i].Applied = true
			result[i].AppliedAt = t
		}
	}

	return result, nil
}

// splitStatements splits SQL content into individual statements, ignoring
// semicolons inside quoted strings and "--" line comments.
func splitStatements(script string) []string {
	var statements []string
	var current strings.Builder
	var quote rune
	inComment := false

	flush := func() {
		if stmt := strings.TrimSpace(current.String()); stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	runes := []rune(script)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case inComment:
			if ch == '\n' {
				inComment = false
				current.WriteRune(ch)
			}
		case quote != 0:
			current.WriteRune(ch)
			if ch == quote {
				quote = 0
			}
		case ch == '-' && i+1 < len(runes) && runes[i+1] == '-':
			inComment = true
		case ch == '\'' || ch == '"':
			quote = ch
			current.WriteRune(ch)
		case ch == ';':
			flush()
		default:
			current.WriteRune(ch)
		}
	}
	flush()

	return statements
}
