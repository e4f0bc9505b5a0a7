package database

import (
	"context"
	"testing"
	"testing/fstest"
)

func TestMigrator_Embedded(t *testing.T) {
	db, err := NewInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	m, err := NewMigrator(db)
	if err != nil {
		t.Fatalf("NewMigrator() error = %v", err)
	}

	up, err := m.MigrateUp(ctx)
	if err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	if len(up.Applied) != 3 || up.FromVersion != 0 || up.TargetVersion != 3 {
		t.Fatalf("MigrateUp() = %d applied, %d -> %d", len(up.Applied), up.FromVersion, up.TargetVersion)
	}

	for _, table := range []string{"resource_kinds", "resource_status", "resource_history", "colony_state"} {
		if !tableExists(t, db, table) {
			t.Errorf("table %s missing after MigrateUp", table)
		}
	}

	again, err := m.MigrateUp(ctx)
	if err != nil {
		t.Fatalf("second MigrateUp() error = %v", err)
	}
	if len(again.Applied) != 0 {
		t.Errorf("second MigrateUp() applied %d migrations", len(again.Applied))
	}

	down, err := m.MigrateDown(ctx)
	if err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}
	if down.TargetVersion != 2 {
		t.Errorf("MigrateDown() target = %d, want 2", down.TargetVersion)
	}
	if tableExists(t, db, "colony_state") {
		t.Error("colony_state still present after rollback")
	}

	status, err := m.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if len(status) != 3 {
		t.Fatalf("Status() returned %d migrations, want 3", len(status))
	}
	for i, want := range []bool{true, true, false} {
		if status[i].Applied != want {
			t.Errorf("migration %d applied = %v, want %v", status[i].Version, status[i].Applied, want)
		}
	}
	if status[0].Description != "resource kinds" {
		t.Errorf("Description = %q, want %q", status[0].Description, "resource kinds")
	}
	if status[0].AppliedAt.IsZero() {
		t.Error("AppliedAt not recorded")
	}

	version, err := m.CurrentVersion(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if version != 2 {
		t.Errorf("CurrentVersion() = %d, want 2", version)
	}
}

func TestMigrator_Custom(t *testing.T) {
	db, err := NewInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	fsys := fstest.MapFS{
		"m/001_first.sql": {Data: []byte(`-- +migrate Up
CREATE TABLE a (v TEXT);
INSERT INTO a (v) VALUES ('semi;colon');
-- +migrate Down
DROP TABLE a;
`)},
		"m/002_no_down.sql": {Data: []byte("CREATE TABLE b (v TEXT);")},
		"m/README.md":       {Data: []byte("not a migration")},
	}

	ctx := context.Background()
	m, err := newMigrator(db, fsys, "m")
	if err != nil {
		t.Fatalf("newMigrator() error = %v", err)
	}

	if _, err := m.MigrateUp(ctx); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	var v string
	if err := db.GetContext(ctx, &v, "SELECT v FROM a"); err != nil {
		t.Fatal(err)
	}
	if v != "semi;colon" {
		t.Errorf("value = %q, quoted semicolon was split", v)
	}

	if _, err := m.MigrateDown(ctx); err == nil {
		t.Error("MigrateDown() of a migration without rollback SQL should fail")
	}
}

func TestMigrator_DownAtZero(t *testing.T) {
	db, err := NewInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	m, err := NewMigrator(db)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.MigrateDown(context.Background()); err == nil {
		t.Error("MigrateDown() on an empty database should fail")
	}
}

func TestParseMigration(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantUp   string
		wantDown string
	}{
		{"no markers", "CREATE TABLE x (id INT);", "CREATE TABLE x (id INT);", ""},
		{"up only", "-- +migrate Up\nCREATE TABLE x (id INT);", "CREATE TABLE x (id INT);", ""},
		{"up then down", "-- +migrate Up\nUP;\n-- +migrate Down\nDOWN;", "UP;", "DOWN;"},
		{"down then up", "-- +migrate Down\nDOWN;\n-- +migrate Up\nUP;", "UP;", "DOWN;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up, down := parseMigration(tt.content)
			if up != tt.wantUp || down != tt.wantDown {
				t.Errorf("parseMigration() = (%q, %q), want (%q, %q)", up, down, tt.wantUp, tt.wantDown)
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	script := `
-- leading comment; with a semicolon
CREATE TABLE t (v TEXT);
INSERT INTO t VALUES ('a;b'); INSERT INTO t VALUES ("c;d");
;
`
	got := splitStatements(script)
	want := []string{
		"CREATE TABLE t (v TEXT)",
		"INSERT INTO t VALUES ('a;b')",
		`INSERT INTO t VALUES ("c;d")`,
	}
	if len(got) != len(want) {
		t.Fatalf("splitStatements() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("statement %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()

	var n int
	if err := db.Get(&n, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name); err != nil {
		t.Fatal(err)
	}
	return n == 1
}
