package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/habmon/habmon/internal/models"
	"github.com/habmon/habmon/internal/testutil"
)

func setupTestDB(t *testing.T) *testutil.TestDB {
	t.Helper()
	return testutil.NewTestDB(t)
}

func TestResourceRepository_Kinds(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close(t)

	repo := NewResourceRepository(db.DB.DB)
	ctx := context.Background()

	t.Run("Create and get by code", func(t *testing.T) {
		kind := testutil.FixtureKind()
		if err := repo.CreateKind(ctx, nil, kind); err != nil {
			t.Fatalf("failed to create kind: %v", err)
		}

		found, err := repo.GetKindByCode(ctx, nil, "WATER")
		if err != nil {
			t.Fatalf("failed to get kind: %v", err)
		}
		if found.ID != kind.ID {
			t.Errorf("expected ID %s, got %s", kind.ID, found.ID)
		}
		if found.Unit != "L" {
			t.Errorf("expected unit L, got %s", found.Unit)
		}
		if found.DefaultSafeWindowHours == nil || *found.DefaultSafeWindowHours != 72 {
			t.Errorf("expected default safe window 72, got %v", found.DefaultSafeWindowHours)
		}
	})

	t.Run("Duplicate code returns error", func(t *testing.T) {
		if err := repo.CreateKind(ctx, nil, testutil.FixtureKind()); err == nil {
			t.Error("expected error for duplicate code, got nil")
		}
	})

	t.Run("Unknown code returns ErrNotFound", func(t *testing.T) {
		_, err := repo.GetKindByCode(ctx, nil, "PLUTONIUM")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Update keeps nil defaults nil", func(t *testing.T) {
		kind := testutil.FixtureKind(func(k *models.ResourceKind) {
			k.Code = "SPARES"
			k.DefaultPerCapitaConsumptionHour = nil
			k.DefaultSafeWindowHours = nil
		})
		if err := repo.CreateKind(ctx, nil, kind); err != nil {
			t.Fatalf("failed to create kind: %v", err)
		}

		kind.DisplayName = "Spare Parts"
		if err := repo.UpdateKind(ctx, nil, kind); err != nil {
			t.Fatalf("failed to update kind: %v", err)
		}

		found, err := repo.GetKindByCode(ctx, nil, "SPARES")
		if err != nil {
			t.Fatalf("failed to get kind: %v", err)
		}
		if found.DisplayName != "Spare Parts" {
			t.Errorf("expected display name Spare Parts, got %s", found.DisplayName)
		}
		if found.DefaultPerCapitaConsumptionHour != nil {
			t.Errorf("expected nil per-capita default, got %v", *found.DefaultPerCapitaConsumptionHour)
		}
	})

	t.Run("List is ordered by code", func(t *testing.T) {
		kinds, err := repo.ListKinds(ctx, nil)
		if err != nil {
			t.Fatalf("failed to list kinds: %v", err)
		}
		if len(kinds) != 2 {
			t.Fatalf("expected 2 kinds, got %d", len(kinds))
		}
		if kinds[0].Code != "SPARES" || kinds[1].Code != "WATER" {
			t.Errorf("unexpected order: %s, %s", kinds[0].Code, kinds[1].Code)
		}
	})
}

func TestResourceRepository_Statuses(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close(t)

	repo := NewResourceRepository(db.DB.DB)
	ctx := context.Background()

	kind := testutil.FixtureKind()
	if err := repo.CreateKind(ctx, nil, kind); err != nil {
		t.Fatalf("failed to create kind: %v", err)
	}

	status := testutil.FixtureStatus(kind)

	t.Run("Create with transaction", func(t *testing.T) {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			t.Fatalf("failed to begin transaction: %v", err)
		}
		defer tx.Rollback()

		if err := repo.CreateStatus(ctx, tx, status); err != nil {
			t.Fatalf("failed to create status: %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("failed to commit transaction: %v", err)
		}

		found, err := repo.GetStatusByCode(ctx, nil, "WATER")
		if err != nil {
			t.Fatalf("failed to get status: %v", err)
		}
		if found.ID != status.ID {
			t.Errorf("expected ID %s, got %s", status.ID, found.ID)
		}
		if found.Code() != "WATER" {
			t.Errorf("expected joined kind WATER, got %q", found.Code())
		}
		if found.Population == nil || *found.Population != 10 {
			t.Errorf("expected population 10, got %v", found.Population)
		}
	})

	t.Run("Second status for same kind returns error", func(t *testing.T) {
		if err := repo.CreateStatus(ctx, nil, testutil.FixtureStatus(kind)); err == nil {
			t.Error("expected error for second status on one kind, got nil")
		}
	})

	t.Run("Update persists nullable fields", func(t *testing.T) {
		status.CurrentQuantity = nil
		status.IsCritical = true
		status.CurrentPercentage = 0
		if err := repo.UpdateStatus(ctx, nil, status); err != nil {
			t.Fatalf("failed to update status: %v", err)
		}

		found, err := repo.GetStatusByID(ctx, nil, status.ID)
		if err != nil {
			t.Fatalf("failed to get status: %v", err)
		}
		if found.CurrentQuantity != nil {
			t.Errorf("expected nil quantity, got %v", *found.CurrentQuantity)
		}
		if !found.IsCritical {
			t.Error("expected critical status")
		}
	})

	t.Run("Update missing status returns ErrNotFound", func(t *testing.T) {
		missing := testutil.FixtureStatus(kind)
		if err := repo.UpdateStatus(ctx, nil, missing); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete cascades history and keeps kind", func(t *testing.T) {
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 3; i++ {
			entry := testutil.FixtureHistory(status.ID, base.Add(time.Duration(i)*time.Minute))
			if err := repo.InsertHistory(ctx, nil, entry); err != nil {
				t.Fatalf("failed to insert history: %v", err)
			}
		}
		db.AssertRowCount(t, "resource_history", 3)

		if err := repo.DeleteStatus(ctx, nil, status.ID); err != nil {
			t.Fatalf("failed to delete status: %v", err)
		}

		db.AssertRowCount(t, "resource_status", 0)
		db.AssertRowCount(t, "resource_history", 0)
		db.AssertRowCount(t, "resource_kinds", 1)

		if err := repo.DeleteStatus(ctx, nil, status.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestResourceRepository_ListHistory(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close(t)

	repo := NewResourceRepository(db.DB.DB)
	ctx := context.Background()

	kind := testutil.FixtureKind()
	status := testutil.FixtureStatus(kind)
	if err := repo.CreateKind(ctx, nil, kind); err != nil {
		t.Fatalf("failed to create kind: %v", err)
	}
	if err := repo.CreateStatus(ctx, nil, status); err != nil {
		t.Fatalf("failed to create status: %v", err)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// Inserted out of order; two share a timestamp.
	offsets := []int{2, 0, 1, 1}
	for i, off := range offsets {
		pct := float64(i)
		entry := testutil.FixtureHistory(status.ID, base.Add(time.Duration(off)*time.Hour),
			func(h *models.ResourceHistory) { h.Percentage = pct })
		if err := repo.InsertHistory(ctx, nil, entry); err != nil {
			t.Fatalf("failed to insert history: %v", err)
		}
	}

	from := base.Add(time.Hour)
	to := base.Add(2 * time.Hour)

	tests := []struct {
		name     string
		from, to *time.Time
		want     []float64
	}{
		{"no bounds", nil, nil, []float64{1, 2, 3, 0}},
		{"from is inclusive", &from, nil, []float64{2, 3, 0}},
		{"to is inclusive", nil, &from, []float64{1, 2, 3}},
		{"both bounds", &to, &to, []float64{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := repo.ListHistory(ctx, nil, status.ID, tt.from, tt.to)
			if err != nil {
				t.Fatalf("failed to list history: %v", err)
			}
			if len(entries) != len(tt.want) {
				t.Fatalf("expected %d entries, got %d", len(tt.want), len(entries))
			}
			for i, e := range entries {
				if e.Percentage != tt.want[i] {
					t.Errorf("entry %d: expected percentage %v, got %v", i, tt.want[i], e.Percentage)
				}
			}
		})
	}

	t.Run("Invalid event type is rejected", func(t *testing.T) {
		entry := testutil.FixtureHistory(status.ID, base, func(h *models.ResourceHistory) {
			h.EventType = "REFILL"
		})
		if err := repo.InsertHistory(ctx, nil, entry); err == nil {
			t.Error("expected error for invalid event type, got nil")
		}
	})

	t.Run("Note round-trips", func(t *testing.T) {
		note := "tank inspection"
		later := base.Add(10 * time.Hour)
		entry := testutil.FixtureHistory(status.ID, later, func(h *models.ResourceHistory) {
			h.Note = &note
		})
		if err := repo.InsertHistory(ctx, nil, entry); err != nil {
			t.Fatalf("failed to insert history: %v", err)
		}

		entries, err := repo.ListHistory(ctx, nil, status.ID, &later, nil)
		if err != nil {
			t.Fatalf("failed to list history: %v", err)
		}
		if len(entries) != 1 || entries[0].Note == nil || *entries[0].Note != note {
			t.Fatalf("expected note %q, got %+v", note, entries)
		}
		if !entries[0].MeasuredAt.Equal(later) {
			t.Errorf("expected measured at %v, got %v", later, entries[0].MeasuredAt)
		}
	})
}
