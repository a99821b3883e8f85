package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/upshot/internal/adapters/sqlite"
	"github.com/example/upshot/internal/ports/secondary"
)

func TestCompletionRepository_ListByUpgrader(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewCompletionRepository(db)

	seedUpgrader(t, db, "JANEDOE", "Jane Doe")
	seedCompletion(t, db, "JANEDOE", 1, "EV-A", "2025-03-01")
	seedCompletion(t, db, "JANEDOE", 0, "PQS-A", "2025-02-01")

	got, err := repo.ListByUpgrader(context.Background(), "JANEDOE")
	if err != nil {
		t.Fatalf("ListByUpgrader failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d completions, want 2", len(got))
	}
	if got[0].Event != "PQS-A" || got[1].Event != "EV-A" {
		t.Errorf("order = %s, %s; want ordinal order", got[0].Event, got[1].Event)
	}
}

func TestCompletionRepository_Replace(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewCompletionRepository(db)
	ctx := context.Background()

	seedUpgrader(t, db, "JANEDOE", "Jane Doe")
	seedCompletion(t, db, "JANEDOE", 0, "OLD", "2024-12-01")

	replacement := []*secondary.CompletionRecord{
		{Event: "PQS-A", CompletedOn: "2025-02-01", Status: "COMPLETE", DataSetID: "DS-1"},
		{Event: "SWIM", Status: "WAIVED"},
		{Event: "EV-A", CompletedOn: "2025-03-01", Instructor: "Smith", Grade: "A", DataSetID: "DS-1"},
	}
	if err := repo.Replace(ctx, "JANEDOE", replacement); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	got, err := repo.ListByUpgrader(ctx, "JANEDOE")
	if err != nil {
		t.Fatalf("ListByUpgrader failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d completions, want 3", len(got))
	}
	if got[0].Event != "PQS-A" || got[1].Event != "SWIM" || got[2].Event != "EV-A" {
		t.Errorf("unexpected order: %s %s %s", got[0].Event, got[1].Event, got[2].Event)
	}
	if got[1].CompletedOn != "" || got[1].Status != "WAIVED" {
		t.Errorf("undated waiver = %+v", got[1])
	}
	if got[2].Instructor != "Smith" || got[2].Grade != "A" || got[2].UpgraderID != "JANEDOE" {
		t.Errorf("EV-A = %+v", got[2])
	}

	count, err := repo.CountByDataSet(ctx, "DS-1")
	if err != nil {
		t.Fatalf("CountByDataSet failed: %v", err)
	}
	if count != 2 {
		t.Errorf("CountByDataSet = %d, want 2", count)
	}
}

func TestCompletionRepository_ReplaceClearsDerived(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewCompletionRepository(db)
	ctx := context.Background()

	seedUpgrader(t, db, "JANEDOE", "Jane Doe")
	seedUpgrader(t, db, "JOHNDOE", "John Doe")
	seedDerived(t, db, "JANEDOE")
	seedDerived(t, db, "JOHNDOE")

	err := repo.Replace(ctx, "JANEDOE", []*secondary.CompletionRecord{
		{Event: "PQS-A", CompletedOn: "2025-02-01", Status: "COMPLETE"},
	})
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	if hasDerived(t, db, "JANEDOE") {
		t.Error("expected JANEDOE snapshot to be cleared")
	}
	if !hasDerived(t, db, "JOHNDOE") {
		t.Error("expected JOHNDOE snapshot to be untouched")
	}
}

func TestCompletionRepository_Replace_UnknownUpgrader(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewCompletionRepository(db)

	err := repo.Replace(context.Background(), "NOBODY", []*secondary.CompletionRecord{{Event: "PQS-A"}})
	if !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCompletionRepository_Replace_Empty(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewCompletionRepository(db)
	ctx := context.Background()

	seedUpgrader(t, db, "JANEDOE", "Jane Doe")
	seedCompletion(t, db, "JANEDOE", 0, "PQS-A", "2025-02-01")

	if err := repo.Replace(ctx, "JANEDOE", nil); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	got, _ := repo.ListByUpgrader(ctx, "JANEDOE")
	if len(got) != 0 {
		t.Errorf("expected no completions, got %d", len(got))
	}
}
