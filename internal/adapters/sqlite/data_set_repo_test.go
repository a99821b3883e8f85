package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/upshot/internal/adapters/sqlite"
	"github.com/example/upshot/internal/ports/secondary"
)

func TestDataSetRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewDataSetRepository(db)
	ctx := context.Background()

	record := &secondary.DataSetRecord{
		ID:       "5f0c6a8e-0000-4000-8000-000000000001",
		Name:     "June sync",
		Sources:  2,
		Records:  10,
		Matched:  8,
		Added:    6,
		Replaced: 2,
		Unmatched: []secondary.UnmatchedRecord{
			{Name: "Zed Unknown", Closest: "ZEDUNKNOWNE", Score: 0.81, Records: 1},
			{Name: "Alpha Stranger", Records: 1},
		},
	}
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "June sync" || got.Records != 10 || got.Added != 6 || got.Replaced != 2 {
		t.Errorf("GetByID = %+v", got)
	}
	if got.Status != secondary.DataSetPending {
		t.Errorf("Status = %q, want pending", got.Status)
	}
	if len(got.Unmatched) != 2 {
		t.Fatalf("unmatched = %d, want 2", len(got.Unmatched))
	}
	if got.Unmatched[0].Name != "Alpha Stranger" || got.Unmatched[0].Closest != "" {
		t.Errorf("unmatched[0] = %+v", got.Unmatched[0])
	}
	if got.Unmatched[1].Score != 0.81 {
		t.Errorf("unmatched[1].Score = %v, want 0.81", got.Unmatched[1].Score)
	}
}

func TestDataSetRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewDataSetRepository(db)
	ctx := context.Background()

	for _, id := range []string{"DS-1", "DS-2"} {
		if err := repo.Create(ctx, &secondary.DataSetRecord{ID: id, Name: id}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "DS-2" {
		t.Errorf("List = %v, want newest first", got)
	}
}

func TestDataSetRepository_Finish(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewDataSetRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, &secondary.DataSetRecord{ID: "DS-1", Name: "sim", Records: 4, Matched: 3}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Finish(ctx, "DS-1", secondary.DataSetFailed, 1, 0); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "DS-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != secondary.DataSetFailed || got.Added != 1 || got.Matched != 3 {
		t.Errorf("GetByID = %+v, want failed with 1 added", got)
	}

	if err := repo.Finish(ctx, "missing", secondary.DataSetComplete, 0, 0); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDataSetRepository_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewDataSetRepository(db)

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
