package app

import (
	"context"
	"errors"
	"testing"

	"github.com/example/upshot/internal/core/names"
	"github.com/example/upshot/internal/ports/primary"
	"github.com/example/upshot/internal/ports/secondary"
)

func newTestRosterService() (*RosterServiceImpl, *mockUpgraderRepository, *mockCompletionRepository, *mockDocumentLoader) {
	upgraders := newMockUpgraderRepository()
	completions := newMockCompletionRepository()
	loader := newMockDocumentLoader()
	service := NewRosterService(upgraders, completions, loader, names.DefaultOptions(), testLogger())
	return service, upgraders, completions, loader
}

func TestImportRoster_AddsAndUpdates(t *testing.T) {
	service, upgraders, _, loader := newTestRosterService()
	ctx := context.Background()

	loader.rosters["roster.yaml"] = []*secondary.UpgraderRecord{
		{Name: "Pete Maverick", Position: "PILOT", SyllabusYear: "2025", StartDate: "2025-01-15"},
		{Name: "Nick Goose", Position: "NFO", SyllabusYear: "2025", StartDate: "2025-02-01"},
	}
	_ = upgraders.Save(ctx, &secondary.UpgraderRecord{ID: "PETEMAVERICK", Name: "Pete Maverick", Position: "PILOT", SyllabusYear: "2024"})

	result, err := service.ImportRoster(ctx, "roster.yaml")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Added != 1 || result.Updated != 1 {
		t.Errorf("added/updated = %d/%d, want 1/1", result.Added, result.Updated)
	}
	if len(result.Upgraders) != 2 {
		t.Fatalf("expected 2 upgraders, got %d", len(result.Upgraders))
	}
	if result.Upgraders[1].ID != "NICKGOOSE" {
		t.Errorf("expected ID NICKGOOSE, got %q", result.Upgraders[1].ID)
	}

	stored, _ := upgraders.GetByID(ctx, "PETEMAVERICK")
	if stored.SyllabusYear != "2025" {
		t.Errorf("expected updated syllabus year 2025, got %q", stored.SyllabusYear)
	}
}

func TestImportRoster_DuplicateNormalizedNames(t *testing.T) {
	service, upgraders, _, loader := newTestRosterService()
	ctx := context.Background()

	loader.rosters["roster.yaml"] = []*secondary.UpgraderRecord{
		{Name: "Pete Maverick", Position: "PILOT", SyllabusYear: "2025"},
		{Name: "Nick Goose", Position: "PILOT", SyllabusYear: "2025"},
		{Name: "pete-maverick", Position: "PILOT", SyllabusYear: "2025"},
	}

	if _, err := service.ImportRoster(ctx, "roster.yaml"); err == nil {
		t.Fatal("expected error for duplicate normalized names")
	}
	if len(upgraders.order) != 0 {
		t.Errorf("expected nothing stored from a rejected roster, got %v", upgraders.order)
	}
}

func TestImportRoster_MissingFile(t *testing.T) {
	service, _, _, _ := newTestRosterService()

	if _, err := service.ImportRoster(context.Background(), "missing.yaml"); err == nil {
		t.Fatal("expected error for missing roster")
	}
}

func TestGetUpgrader_ResolvesFuzzyName(t *testing.T) {
	service, upgraders, completions, _ := newTestRosterService()
	ctx := context.Background()

	_ = upgraders.Save(ctx, upgraderRecord("Pete Maverick", "2025-01-01"))
	_ = upgraders.Save(ctx, upgraderRecord("Tom Iceman", "2025-01-01"))
	_ = completions.Replace(ctx, "PETEMAVERICK", []*secondary.CompletionRecord{completion("PQS 201", "2025-02-01")})

	got, err := service.GetUpgrader(ctx, "Pete Maverik")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Upgrader.ID != "PETEMAVERICK" {
		t.Errorf("expected PETEMAVERICK, got %q", got.Upgrader.ID)
	}
	if got.Match.Exact {
		t.Error("expected a fuzzy match, got exact")
	}
	if len(got.Upgrader.Completions) != 1 {
		t.Errorf("expected 1 completion, got %d", len(got.Upgrader.Completions))
	}
}

func TestGetUpgrader_NotFound(t *testing.T) {
	service, upgraders, _, _ := newTestRosterService()
	ctx := context.Background()

	_ = upgraders.Save(ctx, upgraderRecord("Pete Maverick", "2025-01-01"))

	_, err := service.GetUpgrader(ctx, "Natasha Phoenix")
	if !errors.Is(err, ErrUpgraderNotFound) {
		t.Fatalf("expected ErrUpgraderNotFound, got %v", err)
	}
}

func TestMatchName(t *testing.T) {
	service, upgraders, _, _ := newTestRosterService()
	ctx := context.Background()

	_ = upgraders.Save(ctx, upgraderRecord("Pete Maverick", "2025-01-01"))

	tests := []struct {
		name      string
		query     string
		wantFound bool
		wantExact bool
	}{
		{"exact with punctuation", "pete  MAVERICK.", true, true},
		{"small typo", "Pete Maverik", true, false},
		{"unrelated", "Zed Xylophone", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.MatchName(ctx, tt.query)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got.Match.Found != tt.wantFound || got.Match.Exact != tt.wantExact {
				t.Errorf("found/exact = %v/%v, want %v/%v", got.Match.Found, got.Match.Exact, tt.wantFound, tt.wantExact)
			}
			if tt.wantFound && got.Label != "Pete Maverick" {
				t.Errorf("expected label Pete Maverick, got %q", got.Label)
			}
			if got.ClosestLabel != "Pete Maverick" {
				t.Errorf("expected closest label Pete Maverick, got %q", got.ClosestLabel)
			}
		})
	}
}

func TestListUpgraders_FiltersByPosition(t *testing.T) {
	service, upgraders, _, _ := newTestRosterService()
	ctx := context.Background()

	_ = upgraders.Save(ctx, upgraderRecord("Pete Maverick", "2025-01-01"))
	nfo := upgraderRecord("Nick Goose", "2025-01-01")
	nfo.Position = "NFO"
	_ = upgraders.Save(ctx, nfo)

	got, err := service.ListUpgraders(ctx, primary.RosterFilters{Position: "nfo"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 || got[0].ID != "NICKGOOSE" {
		t.Errorf("expected only NICKGOOSE, got %+v", got)
	}
}
