package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/upshot/internal/core/names"
	"github.com/example/upshot/internal/models"
	"github.com/example/upshot/internal/ports/primary"
	"github.com/example/upshot/internal/ports/secondary"
)

// RosterServiceImpl implements the RosterService interface.
type RosterServiceImpl struct {
	upgraderRepo   secondary.UpgraderRepository
	completionRepo secondary.CompletionRepository
	loader         secondary.DocumentLoader
	matcher        names.Options
	logger         *zap.Logger
}

// NewRosterService creates a new RosterService with injected dependencies.
func NewRosterService(
	upgraderRepo secondary.UpgraderRepository,
	completionRepo secondary.CompletionRepository,
	loader secondary.DocumentLoader,
	matcher names.Options,
	logger *zap.Logger,
) *RosterServiceImpl {
	return &RosterServiceImpl{
		upgraderRepo:   upgraderRepo,
		completionRepo: completionRepo,
		loader:         loader,
		matcher:        matcher,
		logger:         logger,
	}
}

// ImportRoster adds or updates the upgraders listed in a roster document.
// Each upgrader is keyed by its normalized full name.
func (s *RosterServiceImpl) ImportRoster(ctx context.Context, path string) (*primary.RosterImportResult, error) {
	records, err := s.loader.LoadRoster(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}

	// Validate every entry before the first write so a bad roster changes nothing.
	seen := make(map[string]string, len(records))
	for _, record := range records {
		record.ID = names.Normalize(record.Name)
		if record.ID == "" {
			return nil, fmt.Errorf("roster entry %q has no usable name", record.Name)
		}
		if prev, dup := seen[record.ID]; dup {
			return nil, fmt.Errorf("roster entries %q and %q normalize to the same name %s", prev, record.Name, record.ID)
		}
		seen[record.ID] = record.Name
	}

	result := &primary.RosterImportResult{}
	for _, record := range records {
		_, err := s.upgraderRepo.GetByID(ctx, record.ID)
		switch {
		case err == nil:
			result.Updated++
		case errors.Is(err, secondary.ErrNotFound):
			result.Added++
		default:
			return nil, fmt.Errorf("failed to check upgrader %s: %w", record.ID, err)
		}

		if err := s.upgraderRepo.Save(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to save upgrader %s: %w", record.ID, err)
		}

		u, err := upgraderFromRecord(record)
		if err != nil {
			return nil, err
		}
		result.Upgraders = append(result.Upgraders, u)
	}

	s.logger.Info("roster imported",
		zap.String("path", path),
		zap.Int("added", result.Added),
		zap.Int("updated", result.Updated),
	)
	return result, nil
}

// ListUpgraders retrieves upgraders with their cached derived snapshot.
func (s *RosterServiceImpl) ListUpgraders(ctx context.Context, filters primary.RosterFilters) ([]*models.Upgrader, error) {
	records, err := s.upgraderRepo.List(ctx, secondary.UpgraderFilters{
		Position:     models.RequirementKey(filters.Position),
		SyllabusYear: filters.SyllabusYear,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list upgraders: %w", err)
	}

	upgraders := make([]*models.Upgrader, 0, len(records))
	for _, r := range records {
		u, err := upgraderFromRecord(r)
		if err != nil {
			return nil, err
		}
		upgraders = append(upgraders, u)
	}
	return upgraders, nil
}

// GetUpgrader resolves a free-text name and loads the upgrader with completions.
func (s *RosterServiceImpl) GetUpgrader(ctx context.Context, name string) (*primary.ResolvedUpgrader, error) {
	m, err := s.MatchName(ctx, name)
	if err != nil {
		return nil, err
	}
	if !m.Match.Found {
		if m.Match.Closest != "" {
			return nil, fmt.Errorf("%w: %q (closest %s, score %.3f)", ErrUpgraderNotFound, name, m.ClosestLabel, m.Match.Score)
		}
		return nil, fmt.Errorf("%w: %q", ErrUpgraderNotFound, name)
	}

	u, err := loadUpgrader(ctx, s.upgraderRepo, s.completionRepo, m.Match.ID)
	if err != nil {
		return nil, err
	}
	return &primary.ResolvedUpgrader{Upgrader: u, Match: m.Match}, nil
}

// MatchName resolves a free-text name against the roster.
func (s *RosterServiceImpl) MatchName(ctx context.Context, name string) (*primary.NameMatch, error) {
	records, err := s.upgraderRepo.List(ctx, secondary.UpgraderFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list upgraders: %w", err)
	}

	labels := make(map[string]string, len(records))
	for _, r := range records {
		labels[r.ID] = r.Name
	}

	match := names.NewResolver(rosterIndex(records), s.matcher).Resolve(name)
	result := &primary.NameMatch{
		Query:        name,
		Match:        match,
		ClosestLabel: labels[match.Closest],
	}
	if match.Found {
		result.Label = labels[match.ID]
	}

	s.logger.Debug("name resolved",
		zap.String("query", name),
		zap.Bool("found", match.Found),
		zap.String("closest", match.Closest),
		zap.Float64("score", match.Score),
	)
	return result, nil
}

// loadUpgrader loads an upgrader record with its completions.
func loadUpgrader(ctx context.Context, upgraderRepo secondary.UpgraderRepository, completionRepo secondary.CompletionRepository, id string) (*models.Upgrader, error) {
	record, err := upgraderRepo.GetByID(ctx, id)
	if errors.Is(err, secondary.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUpgraderNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get upgrader: %w", err)
	}

	u, err := upgraderFromRecord(record)
	if err != nil {
		return nil, err
	}

	completions, err := completionRepo.ListByUpgrader(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load completions: %w", err)
	}
	u.Completions, err = completionsFromRecords(completions)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Ensure RosterServiceImpl implements the interface
var _ primary.RosterService = (*RosterServiceImpl)(nil)
