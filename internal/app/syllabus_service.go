package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/upshot/internal/core/syllabus"
	"github.com/example/upshot/internal/models"
	"github.com/example/upshot/internal/ports/primary"
	"github.com/example/upshot/internal/ports/secondary"
)

// SyllabusServiceImpl implements the SyllabusService interface.
type SyllabusServiceImpl struct {
	syllabusRepo secondary.SyllabusRepository
	loader       secondary.DocumentLoader
	logger       *zap.Logger
}

// NewSyllabusService creates a new SyllabusService with injected dependencies.
func NewSyllabusService(syllabusRepo secondary.SyllabusRepository, loader secondary.DocumentLoader, logger *zap.Logger) *SyllabusServiceImpl {
	return &SyllabusServiceImpl{
		syllabusRepo: syllabusRepo,
		loader:       loader,
		logger:       logger,
	}
}

// ImportSyllabi validates and stores every syllabus in a document.
// The import is all-or-nothing: any error-level issue rejects the whole document.
func (s *SyllabusServiceImpl) ImportSyllabi(ctx context.Context, path string) ([]*primary.SyllabusCheck, error) {
	checks, err := s.ValidateSyllabi(ctx, path)
	if err != nil {
		return nil, err
	}

	var rejected []string
	for _, c := range checks {
		if c.Report.HasErrors() {
			rejected = append(rejected, fmt.Sprintf("%s %s: %v", c.Syllabus.Position, c.Syllabus.Year, c.Report.Err()))
		}
	}
	if len(rejected) > 0 {
		return checks, fmt.Errorf("%w: %s", ErrInvalidSyllabus, strings.Join(rejected, "; "))
	}

	for _, c := range checks {
		if err := s.syllabusRepo.Save(ctx, syllabusToRecord(c.Syllabus, c.Report.Issues)); err != nil {
			return nil, fmt.Errorf("failed to save syllabus %s: %w", c.Syllabus.ID, err)
		}
		s.logger.Info("syllabus imported",
			zap.String("syllabus", c.Syllabus.ID),
			zap.Int("requirements", len(c.Syllabus.Requirements)),
			zap.Int("warnings", len(c.Report.Warnings())),
		)
	}
	return checks, nil
}

// ValidateSyllabi validates every syllabus in a document without storing it.
func (s *SyllabusServiceImpl) ValidateSyllabi(ctx context.Context, path string) ([]*primary.SyllabusCheck, error) {
	records, err := s.loader.LoadSyllabi(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load syllabi: %w", err)
	}

	checks := make([]*primary.SyllabusCheck, 0, len(records))
	for _, r := range records {
		model, kindWarnings := syllabusFromRecord(r)
		check := &primary.SyllabusCheck{
			Syllabus:     model,
			Report:       syllabus.Validate(model),
			KindWarnings: kindWarnings,
		}
		for _, w := range check.KindWarnings {
			s.logger.Warn("unrecognized requirement kind", zap.String("syllabus", model.ID), zap.String("detail", w))
		}
		for _, issue := range check.Report.Warnings() {
			s.logger.Warn("syllabus warning", zap.String("syllabus", model.ID), zap.String("issue", issue.String()))
		}
		checks = append(checks, check)
	}
	return checks, nil
}

// ListSyllabi retrieves stored syllabus headers.
func (s *SyllabusServiceImpl) ListSyllabi(ctx context.Context) ([]*primary.SyllabusSummary, error) {
	records, err := s.syllabusRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list syllabi: %w", err)
	}

	out := make([]*primary.SyllabusSummary, len(records))
	for i, r := range records {
		out[i] = &primary.SyllabusSummary{
			ID:           r.ID,
			Position:     r.Position,
			Year:         r.Year,
			DisplayName:  r.DisplayName,
			BaseLevel:    r.BaseLevel,
			Requirements: r.RequirementCount,
			UpdatedAt:    r.UpdatedAt,
		}
	}
	return out, nil
}

// GetSyllabus retrieves a stored syllabus by position and year.
func (s *SyllabusServiceImpl) GetSyllabus(ctx context.Context, position, year string) (*primary.SyllabusDetail, error) {
	record, err := s.syllabusRepo.GetByKey(ctx, models.RequirementKey(position), strings.TrimSpace(year))
	if errors.Is(err, secondary.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s %s", ErrSyllabusNotFound, position, year)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get syllabus: %w", err)
	}

	model, _ := syllabusFromRecord(record)
	detail := &primary.SyllabusDetail{Syllabus: model}
	for _, issue := range record.Issues {
		detail.Issues = append(detail.Issues, issueFromRecord(issue))
	}
	return detail, nil
}

// Ensure SyllabusServiceImpl implements the interface
var _ primary.SyllabusService = (*SyllabusServiceImpl)(nil)
