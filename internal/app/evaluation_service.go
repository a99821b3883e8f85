package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/upshot/internal/core/cohort"
	"github.com/example/upshot/internal/core/evaluation"
	"github.com/example/upshot/internal/core/priority"
	"github.com/example/upshot/internal/models"
	"github.com/example/upshot/internal/ports/primary"
	"github.com/example/upshot/internal/ports/secondary"
)

// exportTasks caps the next tasks listed per upgrader in an export.
const exportTasks = 3

// EvaluationServiceImpl implements the EvaluationService interface.
type EvaluationServiceImpl struct {
	roster         primary.RosterService
	upgraderRepo   secondary.UpgraderRepository
	completionRepo secondary.CompletionRepository
	syllabusRepo   secondary.SyllabusRepository
	exporter       secondary.CohortExporter
	config         models.EngineConfig
	concurrency    int
	now            func() time.Time
	logger         *zap.Logger
}

// NewEvaluationService creates a new EvaluationService with injected dependencies.
func NewEvaluationService(
	roster primary.RosterService,
	upgraderRepo secondary.UpgraderRepository,
	completionRepo secondary.CompletionRepository,
	syllabusRepo secondary.SyllabusRepository,
	exporter secondary.CohortExporter,
	config models.EngineConfig,
	concurrency int,
	logger *zap.Logger,
) *EvaluationServiceImpl {
	if concurrency < 1 {
		concurrency = 1
	}
	return &EvaluationServiceImpl{
		roster:         roster,
		upgraderRepo:   upgraderRepo,
		completionRepo: completionRepo,
		syllabusRepo:   syllabusRepo,
		exporter:       exporter,
		config:         config,
		concurrency:    concurrency,
		now:            time.Now,
		logger:         logger,
	}
}

// EvaluateUpgrader resolves a name and evaluates that upgrader as of req.AsOf.
// A missing syllabus is reported through notices, not as an error.
func (s *EvaluationServiceImpl) EvaluateUpgrader(ctx context.Context, req primary.EvaluateRequest) (*primary.UpgraderReport, error) {
	resolved, err := s.roster.GetUpgrader(ctx, req.Name)
	if err != nil {
		return nil, err
	}

	syl, err := s.loadSyllabus(ctx, resolved.Upgrader.Position, resolved.Upgrader.SyllabusYear)
	if err != nil {
		return nil, err
	}

	asOf := s.asOf(req.AsOf)
	ev := evaluation.Evaluate(*resolved.Upgrader, syl, s.config, asOf, evaluation.Options{History: req.History})
	return &primary.UpgraderReport{
		AsOf:       asOf,
		Match:      resolved.Match,
		Syllabus:   syl,
		Evaluation: ev,
	}, nil
}

// EvaluateCohort evaluates every matching upgrader concurrently. Results keep
// roster order regardless of completion order.
func (s *EvaluationServiceImpl) EvaluateCohort(ctx context.Context, req primary.CohortRequest) (*primary.CohortReport, error) {
	asOf := s.asOf(req.AsOf)
	started := time.Now()

	evals, err := s.evaluateAll(ctx, secondary.UpgraderFilters{
		Position:     models.RequirementKey(req.Position),
		SyllabusYear: req.SyllabusYear,
	}, asOf)
	if err != nil {
		return nil, err
	}

	report := &primary.CohortReport{
		AsOf:        asOf,
		Evaluations: evals,
		Summary:     cohort.Summarize(evals),
	}
	s.logger.Info("cohort evaluated",
		zap.String("position", req.Position),
		zap.String("year", req.SyllabusYear),
		zap.Int("upgraders", len(evals)),
		zap.Float64("health", report.Summary.HealthScore),
		zap.Duration("elapsed", time.Since(started)),
	)
	return report, nil
}

// Refresh recomputes the derived snapshot of every upgrader and stores it.
func (s *EvaluationServiceImpl) Refresh(ctx context.Context, asOf time.Time) (*primary.RefreshResult, error) {
	asOf = s.asOf(asOf)
	evals, err := s.evaluateAll(ctx, secondary.UpgraderFilters{}, asOf)
	if err != nil {
		return nil, err
	}

	computedAt := s.now()
	result := &primary.RefreshResult{
		AsOf:   asOf,
		Counts: make(map[models.Readiness]int, len(models.AllReadiness())),
	}
	for _, ev := range evals {
		snap := ev.Snapshot(computedAt)
		if err := s.upgraderRepo.SaveDerived(ctx, snap.ID, derivedToRecord(snap.Derived)); err != nil {
			return nil, fmt.Errorf("failed to store derived fields for %s: %w", snap.ID, err)
		}
		result.Refreshed++
		result.Counts[ev.Readiness()]++
	}

	s.logger.Info("derived fields refreshed",
		zap.Time("as_of", asOf),
		zap.Int("upgraders", result.Refreshed),
	)
	return result, nil
}

// ExportCohort writes report to a workbook with rows in priority order.
func (s *EvaluationServiceImpl) ExportCohort(ctx context.Context, report *primary.CohortReport, path string) error {
	if report == nil {
		return fmt.Errorf("no cohort report to export")
	}

	byID := make(map[string]evaluation.Evaluation, len(report.Evaluations))
	for _, ev := range report.Evaluations {
		byID[ev.Upgrader.ID] = ev
	}

	out := &secondary.CohortExport{
		AsOf:        models.FormatDate(report.AsOf),
		Total:       report.Summary.Total,
		HealthScore: report.Summary.HealthScore,

		PQSToMeetDeadline:    report.Summary.PQSToMeetDeadline,
		EventsToMeetDeadline: report.Summary.EventsToMeetDeadline,
	}
	for _, t := range report.Summary.PriorityTasks {
		out.PriorityTasks = append(out.PriorityTasks, secondary.TaskCount{Name: t.Name, Count: t.Count})
	}
	for _, r := range models.AllReadiness() {
		out.Counts = append(out.Counts, secondary.ReadinessCount{Readiness: r.String(), Count: report.Summary.Counts[r]})
	}
	for _, ranked := range report.Summary.Ranking {
		ev, ok := byID[ranked.ID]
		if !ok {
			continue
		}
		out.Rows = append(out.Rows, exportRow(ev, ranked))
	}

	if err := s.exporter.Export(ctx, path, out); err != nil {
		return fmt.Errorf("failed to export cohort: %w", err)
	}
	s.logger.Info("cohort exported", zap.String("path", path), zap.Int("rows", len(out.Rows)))
	return nil
}

// evaluateAll loads and evaluates every upgrader matching filters.
func (s *EvaluationServiceImpl) evaluateAll(ctx context.Context, filters secondary.UpgraderFilters, asOf time.Time) ([]evaluation.Evaluation, error) {
	records, err := s.upgraderRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list upgraders: %w", err)
	}

	syllabi := newSyllabusCache(s.loadSyllabus)
	evals := make([]evaluation.Evaluation, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, record := range records {
		i, id := i, record.ID
		g.Go(func() error {
			u, err := loadUpgrader(gctx, s.upgraderRepo, s.completionRepo, id)
			if err != nil {
				return err
			}
			syl, err := syllabi.get(gctx, u.Position, u.SyllabusYear)
			if err != nil {
				return err
			}
			evals[i] = evaluation.Evaluate(*u, syl, s.config, asOf, evaluation.Options{})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return evals, nil
}

// loadSyllabus returns the syllabus for a position and year, or nil when none is stored.
func (s *EvaluationServiceImpl) loadSyllabus(ctx context.Context, position, year string) (*models.Syllabus, error) {
	record, err := s.syllabusRepo.GetByKey(ctx, position, year)
	if errors.Is(err, secondary.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get syllabus: %w", err)
	}

	syl, warnings := syllabusFromRecord(record)
	for _, w := range warnings {
		s.logger.Warn("stored syllabus has unknown requirement kind", zap.String("syllabus", syl.ID), zap.String("detail", w))
	}
	return syl, nil
}

func (s *EvaluationServiceImpl) asOf(t time.Time) time.Time {
	if t.IsZero() {
		t = s.now()
	}
	return models.DateOf(t)
}

// syllabusCache loads each syllabus at most once per evaluation run.
type syllabusCache struct {
	mu    sync.Mutex
	load  func(ctx context.Context, position, year string) (*models.Syllabus, error)
	items map[string]*models.Syllabus
}

func newSyllabusCache(load func(ctx context.Context, position, year string) (*models.Syllabus, error)) *syllabusCache {
	return &syllabusCache{load: load, items: make(map[string]*models.Syllabus)}
}

func (c *syllabusCache) get(ctx context.Context, position, year string) (*models.Syllabus, error) {
	key := models.SyllabusKey(position, year)

	c.mu.Lock()
	defer c.mu.Unlock()
	if syl, ok := c.items[key]; ok {
		return syl, nil
	}
	syl, err := c.load(ctx, position, year)
	if err != nil {
		return nil, err
	}
	c.items[key] = syl
	return syl, nil
}

func exportRow(ev evaluation.Evaluation, ranked cohort.Ranked) secondary.CohortExportRow {
	p := ev.Progress
	row := secondary.CohortExportRow{
		ID:               ev.Upgrader.ID,
		Name:             ev.Upgrader.Label(),
		Rank:             ev.Upgrader.Rank,
		Position:         ev.Upgrader.Position,
		PQSLevel:         p.Levels.PQS,
		EventsLevel:      p.Levels.Events,
		PQSPercent:       p.PQS.Percent,
		EventsPercent:    p.Events.Percent,
		Readiness:        p.Readiness.String(),
		PacingDays:       p.PacingDays,
		TargetPacingDays: p.TargetPacingDays,
		Score:            ranked.Score,
	}
	if p.ProjectedComplete != nil {
		row.ProjectedComplete = models.FormatDate(*p.ProjectedComplete)
	}

	tasks := priority.Ready(ev.Tasks)
	if len(tasks) == 0 {
		tasks = ev.Tasks
	}
	for i, t := range tasks {
		if i == exportTasks {
			break
		}
		row.NextTasks = append(row.NextTasks, t.Requirement.Name)
	}
	return row
}

// Ensure EvaluationServiceImpl implements the interface
var _ primary.EvaluationService = (*EvaluationServiceImpl)(nil)
