package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/upshot/internal/core/merge"
	"github.com/example/upshot/internal/core/names"
	"github.com/example/upshot/internal/ctxutil"
	"github.com/example/upshot/internal/models"
	"github.com/example/upshot/internal/ports/primary"
	"github.com/example/upshot/internal/ports/secondary"
)

// identityLocks serializes work on one upgrader while other upgraders proceed.
type identityLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newIdentityLocks() *identityLocks {
	return &identityLocks{locks: make(map[string]*sync.Mutex)}
}

// lock blocks until id is free and returns the matching unlock.
func (l *identityLocks) lock(id string) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// ImportServiceImpl implements the ImportService interface.
type ImportServiceImpl struct {
	upgraderRepo   secondary.UpgraderRepository
	completionRepo secondary.CompletionRepository
	dataSetRepo    secondary.DataSetRepository
	loader         secondary.DocumentLoader
	matcher        names.Options
	concurrency    int
	locks          *identityLocks
	newID          func() string
	logger         *zap.Logger
}

// NewImportService creates a new ImportService with injected dependencies.
func NewImportService(
	upgraderRepo secondary.UpgraderRepository,
	completionRepo secondary.CompletionRepository,
	dataSetRepo secondary.DataSetRepository,
	loader secondary.DocumentLoader,
	matcher names.Options,
	concurrency int,
	logger *zap.Logger,
) *ImportServiceImpl {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ImportServiceImpl{
		upgraderRepo:   upgraderRepo,
		completionRepo: completionRepo,
		dataSetRepo:    dataSetRepo,
		loader:         loader,
		matcher:        matcher,
		concurrency:    concurrency,
		locks:          newIdentityLocks(),
		newID:          uuid.NewString,
		logger:         logger,
	}
}

// resolvedSource is a loaded source with every entry resolved against the roster.
type resolvedSource struct {
	source  *secondary.CompletionSource
	matches []names.Match
}

// ImportSources merges completion sources into the roster as one data set.
//
// Sources are loaded and resolved concurrently. Records for the same upgrader
// are then merged in argument order under that upgrader's lock, so the result
// does not depend on scheduling and concurrent imports cannot interleave on
// one person.
func (s *ImportServiceImpl) ImportSources(ctx context.Context, req primary.ImportRequest) (*primary.ImportResult, error) {
	if len(req.Paths) == 0 {
		return nil, fmt.Errorf("no completion sources given")
	}

	roster, err := s.upgraderRepo.List(ctx, secondary.UpgraderFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list upgraders: %w", err)
	}
	if len(roster) == 0 {
		return nil, ErrEmptyRoster
	}
	labels := make(map[string]string, len(roster))
	for _, r := range roster {
		labels[r.ID] = r.Name
	}
	resolver := names.NewResolver(rosterIndex(roster), s.matcher)

	dataSetID := s.newID()
	ctx = ctxutil.WithDataSetID(ctx, dataSetID)
	log := s.logger.With(zap.String("data_set", dataSetID))

	sources, err := s.loadSources(ctx, req.Paths, resolver)
	if err != nil {
		return nil, err
	}

	result := &primary.ImportResult{
		DataSetID: dataSetID,
		Name:      dataSetName(req.Name, sources),
		Sources:   len(sources),
	}

	// Group incoming records by upgrader in argument order.
	incoming := make(map[string][]models.Completion)
	var order []string
	unmatched := make(map[string]*primary.UnmatchedName)
	for _, rs := range sources {
		for i, entry := range rs.source.Entries {
			result.Records += len(entry.Completions)
			m := rs.matches[i]
			if !m.Found {
				u, ok := unmatched[entry.Name]
				if !ok {
					u = &primary.UnmatchedName{Name: entry.Name, Closest: labels[m.Closest], Score: m.Score}
					unmatched[entry.Name] = u
				}
				u.Records += len(entry.Completions)
				continue
			}

			result.Matched += len(entry.Completions)
			if _, ok := incoming[m.ID]; !ok {
				order = append(order, m.ID)
			}
			for _, rec := range entry.Completions {
				c, err := completionFromRecord(rec)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", rs.source.Path, err)
				}
				c.Source = dataSetID
				incoming[m.ID] = append(incoming[m.ID], c)
			}
		}
	}

	for _, u := range unmatched {
		result.Unmatched = append(result.Unmatched, *u)
	}
	sort.Slice(result.Unmatched, func(i, j int) bool { return result.Unmatched[i].Name < result.Unmatched[j].Name })

	// Recorded as pending before any completion carries its ID.
	pending := dataSetRecord(result)
	pending.Status = secondary.DataSetPending
	if err := s.dataSetRepo.Create(ctx, pending); err != nil {
		return nil, fmt.Errorf("failed to record data set: %w", err)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, id := range order {
		id := id
		g.Go(func() error {
			res, err := s.mergeInto(gctx, id, incoming[id])
			if err != nil {
				return err
			}
			mu.Lock()
			result.Added += res.Added
			result.Replaced += res.Replaced
			result.Skipped += res.Skipped
			if res.Added+res.Replaced > 0 {
				result.Updated = append(result.Updated, id)
			}
			mu.Unlock()
			return nil
		})
	}
	if mergeErr := g.Wait(); mergeErr != nil {
		// Merges that finished stay stored; the totals say how far it got.
		if err := s.dataSetRepo.Finish(context.WithoutCancel(ctx), dataSetID, secondary.DataSetFailed, result.Added, result.Replaced); err != nil {
			log.Error("failed to mark data set failed", zap.Error(err))
		}
		log.Error("import failed",
			zap.Error(mergeErr),
			zap.Int("added", result.Added),
			zap.Int("replaced", result.Replaced),
		)
		return nil, fmt.Errorf("import %s failed: %w", dataSetID, mergeErr)
	}
	sort.Strings(result.Updated)

	if err := s.dataSetRepo.Finish(ctx, dataSetID, secondary.DataSetComplete, result.Added, result.Replaced); err != nil {
		return nil, fmt.Errorf("failed to record data set: %w", err)
	}

	for _, u := range result.Unmatched {
		log.Warn("unmatched name",
			zap.String("name", u.Name),
			zap.String("closest", u.Closest),
			zap.Float64("score", u.Score),
			zap.Int("records", u.Records),
		)
	}
	log.Info("completions imported",
		zap.String("name", result.Name),
		zap.Int("sources", result.Sources),
		zap.Int("records", result.Records),
		zap.Int("matched", result.Matched),
		zap.Int("added", result.Added),
		zap.Int("replaced", result.Replaced),
		zap.Int("unmatched", len(result.Unmatched)),
	)
	return result, nil
}

// loadSources loads and resolves every source concurrently, keeping argument order.
func (s *ImportServiceImpl) loadSources(ctx context.Context, paths []string, resolver *names.Resolver) ([]resolvedSource, error) {
	out := make([]resolvedSource, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			src, err := s.loader.LoadCompletionSource(gctx, path)
			if err != nil {
				return fmt.Errorf("failed to load source %s: %w", path, err)
			}
			matches := make([]names.Match, len(src.Entries))
			for j, entry := range src.Entries {
				matches[j] = resolver.Resolve(entry.Name)
			}
			out[i] = resolvedSource{source: src, matches: matches}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// mergeInto merges incoming completions into one upgrader and stores the result.
func (s *ImportServiceImpl) mergeInto(ctx context.Context, id string, incoming []models.Completion) (merge.Result, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	u, err := loadUpgrader(ctx, s.upgraderRepo, s.completionRepo, id)
	if err != nil {
		return merge.Result{}, err
	}

	res := merge.Completions(*u, incoming)
	if res.Added+res.Replaced == 0 {
		return res, nil
	}
	if err := s.completionRepo.Replace(ctx, id, completionsToRecords(id, res.Upgrader.Completions)); err != nil {
		return merge.Result{}, fmt.Errorf("failed to store completions for %s: %w", id, err)
	}
	s.logger.Debug("completions merged",
		zap.String("data_set", ctxutil.DataSetFromContext(ctx)),
		zap.String("upgrader", id),
		zap.Int("added", res.Added),
		zap.Int("replaced", res.Replaced),
	)
	return res, nil
}

func dataSetName(name string, sources []resolvedSource) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	parts := make([]string, len(sources))
	for i, rs := range sources {
		parts[i] = rs.source.Name
	}
	return strings.Join(parts, ", ")
}

func dataSetRecord(r *primary.ImportResult) *secondary.DataSetRecord {
	rec := &secondary.DataSetRecord{
		ID:       r.DataSetID,
		Name:     r.Name,
		Sources:  r.Sources,
		Records:  r.Records,
		Matched:  r.Matched,
		Added:    r.Added,
		Replaced: r.Replaced,
	}
	for _, u := range r.Unmatched {
		rec.Unmatched = append(rec.Unmatched, secondary.UnmatchedRecord{
			Name:    u.Name,
			Closest: u.Closest,
			Score:   u.Score,
			Records: u.Records,
		})
	}
	return rec
}

// Ensure ImportServiceImpl implements the interface
var _ primary.ImportService = (*ImportServiceImpl)(nil)
