package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/example/upshot/internal/core/names"
	"github.com/example/upshot/internal/models"
	"github.com/example/upshot/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// Ensure mocks implement the interfaces
var (
	_ secondary.UpgraderRepository   = (*mockUpgraderRepository)(nil)
	_ secondary.CompletionRepository = (*mockCompletionRepository)(nil)
	_ secondary.SyllabusRepository   = (*mockSyllabusRepository)(nil)
	_ secondary.DataSetRepository    = (*mockDataSetRepository)(nil)
	_ secondary.DocumentLoader       = (*mockDocumentLoader)(nil)
	_ secondary.CohortExporter       = (*mockCohortExporter)(nil)
)

// mockUpgraderRepository implements secondary.UpgraderRepository for testing.
// Services call it from several goroutines, so every method locks.
type mockUpgraderRepository struct {
	mu        sync.Mutex
	upgraders map[string]*secondary.UpgraderRecord
	order     []string
	derived   map[string]*secondary.DerivedRecord
	listErr   error
	saveErr   error
}

func newMockUpgraderRepository() *mockUpgraderRepository {
	return &mockUpgraderRepository{
		upgraders: make(map[string]*secondary.UpgraderRecord),
		derived:   make(map[string]*secondary.DerivedRecord),
	}
}

func (m *mockUpgraderRepository) Save(ctx context.Context, upgrader *secondary.UpgraderRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.upgraders[upgrader.ID]; !ok {
		m.order = append(m.order, upgrader.ID)
	}
	cp := *upgrader
	m.upgraders[upgrader.ID] = &cp
	return nil
}

func (m *mockUpgraderRepository) GetByID(ctx context.Context, id string) (*secondary.UpgraderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.upgraders[id]
	if !ok {
		return nil, fmt.Errorf("upgrader %s %w", id, secondary.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *mockUpgraderRepository) List(ctx context.Context, filters secondary.UpgraderFilters) ([]*secondary.UpgraderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*secondary.UpgraderRecord
	for _, id := range m.order {
		u := m.upgraders[id]
		if filters.Position != "" && u.Position != filters.Position {
			continue
		}
		if filters.SyllabusYear != "" && u.SyllabusYear != filters.SyllabusYear {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockUpgraderRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.upgraders, id)
	return nil
}

func (m *mockUpgraderRepository) SaveDerived(ctx context.Context, id string, derived *secondary.DerivedRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.upgraders[id]; !ok {
		return fmt.Errorf("upgrader %s %w", id, secondary.ErrNotFound)
	}
	m.derived[id] = derived
	return nil
}

// mockCompletionRepository implements secondary.CompletionRepository for testing.
type mockCompletionRepository struct {
	mu          sync.Mutex
	completions map[string][]*secondary.CompletionRecord
	replaces    int
	replaceErr  error
	failFor     map[string]error // per-upgrader Replace failures
}

func newMockCompletionRepository() *mockCompletionRepository {
	return &mockCompletionRepository{completions: make(map[string][]*secondary.CompletionRecord)}
}

func (m *mockCompletionRepository) ListByUpgrader(ctx context.Context, upgraderID string) ([]*secondary.CompletionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*secondary.CompletionRecord(nil), m.completions[upgraderID]...), nil
}

func (m *mockCompletionRepository) Replace(ctx context.Context, upgraderID string, completions []*secondary.CompletionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaceErr != nil {
		return m.replaceErr
	}
	if err := m.failFor[upgraderID]; err != nil {
		return err
	}
	m.replaces++
	m.completions[upgraderID] = completions
	return nil
}

func (m *mockCompletionRepository) CountByDataSet(ctx context.Context, dataSetID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, list := range m.completions {
		for _, c := range list {
			if c.DataSetID == dataSetID {
				n++
			}
		}
	}
	return n, nil
}

// mockSyllabusRepository implements secondary.SyllabusRepository for testing.
type mockSyllabusRepository struct {
	mu      sync.Mutex
	syllabi map[string]*secondary.SyllabusRecord
	gets    int
	saveErr error
}

func newMockSyllabusRepository() *mockSyllabusRepository {
	return &mockSyllabusRepository{syllabi: make(map[string]*secondary.SyllabusRecord)}
}

func (m *mockSyllabusRepository) Save(ctx context.Context, s *secondary.SyllabusRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	s.RequirementCount = len(s.Requirements)
	m.syllabi[s.ID] = s
	return nil
}

func (m *mockSyllabusRepository) GetByID(ctx context.Context, id string) (*secondary.SyllabusRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	s, ok := m.syllabi[id]
	if !ok {
		return nil, fmt.Errorf("syllabus %s %w", id, secondary.ErrNotFound)
	}
	return s, nil
}

func (m *mockSyllabusRepository) GetByKey(ctx context.Context, position, year string) (*secondary.SyllabusRecord, error) {
	return m.GetByID(ctx, models.SyllabusKey(position, year))
}

func (m *mockSyllabusRepository) List(ctx context.Context) ([]*secondary.SyllabusRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*secondary.SyllabusRecord
	for _, s := range m.syllabi {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockSyllabusRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.syllabi, id)
	return nil
}

// mockDataSetRepository implements secondary.DataSetRepository for testing.
type mockDataSetRepository struct {
	mu       sync.Mutex
	dataSets []*secondary.DataSetRecord
}

func newMockDataSetRepository() *mockDataSetRepository {
	return &mockDataSetRepository{}
}

func (m *mockDataSetRepository) Create(ctx context.Context, ds *secondary.DataSetRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dataSets = append(m.dataSets, ds)
	return nil
}

func (m *mockDataSetRepository) Finish(ctx context.Context, id, status string, added, replaced int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ds := range m.dataSets {
		if ds.ID == id {
			ds.Status = status
			ds.Added = added
			ds.Replaced = replaced
			return nil
		}
	}
	return fmt.Errorf("data set %s %w", id, secondary.ErrNotFound)
}

func (m *mockDataSetRepository) GetByID(ctx context.Context, id string) (*secondary.DataSetRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ds := range m.dataSets {
		if ds.ID == id {
			return ds, nil
		}
	}
	return nil, fmt.Errorf("data set %s %w", id, secondary.ErrNotFound)
}

func (m *mockDataSetRepository) List(ctx context.Context) ([]*secondary.DataSetRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*secondary.DataSetRecord(nil), m.dataSets...), nil
}

// mockDocumentLoader implements secondary.DocumentLoader for testing.
// Documents are keyed by path.
type mockDocumentLoader struct {
	syllabi map[string][]*secondary.SyllabusRecord
	rosters map[string][]*secondary.UpgraderRecord
	sources map[string]*secondary.CompletionSource
}

func newMockDocumentLoader() *mockDocumentLoader {
	return &mockDocumentLoader{
		syllabi: make(map[string][]*secondary.SyllabusRecord),
		rosters: make(map[string][]*secondary.UpgraderRecord),
		sources: make(map[string]*secondary.CompletionSource),
	}
}

func (m *mockDocumentLoader) LoadSyllabi(ctx context.Context, path string) ([]*secondary.SyllabusRecord, error) {
	s, ok := m.syllabi[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file", path)
	}
	return s, nil
}

func (m *mockDocumentLoader) LoadRoster(ctx context.Context, path string) ([]*secondary.UpgraderRecord, error) {
	r, ok := m.rosters[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file", path)
	}
	out := make([]*secondary.UpgraderRecord, len(r))
	for i, u := range r {
		cp := *u
		out[i] = &cp
	}
	return out, nil
}

func (m *mockDocumentLoader) LoadCompletionSource(ctx context.Context, path string) (*secondary.CompletionSource, error) {
	s, ok := m.sources[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file", path)
	}
	return s, nil
}

// mockCohortExporter implements secondary.CohortExporter for testing.
type mockCohortExporter struct {
	path   string
	export *secondary.CohortExport
	err    error
}

func (m *mockCohortExporter) Export(ctx context.Context, path string, report *secondary.CohortExport) error {
	if m.err != nil {
		return m.err
	}
	m.path = path
	m.export = report
	return nil
}

// ============================================================================
// Fixtures
// ============================================================================

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func upgraderRecord(name, startDate string) *secondary.UpgraderRecord {
	return &secondary.UpgraderRecord{
		ID:           names.Normalize(name),
		Name:         name,
		Position:     "PILOT",
		SyllabusYear: "2025",
		StartDate:    startDate,
	}
}

func completion(event, date string) *secondary.CompletionRecord {
	return &secondary.CompletionRecord{Event: event, CompletedOn: date}
}

// pilotSyllabus is a two-level syllabus with a prerequisite chain at 300.
func pilotSyllabus() *secondary.SyllabusRecord {
	seq := 1
	return &secondary.SyllabusRecord{
		ID:        models.SyllabusKey("PILOT", "2025"),
		Position:  "PILOT",
		Year:      "2025",
		BaseLevel: 200,
		Requirements: []secondary.RequirementRecord{
			{Name: "PQS 201", Kind: "PQS", Level: 200},
			{Name: "FAM-1", Kind: "EVENT", Level: 200, Sequence: &seq},
			{Name: "PQS 301", Kind: "PQS", Level: 300, Prerequisites: []string{"PQS 201"}},
			{Name: "TAC-1", Kind: "EVENT", Level: 300, Prerequisites: []string{"FAM-1"}},
		},
		Curves: []secondary.CurveRecord{
			{Level: 200, TargetMonths: 6, DeadlineMonths: 12},
			{Level: 300, TargetMonths: 10, DeadlineMonths: 18},
		},
	}
}

func testEngineConfig() models.EngineConfig {
	return models.EngineConfig{
		UseRoundedTrainingStartDate: false,
		Positions: map[string]models.PositionSettings{
			"PILOT": {UseDerivedLevels: true, Deadlines: map[int]models.Curve{
				200: {TargetMonths: 6, DeadlineMonths: 12},
				300: {TargetMonths: 10, DeadlineMonths: 18},
			}},
		},
	}
}
