// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"errors"
)

// ErrNotFound is wrapped by repositories when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// UpgraderRepository defines the secondary port for roster persistence.
type UpgraderRepository interface {
	// Save inserts an upgrader or updates its roster fields. Updating an
	// existing upgrader clears its derived snapshot.
	Save(ctx context.Context, upgrader *UpgraderRecord) error

	// GetByID retrieves an upgrader by its normalized ID.
	GetByID(ctx context.Context, id string) (*UpgraderRecord, error)

	// List retrieves upgraders matching the given filters, ordered by ID.
	List(ctx context.Context, filters UpgraderFilters) ([]*UpgraderRecord, error)

	// Delete removes an upgrader and its completions.
	Delete(ctx context.Context, id string) error

	// SaveDerived replaces the engine-owned derived snapshot of an upgrader.
	SaveDerived(ctx context.Context, id string, derived *DerivedRecord) error
}

// UpgraderRecord represents an upgrader as stored in persistence.
type UpgraderRecord struct {
	ID           string
	Name         string
	DisplayName  string
	Rank         string
	Position     string
	SyllabusYear string
	TargetLevel  int
	StartDate    string // YYYY-MM-DD, empty when unknown
	OnWaiver     bool
	Derived      *DerivedRecord // nil when never computed or cleared by a change
	CreatedAt    string
	UpdatedAt    string
}

// DerivedRecord is the cached derived snapshot of an upgrader.
type DerivedRecord struct {
	PQSLevel          int
	EventsLevel       int
	PQSPercent        float64
	EventsPercent     float64
	Readiness         string
	PacingDays        *int
	TargetPacingDays  *int
	ProjectedComplete string
	ComputedAt        string
}

// UpgraderFilters contains filter options for querying upgraders.
type UpgraderFilters struct {
	Position     string
	SyllabusYear string
}

// CompletionRepository defines the secondary port for completion persistence.
type CompletionRepository interface {
	// ListByUpgrader returns an upgrader's completions in merge order.
	ListByUpgrader(ctx context.Context, upgraderID string) ([]*CompletionRecord, error)

	// Replace atomically replaces all completions of an upgrader and clears
	// its derived snapshot.
	Replace(ctx context.Context, upgraderID string, completions []*CompletionRecord) error

	// CountByDataSet returns how many stored completions came from a data set.
	CountByDataSet(ctx context.Context, dataSetID string) (int, error)
}

// CompletionRecord represents a completion as stored in persistence.
type CompletionRecord struct {
	UpgraderID  string
	Event       string
	CompletedOn string // YYYY-MM-DD, empty when undated
	Instructor  string
	Grade       string
	Status      string
	DataSetID   string
}

// SyllabusRepository defines the secondary port for syllabus persistence.
type SyllabusRepository interface {
	// Save stores a syllabus with its requirements, curves and issues,
	// replacing any syllabus with the same position and year. Derived
	// snapshots of upgraders assigned to that position and year are cleared.
	Save(ctx context.Context, syllabus *SyllabusRecord) error

	// GetByID retrieves a full syllabus by its ID.
	GetByID(ctx context.Context, id string) (*SyllabusRecord, error)

	// GetByKey retrieves a full syllabus by position and year.
	GetByKey(ctx context.Context, position, year string) (*SyllabusRecord, error)

	// List retrieves syllabus headers (no requirements) ordered by position and year.
	List(ctx context.Context) ([]*SyllabusRecord, error)

	// Delete removes a syllabus.
	Delete(ctx context.Context, id string) error
}

// SyllabusRecord represents a syllabus as stored in persistence.
type SyllabusRecord struct {
	ID               string
	Position         string
	Year             string
	DisplayName      string
	BaseLevel        int
	Requirements     []RequirementRecord
	Curves           []CurveRecord
	Issues           []IssueRecord
	RequirementCount int // populated by List
	CreatedAt        string
	UpdatedAt        string
}

// RequirementRecord is one requirement in syllabus order.
type RequirementRecord struct {
	Name            string
	DisplayName     string
	Kind            string
	Level           int
	Prerequisites   []string
	WaivedByDefault bool
	Sequence        *int
}

// CurveRecord is the target/deadline pair for one level.
type CurveRecord struct {
	Level          int
	TargetMonths   int
	DeadlineMonths int
}

// IssueRecord is a validation finding kept with an imported syllabus.
type IssueRecord struct {
	Code        string
	Severity    string
	Requirement string
	Detail      string
}

// DataSetRepository defines the secondary port for import batch persistence.
type DataSetRepository interface {
	// Create persists a data set together with its unmatched names.
	Create(ctx context.Context, dataSet *DataSetRecord) error

	// Finish records the outcome of an import started with Create.
	Finish(ctx context.Context, id, status string, added, replaced int) error

	// GetByID retrieves a data set by its ID.
	GetByID(ctx context.Context, id string) (*DataSetRecord, error)

	// List retrieves data sets, newest first.
	List(ctx context.Context) ([]*DataSetRecord, error)
}

// DataSetRecord represents one completion import batch.
type DataSetRecord struct {
	ID        string
	Name      string
	Sources   int
	Records   int
	Matched   int
	Added     int
	Replaced  int
	Status    string // DataSetPending, DataSetComplete or DataSetFailed
	Unmatched []UnmatchedRecord
	CreatedAt string
}

// Data set statuses. A failed set may have tagged completions for the
// upgraders merged before the failure.
const (
	DataSetPending  = "pending"
	DataSetComplete = "complete"
	DataSetFailed   = "failed"
)

// UnmatchedRecord is a source name that did not resolve to a roster entry.
type UnmatchedRecord struct {
	Name    string
	Closest string
	Score   float64
	Records int
}
