package primary

import (
	"context"
	"time"

	"github.com/example/upshot/internal/core/cohort"
	"github.com/example/upshot/internal/core/evaluation"
	"github.com/example/upshot/internal/core/names"
	"github.com/example/upshot/internal/models"
)

// EvaluationService defines the primary port for readiness evaluation.
type EvaluationService interface {
	// EvaluateUpgrader evaluates one upgrader found by name.
	EvaluateUpgrader(ctx context.Context, req EvaluateRequest) (*UpgraderReport, error)

	// EvaluateCohort evaluates every upgrader matching the filters.
	EvaluateCohort(ctx context.Context, req CohortRequest) (*CohortReport, error)

	// Refresh recomputes and stores the derived snapshot of every upgrader.
	Refresh(ctx context.Context, asOf time.Time) (*RefreshResult, error)

	// ExportCohort writes a cohort report to a workbook.
	ExportCohort(ctx context.Context, report *CohortReport, path string) error
}

// EvaluateRequest contains parameters for a single evaluation.
type EvaluateRequest struct {
	Name    string
	AsOf    time.Time
	History bool
}

// UpgraderReport is the evaluation of one upgrader.
type UpgraderReport struct {
	AsOf       time.Time
	Match      names.Match
	Syllabus   *models.Syllabus // nil when no syllabus matched
	Evaluation evaluation.Evaluation
}

// CohortRequest contains parameters for a cohort evaluation.
type CohortRequest struct {
	Position     string
	SyllabusYear string
	AsOf         time.Time
}

// CohortReport is the evaluation of a cohort in roster order plus its overview.
type CohortReport struct {
	AsOf        time.Time
	Evaluations []evaluation.Evaluation
	Summary     cohort.Summary
}

// RefreshResult summarizes a derived-field refresh.
type RefreshResult struct {
	AsOf      time.Time
	Refreshed int
	Counts    map[models.Readiness]int
}
