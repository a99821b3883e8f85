package primary

import (
	"context"

	"github.com/example/upshot/internal/core/syllabus"
	"github.com/example/upshot/internal/models"
)

// SyllabusService defines the primary port for syllabus operations.
type SyllabusService interface {
	// ImportSyllabi validates and stores every syllabus in a document. Nothing
	// is stored when any syllabus has error-level issues.
	ImportSyllabi(ctx context.Context, path string) ([]*SyllabusCheck, error)

	// ValidateSyllabi validates every syllabus in a document without storing it.
	ValidateSyllabi(ctx context.Context, path string) ([]*SyllabusCheck, error)

	// ListSyllabi retrieves stored syllabus headers.
	ListSyllabi(ctx context.Context) ([]*SyllabusSummary, error)

	// GetSyllabus retrieves a stored syllabus by position and year.
	GetSyllabus(ctx context.Context, position, year string) (*SyllabusDetail, error)
}

// SyllabusCheck pairs a parsed syllabus with its validation report.
type SyllabusCheck struct {
	Syllabus *models.Syllabus
	Report   syllabus.Report
	// KindWarnings lists requirement kinds that were not recognized and fell back to OTHER.
	KindWarnings []string
}

// SyllabusSummary is a stored syllabus header.
type SyllabusSummary struct {
	ID           string
	Position     string
	Year         string
	DisplayName  string
	BaseLevel    int
	Requirements int
	UpdatedAt    string
}

// SyllabusDetail is a full stored syllabus with the issues recorded at import.
type SyllabusDetail struct {
	Syllabus *models.Syllabus
	Issues   []syllabus.Issue
}
