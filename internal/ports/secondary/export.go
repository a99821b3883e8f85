package secondary

import "context"

// CohortExporter defines the secondary port for writing cohort reports to a file.
type CohortExporter interface {
	// Export writes the report to path, overwriting any existing file.
	Export(ctx context.Context, path string, report *CohortExport) error
}

// CohortExport is the flattened cohort report handed to exporters.
type CohortExport struct {
	AsOf        string
	Total       int
	HealthScore float64
	Counts      []ReadinessCount
	Rows        []CohortExportRow // priority order

	PQSToMeetDeadline    int
	EventsToMeetDeadline int
	PriorityTasks        []TaskCount
}

// TaskCount is a ready requirement and how many upgraders share it.
type TaskCount struct {
	Name  string
	Count int
}

// ReadinessCount is the number of upgraders in one readiness state.
type ReadinessCount struct {
	Readiness string
	Count     int
}

// CohortExportRow is one upgrader line of the cohort report.
type CohortExportRow struct {
	ID                string
	Name              string
	Rank              string
	Position          string
	PQSLevel          int
	EventsLevel       int
	PQSPercent        float64
	EventsPercent     float64
	Readiness         string
	PacingDays        *int
	TargetPacingDays  *int
	ProjectedComplete string
	Score             float64
	NextTasks         []string
}
