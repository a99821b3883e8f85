package primary

import "context"

// ImportService defines the primary port for completion imports.
type ImportService interface {
	// ImportSources merges one or more completion sources into the roster as a single data set.
	ImportSources(ctx context.Context, req ImportRequest) (*ImportResult, error)
}

// ImportRequest contains parameters for a completion import.
type ImportRequest struct {
	Name  string // data set name; defaults to the source names
	Paths []string
}

// ImportResult summarizes a completion import.
type ImportResult struct {
	DataSetID string
	Name      string
	Sources   int
	Records   int
	Matched   int
	Added     int
	Replaced  int
	Skipped   int
	Updated   []string // upgrader IDs whose completions changed
	Unmatched []UnmatchedName
}

// UnmatchedName is a source name that did not resolve to any upgrader.
type UnmatchedName struct {
	Name    string
	Closest string
	Score   float64
	Records int
}
