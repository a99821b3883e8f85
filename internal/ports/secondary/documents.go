package secondary

import "context"

// DocumentLoader defines the secondary port for reading input documents.
type DocumentLoader interface {
	// LoadSyllabi reads one or more syllabi from a document.
	LoadSyllabi(ctx context.Context, path string) ([]*SyllabusRecord, error)

	// LoadRoster reads roster entries from a document.
	LoadRoster(ctx context.Context, path string) ([]*UpgraderRecord, error)

	// LoadCompletionSource reads one completion source.
	LoadCompletionSource(ctx context.Context, path string) (*CompletionSource, error)
}

// CompletionSource is one normalized completion source: records grouped
// under the person name as it appears in the source.
type CompletionSource struct {
	Name    string
	Path    string
	Entries []SourceEntry
}

// SourceEntry holds the completions a source lists under one name.
// CompletionRecord.UpgraderID is empty until the name is resolved.
type SourceEntry struct {
	Name        string
	Completions []*CompletionRecord
}

// Records returns the number of completion records in the source.
func (s *CompletionSource) Records() int {
	n := 0
	for _, e := range s.Entries {
		n += len(e.Completions)
	}
	return n
}
