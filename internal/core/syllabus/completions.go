// Package syllabus contains the pure requirement-graph rules: which
// requirements a completion set satisfies, which prerequisites are met, and
// whether a syllabus is structurally sound.
package syllabus

import (
	"time"

	"github.com/example/upshot/internal/models"
)

// CompletionSet indexes a person's completions by requirement key.
type CompletionSet struct {
	byKey map[string][]models.Completion
}

// NewCompletionSet indexes every completion.
func NewCompletionSet(completions []models.Completion) CompletionSet {
	set := CompletionSet{byKey: make(map[string][]models.Completion, len(completions))}
	for _, c := range completions {
		key := models.RequirementKey(c.Event)
		if key == "" {
			continue
		}
		set.byKey[key] = append(set.byKey[key], c)
	}
	return set
}

// NewCompletionSetAsOf indexes completions dated on or before asOf.
// Undated completions are always included.
func NewCompletionSetAsOf(completions []models.Completion, asOf time.Time) CompletionSet {
	return NewCompletionSet(models.CompletionsAsOf(completions, asOf))
}

// Has reports whether any completion is recorded for name.
func (s CompletionSet) Has(name string) bool {
	return len(s.byKey[models.RequirementKey(name)]) > 0
}

// Records returns the completions recorded for name.
func (s CompletionSet) Records(name string) []models.Completion {
	return s.byKey[models.RequirementKey(name)]
}

// Len returns the number of distinct completed names.
func (s CompletionSet) Len() int {
	return len(s.byKey)
}
