// Package evaluation composes levels, progress, prioritization and history
// into one per-upgrader snapshot.
package evaluation

import (
	"time"

	"github.com/example/upshot/internal/core/priority"
	"github.com/example/upshot/internal/core/progress"
	"github.com/example/upshot/internal/models"
)

// Options selects the optional parts of an evaluation.
type Options struct {
	History bool
}

// Evaluation is everything the engine reports for one upgrader.
type Evaluation struct {
	Upgrader models.Upgrader
	Progress progress.Result
	Tasks    []priority.Task
	History  *progress.Series
	Notices  []models.Notice
}

// Evaluate runs the engine for u. s may be nil when no syllabus matches the
// upgrader's position and year. Completions dated after asOf are ignored by
// every part of the evaluation.
func Evaluate(u models.Upgrader, s *models.Syllabus, cfg models.EngineConfig, asOf time.Time, opts Options) Evaluation {
	ev := Evaluation{
		Upgrader: u,
		Progress: progress.Compute(u, s, cfg, asOf),
	}
	known := u.AsOf(models.DateOf(asOf))
	ev.Tasks = priority.Prioritize(known, s, ev.Progress.Levels)
	if opts.History && s != nil {
		series := progress.History(known, s, cfg, ev.Progress.Levels)
		ev.History = &series
	}

	ev.Notices = append(ev.Notices, ev.Progress.Notices...)
	ev.Notices = append(ev.Notices, priority.Notices(ev.Tasks)...)
	return ev
}

// Snapshot returns the upgrader with a freshly computed derived block.
func (e Evaluation) Snapshot(computedAt time.Time) models.Upgrader {
	u := e.Upgrader.Clone()
	d := e.Progress.Derived(computedAt)
	u.Derived = &d
	return u
}

// Readiness is a shorthand for the progress readiness.
func (e Evaluation) Readiness() models.Readiness {
	return e.Progress.Readiness
}

// HasNotice reports whether the evaluation raised n.
func (e Evaluation) HasNotice(n models.Notice) bool {
	for _, got := range e.Notices {
		if got == n {
			return true
		}
	}
	return false
}
