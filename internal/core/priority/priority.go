// Package priority ranks the outstanding requirements of an upgrader into an
// advisory "do next" list.
package priority

import (
	"sort"

	"github.com/example/upshot/internal/core/syllabus"
	"github.com/example/upshot/internal/models"
)

// Task is one outstanding requirement with its scheduling context.
type Task struct {
	Requirement               models.Requirement
	Ready                     bool
	MissingPrerequisites      []string
	UnresolvablePrerequisites []string
	Unlocks                   int
}

// Prioritize ranks the unsatisfied requirements at the working level of each
// pool. Ready tasks come first, then tasks that unlock more outstanding work,
// then sequenced tasks by sequence number; remaining ties keep syllabus order.
func Prioritize(u models.Upgrader, s *models.Syllabus, lv models.WorkingLevels) []Task {
	if s == nil {
		return nil
	}
	set := syllabus.NewCompletionSet(u.Completions)

	unlocks := make(map[string]int)
	for _, r := range syllabus.Remaining(s, set) {
		for _, p := range r.Prerequisites {
			key := models.RequirementKey(p)
			if key != r.Key() {
				unlocks[key]++
			}
		}
	}

	candidates := syllabus.OutstandingAt(s, lv, set)
	tasks := make([]Task, 0, len(candidates))
	for _, r := range candidates {
		missing := syllabus.MissingPrerequisites(r, set)
		var unresolvable []string
		for _, m := range missing {
			if _, ok := s.Find(m); !ok {
				unresolvable = append(unresolvable, m)
			}
		}
		tasks = append(tasks, Task{
			Requirement:               r,
			Ready:                     len(missing) == 0,
			MissingPrerequisites:      missing,
			UnresolvablePrerequisites: unresolvable,
			Unlocks:                   unlocks[r.Key()],
		})
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return less(tasks[i], tasks[j])
	})
	return tasks
}

func less(a, b Task) bool {
	if a.Ready != b.Ready {
		return a.Ready
	}
	if a.Unlocks != b.Unlocks {
		return a.Unlocks > b.Unlocks
	}
	sa, sb := a.Requirement.Sequence, b.Requirement.Sequence
	switch {
	case sa != nil && sb != nil:
		return *sa < *sb
	case sa != nil:
		return true
	default:
		return false
	}
}

// Notices reports UnresolvablePrerequisite when any task depends on a
// requirement missing from the syllabus.
func Notices(tasks []Task) []models.Notice {
	for _, t := range tasks {
		if len(t.UnresolvablePrerequisites) > 0 {
			return []models.Notice{models.NoticeUnresolvablePrerequisite}
		}
	}
	return nil
}

// Ready returns only the tasks whose prerequisites are met.
func Ready(tasks []Task) []Task {
	var out []Task
	for _, t := range tasks {
		if t.Ready {
			out = append(out, t)
		}
	}
	return out
}
