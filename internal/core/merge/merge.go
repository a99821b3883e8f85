// Package merge folds completions from a newly processed source into an
// upgrader's existing completion set.
package merge

import (
	"time"

	"github.com/example/upshot/internal/models"
)

// Result describes the outcome of a merge.
type Result struct {
	Upgrader models.Upgrader
	Added    int
	Replaced int
	Skipped  int
}

type key struct {
	event string
	date  time.Time
}

func keyOf(c models.Completion) key {
	return key{event: models.RequirementKey(c.Event), date: models.DateOf(c.Date)}
}

// Completions appends incoming to the completions of u and returns the
// updated upgrader. A record with the same requirement name and date as an
// existing one replaces it in place, so the most recent import wins.
// Records without an event name are skipped. u itself is not modified.
func Completions(u models.Upgrader, incoming []models.Completion) Result {
	out := u.Clone()
	res := Result{}

	pos := make(map[key]int, len(out.Completions))
	for i, c := range out.Completions {
		pos[keyOf(c)] = i
	}

	for _, c := range incoming {
		if models.RequirementKey(c.Event) == "" {
			res.Skipped++
			continue
		}
		c.Date = models.DateOf(c.Date)
		k := keyOf(c)
		if i, ok := pos[k]; ok {
			out.Completions[i] = c
			res.Replaced++
			continue
		}
		pos[k] = len(out.Completions)
		out.Completions = append(out.Completions, c)
		res.Added++
	}

	res.Upgrader = out
	return res
}
