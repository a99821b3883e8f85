// Package cohort aggregates per-upgrader evaluations into a track overview.
package cohort

import (
	"math"
	"sort"

	"github.com/example/upshot/internal/core/evaluation"
	"github.com/example/upshot/internal/core/progress"
	"github.com/example/upshot/internal/models"
)

const (
	// blockedPenalty is added to the priority score of a blocked upgrader.
	blockedPenalty = 1000
	// watchListSize caps the attention list kept per working level.
	watchListSize = 5
	// priorityTaskLimit caps the cohort-wide ready task list.
	priorityTaskLimit = 10
)

// Ranked is one upgrader's place in the cohort priority ranking.
type Ranked struct {
	ID         string
	Name       string
	Level      int
	Readiness  models.Readiness
	PacingDays *int
	Score      float64
}

// TaskCount is a requirement and how many upgraders can attempt it now.
type TaskCount struct {
	Name  string
	Count int
}

// Summary is the overview of one cohort or track.
type Summary struct {
	Total       int
	Counts      map[models.Readiness]int
	ByLevel     map[int]int
	HealthScore float64
	Ranking     []Ranked
	WatchList   map[int][]Ranked

	// Requirements still unsatisfied at each upgrader's working level.
	PQSToMeetDeadline    int
	EventsToMeetDeadline int
	// PriorityTasks are the ready tasks shared by the most upgraders.
	PriorityTasks []TaskCount
}

// Summarize builds the overview. Evaluations are expected in roster order;
// equal priority scores keep that order.
func Summarize(evals []evaluation.Evaluation) Summary {
	sum := Summary{
		Total:     len(evals),
		Counts:    make(map[models.Readiness]int, len(models.AllReadiness())),
		ByLevel:   make(map[int]int),
		WatchList: make(map[int][]Ranked),
	}
	for _, r := range models.AllReadiness() {
		sum.Counts[r] = 0
	}
	if len(evals) == 0 {
		return sum
	}

	for _, ev := range evals {
		sum.Counts[ev.Readiness()]++
		sum.ByLevel[ev.Progress.Levels.PQS]++
		sum.Ranking = append(sum.Ranking, rank(ev))
		sum.PQSToMeetDeadline += outstanding(ev.Progress.PQS)
		sum.EventsToMeetDeadline += outstanding(ev.Progress.Events)
	}
	sum.HealthScore = HealthScore(sum.Counts, sum.Total)
	sum.PriorityTasks = PriorityTasks(evals, priorityTaskLimit)

	sort.SliceStable(sum.Ranking, func(i, j int) bool {
		return sum.Ranking[i].Score > sum.Ranking[j].Score
	})

	attention := make([]Ranked, 0, len(sum.Ranking))
	for _, r := range sum.Ranking {
		switch r.Readiness {
		case models.ReadinessAtRisk, models.ReadinessBehindSchedule, models.ReadinessBlocked:
			attention = append(attention, r)
		}
	}
	sort.SliceStable(attention, func(i, j int) bool {
		return pacingOrZero(attention[i]) < pacingOrZero(attention[j])
	})
	for _, r := range attention {
		if len(sum.WatchList[r.Level]) < watchListSize {
			sum.WatchList[r.Level] = append(sum.WatchList[r.Level], r)
		}
	}
	return sum
}

// HealthScore maps readiness shares onto 0-100. On-track counts fully and
// at-risk half; behind and blocked subtract 0.75 and 1.5.
func HealthScore(counts map[models.Readiness]int, total int) float64 {
	if total == 0 {
		return 0
	}
	share := func(r models.Readiness) float64 {
		return float64(counts[r]) / float64(total)
	}
	raw := 1.0*share(models.ReadinessOnTrack) +
		0.5*share(models.ReadinessAtRisk) -
		0.75*share(models.ReadinessBehindSchedule) -
		1.5*share(models.ReadinessBlocked)
	return math.Max(0, math.Min(100, (raw+1.5)/2.5*100))
}

// PriorityTasks counts the ready tasks across evals and returns the limit most
// frequent. Equal counts keep the order in which tasks were first seen.
func PriorityTasks(evals []evaluation.Evaluation, limit int) []TaskCount {
	index := make(map[string]int)
	var out []TaskCount
	for _, ev := range evals {
		for _, task := range ev.Tasks {
			if !task.Ready {
				continue
			}
			key := task.Requirement.Key()
			if i, ok := index[key]; ok {
				out[i].Count++
				continue
			}
			index[key] = len(out)
			out = append(out, TaskCount{Name: task.Requirement.Name, Count: 1})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func outstanding(p progress.PoolProgress) int {
	return p.Total - p.Satisfied
}

func rank(ev evaluation.Evaluation) Ranked {
	r := Ranked{
		ID:         ev.Upgrader.ID,
		Name:       ev.Upgrader.Label(),
		Level:      ev.Progress.Levels.PQS,
		Readiness:  ev.Readiness(),
		PacingDays: ev.Progress.PacingDays,
	}
	if p := ev.Progress.PacingDays; p != nil && *p < 0 {
		r.Score += float64(-*p)
	}
	if r.Readiness == models.ReadinessBlocked {
		r.Score += blockedPenalty
	}
	return r
}

func pacingOrZero(r Ranked) int {
	if r.PacingDays == nil {
		return 0
	}
	return *r.PacingDays
}
