package progress

import (
	"sort"
	"time"

	"github.com/example/upshot/internal/core/syllabus"
	"github.com/example/upshot/internal/models"
)

// Point is one step of the progress history.
type Point struct {
	Date            time.Time
	ElapsedDays     int
	PQSPercent      float64
	EventsPercent   float64
	TargetPercent   float64
	DeadlinePercent float64
}

// Series is a chronological percent-complete history for one upgrader.
type Series struct {
	Start  time.Time
	Curve  *models.Curve
	Points []Point
}

// History replays the completions of u in date order and records the percent
// complete of each pool after every distinct completion date. The scope is
// fixed to pool requirements at or below the given working levels so the
// series never decreases. Undated completions count from the start.
func History(u models.Upgrader, s *models.Syllabus, cfg models.EngineConfig, lv models.WorkingLevels) Series {
	series := Series{Start: EffectiveStart(u.StartDate, cfg.UseRoundedTrainingStartDate)}
	if s == nil {
		return series
	}
	if curve, ok := cfg.CurveFor(u.Position, s, lv.PQS); ok {
		c := curve
		series.Curve = &c
	}

	pqsScope := scope(s, models.PoolPQS, lv.PQS)
	eventsScope := scope(s, models.PoolEvents, lv.Events)

	dates := completionDates(u.Completions)
	if !series.Start.IsZero() && (len(dates) == 0 || series.Start.Before(dates[0])) {
		dates = append([]time.Time{series.Start}, dates...)
	}

	for _, d := range dates {
		set := syllabus.NewCompletionSetAsOf(u.Completions, d)
		p := Point{
			Date:          d,
			PQSPercent:    percent(pqsScope, set),
			EventsPercent: percent(eventsScope, set),
		}
		if !series.Start.IsZero() {
			p.ElapsedDays = models.DaysBetween(series.Start, d)
		}
		if series.Curve != nil {
			p.TargetPercent = curvePercent(p.ElapsedDays, series.Curve.TargetMonths)
			p.DeadlinePercent = curvePercent(p.ElapsedDays, series.Curve.DeadlineMonths)
		}
		series.Points = append(series.Points, p)
	}
	return series
}

func scope(s *models.Syllabus, pool models.Pool, level int) []models.Requirement {
	var out []models.Requirement
	for _, r := range s.Requirements {
		if r.Kind.Pool() == pool && r.Level <= level {
			out = append(out, r)
		}
	}
	return out
}

func completionDates(completions []models.Completion) []time.Time {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, c := range completions {
		if !c.HasDate() {
			continue
		}
		d := models.DateOf(c.Date)
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func percent(reqs []models.Requirement, set syllabus.CompletionSet) float64 {
	if len(reqs) == 0 {
		return 0
	}
	return float64(syllabus.CountSatisfied(reqs, set)) / float64(len(reqs)) * 100
}

// curvePercent is the linear share of a curve elapsed after days, capped at 100.
func curvePercent(days, months int) float64 {
	if months <= 0 || days <= 0 {
		return 0
	}
	pct := float64(days) / models.AverageDaysPerMonth / float64(months) * 100
	if pct > 100 {
		return 100
	}
	return pct
}
