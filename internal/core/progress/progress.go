package progress

import (
	"math"
	"time"

	"github.com/example/upshot/internal/core/levels"
	"github.com/example/upshot/internal/core/syllabus"
	"github.com/example/upshot/internal/models"
)

// PoolProgress is the completion state of one pool at its working level.
// Total == 0 means the pool is empty and the percent is not computable.
type PoolProgress struct {
	Level     int
	Satisfied int
	Total     int
	Percent   float64
}

// Computable reports whether the pool had requirements to measure.
func (p PoolProgress) Computable() bool {
	return p.Total > 0
}

// Result is the full progress snapshot for one upgrader.
type Result struct {
	Levels            models.WorkingLevels
	PQS               PoolProgress
	Events            PoolProgress
	EffectiveStart    time.Time
	Curve             *models.Curve
	TargetDate        *time.Time
	DeadlineDate      *time.Time
	TargetPacingDays  *int
	PacingDays        *int
	Readiness         models.Readiness
	Stalled           []string
	Finished          bool
	ProjectedComplete *time.Time
	Notices           []models.Notice
}

// HasNotice reports whether n was raised.
func (r Result) HasNotice(n models.Notice) bool {
	for _, got := range r.Notices {
		if got == n {
			return true
		}
	}
	return false
}

// Derived converts the result into the cached snapshot stored on an upgrader.
func (r Result) Derived(computedAt time.Time) models.DerivedFields {
	return models.DerivedFields{
		PQSLevel:          r.Levels.PQS,
		EventsLevel:       r.Levels.Events,
		PQSPercent:        r.PQS.Percent,
		EventsPercent:     r.Events.Percent,
		Readiness:         r.Readiness,
		PacingDays:        r.PacingDays,
		TargetPacingDays:  r.TargetPacingDays,
		ProjectedComplete: r.ProjectedComplete,
		ComputedAt:        computedAt,
	}
}

// waiverExtensionDays is added to the deadline of an upgrader on waiver.
const waiverExtensionDays = 90

// Compute evaluates progress for u against s as of asOf. Completions dated
// after asOf are ignored. An upgrader on waiver gets a later deadline and no
// target pacing.
// Readiness precedence:
// - Blocked when an outstanding requirement has prerequisites and none are met
// - BehindSchedule when deadline pacing is negative
// - AtRisk when target pacing is negative
// - OnTrack when a syllabus and curve exist
// - Unknown otherwise
func Compute(u models.Upgrader, s *models.Syllabus, cfg models.EngineConfig, asOf time.Time) Result {
	asOf = models.DateOf(asOf)
	u = u.AsOf(asOf)
	res := Result{
		Readiness:      models.ReadinessUnknown,
		EffectiveStart: EffectiveStart(u.StartDate, cfg.UseRoundedTrainingStartDate),
	}

	if s == nil {
		res.Notices = append(res.Notices, models.NoticeMissingSyllabus, models.NoticeProjectionNotComputable)
		return res
	}

	set := syllabus.NewCompletionSet(u.Completions)
	res.Levels = levels.ResolveFor(u, s, cfg)
	res.PQS = poolProgress(s, models.PoolPQS, res.Levels.PQS, set)
	res.Events = poolProgress(s, models.PoolEvents, res.Levels.Events, set)

	for _, r := range syllabus.OutstandingAt(s, res.Levels, set) {
		if syllabus.IsStalled(r, set) {
			res.Stalled = append(res.Stalled, r.Name)
		}
	}
	res.Finished = len(s.Requirements) > 0 && len(syllabus.Remaining(s, set)) == 0

	if curve, ok := cfg.CurveFor(u.Position, s, res.Levels.PQS); ok && !res.EffectiveStart.IsZero() {
		c := curve
		res.Curve = &c
		target := models.AddMonths(res.EffectiveStart, curve.TargetMonths)
		deadline := models.AddMonths(res.EffectiveStart, curve.DeadlineMonths)
		if u.OnWaiver {
			deadline = deadline.AddDate(0, 0, waiverExtensionDays)
		}
		deadlinePacing := models.DaysBetween(asOf, deadline)
		res.TargetDate = &target
		res.DeadlineDate = &deadline
		res.PacingDays = &deadlinePacing
		if !u.OnWaiver {
			targetPacing := models.DaysBetween(asOf, target)
			res.TargetPacingDays = &targetPacing
		}
	} else if !res.Finished {
		res.Notices = append(res.Notices, models.NoticeNoCurve)
	}

	res.Readiness = classify(res)
	res.ProjectedComplete = project(res, asOf)
	if res.ProjectedComplete == nil {
		res.Notices = append(res.Notices, models.NoticeProjectionNotComputable)
	}
	return res
}

func poolProgress(s *models.Syllabus, pool models.Pool, level int, set syllabus.CompletionSet) PoolProgress {
	reqs := syllabus.PoolAt(s, pool, level)
	p := PoolProgress{
		Level:     level,
		Satisfied: syllabus.CountSatisfied(reqs, set),
		Total:     len(reqs),
	}
	if p.Total > 0 {
		p.Percent = float64(p.Satisfied) / float64(p.Total) * 100
	}
	return p
}

func classify(res Result) models.Readiness {
	switch {
	case len(res.Stalled) > 0:
		return models.ReadinessBlocked
	case res.Finished:
		return models.ReadinessOnTrack
	case res.PacingDays == nil:
		return models.ReadinessUnknown
	case *res.PacingDays < 0:
		return models.ReadinessBehindSchedule
	case res.TargetPacingDays != nil && *res.TargetPacingDays < 0:
		return models.ReadinessAtRisk
	default:
		return models.ReadinessOnTrack
	}
}

// project extrapolates linearly from the fraction complete across both pools
// at their working levels. It returns nil when the fraction is zero or the
// evaluation date precedes the start.
func project(res Result, asOf time.Time) *time.Time {
	if res.EffectiveStart.IsZero() {
		return nil
	}
	total := res.PQS.Total + res.Events.Total
	satisfied := res.PQS.Satisfied + res.Events.Satisfied
	if total == 0 || satisfied == 0 {
		return nil
	}
	elapsed := models.DaysBetween(res.EffectiveStart, asOf)
	if elapsed < 0 {
		return nil
	}
	fraction := float64(satisfied) / float64(total)
	days := int(math.Round(float64(elapsed) / fraction))
	projected := res.EffectiveStart.AddDate(0, 0, days)
	return &projected
}
