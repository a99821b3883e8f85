package progress

import (
	"reflect"
	"testing"
	"time"

	"github.com/example/upshot/internal/models"
)

var asOf = models.Date(2025, time.June, 1)

func pilotConfig() models.EngineConfig {
	return models.EngineConfig{
		Positions: map[string]models.PositionSettings{
			"PILOT": {
				UseDerivedLevels: true,
				Deadlines: map[int]models.Curve{
					200: {TargetMonths: 6, DeadlineMonths: 12},
					300: {TargetMonths: 10, DeadlineMonths: 18},
				},
			},
		},
	}
}

func pilotSyllabus() *models.Syllabus {
	return &models.Syllabus{
		Position:  "PILOT",
		Year:      "2025",
		BaseLevel: 200,
		Requirements: []models.Requirement{
			{Name: "PQS-A", Kind: models.KindPQS, Level: 200},
			{Name: "PQS-B", Kind: models.KindPQS, Level: 200},
			{Name: "EV-A", Kind: models.KindEvent, Level: 200},
			{Name: "EV-B", Kind: models.KindEvent, Level: 200},
			{Name: "PQS-C", Kind: models.KindPQS, Level: 300},
		},
	}
}

func pilot(daysBeforeAsOf int, events ...string) models.Upgrader {
	u := models.Upgrader{
		ID:        "SMITHJOHNB",
		Name:      "SMITH, JOHN B",
		Position:  "PILOT",
		StartDate: asOf.AddDate(0, 0, -daysBeforeAsOf),
	}
	for _, e := range events {
		u.Completions = append(u.Completions, models.Completion{Event: e, Date: u.StartDate.AddDate(0, 0, 1)})
	}
	return u
}

func TestEffectiveStart(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		rounded bool
		want    time.Time
	}{
		{"early month rounds down", models.Date(2025, time.January, 10), true, models.Date(2025, time.January, 1)},
		{"fifteenth rounds down", models.Date(2025, time.January, 15), true, models.Date(2025, time.January, 1)},
		{"sixteenth rounds up", models.Date(2025, time.January, 16), true, models.Date(2025, time.February, 1)},
		{"late month rounds up", models.Date(2025, time.January, 20), true, models.Date(2025, time.February, 1)},
		{"december rolls into next year", models.Date(2024, time.December, 20), true, models.Date(2025, time.January, 1)},
		{"rounding disabled", models.Date(2025, time.January, 20), false, models.Date(2025, time.January, 20)},
		{"time of day is dropped", time.Date(2025, time.March, 3, 18, 30, 0, 0, time.UTC), false, models.Date(2025, time.March, 3)},
		{"zero start", time.Time{}, true, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveStart(tt.start, tt.rounded); !got.Equal(tt.want) {
				t.Errorf("EffectiveStart = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCompute_Readiness(t *testing.T) {
	blockedSyllabus := pilotSyllabus()
	blockedSyllabus.Requirements = append(blockedSyllabus.Requirements,
		models.Requirement{Name: "PQS-D", Kind: models.KindPQS, Level: 200, Prerequisites: []string{"PQS-X"}},
		models.Requirement{Name: "PQS-X", Kind: models.KindPQS, Level: 300},
	)

	tests := []struct {
		name     string
		upgrader models.Upgrader
		syllabus *models.Syllabus
		want     models.Readiness
		pacing   int
	}{
		{
			name:     "behind schedule when deadline has passed",
			upgrader: pilot(400, "PQS-A"),
			syllabus: pilotSyllabus(),
			want:     models.ReadinessBehindSchedule,
			pacing:   -35,
		},
		{
			name:     "blocked takes precedence even when ahead",
			upgrader: pilot(10),
			syllabus: blockedSyllabus,
			want:     models.ReadinessBlocked,
			pacing:   355,
		},
		{
			name:     "blocked takes precedence over behind",
			upgrader: pilot(400),
			syllabus: blockedSyllabus,
			want:     models.ReadinessBlocked,
			pacing:   -35,
		},
		{
			name:     "at risk past target but before deadline",
			upgrader: pilot(200, "PQS-A"),
			syllabus: pilotSyllabus(),
			want:     models.ReadinessAtRisk,
			pacing:   165,
		},
		{
			name:     "on track before target",
			upgrader: pilot(30, "PQS-A"),
			syllabus: pilotSyllabus(),
			want:     models.ReadinessOnTrack,
			pacing:   335,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Compute(tt.upgrader, tt.syllabus, pilotConfig(), asOf)
			if res.Readiness != tt.want {
				t.Errorf("Readiness = %s, want %s", res.Readiness, tt.want)
			}
			if res.PacingDays == nil {
				t.Fatal("PacingDays is nil")
			}
			if *res.PacingDays != tt.pacing {
				t.Errorf("PacingDays = %d, want %d", *res.PacingDays, tt.pacing)
			}
		})
	}
}

func TestCompute_Percent(t *testing.T) {
	res := Compute(pilot(30, "PQS-A", "EV-A", "EV-B"), pilotSyllabus(), pilotConfig(), asOf)

	if res.Levels.PQS != 200 || res.Levels.Events != 300 {
		t.Fatalf("Levels = %+v, want PQS 200 Events 300", res.Levels)
	}
	if res.PQS.Percent != 50 {
		t.Errorf("PQS.Percent = %v, want 50", res.PQS.Percent)
	}
	if res.Events.Total != 0 || res.Events.Percent != 0 || res.Events.Computable() {
		t.Errorf("Events = %+v, want empty non-computable pool", res.Events)
	}
}

func TestCompute_MissingSyllabus(t *testing.T) {
	res := Compute(pilot(30, "PQS-A"), nil, pilotConfig(), asOf)

	if res.Readiness != models.ReadinessUnknown {
		t.Errorf("Readiness = %s, want UNKNOWN", res.Readiness)
	}
	if !res.HasNotice(models.NoticeMissingSyllabus) {
		t.Errorf("Notices = %v, want MISSING_SYLLABUS", res.Notices)
	}
	if res.ProjectedComplete != nil {
		t.Error("expected no projection without a syllabus")
	}
	if res.PQS.Percent != 0 || res.Events.Percent != 0 {
		t.Errorf("percents = %v/%v, want 0/0", res.PQS.Percent, res.Events.Percent)
	}
}

func TestCompute_NoCurve(t *testing.T) {
	u := pilot(30, "PQS-A")
	u.Position = "EWO"

	res := Compute(u, pilotSyllabus(), pilotConfig(), asOf)
	if res.Readiness != models.ReadinessUnknown {
		t.Errorf("Readiness = %s, want UNKNOWN", res.Readiness)
	}
	if !res.HasNotice(models.NoticeNoCurve) {
		t.Errorf("Notices = %v, want NO_CURVE", res.Notices)
	}
}

func TestCompute_SyllabusCurveFallback(t *testing.T) {
	s := pilotSyllabus()
	s.Curves = map[int]models.Curve{200: {TargetMonths: 1, DeadlineMonths: 2}}
	u := pilot(45, "PQS-A")
	u.Position = "EWO"

	res := Compute(u, s, pilotConfig(), asOf)
	if res.Curve == nil || res.Curve.DeadlineMonths != 2 {
		t.Fatalf("Curve = %v, want syllabus curve", res.Curve)
	}
	if res.Readiness != models.ReadinessAtRisk {
		t.Errorf("Readiness = %s, want AT_RISK", res.Readiness)
	}
}

func TestCompute_Finished(t *testing.T) {
	res := Compute(pilot(500, "PQS-A", "PQS-B", "EV-A", "EV-B", "PQS-C"), pilotSyllabus(), pilotConfig(), asOf)

	if !res.Finished {
		t.Fatal("expected finished")
	}
	if res.Readiness != models.ReadinessOnTrack {
		t.Errorf("Readiness = %s, want ON_TRACK", res.Readiness)
	}
	if res.HasNotice(models.NoticeNoCurve) {
		t.Error("finished upgrader should not raise NO_CURVE")
	}
}

func TestCompute_Projection(t *testing.T) {
	tests := []struct {
		name     string
		upgrader models.Upgrader
		asOf     time.Time
		wantDays int
		wantNil  bool
	}{
		{
			name:     "one of four complete",
			upgrader: pilot(100, "PQS-A"),
			asOf:     asOf,
			wantDays: 400,
		},
		{
			name:     "half complete",
			upgrader: pilot(100, "PQS-A", "EV-A"),
			asOf:     asOf,
			wantDays: 200,
		},
		{
			name:     "zero fraction is not computable",
			upgrader: pilot(100),
			asOf:     asOf,
			wantNil:  true,
		},
		{
			name:     "as-of before start is not computable",
			upgrader: pilot(100, "PQS-A"),
			asOf:     asOf.AddDate(0, 0, -200),
			wantNil:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Compute(tt.upgrader, pilotSyllabus(), pilotConfig(), tt.asOf)
			if tt.wantNil {
				if res.ProjectedComplete != nil {
					t.Errorf("ProjectedComplete = %s, want nil", res.ProjectedComplete)
				}
				if !res.HasNotice(models.NoticeProjectionNotComputable) {
					t.Errorf("Notices = %v, want PROJECTION_NOT_COMPUTABLE", res.Notices)
				}
				return
			}
			if res.ProjectedComplete == nil {
				t.Fatal("ProjectedComplete is nil")
			}
			want := tt.upgrader.StartDate.AddDate(0, 0, tt.wantDays)
			if !res.ProjectedComplete.Equal(want) {
				t.Errorf("ProjectedComplete = %s, want %s", res.ProjectedComplete, want)
			}
		})
	}
}

func TestCompute_Waiver(t *testing.T) {
	tests := []struct {
		name          string
		days          int
		wantReadiness models.Readiness
		wantWaived    models.Readiness
	}{
		{"target missed", 200, models.ReadinessAtRisk, models.ReadinessOnTrack},
		{"deadline missed within extension", 400, models.ReadinessBehindSchedule, models.ReadinessOnTrack},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := pilot(tt.days)
			plain := Compute(u, pilotSyllabus(), pilotConfig(), asOf)
			u.OnWaiver = true
			waived := Compute(u, pilotSyllabus(), pilotConfig(), asOf)

			if plain.Readiness != tt.wantReadiness {
				t.Errorf("Readiness = %s, want %s", plain.Readiness, tt.wantReadiness)
			}
			if waived.Readiness != tt.wantWaived {
				t.Errorf("waived Readiness = %s, want %s", waived.Readiness, tt.wantWaived)
			}
			if waived.TargetPacingDays != nil {
				t.Errorf("waived TargetPacingDays = %d, want nil", *waived.TargetPacingDays)
			}
			if waived.TargetDate == nil {
				t.Error("waived TargetDate should still be reported")
			}
			if got := *waived.PacingDays - *plain.PacingDays; got != 90 {
				t.Errorf("waiver extended pacing by %d days, want 90", got)
			}
			if got := models.DaysBetween(*plain.DeadlineDate, *waived.DeadlineDate); got != 90 {
				t.Errorf("waiver moved deadline by %d days, want 90", got)
			}
		})
	}
}

func TestCompute_IgnoresCompletionsAfterAsOf(t *testing.T) {
	u := pilot(100, "EV-A")
	later := asOf.AddDate(0, 0, 1)
	u.Completions = append(u.Completions,
		models.Completion{Event: "PQS-A", Date: later},
		models.Completion{Event: "PQS-B", Date: later},
		models.Completion{Event: "EV-B"},
	)

	res := Compute(u, pilotSyllabus(), pilotConfig(), asOf)
	if res.Levels.PQS != 200 {
		t.Errorf("PQS level = %d, want 200", res.Levels.PQS)
	}
	if res.PQS.Satisfied != 0 || res.PQS.Percent != 0 {
		t.Errorf("PQS = %+v, want nothing satisfied", res.PQS)
	}
	if res.Levels.Events != 300 {
		t.Errorf("Events level = %d, want 300 from dated and undated events", res.Levels.Events)
	}

	next := Compute(u, pilotSyllabus(), pilotConfig(), later)
	if next.Levels.PQS != 300 {
		t.Errorf("PQS level the next day = %d, want 300", next.Levels.PQS)
	}
	if len(u.Completions) != 4 {
		t.Errorf("Compute modified the caller's completions: %d", len(u.Completions))
	}
}

func TestCompute_Idempotent(t *testing.T) {
	u := pilot(200, "PQS-A", "EV-A")
	s := pilotSyllabus()

	first := Compute(u, s, pilotConfig(), asOf)
	second := Compute(u, s, pilotConfig(), asOf)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Compute is not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestCompute_MonotonicPercent(t *testing.T) {
	cfg := pilotConfig()
	settings := cfg.Positions["PILOT"]
	settings.UseDerivedLevels = false
	cfg.Positions["PILOT"] = settings

	u := pilot(60)
	u.TargetLevel = 200
	prev := -1.0
	for _, e := range []string{"PQS-A", "EV-A", "PQS-B", "EV-B"} {
		u.Completions = append(u.Completions, models.Completion{Event: e, Date: asOf})
		res := Compute(u, pilotSyllabus(), cfg, asOf)
		if res.PQS.Percent < prev {
			t.Fatalf("after %s PQS percent dropped from %v to %v", e, prev, res.PQS.Percent)
		}
		prev = res.PQS.Percent
	}
	if prev != 100 {
		t.Errorf("final PQS percent = %v, want 100", prev)
	}
}

func TestResult_Derived(t *testing.T) {
	res := Compute(pilot(200, "PQS-A"), pilotSyllabus(), pilotConfig(), asOf)
	at := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

	d := res.Derived(at)
	if d.PQSLevel != res.Levels.PQS || d.EventsLevel != res.Levels.Events {
		t.Errorf("levels = %d/%d, want %d/%d", d.PQSLevel, d.EventsLevel, res.Levels.PQS, res.Levels.Events)
	}
	if d.Readiness != res.Readiness {
		t.Errorf("Readiness = %s, want %s", d.Readiness, res.Readiness)
	}
	if !d.ComputedAt.Equal(at) {
		t.Errorf("ComputedAt = %s, want %s", d.ComputedAt, at)
	}
	if d.PacingDays == nil || *d.PacingDays != *res.PacingDays {
		t.Errorf("PacingDays = %v, want %d", d.PacingDays, *res.PacingDays)
	}
}
