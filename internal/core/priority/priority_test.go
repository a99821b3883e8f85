package priority

import (
	"testing"
	"time"

	"github.com/example/upshot/internal/models"
)

func seq(n int) *int {
	return &n
}

func upgrader(events ...string) models.Upgrader {
	u := models.Upgrader{Name: "DOE, JANE A", Position: "NFO"}
	for _, e := range events {
		u.Completions = append(u.Completions, models.Completion{Event: e, Date: models.Date(2025, time.April, 2)})
	}
	return u
}

func names(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Requirement.Name
	}
	return out
}

func assertOrder(t *testing.T, got []Task, want ...string) {
	t.Helper()
	gotNames := names(got)
	if len(gotNames) != len(want) {
		t.Fatalf("order = %v, want %v", gotNames, want)
	}
	for i := range want {
		if gotNames[i] != want[i] {
			t.Fatalf("order = %v, want %v", gotNames, want)
		}
	}
}

func TestPrioritize_Ordering(t *testing.T) {
	s := &models.Syllabus{
		BaseLevel: 200,
		Requirements: []models.Requirement{
			{Name: "LOCKED", Kind: models.KindPQS, Level: 200, Prerequisites: []string{"GATE"}},
			{Name: "PLAIN", Kind: models.KindPQS, Level: 200},
			{Name: "SEQ-2", Kind: models.KindPQS, Level: 200, Sequence: seq(2)},
			{Name: "GATE", Kind: models.KindPQS, Level: 200},
			{Name: "SEQ-1", Kind: models.KindPQS, Level: 200, Sequence: seq(1)},
			{Name: "LATER", Kind: models.KindPQS, Level: 300, Prerequisites: []string{"GATE"}},
		},
	}

	tasks := Prioritize(upgrader(), s, models.WorkingLevels{PQS: 200, Events: 200})
	assertOrder(t, tasks, "GATE", "SEQ-1", "SEQ-2", "PLAIN", "LOCKED")

	if tasks[0].Unlocks != 2 {
		t.Errorf("GATE Unlocks = %d, want 2", tasks[0].Unlocks)
	}
	locked := tasks[len(tasks)-1]
	if locked.Ready {
		t.Error("LOCKED should not be ready")
	}
	if len(locked.MissingPrerequisites) != 1 || locked.MissingPrerequisites[0] != "GATE" {
		t.Errorf("MissingPrerequisites = %v, want [GATE]", locked.MissingPrerequisites)
	}
}

func TestPrioritize_PoolsUseOwnLevel(t *testing.T) {
	s := &models.Syllabus{
		BaseLevel: 200,
		Requirements: []models.Requirement{
			{Name: "PQS-200", Kind: models.KindPQS, Level: 200},
			{Name: "OTHER-200", Kind: models.KindOther, Level: 200},
			{Name: "EV-200", Kind: models.KindEvent, Level: 200},
			{Name: "EV-300", Kind: models.KindEvent, Level: 300},
			{Name: "BOARD-300", Kind: models.KindBoard, Level: 300},
		},
	}

	tasks := Prioritize(upgrader("EV-200"), s, models.WorkingLevels{PQS: 200, Events: 300})
	assertOrder(t, tasks, "PQS-200", "OTHER-200", "EV-300", "BOARD-300")
}

func TestPrioritize_SatisfiedAndWaivedExcluded(t *testing.T) {
	s := &models.Syllabus{
		BaseLevel: 200,
		Requirements: []models.Requirement{
			{Name: "DONE", Kind: models.KindPQS, Level: 200},
			{Name: "WAIVED", Kind: models.KindPQS, Level: 200, WaivedByDefault: true},
			{Name: "OPEN", Kind: models.KindPQS, Level: 200, Prerequisites: []string{"DONE", "WAIVED"}},
		},
	}

	tasks := Prioritize(upgrader("done"), s, models.WorkingLevels{PQS: 200, Events: 200})
	assertOrder(t, tasks, "OPEN")
	// Prerequisites are checked against completions only.
	if tasks[0].Ready {
		t.Error("OPEN should wait on WAIVED, which has no completion")
	}
}

func TestPrioritize_Unresolvable(t *testing.T) {
	s := &models.Syllabus{
		BaseLevel: 200,
		Requirements: []models.Requirement{
			{Name: "A", Kind: models.KindPQS, Level: 200, Prerequisites: []string{"GHOST", "B"}},
			{Name: "B", Kind: models.KindPQS, Level: 200},
		},
	}

	tasks := Prioritize(upgrader(), s, models.WorkingLevels{PQS: 200, Events: 200})
	assertOrder(t, tasks, "B", "A")

	a := tasks[1]
	if len(a.UnresolvablePrerequisites) != 1 || a.UnresolvablePrerequisites[0] != "GHOST" {
		t.Errorf("UnresolvablePrerequisites = %v, want [GHOST]", a.UnresolvablePrerequisites)
	}
	if n := Notices(tasks); len(n) != 1 || n[0] != models.NoticeUnresolvablePrerequisite {
		t.Errorf("Notices = %v, want [UNRESOLVABLE_PREREQUISITE]", n)
	}
	if r := Ready(tasks); len(r) != 1 || r[0].Requirement.Name != "B" {
		t.Errorf("Ready = %v, want [B]", names(r))
	}
}

func TestPrioritize_NilSyllabus(t *testing.T) {
	if tasks := Prioritize(upgrader(), nil, models.WorkingLevels{}); tasks != nil {
		t.Errorf("Prioritize(nil) = %v, want nil", tasks)
	}
}

func TestPrioritize_DoesNotMutate(t *testing.T) {
	u := upgrader("A")
	s := &models.Syllabus{BaseLevel: 200, Requirements: []models.Requirement{
		{Name: "A", Kind: models.KindPQS, Level: 200},
		{Name: "B", Kind: models.KindPQS, Level: 200, Prerequisites: []string{"A"}},
	}}

	Prioritize(u, s, models.WorkingLevels{PQS: 200, Events: 200})
	if len(u.Completions) != 1 || len(s.Requirements) != 2 {
		t.Error("Prioritize mutated its inputs")
	}
}
