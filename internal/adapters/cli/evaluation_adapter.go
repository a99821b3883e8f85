package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/example/upshot/internal/core/cohort"
	"github.com/example/upshot/internal/core/evaluation"
	"github.com/example/upshot/internal/models"
	"github.com/example/upshot/internal/ports/primary"
)

// EvaluationAdapter translates CLI operations to EvaluationService calls.
type EvaluationAdapter struct {
	service primary.EvaluationService
	out     io.Writer
}

// NewEvaluationAdapter creates a new EvaluationAdapter with the given service.
func NewEvaluationAdapter(service primary.EvaluationService, out io.Writer) *EvaluationAdapter {
	return &EvaluationAdapter{
		service: service,
		out:     out,
	}
}

// Status prints the readiness report for one upgrader.
func (a *EvaluationAdapter) Status(ctx context.Context, name string, asOf time.Time, history bool) error {
	report, err := a.service.EvaluateUpgrader(ctx, primary.EvaluateRequest{Name: name, AsOf: asOf, History: history})
	if err != nil {
		return err
	}
	ev := report.Evaluation
	p := ev.Progress
	u := ev.Upgrader

	fmt.Fprintf(a.out, "\n%s (%s)  %s %s  as of %s\n", u.Label(), u.ID, u.Position, u.SyllabusYear, models.FormatDate(report.AsOf))
	if !report.Match.Exact {
		fmt.Fprintln(a.out, warn("matched %q with score %.3f", name, report.Match.Score))
	}
	fmt.Fprintln(a.out, rule)
	fmt.Fprintf(a.out, "Readiness:  %s\n", readinessLabel(p.Readiness, 0))
	fmt.Fprintf(a.out, "PQS:        %d  %s (%d/%d)\n", p.Levels.PQS, percent(p.PQS.Percent), p.PQS.Satisfied, p.PQS.Total)
	fmt.Fprintf(a.out, "Events:     %d  %s (%d/%d)\n", p.Levels.Events, percent(p.Events.Percent), p.Events.Satisfied, p.Events.Total)
	fmt.Fprintf(a.out, "Start:      %s\n", date(&p.EffectiveStart))
	fmt.Fprintf(a.out, "Target:     %s (%s)\n", date(p.TargetDate), pacing(p.TargetPacingDays))
	fmt.Fprintf(a.out, "Deadline:   %s (%s)\n", date(p.DeadlineDate), pacing(p.PacingDays))
	if u.OnWaiver {
		fmt.Fprintln(a.out, "Waiver:     deadline extended, target pacing suppressed")
	}
	fmt.Fprintf(a.out, "Projected:  %s\n", date(p.ProjectedComplete))
	if len(p.Stalled) > 0 {
		fmt.Fprintf(a.out, "Stalled:    %s\n", strings.Join(p.Stalled, ", "))
	}
	for _, n := range ev.Notices {
		fmt.Fprintln(a.out, warn("%s", n))
	}

	a.printTasks(ev)
	if ev.History != nil {
		a.printHistory(ev)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Cohort prints the track overview and optionally exports it to a workbook.
func (a *EvaluationAdapter) Cohort(ctx context.Context, position string, asOf time.Time, xlsxPath string) error {
	report, err := a.service.EvaluateCohort(ctx, primary.CohortRequest{Position: position, AsOf: asOf})
	if err != nil {
		return err
	}
	sum := report.Summary

	if sum.Total == 0 {
		fmt.Fprintln(a.out, "No upgraders found")
		return nil
	}

	fmt.Fprintf(a.out, "\nCohort as of %s: %d upgraders, health %.1f\n", models.FormatDate(report.AsOf), sum.Total, sum.HealthScore)
	fmt.Fprintln(a.out, rule)
	for _, r := range models.AllReadiness() {
		fmt.Fprintf(a.out, "  %s %d\n", readinessLabel(r, 16), sum.Counts[r])
	}
	fmt.Fprintf(a.out, "To meet deadline: %d PQS, %d events\n", sum.PQSToMeetDeadline, sum.EventsToMeetDeadline)

	fmt.Fprintf(a.out, "\n%-4s %-22s %-6s %-16s %-8s %s\n", "#", "UPGRADER", "LEVEL", "READINESS", "PACING", "SCORE")
	fmt.Fprintln(a.out, rule)
	for i, r := range sum.Ranking {
		fmt.Fprintf(a.out, "%-4d %-22s %-6d %s %-8s %.0f\n", i+1, r.Name, r.Level, readinessLabel(r.Readiness, 16), pacing(r.PacingDays), r.Score)
	}

	a.printWatchList(sum)
	if len(sum.PriorityTasks) > 0 {
		fmt.Fprintln(a.out, "\nPriority tasks:")
		for _, t := range sum.PriorityTasks {
			fmt.Fprintf(a.out, "  %-20s %d\n", t.Name, t.Count)
		}
	}

	if xlsxPath != "" {
		if err := a.service.ExportCohort(ctx, report, xlsxPath); err != nil {
			return err
		}
		fmt.Fprintln(a.out, ok("Exported cohort to %s", xlsxPath))
	}
	fmt.Fprintln(a.out)
	return nil
}

// Refresh recomputes and stores derived fields for the whole roster.
func (a *EvaluationAdapter) Refresh(ctx context.Context, asOf time.Time) error {
	result, err := a.service.Refresh(ctx, asOf)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, ok("Refreshed %d upgraders as of %s", result.Refreshed, models.FormatDate(result.AsOf)))
	for _, r := range models.AllReadiness() {
		if n := result.Counts[r]; n > 0 {
			fmt.Fprintf(a.out, "  %s %d\n", readinessLabel(r, 16), n)
		}
	}
	return nil
}

func (a *EvaluationAdapter) printTasks(ev evaluation.Evaluation) {
	if len(ev.Tasks) == 0 {
		return
	}
	fmt.Fprintf(a.out, "\nNext (%d):\n", len(ev.Tasks))
	for _, t := range ev.Tasks {
		mark := ok("%s", t.Requirement.Name)
		if !t.Ready {
			mark = warn("%s waits on %s", t.Requirement.Name, strings.Join(t.MissingPrerequisites, ", "))
		}
		extra := ""
		if t.Unlocks > 0 {
			extra = fmt.Sprintf("  unlocks %d", t.Unlocks)
		}
		fmt.Fprintf(a.out, "  %-6s %d  %s%s\n", t.Requirement.Kind, t.Requirement.Level, mark, extra)
	}
}

func (a *EvaluationAdapter) printHistory(ev evaluation.Evaluation) {
	if len(ev.History.Points) == 0 {
		return
	}
	fmt.Fprintf(a.out, "\n%-11s %-6s %-6s %-6s %-8s %s\n", "DATE", "DAYS", "PQS", "EVENTS", "TARGET", "DEADLINE")
	for _, pt := range ev.History.Points {
		d := pt.Date
		fmt.Fprintf(a.out, "%-11s %-6d %-6s %-6s %-8s %s\n",
			date(&d), pt.ElapsedDays, percent(pt.PQSPercent), percent(pt.EventsPercent), percent(pt.TargetPercent), percent(pt.DeadlinePercent))
	}
}

func (a *EvaluationAdapter) printWatchList(sum cohort.Summary) {
	if len(sum.WatchList) == 0 {
		return
	}
	levels := make([]int, 0, len(sum.WatchList))
	for l := range sum.WatchList {
		levels = append(levels, l)
	}
	sort.Ints(levels)

	fmt.Fprintln(a.out, "\nWatch list:")
	for _, l := range levels {
		var parts []string
		for _, r := range sum.WatchList[l] {
			parts = append(parts, fmt.Sprintf("%s %s", r.Name, pacing(r.PacingDays)))
		}
		fmt.Fprintf(a.out, "  %d  %s\n", l, strings.Join(parts, ", "))
	}
}
