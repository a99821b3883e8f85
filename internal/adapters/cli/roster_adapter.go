package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/upshot/internal/ports/primary"
)

// notComputed marks an upgrader whose snapshot was cleared by a change.
const notComputed = "not computed"

// RosterAdapter translates CLI operations to RosterService calls.
type RosterAdapter struct {
	service primary.RosterService
	out     io.Writer
}

// NewRosterAdapter creates a new RosterAdapter with the given service.
func NewRosterAdapter(service primary.RosterService, out io.Writer) *RosterAdapter {
	return &RosterAdapter{
		service: service,
		out:     out,
	}
}

// Import loads a roster document.
func (a *RosterAdapter) Import(ctx context.Context, path string) error {
	result, err := a.service.ImportRoster(ctx, path)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, ok("Imported roster %s: %d added, %d updated", path, result.Added, result.Updated))
	return nil
}

// List lists upgraders with their last refreshed readiness.
func (a *RosterAdapter) List(ctx context.Context, position string) error {
	upgraders, err := a.service.ListUpgraders(ctx, primary.RosterFilters{Position: position})
	if err != nil {
		return err
	}

	if len(upgraders) == 0 {
		fmt.Fprintln(a.out, "No upgraders found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-22s %-8s %-6s %-6s %-11s %-7s %-16s %s\n", "ID", "RANK", "POS", "YEAR", "START", "LEVEL", "READINESS", "PACING")
	fmt.Fprintln(a.out, rule)
	stale := 0
	for _, u := range upgraders {
		level, pace := "-", "-"
		readiness := fmt.Sprintf("%-16s", notComputed)
		if u.Derived != nil {
			level = fmt.Sprintf("%d", u.Derived.PQSLevel)
			readiness = readinessLabel(u.Derived.Readiness, 16)
			pace = pacing(u.Derived.PacingDays)
		} else {
			stale++
		}
		fmt.Fprintf(a.out, "%-22s %-8s %-6s %-6s %-11s %-7s %s %s\n",
			u.ID, u.Rank, u.Position, u.SyllabusYear, date(&u.StartDate), level, readiness, pace)
	}
	if stale > 0 {
		fmt.Fprintln(a.out, warn("%d upgrader(s) changed since the last refresh; run 'upshot refresh'", stale))
	}
	fmt.Fprintln(a.out)
	return nil
}

// Show displays one upgrader and their recorded completions.
func (a *RosterAdapter) Show(ctx context.Context, name string) error {
	resolved, err := a.service.GetUpgrader(ctx, name)
	if err != nil {
		return err
	}
	u := resolved.Upgrader

	fmt.Fprintf(a.out, "\nUpgrader: %s (%s)\n", u.Label(), u.ID)
	if u.Rank != "" {
		fmt.Fprintf(a.out, "Rank:     %s\n", u.Rank)
	}
	fmt.Fprintf(a.out, "Track:    %s %s\n", u.Position, u.SyllabusYear)
	fmt.Fprintf(a.out, "Start:    %s\n", date(&u.StartDate))
	if u.TargetLevel > 0 {
		fmt.Fprintf(a.out, "Target:   %d\n", u.TargetLevel)
	}
	if u.OnWaiver {
		fmt.Fprintln(a.out, "Waiver:   deadline extended, target pacing suppressed")
	}
	if u.Derived != nil {
		fmt.Fprintf(a.out, "Snapshot: %s as of %s\n", u.Derived.Readiness, u.Derived.ComputedAt.Format("2006-01-02"))
	} else {
		fmt.Fprintf(a.out, "Snapshot: %s\n", notComputed)
	}
	if !resolved.Match.Exact {
		fmt.Fprintln(a.out, warn("matched %q with score %.3f", name, resolved.Match.Score))
	}

	fmt.Fprintf(a.out, "\nCompletions (%d):\n", len(u.Completions))
	for _, c := range u.Completions {
		d := c.Date
		fmt.Fprintf(a.out, "  %-11s %-20s %-6s %s\n", date(&d), c.Event, c.Grade, c.Status)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Match shows how a free-text name resolves against the roster.
func (a *RosterAdapter) Match(ctx context.Context, name string) error {
	m, err := a.service.MatchName(ctx, name)
	if err != nil {
		return err
	}

	switch {
	case m.Match.Exact:
		fmt.Fprintln(a.out, ok("%q is %s (exact)", name, m.Label))
	case m.Match.Found:
		fmt.Fprintln(a.out, ok("%q is %s (score %.3f)", name, m.Label, m.Match.Score))
	case m.Match.Closest != "":
		fmt.Fprintln(a.out, warn("%q did not match; closest is %s (score %.3f)", name, m.ClosestLabel, m.Match.Score))
	default:
		fmt.Fprintln(a.out, warn("%q did not match anyone on the roster", name))
	}
	return nil
}
