package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/example/upshot/internal/core/syllabus"
	"github.com/example/upshot/internal/ports/primary"
)

// SyllabusAdapter translates CLI operations to SyllabusService calls.
type SyllabusAdapter struct {
	service primary.SyllabusService
	out     io.Writer
}

// NewSyllabusAdapter creates a new SyllabusAdapter with the given service.
func NewSyllabusAdapter(service primary.SyllabusService, out io.Writer) *SyllabusAdapter {
	return &SyllabusAdapter{
		service: service,
		out:     out,
	}
}

// Import validates and stores each document in turn. A rejected document
// stops the run after its issues are printed.
func (a *SyllabusAdapter) Import(ctx context.Context, paths ...string) error {
	for _, path := range paths {
		checks, err := a.service.ImportSyllabi(ctx, path)
		a.printChecks(checks)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for _, c := range checks {
			fmt.Fprintln(a.out, ok("Imported syllabus %s (%d requirements)", c.Syllabus.ID, len(c.Syllabus.Requirements)))
		}
	}
	return nil
}

// Validate checks a document without storing it. It fails when any syllabus has errors.
func (a *SyllabusAdapter) Validate(ctx context.Context, path string) error {
	checks, err := a.service.ValidateSyllabi(ctx, path)
	if err != nil {
		return err
	}
	a.printChecks(checks)

	invalid := 0
	for _, c := range checks {
		if c.Report.HasErrors() {
			invalid++
			continue
		}
		fmt.Fprintln(a.out, ok("%s is valid", c.Syllabus.ID))
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d syllabi have errors", invalid, len(checks))
	}
	return nil
}

// List lists stored syllabi.
func (a *SyllabusAdapter) List(ctx context.Context) error {
	list, err := a.service.ListSyllabi(ctx)
	if err != nil {
		return err
	}

	if len(list) == 0 {
		fmt.Fprintln(a.out, "No syllabi found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-14s %-8s %-6s %-6s %-6s %s\n", "ID", "POS", "YEAR", "BASE", "REQS", "NAME")
	fmt.Fprintln(a.out, rule)
	for _, s := range list {
		fmt.Fprintf(a.out, "%-14s %-8s %-6s %-6d %-6d %s\n", s.ID, s.Position, s.Year, s.BaseLevel, s.Requirements, s.DisplayName)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Show displays one stored syllabus grouped by level.
func (a *SyllabusAdapter) Show(ctx context.Context, position, year string) error {
	detail, err := a.service.GetSyllabus(ctx, position, year)
	if err != nil {
		return err
	}
	s := detail.Syllabus

	fmt.Fprintf(a.out, "\nSyllabus: %s", s.ID)
	if s.DisplayName != "" {
		fmt.Fprintf(a.out, " (%s)", s.DisplayName)
	}
	fmt.Fprintf(a.out, "\nBase:     %d\n", s.BaseLevel)

	for _, level := range s.Levels() {
		fmt.Fprintf(a.out, "\n%d", level)
		if c, found := s.Curves[level]; found {
			fmt.Fprintf(a.out, "  target %dmo, deadline %dmo", c.TargetMonths, c.DeadlineMonths)
		}
		fmt.Fprintln(a.out)
		for _, r := range s.Requirements {
			if r.Level != level {
				continue
			}
			line := fmt.Sprintf("  %-6s %s", r.Kind, r.Name)
			if len(r.Prerequisites) > 0 {
				line += " ← " + strings.Join(r.Prerequisites, ", ")
			}
			if r.WaivedByDefault {
				line += " (waived)"
			}
			fmt.Fprintln(a.out, line)
		}
	}

	if len(detail.Issues) > 0 {
		fmt.Fprintln(a.out)
		for _, issue := range detail.Issues {
			fmt.Fprintln(a.out, warn("%s", issue))
		}
	}
	fmt.Fprintln(a.out)
	return nil
}

func (a *SyllabusAdapter) printChecks(checks []*primary.SyllabusCheck) {
	for _, c := range checks {
		for _, w := range c.KindWarnings {
			fmt.Fprintln(a.out, warn("%s: %s", c.Syllabus.ID, w))
		}
		for _, issue := range c.Report.Issues {
			if issue.Severity == syllabus.SeverityError {
				fmt.Fprintln(a.out, fail("%s: %s", c.Syllabus.ID, issue))
				continue
			}
			fmt.Fprintln(a.out, warn("%s: %s", c.Syllabus.ID, issue))
		}
	}
}
