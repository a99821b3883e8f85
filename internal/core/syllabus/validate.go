package syllabus

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/upshot/internal/models"
)

// Severity grades a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// IssueCode identifies the kind of structural problem found.
type IssueCode string

const (
	CodeCycle                    IssueCode = "cycle"
	CodeDuplicateRequirement     IssueCode = "duplicate_requirement"
	CodeUnresolvablePrerequisite IssueCode = "unresolvable_prerequisite"
	CodeLevelOffScale            IssueCode = "level_off_scale"
	CodeInvalidCurve             IssueCode = "invalid_curve"
	CodeEmptySyllabus            IssueCode = "empty_syllabus"
)

// Issue is one problem found in a syllabus.
type Issue struct {
	Code        IssueCode
	Severity    Severity
	Requirement string
	Detail      string
}

func (i Issue) String() string {
	if i.Requirement == "" {
		return fmt.Sprintf("%s: %s", i.Severity, i.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Requirement, i.Detail)
}

// Report collects validation issues in discovery order.
type Report struct {
	Issues []Issue
}

// HasErrors reports whether any issue is error-level.
func (r Report) HasErrors() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the error-level issues.
func (r Report) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the warning-level issues.
func (r Report) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

// Err summarizes error-level issues as a single error, or nil.
func (r Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.String()
	}
	return fmt.Errorf("%d syllabus error(s): %s", len(errs), strings.Join(msgs, "; "))
}

func (r Report) filter(sev Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

func (r *Report) add(code IssueCode, sev Severity, req, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{
		Code:        code,
		Severity:    sev,
		Requirement: req,
		Detail:      fmt.Sprintf(format, args...),
	})
}

// OnScale reports whether level is a positive multiple of 100.
func OnScale(level int) bool {
	return level > 0 && level%100 == 0
}

// Validate checks the structural invariants of a syllabus.
// Rules:
// - Requirement names are unique (case-insensitive)
// - Levels are positive multiples of 100 and not below the base level
// - Prerequisites name requirements of the same syllabus (warning otherwise)
// - The prerequisite graph is acyclic
// - Every curve has 0 < target < deadline
func Validate(s *models.Syllabus) Report {
	var report Report
	if s == nil || len(s.Requirements) == 0 {
		report.add(CodeEmptySyllabus, SeverityWarning, "", "syllabus has no requirements")
		if s == nil {
			return report
		}
	}

	if s.BaseLevel != 0 && !OnScale(s.BaseLevel) {
		report.add(CodeLevelOffScale, SeverityError, "", "base level %d is not a positive multiple of 100", s.BaseLevel)
	}

	known := make(map[string]bool, len(s.Requirements))
	for _, r := range s.Requirements {
		key := r.Key()
		if known[key] {
			report.add(CodeDuplicateRequirement, SeverityError, r.Name, "requirement defined more than once")
		}
		known[key] = true

		if !OnScale(r.Level) {
			report.add(CodeLevelOffScale, SeverityError, r.Name, "level %d is not a positive multiple of 100", r.Level)
		} else if r.Level < s.BaseLevel {
			report.add(CodeLevelOffScale, SeverityError, r.Name, "level %d is below base level %d", r.Level, s.BaseLevel)
		}
	}

	for _, r := range s.Requirements {
		for _, p := range r.Prerequisites {
			if !known[models.RequirementKey(p)] {
				report.add(CodeUnresolvablePrerequisite, SeverityWarning, r.Name, "prerequisite %q is not in the syllabus", p)
			}
		}
	}

	for _, cycle := range findCycles(s) {
		report.add(CodeCycle, SeverityError, cycle[0], "prerequisite cycle: %s", strings.Join(cycle, " -> "))
	}

	levels := make([]int, 0, len(s.Curves))
	for level := range s.Curves {
		levels = append(levels, level)
	}
	sort.Ints(levels)
	for _, level := range levels {
		if err := CheckCurve(s.Curves[level]); err != nil {
			report.add(CodeInvalidCurve, SeverityError, "", "level %d: %v", level, err)
		}
	}

	return report
}

// CheckCurve validates a single target/deadline pair.
func CheckCurve(c models.Curve) error {
	if c.TargetMonths <= 0 || c.DeadlineMonths <= 0 {
		return fmt.Errorf("months must be positive (target %d, deadline %d)", c.TargetMonths, c.DeadlineMonths)
	}
	if c.TargetMonths >= c.DeadlineMonths {
		return fmt.Errorf("target %d must be before deadline %d", c.TargetMonths, c.DeadlineMonths)
	}
	return nil
}

// findCycles walks the prerequisite graph depth-first and returns each cycle
// once, as the path of requirement names closing back on its first element.
func findCycles(s *models.Syllabus) [][]string {
	edges := make(map[string][]string, len(s.Requirements))
	names := make(map[string]string, len(s.Requirements))
	var order []string
	for _, r := range s.Requirements {
		key := r.Key()
		if _, seen := names[key]; seen {
			continue
		}
		names[key] = r.Name
		order = append(order, key)
		for _, p := range r.Prerequisites {
			edges[key] = append(edges[key], models.RequirementKey(p))
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(order))
	var stack []string
	var cycles [][]string

	var visit func(string)
	visit = func(key string) {
		state[key] = visiting
		stack = append(stack, key)
		for _, dep := range edges[key] {
			if _, ok := names[dep]; !ok {
				continue
			}
			switch state[dep] {
			case unvisited:
				visit(dep)
			case visiting:
				start := len(stack) - 1
				for stack[start] != dep {
					start--
				}
				path := make([]string, 0, len(stack)-start+1)
				for _, k := range stack[start:] {
					path = append(path, names[k])
				}
				cycles = append(cycles, append(path, names[dep]))
			}
		}
		stack = stack[:len(stack)-1]
		state[key] = done
	}

	for _, key := range order {
		if state[key] == unvisited {
			visit(key)
		}
	}
	return cycles
}
