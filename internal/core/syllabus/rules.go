package syllabus

import (
	"strings"

	"github.com/example/upshot/internal/models"
)

const waivedMarker = "WAIVED"

// PrerequisitesMet reports whether every prerequisite of req has a completion.
// Rules:
// - A requirement with no prerequisites is always ready
// - Prerequisite names match completed event names case-insensitively
func PrerequisitesMet(req models.Requirement, set CompletionSet) bool {
	for _, p := range req.Prerequisites {
		if !set.Has(p) {
			return false
		}
	}
	return true
}

// MissingPrerequisites returns the prerequisite names of req that have no
// completion, in declaration order.
func MissingPrerequisites(req models.Requirement, set CompletionSet) []string {
	var missing []string
	for _, p := range req.Prerequisites {
		if !set.Has(p) {
			missing = append(missing, p)
		}
	}
	return missing
}

// IsStalled reports a true dependency stall: req has prerequisites and none of
// them is met.
func IsStalled(req models.Requirement, set CompletionSet) bool {
	if len(req.Prerequisites) == 0 {
		return false
	}
	return len(MissingPrerequisites(req, set)) == len(req.Prerequisites)
}

// IsWaived reports whether req is waived.
// Rules:
// - Default-waived requirements are always waived
// - Any matching completion whose status contains WAIVED waives it
func IsWaived(req models.Requirement, set CompletionSet) bool {
	if req.WaivedByDefault {
		return true
	}
	for _, c := range set.Records(req.Name) {
		if strings.Contains(strings.ToUpper(c.Status), waivedMarker) {
			return true
		}
	}
	return false
}

// IsSatisfied reports whether req is waived or has any recorded completion.
// Dates and grades are not considered.
func IsSatisfied(req models.Requirement, set CompletionSet) bool {
	return IsWaived(req, set) || set.Has(req.Name)
}

// Remaining returns every unsatisfied requirement of s in syllabus order.
func Remaining(s *models.Syllabus, set CompletionSet) []models.Requirement {
	if s == nil {
		return nil
	}
	var out []models.Requirement
	for _, r := range s.Requirements {
		if !IsSatisfied(r, set) {
			out = append(out, r)
		}
	}
	return out
}

// OutstandingAt returns the unsatisfied requirements sitting at the working
// level of their own pool, in syllabus order.
func OutstandingAt(s *models.Syllabus, levels models.WorkingLevels, set CompletionSet) []models.Requirement {
	if s == nil {
		return nil
	}
	var out []models.Requirement
	for _, r := range s.Requirements {
		if r.Level != levels.For(r.Kind.Pool()) {
			continue
		}
		if !IsSatisfied(r, set) {
			out = append(out, r)
		}
	}
	return out
}

// PoolAt returns the requirements of one pool at level, in syllabus order.
func PoolAt(s *models.Syllabus, pool models.Pool, level int) []models.Requirement {
	if s == nil {
		return nil
	}
	var out []models.Requirement
	for _, r := range s.Requirements {
		if r.Level == level && r.Kind.Pool() == pool {
			out = append(out, r)
		}
	}
	return out
}

// CountSatisfied returns how many of reqs are satisfied by set.
func CountSatisfied(reqs []models.Requirement, set CompletionSet) int {
	n := 0
	for _, r := range reqs {
		if IsSatisfied(r, set) {
			n++
		}
	}
	return n
}
