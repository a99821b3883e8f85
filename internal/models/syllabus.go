package models

import "sort"

// Curve holds the on-pace (target) and hard (deadline) months since the
// effective training start for completing one level.
type Curve struct {
	TargetMonths   int
	DeadlineMonths int
}

// Syllabus is the ordered set of requirements for one position and catalog year.
type Syllabus struct {
	ID           string
	Position     string
	Year         string
	DisplayName  string
	BaseLevel    int
	Requirements []Requirement
	Curves       map[int]Curve
}

// Levels returns the distinct requirement levels in ascending order.
func (s *Syllabus) Levels() []int {
	if s == nil {
		return nil
	}
	seen := make(map[int]bool)
	var levels []int
	for _, r := range s.Requirements {
		if !seen[r.Level] {
			seen[r.Level] = true
			levels = append(levels, r.Level)
		}
	}
	sort.Ints(levels)
	return levels
}

// MaxLevel returns the highest requirement level, or the base level for an
// empty syllabus.
func (s *Syllabus) MaxLevel() int {
	levels := s.Levels()
	if len(levels) == 0 {
		if s == nil {
			return 0
		}
		return s.BaseLevel
	}
	return levels[len(levels)-1]
}

// Find returns the requirement with the given name (case-insensitive).
func (s *Syllabus) Find(name string) (Requirement, bool) {
	if s == nil {
		return Requirement{}, false
	}
	key := RequirementKey(name)
	for _, r := range s.Requirements {
		if r.Key() == key {
			return r, true
		}
	}
	return Requirement{}, false
}

// SyllabusKey identifies a syllabus by position and year.
func SyllabusKey(position, year string) string {
	return RequirementKey(position) + "/" + RequirementKey(year)
}
