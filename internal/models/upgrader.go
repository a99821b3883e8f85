package models

import "time"

// Completion is evidence that a person satisfied (or attempted) a requirement.
type Completion struct {
	Event      string
	Date       time.Time // date-only, UTC midnight; zero when absent
	Instructor string
	Grade      string
	Status     string
	Source     string // data set that delivered the record
}

// HasDate reports whether the completion carries a date.
func (c Completion) HasDate() bool {
	return !c.Date.IsZero()
}

// WorkingLevels are the levels a person is currently pursuing, per pool.
type WorkingLevels struct {
	PQS    int
	Events int
}

// For returns the working level of the given pool.
func (w WorkingLevels) For(p Pool) int {
	if p == PoolEvents {
		return w.Events
	}
	return w.PQS
}

// DerivedFields is the engine-owned snapshot cached on an upgrader.
// It is always recomputed from completions, syllabus, start date and config.
type DerivedFields struct {
	PQSLevel          int
	EventsLevel       int
	PQSPercent        float64
	EventsPercent     float64
	Readiness         Readiness
	PacingDays        *int // against the deadline curve
	TargetPacingDays  *int
	ProjectedComplete *time.Time
	ComputedAt        time.Time
}

// Upgrader is a person under qualification training.
type Upgrader struct {
	ID           string // normalized full name
	Name         string
	DisplayName  string
	Rank         string
	Position     string
	SyllabusYear string
	TargetLevel  int
	StartDate    time.Time
	OnWaiver     bool // deadline extended and target pacing suppressed
	Completions  []Completion
	Derived      *DerivedFields
}

// CompletionsAsOf returns the completions dated on or before asOf, keeping
// undated ones.
func CompletionsAsOf(completions []Completion, asOf time.Time) []Completion {
	cutoff := DateOf(asOf)
	out := make([]Completion, 0, len(completions))
	for _, c := range completions {
		if c.HasDate() && DateOf(c.Date).After(cutoff) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Label returns the display name, falling back to the name.
func (u Upgrader) Label() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Name
}

// Clone returns a copy whose completion slice can be modified independently.
func (u Upgrader) Clone() Upgrader {
	c := u
	c.Completions = append([]Completion(nil), u.Completions...)
	if u.Derived != nil {
		d := *u.Derived
		c.Derived = &d
	}
	return c
}

// AsOf returns a copy that only knows about completions recorded by asOf.
// A zero asOf keeps everything.
func (u Upgrader) AsOf(asOf time.Time) Upgrader {
	c := u.Clone()
	if !asOf.IsZero() {
		c.Completions = CompletionsAsOf(u.Completions, asOf)
	}
	return c
}
