package app

import (
	"fmt"
	"sort"
	"time"

	"github.com/example/upshot/internal/core/names"
	"github.com/example/upshot/internal/core/syllabus"
	"github.com/example/upshot/internal/models"
	"github.com/example/upshot/internal/ports/secondary"
)

// Conversions between persistence records and domain models. Dates cross the
// boundary as YYYY-MM-DD strings; stored dates were validated on the way in,
// so a parse failure here means the store was edited by hand.

func upgraderFromRecord(r *secondary.UpgraderRecord) (*models.Upgrader, error) {
	start, err := models.ParseDate(r.StartDate)
	if err != nil {
		return nil, fmt.Errorf("upgrader %s: %w", r.ID, err)
	}
	u := &models.Upgrader{
		ID:           r.ID,
		Name:         r.Name,
		DisplayName:  r.DisplayName,
		Rank:         r.Rank,
		Position:     r.Position,
		SyllabusYear: r.SyllabusYear,
		TargetLevel:  r.TargetLevel,
		StartDate:    start,
		OnWaiver:     r.OnWaiver,
	}
	if r.Derived != nil {
		d, err := derivedFromRecord(r.Derived)
		if err != nil {
			return nil, fmt.Errorf("upgrader %s: %w", r.ID, err)
		}
		u.Derived = d
	}
	return u, nil
}

func derivedFromRecord(r *secondary.DerivedRecord) (*models.DerivedFields, error) {
	readiness, err := models.ParseReadiness(r.Readiness)
	if err != nil {
		return nil, err
	}
	d := &models.DerivedFields{
		PQSLevel:         r.PQSLevel,
		EventsLevel:      r.EventsLevel,
		PQSPercent:       r.PQSPercent,
		EventsPercent:    r.EventsPercent,
		Readiness:        readiness,
		PacingDays:       r.PacingDays,
		TargetPacingDays: r.TargetPacingDays,
	}
	if r.ProjectedComplete != "" {
		p, err := models.ParseDate(r.ProjectedComplete)
		if err != nil {
			return nil, err
		}
		d.ProjectedComplete = &p
	}
	if r.ComputedAt != "" {
		t, err := time.Parse(time.RFC3339, r.ComputedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid computed-at %q: %w", r.ComputedAt, err)
		}
		d.ComputedAt = t
	}
	return d, nil
}

func derivedToRecord(d *models.DerivedFields) *secondary.DerivedRecord {
	r := &secondary.DerivedRecord{
		PQSLevel:         d.PQSLevel,
		EventsLevel:      d.EventsLevel,
		PQSPercent:       d.PQSPercent,
		EventsPercent:    d.EventsPercent,
		Readiness:        d.Readiness.String(),
		PacingDays:       d.PacingDays,
		TargetPacingDays: d.TargetPacingDays,
		ComputedAt:       d.ComputedAt.UTC().Format(time.RFC3339),
	}
	if d.ProjectedComplete != nil {
		r.ProjectedComplete = models.FormatDate(*d.ProjectedComplete)
	}
	return r
}

func completionFromRecord(r *secondary.CompletionRecord) (models.Completion, error) {
	date, err := models.ParseDate(r.CompletedOn)
	if err != nil {
		return models.Completion{}, fmt.Errorf("completion %q: %w", r.Event, err)
	}
	return models.Completion{
		Event:      r.Event,
		Date:       date,
		Instructor: r.Instructor,
		Grade:      r.Grade,
		Status:     r.Status,
		Source:     r.DataSetID,
	}, nil
}

func completionsFromRecords(records []*secondary.CompletionRecord) ([]models.Completion, error) {
	out := make([]models.Completion, 0, len(records))
	for _, r := range records {
		c, err := completionFromRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func completionsToRecords(upgraderID string, completions []models.Completion) []*secondary.CompletionRecord {
	out := make([]*secondary.CompletionRecord, len(completions))
	for i, c := range completions {
		out[i] = &secondary.CompletionRecord{
			UpgraderID:  upgraderID,
			Event:       c.Event,
			CompletedOn: models.FormatDate(c.Date),
			Instructor:  c.Instructor,
			Grade:       c.Grade,
			Status:      c.Status,
			DataSetID:   c.Source,
		}
	}
	return out
}

// syllabusFromRecord converts a record. Unrecognized kinds become OTHER and
// are reported in the returned warnings.
func syllabusFromRecord(r *secondary.SyllabusRecord) (*models.Syllabus, []string) {
	s := &models.Syllabus{
		ID:          r.ID,
		Position:    r.Position,
		Year:        r.Year,
		DisplayName: r.DisplayName,
		BaseLevel:   r.BaseLevel,
		Curves:      make(map[int]models.Curve, len(r.Curves)),
	}

	var warnings []string
	for _, req := range r.Requirements {
		kind, err := models.ParseKind(req.Kind)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v, using %s", req.Name, err, kind))
		}
		var seq *int
		if req.Sequence != nil {
			n := *req.Sequence
			seq = &n
		}
		s.Requirements = append(s.Requirements, models.Requirement{
			Name:            req.Name,
			DisplayName:     req.DisplayName,
			Kind:            kind,
			Level:           req.Level,
			Prerequisites:   append([]string(nil), req.Prerequisites...),
			WaivedByDefault: req.WaivedByDefault,
			Sequence:        seq,
		})
	}
	for _, c := range r.Curves {
		s.Curves[c.Level] = models.Curve{TargetMonths: c.TargetMonths, DeadlineMonths: c.DeadlineMonths}
	}
	return s, warnings
}

func syllabusToRecord(s *models.Syllabus, issues []syllabus.Issue) *secondary.SyllabusRecord {
	r := &secondary.SyllabusRecord{
		ID:          s.ID,
		Position:    s.Position,
		Year:        s.Year,
		DisplayName: s.DisplayName,
		BaseLevel:   s.BaseLevel,
	}
	for _, req := range s.Requirements {
		r.Requirements = append(r.Requirements, secondary.RequirementRecord{
			Name:            req.Name,
			DisplayName:     req.DisplayName,
			Kind:            req.Kind.String(),
			Level:           req.Level,
			Prerequisites:   req.Prerequisites,
			WaivedByDefault: req.WaivedByDefault,
			Sequence:        req.Sequence,
		})
	}
	for _, level := range sortedCurveLevels(s.Curves) {
		c := s.Curves[level]
		r.Curves = append(r.Curves, secondary.CurveRecord{Level: level, TargetMonths: c.TargetMonths, DeadlineMonths: c.DeadlineMonths})
	}
	for _, issue := range issues {
		r.Issues = append(r.Issues, issueToRecord(issue))
	}
	return r
}

func issueToRecord(i syllabus.Issue) secondary.IssueRecord {
	return secondary.IssueRecord{
		Code:        string(i.Code),
		Severity:    string(i.Severity),
		Requirement: i.Requirement,
		Detail:      i.Detail,
	}
}

func issueFromRecord(r secondary.IssueRecord) syllabus.Issue {
	return syllabus.Issue{
		Code:        syllabus.IssueCode(r.Code),
		Severity:    syllabus.Severity(r.Severity),
		Requirement: r.Requirement,
		Detail:      r.Detail,
	}
}

func sortedCurveLevels(curves map[int]models.Curve) []int {
	levels := make([]int, 0, len(curves))
	for l := range curves {
		levels = append(levels, l)
	}
	sort.Ints(levels)
	return levels
}

// rosterIndex builds a resolver index over upgrader records in roster order.
func rosterIndex(records []*secondary.UpgraderRecord) *names.Index {
	entries := make([]names.Entry, len(records))
	for i, r := range records {
		entries[i] = names.Entry{ID: r.ID, Name: r.Name}
	}
	return names.NewIndex(entries)
}
