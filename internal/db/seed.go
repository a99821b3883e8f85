package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SeedFixtures populates the database with a small demo cohort: one PILOT
// syllabus with a prerequisite chain, four upgraders in different states and
// their completions. It expects an empty schema.
func SeedFixtures(database *sql.DB) error {
	now := time.Now().UTC().Format(time.RFC3339)
	const syllabusID = "PILOT/2025"

	if _, err := database.Exec(
		"INSERT INTO syllabi (id, position, year, display_name, base_level, created_at, updated_at) VALUES (?, 'PILOT', '2025', 'Pilot 2025', 200, ?, ?)",
		syllabusID, now, now,
	); err != nil {
		return fmt.Errorf("seed syllabi: %w", err)
	}

	curves := []struct{ level, target, deadline int }{
		{200, 6, 12},
		{300, 10, 18},
	}
	for _, c := range curves {
		if _, err := database.Exec(
			"INSERT INTO syllabus_curves (syllabus_id, level, target_months, deadline_months) VALUES (?, ?, ?, ?)",
			syllabusID, c.level, c.target, c.deadline,
		); err != nil {
			return fmt.Errorf("seed curves: %w", err)
		}
	}

	requirements := []struct {
		name, kind string
		level      int
		waived     bool
		sequence   any
		prereqs    []string
	}{
		{"PQS 201", "PQS", 200, false, 1, nil},
		{"PQS 202", "PQS", 200, false, 2, []string{"PQS 201"}},
		{"FAM-1", "EVENT", 200, false, 1, nil},
		{"FAM-2", "EVENT", 200, false, 2, []string{"FAM-1"}},
		{"NATOPS BOARD", "BOARD", 200, false, nil, []string{"FAM-2"}},
		{"SWIM QUAL", "OTHER", 200, true, nil, nil},
		{"PQS 301", "PQS", 300, false, 1, []string{"PQS 202"}},
		{"TAC-1", "EVENT", 300, false, 1, []string{"NATOPS BOARD"}},
		{"TAC-2", "EVENT", 300, false, 2, []string{"TAC-1"}},
	}
	for i, r := range requirements {
		waived := 0
		if r.waived {
			waived = 1
		}
		if _, err := database.Exec(
			"INSERT INTO requirements (syllabus_id, ordinal, name, kind, level, waived_by_default, sequence) VALUES (?, ?, ?, ?, ?, ?, ?)",
			syllabusID, i, r.name, r.kind, r.level, waived, r.sequence,
		); err != nil {
			return fmt.Errorf("seed requirements: %w", err)
		}
		for j, p := range r.prereqs {
			if _, err := database.Exec(
				"INSERT INTO requirement_prerequisites (syllabus_id, requirement_ordinal, ordinal, prerequisite) VALUES (?, ?, ?, ?)",
				syllabusID, i, j, p,
			); err != nil {
				return fmt.Errorf("seed prerequisites: %w", err)
			}
		}
	}

	upgraders := []struct {
		id, name, rank, start string
		onWaiver              bool
	}{
		{"PETEMAVERICK", "Pete Maverick", "LT", "2025-01-10", false},
		{"NICKGOOSE", "Nick Goose", "LTJG", "2024-09-20", true},
		{"TOMICEMAN", "Tom Iceman", "LT", "2024-03-01", false},
		{"NATASHAPHOENIX", "Natasha Phoenix", "LTJG", "2025-04-14", false},
	}
	for _, u := range upgraders {
		if _, err := database.Exec(
			"INSERT INTO upgraders (id, name, rank, position, syllabus_year, start_date, on_waiver, created_at, updated_at) VALUES (?, ?, ?, 'PILOT', '2025', ?, ?, ?, ?)",
			u.id, u.name, u.rank, u.start, u.onWaiver, now, now,
		); err != nil {
			return fmt.Errorf("seed upgraders: %w", err)
		}
	}

	completions := []struct{ upgraderID, event, date, status string }{
		{"PETEMAVERICK", "PQS 201", "2025-02-03", "COMPLETE"},
		{"PETEMAVERICK", "FAM-1", "2025-02-20", "COMPLETE"},
		{"PETEMAVERICK", "PQS 202", "2025-03-15", "COMPLETE"},
		{"NICKGOOSE", "PQS 201", "2024-11-02", "COMPLETE"},
		{"TOMICEMAN", "PQS 201", "2024-04-02", "COMPLETE"},
		{"TOMICEMAN", "PQS 202", "2024-05-10", "COMPLETE"},
		{"TOMICEMAN", "FAM-1", "2024-05-28", "COMPLETE"},
		{"TOMICEMAN", "FAM-2", "2024-06-19", "COMPLETE"},
		{"TOMICEMAN", "NATOPS BOARD", "2024-08-01", "COMPLETE"},
		{"TOMICEMAN", "PQS 301", "2024-12-11", "COMPLETE"},
		{"TOMICEMAN", "TAC-1", "2025-01-22", "COMPLETE"},
	}
	ordinals := make(map[string]int)
	for _, c := range completions {
		ordinal := ordinals[c.upgraderID]
		ordinals[c.upgraderID]++
		if _, err := database.Exec(
			"INSERT INTO completions (upgrader_id, ordinal, event, completed_on, status) VALUES (?, ?, ?, ?, ?)",
			c.upgraderID, ordinal, c.event, c.date, c.status,
		); err != nil {
			return fmt.Errorf("seed completions: %w", err)
		}
	}

	return nil
}
