package sqlite

import (
	"database/sql"
	"time"
)

// clearDerived resets the engine-owned snapshot columns of upgraders. Any
// change to completions, roster fields or the assigned syllabus makes the
// stored snapshot stale.
const clearDerived = `derived_pqs_level = NULL,
	derived_events_level = NULL,
	derived_pqs_percent = NULL,
	derived_events_percent = NULL,
	derived_readiness = NULL,
	derived_pacing_days = NULL,
	derived_target_pacing_days = NULL,
	derived_projected_complete = NULL,
	derived_computed_at = NULL`

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

// nullTime parses an RFC3339 timestamp; unparsable or empty input is NULL.
func nullTime(s string) sql.NullTime {
	if s == "" {
		return sql.NullTime{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func formatTime(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}
	return t.Time.UTC().Format(time.RFC3339)
}
