package models

import (
	"fmt"
	"math"
	"time"
)

// DateLayout is the wire layout for date-only values.
const DateLayout = "2006-01-02"

// AverageDaysPerMonth converts curve months to elapsed days.
const AverageDaysPerMonth = 30.44

// Date builds a date-only value at UTC midnight.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf drops the time-of-day of t, keeping its calendar date.
func DateOf(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return Date(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string. Empty input yields the zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// FormatDate renders a date-only value, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// DaysBetween returns the whole days from a to b (negative when b precedes a).
func DaysBetween(a, b time.Time) int {
	return int(math.Round(DateOf(b).Sub(DateOf(a)).Hours() / 24))
}

// AddMonths advances a date by curve months using the average month length.
func AddMonths(t time.Time, months int) time.Time {
	return DateOf(t).AddDate(0, 0, int(math.Round(float64(months)*AverageDaysPerMonth)))
}
