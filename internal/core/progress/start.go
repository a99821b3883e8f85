// Package progress computes percent complete, pacing against target and
// deadline curves, readiness and linear projections for one upgrader.
// Every function takes the evaluation date explicitly; nothing here reads the
// wall clock.
package progress

import (
	"time"

	"github.com/example/upshot/internal/models"
)

// roundingCutoffDay is the last day of a month that rounds down.
const roundingCutoffDay = 15

// EffectiveStart returns the date pacing is anchored to.
// With rounding enabled a start on or before the 15th moves to the 1st of the
// same month, later starts move to the 1st of the next month.
func EffectiveStart(start time.Time, rounded bool) time.Time {
	if start.IsZero() {
		return start
	}
	start = models.DateOf(start)
	if !rounded {
		return start
	}
	y, m, d := start.Date()
	if d > roundingCutoffDay {
		m++
	}
	// time.Date normalizes month 13 into January of the next year.
	return models.Date(y, m, 1)
}
