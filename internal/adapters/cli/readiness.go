// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting but delegate
// business logic to services.
package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/example/upshot/internal/models"
)

const rule = "────────────────────────────────────────────────────────────────────────"

// readinessColor picks the terminal color for a readiness state.
func readinessColor(r models.Readiness) *color.Color {
	switch r {
	case models.ReadinessOnTrack:
		return color.New(color.FgGreen)
	case models.ReadinessAtRisk:
		return color.New(color.FgYellow)
	case models.ReadinessBehindSchedule:
		return color.New(color.FgRed)
	case models.ReadinessBlocked:
		return color.New(color.FgHiRed, color.Bold)
	default:
		return color.New(color.FgHiBlack)
	}
}

// readinessLabel renders a readiness padded to a column width, then colored,
// so escape codes do not break alignment.
func readinessLabel(r models.Readiness, width int) string {
	return readinessColor(r).Sprint(fmt.Sprintf("%-*s", width, r))
}

func pacing(days *int) string {
	if days == nil {
		return "-"
	}
	return fmt.Sprintf("%+dd", *days)
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}

func date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return models.FormatDate(*t)
}

func ok(format string, args ...any) string {
	return color.New(color.FgGreen).Sprint("✓") + " " + fmt.Sprintf(format, args...)
}

func warn(format string, args ...any) string {
	return color.New(color.FgYellow).Sprint("!") + " " + fmt.Sprintf(format, args...)
}

func fail(format string, args ...any) string {
	return color.New(color.FgRed).Sprint("✗") + " " + fmt.Sprintf(format, args...)
}
