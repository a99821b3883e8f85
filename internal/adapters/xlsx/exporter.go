// Package xlsx writes cohort reports as Excel workbooks.
package xlsx

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/upshot/internal/ports/secondary"
)

const (
	summarySheet   = "Summary"
	upgradersSheet = "Upgraders"
)

var upgraderHeaders = []string{
	"Priority", "ID", "Name", "Rank", "Position", "PQS Level", "Events Level",
	"PQS %", "Events %", "Readiness", "Pacing (days)", "Target Pacing (days)",
	"Projected Complete", "Score", "Next Tasks",
}

// readinessFill colors the readiness cell of each upgrader row.
var readinessFill = map[string]string{
	"ON_TRACK":        "#C6EFCE",
	"AT_RISK":         "#FFEB9C",
	"BEHIND_SCHEDULE": "#F8CBAD",
	"BLOCKED":         "#FF9999",
}

// CohortExporter implements secondary.CohortExporter with excelize.
type CohortExporter struct{}

// NewCohortExporter creates a new workbook exporter.
func NewCohortExporter() *CohortExporter {
	return &CohortExporter{}
}

// Export writes a two-sheet workbook: a summary and one row per upgrader in
// priority order.
func (e *CohortExporter) Export(ctx context.Context, path string, report *secondary.CohortExport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if report == nil {
		return fmt.Errorf("nothing to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(summarySheet)
	if err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if _, err := f.NewSheet(upgradersSheet); err != nil {
		return fmt.Errorf("failed to create upgraders sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSummary(f, report, headerStyle); err != nil {
		return err
	}
	if err := writeUpgraders(f, report, headerStyle); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, report *secondary.CohortExport, headerStyle int) error {
	rows := [][]any{
		{"As of", report.AsOf},
		{"Upgraders", report.Total},
		{"Health score", round1(report.HealthScore)},
		{"PQS to deadline", report.PQSToMeetDeadline},
		{"Events to deadline", report.EventsToMeetDeadline},
		{},
	}
	headers := []int{len(rows) + 1}
	rows = append(rows, []any{"Readiness", "Count"})
	for _, c := range report.Counts {
		rows = append(rows, []any{c.Readiness, c.Count})
	}
	if len(report.PriorityTasks) > 0 {
		rows = append(rows, []any{})
		headers = append(headers, len(rows)+1)
		rows = append(rows, []any{"Priority task", "Upgraders"})
		for _, t := range report.PriorityTasks {
			rows = append(rows, []any{t.Name, t.Count})
		}
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if err := f.SetSheetRow(summarySheet, cell("A", i+1), &row); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	for _, r := range headers {
		if err := f.SetCellStyle(summarySheet, cell("A", r), cell("B", r), headerStyle); err != nil {
			return fmt.Errorf("failed to style summary: %w", err)
		}
	}
	f.SetColWidth(summarySheet, "A", "A", 18)
	f.SetColWidth(summarySheet, "B", "B", 14)
	return nil
}

func writeUpgraders(f *excelize.File, report *secondary.CohortExport, headerStyle int) error {
	headers := make([]any, len(upgraderHeaders))
	for i, h := range upgraderHeaders {
		headers[i] = h
	}
	if err := f.SetSheetRow(upgradersSheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	last, _ := excelize.ColumnNumberToName(len(upgraderHeaders))
	if err := f.SetCellStyle(upgradersSheet, "A1", last+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style headers: %w", err)
	}

	fills := make(map[string]int, len(readinessFill))
	for readiness, color := range readinessFill {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return fmt.Errorf("failed to create readiness style: %w", err)
		}
		fills[readiness] = style
	}

	for i, r := range report.Rows {
		rowNum := i + 2
		row := []any{
			i + 1, r.ID, r.Name, r.Rank, r.Position, r.PQSLevel, r.EventsLevel,
			round1(r.PQSPercent), round1(r.EventsPercent), r.Readiness,
			optional(r.PacingDays), optional(r.TargetPacingDays),
			r.ProjectedComplete, r.Score, strings.Join(r.NextTasks, ", "),
		}
		if err := f.SetSheetRow(upgradersSheet, cell("A", rowNum), &row); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", r.ID, err)
		}
		if style, ok := fills[r.Readiness]; ok {
			c := cell("J", rowNum)
			if err := f.SetCellStyle(upgradersSheet, c, c, style); err != nil {
				return fmt.Errorf("failed to style row for %s: %w", r.ID, err)
			}
		}
	}

	f.SetColWidth(upgradersSheet, "B", "C", 22)
	f.SetColWidth(upgradersSheet, "J", "J", 18)
	f.SetColWidth(upgradersSheet, "M", "M", 18)
	f.SetColWidth(upgradersSheet, "O", "O", 40)
	return nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// optional renders a missing value as an empty cell.
func optional(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Ensure CohortExporter implements the interface
var _ secondary.CohortExporter = (*CohortExporter)(nil)
