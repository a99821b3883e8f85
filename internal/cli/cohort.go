package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/upshot/internal/wire"
)

// CohortCmd returns the cohort command
func CohortCmd() *cobra.Command {
	var (
		position string
		xlsxPath string
	)

	cmd := &cobra.Command{
		Use:   "cohort",
		Short: "Show the track overview and priority ranking",
		Long: `Evaluate every upgrader (optionally one position) and show readiness
counts, the track health score, the priority ranking and the per-level watch
list. With --xlsx the report is also written to a workbook.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := asOf(cmd)
			if err != nil {
				return err
			}
			return wire.EvaluationAdapter().Cohort(context.Background(), position, at, xlsxPath)
		},
	}

	cmd.Flags().StringVarP(&position, "position", "p", "", "Limit to one position")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also export the report to this .xlsx file")
	addAsOfFlag(cmd)
	return cmd
}
