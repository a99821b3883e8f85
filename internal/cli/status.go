package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/upshot/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	var history bool

	cmd := &cobra.Command{
		Use:   "status [name]",
		Short: "Show readiness, pacing and next tasks for one upgrader",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := asOf(cmd)
			if err != nil {
				return err
			}
			return wire.EvaluationAdapter().Status(context.Background(), args[0], at, history)
		},
	}

	cmd.Flags().BoolVar(&history, "history", false, "Include the percent-complete history")
	addAsOfFlag(cmd)
	return cmd
}
