package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/upshot/internal/wire"
)

// RefreshCmd returns the refresh command
func RefreshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Recompute and store derived readiness fields for every upgrader",
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := asOf(cmd)
			if err != nil {
				return err
			}
			return wire.EvaluationAdapter().Refresh(context.Background(), at)
		},
	}

	addAsOfFlag(cmd)
	return cmd
}
