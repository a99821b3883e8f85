package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/upshot/internal/wire"
)

// MatchCmd returns the match command
func MatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match [name]",
		Short: "Show how a name resolves against the roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.RosterAdapter().Match(context.Background(), args[0])
		},
	}
}
