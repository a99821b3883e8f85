package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/upshot/internal/wire"
)

// ImportCmd returns the import command
func ImportCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import [source-file]...",
		Short: "Merge completion sources into the roster as one data set",
		Long: `Merge one or more normalized completion sources into the roster.

Person names are resolved against the roster with fuzzy matching. A record with
the same requirement and date as an existing one replaces it, so re-importing a
source is safe. Names that do not resolve are listed with their closest match.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.ImportAdapter().Import(context.Background(), name, args)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Data set name (default: source names)")
	return cmd
}
