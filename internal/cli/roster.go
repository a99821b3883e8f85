package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/upshot/internal/wire"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Manage the roster of upgraders",
}

var rosterImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Add or update upgraders from a roster YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.RosterAdapter().Import(context.Background(), args[0])
	},
}

var rosterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List upgraders with their last refreshed readiness",
	RunE: func(cmd *cobra.Command, args []string) error {
		position, _ := cmd.Flags().GetString("position")
		return wire.RosterAdapter().List(context.Background(), position)
	},
}

var rosterShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show an upgrader and their recorded completions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.RosterAdapter().Show(context.Background(), args[0])
	},
}

func init() {
	rosterListCmd.Flags().StringP("position", "p", "", "Filter by position")

	rosterCmd.AddCommand(rosterImportCmd)
	rosterCmd.AddCommand(rosterListCmd)
	rosterCmd.AddCommand(rosterShowCmd)
}

// RosterCmd returns the roster command
func RosterCmd() *cobra.Command {
	return rosterCmd
}
