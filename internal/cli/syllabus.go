package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/upshot/internal/wire"
)

var syllabusCmd = &cobra.Command{
	Use:   "syllabus",
	Short: "Manage syllabi (requirements and curves per position and year)",
}

var syllabusImportCmd = &cobra.Command{
	Use:   "import [file]...",
	Short: "Validate and store syllabi from YAML files or directories",
	Long: `Validate and store every syllabus in the given YAML documents.

A document with error-level issues (cycles, duplicate names, off-scale levels,
invalid curves) is rejected as a whole. Warnings are printed and kept with the
stored syllabus.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.SyllabusAdapter().Import(context.Background(), args...)
	},
}

var syllabusValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate syllabi without storing them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.SyllabusAdapter().Validate(context.Background(), args[0])
	},
}

var syllabusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored syllabi",
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.SyllabusAdapter().List(context.Background())
	},
}

var syllabusShowCmd = &cobra.Command{
	Use:   "show [position] [year]",
	Short: "Show a stored syllabus by level",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.SyllabusAdapter().Show(context.Background(), args[0], args[1])
	},
}

func init() {
	syllabusCmd.AddCommand(syllabusImportCmd)
	syllabusCmd.AddCommand(syllabusValidateCmd)
	syllabusCmd.AddCommand(syllabusListCmd)
	syllabusCmd.AddCommand(syllabusShowCmd)
}

// SyllabusCmd returns the syllabus command
func SyllabusCmd() *cobra.Command {
	return syllabusCmd
}
