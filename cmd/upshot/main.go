package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/upshot/internal/cli"
	"github.com/example/upshot/internal/version"
	"github.com/example/upshot/internal/wire"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "upshot",
		Short:   "UPSHOT - aircrew training readiness and prioritization",
		Version: version.String(),
		Long: `UPSHOT tracks upgraders through their qualification syllabus.
It merges completion records from several sources, derives working levels,
measures pacing against the target and deadline curves, and ranks what each
upgrader and the cohort should do next.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			wire.SetConfigPath(configPath)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ./upshot.yaml or ~/.upshot/upshot.yaml)")

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.SyllabusCmd())
	rootCmd.AddCommand(cli.RosterCmd())
	rootCmd.AddCommand(cli.ImportCmd())
	rootCmd.AddCommand(cli.MatchCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.CohortCmd())
	rootCmd.AddCommand(cli.RefreshCmd())
	rootCmd.AddCommand(cli.VersionCmd())

	// Developer tools
	rootCmd.AddCommand(cli.DevCmd())

	err := rootCmd.Execute()
	wire.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
