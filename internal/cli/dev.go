package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/upshot/internal/db"
	"github.com/example/upshot/internal/wire"
)

// DevCmd returns the dev command group for development utilities.
func DevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Development utilities",
		Long: `Development utilities for working with a scratch UPSHOT database.

These commands require UPSHOT_DB_PATH to be set so they never touch the
default database by accident.`,
	}

	cmd.AddCommand(devSeedCmd())
	return cmd
}

func devSeedCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Recreate the dev database with a demo cohort",
		Long: `Delete the dev database and recreate it with a demo PILOT syllabus,
four upgraders in different readiness states and their completions.

Safety: requires UPSHOT_DB_PATH to be set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath := os.Getenv("UPSHOT_DB_PATH")
			if dbPath == "" {
				return fmt.Errorf("UPSHOT_DB_PATH not set\n\nThis safety check prevents accidental reset of your real database")
			}

			if !force {
				fmt.Printf("This will delete and recreate: %s\n", dbPath)
				fmt.Print("Continue? [y/N] ")
				var response string
				fmt.Scanln(&response)
				if response != "y" && response != "Y" {
					fmt.Println("Aborted.")
					return nil
				}
			}

			// Loads config and applies the path; the connection is replaced below.
			wire.Config()
			db.Close()

			if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to delete database: %w", err)
			}
			fmt.Printf("✓ Deleted %s\n", dbPath)

			database, err := db.GetDB()
			if err != nil {
				return fmt.Errorf("failed to create database: %w", err)
			}
			fmt.Println("✓ Created fresh database with schema")

			if err := db.SeedFixtures(database); err != nil {
				return fmt.Errorf("failed to seed fixtures: %w", err)
			}
			fmt.Println("✓ Seeded fixture data")

			fmt.Println("\nSeeded entities:")
			fmt.Println("  - 1 syllabus (PILOT 2025, 9 requirements)")
			fmt.Println("  - 4 upgraders")
			fmt.Println("\nTry: upshot cohort")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}
