package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/upshot/internal/config"
	"github.com/example/upshot/internal/db"
	"github.com/example/upshot/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the UPSHOT configuration and database",
		Long: `Write a starter ~/.upshot/upshot.yaml with the default position curves
and create the database with the required schema.

An existing configuration file is left alone unless --force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("failed to get home directory: %w", err)
				}
				path = filepath.Join(home, ".upshot", config.FileName+".yaml")
			}

			written, err := writeDefaultConfig(path, force)
			if err != nil {
				return err
			}
			if written {
				fmt.Printf("✓ Wrote configuration to %s\n", path)
			} else {
				fmt.Printf("  Configuration already exists at %s (use --force to overwrite)\n", path)
			}

			wire.SetConfigPath(path)
			wire.DB()
			dbPath, err := db.GetDBPath()
			if err != nil {
				return fmt.Errorf("failed to get database path: %w", err)
			}
			fmt.Printf("✓ Database ready at %s\n", dbPath)

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  upshot syllabus import syllabus.yaml")
			fmt.Println("  upshot roster import roster.yaml")
			fmt.Println("  upshot import sources/")
			fmt.Println("  upshot cohort")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing configuration file")
	return cmd
}

// writeDefaultConfig writes the starter config and reports whether it did.
func writeDefaultConfig(path string, force bool) (bool, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.DefaultFile()), 0644); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	return true, nil
}
