package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/canopy/internal/db"
)

// DevCmd returns the dev command group for development utilities.
func DevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Development utilities (use via canopy-dev shim)",
		Long: `Development utilities for working with a scratch canopy database.

These commands are intended to be run via the canopy-dev shim, which
sets CANOPY_DB_PATH to a scratch file. Running without the shim will
error to prevent accidental modification of the production database.`,
	}

	cmd.AddCommand(devResetCmd())
	return cmd
}

func devResetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the dev database with fresh fixtures",
		Long: `Delete the dev database and recreate it with fixture data: a ward-7
scope holding one committed run and one draft, with sources, inputs,
constraints, and artifacts to explore.

Safety: this command requires CANOPY_DB_PATH to be set (via the
canopy-dev shim) to prevent accidental reset of the production
database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath := os.Getenv("CANOPY_DB_PATH")
			if dbPath == "" {
				return fmt.Errorf("CANOPY_DB_PATH not set - use 'canopy-dev reset' instead of 'canopy reset'\n\nThis safety check prevents accidental reset of your production database")
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
			fmt.Println("✓ Seeded fixture data (scope ward-7, runs RUN-001 and RUN-002)")

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")

	return cmd
}
