package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/canopy/internal/config"
	"github.com/example/canopy/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var scopeID string
	var actor string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the canopy database and scope config",
		Long: `Initialize the canopy database at ~/.canopy/canopy.db with the
required schema, and pin a scope in .canopy/config.json in the current
directory so subsequent commands do not need --scope.

Examples:
  canopy init --scope ward-7
  canopy init --scope ward-7 --actor model`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := db.GetDBPath()
			if err != nil {
				return fmt.Errorf("failed to get database path: %w", err)
			}

			fmt.Printf("Initializing canopy database at %s\n", dbPath)

			if _, err := db.GetDB(); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			fmt.Println("✓ Database initialized successfully")

			if scopeID != "" {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to get working directory: %w", err)
				}
				cfg := &config.Config{
					Version: "1",
					ScopeID: scopeID,
					Actor:   actor,
				}
				if err := config.SaveConfig(cwd, cfg); err != nil {
					return err
				}
				fmt.Printf("✓ Scope %s pinned in .canopy/config.json\n", scopeID)
			}

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  canopy run create")
			fmt.Println("  canopy status")

			return nil
		},
	}

	cmd.Flags().StringVar(&scopeID, "scope", "", "Scope ID to pin in this directory (e.g. ward-7)")
	cmd.Flags().StringVar(&actor, "actor", "", "Default actor for fact writes (user, model, system)")

	return cmd
}
