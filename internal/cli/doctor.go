package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/canopy/internal/config"
	"github.com/example/canopy/internal/db"
	"github.com/example/canopy/internal/registry"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for environment validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the canopy environment",
		Long: `Environment health check for canopy.

Validates:
- Data directory (~/.canopy/)
- Database file and schema
- Requirement registry and constraint key mapping (including overrides)
- Scope config in the current directory

Examples:
  canopy doctor              # Run full health check
  canopy doctor --quiet      # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := []CheckResult{
				checkDataDir(),
				checkDatabase(),
				checkRegistry(),
				checkScopeConfig(),
			}

			hasErrors := false
			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
					break
				}
			}

			if !quiet {
				fmt.Println()
				fmt.Println("Check              Status")
				fmt.Println("─────────────────────────")
				for _, r := range results {
					fmt.Printf("%-18s %s\n", r.Name, r.Status)
				}
				fmt.Println()

				hasDetails := false
				for _, r := range results {
					if r.Status != "✓" && r.Details != "" {
						if !hasDetails {
							fmt.Println("Details:")
							hasDetails = true
						}
						fmt.Printf("\n%s:\n%s\n", r.Name, r.Details)
					}
				}

				if hasErrors {
					fmt.Println("\n⚠ Issues found. Run 'canopy init' to set up the environment.")
				} else {
					fmt.Println("All checks passed.")
				}
			}

			if hasErrors {
				return fmt.Errorf("environment validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode - exit code only")

	return cmd
}

// checkDataDir validates the ~/.canopy directory exists
func checkDataDir() CheckResult {
	dir, err := config.HomeDir()
	if err != nil {
		return CheckResult{Name: "Data directory", Status: "✗", Details: "  Cannot get home directory"}
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return CheckResult{Name: "Data directory", Status: "⚠", Details: fmt.Sprintf("  %s missing - run 'canopy init'", dir)}
	}
	return CheckResult{Name: "Data directory", Status: "✓"}
}

// checkDatabase validates the database opens and carries the schema
func checkDatabase() CheckResult {
	dbPath, err := db.GetDBPath()
	if err != nil {
		return CheckResult{Name: "Database", Status: "✗", Details: fmt.Sprintf("  %v", err)}
	}
	if _, err := os.Stat(dbPath); err != nil {
		return CheckResult{Name: "Database", Status: "⚠", Details: fmt.Sprintf("  %s missing - run 'canopy init'", dbPath)}
	}

	database, err := db.GetDB()
	if err != nil {
		return CheckResult{Name: "Database", Status: "✗", Details: fmt.Sprintf("  Cannot open: %v", err)}
	}
	var version int
	if err := database.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		return CheckResult{Name: "Database", Status: "✗", Details: fmt.Sprintf("  Schema version table unreadable: %v", err)}
	}
	return CheckResult{Name: "Database", Status: "✓"}
}

// checkRegistry validates both lookup tables load, overrides included
func checkRegistry() CheckResult {
	reqPath, err := config.RequirementsOverridePath()
	if err != nil {
		return CheckResult{Name: "Registry", Status: "✗", Details: fmt.Sprintf("  %v", err)}
	}
	if _, err := registry.LoadRequirements(reqPath); err != nil {
		return CheckResult{Name: "Registry", Status: "✗", Details: fmt.Sprintf("  Requirement registry: %v", err)}
	}
	keyMapPath, err := config.KeyMapOverridePath()
	if err != nil {
		return CheckResult{Name: "Registry", Status: "✗", Details: fmt.Sprintf("  %v", err)}
	}
	if _, err := registry.LoadKeyMap(keyMapPath); err != nil {
		return CheckResult{Name: "Registry", Status: "✗", Details: fmt.Sprintf("  Constraint key mapping: %v", err)}
	}
	return CheckResult{Name: "Registry", Status: "✓"}
}

// checkScopeConfig reports whether the current directory pins a scope
func checkScopeConfig() CheckResult {
	cwd, err := os.Getwd()
	if err != nil {
		return CheckResult{Name: "Scope config", Status: "✗", Details: "  Cannot get working directory"}
	}
	cfg, err := config.LoadConfig(cwd)
	if err != nil {
		return CheckResult{
			Name:    "Scope config",
			Status:  "⚠",
			Details: fmt.Sprintf("  No %s - commands will need --scope", filepath.Join(".canopy", "config.json")),
		}
	}
	if cfg.ScopeID == "" {
		return CheckResult{Name: "Scope config", Status: "⚠", Details: "  Config present but scope_id is empty"}
	}
	return CheckResult{Name: "Scope config", Status: "✓"}
}
