package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/canopy/internal/config"
	"github.com/example/canopy/internal/core/gap"
	"github.com/example/canopy/internal/core/run"
	"github.com/example/canopy/internal/core/view"
	"github.com/example/canopy/internal/ports/primary"
	"github.com/example/canopy/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the pinned scope's intake status",
		Long: `Display the current work context based on .canopy/config.json in the
current directory: the pinned scope, its runs, the active committed
context, and how many required gaps remain.

This provides a focused view of "where am I right now?"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			cfg, cfgErr := config.LoadConfig(cwd)
			if cfgErr != nil {
				fmt.Println("Canopy Status - No Context")
				fmt.Println()
				fmt.Println("No .canopy/config.json found in current directory.")
				fmt.Println("Pin a scope first:")
				fmt.Println("  canopy init --scope ward-7")
				return nil //nolint:nilerr // Missing config is intentionally not an error
			}

			ctx := context.Background()
			fmt.Printf("Canopy Status - scope %s\n\n", cfg.ScopeID)

			runs, err := wire.IntakeService().ListRuns(ctx, cfg.ScopeID)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No runs yet. Start one:")
				fmt.Println("  canopy run create")
				return nil
			}

			fmt.Printf("Runs (%d):\n", len(runs))
			for _, r := range runs {
				marker := ""
				if cfg.RunID == r.ID {
					marker = color.New(color.FgHiMagenta).Sprint(" [pinned]")
				}
				fmt.Printf("  %s %s%s\n", r.ID, statusBadge(r.Status), marker)
			}
			fmt.Println()

			opts := primary.ResolveOptions{RunID: cfg.RunID}
			v, err := wire.ContextService().Resolve(ctx, cfg.ScopeID, opts)
			if err != nil {
				var noCtx *view.NoCommittedContextError
				if errors.As(err, &noCtx) {
					fmt.Println("Context: none committed yet")
					return nil
				}
				return err
			}

			fmt.Printf("Context: run %s, committed %s\n", v.Run.ID, v.Run.CommittedAt)
			fmt.Printf("  %d inputs, %d constraints, %d sources\n",
				len(v.InputsByPointer), len(v.Constraints), len(v.SourcesByID))

			state, _ := wire.ProjectionService().Project(v, map[string]any{})
			missing := wire.GapService().MissingPointers(state, gap.SeverityRequired)
			if len(missing) == 0 {
				fmt.Println(color.New(color.FgGreen).Sprint("  ✓ no required gaps"))
			} else {
				fmt.Println(color.New(color.FgRed).Sprintf("  %d required gap(s) - run 'canopy gaps'", len(missing)))
			}

			return nil
		},
	}
}

// statusBadge colors a run status for terminal display.
func statusBadge(s run.Status) string {
	switch s {
	case run.StatusDraft:
		return color.New(color.FgHiBlack).Sprint("[draft]")
	case run.StatusCommitted:
		return color.New(color.FgHiGreen).Sprint("[committed]")
	case run.StatusPartialCommitted:
		return color.New(color.FgHiYellow).Sprint("[partial_committed]")
	default:
		return fmt.Sprintf("[%s]", s)
	}
}
