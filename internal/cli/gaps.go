package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/canopy/internal/core/gap"
	"github.com/example/canopy/internal/core/view"
	"github.com/example/canopy/internal/ports/primary"
	"github.com/example/canopy/internal/wire"
)

// GapsCmd returns the gaps command
func GapsCmd() *cobra.Command {
	var scope, runID string
	var all bool

	cmd := &cobra.Command{
		Use:   "gaps",
		Short: "Show requirement pointers the context leaves unset",
		Long: `Resolve the scope's context, project it into a fresh execution-state
tree, and report which registry requirements remain unset. Required
gaps block a complete plan; --all shows optional ones too.

Examples:
  canopy gaps
  canopy gaps --all
  canopy gaps --run RUN-001`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scopeID, cfg, err := resolveScope(scope)
			if err != nil {
				return err
			}
			var pinned string
			if cfg != nil {
				pinned = cfg.RunID
			}
			if runID != "" {
				pinned = runID
			}

			ctx := context.Background()
			v, err := wire.ContextService().Resolve(ctx, scopeID, primary.ResolveOptions{RunID: pinned})
			if err != nil {
				var noCtx *view.NoCommittedContextError
				if errors.As(err, &noCtx) {
					fmt.Printf("No committed context for scope %s yet.\n", scopeID)
					fmt.Println("Commit a run first: canopy run commit <run-id>")
					return nil
				}
				return err
			}

			state, _ := wire.ProjectionService().Project(v, map[string]any{})

			labels := make(map[string]string)
			for _, req := range wire.GapService().Requirements() {
				labels[req.Pointer] = req.Label
			}

			required := wire.GapService().MissingPointers(state, gap.SeverityRequired)
			printGaps("Required gaps", required, labels, color.New(color.FgRed))

			if all {
				optional := wire.GapService().MissingPointers(state, gap.SeverityOptional)
				printGaps("Optional gaps", optional, labels, color.New(color.FgYellow))
			}

			if len(required) == 0 {
				fmt.Println(color.New(color.FgGreen).Sprintf("✓ Context for %s covers every required pointer (run %s)", scopeID, v.Run.ID))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "Scope ID (defaults to the pinned scope)")
	cmd.Flags().StringVar(&runID, "run", "", "Pin a specific committed run")
	cmd.Flags().BoolVar(&all, "all", false, "Include optional gaps")

	return cmd
}

func printGaps(heading string, pointers []string, labels map[string]string, c *color.Color) {
	if len(pointers) == 0 {
		return
	}
	fmt.Printf("%s (%d):\n", heading, len(pointers))
	for _, p := range pointers {
		label := labels[p]
		if label == "" {
			label = p
		}
		fmt.Printf("  %s %s\n", c.Sprint(p), label)
	}
	fmt.Println()
}
