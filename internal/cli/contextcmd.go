package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/canopy/internal/ports/primary"
	"github.com/example/canopy/internal/wire"
)

// ContextCmd returns the context command group
func ContextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Resolve and export the scope's context view",
		Long: `Resolve the normalized context view for a scope. By default the
latest committed run is resolved; --run pins a specific committed run.
Every resolve re-reads from storage and re-normalizes, so two exports
of the same run are byte-identical.`,
	}

	cmd.AddCommand(contextShowCmd())
	cmd.AddCommand(contextExportCmd())
	cmd.AddCommand(contextProjectCmd())

	return cmd
}

// contextResolveOptions builds resolve options from the shared flags and
// the pinned config.
func contextResolveOptions(runID string, latest bool, cfgRunID string) primary.ResolveOptions {
	opts := primary.ResolveOptions{RunID: runID}
	if opts.RunID == "" {
		opts.RunID = cfgRunID
	}
	if latest {
		opts.Prefer = primary.PreferLatestCommit
		opts.RunID = ""
	}
	return opts
}

func contextShowCmd() *cobra.Command {
	var scope, runID string
	var latest bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a human-readable context summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			scopeID, cfg, err := resolveScope(scope)
			if err != nil {
				return err
			}
			var pinned string
			if cfg != nil {
				pinned = cfg.RunID
			}
			opts := contextResolveOptions(runID, latest, pinned)
			return wire.ContextAdapter().Show(context.Background(), scopeID, opts)
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "Scope ID (defaults to the pinned scope)")
	cmd.Flags().StringVar(&runID, "run", "", "Pin a specific committed run")
	cmd.Flags().BoolVar(&latest, "latest", false, "Resolve the latest commit, ignoring any pin")

	return cmd
}

func contextExportCmd() *cobra.Command {
	var scope, runID string
	var latest bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the context view as JSON",
		Long: `Export the resolved context view as indented JSON on stdout.

Examples:
  canopy context export > ward7-context.json
  canopy context export --run RUN-001`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scopeID, cfg, err := resolveScope(scope)
			if err != nil {
				return err
			}
			var pinned string
			if cfg != nil {
				pinned = cfg.RunID
			}
			opts := contextResolveOptions(runID, latest, pinned)
			return wire.ContextAdapter().Export(context.Background(), scopeID, opts)
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "Scope ID (defaults to the pinned scope)")
	cmd.Flags().StringVar(&runID, "run", "", "Pin a specific committed run")
	cmd.Flags().BoolVar(&latest, "latest", false, "Resolve the latest commit, ignoring any pin")

	return cmd
}

func contextProjectCmd() *cobra.Command {
	var scope, runID, stateFile, outFile string
	var latest, dryRun bool

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project the context view into an execution-state tree",
		Long: `Resolve the scope's context view and merge it into an execution-state
tree. With --state the tree is read from a JSON file; without it the
projection starts from an empty tree. The merged tree is written to
--out, or stdout. With --dry-run the patch set is printed and nothing
is applied or written.

Examples:
  canopy context project
  canopy context project --dry-run
  canopy context project --state plan-state.json --out plan-state.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scopeID, cfg, err := resolveScope(scope)
			if err != nil {
				return err
			}
			var pinned string
			if cfg != nil {
				pinned = cfg.RunID
			}
			opts := contextResolveOptions(runID, latest, pinned)

			if dryRun {
				v, err := wire.ContextService().Resolve(context.Background(), scopeID, opts)
				if err != nil {
					return err
				}
				report := wire.ProjectionService().BuildPatches(v)
				fmt.Printf("Run %s would apply %d patch(es):\n", v.Run.ID, len(report.Patches))
				for _, p := range report.Patches {
					fmt.Printf("  %s = %v\n", p.Pointer, p.Value)
				}
				if report.SkippedEmpty > 0 {
					fmt.Printf("Skipped %d empty value(s)\n", report.SkippedEmpty)
				}
				for _, key := range report.DroppedKeys {
					fmt.Printf("Dropped unmapped constraint key %s\n", key)
				}
				return nil
			}

			state := map[string]any{}
			if stateFile != "" {
				data, err := os.ReadFile(stateFile)
				if err != nil {
					return fmt.Errorf("failed to read state file: %w", err)
				}
				if err := json.Unmarshal(data, &state); err != nil {
					return fmt.Errorf("failed to parse state file: %w", err)
				}
			}

			merged, err := wire.ContextAdapter().Project(context.Background(), scopeID, opts, state)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(merged, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal state: %w", err)
			}
			data = append(data, '\n')

			if outFile != "" {
				if err := os.WriteFile(outFile, data, 0644); err != nil {
					return fmt.Errorf("failed to write state file: %w", err)
				}
				fmt.Printf("✓ State written to %s\n", outFile)
				return nil
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "Scope ID (defaults to the pinned scope)")
	cmd.Flags().StringVar(&runID, "run", "", "Pin a specific committed run")
	cmd.Flags().BoolVar(&latest, "latest", false, "Resolve the latest commit, ignoring any pin")
	cmd.Flags().StringVar(&stateFile, "state", "", "Existing execution-state JSON file to merge into")
	cmd.Flags().StringVar(&outFile, "out", "", "Write the merged state here instead of stdout")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the patch set without applying it")

	return cmd
}
