package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/canopy/internal/wire"
)

// RunCmd returns the run command group
func RunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Manage intake runs",
		Long: `Create and manage intake runs - the versioned containers every fact
belongs to. A run starts as a draft, accumulates sources, inputs, and
constraints, and is then committed to become the scope's context.`,
	}

	cmd.AddCommand(runCreateCmd())
	cmd.AddCommand(runListCmd())
	cmd.AddCommand(runShowCmd())
	cmd.AddCommand(runCommitCmd())
	cmd.AddCommand(runTouchCmd())

	return cmd
}

func runCreateCmd() *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new draft run",
		Long: `Create a new draft intake run for a scope.

Examples:
  canopy run create
  canopy run create --scope ward-7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scopeID, _, err := resolveScope(scope)
			if err != nil {
				return err
			}
			return wire.IntakeAdapter().CreateRun(context.Background(), scopeID)
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "Scope ID (defaults to the pinned scope)")

	return cmd
}

func runListCmd() *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a scope's runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			scopeID, _, err := resolveScope(scope)
			if err != nil {
				return err
			}
			return wire.IntakeAdapter().ListRuns(context.Background(), scopeID)
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "Scope ID (defaults to the pinned scope)")

	return cmd
}

func runShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show run details and record counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.IntakeAdapter().ShowRun(context.Background(), args[0])
		},
	}
}

func runCommitCmd() *cobra.Command {
	var allowPartial bool

	cmd := &cobra.Command{
		Use:   "commit [run-id]",
		Short: "Commit a draft run",
		Long: `Commit a draft run, freezing its facts. A committed run becomes the
scope's active context and accepts no further fact writes (artifacts
excepted).

Pass --allow-partial to acknowledge that required inputs may still be
unset; the run then commits as partial_committed.

Examples:
  canopy run commit RUN-002
  canopy run commit RUN-002 --allow-partial`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.IntakeAdapter().Commit(context.Background(), args[0], allowPartial)
		},
	}

	cmd.Flags().BoolVar(&allowPartial, "allow-partial", false, "Commit even with required inputs unset")

	return cmd
}

func runTouchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "touch [run-id]",
		Short: "Bump a draft run's updatedAt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.IntakeService().TouchRun(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("✓ Run %s touched\n", args[0])
			return nil
		},
	}
}
