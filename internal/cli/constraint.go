package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/canopy/internal/core/fact"
	"github.com/example/canopy/internal/wire"
)

// ConstraintCmd returns the constraint command group
func ConstraintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "constraint",
		Short: "Manage constraint facts on a run",
		Long: `Add and inspect a run's constraint facts - regulatory and policy
limits keyed by a domain-qualified identifier. Constraints reach
execution state only through the static key-to-pointer mapping.`,
	}

	cmd.AddCommand(constraintAddCmd())
	cmd.AddCommand(constraintListCmd())

	return cmd
}

func constraintAddCmd() *cobra.Command {
	var (
		domain     string
		label      string
		provenance string
		sourceID   string
		snippet    string
		values     valueFlags
	)

	cmd := &cobra.Command{
		Use:   "add [run-id] [key]",
		Short: "Add a constraint fact to a draft run",
		Long: `Add a constraint fact to a draft run. Source-backed constraints must
cite exactly one source via --source.

Examples:
  canopy constraint add RUN-002 regulatory.setback_m --domain regulatory \
      --number 4.5 --provenance source_backed --source SRC-001
  canopy constraint add RUN-002 equity.priority_zone --domain equity --bool`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := values.parse(cmd)
			if err != nil {
				return err
			}

			c := fact.Constraint{
				Key:        args[1],
				Domain:     fact.Domain(domain),
				Label:      label,
				Value:      value,
				Provenance: fact.Provenance(provenance),
				SourceID:   sourceID,
				Snippet:    snippet,
			}
			return wire.IntakeAdapter().AddConstraint(context.Background(), args[0], c)
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "", "Domain (site, regulatory, equity, biophysical)")
	cmd.Flags().StringVar(&label, "label", "", "Display label")
	cmd.Flags().StringVar(&provenance, "provenance", "user_entered", "Provenance tier (source_backed, model_inferred, user_entered, unknown)")
	cmd.Flags().StringVar(&sourceID, "source", "", "Evidence source ID")
	cmd.Flags().StringVar(&snippet, "snippet", "", "Supporting snippet from the evidence")
	values.register(cmd)

	return cmd
}

func constraintListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [run-id]",
		Short: "List a run's constraints in key order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.IntakeAdapter().ListConstraints(context.Background(), args[0])
		},
	}
}
