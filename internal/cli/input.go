package cli

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/canopy/internal/config"
	"github.com/example/canopy/internal/core/fact"
	"github.com/example/canopy/internal/ctxutil"
	"github.com/example/canopy/internal/wire"
)

// InputCmd returns the input command group
func InputCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "input",
		Short: "Manage input facts on a run",
		Long: `Set and inspect a run's input facts. Each input targets one
execution-state pointer; setting the same pointer twice on a run
overwrites the earlier version.`,
	}

	cmd.AddCommand(inputSetCmd())
	cmd.AddCommand(inputListCmd())
	cmd.AddCommand(inputLinkCmd())

	return cmd
}

func inputSetCmd() *cobra.Command {
	var (
		domain     string
		fieldType  string
		label      string
		required   bool
		provenance string
		snippet    string
		sources    []string
		actor      string
		options    []string
		values     valueFlags
	)

	cmd := &cobra.Command{
		Use:   "set [run-id] [pointer]",
		Short: "Set an input fact on a draft run",
		Long: `Set an input fact on a draft run. Exactly one value flag (or none,
for an unknown fact) may be given; source-backed inputs must cite at
least one source via --source.

Examples:
  canopy input set RUN-002 site.address --domain site --string "1200 Elm St NW"
  canopy input set RUN-002 site.soil_type --domain site --field-type select \
      --enum loam --provenance source_backed --source SRC-001
  canopy input set RUN-002 equity.priority_zone --domain equity --field-type boolean --bool`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := values.parse(cmd)
			if err != nil {
				return err
			}

			// The acting identity rides on the context; the service
			// records it as updated_by unless the record names one.
			updatedBy := actor
			if updatedBy == "" {
				cwd, err := os.Getwd()
				if err == nil {
					cfg, cfgErr := config.LoadConfig(cwd)
					if cfgErr == nil {
						updatedBy = cfg.EffectiveActor()
					}
				}
			}
			if updatedBy == "" {
				updatedBy = config.ActorUser
			}
			ctx := ctxutil.WithActor(context.Background(), updatedBy)

			in := fact.Input{
				Pointer:    args[1],
				Label:      label,
				Domain:     fact.Domain(domain),
				Required:   required,
				FieldType:  fact.FieldType(fieldType),
				Options:    options,
				Value:      value,
				Provenance: fact.Provenance(provenance),
				Snippet:    snippet,
				SourceIDs:  sources,
			}
			return wire.IntakeAdapter().SetInput(ctx, args[0], in)
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "", "Domain (site, regulatory, equity, biophysical)")
	cmd.Flags().StringVar(&fieldType, "field-type", "text", "Field type (text, select, boolean)")
	cmd.Flags().StringVar(&label, "label", "", "Display label")
	cmd.Flags().BoolVar(&required, "required", false, "Mark the input required")
	cmd.Flags().StringVar(&provenance, "provenance", "user_entered", "Provenance tier (source_backed, model_inferred, user_entered, unknown)")
	cmd.Flags().StringVar(&snippet, "snippet", "", "Supporting snippet from the evidence")
	cmd.Flags().StringSliceVar(&sources, "source", nil, "Evidence source ID (repeatable)")
	cmd.Flags().StringVar(&actor, "actor", "", "Recorded updated_by (defaults to the configured actor)")
	cmd.Flags().StringSliceVar(&options, "option", nil, "Allowed option for select fields (repeatable)")
	values.register(cmd)

	return cmd
}

func inputListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [run-id]",
		Short: "List a run's inputs in pointer order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.IntakeAdapter().ListInputs(context.Background(), args[0])
		},
	}
}

func inputLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link [run-id] [input-id] [source-id...]",
		Short: "Link an input to evidence sources",
		Long: `Record evidence links from an input to one or more sources of the
same run. Re-linking an existing pair is a no-op.

Examples:
  canopy input link RUN-002 INP-001 SRC-001
  canopy input link RUN-002 INP-001 SRC-001 SRC-002`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceIDs := args[2:]
			for _, id := range sourceIDs {
				if strings.TrimSpace(id) == "" {
					return cmd.Usage()
				}
			}
			return wire.IntakeAdapter().LinkEvidence(context.Background(), args[0], args[1], sourceIDs)
		},
	}
}
