package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/canopy/internal/core/fact"
	"github.com/example/canopy/internal/wire"
)

// ArtifactCmd returns the artifact command group
func ArtifactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifact",
		Short: "Manage generated artifacts on a run",
		Long: `Register and inspect a run's generated artifacts - summaries, site
maps, exports. Artifacts are the one record family still writable
after the run commits: a re-render adds a new artifact and supersedes
the old one rather than reopening the run.`,
	}

	cmd.AddCommand(artifactAddCmd())
	cmd.AddCommand(artifactListCmd())
	cmd.AddCommand(artifactSupersedeCmd())

	return cmd
}

func artifactAddCmd() *cobra.Command {
	var (
		kind  string
		title string
		uri   string
	)

	cmd := &cobra.Command{
		Use:   "add [run-id]",
		Short: "Register a generated artifact against a run",
		Long: `Register a generated artifact against a run. Works on drafts and
committed runs alike.

Examples:
  canopy artifact add RUN-001 --kind summary --title "Intake summary"
  canopy artifact add RUN-001 --kind site_map --title "Plot map" --uri renders/ward7-plots.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			art := fact.Artifact{
				Kind:  kind,
				Title: title,
				URI:   uri,
			}
			return wire.IntakeAdapter().AddArtifact(context.Background(), args[0], art)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Artifact kind, e.g. summary, site_map (required)")
	cmd.Flags().StringVar(&title, "title", "", "Artifact title (required)")
	cmd.Flags().StringVar(&uri, "uri", "", "Where the rendered artifact lives")

	return cmd
}

func artifactListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [run-id]",
		Short: "List a run's artifacts, superseded ones flagged",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.IntakeAdapter().ListArtifacts(context.Background(), args[0])
		},
	}
}

func artifactSupersedeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "supersede [run-id] [artifact-id]",
		Short: "Flag an artifact as replaced",
		Long: `Flag an artifact as replaced by a newer render. The row stays in
storage for audit but stops surfacing in resolved context views.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.IntakeAdapter().SupersedeArtifact(context.Background(), args[0], args[1])
		},
	}
}
