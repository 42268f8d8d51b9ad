package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/canopy/internal/core/fact"
	"github.com/example/canopy/internal/wire"
)

// SourceCmd returns the source command group
func SourceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "source",
		Short: "Manage evidence sources on a run",
		Long: `Register and inspect the evidence sources a run's facts cite:
uploaded files, URLs, GIS layers, API pulls, or manual notes.`,
	}

	cmd.AddCommand(sourceAddCmd())
	cmd.AddCommand(sourceListCmd())
	cmd.AddCommand(sourceParsedCmd())

	return cmd
}

func sourceAddCmd() *cobra.Command {
	var (
		kind     string
		title    string
		uri      string
		fileRef  string
		mimeType string
		excerpt  string
	)

	cmd := &cobra.Command{
		Use:   "add [run-id]",
		Short: "Add an evidence source to a draft run",
		Long: `Add an evidence source to a draft run.

Examples:
  canopy source add RUN-002 --kind file --title "Soil survey" --file-ref surveys/ward7.pdf
  canopy source add RUN-002 --kind url --title "Tree ordinance 14-302" --uri https://example.gov/ord/14-302
  canopy source add RUN-002 --kind gis --title "Canopy cover layer"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := fact.Source{
				Kind:     fact.SourceKind(kind),
				Title:    title,
				URI:      uri,
				FileRef:  fileRef,
				MimeType: mimeType,
				Excerpt:  excerpt,
			}
			return wire.IntakeAdapter().AddSource(context.Background(), args[0], src)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "file", "Source kind (file, url, gis, api, manual)")
	cmd.Flags().StringVar(&title, "title", "", "Source title (required)")
	cmd.Flags().StringVar(&uri, "uri", "", "Source URI")
	cmd.Flags().StringVar(&fileRef, "file-ref", "", "Stored file reference")
	cmd.Flags().StringVar(&mimeType, "mime-type", "", "MIME type")
	cmd.Flags().StringVar(&excerpt, "excerpt", "", "Short excerpt for display")

	return cmd
}

func sourceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [run-id]",
		Short: "List a run's evidence sources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.IntakeAdapter().ListSources(context.Background(), args[0])
		},
	}
}

func sourceParsedCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "parsed [run-id] [source-id]",
		Short: "Update a source's parse status",
		Long: `Record the outcome of parsing a source.

Examples:
  canopy source parsed RUN-002 SRC-001
  canopy source parsed RUN-002 SRC-001 --status failed`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.IntakeAdapter().MarkParsed(context.Background(), args[0], args[1], fact.ParseStatus(status))
		},
	}

	cmd.Flags().StringVar(&status, "status", "parsed", "Parse status (pending, parsed, failed, unsupported)")

	return cmd
}
