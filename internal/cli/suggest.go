package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/canopy/internal/config"
	"github.com/example/canopy/internal/core/fact"
	"github.com/example/canopy/internal/ctxutil"
	"github.com/example/canopy/internal/wire"
)

// suggestionBatch is the interchange format the external extractor emits.
type suggestionBatch struct {
	Inputs []fact.Input `json:"inputs"`
}

// SuggestCmd returns the suggest command group
func SuggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Import model-suggested inputs",
		Long: `Import candidate inputs produced by an external extractor. Imported
records are recorded as model_inferred no matter what the file claims,
and pass through the same validation as hand-entered inputs.`,
	}

	cmd.AddCommand(suggestImportCmd())

	return cmd
}

func suggestImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [run-id] [file.json]",
		Short: "Import a suggestion batch into a draft run",
		Long: `Import a JSON suggestion batch into a draft run. The file holds an
"inputs" array of input facts; value and snippet fields carry over,
provenance is overwritten with model_inferred.

Examples:
  canopy suggest import RUN-002 suggestions.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read suggestion file: %w", err)
			}

			var batch suggestionBatch
			if err := json.Unmarshal(data, &batch); err != nil {
				return fmt.Errorf("failed to parse suggestion file: %w", err)
			}
			if len(batch.Inputs) == 0 {
				fmt.Println("No inputs in suggestion file, nothing to import")
				return nil
			}

			ctx := ctxutil.WithActor(context.Background(), config.ActorModel)
			return wire.IntakeAdapter().ImportSuggestions(ctx, args[0], batch.Inputs)
		},
	}

	return cmd
}
