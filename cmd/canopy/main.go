package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/canopy/internal/cli"
	"github.com/example/canopy/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "canopy",
		Short:   "Canopy - context intake for tree-planting plans",
		Version: version.String(),
		Long: `Canopy is a CLI tool for municipal tree-planting context intake.
It records auditable fact runs (sources, inputs, constraints), commits
them into deterministic context views, and projects those views into
the execution state downstream planners consume.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DoctorCmd())
	rootCmd.AddCommand(cli.RunCmd())
	rootCmd.AddCommand(cli.SourceCmd())
	rootCmd.AddCommand(cli.InputCmd())
	rootCmd.AddCommand(cli.ConstraintCmd())
	rootCmd.AddCommand(cli.SuggestCmd())
	rootCmd.AddCommand(cli.ArtifactCmd())
	rootCmd.AddCommand(cli.ContextCmd())
	rootCmd.AddCommand(cli.GapsCmd())
	rootCmd.AddCommand(cli.StatusCmd())

	// Developer tools
	rootCmd.AddCommand(cli.DevCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
