package commands

import (
	"github.com/spf13/cobra"

	"github.com/lotfolio/lotfolio/internal/version"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "lotfolio",
		Short:   "Lot-based stock portfolio tracking",
		Version: version.Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newAnalyzeCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newFixDatesCommand())

	return rootCmd
}
