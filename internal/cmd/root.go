package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for scout.
// The root command itself runs a search; history is a subcommand.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scout <pattern>",
		Short: "Concurrent literal text search over a directory",
		Long: `Scout searches the regular files directly inside a directory for a literal
pattern and prints every matching line, highlighted, grouped by file.

Files are searched concurrently with at most --threads files open at once.
Subdirectories are not entered.

Configuration is loaded from .scout/config.yaml if present.
CLI flags override configuration file settings.

Examples:
  # Search the current directory
  scout hello

  # Only files whose path contains ".txt", eight at a time
  scout hello -d ./notes -f .txt -t 8

  # Export a markdown report and keep it updated as files change
  scout TODO --format markdown -o todo.md --watch

  # Show recorded runs
  scout history --limit 5`,
		Version: Version,
		Args:    cobra.ExactArgs(1),
		RunE:    runSearchCommand,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main prints the error once
		SilenceErrors: true,
	}

	addSearchFlags(cmd)

	// Add subcommands
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
