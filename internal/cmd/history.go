package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/scout/internal/config"
	"github.com/harrison/scout/internal/history"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the 'scout history' command
func NewHistoryCommand() *cobra.Command {
	var limit int
	var clearAll bool
	var yes bool
	var showFiles bool
	var dbPath string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear recorded search runs",
		Long: `Show the most recent search runs recorded with --record or history.enabled.

Examples:
  # Ten most recent runs
  scout history

  # Include per-file match counts
  scout history --limit 3 --files

  # Delete all recorded runs (requires confirmation)
  scout history --clear`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveHistoryDBPath(dbPath)
			if err != nil {
				return err
			}
			if clearAll {
				return runHistoryClear(cmd, path, yes)
			}
			return runHistoryShow(cmd, path, limit, showFiles)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of runs to show (0 = all)")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete all recorded runs")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation when clearing")
	cmd.Flags().BoolVar(&showFiles, "files", false, "Show per-file match counts")
	cmd.Flags().StringVar(&dbPath, "db-path", "", "Path to history database (default: history.db_path or $SCOUT_HOME/history.db)")

	return cmd
}

// resolveHistoryDBPath picks the database from the flag, the config file,
// or the scout home directory, in that order.
func resolveHistoryDBPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	cfg, err := config.LoadConfigFromDir(".")
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	return config.GetHistoryDBPath(cfg)
}

func runHistoryShow(cmd *cobra.Command, dbPath string, limit int, showFiles bool) error {
	output := cmd.OutOrStdout()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(output, "No search history found at: %s\n", dbPath)
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runs, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(output, "No recorded searches.\n")
		return nil
	}

	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	gray := color.New(color.FgHiBlack)

	cyan.Fprintf(output, "=== Search History (%d run(s)) ===\n", len(runs))
	for _, run := range runs {
		fmt.Fprintf(output, "\n%s  %q in %s\n", run.Timestamp.Local().Format("2006-01-02 15:04:05"), run.Pattern, run.Directory)
		fmt.Fprintf(output, "  ")
		if run.FilesMatched > 0 {
			green.Fprintf(output, "%d match(es) in %d of %d file(s)", run.TotalMatches, run.FilesMatched, run.Candidates)
		} else {
			fmt.Fprintf(output, "%d match(es) in %d of %d file(s)", run.TotalMatches, run.FilesMatched, run.Candidates)
		}
		fmt.Fprintf(output, "  threads: %d  filter: %s", run.Threads, describeFilter(run))
		gray.Fprintf(output, "  (%s)\n", run.Duration.Round(time.Microsecond))
		gray.Fprintf(output, "  run %s\n", run.RunID)

		if !showFiles {
			continue
		}
		files, err := store.Files(ctx, run.ID)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintf(output, "    %s: %d\n", f.FileName, f.MatchCount)
		}
	}

	return nil
}

func describeFilter(run *history.Run) string {
	filter := run.Filter
	if filter == "" {
		filter = "*"
	}
	if run.Glob != "" {
		return fmt.Sprintf("%s, glob %s", filter, run.Glob)
	}
	return filter
}

func runHistoryClear(cmd *cobra.Command, dbPath string, yes bool) error {
	output := cmd.OutOrStdout()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(output, "No search history found at: %s\n", dbPath)
		return nil
	}

	if !yes {
		fmt.Fprintf(output, "WARNING: This will delete ALL recorded searches in %s.\n", dbPath)
		if !confirmAction(cmd.InOrStdin(), output) {
			fmt.Fprintf(output, "Operation cancelled.\n")
			return nil
		}
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	deleted, err := store.Clear(ctx)
	if err != nil {
		return err
	}

	runText := "run"
	if deleted != 1 {
		runText = "runs"
	}
	fmt.Fprintf(output, "Deleted %d %s.\n", deleted, runText)

	return nil
}

// confirmAction prompts the user for confirmation
func confirmAction(input io.Reader, output io.Writer) bool {
	scanner := bufio.NewScanner(input)

	fmt.Fprintf(output, "Continue? [y/N]: ")

	if !scanner.Scan() {
		return false
	}

	response := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return response == "y" || response == "yes"
}
