package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/scout/internal/config"
	"github.com/harrison/scout/internal/display"
	"github.com/harrison/scout/internal/filelock"
	"github.com/harrison/scout/internal/history"
	"github.com/harrison/scout/internal/logger"
	"github.com/harrison/scout/internal/search"
	"github.com/harrison/scout/internal/watch"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// addSearchFlags registers the search flags on the root command
func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("directory", "d", ".", "Directory whose files are searched")
	cmd.Flags().StringP("file", "f", "*", "Only search files whose path contains this text (* = all)")
	cmd.Flags().IntP("threads", "t", 4, "Maximum number of files searched at once")
	cmd.Flags().String("glob", "", "Only search files whose name matches this shell pattern")
	cmd.Flags().String("order", "candidate", "Result order: candidate (directory order) or completion")
	cmd.Flags().String("format", "text", "Report format: text, markdown or html")
	cmd.Flags().StringP("output", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().Bool("timing", true, "Print concurrent and sequential search times")
	cmd.Flags().Bool("progress", false, "Show a progress bar on stderr")
	cmd.Flags().Bool("watch", false, "Search again whenever a candidate file changes")
	cmd.Flags().Bool("record", false, "Record the run in the search history")
	cmd.Flags().String("config", "", "Path to config file (default: .scout/config.yaml)")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().String("log-dir", "", "Write a per-run log file to this directory")
	cmd.Flags().Bool("no-color", false, "Disable coloured output")
	cmd.Flags().BoolP("verbose", "v", false, "Shorthand for --log-level debug")
}

// runSearchCommand implements the root command
func runSearchCommand(cmd *cobra.Command, args []string) error {
	pattern := args[0]
	if err := search.ValidatePattern(pattern); err != nil {
		return err
	}

	cfg, err := loadSearchConfig(cmd)
	if err != nil {
		return err
	}

	noColor, _ := cmd.Flags().GetBool("no-color")
	if noColor {
		color.NoColor = true
	}

	outputPath, _ := cmd.Flags().GetString("output")
	showProgress, _ := cmd.Flags().GetBool("progress")
	watchMode, _ := cmd.Flags().GetBool("watch")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := newSearchSession(cmd, cfg, pattern, outputPath, showProgress, !noColor)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := session.Run(ctx); err != nil {
		return err
	}

	if !watchMode {
		return nil
	}
	return session.Watch(ctx)
}

// loadSearchConfig loads the config file and applies explicitly set flags
func loadSearchConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	overrides := config.FlagOverrides{
		Threads:   intFlag(cmd, "threads"),
		Directory: stringFlag(cmd, "directory"),
		Filter:    stringFlag(cmd, "file"),
		Glob:      stringFlag(cmd, "glob"),
		Order:     stringFlag(cmd, "order"),
		Format:    stringFlag(cmd, "format"),
		Timing:    boolFlag(cmd, "timing"),
		LogLevel:  stringFlag(cmd, "log-level"),
		LogDir:    stringFlag(cmd, "log-dir"),
		Record:    boolFlag(cmd, "record"),
	}
	if verbose, _ := flags.GetBool("verbose"); verbose && overrides.LogLevel == nil {
		debug := "debug"
		overrides.LogLevel = &debug
	}
	cfg.MergeWithFlags(overrides)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func intFlag(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

func boolFlag(cmd *cobra.Command, name string) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetBool(name)
	return &v
}

// isTerminal reports whether w is a terminal file descriptor
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// searchSession holds everything one invocation needs to run, and in watch
// mode repeat, a search.
type searchSession struct {
	cfg        *config.Config
	pattern    string
	order      search.Order
	outputPath string

	engine   *search.Engine
	reporter *display.Reporter
	progress *display.ProgressBar
	log      logger.Logger

	fileLogger *logger.FileLogger
	out        io.Writer
	errOut     io.Writer
}

func newSearchSession(cmd *cobra.Command, cfg *config.Config, pattern, outputPath string, showProgress, allowColor bool) (*searchSession, error) {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	order, err := search.ParseOrder(cfg.Order)
	if err != nil {
		return nil, err
	}
	format, err := display.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	console := logger.NewConsoleLogger(errOut, cfg.LogLevel)
	if !allowColor {
		console.SetColor(false)
	}

	s := &searchSession{
		cfg:        cfg,
		pattern:    pattern,
		order:      order,
		outputPath: outputPath,
		reporter:   display.NewReporter(format),
		out:        out,
		errOut:     errOut,
	}

	if cfg.LogDir != "" {
		fl, err := logger.NewFileLoggerWithDirAndLevel(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to create file logger: %w", err)
		}
		s.fileLogger = fl
		s.log = logger.NewMultiLogger(console, fl)
	} else {
		s.log = console
	}

	// Only a text report on a colour terminal gets escape codes
	var highlighter search.Highlighter = search.PlainHighlighter{}
	if format == display.FormatText && outputPath == "" && allowColor && isTerminal(out) {
		highlighter = search.NewColorHighlighter(true)
	}

	opts := []search.SchedulerOption{search.WithLogger(s.log)}
	if showProgress {
		s.progress = display.NewProgressBar(errOut)
		opts = append(opts, search.WithProgress(s.progress))
	}

	engine, err := search.NewEngine(search.NewMatcher(highlighter), cfg.Threads, opts...)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.engine = engine

	return s, nil
}

// Run performs one search and writes its report.
func (s *searchSession) Run(ctx context.Context) error {
	start := time.Now()
	s.log.LogSearchStart(s.cfg.Directory, s.pattern, s.cfg.Threads)

	report, err := s.engine.Search(ctx, search.Request{
		Directory: s.cfg.Directory,
		Pattern:   s.pattern,
		Select:    s.cfg.SelectOptions(),
		Order:     s.order,
		Compare:   s.cfg.Timing,
	})
	if err != nil {
		if s.progress != nil {
			s.progress.Finish()
		}
		s.log.LogError(err.Error())
		return err
	}

	doc := display.Document{
		Directory: s.cfg.Directory,
		Pattern:   s.pattern,
		Results:   report.Results,
		Summary:   report.Summary,
	}
	if err := s.writeReport(ctx, doc); err != nil {
		return err
	}

	if s.cfg.Timing {
		if err := display.WriteTiming(s.timingWriter(), report.Concurrent, report.Sequential); err != nil {
			return err
		}
	}

	duration := time.Since(start)
	s.log.LogSearchComplete(report.Summary, duration)
	s.recordHistory(ctx, report, duration)

	return nil
}

func (s *searchSession) writeReport(ctx context.Context, doc display.Document) error {
	if s.outputPath == "" {
		return s.reporter.Write(s.out, doc)
	}

	data, err := s.reporter.Render(doc)
	if err != nil {
		return err
	}
	if err := filelock.LockAndWrite(ctx, s.outputPath, data); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", s.outputPath, err)
	}
	s.log.LogInfo(fmt.Sprintf("Report written to %s", s.outputPath))
	return nil
}

// timingWriter keeps the timing lines out of a markdown or html report
// printed on stdout.
func (s *searchSession) timingWriter() io.Writer {
	if s.outputPath != "" || s.reporter.Format() == display.FormatText {
		return s.out
	}
	return s.errOut
}

// recordHistory stores the run when history is enabled. Failures are
// logged and never fail the search.
func (s *searchSession) recordHistory(ctx context.Context, report *search.Report, duration time.Duration) {
	if !s.cfg.History.Enabled {
		return
	}

	dbPath, err := config.GetHistoryDBPath(s.cfg)
	if err != nil {
		s.log.LogWarn(fmt.Sprintf("history disabled: %v", err))
		return
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		s.log.LogWarn(fmt.Sprintf("failed to open history: %v", err))
		return
	}
	defer store.Close()

	run := history.NewRun(s.cfg.Directory, s.pattern, s.cfg.Filter, s.cfg.Glob, s.cfg.Threads, report.Summary, duration)
	if err := store.Record(ctx, run, report.Results); err != nil {
		s.log.LogWarn(fmt.Sprintf("failed to record search: %v", err))
		return
	}
	s.log.LogDebug(fmt.Sprintf("Recorded run %s in %s", run.RunID, store.Path()))

	deleted, err := store.Cleanup(ctx, s.cfg.History.KeepDays)
	if err != nil {
		s.log.LogWarn(fmt.Sprintf("failed to clean up history: %v", err))
		return
	}
	if deleted > 0 {
		s.log.LogDebug(fmt.Sprintf("Removed %d run(s) older than %d day(s)", deleted, s.cfg.History.KeepDays))
	}
}

// Watch repeats the search whenever a candidate file changes, until ctx is
// cancelled.
func (s *searchSession) Watch(ctx context.Context) error {
	accept, err := s.cfg.SelectOptions().Matcher()
	if err != nil {
		return err
	}

	ignore := s.reportFileMatcher()
	w, err := watch.New(s.cfg.Directory, func(path string) bool {
		return !ignore(path) && accept(path)
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.cfg.Directory, err)
	}
	defer w.Close()

	s.log.LogInfo(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", s.cfg.Directory))

	return w.Loop(ctx, func(ctx context.Context, changed []string) error {
		s.log.LogInfo(fmt.Sprintf("%d file(s) changed, searching again", len(changed)))
		if err := s.Run(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		return nil
	}, func(err error) {
		s.log.LogWarn(fmt.Sprintf("watch error: %v", err))
	})
}

// reportFileMatcher matches the exported report together with its lock
// and temporary files, so writing the report does not trigger a new run.
func (s *searchSession) reportFileMatcher() func(path string) bool {
	if s.outputPath == "" {
		return func(string) bool { return false }
	}

	outDir, base := absDir(s.outputPath), filepath.Base(s.outputPath)
	return func(path string) bool {
		if absDir(path) != outDir {
			return false
		}
		name := filepath.Base(path)
		return strings.HasPrefix(name, base) || strings.HasPrefix(name, "."+base)
	}
}

func absDir(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Dir(filepath.Clean(path))
	}
	return filepath.Dir(abs)
}

// Close releases the per-run log file.
func (s *searchSession) Close() {
	if s.fileLogger != nil {
		s.fileLogger.Close()
	}
}
