// Package display renders scout output for the terminal and for exported
// files.
//
// # Reports
//
// Reporter renders aggregated search results as plain text (the default),
// markdown, or an HTML page produced from the markdown with goldmark:
//
//	reporter := display.NewReporter(display.FormatText)
//	err := reporter.Write(os.Stdout, display.Document{
//	    Directory: ".",
//	    Pattern:   "hello",
//	    Results:   report.Results,
//	    Summary:   report.Summary,
//	})
//
// Text output keeps the matcher's highlighting. Markdown and HTML rebuild
// the emphasis from the raw line, so they never contain escape codes.
//
// # Timing
//
// WriteTiming prints the concurrent and sequential durations in
// nanoseconds.
//
// # Progress
//
// ProgressBar wraps schollz/progressbar and satisfies search.Progress, so
// it can be handed straight to search.WithProgress.
package display
