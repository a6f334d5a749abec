// Package search implements literal substring search over the files of a
// single directory with bounded concurrency.
//
// A run has three stages:
//
//   - Matcher scans one file and reports the first occurrence of the
//     pattern on every line, or nil when nothing matched.
//   - Scheduler runs a FileMatcher over all candidates with at most N
//     files in flight, admitting the next file as soon as a slot frees.
//   - Aggregate drops files without matches and restores candidate order
//     (or keeps completion order when asked to).
//
// Engine wires the stages to fileutil.SelectFiles:
//
//	engine, err := search.NewEngine(search.NewMatcher(search.NewColorHighlighter(true)), 4)
//	if err != nil {
//	    return err // *models.ConfigurationError for a cap <= 0
//	}
//	report, err := engine.Search(ctx, search.Request{
//	    Directory: ".",
//	    Pattern:   "hello",
//	    Select:    fileutil.SelectOptions{Filter: fileutil.WildcardFilter},
//	})
//
// Per-file problems (unreadable files, undecodable lines) never surface as
// errors; they only reduce what is found.
package search
