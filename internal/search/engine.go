package search

import (
	"context"
	"fmt"
	"time"

	"github.com/harrison/scout/internal/fileutil"
	"github.com/harrison/scout/internal/models"
)

// Request describes a single search run.
type Request struct {
	Directory string
	Pattern   string
	Select    fileutil.SelectOptions
	Order     Order
	// Compare also runs the single-threaded path over the same inputs and
	// records its duration for comparison.
	Compare bool
}

// Report is the outcome of a search run.
type Report struct {
	Results    []models.FileSearchResult
	Summary    models.Summary
	Concurrent time.Duration // Selection plus concurrent search
	Sequential time.Duration // Selection plus sequential search, zero unless Request.Compare
}

// Engine ties candidate selection, scheduling and aggregation together.
type Engine struct {
	matcher   FileMatcher
	scheduler *Scheduler
	logger    Logger
}

// NewEngine creates an Engine that searches with m under the given
// concurrency cap. Scheduler options are passed through.
func NewEngine(m FileMatcher, concurrency int, opts ...SchedulerOption) (*Engine, error) {
	scheduler, err := NewScheduler(m, concurrency, opts...)
	if err != nil {
		return nil, err
	}
	return &Engine{
		matcher:   m,
		scheduler: scheduler,
		logger:    scheduler.logger,
	}, nil
}

// ValidatePattern rejects patterns that cannot produce meaningful matches.
func ValidatePattern(pattern string) error {
	if pattern == "" {
		return models.NewConfigurationError("pattern", "must not be empty")
	}
	return nil
}

// Search selects candidates from req.Directory and searches them
// concurrently. Configuration and directory errors abort the run before
// any file is read and no partial report is returned.
func (e *Engine) Search(ctx context.Context, req Request) (*Report, error) {
	if err := ValidatePattern(req.Pattern); err != nil {
		return nil, err
	}

	start := time.Now()

	candidates, err := fileutil.SelectFiles(req.Directory, req.Select)
	if err != nil {
		return nil, err
	}
	e.logDebug(fmt.Sprintf("Selected %d candidate(s) in %s", len(candidates), req.Directory))

	outcomes, err := e.scheduler.Run(ctx, candidates, req.Pattern)
	if err != nil {
		return nil, fmt.Errorf("search interrupted: %w", err)
	}

	results := Aggregate(outcomes, req.Order)
	report := &Report{
		Results:    results,
		Summary:    models.Summarize(len(candidates), results),
		Concurrent: time.Since(start),
	}

	if req.Compare {
		sequential, err := e.timeSequential(req)
		if err != nil {
			return nil, err
		}
		report.Sequential = sequential
	}

	return report, nil
}

// timeSequential repeats selection and search on a single goroutine.
func (e *Engine) timeSequential(req Request) (time.Duration, error) {
	start := time.Now()

	candidates, err := fileutil.SelectFiles(req.Directory, req.Select)
	if err != nil {
		return 0, err
	}
	Sequential(e.matcher, candidates, req.Pattern)

	return time.Since(start), nil
}

func (e *Engine) logDebug(message string) {
	if e.logger != nil {
		e.logger.LogDebug(message)
	}
}
