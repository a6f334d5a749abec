package search

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/harrison/scout/internal/models"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Logger receives scheduler diagnostics. logger.ConsoleLogger and
// logger.FileLogger both satisfy it.
type Logger interface {
	LogDebug(message string)
}

// Progress is told the candidate count when a run starts and is advanced
// once per completed file. display.ProgressBar satisfies it.
type Progress interface {
	SetTotal(total int)
	Add(n int) error
}

// Scheduler runs a FileMatcher over many candidates with a fixed cap on the
// number of files searched at once.
type Scheduler struct {
	matcher     FileMatcher
	concurrency int
	logger      Logger
	progress    Progress
}

// SchedulerOption configures optional Scheduler collaborators.
type SchedulerOption func(*Scheduler)

// WithLogger attaches a logger for per-run and per-file diagnostics.
func WithLogger(l Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = l
	}
}

// WithProgress attaches a progress sink advanced once per completed file.
func WithProgress(p Progress) SchedulerOption {
	return func(s *Scheduler) {
		s.progress = p
	}
}

// NewScheduler constructs a Scheduler that keeps at most concurrency files
// in flight. A concurrency of zero or less is a configuration error.
func NewScheduler(m FileMatcher, concurrency int, opts ...SchedulerOption) (*Scheduler, error) {
	if m == nil {
		return nil, fmt.Errorf("file matcher is required")
	}
	if concurrency <= 0 {
		return nil, models.NewConfigurationError("threads", "must be greater than 0, got %d", concurrency)
	}

	s := &Scheduler{
		matcher:     m,
		concurrency: concurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Concurrency returns the configured cap.
func (s *Scheduler) Concurrency() int {
	return s.concurrency
}

// Run searches every candidate for pattern and blocks until all dispatched
// searches have finished.
//
// A new search is admitted as soon as any running one completes, so slots
// are reused greedily rather than in fixed batches. Outcomes are returned
// in completion order, one per dispatched candidate; use Aggregate to
// restore candidate order.
//
// No per-file failure is reported. The only error is ctx cancellation,
// which stops further admission; searches already running still finish
// and their outcomes are returned alongside ctx.Err().
func (s *Scheduler) Run(ctx context.Context, candidates []models.Candidate, pattern string) ([]models.Outcome, error) {
	if len(candidates) == 0 {
		return []models.Outcome{}, nil
	}

	start := time.Now()
	s.logDebug(fmt.Sprintf("Searching %d file(s) with concurrency %d", len(candidates), s.concurrency))

	if s.progress != nil {
		s.progress.SetTotal(len(candidates))
	}

	// Buffered to the candidate count so finished tasks never block on send
	// and their slot frees immediately.
	outcomesCh := make(chan models.Outcome, len(candidates))

	// The semaphore caps files in flight. Waiting on it also watches ctx,
	// so a cancel that arrives while every slot is busy admits nothing more.
	slots := semaphore.NewWeighted(int64(s.concurrency))
	var g errgroup.Group

	var dispatched int32
	var launchErr error

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			launchErr = err
			break
		}
		if err := slots.Acquire(ctx, 1); err != nil {
			launchErr = err
			break
		}
		// Acquire may win against a cancel that raced it
		if err := ctx.Err(); err != nil {
			slots.Release(1)
			launchErr = err
			break
		}

		atomic.AddInt32(&dispatched, 1)

		// Each task owns its candidate and pattern values.
		g.Go(func() error {
			defer slots.Release(1)
			outcomesCh <- s.searchOne(candidate, pattern)
			return nil
		})
	}

	_ = g.Wait()
	close(outcomesCh)

	outcomes := make([]models.Outcome, 0, atomic.LoadInt32(&dispatched))
	for outcome := range outcomesCh {
		outcomes = append(outcomes, outcome)
	}

	s.logDebug(fmt.Sprintf("Searched %d file(s) in %s", len(outcomes), time.Since(start)))

	return outcomes, launchErr
}

// searchOne runs the matcher for a single candidate.
func (s *Scheduler) searchOne(candidate models.Candidate, pattern string) models.Outcome {
	result := s.matcher.MatchFile(candidate.Path, pattern)

	if s.progress != nil {
		// Progress rendering failures never affect the search.
		_ = s.progress.Add(1)
	}

	if result != nil {
		s.logDebug(fmt.Sprintf("%s: %d match(es)", candidate.Path, result.MatchCount()))
	}

	return models.Outcome{Candidate: candidate, Result: result}
}

func (s *Scheduler) logDebug(message string) {
	if s.logger != nil {
		s.logger.LogDebug(message)
	}
}
