package search

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/harrison/scout/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// concurrencyMockMatcher records how many MatchFile calls overlap.
type concurrencyMockMatcher struct {
	mu       sync.Mutex
	current  int
	maxSeen  int
	calls    []string
	duration time.Duration
}

func newConcurrencyMockMatcher(duration time.Duration) *concurrencyMockMatcher {
	return &concurrencyMockMatcher{duration: duration}
}

func (m *concurrencyMockMatcher) MatchFile(path, pattern string) *models.FileSearchResult {
	m.mu.Lock()
	m.current++
	if m.current > m.maxSeen {
		m.maxSeen = m.current
	}
	m.calls = append(m.calls, path)
	m.mu.Unlock()

	time.Sleep(m.duration)

	m.mu.Lock()
	m.current--
	m.mu.Unlock()

	return &models.FileSearchResult{
		FileName:      path,
		SearchResults: []models.SearchResult{{LineNumber: 0, MatchText: pattern}},
	}
}

func makeCandidates(n int) []models.Candidate {
	candidates := make([]models.Candidate, n)
	for i := range candidates {
		candidates[i] = models.Candidate{Index: i, Path: fmt.Sprintf("file-%02d.txt", i)}
	}
	return candidates
}

func TestNewScheduler_RejectsNonPositiveConcurrency(t *testing.T) {
	for _, n := range []int{0, -1} {
		t.Run(fmt.Sprintf("concurrency %d", n), func(t *testing.T) {
			mock := newConcurrencyMockMatcher(0)

			scheduler, err := NewScheduler(mock, n)
			require.Error(t, err)
			assert.Nil(t, scheduler)
			assert.True(t, models.IsConfigurationError(err))
			assert.Empty(t, mock.calls, "no file may be searched")
		})
	}
}

func TestNewScheduler_RequiresMatcher(t *testing.T) {
	_, err := NewScheduler(nil, 1)
	require.Error(t, err)
}

func TestScheduler_RespectsConcurrencyCap(t *testing.T) {
	for _, n := range []int{1, 2, 3, 8} {
		t.Run(fmt.Sprintf("cap %d", n), func(t *testing.T) {
			mock := newConcurrencyMockMatcher(10 * time.Millisecond)
			scheduler, err := NewScheduler(mock, n)
			require.NoError(t, err)

			outcomes, err := scheduler.Run(context.Background(), makeCandidates(12), "p")
			require.NoError(t, err)

			assert.Len(t, outcomes, 12)
			assert.LessOrEqual(t, mock.maxSeen, n)
			assert.Len(t, mock.calls, 12)
		})
	}
}

func TestScheduler_UsesAvailableSlots(t *testing.T) {
	mock := newConcurrencyMockMatcher(30 * time.Millisecond)
	scheduler, err := NewScheduler(mock, 4)
	require.NoError(t, err)

	_, err = scheduler.Run(context.Background(), makeCandidates(8), "p")
	require.NoError(t, err)

	assert.Greater(t, mock.maxSeen, 1, "searches should overlap when the cap allows it")
}

// slowFirstMatcher blocks the first candidate until every other candidate
// has been searched, which is only possible with greedy slot reuse.
type slowFirstMatcher struct {
	release chan struct{}
	mu      sync.Mutex
	others  int
	total   int
}

func (m *slowFirstMatcher) MatchFile(path, pattern string) *models.FileSearchResult {
	if path == "file-00.txt" {
		select {
		case <-m.release:
		case <-time.After(5 * time.Second):
		}
		return nil
	}

	m.mu.Lock()
	m.others++
	if m.others == m.total-1 {
		close(m.release)
	}
	m.mu.Unlock()
	return nil
}

func TestScheduler_GreedySlotReuse(t *testing.T) {
	candidates := makeCandidates(6)
	matcher := &slowFirstMatcher{release: make(chan struct{}), total: len(candidates)}

	scheduler, err := NewScheduler(matcher, 2)
	require.NoError(t, err)

	start := time.Now()
	outcomes, err := scheduler.Run(context.Background(), candidates, "p")
	require.NoError(t, err)

	assert.Len(t, outcomes, len(candidates))
	assert.Less(t, time.Since(start), 4*time.Second, "remaining files should flow through the free slot")
}

func TestScheduler_ReturnsEveryOutcome(t *testing.T) {
	candidates := makeCandidates(5)
	matcher := MatcherFunc(func(path, pattern string) *models.FileSearchResult {
		if path == "file-01.txt" || path == "file-03.txt" {
			return &models.FileSearchResult{FileName: path, SearchResults: []models.SearchResult{{}}}
		}
		return nil
	})

	scheduler, err := NewScheduler(matcher, 3)
	require.NoError(t, err)

	outcomes, err := scheduler.Run(context.Background(), candidates, "p")
	require.NoError(t, err)
	require.Len(t, outcomes, 5)

	seen := make(map[int]bool)
	matched := 0
	for _, o := range outcomes {
		seen[o.Candidate.Index] = true
		if o.Matched() {
			matched++
		}
	}
	assert.Len(t, seen, 5)
	assert.Equal(t, 2, matched)
}

func TestScheduler_EmptyCandidates(t *testing.T) {
	scheduler, err := NewScheduler(newConcurrencyMockMatcher(0), 4)
	require.NoError(t, err)

	outcomes, err := scheduler.Run(context.Background(), nil, "p")
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

func TestScheduler_CancelledContextStopsAdmission(t *testing.T) {
	mock := newConcurrencyMockMatcher(0)
	scheduler, err := NewScheduler(mock, 2)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes, err := scheduler.Run(ctx, makeCandidates(4), "p")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, outcomes)
	assert.Empty(t, mock.calls)
}

func TestScheduler_CancelWhileSlotsBusy(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var calls []string

	matcher := MatcherFunc(func(path, pattern string) *models.FileSearchResult {
		mu.Lock()
		calls = append(calls, path)
		first := len(calls) == 1
		mu.Unlock()
		if first {
			close(started)
			<-release
		}
		return nil
	})

	scheduler, err := NewScheduler(matcher, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type runResult struct {
		outcomes []models.Outcome
		err      error
	}
	done := make(chan runResult, 1)
	go func() {
		outcomes, err := scheduler.Run(ctx, makeCandidates(3), "p")
		done <- runResult{outcomes, err}
	}()

	// The only slot is held by the first file; the second is waiting to be admitted.
	<-started
	cancel()
	close(release)

	select {
	case res := <-done:
		require.ErrorIs(t, res.err, context.Canceled)
		require.Len(t, res.outcomes, 1)
		assert.Equal(t, "file-00.txt", res.outcomes[0].Candidate.Path)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"file-00.txt"}, calls, "no file is admitted after cancel")
}

type countingProgress struct {
	mu    sync.Mutex
	total int
	count int
}

func (p *countingProgress) SetTotal(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
}

func (p *countingProgress) Add(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count += n
	return nil
}

type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) LogDebug(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, message)
}

func TestScheduler_Options(t *testing.T) {
	progress := &countingProgress{}
	logger := &recordingLogger{}

	scheduler, err := NewScheduler(newConcurrencyMockMatcher(0), 2, WithProgress(progress), WithLogger(logger))
	require.NoError(t, err)
	assert.Equal(t, 2, scheduler.Concurrency())

	_, err = scheduler.Run(context.Background(), makeCandidates(7), "p")
	require.NoError(t, err)

	assert.Equal(t, 7, progress.total)
	assert.Equal(t, 7, progress.count)
	assert.NotEmpty(t, logger.messages)
}
