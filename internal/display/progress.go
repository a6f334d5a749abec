package display

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ProgressBar shows how many candidate files have been searched.
// It is safe for concurrent use by scheduler goroutines.
type ProgressBar struct {
	mu  sync.Mutex
	w   io.Writer
	bar *progressbar.ProgressBar
}

// NewProgressBar creates a bar that renders to w once SetTotal is called.
// Use a stream other than the report's (stderr) so the report stays clean.
func NewProgressBar(w io.Writer) *ProgressBar {
	return &ProgressBar{w: w}
}

// SetTotal starts a new bar counting up to total files.
func (p *ProgressBar) SetTotal(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	w := p.w
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Searching files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

// Add advances the bar by n files. It is a no-op before SetTotal.
func (p *ProgressBar) Add(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		return nil
	}
	return p.bar.Add(n)
}

// Finish fills the bar, used when a run ends early.
func (p *ProgressBar) Finish() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		return nil
	}
	return p.bar.Finish()
}

// Current returns the number of files counted so far.
func (p *ProgressBar) Current() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		return 0
	}
	return p.bar.State().CurrentNum
}
