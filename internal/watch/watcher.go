// Package watch reports changes to the candidate files of a search
// directory so a search can be repeated when they change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceDelay is the quiet period used to coalesce bursts of events
const DefaultDebounceDelay = 200 * time.Millisecond

// Watcher watches the immediate children of one directory. Events for
// accepted paths are collected until the directory has been quiet for the
// debounce delay and then delivered as one sorted batch on Changes.
type Watcher struct {
	watcher *fsnotify.Watcher
	dir     string
	accept  func(path string) bool
	changes chan []string
	errors  chan error
	done    chan struct{}
	stopped chan struct{}

	mu            sync.Mutex
	debounceDelay time.Duration
	pending       map[string]bool
	timer         *time.Timer
	closed        bool
}

// New starts watching dir. accept selects the paths worth reporting; a nil
// accept reports every path. Subdirectories are not watched.
func New(dir string, accept func(path string) bool) (*Watcher, error) {
	if accept == nil {
		accept = func(string) bool { return true }
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		watcher:       fsw,
		dir:           filepath.Clean(dir),
		accept:        accept,
		changes:       make(chan []string, 1),
		errors:        make(chan error, 10),
		done:          make(chan struct{}),
		stopped:       make(chan struct{}),
		debounceDelay: DefaultDebounceDelay,
		pending:       make(map[string]bool),
	}

	go w.processEvents()

	return w, nil
}

// Changes delivers batches of changed paths.
func (w *Watcher) Changes() <-chan []string {
	return w.changes
}

// Errors delivers errors reported by the underlying watcher.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// SetDebounceDelay changes the quiet period for batches not yet scheduled.
func (w *Watcher) SetDebounceDelay(delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounceDelay = delay
}

func (w *Watcher) processEvents() {
	defer close(w.stopped)

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				// Error channel full, drop the error
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Permission and timestamp changes leave the content alone
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if !w.accept(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	w.pending[event.Name] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounceDelay, w.flush)
}

// flush sends the pending paths as one batch. When the previous batch has
// not been read yet the paths stay pending and are retried after another
// delay.
func (w *Watcher) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || len(w.pending) == 0 {
		return
	}

	batch := make([]string, 0, len(w.pending))
	for path := range w.pending {
		batch = append(batch, path)
	}
	sort.Strings(batch)

	select {
	case w.changes <- batch:
		w.pending = make(map[string]bool)
		w.timer = nil
	default:
		w.timer = time.AfterFunc(w.debounceDelay, w.flush)
	}
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pending = nil
	w.mu.Unlock()

	close(w.done)
	err := w.watcher.Close()
	<-w.stopped
	return err
}

// Loop calls fn with every batch until ctx is done or fn returns an error.
// Watcher errors go to onError when it is non-nil. Loop returns nil when
// ctx ends the loop.
func (w *Watcher) Loop(ctx context.Context, fn func(ctx context.Context, changed []string) error, onError func(error)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case batch := <-w.changes:
			if err := fn(ctx, batch); err != nil {
				return err
			}
		case err := <-w.errors:
			if onError != nil {
				onError(err)
			}
		}
	}
}
