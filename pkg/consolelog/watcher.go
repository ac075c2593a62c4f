package consolelog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tf2rp/consolelog-go/internal/tailer"
)

// Watcher rescans console.log on an interval and reports state changes.
type Watcher struct {
	in   *Interpreter
	opts *watchConfig

	cursor       Cursor
	cleanupAsked atomic.Bool

	mu       sync.Mutex
	closed   bool
	cancel   context.CancelFunc // cancel func to stop the goroutine
	doneCh   chan struct{}      // signals when goroutine has exited
	watching bool               // true if Watch() has been called
}

// NewWatcher creates a watcher for in.
// Does NOT start goroutines (cheap to call).
// Returns error for a nil Interpreter or invalid options.
func NewWatcher(in *Interpreter, opts ...WatchOption) (*Watcher, error) {
	if in == nil {
		return nil, fmt.Errorf("invalid options: nil interpreter")
	}
	cfg := applyWatchOptions(opts)
	if cfg.pollInterval < 0 {
		return nil, fmt.Errorf("invalid options: poll interval must be non-negative, got %v", cfg.pollInterval)
	}
	if cfg.pollInterval == 0 {
		cfg.pollInterval = defaultWatchConfig().pollInterval
	}
	return &Watcher{in: in, opts: cfg}, nil
}

// RequestCleanup makes the next scan clean up console.log regardless of
// the game state. The request stays pending while console.log is missing
// or stale.
func (w *Watcher) RequestCleanup() {
	w.cleanupAsked.Store(true)
}

// Watch starts watching and returns channels.
// The first scan happens right away and its state is always sent.
// After that a state is only sent when it differs from the last one sent.
// Both channels close on ctx.Done() or Close.
// Watch can only be called once per Watcher instance.
func (w *Watcher) Watch(ctx context.Context) (<-chan State, <-chan error) {
	w.mu.Lock()
	if w.closed || w.watching {
		w.mu.Unlock()
		stateCh := make(chan State)
		errCh := make(chan error)
		close(stateCh)
		close(errCh)
		return stateCh, errCh
	}
	w.watching = true

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	stateCh := make(chan State)
	errCh := make(chan error, 8)

	go w.run(ctx, stateCh, errCh)

	return stateCh, errCh
}

// Close stops the watcher and releases resources.
// Safe to call multiple times.
// Blocks until the goroutine has exited.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true

	if w.cancel != nil {
		w.cancel()
	}
	doneCh := w.doneCh
	w.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}
	return nil
}

func (w *Watcher) run(ctx context.Context, stateCh chan<- State, errCh chan<- error) {
	defer close(w.doneCh)
	defer close(stateCh)
	defer close(errCh)

	var (
		follower *tailer.Tailer
		changes  <-chan struct{}
		tailErrs <-chan error
	)
	if w.opts.follow {
		t, err := tailer.New(ctx, w.in.Path(), tailer.DefaultConfig())
		if err != nil {
			sendError(errCh, fmt.Errorf("starting tailer: %w", err))
		} else {
			defer func() { _ = t.Stop() }()
			follower = t
			changes = t.Changes()
			tailErrs = t.Errors()
		}
	}

	ticker := time.NewTicker(w.opts.pollInterval)
	defer ticker.Stop()

	var (
		last State
		sent bool
	)
	scan := func() {
		forceCleanup := w.cleanupAsked.Swap(false)
		res := w.in.Scan(&w.cursor, Request{
			Usernames:    w.opts.usernames,
			ForceCleanup: forceCleanup,
			ProcessStart: w.opts.processStart(),
		})
		if forceCleanup && res.Cleanup == nil {
			// Scan stopped before cleaning up; keep the request for the next one.
			w.cleanupAsked.Store(true)
		}
		if res.Status == StatusUnchanged {
			return
		}
		if res.LogMissing {
			sendError(errCh, fmt.Errorf("%w: %s", ErrConsoleLogNotFound, w.in.Path()))
		}
		if sent && res.State == last {
			return
		}
		select {
		case stateCh <- res.State:
			last, sent = res.State, true
		case <-ctx.Done():
		}
	}

	scan()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			scan()
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			w.in.logger.Debug("console.log was appended to", "lines_followed", follower.Lines())
			scan()
		case err, ok := <-tailErrs:
			if !ok {
				tailErrs = nil
				continue
			}
			sendError(errCh, err)
		}
	}
}

// sendError sends an error non-blocking.
func sendError(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
		// Drop error if channel is full
	}
}

// Watch is a convenience function that creates an Interpreter and a
// Watcher for path and starts watching.
// Returns error immediately for initialization failures.
func Watch(ctx context.Context, path string, opts []Option, watchOpts ...WatchOption) (<-chan State, <-chan error, error) {
	in, err := New(path, opts...)
	if err != nil {
		return nil, nil, err
	}
	w, err := NewWatcher(in, watchOpts...)
	if err != nil {
		return nil, nil, err
	}
	states, errs := w.Watch(ctx)
	return states, errs, nil
}
