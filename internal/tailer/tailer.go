// Package tailer follows console.log and signals when it grows.
package tailer

import (
	"context"
	"fmt"
	"sync"

	"github.com/nxadm/tail"
)

// tailerErrBuffer is the buffer size for the error channel.
// A small buffer prevents error loss during brief moments when the consumer
// is busy scanning.
const tailerErrBuffer = 16

// Tailer wraps nxadm/tail. Lines are not delivered; a burst of appended
// lines collapses into a single pending change signal.
type Tailer struct {
	t       *tail.Tail
	ctx     context.Context
	cancel  context.CancelFunc
	changes chan struct{}
	errors  chan error
	doneCh  chan struct{}

	mu      sync.Mutex
	stopped bool
	lines   int
}

// Config holds configuration for tailing.
type Config struct {
	// ReOpen reopens the file when it's truncated or recreated, which
	// trimming and cleanup both do.
	ReOpen bool

	// Poll uses polling instead of inotify (more compatible but less efficient).
	Poll bool

	// MustExist requires the file to exist before starting (false = wait for
	// creation, as console.log only appears once the game runs with -condebug).
	MustExist bool
}

// DefaultConfig returns the default configuration for console.log.
func DefaultConfig() Config {
	return Config{
		ReOpen:    true,
		Poll:      false, // Use inotify/ReadDirectoryChangesW when available
		MustExist: false,
	}
}

// New starts following the file at path from its current end.
// The provided context controls the tailer's lifecycle.
func New(ctx context.Context, path string, cfg Config) (*Tailer, error) {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    cfg.ReOpen,
		Poll:      cfg.Poll,
		MustExist: cfg.MustExist,
		Location:  &tail.SeekInfo{Offset: 0, Whence: 2},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening tail: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)

	tailer := &Tailer{
		t:       t,
		ctx:     ctx,
		cancel:  cancel,
		changes: make(chan struct{}, 1),
		errors:  make(chan error, tailerErrBuffer),
		doneCh:  make(chan struct{}),
	}

	go tailer.run()

	return tailer, nil
}

// Changes returns a channel that receives a value when lines were appended
// since the last receive.
func (t *Tailer) Changes() <-chan struct{} {
	return t.changes
}

// Errors returns a channel that receives errors from tailing.
// Errors are sent non-blocking; if the channel is not read, errors are dropped.
func (t *Tailer) Errors() <-chan error {
	return t.errors
}

// Lines returns how many lines have been seen since New.
func (t *Tailer) Lines() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lines
}

// Stop stops tailing and closes all channels.
// Safe to call multiple times.
func (t *Tailer) Stop() error {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return nil
	}
	t.stopped = true
	t.mu.Unlock()

	t.cancel()
	<-t.doneCh // Wait for run() to finish
	return t.t.Stop()
}

func (t *Tailer) run() {
	defer close(t.doneCh)
	defer close(t.changes)
	defer close(t.errors)

	for {
		select {
		case <-t.ctx.Done():
			return
		case line, ok := <-t.t.Lines:
			if !ok {
				return
			}
			if line.Err != nil {
				select {
				case t.errors <- fmt.Errorf("tail: %w", line.Err):
				case <-t.ctx.Done():
					return
				default:
					// Drop error only if buffer is full
				}
				continue
			}
			select {
			case t.changes <- struct{}{}:
			default:
				// A change is already pending
			}

			t.mu.Lock()
			t.lines++
			t.mu.Unlock()
		}
	}
}
