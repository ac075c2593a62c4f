package consolelog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tf2rp/consolelog-go/pkg/consolelog"
)

func newInterpreter(t *testing.T, path string, opts ...consolelog.Option) *consolelog.Interpreter {
	t.Helper()
	in, err := consolelog.New(path, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return in
}

func receiveState(t *testing.T, states <-chan consolelog.State) consolelog.State {
	t.Helper()
	select {
	case s, ok := <-states:
		if !ok {
			t.Fatal("state channel closed")
		}
		return s
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for state")
	}
	return consolelog.State{}
}

func TestNewWatcher_Invalid(t *testing.T) {
	if _, err := consolelog.NewWatcher(nil); err == nil {
		t.Error("NewWatcher(nil) expected error")
	}

	in := newInterpreter(t, "console.log")
	if _, err := consolelog.NewWatcher(in, consolelog.WithPollInterval(-time.Second)); err == nil {
		t.Error("NewWatcher() expected error for negative poll interval")
	}
}

func TestWatcher_InitialAndChangedState(t *testing.T) {
	path := writeLog(t, "Map: cp_badlands")
	in := newInterpreter(t, path)

	w, err := consolelog.NewWatcher(in, consolelog.WithPollInterval(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	states, _ := w.Watch(ctx)

	if s := receiveState(t, states); s.Map != "cp_badlands" {
		t.Fatalf("first state Map = %q, want cp_badlands", s.Map)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("Map: cp_granary\n")
	f.Close()
	touch(t, path, 1)

	if s := receiveState(t, states); s.Map != "cp_granary" {
		t.Errorf("changed state Map = %q, want cp_granary", s.Map)
	}
}

func TestWatcher_SkipsRepeatedState(t *testing.T) {
	path := writeLog(t, "Map: cp_badlands")
	in := newInterpreter(t, path)

	w, err := consolelog.NewWatcher(in, consolelog.WithPollInterval(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	states, _ := w.Watch(ctx)
	receiveState(t, states)

	// Rescanned, but nothing that matters changed
	touch(t, path, 1)

	select {
	case s := <-states:
		t.Errorf("unexpected state %+v", s)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_MissingLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	in := newInterpreter(t, path)

	w, err := consolelog.NewWatcher(in, consolelog.WithPollInterval(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	states, errs := w.Watch(context.Background())
	if s := receiveState(t, states); !s.IsDefault() {
		t.Errorf("state = %+v, want default", s)
	}

	select {
	case err := <-errs:
		if !errors.Is(err, consolelog.ErrConsoleLogNotFound) {
			t.Errorf("error = %v, want %v", err, consolelog.ErrConsoleLogNotFound)
		}
	case <-time.After(time.Second):
		t.Error("timeout waiting for missing log error")
	}
}

func TestWatcher_RequestCleanup(t *testing.T) {
	path := blankLog(t, 3)
	p := &recorder{}
	in := newInterpreter(t, path, consolelog.WithPresenter(p))

	w, err := consolelog.NewWatcher(in, consolelog.WithPollInterval(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	states, _ := w.Watch(context.Background())
	receiveState(t, states)
	w.RequestCleanup()

	if got, want := waitForSummary(t, p), "Removed 0 error lines and 3 blank lines (total: 3) from console.log."; got != want {
		t.Errorf("summary = %q, want %q", got, want)
	}
}

func waitForSummary(t *testing.T, p *recorder) string {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		p.mu.Lock()
		summary := p.summary
		p.mu.Unlock()
		if summary != "" {
			return summary
		}
		select {
		case <-deadline:
			t.Fatal("timeout waiting for cleanup")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWatcher_RequestCleanupWhileStale(t *testing.T) {
	path := blankLog(t, 3)
	p := &recorder{}
	in := newInterpreter(t, path, consolelog.WithPresenter(p))

	// The game starts after the log was written until fresh is set
	var fresh atomic.Bool
	processStart := func() time.Time {
		if fresh.Load() {
			return time.Time{}
		}
		return time.Now().Add(time.Hour)
	}

	w, err := consolelog.NewWatcher(in,
		consolelog.WithPollInterval(10*time.Millisecond),
		consolelog.WithProcessStart(processStart),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	w.RequestCleanup()
	states, _ := w.Watch(context.Background())
	if s := receiveState(t, states); !s.IsDefault() {
		t.Fatalf("state = %+v, want default for a stale log", s)
	}

	time.Sleep(50 * time.Millisecond)
	p.mu.Lock()
	summary := p.summary
	p.mu.Unlock()
	if summary != "" {
		t.Fatalf("cleaned up a stale log: %q", summary)
	}

	fresh.Store(true)
	if got, want := waitForSummary(t, p), "Removed 0 error lines and 3 blank lines (total: 3) from console.log."; got != want {
		t.Errorf("summary = %q, want %q", got, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "\n\n"); got != 0 {
		t.Errorf("console.log still has blank lines: %q", data)
	}
}

func TestWatcher_Follow(t *testing.T) {
	path := writeLog(t, "Map: cp_badlands")
	in := newInterpreter(t, path)

	// The poll interval is too long to matter, so only appends trigger scans
	w, err := consolelog.NewWatcher(in,
		consolelog.WithPollInterval(time.Hour),
		consolelog.WithFollow(true),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	states, _ := w.Watch(context.Background())
	receiveState(t, states)

	// Give tailer a moment to start watching
	time.Sleep(100 * time.Millisecond)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("Map: cp_process_final\n")
	f.Sync()
	f.Close()
	touch(t, path, 1)

	if s := receiveState(t, states); s.Map != "cp_process_final" {
		t.Errorf("state Map = %q, want cp_process_final", s.Map)
	}
}

func TestWatcher_WatchTwice(t *testing.T) {
	path := writeLog(t, "Map: cp_badlands")
	w, err := consolelog.NewWatcher(newInterpreter(t, path), consolelog.WithPollInterval(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	w.Watch(context.Background())
	states, errs := w.Watch(context.Background())
	if _, ok := <-states; ok {
		t.Error("second Watch() state channel is open")
	}
	if _, ok := <-errs; ok {
		t.Error("second Watch() error channel is open")
	}
}

func TestWatcher_CloseMultipleTimes(t *testing.T) {
	path := writeLog(t, "Map: cp_badlands")
	w, err := consolelog.NewWatcher(newInterpreter(t, path))
	if err != nil {
		t.Fatal(err)
	}

	states, _ := w.Watch(context.Background())

	if err := w.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	// Drain; the channel must be closed after Close returns
	for range states {
	}
}

func TestWatcher_ContextCancel(t *testing.T) {
	path := writeLog(t, "Map: cp_badlands")
	w, err := consolelog.NewWatcher(newInterpreter(t, path))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	states, _ := w.Watch(ctx)
	receiveState(t, states)
	cancel()

	select {
	case _, ok := <-states:
		if ok {
			t.Error("expected state channel to be closed after context cancel")
		}
	case <-time.After(2 * time.Second):
		t.Error("timeout waiting for state channel to close")
	}
}

func TestWatch(t *testing.T) {
	path := writeLog(t, "Map: cp_badlands")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	states, _, err := consolelog.Watch(ctx, path, nil, consolelog.WithPollInterval(time.Hour))
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if s := receiveState(t, states); s.Map != "cp_badlands" {
		t.Errorf("state Map = %q", s.Map)
	}

	if _, _, err := consolelog.Watch(ctx, "", nil); !errors.Is(err, consolelog.ErrPathRequired) {
		t.Errorf("Watch(\"\") error = %v, want %v", err, consolelog.ErrPathRequired)
	}
}
