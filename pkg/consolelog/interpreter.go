package consolelog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/leighmacdonald/steamid/v4/steamid"

	"github.com/tf2rp/consolelog-go/internal/interpreter"
	"github.com/tf2rp/consolelog-go/internal/logreader"
	"github.com/tf2rp/consolelog-go/internal/maintenance"
	"github.com/tf2rp/consolelog-go/internal/servername"
)

// SpecialScanEvery is how often, in scans, tracked player detection runs.
// Forced scans always run it.
const SpecialScanEvery = 4

// LoadTime is how long after the game starts console.log is considered stale.
const LoadTime = logreader.LoadTime

// Status says how a Result should be used.
type Status int

const (
	// StatusUpdated means State was derived from the log.
	StatusUpdated Status = iota
	// StatusUnchanged means the log didn't change and the previous state still holds.
	StatusUnchanged
	// StatusDefault means State is the default state.
	StatusDefault
)

// String returns the string representation of Status.
func (s Status) String() string {
	switch s {
	case StatusUpdated:
		return "updated"
	case StatusUnchanged:
		return "unchanged"
	case StatusDefault:
		return "default"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Cursor carries what one scan hands to the next. The zero value is ready
// for the first scan.
type Cursor struct {
	// ModTime is the console.log modification time seen by the last read.
	ModTime time.Time

	// Size is the console.log size seen by the last read.
	Size int64

	// CleanupPrimed is set by a scan that skipped cleanup. The next scan
	// in menus may then clean up.
	CleanupPrimed bool
}

// Request holds the per-scan inputs.
type Request struct {
	// Usernames are the local player's known names.
	Usernames []string

	// Force rescans an unchanged file and runs tracked player detection.
	Force bool

	// ForceCleanup cleans console.log regardless of state and shows the
	// result through the Presenter.
	ForceCleanup bool

	// ProcessStart is when the game process started. Zero skips the
	// load-time check.
	ProcessStart time.Time
}

// Result is the outcome of a scan.
type Result struct {
	Status Status
	State  State

	// LogMissing is true when console.log doesn't exist.
	LogMissing bool

	// Stale is true when console.log predates the running game.
	Stale bool

	// Lines is the number of lines read.
	Lines int

	// Cleanup is set when a cleanup ran during this scan.
	Cleanup *CleanupReport
}

// Interpreter derives game state from one console.log file.
// An Interpreter is not safe for concurrent use; overlapping calls to Scan
// return StatusUnchanged.
type Interpreter struct {
	path       string
	settings   Settings
	logger     *slog.Logger
	presenter  Presenter
	normalizer *servername.Normalizer

	trackedName string
	trackedID   string

	scanning atomic.Bool
	scans    int
}

// New returns an Interpreter for the console.log at path.
// Returns error for an empty path, invalid settings or an unparseable
// tracked SteamID.
func New(path string, opts ...Option) (*Interpreter, error) {
	if path == "" {
		return nil, ErrPathRequired
	}
	cfg := applyOptions(opts)
	if err := cfg.settings.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	in := &Interpreter{
		path:        path,
		settings:    cfg.settings,
		logger:      logger,
		presenter:   cfg.presenter,
		normalizer:  servername.New(),
		trackedName: cfg.trackedName,
	}

	if cfg.trackedID != "" {
		sid := steamid.New(cfg.trackedID)
		if !sid.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSteamID, cfg.trackedID)
		}
		in.trackedID = string(sid.Steam3())
	}
	return in, nil
}

// Path returns the console.log path.
func (in *Interpreter) Path() string {
	return in.path
}

// TrackedName returns the tracked player's name, or "" when tracking is off.
func (in *Interpreter) TrackedName() string {
	return in.trackedName
}

// Settings returns the settings snapshot.
func (in *Interpreter) Settings() Settings {
	return in.settings
}

// Scan reads the tail of console.log and derives the game state from it.
// cur is updated in place. Scan never fails; problems are logged and
// reported through Result.
func (in *Interpreter) Scan(cur *Cursor, req Request) Result {
	if !in.scanning.CompareAndSwap(false, true) {
		in.logger.Debug("scan already in progress")
		return Result{Status: StatusUnchanged}
	}
	defer in.scanning.Store(false)

	if cur == nil {
		cur = &Cursor{}
	}

	probe, err := logreader.Check(in.path, logreader.CheckOptions{
		LastModTime:  cur.ModTime,
		Force:        req.Force || req.ForceCleanup,
		ProcessStart: req.ProcessStart,
	})
	if err != nil {
		in.logger.Error("checking console.log", "path", in.path, "error", err)
		return Result{Status: StatusDefault, State: DefaultState()}
	}

	switch probe.Decision {
	case logreader.Missing:
		in.logger.Error("console.log doesn't exist", "path", in.path, "dir", listDir(filepath.Dir(in.path)))
		return Result{Status: StatusDefault, State: DefaultState(), LogMissing: true}
	case logreader.Unchanged:
		in.logger.Debug("not rescanning console.log, mtime unchanged", "mtime", probe.ModTime)
		return Result{Status: StatusUnchanged}
	case logreader.Stale:
		cur.ModTime = probe.ModTime
		in.logger.Debug("console.log is from before the game finished loading",
			"since_start", probe.SinceStart, "load_time", LoadTime)
		return Result{Status: StatusDefault, State: DefaultState(), Stale: true}
	}

	if cur.Size > 0 && probe.Size < cur.Size {
		in.logger.Error("console.log got smaller without being trimmed", "size", probe.Size, "previous", cur.Size)
	}
	cur.Size = probe.Size

	budget := in.settings.ByteBudget()
	window, err := logreader.ReadTail(in.path, budget)
	if err != nil {
		in.logger.Error("reading console.log", "path", in.path, "error", err)
		return Result{Status: StatusDefault, State: DefaultState()}
	}
	if window.Skipped() {
		in.logger.Debug("skipped to end of console.log", "offset", window.Offset, "size", window.Size, "lines", len(window.Lines))
	} else {
		in.logger.Debug("read all of console.log", "size", window.Size, "lines", len(window.Lines))
	}

	if mod, err := logreader.ModTime(in.path); err == nil {
		cur.ModTime = mod
	} else {
		cur.ModTime = probe.ModTime
	}

	if in.settings.TrimConsoleLog && !req.Force && maintenance.ShouldTrim(probe.Size, budget, len(window.Lines)) {
		in.trim(cur, budget*maintenance.TargetMultiple)
	}

	in.scans++
	special := req.Force || in.scans >= SpecialScanEvery
	if special {
		in.scans = 0
	}

	m := interpreter.New(interpreter.Config{
		Usernames:      req.Usernames,
		SpecialScan:    special,
		TrackedName:    in.trackedName,
		TrackedID:      in.trackedID,
		HideQueuedMode: in.settings.HideQueuedGamemode,
		Normalizer:     in.normalizer,
		Pump:           in.presenter.Pump,
		Logger:         in.logger,
	})
	for _, line := range window.Lines {
		m.Step(line)
	}
	out := m.Finish()

	if out.TrackedVisible {
		in.logger.Debug("tracked player is on this map", "name", in.trackedName, "map", out.State.Map)
	}
	// Only special scans look for the tracked player, so the indicator
	// keeps its last value in between unless the player is back in menus.
	if special || out.State.InMenus {
		in.presenter.SetTrackedPlayerVisible(out.TrackedVisible)
	}

	in.logger.Debug("parsed console.log", "state", out.State.String(), "lines", out.Lines,
		"special", special, "server_names", in.normalizer.Len())
	if out.Pumps > 0 {
		in.logger.Debug("pumped presenter", "times", out.Pumps)
	}

	res := Result{Status: StatusUpdated, State: out.State, Lines: out.Lines}

	if (out.State.InMenus && in.settings.TrimConsoleLog && !req.Force && cur.CleanupPrimed) || req.ForceCleanup {
		res.Cleanup = in.cleanup(cur, req.ForceCleanup, m.UserIsTracked())
		cur.CleanupPrimed = false
	} else {
		cur.CleanupPrimed = true
	}
	return res
}

// Clean removes blank and noise lines from console.log right away.
// Unlike a forced scan, nothing is shown through the Presenter.
func (in *Interpreter) Clean(forced bool, usernames ...string) (CleanupReport, error) {
	return maintenance.Cleanup(in.path, in.cleanupOptions(forced, in.isTracked(usernames)))
}

func (in *Interpreter) trim(cur *Cursor, target int64) {
	res, err := maintenance.Trim(in.path, target)
	if err != nil {
		in.logger.Error("trimming console.log", "path", in.path, "error", err)
		return
	}
	if !res.Trimmed {
		in.logger.Debug("not trimming console.log, too few lines would remain", "lines", res.Lines)
		return
	}
	in.logger.Debug("trimmed console.log", "bytes", res.Bytes, "lines", res.Lines)
	cur.Size = int64(res.Bytes)
	if mod, err := logreader.ModTime(in.path); err == nil {
		cur.ModTime = mod
	}
}

func (in *Interpreter) cleanup(cur *Cursor, forced, userIsTracked bool) *CleanupReport {
	report, err := maintenance.Cleanup(in.path, in.cleanupOptions(forced, userIsTracked))
	if err != nil {
		in.logger.Error("cleaning up console.log", "path", in.path, "error", err)
	} else if report.Committed {
		in.logger.Debug("cleaned up console.log", "removed", report.String(), "size", report.Size)
		cur.Size = report.Size
		if mod, err := logreader.ModTime(in.path); err == nil {
			cur.ModTime = mod
		}
	} else {
		in.logger.Debug("not cleaning up console.log, too few lines to remove", "removed", report.Removed())
	}

	if forced {
		in.presenter.Pause()
		if err != nil {
			in.presenter.ShowCleanupSummary(fmt.Sprintf("Couldn't clean up console.log: %v", err))
		} else {
			in.presenter.ShowCleanupSummary(fmt.Sprintf("Removed %s from console.log.", report))
		}
		in.presenter.Unpause()
	}
	return &report
}

func (in *Interpreter) cleanupOptions(forced, userIsTracked bool) maintenance.CleanupOptions {
	opts := maintenance.CleanupOptions{Forced: forced}
	if userIsTracked {
		opts.ExtraNoise = []string{"Usage: spec_player"}
	}
	return opts
}

func (in *Interpreter) isTracked(usernames []string) bool {
	if in.trackedName == "" {
		return false
	}
	for _, name := range usernames {
		if name == in.trackedName {
			return true
		}
	}
	return false
}

// listDir returns the entry names in dir, for diagnosing a missing file.
func listDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
