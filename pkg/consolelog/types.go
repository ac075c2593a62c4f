package consolelog

import (
	"github.com/tf2rp/consolelog-go/internal/maintenance"
	"github.com/tf2rp/consolelog-go/internal/settings"
	"github.com/tf2rp/consolelog-go/pkg/consolelog/state"
)

// Re-export types for convenience.
// Users can import just "github.com/tf2rp/consolelog-go/pkg/consolelog"
// and use consolelog.State, consolelog.Settings, etc.

// State is the game state derived from console.log.
type State = state.State

// Settings is the settings snapshot read by every scan.
type Settings = settings.Settings

// CleanupReport describes a cleanup of console.log.
type CleanupReport = maintenance.CleanupReport

// Queue state constants.
const (
	NotQueued      = state.NotQueued
	Queued         = state.Queued
	QueuedForParty = state.QueuedForParty
)

// DefaultState returns the state used when nothing could be learned from the log.
func DefaultState() State {
	return state.Default()
}

// DefaultSettings returns the settings used when none are configured.
func DefaultSettings() Settings {
	return settings.Defaults()
}

// LoadSettings reads settings from a TOML or YAML file, falling back to
// defaults when it is missing. An empty path uses the default location.
func LoadSettings(path string) (Settings, error) {
	return settings.Load(path)
}

// Presenter is the presentation layer a scan reports to.
type Presenter interface {
	// Pump keeps the UI responsive during long scans. It must not scan.
	Pump()

	// SetTrackedPlayerVisible shows or hides the tracked player indicator.
	// It is called by special scans and by scans that end in menus.
	SetTrackedPlayerVisible(visible bool)

	// Pause and Unpause bracket ShowCleanupSummary.
	Pause()
	Unpause()

	// ShowCleanupSummary shows the result of a requested cleanup and
	// returns once the user has seen it.
	ShowCleanupSummary(summary string)
}

type nopPresenter struct{}

func (nopPresenter) Pump()                        {}
func (nopPresenter) SetTrackedPlayerVisible(bool) {}
func (nopPresenter) Pause()                       {}
func (nopPresenter) Unpause()                     {}
func (nopPresenter) ShowCleanupSummary(string)    {}
