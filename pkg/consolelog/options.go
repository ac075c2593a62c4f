package consolelog

import (
	"log/slog"
	"time"
)

// DefaultTrackedName and DefaultTrackedSteamID identify the player whose
// presence on the local player's map is reported to the Presenter.
const (
	DefaultTrackedName    = "Kataiser"
	DefaultTrackedSteamID = "76561198120580752"
)

// Option configures an Interpreter using the functional options pattern.
type Option func(*config)

// config holds internal configuration for the interpreter.
type config struct {
	settings    Settings
	logger      *slog.Logger
	presenter   Presenter
	trackedName string
	trackedID   string
}

// defaultConfig returns a config with sensible defaults.
func defaultConfig() *config {
	return &config{
		settings:    DefaultSettings(),
		presenter:   nopPresenter{},
		trackedName: DefaultTrackedName,
		trackedID:   DefaultTrackedSteamID,
	}
}

// applyOptions applies functional options to a config.
func applyOptions(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithSettings sets the settings snapshot read by every scan.
// Default: DefaultSettings().
func WithSettings(s Settings) Option {
	return func(c *config) {
		c.settings = s
	}
}

// WithLogger sets the slog logger for diagnostics.
// If nil (default), logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithPresenter sets the presentation layer notified during scans.
// If nil (default), notifications are dropped.
func WithPresenter(p Presenter) Option {
	return func(c *config) {
		if p == nil {
			p = nopPresenter{}
		}
		c.presenter = p
	}
}

// WithTrackedPlayer sets the tracked player. steamID may be in any form
// Steam uses: SteamID64, Steam3 ("[U:1:...]") or legacy ("STEAM_0:...").
func WithTrackedPlayer(name, steamID string) Option {
	return func(c *config) {
		c.trackedName = name
		c.trackedID = steamID
	}
}

// WithoutTrackedPlayer disables tracked player detection.
func WithoutTrackedPlayer() Option {
	return func(c *config) {
		c.trackedName = ""
		c.trackedID = ""
	}
}

// WatchOption configures a Watcher.
type WatchOption func(*watchConfig)

// watchConfig holds internal configuration for the watcher.
type watchConfig struct {
	pollInterval time.Duration
	follow       bool
	usernames    []string
	processStart func() time.Time
}

// defaultWatchConfig returns a watchConfig with sensible defaults.
func defaultWatchConfig() *watchConfig {
	return &watchConfig{
		pollInterval: 2 * time.Second,
		processStart: func() time.Time { return time.Time{} },
	}
}

// applyWatchOptions applies functional options to a watchConfig.
func applyWatchOptions(opts []WatchOption) *watchConfig {
	cfg := defaultWatchConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithPollInterval sets how often console.log is scanned.
// Default: 2 seconds.
func WithPollInterval(interval time.Duration) WatchOption {
	return func(c *watchConfig) {
		c.pollInterval = interval
	}
}

// WithFollow also scans as soon as lines are appended to console.log,
// instead of only on the poll interval.
func WithFollow(follow bool) WatchOption {
	return func(c *watchConfig) {
		c.follow = follow
	}
}

// WithUsernames sets the local player's known names.
func WithUsernames(names ...string) WatchOption {
	return func(c *watchConfig) {
		c.usernames = names
	}
}

// WithProcessStart sets a function reporting when the game process started.
// A zero time disables the load-time check.
func WithProcessStart(fn func() time.Time) WatchOption {
	return func(c *watchConfig) {
		if fn != nil {
			c.processStart = fn
		}
	}
}
