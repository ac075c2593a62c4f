package consolelog

import (
	"errors"

	"github.com/tf2rp/consolelog-go/internal/logfinder"
	"github.com/tf2rp/consolelog-go/internal/settings"
)

// Sentinel errors returned by this package.
var (
	// ErrConsoleLogNotFound is returned when no console.log path was given
	// and no TF2 install could be found.
	ErrConsoleLogNotFound = logfinder.ErrConsoleLogNotFound

	// ErrInvalidSettings is returned for settings that cannot be used.
	ErrInvalidSettings = settings.ErrInvalid

	// ErrPathRequired is returned by New for an empty path.
	ErrPathRequired = errors.New("consolelog: path required")

	// ErrInvalidSteamID is returned by New when the tracked player's
	// SteamID cannot be parsed.
	ErrInvalidSteamID = errors.New("consolelog: invalid tracked SteamID")
)
