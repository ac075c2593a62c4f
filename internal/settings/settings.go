// Package settings loads the options the console.log interpreter reads.
// Settings are stored in ~/.config/consolelog/settings.toml; a .yaml or
// .yml path is read as YAML instead.
package settings

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Setting keys.
const (
	KeyConsoleScanKB      = "console_scan_kb"
	KeyTrimConsoleLog     = "trim_console_log"
	KeyHideQueuedGamemode = "hide_queued_gamemode"
)

const (
	defaultSettingsPath = "~/.config/consolelog/settings.toml"
	defaultScanKB       = 1000
)

// Keys lists every setting key in display order.
var Keys = []string{KeyConsoleScanKB, KeyTrimConsoleLog, KeyHideQueuedGamemode}

// ErrInvalid is returned for settings that cannot be used.
var ErrInvalid = errors.New("invalid settings")

// Settings is a read-only snapshot of the interpreter's options.
type Settings struct {
	// ConsoleScanKB is how many trailing KB of console.log a scan reads.
	ConsoleScanKB float64 `toml:"console_scan_kb" yaml:"console_scan_kb"`

	// TrimConsoleLog enables trimming and cleaning up console.log.
	TrimConsoleLog bool `toml:"trim_console_log" yaml:"trim_console_log"`

	// HideQueuedGamemode reports "Queued" without the game mode.
	HideQueuedGamemode bool `toml:"hide_queued_gamemode" yaml:"hide_queued_gamemode"`
}

// Defaults returns the settings used when none are configured.
func Defaults() Settings {
	return Settings{
		ConsoleScanKB:  defaultScanKB,
		TrimConsoleLog: true,
	}
}

// DefaultPath returns the default settings file path.
func DefaultPath() string {
	return defaultSettingsPath
}

// ByteBudget returns ConsoleScanKB in bytes.
func (s Settings) ByteBudget() int64 {
	return int64(s.ConsoleScanKB * 1024)
}

// Lookup returns the value of the setting named key.
func (s Settings) Lookup(key string) (any, bool) {
	switch key {
	case KeyConsoleScanKB:
		return s.ConsoleScanKB, true
	case KeyTrimConsoleLog:
		return s.TrimConsoleLog, true
	case KeyHideQueuedGamemode:
		return s.HideQueuedGamemode, true
	default:
		return nil, false
	}
}

// Validate checks that the settings can be used.
func (s Settings) Validate() error {
	if s.ConsoleScanKB <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalid, KeyConsoleScanKB, s.ConsoleScanKB)
	}
	return nil
}

// Load reads settings from path, falling back to defaults when the file is
// missing. Keys absent from the file keep their defaults.
func Load(path string) (Settings, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Settings{}, err
	}

	s := Defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return Settings{}, fmt.Errorf("open settings: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &s)
	default:
		err = toml.Unmarshal(data, &s)
	}
	if err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Save writes s to path, as YAML for a .yaml or .yml path and TOML
// otherwise, creating directories as needed.
func Save(path string, s Settings) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	var data []byte
	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(s)
	default:
		data, err = toml.Marshal(s)
	}
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(resolved, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultSettingsPath)
	}
	return ExpandPath(path)
}

// ExpandPath expands a leading "~" and makes path absolute.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
