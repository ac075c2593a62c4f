// Package logfinder locates TF2's console.log.
package logfinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// EnvConsoleLog is the environment variable name for specifying the console.log path.
const EnvConsoleLog = "CONSOLELOG_PATH"

// ErrConsoleLogNotFound is returned when no TF2 install could be found.
var ErrConsoleLogNotFound = errors.New("console.log not found")

// gameDir is the TF2 game directory relative to a Steam library.
var gameDir = filepath.Join("steamapps", "common", "Team Fortress 2", "tf")

// DefaultSteamDirs returns candidate Steam install directories in priority order.
func DefaultSteamDirs() []string {
	var dirs []string
	switch runtime.GOOS {
	case "windows":
		for _, env := range []string{"ProgramFiles(x86)", "ProgramFiles"} {
			if base := os.Getenv(env); base != "" {
				dirs = append(dirs, filepath.Join(base, "Steam"))
			}
		}
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			dirs = append(dirs, filepath.Join(home, "Library", "Application Support", "Steam"))
		}
	default:
		if home, err := os.UserHomeDir(); err == nil {
			dirs = append(dirs,
				filepath.Join(home, ".steam", "steam"),
				filepath.Join(home, ".local", "share", "Steam"),
				filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", ".local", "share", "Steam"),
			)
		}
	}
	return dirs
}

// FindConsoleLog returns the path of TF2's console.log.
//
// Priority:
//  1. explicit (if non-empty)
//  2. CONSOLELOG_PATH environment variable
//  3. The first of DefaultSteamDirs() with TF2 installed
//
// console.log only exists while the game runs with -condebug, so explicit
// and environment paths are not required to exist. Auto-detection only
// requires the game directory to exist.
func FindConsoleLog(explicit string) (string, error) {
	if explicit != "" {
		return filepath.Abs(explicit)
	}

	if env := os.Getenv(EnvConsoleLog); env != "" {
		return filepath.Abs(env)
	}

	for _, dir := range DefaultSteamDirs() {
		if resolved := resolveGameDir(dir); resolved != "" {
			return filepath.Join(resolved, "console.log"), nil
		}
	}

	return "", fmt.Errorf("%w: no Team Fortress 2 install in default Steam libraries", ErrConsoleLogNotFound)
}

// resolveGameDir resolves symlinks and returns the TF2 game directory under
// steamDir, or an empty string if it does not exist.
func resolveGameDir(steamDir string) string {
	dir := filepath.Join(steamDir, gameDir)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ""
	}

	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		// Fallback to original path if symlink resolution fails
		resolved = dir
	}
	return resolved
}
