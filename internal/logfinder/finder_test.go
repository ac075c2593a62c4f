package logfinder

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestFindConsoleLog_Explicit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "console.log")

	// Explicit should take priority over env
	t.Setenv(EnvConsoleLog, "/some/other/console.log")

	got, err := FindConsoleLog(path)
	if err != nil {
		t.Fatalf("FindConsoleLog() error = %v", err)
	}
	if got != path {
		t.Errorf("FindConsoleLog() = %v, want %v", got, path)
	}
}

func TestFindConsoleLog_EnvVar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	t.Setenv(EnvConsoleLog, path)

	got, err := FindConsoleLog("")
	if err != nil {
		t.Fatalf("FindConsoleLog() error = %v", err)
	}
	if got != path {
		t.Errorf("FindConsoleLog() = %v, want %v", got, path)
	}
}

func TestFindConsoleLog_AutoDetect(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("default Steam dirs come from ProgramFiles on Windows")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvConsoleLog, "")

	var steamDir string
	if runtime.GOOS == "darwin" {
		steamDir = filepath.Join(home, "Library", "Application Support", "Steam")
	} else {
		steamDir = filepath.Join(home, ".local", "share", "Steam")
	}
	if err := os.MkdirAll(filepath.Join(steamDir, gameDir), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := FindConsoleLog("")
	if err != nil {
		t.Fatalf("FindConsoleLog() error = %v", err)
	}

	want := filepath.Join(steamDir, gameDir, "console.log")
	if resolved, err := filepath.EvalSymlinks(filepath.Dir(want)); err == nil {
		want = filepath.Join(resolved, "console.log")
	}
	if got != want {
		t.Errorf("FindConsoleLog() = %v, want %v", got, want)
	}
}

func TestFindConsoleLog_NotFound(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ProgramFiles(x86)", t.TempDir())
	t.Setenv("ProgramFiles", t.TempDir())
	t.Setenv(EnvConsoleLog, "")

	_, err := FindConsoleLog("")
	if err == nil {
		t.Fatal("FindConsoleLog() expected error without a TF2 install")
	}
	if !errors.Is(err, ErrConsoleLogNotFound) {
		t.Errorf("FindConsoleLog() error = %v, want %v", err, ErrConsoleLogNotFound)
	}
}

func TestResolveGameDir(t *testing.T) {
	steamDir := t.TempDir()
	if resolveGameDir(steamDir) != "" {
		t.Error("resolveGameDir() = non-empty for library without TF2")
	}

	if err := os.MkdirAll(filepath.Join(steamDir, gameDir), 0o755); err != nil {
		t.Fatal(err)
	}
	if resolveGameDir(steamDir) == "" {
		t.Error("resolveGameDir() = empty for library with TF2")
	}
}

func TestResolveGameDir_NotExists(t *testing.T) {
	if resolveGameDir("/nonexistent/path") != "" {
		t.Error("resolveGameDir() = non-empty for nonexistent path")
	}
}
