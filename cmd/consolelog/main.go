package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tf2rp/consolelog-go/internal/logfinder"
	"github.com/tf2rp/consolelog-go/internal/settings"
	"github.com/tf2rp/consolelog-go/pkg/consolelog"
)

var (
	// Version information (set by ldflags)
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags
	verbose      bool
	logPath      string
	settingsPath string
	usernames    []string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "consolelog",
	Short: "TF2 console.log state reader",
	Long: `consolelog reads Team Fortress 2's console.log and reports what the
player is doing: in menus or on a map, their class, the server and whether
they're queued for a match.

The game only writes console.log when launched with -condebug.
States are output as JSON Lines for easy processing with other tools.

This is an unofficial tool and is not affiliated with Valve Corporation.`,
	SilenceUsage: true, // Don't show usage on error
}

func init() {
	// Global flags (inherited by all subcommands)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&logPath, "path", "p", "",
		"Path to console.log (auto-detected if not specified, or $"+logfinder.EnvConsoleLog+")")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "",
		"Settings file, TOML or YAML (default "+settings.DefaultPath()+")")
	rootCmd.PersistentFlags().StringArrayVarP(&usernames, "user", "u", nil,
		"Your in-game name (repeatable)")
	_ = rootCmd.RegisterFlagCompletionFunc("settings", completeSettingsFile)

	// Add subcommands
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("consolelog %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

// newLogger returns a debug logger writing to w when --verbose is set, nil otherwise.
func newLogger(w io.Writer) *slog.Logger {
	if !verbose {
		return nil
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// newInterpreter resolves console.log and settings from the global flags.
func newInterpreter(logger *slog.Logger, opts ...consolelog.Option) (*consolelog.Interpreter, error) {
	path, err := logfinder.FindConsoleLog(logPath)
	if err != nil {
		return nil, err
	}
	s, err := consolelog.LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}

	if consolelog.NonASCIIUsernames(usernames) {
		fmt.Fprintln(os.Stderr, "warning: names with non-ASCII characters may not be recognized in console.log")
	}

	opts = append([]consolelog.Option{
		consolelog.WithSettings(s),
		consolelog.WithLogger(logger),
	}, opts...)
	return consolelog.New(path, opts...)
}
