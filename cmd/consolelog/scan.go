package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tf2rp/consolelog-go/pkg/consolelog"
)

var (
	// scan flags
	scanFormat       string
	scanForce        bool
	scanClean        bool
	scanProcessStart string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan console.log once and output the state",
	Long: `Read the tail of console.log once and output the game state.

Examples:
  # Scan with default settings (auto-detect console.log)
  consolelog scan -u Steve

  # Specify console.log
  consolelog scan --path "C:\Program Files (x86)\Steam\steamapps\common\Team Fortress 2\tf\console.log"

  # Treat a log written less than 10s after the game started as stale
  consolelog scan --process-start 2024-01-15T12:00:00Z

  # Also clean up console.log
  consolelog scan --clean

  # Human-readable output
  consolelog scan --format pretty`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	scanCmd.Flags().BoolVar(&scanForce, "force", false,
		"Also look for the tracked player")
	scanCmd.Flags().BoolVar(&scanClean, "clean", false,
		"Clean up console.log after scanning")
	scanCmd.Flags().StringVar(&scanProcessStart, "process-start", "",
		"When the game started (RFC3339 format, e.g., 2024-01-15T12:00:00Z)")

	registerFormatCompletion(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	if !ValidFormats[scanFormat] {
		return fmt.Errorf("invalid format %q: must be one of: jsonl, pretty", scanFormat)
	}

	start, err := parseProcessStart(scanProcessStart)
	if err != nil {
		return err
	}

	in, err := newInterpreter(newLogger(os.Stderr))
	if err != nil {
		return err
	}

	var cur consolelog.Cursor
	res := in.Scan(&cur, consolelog.Request{
		Usernames:    usernames,
		Force:        scanForce,
		ForceCleanup: scanClean,
		ProcessStart: start,
	})

	if err := OutputRecord(scanFormat, newRecord(time.Now(), res), cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("output error: %w", err)
	}
	return nil
}

// parseProcessStart parses the --process-start flag. Empty means unknown.
func parseProcessStart(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --process-start format: %w (expected RFC3339, e.g., 2024-01-15T12:00:00Z)", err)
	}
	return t, nil
}
