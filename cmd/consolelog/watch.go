package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tf2rp/consolelog-go/pkg/consolelog"
)

var (
	// watch flags
	watchFormat       string
	watchInterval     time.Duration
	watchFollow       bool
	watchProcessStart string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor console.log and output state changes",
	Long: `Rescan console.log periodically and output the game state whenever it changes.

States are output as JSON Lines by default (one JSON object per line),
which makes it easy to process with tools like jq.

Examples:
  # Monitor with default settings (auto-detect console.log)
  consolelog watch -u Steve

  # Rescan as soon as the game writes to console.log
  consolelog watch --follow

  # Human-readable output
  consolelog watch --format pretty

  # Pipe to jq for filtering
  consolelog watch | jq 'select(.state.in_menus | not) | .state.map'`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 2*time.Second,
		"How often to rescan console.log")
	watchCmd.Flags().BoolVar(&watchFollow, "follow", false,
		"Also rescan whenever lines are appended to console.log")
	watchCmd.Flags().StringVar(&watchProcessStart, "process-start", "",
		"When the game started (RFC3339 format, e.g., 2024-01-15T12:00:00Z)")

	registerFormatCompletion(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if !ValidFormats[watchFormat] {
		return fmt.Errorf("invalid format %q: must be one of: jsonl, pretty", watchFormat)
	}
	if watchInterval <= 0 {
		return fmt.Errorf("invalid --interval %v: must be positive", watchInterval)
	}

	start, err := parseProcessStart(watchProcessStart)
	if err != nil {
		return err
	}

	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	in, err := newInterpreter(newLogger(os.Stderr))
	if err != nil {
		return err
	}

	watcher, err := consolelog.NewWatcher(in,
		consolelog.WithPollInterval(watchInterval),
		consolelog.WithFollow(watchFollow),
		consolelog.WithUsernames(usernames...),
		consolelog.WithProcessStart(func() time.Time { return start }),
	)
	if err != nil {
		return err
	}
	defer watcher.Close()

	states, errs := watcher.Watch(ctx)

	// Output loop
	for {
		select {
		case s, ok := <-states:
			if !ok {
				return nil // Channel closed
			}
			rec := Record{Time: time.Now(), Status: consolelog.StatusUpdated.String(), State: s}
			if err := OutputRecord(watchFormat, rec, cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("output error: %w", err)
			}

		case err, ok := <-errs:
			if !ok {
				return nil // Channel closed
			}
			// Always output errors to stderr
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)

		case <-ctx.Done():
			return nil
		}
	}
}
