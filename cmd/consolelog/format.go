package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tf2rp/consolelog-go/pkg/consolelog"
)

// ValidFormats lists the accepted --format values.
var ValidFormats = map[string]bool{
	"jsonl":  true,
	"pretty": true,
}

// Record is one line of output.
type Record struct {
	Time       time.Time        `json:"time"`
	Status     string           `json:"status"`
	State      consolelog.State `json:"state"`
	LogMissing bool             `json:"log_missing,omitempty"`
	Stale      bool             `json:"stale,omitempty"`
	Cleanup    *CleanupRecord   `json:"cleanup,omitempty"`
}

// CleanupRecord is the output form of a cleanup.
type CleanupRecord struct {
	NoiseLines int  `json:"noise_lines"`
	BlankLines int  `json:"blank_lines"`
	Committed  bool `json:"committed"`
}

func newCleanupRecord(r consolelog.CleanupReport) *CleanupRecord {
	return &CleanupRecord{NoiseLines: r.NoiseLines, BlankLines: r.BlankLines, Committed: r.Committed}
}

// newRecord converts a scan result taken at t into a Record.
func newRecord(t time.Time, res consolelog.Result) Record {
	rec := Record{
		Time:       t,
		Status:     res.Status.String(),
		State:      res.State,
		LogMissing: res.LogMissing,
		Stale:      res.Stale,
	}
	if res.Cleanup != nil {
		rec.Cleanup = newCleanupRecord(*res.Cleanup)
	}
	return rec
}

// OutputRecord writes rec to w in the given format.
func OutputRecord(format string, rec Record, w io.Writer) error {
	switch format {
	case "jsonl":
		return OutputJSON(rec, w)
	case "pretty":
		return OutputPretty(rec, w)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// OutputJSON writes rec as a single JSON line.
func OutputJSON(rec Record, w io.Writer) error {
	return json.NewEncoder(w).Encode(rec)
}

// OutputPretty writes rec in a human-readable form. Colors are only used
// when w is a terminal.
func OutputPretty(rec Record, w io.Writer) error {
	r := lipgloss.NewRenderer(w)
	faint := r.NewStyle().Faint(true)
	warn := r.NewStyle().Foreground(lipgloss.Color("3"))

	text := r.NewStyle().Foreground(lipgloss.Color("2"))
	if rec.State.InMenus {
		text = r.NewStyle().Foreground(lipgloss.Color("4"))
	}

	line := faint.Render("["+rec.Time.Format("15:04:05")+"]") + " " + text.Render(rec.State.String())
	switch {
	case rec.LogMissing:
		line += " " + warn.Render("(console.log missing)")
	case rec.Stale:
		line += " " + warn.Render("(console.log predates the game)")
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}

	if c := rec.Cleanup; c != nil {
		summary := consolelog.CleanupReport{NoiseLines: c.NoiseLines, BlankLines: c.BlankLines}.String()
		if c.Committed {
			summary = "cleaned up " + summary
		} else {
			summary = "not cleaned up, only " + summary
		}
		if _, err := fmt.Fprintln(w, "  "+faint.Render(summary)); err != nil {
			return err
		}
	}
	return nil
}
