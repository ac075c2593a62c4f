// Package maintenance keeps console.log small: Trim cuts it down to its
// trailing part and Cleanup removes blank and noise lines.
package maintenance

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	// TriggerMultiple is how many scan budgets the file must exceed before it is trimmed.
	TriggerMultiple = 4

	// TargetMultiple is how many scan budgets are kept by a trim.
	TargetMultiple = 2

	// MinLines is the fewest lines a file may have before, and after, a trim.
	MinLines = 15000

	// MinRemoved is how many lines an automatic cleanup must remove to rewrite the file.
	MinRemoved = 50

	// MinRemovedForced is MinRemoved for a cleanup requested by the user.
	MinRemovedForced = 1
)

// chatMarker separates a player's name from their message in chat lines.
const chatMarker = " :  "

// NoiseSubstrings are the error messages the game spams into console.log.
var NoiseSubstrings = []string{
	"bad reference count",
	"particle system",
	"DataTable warning",
	"SOLID_VPHYSICS",
	"BlockingGetDataPointer",
	"No such variable",
}

// ShouldTrim reports whether a file of size bytes, of which lines lines were
// scanned, is due for a trim with the given scan budget.
func ShouldTrim(size, budget int64, lines int) bool {
	return budget > 0 && size > budget*TriggerMultiple && lines > MinLines
}

// TrimResult describes a Trim call.
type TrimResult struct {
	// Trimmed is true when the file was rewritten.
	Trimmed bool

	// Lines is the number of newlines in the kept part.
	Lines int

	// Bytes is the length of the kept part.
	Bytes int
}

// Trim keeps only the last target bytes of the file at path, provided that
// part still holds more than MinLines lines. The file is modified in place.
func Trim(path string, target int64) (TrimResult, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return TrimResult{}, fmt.Errorf("open for trim: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return TrimResult{}, fmt.Errorf("stat for trim: %w", err)
	}
	if info.Size() <= target {
		return TrimResult{Bytes: int(info.Size())}, nil
	}

	if _, err := f.Seek(-target, io.SeekEnd); err != nil {
		return TrimResult{}, fmt.Errorf("seek for trim: %w", err)
	}
	kept, err := io.ReadAll(f)
	if err != nil {
		return TrimResult{}, fmt.Errorf("read for trim: %w", err)
	}

	res := TrimResult{Lines: bytes.Count(kept, []byte{'\n'}), Bytes: len(kept)}
	if res.Lines <= MinLines {
		return res, nil
	}

	if err := f.Truncate(0); err != nil {
		return res, fmt.Errorf("truncate for trim: %w", err)
	}
	if _, err := f.WriteAt(kept, 0); err != nil {
		return res, fmt.Errorf("write trimmed: %w", err)
	}
	res.Trimmed = true
	return res, nil
}

// CleanupOptions configures Cleanup.
type CleanupOptions struct {
	// Forced lowers the commit threshold to MinRemovedForced.
	Forced bool

	// ExtraNoise is removed in addition to NoiseSubstrings.
	ExtraNoise []string
}

// Threshold returns the number of removed lines needed to rewrite the file.
func (o CleanupOptions) Threshold() int {
	if o.Forced {
		return MinRemovedForced
	}
	return MinRemoved
}

// CleanupReport describes a Cleanup call.
type CleanupReport struct {
	NoiseLines int
	BlankLines int

	// Committed is true when the file was rewritten.
	Committed bool

	// Size is the file size after the rewrite. It is only set when Committed.
	Size int64
}

// Removed returns the total number of removed lines.
func (r CleanupReport) Removed() int {
	return r.NoiseLines + r.BlankLines
}

// String implements fmt.Stringer.
func (r CleanupReport) String() string {
	return fmt.Sprintf("%d error lines and %d blank lines (total: %d)", r.NoiseLines, r.BlankLines, r.Removed())
}

// Cleanup rewrites the file at path without blank lines and noise lines.
// Lines that look like chat are never treated as noise. The file is only
// rewritten when at least opts.Threshold() lines would be removed.
func Cleanup(path string, opts CleanupOptions) (CleanupReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return CleanupReport{}, fmt.Errorf("open for cleanup: %w", err)
	}
	kept, report, err := filter(f, append(NoiseSubstrings[:len(NoiseSubstrings):len(NoiseSubstrings)], opts.ExtraNoise...))
	f.Close()
	if err != nil {
		return report, err
	}

	if report.Removed() < opts.Threshold() {
		return report, nil
	}

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return report, fmt.Errorf("open for rewrite: %w", err)
	}
	bw := bufio.NewWriter(out)
	for _, line := range kept {
		if _, err := bw.WriteString(line); err != nil {
			out.Close()
			return report, fmt.Errorf("rewrite: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		out.Close()
		return report, fmt.Errorf("rewrite: %w", err)
	}
	if err := out.Close(); err != nil {
		return report, fmt.Errorf("close rewrite: %w", err)
	}

	report.Committed = true
	if info, err := os.Stat(path); err == nil {
		report.Size = info.Size()
	}
	return report, nil
}

// filter splits r into lines, keeping terminators, and drops noise and blank lines.
func filter(r io.Reader, noise []string) ([]string, CleanupReport, error) {
	br := bufio.NewReaderSize(transform.NewReader(r, unicode.UTF8.NewDecoder()), 64*1024)

	var kept []string
	var report CleanupReport
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			switch {
			case isNoise(line, noise):
				report.NoiseLines++
			case isBlank(line):
				report.BlankLines++
			default:
				kept = append(kept, line)
			}
		}
		if err == io.EOF {
			return kept, report, nil
		}
		if err != nil {
			return nil, report, fmt.Errorf("read for cleanup: %w", err)
		}
	}
}

func isNoise(line string, noise []string) bool {
	if strings.Contains(line, chatMarker) {
		return false
	}
	for _, s := range noise {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

// isBlank reports whether line holds nothing but spaces and tabs before its
// terminator. An unterminated last line is never blank.
func isBlank(line string) bool {
	rest := strings.Trim(line, " \t")
	return rest == "\n" || rest == "\r\n"
}
