// Package logreader decides whether console.log needs another scan and reads
// the trailing window of it that a scan looks at.
package logreader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// LoadTime is how long after the game starts console.log is still assumed to
// hold output from before the current session.
const LoadTime = 10 * time.Second

// Decision is the outcome of Check.
type Decision int

const (
	// Read means the file changed and should be scanned.
	Read Decision = iota
	// Unchanged means the modification time is the one seen last time.
	Unchanged
	// Missing means there is no file at the path.
	Missing
	// Stale means the file was last written while the game was still loading.
	Stale
)

func (d Decision) String() string {
	switch d {
	case Read:
		return "read"
	case Unchanged:
		return "unchanged"
	case Missing:
		return "missing"
	case Stale:
		return "stale"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// Probe describes the file as seen by Check.
type Probe struct {
	Decision Decision
	ModTime  time.Time
	Size     int64

	// SinceStart is ModTime minus the process start time.
	SinceStart time.Duration
}

// CheckOptions are the inputs of Check beyond the path.
type CheckOptions struct {
	// LastModTime is the modification time observed by the previous scan.
	LastModTime time.Time

	// Force scans even when the modification time did not change.
	Force bool

	// ProcessStart is when the game process started. Zero disables the
	// load-time check.
	ProcessStart time.Time
}

// Check stats path and decides whether it should be read.
// Errors other than the file not existing are returned as is.
func Check(path string, opts CheckOptions) (Probe, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Probe{Decision: Missing}, nil
		}
		return Probe{}, fmt.Errorf("stat console.log: %w", err)
	}
	if info.IsDir() {
		return Probe{Decision: Missing}, nil
	}

	p := Probe{ModTime: info.ModTime(), Size: info.Size()}
	if !opts.Force && p.ModTime.Equal(opts.LastModTime) {
		p.Decision = Unchanged
		return p, nil
	}

	if !opts.ProcessStart.IsZero() {
		p.SinceStart = p.ModTime.Sub(opts.ProcessStart)
		if p.SinceStart <= LoadTime {
			p.Decision = Stale
			return p, nil
		}
	}

	p.Decision = Read
	return p, nil
}

// Window is the part of the file that was read.
type Window struct {
	// Lines holds the lines read, without line terminators.
	Lines []string

	// Size is the file size when it was opened.
	Size int64

	// Offset is where reading started. It is non-zero when the file was
	// larger than the budget.
	Offset int64
}

// Skipped reports whether the beginning of the file was skipped.
func (w Window) Skipped() bool {
	return w.Offset > 0
}

// ReadTail reads at most budget trailing bytes of path as lines. Invalid
// UTF-8 is replaced with U+FFFD. A budget <= 0 reads the whole file.
func ReadTail(path string, budget int64) (Window, error) {
	f, err := os.Open(path)
	if err != nil {
		return Window{}, fmt.Errorf("open console.log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Window{}, fmt.Errorf("stat console.log: %w", err)
	}

	w := Window{Size: info.Size()}
	if budget > 0 && w.Size > budget {
		w.Offset = w.Size - budget
		if _, err := f.Seek(w.Offset, io.SeekStart); err != nil {
			return Window{}, fmt.Errorf("seek console.log: %w", err)
		}
	}

	lines, err := ReadLines(f)
	if err != nil {
		return Window{}, err
	}
	w.Lines = lines
	return w, nil
}

// ReadLines decodes r as UTF-8 with substitution and splits it into lines
// without their terminators.
func ReadLines(r io.Reader) ([]string, error) {
	br := bufio.NewReaderSize(transform.NewReader(r, unicode.UTF8.NewDecoder()), 64*1024)

	var lines []string
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			lines = append(lines, TrimEOL(line))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return lines, nil
			}
			return lines, fmt.Errorf("read console.log: %w", err)
		}
	}
}

// ModTime returns the current modification time of path.
func ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// TrimEOL removes a trailing "\n" or "\r\n".
func TrimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
