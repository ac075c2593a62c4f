package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tf2rp/consolelog-go/pkg/consolelog"
)

// statusLogFile receives debug logs while the TUI owns the terminal.
const statusLogFile = "consolelog-debug.log"

var (
	// status flags
	statusInterval time.Duration
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the live game state in the terminal",
	Long: `Show the game state in a full-screen view that updates as console.log changes.

Press c to clean up console.log and q to quit.
With --verbose, logs are written to ` + statusLogFile + `.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().DurationVar(&statusInterval, "interval", 2*time.Second,
		"How often to rescan console.log")
}

func runStatus(cmd *cobra.Command, args []string) error {
	if statusInterval <= 0 {
		return fmt.Errorf("invalid --interval %v: must be positive", statusInterval)
	}

	var logger *slog.Logger
	if verbose {
		f, err := tea.LogToFile(statusLogFile, "")
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logger = newLogger(f)
	}

	presenter := &tuiPresenter{}
	in, err := newInterpreter(logger, consolelog.WithPresenter(presenter))
	if err != nil {
		return err
	}

	watcher, err := consolelog.NewWatcher(in,
		consolelog.WithPollInterval(statusInterval),
		consolelog.WithFollow(true),
		consolelog.WithUsernames(usernames...),
	)
	if err != nil {
		return err
	}
	defer watcher.Close()

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	model := newStatusModel(in.Path(), watcher.RequestCleanup)
	model.trackedName = in.TrackedName()
	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	presenter.setProgram(prog)

	states, errs := watcher.Watch(ctx)
	go forward(states, errs, prog.Send)

	if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// forward relays watcher output to the TUI until both channels close.
func forward(states <-chan consolelog.State, errs <-chan error, send func(tea.Msg)) {
	for states != nil || errs != nil {
		select {
		case s, ok := <-states:
			if !ok {
				states = nil
				continue
			}
			send(stateMsg{state: s, at: time.Now()})
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			send(errMsg{err})
		}
	}
}

type (
	stateMsg struct {
		state consolelog.State
		at    time.Time
	}
	errMsg     struct{ err error }
	trackedMsg bool
	pausedMsg  bool
	cleanupMsg string
)

// tuiPresenter forwards presenter calls to the running program.
type tuiPresenter struct {
	send func(tea.Msg)
}

func (p *tuiPresenter) setProgram(prog *tea.Program) {
	p.send = prog.Send
}

func (p *tuiPresenter) msg(m tea.Msg) {
	if p.send != nil {
		p.send(m)
	}
}

// Pump does nothing; the program renders on its own goroutine.
func (p *tuiPresenter) Pump() {}

func (p *tuiPresenter) SetTrackedPlayerVisible(visible bool) { p.msg(trackedMsg(visible)) }
func (p *tuiPresenter) Pause()                               { p.msg(pausedMsg(true)) }
func (p *tuiPresenter) Unpause()                             { p.msg(pausedMsg(false)) }
func (p *tuiPresenter) ShowCleanupSummary(summary string)    { p.msg(cleanupMsg(summary)) }

type statusKeyMap struct {
	Cleanup key.Binding
	Quit    key.Binding
}

func defaultStatusKeyMap() statusKeyMap {
	return statusKeyMap{
		Cleanup: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clean up console.log"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k statusKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Cleanup, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k statusKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type statusStyles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Tracked lipgloss.Style
	Muted   lipgloss.Style
	Warning lipgloss.Style
}

func defaultStatusStyles() statusStyles {
	return statusStyles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#CF6A32")),
		Label:   lipgloss.NewStyle().Faint(true).Width(8),
		Value:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F2F2F2")),
		Tracked: lipgloss.NewStyle().Foreground(lipgloss.Color("#8650AC")),
		Muted:   lipgloss.NewStyle().Faint(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#E0C341")),
	}
}

type statusModel struct {
	path           string
	trackedName    string
	requestCleanup func()

	keys   statusKeyMap
	help   help.Model
	styles statusStyles

	state    consolelog.State
	hasState bool
	updated  time.Time
	tracked  bool
	paused   bool
	summary  string
	err      error
}

func newStatusModel(path string, requestCleanup func()) statusModel {
	return statusModel{
		path:           path,
		trackedName:    consolelog.DefaultTrackedName,
		requestCleanup: requestCleanup,
		keys:           defaultStatusKeyMap(),
		help:           help.New(),
		styles:         defaultStatusStyles(),
	}
}

// Init implements tea.Model.
func (m statusModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m statusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Cleanup):
			if m.requestCleanup != nil {
				m.requestCleanup()
				m.summary = "Cleaning up console.log…"
			}
		}

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case stateMsg:
		m.state = msg.state
		m.hasState = true
		m.updated = msg.at
		m.err = nil

	case errMsg:
		m.err = msg.err

	case trackedMsg:
		m.tracked = bool(msg)

	case pausedMsg:
		m.paused = bool(msg)

	case cleanupMsg:
		m.summary = string(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m statusModel) View() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.Title.Render("TF2 console.log"))
	b.WriteString(" " + s.Muted.Render(m.path) + "\n\n")

	if !m.hasState {
		b.WriteString(s.Muted.Render("Waiting for the first scan…") + "\n")
	} else {
		row := func(label, value string) {
			b.WriteString(s.Label.Render(label) + s.Value.Render(value) + "\n")
		}
		st := m.state
		if st.InMenus {
			row("Where", "In menus")
		} else {
			where := st.Map
			if st.Hosting {
				where += " (hosting)"
			}
			row("Map", where)
			if st.Class != "" {
				row("Class", st.Class)
			}
			if st.ServerName != "" {
				row("Server", fmt.Sprintf("%s (%d/%d)", st.ServerName, st.ServerPlayers, st.ServerPlayersMax))
			}
		}
		row("Queue", st.Queued)
		if m.tracked && m.trackedName != "" {
			b.WriteString(s.Tracked.Render("★ "+m.trackedName+" is here") + "\n")
		}
		b.WriteString("\n" + s.Muted.Render("Updated "+m.updated.Format("15:04:05")) + "\n")
	}

	if m.paused {
		b.WriteString(s.Muted.Render("Paused") + "\n")
	}
	if m.summary != "" {
		b.WriteString(m.summary + "\n")
	}
	if m.err != nil {
		b.WriteString(s.Warning.Render("warning: "+m.err.Error()) + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}
