package main

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tf2rp/consolelog-go/pkg/consolelog"
)

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m statusModel, msg tea.Msg) (statusModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	sm, ok := next.(statusModel)
	if !ok {
		t.Fatalf("Update() returned %T, want statusModel", next)
	}
	return sm, cmd
}

func TestStatusModel_WaitingView(t *testing.T) {
	m := newStatusModel("/tmp/console.log", nil)
	view := m.View()
	if !strings.Contains(view, "Waiting for the first scan") {
		t.Errorf("View() = %q, want waiting message", view)
	}
	if !strings.Contains(view, "/tmp/console.log") {
		t.Errorf("View() = %q, want path", view)
	}
}

func TestStatusModel_State(t *testing.T) {
	m := newStatusModel("console.log", nil)
	m, _ = update(t, m, stateMsg{
		state: consolelog.State{
			Map:              "cp_process_final",
			Class:            "Scout",
			Queued:           consolelog.NotQueued,
			Hosting:          true,
			ServerName:       "Local",
			ServerPlayers:    1,
			ServerPlayersMax: 24,
		},
		at: time.Date(2024, 1, 15, 12, 30, 45, 0, time.Local),
	})

	view := m.View()
	for _, want := range []string{"cp_process_final (hosting)", "Scout", "Local (1/24)", "Not queued", "Updated 12:30:45"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "is here") {
		t.Error("View() shows tracked player before being told to")
	}

	m, _ = update(t, m, trackedMsg(true))
	if view := m.View(); !strings.Contains(view, consolelog.DefaultTrackedName+" is here") {
		t.Errorf("View() missing tracked player:\n%s", view)
	}
	m, _ = update(t, m, trackedMsg(false))
	if view := m.View(); strings.Contains(view, "is here") {
		t.Errorf("View() still shows tracked player:\n%s", view)
	}
}

func TestStatusModel_InMenus(t *testing.T) {
	m := newStatusModel("console.log", nil)
	m, _ = update(t, m, stateMsg{state: consolelog.State{InMenus: true, Queued: "Queued for Casual"}, at: time.Now()})

	view := m.View()
	if !strings.Contains(view, "In menus") || !strings.Contains(view, "Queued for Casual") {
		t.Errorf("View() = %q", view)
	}
	if strings.Contains(view, "Class") {
		t.Errorf("View() shows class in menus: %q", view)
	}
}

func TestStatusModel_Quit(t *testing.T) {
	for _, k := range []tea.KeyMsg{keyMsg("q"), {Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		_, cmd := update(t, newStatusModel("console.log", nil), k)
		if cmd == nil {
			t.Fatalf("Update(%q) returned no command", k.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("Update(%q) command is not quit", k.String())
		}
	}
}

func TestStatusModel_Cleanup(t *testing.T) {
	requested := 0
	m := newStatusModel("console.log", func() { requested++ })

	m, _ = update(t, m, keyMsg("c"))
	if requested != 1 {
		t.Fatalf("cleanup requested %d times, want 1", requested)
	}
	if !strings.Contains(m.View(), "Cleaning up console.log") {
		t.Errorf("View() = %q, want cleanup in progress", m.View())
	}

	m, _ = update(t, m, pausedMsg(true))
	if !strings.Contains(m.View(), "Paused") {
		t.Error("View() doesn't show pause")
	}
	m, _ = update(t, m, cleanupMsg("Removed 0 error lines and 3 blank lines (total: 3) from console.log."))
	m, _ = update(t, m, pausedMsg(false))

	view := m.View()
	if strings.Contains(view, "Paused") {
		t.Error("View() still shows pause")
	}
	if !strings.Contains(view, "3 blank lines") {
		t.Errorf("View() = %q, want cleanup summary", view)
	}
}

func TestStatusModel_Error(t *testing.T) {
	m := newStatusModel("console.log", nil)
	m, _ = update(t, m, errMsg{errors.New("console.log not found")})
	if !strings.Contains(m.View(), "warning: console.log not found") {
		t.Errorf("View() = %q, want warning", m.View())
	}

	// A fresh state clears the warning
	m, _ = update(t, m, stateMsg{state: consolelog.DefaultState(), at: time.Now()})
	if strings.Contains(m.View(), "warning") {
		t.Errorf("View() = %q, want no warning", m.View())
	}
}

func TestTUIPresenter(t *testing.T) {
	var got []tea.Msg
	p := &tuiPresenter{}

	// Calls before the program exists are dropped
	p.SetTrackedPlayerVisible(true)

	p.send = func(m tea.Msg) { got = append(got, m) }
	p.Pump()
	p.SetTrackedPlayerVisible(true)
	p.Pause()
	p.ShowCleanupSummary("done")
	p.Unpause()

	want := []tea.Msg{trackedMsg(true), pausedMsg(true), cleanupMsg("done"), pausedMsg(false)}
	if len(got) != len(want) {
		t.Fatalf("sent %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("msg %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestForward(t *testing.T) {
	states := make(chan consolelog.State, 1)
	errs := make(chan error, 1)
	states <- consolelog.DefaultState()
	errs <- errors.New("boom")
	close(states)
	close(errs)

	var got []tea.Msg
	forward(states, errs, func(m tea.Msg) { got = append(got, m) })

	if len(got) != 2 {
		t.Fatalf("forwarded %d messages, want 2", len(got))
	}
	var sawState, sawErr bool
	for _, m := range got {
		switch m := m.(type) {
		case stateMsg:
			sawState = m.state.IsDefault()
		case errMsg:
			sawErr = m.err.Error() == "boom"
		}
	}
	if !sawState || !sawErr {
		t.Errorf("forwarded %v", got)
	}
}
