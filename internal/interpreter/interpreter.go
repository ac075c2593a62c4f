// Package interpreter folds console.log lines into a game state.
//
// A Machine is fed lines oldest first with Step and produces the final
// state with Finish. It does no I/O of its own.
package interpreter

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/tf2rp/consolelog-go/internal/servername"
	"github.com/tf2rp/consolelog-go/pkg/consolelog/state"
)

// PumpEvery is how many lines are processed between calls to Config.Pump.
const PumpEvery = 1500

// Line markers. Full lines are shown in the comments where they help.
const (
	// "Soldier killed Scout with tf_projectile_rocket."
	killMarker = "with"
	// "Player :  message"
	chatMarker = " :  "

	// "hostname: Uncletopia | Chicago | 1"
	hostnamePrefix = "hostname: "
	// "players : 5 humans, 3 bots (24 max)"
	playersPrefix = "players : "
	// "Player selected Medic ..." lines end with "<class> selected "
	classSuffix = " selected "
	// "Map: pl_upward"
	mapPrefix = "Map:"

	// "SV_ActivateServer: setting tickrate to 66.7"
	activateMarker     = "SV_ActivateServer"
	disconnectMarker   = "Disconnect by user"
	missingMapMarker   = "Missing map"
	missingMapMaterial = "Missing map material"
	connectedMarker    = "Connected to"
	matchmakingMarker  = "matchmaking server"
	wavCacheMarker     = "CAsyncWavDataCache"

	partyMarker = "[P"
	// "[PartyClient] Leaving queue"
	partyLeaving = "[PartyClient] L"
	// "[PartyClient] Entering queue for match group 12v12 Casual Match"
	partyEnteringQueue = "[PartyClient] Entering q"
	// "[PartyClient] Entering standby queue"
	partyEnteringStandby = "[PartyClient] Entering s"
	matchGroupMarker     = "match group "
)

// menusTriggers are substrings that mean the client has left the server it was on.
var menusTriggers = []string{
	"For FCVAR_REPLICATED",
	"[TF Workshop]",
	"request to abandon",
	"Server shutting down",
	"Lobby destroyed",
	"Disconnect:",
	"destroyed CAsyncWavDataCache",
	"ShutdownGC",
	"Connection failed after",
	"Host_Error",
}

// Normalizer turns a raw hostname into its display form and reports whether
// it belongs to an official matchmaking server.
type Normalizer interface {
	Normalize(raw string) (name string, official bool)
}

// Config configures a Machine.
type Config struct {
	// Usernames are the local player's known names.
	Usernames []string

	// SpecialScan enables tracked player detection for this scan.
	SpecialScan bool

	// TrackedName and TrackedID identify the tracked player. TrackedID is
	// the Steam3 form, e.g. "[U:1:160315024]". Empty disables tracking.
	TrackedName string
	TrackedID   string

	// HideQueuedMode collapses every queued state to state.Queued.
	HideQueuedMode bool

	// Normalizer cleans the server name. Nil uses servername.Clean.
	Normalizer Normalizer

	// Pump is called every PumpEvery lines. Nil disables it.
	Pump func()

	Logger *slog.Logger
}

// ScanContext is the working state of one scan.
type ScanContext struct {
	InMenus          bool
	Map              string
	Class            string
	Queued           string
	ServerName       string
	ServerPlayers    int
	ServerPlayersMax int

	// JustStartedServer is set by SV_ActivateServer while in menus and
	// consumed by the next map change.
	JustStartedServer bool
	// ServerStillRunning is true when the current map was loaded by a
	// server this client started.
	ServerStillRunning bool
	// UsingWavCache means disconnects are detected by the second
	// CAsyncWavDataCache line after connecting to a community server.
	UsingWavCache bool
	// FoundFirstWavCache is set by the CAsyncWavDataCache line after loading in.
	FoundFirstWavCache bool
	// ConnectingToMatchmaking is set while joining a matchmaking server.
	ConnectingToMatchmaking bool

	// MenusLine is the line that last sent the client to the menus.
	MenusLine string

	// TrackedSeenOn is the map the tracked player was last seen on.
	TrackedSeenOn string
	TrackedSeen   bool

	leavingServer bool
}

// NewScanContext returns the context a scan starts from.
func NewScanContext() ScanContext {
	return ScanContext{InMenus: true, Queued: state.NotQueued}
}

// Outcome is the result of Finish.
type Outcome struct {
	State state.State

	// TrackedVisible is true when the tracked player is on the local
	// player's current map.
	TrackedVisible bool

	// Lines is the number of lines stepped and Pumps the number of Pump calls.
	Lines int
	Pumps int
}

// Machine is the per-line state machine.
type Machine struct {
	cfg Config
	ctx ScanContext

	skipKills     bool
	skipChat      bool
	userIsTracked bool

	lines     int
	sincePump int
	pumps     int
}

// New returns a Machine for one scan.
func New(cfg Config) *Machine {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	m := &Machine{
		cfg:       cfg,
		ctx:       NewScanContext(),
		skipKills: true,
		skipChat:  true,
	}
	for _, name := range cfg.Usernames {
		if strings.Contains(name, killMarker) {
			m.skipKills = false
		}
		if strings.Contains(name, chatMarker) {
			m.skipChat = false
		}
		if cfg.TrackedName != "" && name == cfg.TrackedName {
			m.userIsTracked = true
		}
	}
	return m
}

// UserIsTracked reports whether the local player is the tracked player.
func (m *Machine) UserIsTracked() bool {
	return m.userIsTracked
}

// Context returns a copy of the current scan context.
func (m *Machine) Context() ScanContext {
	return m.ctx
}

// Step processes one line, given without its terminator.
func (m *Machine) Step(line string) {
	m.lines++
	m.sincePump++
	if m.sincePump == PumpEvery {
		if m.cfg.Pump != nil {
			m.cfg.Pump()
		}
		m.sincePump = 0
		m.pumps++
	}

	if m.skip(line) {
		return
	}

	c := &m.ctx
	if !c.InMenus {
		m.stepInGame(line)
	} else if strings.Contains(line, activateMarker) {
		c.JustStartedServer = true
	}

	m.stepTransitions(line)

	if c.leavingServer {
		c.leavingServer = false
		c.InMenus = true
		c.MenusLine = line
		c.TrackedSeenOn = ""
		c.TrackedSeen = false
		c.ConnectingToMatchmaking = false
		c.UsingWavCache = false
		c.FoundFirstWavCache = false
	}
}

// skip reports whether line is kill feed or chat and can be ignored.
func (m *Machine) skip(line string) bool {
	if !(m.skipKills && strings.Contains(line, killMarker)) && !(m.skipChat && strings.Contains(line, chatMarker)) {
		return false
	}
	return !m.cfg.SpecialScan || m.userIsTracked || !m.mentionsTracked(line)
}

func (m *Machine) mentionsTracked(line string) bool {
	return (m.cfg.TrackedName != "" && strings.Contains(line, m.cfg.TrackedName)) ||
		(m.cfg.TrackedID != "" && strings.Contains(line, m.cfg.TrackedID))
}

func (m *Machine) stepInGame(line string) {
	c := &m.ctx
	for _, trigger := range menusTriggers {
		if strings.Contains(line, trigger) {
			c.leavingServer = true
			break
		}
	}

	switch {
	case strings.HasPrefix(line, hostnamePrefix):
		c.ServerName = line[len(hostnamePrefix):]

	case strings.HasPrefix(line, playersPrefix):
		if players, maxPlayers, ok := parsePlayers(line); ok {
			c.ServerPlayers, c.ServerPlayersMax = players, maxPlayers
		} else {
			m.cfg.Logger.Debug("malformed players line", "line", line)
		}

	case strings.HasSuffix(line, classSuffix):
		fields := strings.Fields(line[:len(line)-len(classSuffix)])
		if len(fields) > 0 && state.IsClass(fields[len(fields)-1]) {
			c.Class = fields[len(fields)-1]
		}

	case strings.Contains(line, disconnectMarker):
		for _, name := range m.cfg.Usernames {
			if name != "" && strings.Contains(line, name) {
				c.leavingServer = true
				break
			}
		}

	case strings.Contains(line, missingMapMarker) && !strings.Contains(line, missingMapMaterial):
		c.leavingServer = true
	}

	if m.cfg.SpecialScan && !m.userIsTracked && m.cfg.TrackedID != "" && strings.Contains(line, m.cfg.TrackedID) {
		c.TrackedSeenOn = c.Map
		c.TrackedSeen = true
	}
}

func (m *Machine) stepTransitions(line string) {
	c := &m.ctx
	switch {
	case strings.HasPrefix(line, mapPrefix):
		c.InMenus = false
		c.Map = strings.TrimSpace(line[len(mapPrefix):])
		c.Class = ""
		c.ServerStillRunning = c.JustStartedServer
		c.JustStartedServer = false

	case !c.ConnectingToMatchmaking && strings.Contains(line, connectedMarker):
		c.UsingWavCache = true
		c.FoundFirstWavCache = false
		c.ConnectingToMatchmaking = false

	case strings.Contains(line, matchmakingMarker):
		c.ConnectingToMatchmaking = true

	case c.UsingWavCache && strings.Contains(line, wavCacheMarker):
		switch {
		case !c.FoundFirstWavCache:
			c.FoundFirstWavCache = true
		case c.InMenus:
			m.cfg.Logger.Error("found CAsyncWavDataCache despite being in menus already")
		default:
			c.leavingServer = true
		}

	case strings.Contains(line, partyMarker):
		switch {
		case strings.Contains(line, partyLeaving):
			c.Queued = state.NotQueued
		case strings.Contains(line, partyEnteringQueue):
			group := line
			if i := strings.LastIndex(line, matchGroupMarker); i >= 0 {
				group = line[i+len(matchGroupMarker):]
			}
			c.Queued = state.QueuedFor(group)
		case strings.Contains(line, partyEnteringStandby):
			c.Queued = state.QueuedForParty
		}
	}
}

// parsePlayers reads "players : 5 humans, 3 bots (24 max)".
func parsePlayers(line string) (players, maxPlayers int, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 7 {
		return 0, 0, false
	}
	humans, err := strconv.Atoi(fields[2])
	if err != nil {
		return 0, 0, false
	}
	bots, err := strconv.Atoi(fields[4])
	if err != nil {
		return 0, 0, false
	}
	maxPlayers, err = strconv.Atoi(strings.TrimPrefix(fields[6], "("))
	if err != nil {
		return 0, 0, false
	}
	return humans + bots, maxPlayers, true
}

// Finish freezes the scan context into an Outcome.
func (m *Machine) Finish() Outcome {
	c := m.ctx
	out := Outcome{Lines: m.lines, Pumps: m.pumps}

	out.TrackedVisible = !m.userIsTracked && !c.InMenus && c.TrackedSeen && c.TrackedSeenOn == c.Map

	s := state.State{InMenus: c.InMenus, Queued: c.Queued}
	if c.InMenus {
		if c.MenusLine != "" {
			m.cfg.Logger.Debug("menus line used", "line", strings.TrimSpace(c.MenusLine))
		}
	} else {
		name, official := m.normalize(c.ServerName)
		s.Map = c.Map
		s.Class = c.Class
		s.ServerName = name
		s.ServerPlayers = c.ServerPlayers
		s.ServerPlayersMax = c.ServerPlayersMax
		if official && s.ServerPlayersMax == 32 {
			s.ServerPlayersMax = 24
		}
		if s.Class != "" && s.Map == "" {
			m.cfg.Logger.Error("have class without map", "class", s.Class)
		}
		s.Hosting = c.ServerStillRunning
	}

	if m.cfg.HideQueuedMode && state.IsQueued(s.Queued) {
		m.cfg.Logger.Debug("hiding queued mode", "queued", s.Queued)
		s.Queued = state.Queued
	}

	out.State = s
	return out
}

func (m *Machine) normalize(raw string) (string, bool) {
	if m.cfg.Normalizer != nil {
		return m.cfg.Normalizer.Normalize(raw)
	}
	return servername.Clean(raw)
}

// Fold runs a Machine over lines and returns its Outcome.
func Fold(lines []string, cfg Config) Outcome {
	m := New(cfg)
	for _, line := range lines {
		m.Step(line)
	}
	return m.Finish()
}
