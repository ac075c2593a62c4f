// Package state defines the game state snapshot derived from a TF2 console.log.
//
// This package is separated from the main consolelog package to avoid import cycles
// between pkg/consolelog and internal/interpreter.
package state

import (
	"fmt"
	"strings"
)

// Queue state values. A queued state for a specific mode is built with QueuedFor.
const (
	NotQueued = "Not queued"
	Queued    = "Queued"

	// QueuedForParty is reported when the client enters the standby queue of a party.
	QueuedForParty = "Queued for a party's match"
)

// matchGroups maps the match group named by the party client to the
// name shown for it.
var matchGroups = map[string]string{
	"12v12 Casual Match": "Casual",
	"MvM Practice":       "MvM (Boot Camp)",
	"MvM MannUp":         "MvM (Mann Up)",
	"6v6 Ladder Match":   "Competitive",
}

// QueuedFor returns the queue state for the given party client match group.
// Unknown groups are shown verbatim.
func QueuedFor(matchGroup string) string {
	matchGroup = strings.TrimSpace(matchGroup)
	if name, ok := matchGroups[matchGroup]; ok {
		return "Queued for " + name
	}
	return "Queued for " + matchGroup
}

// IsQueued reports whether queued is any of the queued states.
func IsQueued(queued string) bool {
	return strings.Contains(queued, Queued)
}

// Classes is the list of player classes recognized in class selection lines.
var Classes = []string{"Scout", "Soldier", "Pyro", "Demoman", "Heavy", "Engineer", "Medic", "Sniper", "Spy"}

// IsClass reports whether name is one of Classes.
func IsClass(name string) bool {
	for _, c := range Classes {
		if c == name {
			return true
		}
	}
	return false
}

// State is the game state derived from one scan of console.log.
//
// When InMenus is true, Map, Class and the server fields are empty and
// Hosting is false.
type State struct {
	// InMenus is true when the player is not connected to a server.
	InMenus bool `json:"in_menus"`

	// Map is the current map name.
	Map string `json:"map,omitempty"`

	// Class is the last selected player class.
	Class string `json:"class,omitempty"`

	// Queued is NotQueued, Queued, or "Queued for <mode>".
	Queued string `json:"queued"`

	// Hosting is true when the local client started the server it is on.
	Hosting bool `json:"hosting"`

	// ServerName is the normalized server hostname.
	ServerName string `json:"server_name,omitempty"`

	// ServerPlayers is humans plus bots on the server.
	ServerPlayers int `json:"server_players"`

	// ServerPlayersMax is the server's player limit.
	ServerPlayersMax int `json:"server_players_max"`
}

// Default returns the state used when nothing could be learned from the log.
func Default() State {
	return State{InMenus: true, Queued: NotQueued}
}

// IsDefault reports whether s equals Default().
func (s State) IsDefault() bool {
	return s == Default()
}

// String implements fmt.Stringer.
func (s State) String() string {
	if s.InMenus {
		return fmt.Sprintf("in menus, %s", s.Queued)
	}
	where := s.Map
	if s.ServerName != "" {
		where = fmt.Sprintf("%s on %s (%d/%d)", s.Map, s.ServerName, s.ServerPlayers, s.ServerPlayersMax)
	}
	if s.Hosting {
		where += ", hosting"
	}
	if s.Class != "" {
		return fmt.Sprintf("%s as %s, %s", where, s.Class, s.Queued)
	}
	return fmt.Sprintf("%s, %s", where, s.Queued)
}
