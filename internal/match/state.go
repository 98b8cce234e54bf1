// Package match owns the authoritative match state and the append-only event
// log derived from it. The state store is the single mutation point: decoded
// console packets are applied under one mutex, and every reader gets an
// internally consistent snapshot.
package match

import (
	"fmt"

	"github.com/banshee-data/scorefeed/internal/packet"
)

// Clock is the main game clock value as reported by the console.
type Clock struct {
	Minutes uint8 `json:"minutes"`
	Seconds uint8 `json:"seconds"`
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Minutes, c.Seconds)
}

// PlayerStat holds the per-cap counters the console reports.
type PlayerStat struct {
	Points uint8 `json:"points"`
	Fouls  uint8 `json:"fouls"`
}

// PenaltySlot mirrors one of the console's penalty positions. A zero slot is
// free.
type PenaltySlot struct {
	Player  uint8 `json:"player"`
	Minutes uint8 `json:"minutes"`
	Seconds uint8 `json:"seconds"`
}

// Active reports whether the slot holds a running penalty.
func (p PenaltySlot) Active() bool {
	return p.Player != 0 && (p.Minutes > 0 || p.Seconds > 0)
}

// Remaining formats the penalty time left as M:SS.
func (p PenaltySlot) Remaining() string {
	return fmt.Sprintf("%d:%02d", p.Minutes, p.Seconds)
}

// TeamState is one side of the scoreboard.
type TeamState struct {
	Score        int                              `json:"score"`
	TimeoutsUsed int                              `json:"timeouts_used"`
	Players      [packet.TeamSize]PlayerStat      `json:"players"`
	Penalties    [packet.PenaltySlots]PenaltySlot `json:"penalties"`
}

// State is the full scoreboard aggregate. It is a value type: arrays rather
// than slices, so a copy is a snapshot.
type State struct {
	Period int   `json:"period"`
	Clock  Clock `json:"clock"`

	// ActionSeconds is the shot clock; 0 when idle.
	ActionSeconds int `json:"action_seconds"`

	// TimeoutSeconds counts down a running team timeout; 0 when none is
	// active.
	TimeoutSeconds int `json:"timeout_seconds"`

	ClockRunning bool `json:"clock_running"`

	Home  TeamState `json:"home"`
	Guest TeamState `json:"guest"`
}

// team returns the side addressed by t.
func (s *State) team(t packet.Team) *TeamState {
	if t == packet.TeamGuest {
		return &s.Guest
	}
	return &s.Home
}
