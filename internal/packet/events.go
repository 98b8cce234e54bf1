package packet

import "fmt"

// Team identifies which side of the scoreboard a value belongs to.
type Team int

const (
	TeamHome Team = iota
	TeamGuest
)

func (t Team) String() string {
	if t == TeamGuest {
		return "guest"
	}
	return "home"
}

// MarshalJSON encodes the team as its string token so API consumers never see
// the internal enum value.
func (t Team) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON accepts the string tokens produced by MarshalJSON.
func (t *Team) UnmarshalJSON(b []byte) error {
	parsed, err := ParseTeam(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTeam converts a team token (optionally JSON-quoted) back into a Team.
func ParseTeam(s string) (Team, error) {
	switch s {
	case "home", `"home"`:
		return TeamHome, nil
	case "guest", `"guest"`:
		return TeamGuest, nil
	}
	return TeamHome, fmt.Errorf("unknown team %q", s)
}

// Event is one decoded console packet. The concrete types form a closed set;
// ID returns the identifier byte the variant was decoded from.
type Event interface {
	ID() byte
}

// TimeScore carries the main clock and, when the console includes the
// optional trailing pairs, the scores, period and timeouts used. Optional
// integer fields are -1 when the frame did not carry them (or carried the
// NoData sentinel); state application leaves the corresponding state fields
// untouched in that case.
type TimeScore struct {
	Minutes uint8
	Seconds uint8

	// ActionSeconds is the shot clock value, or -1 when the console reports
	// the action clock idle.
	ActionSeconds int

	// TimeoutSeconds counts down a running team timeout; 0 when none is
	// active.
	TimeoutSeconds uint8

	// Running is the clock-running flag bit.
	Running bool

	HomeScore  int
	GuestScore int
	Period     int

	HomeTimeouts  int
	GuestTimeouts int
}

func (TimeScore) ID() byte { return IDTimeScore }

// PenaltySlot is one of the three penalty positions the console tracks per
// team. A zero slot means the position is free.
type PenaltySlot struct {
	Player  uint8
	Minutes uint8
	Seconds uint8
}

// Active reports whether the slot holds a running penalty.
func (s PenaltySlot) Active() bool {
	return s.Player != 0 && (s.Minutes > 0 || s.Seconds > 0)
}

// Penalty is the console's full penalty table: three slots per team. The
// console always retransmits the whole table, so a frame both inserts new
// penalties and clears expired ones.
type Penalty struct {
	Home  [PenaltySlots]PenaltySlot
	Guest [PenaltySlots]PenaltySlot
}

func (Penalty) ID() byte { return IDPenalty }

// PlayerPoints carries the points totals for every cap number of one team.
// Index 0 is cap number 1.
type PlayerPoints struct {
	Team   Team
	Points [TeamSize]uint8
}

func (p PlayerPoints) ID() byte {
	if p.Team == TeamGuest {
		return IDGuestPoints
	}
	return IDHomePoints
}

// Fouls carries the personal foul totals for every cap number of both teams.
type Fouls struct {
	Home  [TeamSize]uint8
	Guest [TeamSize]uint8
}

func (Fouls) ID() byte { return IDFouls }

// Timeout carries the absolute count of timeouts used per team.
type Timeout struct {
	HomeUsed  uint8
	GuestUsed uint8
}

func (Timeout) ID() byte { return IDTimeout }
