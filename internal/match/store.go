package match

import (
	"fmt"
	"sync"

	"github.com/banshee-data/scorefeed/internal/packet"
)

// ApplyError reports a decoded event the store refused. The prior state is
// preserved in full; an event never partially applies.
type ApplyError struct {
	Event  string
	Reason string
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply %s: %s", e.Event, e.Reason)
}

// Store holds the single authoritative State. Apply calls are totally ordered
// under one mutex; Snapshot may run concurrently with Apply and returns a
// value consistent with some completed prefix of the Apply sequence.
type Store struct {
	mu    sync.Mutex
	state State
}

// NewStore returns a store holding all-zero defaults.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns an internally consistent copy of the current state.
func (st *Store) Snapshot() State {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state
}

// Reset restores all-zero defaults. Intended only at explicit new-match
// boundaries.
func (st *Store) Reset() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.state = State{}
}

// Apply merges one decoded event into the state under a single critical
// section and returns the resulting snapshot. The merge is variant-specific:
// a time/score packet overwrites clock, period and scores (the only path that
// may lower a score); penalty packets replace the slot table; points, fouls
// and timeout packets update their counters. On validation failure the state
// is unchanged and the prior snapshot is returned with the error.
func (st *Store) Apply(ev packet.Event) (State, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	var err error
	switch e := ev.(type) {
	case packet.TimeScore:
		st.applyTimeScore(e)
	case packet.Penalty:
		err = st.applyPenalty(e)
	case packet.PlayerPoints:
		st.applyPlayerPoints(e)
	case packet.Fouls:
		st.applyFouls(e)
	case packet.Timeout:
		st.state.Home.TimeoutsUsed = int(e.HomeUsed)
		st.state.Guest.TimeoutsUsed = int(e.GuestUsed)
	default:
		err = &ApplyError{Event: packet.TypeName(ev.ID()), Reason: "unhandled event variant"}
	}

	return st.state, err
}

func (st *Store) applyTimeScore(e packet.TimeScore) {
	s := &st.state
	s.Clock = Clock{Minutes: e.Minutes, Seconds: e.Seconds}
	s.ClockRunning = e.Running
	s.TimeoutSeconds = int(e.TimeoutSeconds)
	if e.ActionSeconds >= 0 {
		s.ActionSeconds = e.ActionSeconds
	} else {
		s.ActionSeconds = 0
	}
	// Optional fields the frame did not carry leave the state untouched.
	if e.HomeScore >= 0 {
		s.Home.Score = e.HomeScore
	}
	if e.GuestScore >= 0 {
		s.Guest.Score = e.GuestScore
	}
	if e.Period >= 0 {
		s.Period = e.Period
	}
	if e.HomeTimeouts >= 0 {
		s.Home.TimeoutsUsed = e.HomeTimeouts
	}
	if e.GuestTimeouts >= 0 {
		s.Guest.TimeoutsUsed = e.GuestTimeouts
	}
}

// applyPenalty validates the whole table before touching state, so a bad slot
// cannot leave a half-applied mix of old and new penalties.
func (st *Store) applyPenalty(e packet.Penalty) error {
	for _, slots := range [2][packet.PenaltySlots]packet.PenaltySlot{e.Home, e.Guest} {
		for _, s := range slots {
			if s.Player > packet.TeamSize {
				return &ApplyError{
					Event:  "penalty",
					Reason: fmt.Sprintf("no player with cap number %d", s.Player),
				}
			}
		}
	}
	copySlots := func(dst *[packet.PenaltySlots]PenaltySlot, src [packet.PenaltySlots]packet.PenaltySlot) {
		for i, s := range src {
			dst[i] = PenaltySlot{Player: s.Player, Minutes: s.Minutes, Seconds: s.Seconds}
		}
	}
	copySlots(&st.state.Home.Penalties, e.Home)
	copySlots(&st.state.Guest.Penalties, e.Guest)
	return nil
}

func (st *Store) applyPlayerPoints(e packet.PlayerPoints) {
	team := st.state.team(e.Team)
	for i, p := range e.Points {
		team.Players[i].Points = p
	}
}

// applyFouls keeps foul counts monotonic within a match: the console sends
// absolute totals, and a lower total mid-match is an operator slip, not a
// correction the rules allow.
func (st *Store) applyFouls(e packet.Fouls) {
	for i := 0; i < packet.TeamSize; i++ {
		if e.Home[i] > st.state.Home.Players[i].Fouls {
			st.state.Home.Players[i].Fouls = e.Home[i]
		}
		if e.Guest[i] > st.state.Guest.Players[i].Fouls {
			st.state.Guest.Players[i].Fouls = e.Guest[i]
		}
	}
}
