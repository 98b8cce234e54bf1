package match

import (
	"sync"
	"time"

	"github.com/banshee-data/scorefeed/internal/packet"
)

// Detector derives match events from the difference between consecutive
// state snapshots and appends them to the log. It carries no state beyond
// the last observed snapshot, which it updates after every observation
// whether or not anything was emitted.
//
// The derivation is inherently lossy: the console reports totals, so several
// increments landing inside one silence window collapse into a single event
// carrying the final counter value. Timeouts and penalty slots are
// per-unit, so each unit of change still yields its own event. Corrections
// are never retracted; a corrective score overwrite only updates state.
type Detector struct {
	mu     sync.Mutex
	log    *Log
	prev   State
	primed bool
}

// NewDetector returns a detector appending to log.
func NewDetector(log *Log) *Detector {
	return &Detector{log: log}
}

// Reset drops the comparison baseline. Called at match reset so a stale
// high-score baseline cannot swallow the next match's opening goals.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prev = State{}
	d.primed = false
}

// Observe diffs the new snapshot against the previous one, appends any
// derived events to the log in a stable order, and returns them. The first
// observation only establishes the baseline, so attaching to a match in
// progress does not replay its history as fresh events.
func (d *Detector) Observe(s State, now time.Time) []MatchEvent {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.primed {
		d.prev = s
		d.primed = true
		return nil
	}

	var emitted []MatchEvent
	emit := func(e MatchEvent) {
		e.Wallclock = now
		e.GameClock = s.Clock.String()
		e.Period = s.Period
		e.HomeScore = s.Home.Score
		e.GuestScore = s.Guest.Score
		d.log.Append(e)
		emitted = append(emitted, e)
	}

	for _, team := range []packet.Team{packet.TeamHome, packet.TeamGuest} {
		cur, old := s.team(team), d.prev.team(team)

		if cur.Score > old.Score {
			emit(MatchEvent{Kind: EventGoal, Team: team})
		}

		for i := range cur.Players {
			if cur.Players[i].Fouls > old.Players[i].Fouls {
				emit(MatchEvent{Kind: EventFoul, Team: team, Player: uint8(i + 1)})
			}
			if delta := int(cur.Players[i].Points) - int(old.Players[i].Points); delta > 0 {
				d.log.creditGoals(team, i+1, s.Period, delta)
			}
		}

		for unit := old.TimeoutsUsed; unit < cur.TimeoutsUsed; unit++ {
			emit(MatchEvent{Kind: EventTimeout, Team: team})
		}

		for slot := range cur.Penalties {
			p := cur.Penalties[slot]
			was := old.Penalties[slot]
			if p.Active() && (!was.Active() || was.Player != p.Player) {
				emit(MatchEvent{
					Kind:   EventPenalty,
					Team:   team,
					Player: p.Player,
					Note:   p.Remaining(),
				})
			}
		}
	}

	d.prev = s
	return emitted
}
