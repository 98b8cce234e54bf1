package match

import (
	"sync"
	"time"

	"github.com/banshee-data/scorefeed/internal/packet"
)

// EventKind classifies a logged match event.
type EventKind string

const (
	EventGoal    EventKind = "goal"
	EventFoul    EventKind = "foul"
	EventTimeout EventKind = "timeout"
	EventPenalty EventKind = "penalty"
)

// MatchEvent is one immutable log entry. Once appended it is never mutated or
// removed except by Clear at a match reset; a later corrective score
// overwrite does not retract earlier goals.
type MatchEvent struct {
	Wallclock time.Time   `json:"wallclock"`
	GameClock string      `json:"game_clock"`
	Period    int         `json:"period"`
	Kind      EventKind   `json:"kind"`
	Team      packet.Team `json:"team"`

	// Player is the cap number, or 0 when the console does not attribute
	// the event to a player (goals in particular).
	Player uint8 `json:"player,omitempty"`

	// Resulting score at the time the event was derived.
	HomeScore  int `json:"home_score"`
	GuestScore int `json:"guest_score"`

	// Note carries kind-specific detail, such as penalty time remaining.
	Note string `json:"note,omitempty"`
}

// Log is the ordered, insertion-order-preserving match event sequence plus
// the per-player goal buckets derived from player points deltas. It is safe
// for concurrent use; the pipeline appends while display and report readers
// query.
type Log struct {
	mu     sync.Mutex
	events []MatchEvent

	// goals[team][cap][period] counts goals credited to a cap number from
	// points deltas. Goal events themselves stay unattributed.
	goals map[packet.Team]map[int]map[int]int
}

// NewLog returns an empty event log.
func NewLog() *Log {
	return &Log{goals: make(map[packet.Team]map[int]map[int]int)}
}

// Append adds one event to the end of the log.
func (l *Log) Append(e MatchEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

// Events returns the full ordered event list as a copy.
func (l *Log) Events() []MatchEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]MatchEvent, len(l.events))
	copy(out, l.events)
	return out
}

// Goals returns only the goal events, in log order.
func (l *Log) Goals() []MatchEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []MatchEvent
	for _, e := range l.events {
		if e.Kind == EventGoal {
			out = append(out, e)
		}
	}
	return out
}

// Len reports the number of logged events.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// creditGoals adds n goals for a cap number in a period, for the per-player
// aggregation. Called by the detector when a player points total increases.
func (l *Log) creditGoals(team packet.Team, cap, period, n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	byCap := l.goals[team]
	if byCap == nil {
		byCap = make(map[int]map[int]int)
		l.goals[team] = byCap
	}
	byPeriod := byCap[cap]
	if byPeriod == nil {
		byPeriod = make(map[int]int)
		byCap[cap] = byPeriod
	}
	byPeriod[period] += n
}

// PlayerGoalsByPeriod returns {cap number: {period: goals}} for one team,
// derived from player points deltas. The result is a deep copy.
func (l *Log) PlayerGoalsByPeriod(team packet.Team) map[int]map[int]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[int]map[int]int, len(l.goals[team]))
	for cap, byPeriod := range l.goals[team] {
		periods := make(map[int]int, len(byPeriod))
		for period, n := range byPeriod {
			periods[period] = n
		}
		out[cap] = periods
	}
	return out
}

// Clear empties the log and the goal buckets. Tied to match reset only.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
	l.goals = make(map[packet.Team]map[int]map[int]int)
}
