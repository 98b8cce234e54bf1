// Package matchdb mirrors the in-memory match event log into SQLite so the
// offline report generator can query a match after the display has moved on.
// The mirror is best effort: recording failures are logged by the caller and
// never stall the pipeline, and nothing is reloaded at startup.
package matchdb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/scorefeed/internal/match"
	"github.com/banshee-data/scorefeed/internal/packet"
)

type DB struct {
	*sql.DB
}

// NewDB opens (creating if needed) the match event database at path.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS match_sessions (
			session_id        TEXT PRIMARY KEY,
			home_name         TEXT,
			guest_name        TEXT,
			started           TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS match_events (
			event_id          INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id        TEXT,
			wallclock         TIMESTAMP,
			game_clock        TEXT,
			period            INTEGER,
			kind              TEXT,
			team              TEXT,
			player            INTEGER,
			home_score        INTEGER,
			guest_score       INTEGER,
			note              TEXT,
			FOREIGN KEY(session_id) REFERENCES match_sessions(session_id)
		);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// StartSession registers a new match session and returns its id. Called at
// process start and again on each match reset.
func (db *DB) StartSession(homeName, guestName string) (string, error) {
	id := uuid.New().String()
	_, err := db.Exec(
		"INSERT INTO match_sessions (session_id, home_name, guest_name) VALUES (?, ?, ?)",
		id, homeName, guestName,
	)
	if err != nil {
		return "", fmt.Errorf("failed to start session: %w", err)
	}
	return id, nil
}

// RecordEvent appends one match event to the session's mirror.
func (db *DB) RecordEvent(sessionID string, e match.MatchEvent) error {
	_, err := db.Exec(`
		INSERT INTO match_events
			(session_id, wallclock, game_clock, period, kind, team, player, home_score, guest_score, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, e.Wallclock.UTC().Format(time.RFC3339Nano), e.GameClock, e.Period,
		string(e.Kind), e.Team.String(), e.Player, e.HomeScore, e.GuestScore, e.Note,
	)
	if err != nil {
		return fmt.Errorf("failed to record match event: %w", err)
	}
	return nil
}

// EventsForSession returns a session's events in insertion order.
func (db *DB) EventsForSession(sessionID string) ([]match.MatchEvent, error) {
	rows, err := db.Query(`
		SELECT wallclock, game_clock, period, kind, team, player, home_score, guest_score, note
		FROM match_events WHERE session_id = ? ORDER BY event_id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []match.MatchEvent
	for rows.Next() {
		var e match.MatchEvent
		var wallclock, kind, team string
		if err := rows.Scan(&wallclock, &e.GameClock, &e.Period, &kind, &team,
			&e.Player, &e.HomeScore, &e.GuestScore, &e.Note); err != nil {
			return nil, err
		}
		if e.Wallclock, err = time.Parse(time.RFC3339Nano, wallclock); err != nil {
			return nil, fmt.Errorf("failed to parse wallclock %q: %w", wallclock, err)
		}
		if e.Team, err = packet.ParseTeam(team); err != nil {
			return nil, err
		}
		e.Kind = match.EventKind(kind)
		events = append(events, e)
	}
	return events, rows.Err()
}
