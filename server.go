package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/banshee-data/scorefeed/internal/config"
	"github.com/banshee-data/scorefeed/internal/match"
	"github.com/banshee-data/scorefeed/internal/monitoring"
	"github.com/banshee-data/scorefeed/internal/packet"
)

// Server exposes the pull-based read taps for the display and the report
// generator, plus the new-match reset. It never writes to match state except
// through the reset path.
type Server struct {
	store    *match.Store
	log      *match.Log
	detector *match.Detector
	recorder *Recorder
	cfg      *config.MatchConfig
}

func NewServer(store *match.Store, log *match.Log, detector *match.Detector, recorder *Recorder, cfg *config.MatchConfig) *Server {
	return &Server{store: store, log: log, detector: detector, recorder: recorder, cfg: cfg}
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.homeHandler)
	mux.HandleFunc("/api/state", s.stateHandler)
	mux.HandleFunc("/api/events", s.eventsHandler)
	mux.HandleFunc("/api/scorers", s.scorersHandler)
	mux.HandleFunc("/api/reset", s.resetHandler)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, "scorefeed: scoreboard console feed")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("failed to write response: %v", err)
	}
}

// stateHandler returns the current snapshot together with the pre-match
// setup, so the display needs a single poll.
func (s *Server) stateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, struct {
		State     match.State       `json:"state"`
		Home      *config.TeamSetup `json:"home,omitempty"`
		Guest     *config.TeamSetup `json:"guest,omitempty"`
		Officials []string          `json:"officials,omitempty"`
	}{
		State:     s.store.Snapshot(),
		Home:      s.cfg.Home,
		Guest:     s.cfg.Guest,
		Officials: s.cfg.Officials,
	})
}

func (s *Server) eventsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var events []match.MatchEvent
	switch kind := r.URL.Query().Get("kind"); kind {
	case "":
		events = s.log.Events()
	case "goal":
		events = s.log.Goals()
	default:
		http.Error(w, fmt.Sprintf("unsupported kind %q", kind), http.StatusBadRequest)
		return
	}
	if events == nil {
		events = []match.MatchEvent{}
	}
	writeJSON(w, events)
}

// scorersHandler returns the per-player goals bucketed by period for one
// team.
func (s *Server) scorersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	team, err := packet.ParseTeam(r.URL.Query().Get("team"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, s.log.PlayerGoalsByPeriod(team))
}

// resetHandler starts a new match: zeroed state, cleared log, fresh baseline
// and, when recording, a fresh session.
func (s *Server) resetHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.store.Reset()
	s.detector.Reset()
	s.log.Clear()
	if s.recorder != nil {
		if err := s.recorder.Restart(s.cfg.Home.TeamName("HOME"), s.cfg.Guest.TeamName("GUEST")); err != nil {
			monitoring.Logf("failed to roll recording session: %v", err)
			http.Error(w, "reset done, recording session unavailable", http.StatusInternalServerError)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
