package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/scorefeed/internal/config"
	"github.com/banshee-data/scorefeed/internal/match"
	"github.com/banshee-data/scorefeed/internal/packet"
)

type testServer struct {
	store    *match.Store
	log      *match.Log
	detector *match.Detector
	mux      *http.ServeMux
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := match.NewStore()
	eventLog := match.NewLog()
	detector := match.NewDetector(eventLog)
	cfg := config.DefaultMatchConfig()
	cfg.Home = &config.TeamSetup{Name: "KAR"}
	cfg.Guest = &config.TeamSetup{Name: "MAH"}
	return &testServer{
		store:    store,
		log:      eventLog,
		detector: detector,
		mux:      NewServer(store, eventLog, detector, nil, cfg).ServeMux(),
	}
}

func (s *testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestStateEndpoint(t *testing.T) {
	srv := newTestServer(t)
	if _, err := srv.store.Apply(packet.TimeScore{
		Minutes: 6, Seconds: 12, Running: true,
		ActionSeconds: 20, HomeScore: 3, GuestScore: 1,
		Period: 2, HomeTimeouts: 1, GuestTimeouts: 0,
	}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	w := srv.get(t, "/api/state")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body struct {
		State match.State       `json:"state"`
		Home  *config.TeamSetup `json:"home"`
		Guest *config.TeamSetup `json:"guest"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.State.Home.Score != 3 || body.State.Guest.Score != 1 {
		t.Errorf("score = %d-%d, want 3-1", body.State.Home.Score, body.State.Guest.Score)
	}
	if body.State.Clock.String() != "06:12" || body.State.Period != 2 {
		t.Errorf("clock/period = %q period %d", body.State.Clock.String(), body.State.Period)
	}
	if body.Home.Name != "KAR" || body.Guest.Name != "MAH" {
		t.Errorf("team names = %q / %q", body.Home.Name, body.Guest.Name)
	}
}

func TestEventsEndpointFiltering(t *testing.T) {
	srv := newTestServer(t)
	srv.log.Append(match.MatchEvent{Kind: match.EventGoal, Team: packet.TeamHome, GameClock: "07:45"})
	srv.log.Append(match.MatchEvent{Kind: match.EventFoul, Team: packet.TeamGuest, Player: 5})

	var all []match.MatchEvent
	if err := json.Unmarshal(srv.get(t, "/api/events").Body.Bytes(), &all); err != nil {
		t.Fatalf("failed to decode events: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d events, want 2", len(all))
	}

	var goals []match.MatchEvent
	if err := json.Unmarshal(srv.get(t, "/api/events?kind=goal").Body.Bytes(), &goals); err != nil {
		t.Fatalf("failed to decode goals: %v", err)
	}
	if len(goals) != 1 || goals[0].Kind != match.EventGoal {
		t.Errorf("goals = %+v", goals)
	}

	if w := srv.get(t, "/api/events?kind=substitution"); w.Code != http.StatusBadRequest {
		t.Errorf("unsupported kind status = %d, want 400", w.Code)
	}
}

func TestEventsEndpointEmptyLogIsArray(t *testing.T) {
	srv := newTestServer(t)
	if got := strings.TrimSpace(srv.get(t, "/api/events").Body.String()); got != "[]" {
		t.Errorf("empty log body = %q, want []", got)
	}
}

func TestScorersEndpoint(t *testing.T) {
	srv := newTestServer(t)

	base := match.State{Period: 1}
	srv.detector.Observe(base, time.Now())
	scored := base
	scored.Home.Score = 1
	scored.Home.Players[1].Points = 1 // cap 2
	srv.detector.Observe(scored, time.Now())

	var buckets map[int]map[int]int
	if err := json.Unmarshal(srv.get(t, "/api/scorers?team=home").Body.Bytes(), &buckets); err != nil {
		t.Fatalf("failed to decode scorers: %v", err)
	}
	if diff := cmp.Diff(map[int]map[int]int{2: {1: 1}}, buckets); diff != "" {
		t.Errorf("scorer buckets mismatch (-want +got):\n%s", diff)
	}

	if w := srv.get(t, "/api/scorers"); w.Code != http.StatusBadRequest {
		t.Errorf("missing team status = %d, want 400", w.Code)
	}
	if w := srv.get(t, "/api/scorers?team=visitors"); w.Code != http.StatusBadRequest {
		t.Errorf("bad team status = %d, want 400", w.Code)
	}
}

func TestResetEndpoint(t *testing.T) {
	srv := newTestServer(t)
	if _, err := srv.store.Apply(packet.TimeScore{
		Minutes: 2, Seconds: 0,
		ActionSeconds: -1, HomeScore: 5, GuestScore: 4,
		Period: 4, HomeTimeouts: 2, GuestTimeouts: 1,
	}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	srv.log.Append(match.MatchEvent{Kind: match.EventGoal, Team: packet.TeamHome})

	w := httptest.NewRecorder()
	srv.mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/reset", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("reset status = %d, want 204", w.Code)
	}

	if diff := cmp.Diff(match.State{}, srv.store.Snapshot()); diff != "" {
		t.Errorf("state not zeroed after reset (-want +got):\n%s", diff)
	}
	if n := srv.log.Len(); n != 0 {
		t.Errorf("log has %d events after reset, want 0", n)
	}

	if w := srv.get(t, "/api/reset"); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET reset status = %d, want 405", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	w := srv.get(t, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "scorefeed_") {
		t.Error("metrics output missing scorefeed collectors")
	}
}
