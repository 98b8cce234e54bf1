package main

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/banshee-data/scorefeed/internal/frame"
	"github.com/banshee-data/scorefeed/internal/match"
	"github.com/banshee-data/scorefeed/internal/matchdb"
	"github.com/banshee-data/scorefeed/internal/monitoring"
	"github.com/banshee-data/scorefeed/internal/packet"
)

// Pipeline is the single writer to match state: it consumes candidate frames
// from the synchronizer, decodes them, applies them to the store and feeds
// the resulting snapshots to the change detector. Malformed frames are
// counted and dropped; the console retransmits its state continuously, so
// the next valid frame self-corrects.
type Pipeline struct {
	store    *match.Store
	detector *match.Detector
	recorder *Recorder
}

// NewPipeline wires the pipeline stages. recorder may be nil to run without
// the SQLite mirror.
func NewPipeline(store *match.Store, detector *match.Detector, recorder *Recorder) *Pipeline {
	return &Pipeline{store: store, detector: detector, recorder: recorder}
}

// Run consumes frames until the channel closes or the context is cancelled.
func (p *Pipeline) Run(ctx context.Context, frames <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			p.handleFrame(f)
		}
	}
}

func (p *Pipeline) handleFrame(f []byte) {
	ev, err := packet.Decode(f)
	if err != nil {
		monitoring.DecodeErrors.Inc()
		monitoring.Logf("dropping frame: %v", err)
		return
	}
	monitoring.PacketsDecoded.WithLabelValues(packet.TypeName(ev.ID())).Inc()

	snapshot, err := p.store.Apply(ev)
	if err != nil {
		monitoring.ApplyErrors.Inc()
		monitoring.Logf("rejecting event: %v", err)
		return
	}

	for _, e := range p.detector.Observe(snapshot, time.Now()) {
		monitoring.EventsLogged.WithLabelValues(string(e.Kind)).Inc()
		if p.recorder != nil {
			p.recorder.Record(e)
		}
	}
}

// Recorder pairs the SQLite mirror with the current session id. Session
// rollover happens at match reset, which runs on the HTTP goroutine, so the
// id is guarded.
type Recorder struct {
	db      *matchdb.DB
	session sessionRef
}

// NewRecorder starts a recording session for the configured team names.
func NewRecorder(db *matchdb.DB, homeName, guestName string) (*Recorder, error) {
	r := &Recorder{db: db}
	if err := r.Restart(homeName, guestName); err != nil {
		return nil, err
	}
	return r, nil
}

// Record mirrors one event into the current session. Failures are logged and
// swallowed: the in-memory log stays authoritative.
func (r *Recorder) Record(e match.MatchEvent) {
	if err := r.db.RecordEvent(r.session.get(), e); err != nil {
		monitoring.Logf("event mirror: %v", err)
	}
}

// Restart opens a fresh session, leaving prior sessions' rows behind.
func (r *Recorder) Restart(homeName, guestName string) error {
	id, err := r.db.StartSession(homeName, guestName)
	if err != nil {
		return err
	}
	r.session.set(id)
	return nil
}

// Session returns the current session id.
func (r *Recorder) Session() string {
	return r.session.get()
}

// sessionRef is a mutex-guarded session id.
type sessionRef struct {
	mu sync.Mutex
	id string
}

func (s *sessionRef) get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *sessionRef) set(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
}

// openSynchronizer builds the framing stage over a port with the packet
// shape table installed.
func openSynchronizer(port io.Reader, window time.Duration) *frame.Synchronizer {
	return frame.NewSynchronizer(port, frame.Config{
		SilenceWindow: window,
		Shape:         packet.KnownShape,
	})
}
