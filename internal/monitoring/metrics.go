package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline counters, registered on the default registry and served by the
// /metrics endpoint. Decode and apply failures are expected during normal
// operation (line noise, operator edits mid-transmission), so they are
// counted rather than surfaced as process errors.
var (
	FramesFlushed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scorefeed",
		Subsystem: "frame",
		Name:      "flushed_total",
		Help:      "Candidate frames flushed by the byte synchronizer.",
	})

	ForcedFlushes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scorefeed",
		Subsystem: "frame",
		Name:      "forced_flushes_total",
		Help:      "Flushes forced by the accumulation hard cap rather than a silence gap.",
	})

	FramesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scorefeed",
		Subsystem: "frame",
		Name:      "dropped_total",
		Help:      "Candidate frames dropped because no known packet shape matched.",
	})

	PacketsDecoded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scorefeed",
		Subsystem: "packet",
		Name:      "decoded_total",
		Help:      "Frames decoded into events, by packet type.",
	}, []string{"type"})

	DecodeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scorefeed",
		Subsystem: "packet",
		Name:      "decode_errors_total",
		Help:      "Frames that matched a known identifier but failed validation.",
	})

	ApplyErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scorefeed",
		Subsystem: "match",
		Name:      "apply_errors_total",
		Help:      "Decoded events rejected by the state store.",
	})

	EventsLogged = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scorefeed",
		Subsystem: "match",
		Name:      "events_logged_total",
		Help:      "Match events appended to the event log, by kind.",
	}, []string{"kind"})
)
