// Package frame turns the console's unbounded serial byte stream into a lazy
// sequence of candidate packet frames.
//
// The console does not delimit packets on the wire; it relies on the idle gap
// between transmissions exceeding the gap between bytes of a single packet.
// The synchronizer therefore buffers bytes as they arrive and flushes the
// buffer as one candidate frame once the line has been silent for the
// configured window. A hard cap bounds the buffer if a wedged link streams
// bytes without ever going quiet.
package frame

import (
	"context"
	"io"
	"time"

	"github.com/banshee-data/scorefeed/internal/monitoring"
)

const (
	// DefaultSilenceWindow is the inter-byte idle duration treated as a frame
	// boundary. The console idles well over this between packets and well
	// under it between bytes of one packet at 9600 baud.
	DefaultSilenceWindow = 600 * time.Millisecond

	// DefaultMaxFrame bounds the accumulation buffer. The largest packet the
	// console sends is 37 bytes, so a clean link never hits the cap.
	DefaultMaxFrame = 64

	readChunkSize = 128
)

// Config carries the synchronizer tuning. Zero values select the defaults.
type Config struct {
	// SilenceWindow is the idle duration that closes a frame.
	SilenceWindow time.Duration

	// MaxFrame force-flushes the buffer once it accumulates this many bytes.
	MaxFrame int

	// Shape, when set, filters candidate frames by identifier byte and
	// length before they are emitted. Candidates that match no shape are
	// dropped silently and framing resumes from the next byte.
	Shape func(id byte, length int) bool
}

// Synchronizer owns the read side of one serial connection. Frames already
// flushed are gone; a new connection gets a new Synchronizer.
type Synchronizer struct {
	r      io.Reader
	cfg    Config
	frames chan []byte
}

// NewSynchronizer wraps a byte stream. Run must be started before frames
// appear on Frames.
func NewSynchronizer(r io.Reader, cfg Config) *Synchronizer {
	if cfg.SilenceWindow <= 0 {
		cfg.SilenceWindow = DefaultSilenceWindow
	}
	if cfg.MaxFrame <= 0 {
		cfg.MaxFrame = DefaultMaxFrame
	}
	return &Synchronizer{
		r:      r,
		cfg:    cfg,
		frames: make(chan []byte),
	}
}

// Frames returns the candidate frame sequence. The channel is closed when Run
// returns.
func (s *Synchronizer) Frames() <-chan []byte {
	return s.frames
}

// Run pumps the reader until the context is cancelled or the stream ends.
// Cancellation lands on a frame boundary: bytes buffered but not yet flushed
// are discarded, and no partial frame is ever handed downstream. A stream
// that simply stops producing bytes stalls frame emission without error.
func (s *Synchronizer) Run(ctx context.Context) error {
	defer close(s.frames)

	chunks := make(chan []byte)
	readErr := make(chan error, 1)

	// Reader goroutine: the blocking Read must not interfere with the outer
	// loop awaiting the silence timer and context cancellation.
	go func() {
		defer close(chunks)
		buf := make([]byte, readChunkSize)
		for {
			n, err := s.r.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case chunks <- chunk:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					select {
					case readErr <- err:
					case <-ctx.Done():
					}
				}
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
		}
	}()

	var pending []byte
	idle := time.NewTimer(s.cfg.SilenceWindow)
	defer idle.Stop()
	stopTimer(idle)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-readErr:
			return err

		case chunk, ok := <-chunks:
			if !ok {
				// Stream ended; the trailing gap will never tick, so flush
				// what is buffered.
				if len(pending) > 0 {
					s.emit(ctx, pending)
				}
				return nil
			}
			pending = append(pending, chunk...)
			for len(pending) >= s.cfg.MaxFrame {
				monitoring.ForcedFlushes.Inc()
				s.emit(ctx, pending[:s.cfg.MaxFrame])
				pending = append([]byte(nil), pending[s.cfg.MaxFrame:]...)
			}
			stopTimer(idle)
			if len(pending) > 0 {
				idle.Reset(s.cfg.SilenceWindow)
			}

		case <-idle.C:
			if len(pending) > 0 {
				s.emit(ctx, pending)
				pending = nil
			}
		}
	}
}

// emit applies the shape filter and hands one flushed frame downstream.
func (s *Synchronizer) emit(ctx context.Context, frame []byte) {
	if s.cfg.Shape != nil && !s.cfg.Shape(frame[0], len(frame)) {
		monitoring.FramesDropped.Inc()
		return
	}
	out := make([]byte, len(frame))
	copy(out, frame)
	monitoring.FramesFlushed.Inc()
	select {
	case s.frames <- out:
	case <-ctx.Done():
	}
}

// stopTimer drains a stopped timer's channel so Reset arms it cleanly.
func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
