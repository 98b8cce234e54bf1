package frame

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/banshee-data/scorefeed/internal/serialmux"
)

const testWindow = 40 * time.Millisecond

func runSync(t *testing.T, s *Synchronizer) (cancel context.CancelFunc, done chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done = make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	return cancel, done
}

func collect(t *testing.T, frames <-chan []byte, n int) [][]byte {
	t.Helper()
	var out [][]byte
	for len(out) < n {
		select {
		case f, ok := <-frames:
			if !ok {
				t.Fatalf("frame channel closed after %d frames, want %d", len(out), n)
			}
			out = append(out, f)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for frame %d of %d", len(out)+1, n)
		}
	}
	return out
}

func TestSilenceGapSplitsFrames(t *testing.T) {
	groups := [][]byte{
		{0x16, 0x01, 0x02},
		{0x1D, 0x03},
	}
	port := serialmux.NewReplayPort(groups, 3*testWindow, false)
	s := NewSynchronizer(port, Config{SilenceWindow: testWindow})

	cancel, done := runSync(t, s)
	defer cancel()

	frames := collect(t, s.Frames(), 2)
	if !bytes.Equal(frames[0], groups[0]) {
		t.Errorf("frame 0 = % X, want % X", frames[0], groups[0])
	}
	if !bytes.Equal(frames[1], groups[1]) {
		t.Errorf("frame 1 = % X, want % X", frames[1], groups[1])
	}

	port.Close()
	<-done
}

// Bytes arriving faster than the silence window must not be split: no frame
// appears until a gap occurs or the hard cap is reached.
func TestNoEmissionWithoutGap(t *testing.T) {
	// one long transmission, gaps well under the window
	var groups [][]byte
	for i := 0; i < 6; i++ {
		groups = append(groups, []byte{byte(i)})
	}
	port := serialmux.NewReplayPort(groups, testWindow/8, false)
	s := NewSynchronizer(port, Config{SilenceWindow: testWindow})

	cancel, done := runSync(t, s)
	defer cancel()

	select {
	case f := <-s.Frames():
		// the only legal frame is the complete accumulation flushed at EOF
		if len(f) != 6 {
			t.Errorf("premature frame of %d bytes: % X", len(f), f)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no frame emitted at all")
	}
	<-done
}

func TestHardCapForcesFlush(t *testing.T) {
	// a wedged link: continuous bytes with no silence, ever
	big := make([]byte, 40)
	for i := range big {
		big[i] = byte(i)
	}
	port := serialmux.NewReplayPort([][]byte{big, big}, testWindow/10, true)
	defer port.Close()

	s := NewSynchronizer(port, Config{SilenceWindow: time.Hour, MaxFrame: 16})
	cancel, _ := runSync(t, s)
	defer cancel()

	frames := collect(t, s.Frames(), 3)
	for i, f := range frames {
		if len(f) != 16 {
			t.Errorf("forced frame %d length = %d, want the 16-byte cap", i, len(f))
		}
	}
}

func TestShapeFilterDropsUnknownFrames(t *testing.T) {
	groups := [][]byte{
		{0xEE, 0x01},       // unknown identifier: dropped
		{0x16, 0x02, 0x03}, // accepted
	}
	port := serialmux.NewReplayPort(groups, 3*testWindow, false)
	s := NewSynchronizer(port, Config{
		SilenceWindow: testWindow,
		Shape:         func(id byte, length int) bool { return id == 0x16 },
	})

	cancel, done := runSync(t, s)
	defer cancel()

	frames := collect(t, s.Frames(), 1)
	if frames[0][0] != 0x16 {
		t.Errorf("surviving frame = % X, want the 0x16 frame", frames[0])
	}

	port.Close()
	<-done

	// nothing else was emitted
	if extra, ok := <-s.Frames(); ok {
		t.Errorf("unexpected extra frame % X", extra)
	}
}

func TestCancellationStopsAtFrameBoundary(t *testing.T) {
	port := serialmux.NewReplayPort([][]byte{{0x16, 0x01}}, time.Hour, true)
	defer port.Close()

	s := NewSynchronizer(port, Config{SilenceWindow: testWindow})
	cancel, done := runSync(t, s)

	collect(t, s.Frames(), 1)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	// channel is closed; no partial frame trails out
	if f, ok := <-s.Frames(); ok {
		t.Errorf("frame after cancellation: % X", f)
	}
}

func TestConfigDefaults(t *testing.T) {
	s := NewSynchronizer(bytes.NewReader(nil), Config{})
	if s.cfg.SilenceWindow != DefaultSilenceWindow {
		t.Errorf("default window = %v, want %v", s.cfg.SilenceWindow, DefaultSilenceWindow)
	}
	if s.cfg.MaxFrame != DefaultMaxFrame {
		t.Errorf("default cap = %d, want %d", s.cfg.MaxFrame, DefaultMaxFrame)
	}
}
