package serialmux

import (
	"io"
	"time"
)

// ReplayPort implements SerialPorter by streaming recorded byte groups with a
// configurable idle gap between them, reproducing the console's silence-gap
// packet cadence. It backs dev mode and the synchronizer tests.
type ReplayPort struct {
	*io.PipeReader
	writer *io.PipeWriter
}

// NewReplayPort streams each group, sleeping gap between groups. With loop
// set the sequence repeats until Close; otherwise reads return io.EOF after
// the last group.
func NewReplayPort(groups [][]byte, gap time.Duration, loop bool) *ReplayPort {
	r, w := io.Pipe()
	p := &ReplayPort{PipeReader: r, writer: w}

	go func() {
		defer w.Close()
		if len(groups) == 0 {
			return
		}
		for {
			for _, g := range groups {
				if _, err := w.Write(g); err != nil {
					return
				}
				time.Sleep(gap)
			}
			if !loop {
				return
			}
		}
	}()

	return p
}

// Write discards: the pipeline never talks back to the console.
func (p *ReplayPort) Write(b []byte) (int, error) {
	return len(b), nil
}

// Close stops the replay and unblocks any pending Read.
func (p *ReplayPort) Close() error {
	p.writer.CloseWithError(io.EOF)
	return p.PipeReader.Close()
}
