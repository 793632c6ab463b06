// Package render provides sinks that receive the frames produced by a flight.
package render

import (
	"context"

	"github.com/gunass/terminal-space-program/pkg/logging"
)

// NullSink discards frames, logging each call at debug level. It backs
// headless runs where only the summary and metrics matter.
type NullSink struct {
	logger *logging.Logger
	frames int
}

// NewNullSink creates a NullSink. A nil logger discards the debug lines too.
func NewNullSink(logger *logging.Logger) *NullSink {
	if logger == nil {
		logger = logging.Discard()
	}
	return &NullSink{logger: logger}
}

// Present counts the frame.
func (d *NullSink) Present(ctx context.Context, frame []string) error {
	d.frames++
	d.logger.Debug(ctx, "Present called", "frame", d.frames, "lines", len(frame))
	return nil
}

// Separate does nothing.
func (d *NullSink) Separate(ctx context.Context) error {
	return nil
}

// Status logs the line.
func (d *NullSink) Status(ctx context.Context, line string) error {
	d.logger.Debug(ctx, "Status called", "line", line)
	return nil
}

// Frames returns how many frames were presented.
func (d *NullSink) Frames() int {
	return d.frames
}
