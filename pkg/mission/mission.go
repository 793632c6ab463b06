// Package mission drives a flight: it paces ticks, forwards frames to a
// sink and announces what happened on the event bus.
package mission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gunass/terminal-space-program/pkg/event"
	"github.com/gunass/terminal-space-program/pkg/flight"
	"github.com/gunass/terminal-space-program/pkg/logging"
	"github.com/gunass/terminal-space-program/pkg/playfield"
	"github.com/gunass/terminal-space-program/pkg/render"
)

// AbortMessage closes every finished flight.
const AbortMessage = "Mission aborted!"

// Sink receives frames and status lines.
type Sink interface {
	Present(ctx context.Context, frame []string) error
	Separate(ctx context.Context) error
	Status(ctx context.Context, line string) error
}

// Summary describes a finished flight.
type Summary struct {
	Reason      flight.Reason
	Ticks       int
	Liftoff     bool
	MaxAltitude float64
	Final       flight.State
}

// Mission runs one simulator against one field.
type Mission struct {
	sim      *flight.Simulator
	field    *playfield.PlayField
	sink     Sink
	bus      *event.Bus
	logger   *logging.Logger
	interval time.Duration
}

// New creates a Mission. An interval of zero runs ticks back to back; a nil
// bus or logger is replaced by a private bus or a discarding logger.
func New(sim *flight.Simulator, field *playfield.PlayField, sink Sink, bus *event.Bus, logger *logging.Logger, interval time.Duration) *Mission {
	if bus == nil {
		bus = event.NewEventBus()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Mission{
		sim:      sim,
		field:    field,
		sink:     sink,
		bus:      bus,
		logger:   logger,
		interval: interval,
	}
}

// Run presents the launch frame, then ticks until the flight terminates or
// ctx is cancelled. Sink write failures are logged and skipped until the
// sink reports it has given up.
func (m *Mission) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	m.bus.Publish(event.NewFlightEvent(event.FlightStarted, m, m.sim.State(), flight.Continuing))
	if err := m.emit(ctx, m.sink.Present(ctx, m.field.Render())); err != nil {
		return summary, err
	}

	var ticker *time.Ticker
	if m.interval > 0 {
		ticker = time.NewTicker(m.interval)
		defer ticker.Stop()
	}

	for {
		if err := m.wait(ctx, ticker); err != nil {
			m.logger.Warn(ctx, "flight interrupted", "tick", summary.Ticks)
			return summary, fmt.Errorf("mission interrupted: %w", err)
		}

		wasAirborne := m.sim.State().Liftoff
		out := m.sim.Tick(ctx, m.field)
		st := m.sim.State()
		summary.record(st, out.Reason)

		m.bus.Publish(event.NewFlightEvent(event.TickCompleted, m, st, out.Reason))
		if st.Liftoff && !wasAirborne {
			m.bus.Publish(event.NewFlightEvent(event.Liftoff, m, st, out.Reason))
		}

		if out.Terminated() {
			return summary, m.land(ctx, out)
		}

		if err := m.emit(ctx, m.sink.Separate(ctx)); err != nil {
			return summary, err
		}
		if err := m.emit(ctx, m.sink.Present(ctx, out.Frame)); err != nil {
			return summary, err
		}
	}
}

// land shows the final frame and messages of a terminated flight.
func (m *Mission) land(ctx context.Context, out flight.Outcome) error {
	m.bus.Publish(event.NewFlightEvent(event.FlightTerminated, m, m.sim.State(), out.Reason))

	if out.Frame != nil {
		if err := m.emit(ctx, m.sink.Present(ctx, out.Frame)); err != nil {
			return err
		}
	}
	if err := m.emit(ctx, m.sink.Status(ctx, out.Reason.Message())); err != nil {
		return err
	}
	return m.emit(ctx, m.sink.Status(ctx, AbortMessage))
}

func (m *Mission) wait(ctx context.Context, ticker *time.Ticker) error {
	if ticker == nil {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ticker.C:
		return nil
	}
}

// emit filters sink errors: a tripped sink ends the mission, anything
// else costs one frame.
func (m *Mission) emit(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, render.ErrSinkTripped) {
		return logging.WrapError(err, "frame output lost")
	}
	m.logger.Warn(ctx, "dropped sink output", "error", err.Error())
	return nil
}

func (s *Summary) record(st flight.State, reason flight.Reason) {
	s.Reason = reason
	s.Ticks = st.Ticks
	s.Liftoff = st.Liftoff
	s.Final = st
	if st.Position.Y > s.MaxAltitude {
		s.MaxAltitude = st.Position.Y
	}
}
