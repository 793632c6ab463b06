// Package flight advances a single rocket through fixed timesteps.
//
// A Simulator owns the rocket state and steps it with explicit Euler
// integration, one step per Tick. It never sleeps and never fails: every
// abnormal condition is reported as a terminal Outcome.
package flight

import (
	"context"
	"math"

	"github.com/gunass/terminal-space-program/pkg/logging"
	"github.com/gunass/terminal-space-program/pkg/physics"
)

// Field is the surface a Simulator draws the rocket onto each tick.
type Field interface {
	Place(pos physics.Vector2D, glyph rune)
	Render() []string
}

// Rocket holds the four launch parameters supplied by the pilot.
type Rocket struct {
	Mass    float64
	Thrust  float64
	Fuel    float64
	Heading float64
}

// Settings replaces the process-wide constants of a flight.
type Settings struct {
	Gravity   float64
	FrameRate float64
	// Scaled treats forces as per-second quantities and divides
	// acceleration, position deltas and fuel burn by FrameRate.
	// Unscaled flights burn one unit of fuel per tick.
	Scaled bool
	// SlopeGlyphs draws the rocket with a glyph picked from its trajectory
	// slope; otherwise Glyphs.Vertical is used throughout.
	SlopeGlyphs bool
	// SteerBySlope overwrites the heading with the trajectory slope
	// whenever a slope glyph is computed.
	SteerBySlope bool
	// TrackingRange ends the flight with LostTracking once either
	// coordinate exceeds it in magnitude. Zero disables the check.
	TrackingRange float64
	Glyphs        Glyphs
}

// DefaultSettings returns unscaled physics at 9.8 gravity with fixed glyphs.
func DefaultSettings() Settings {
	return Settings{
		Gravity:   9.8,
		FrameRate: 5,
		Glyphs:    DefaultGlyphs(),
	}
}

// State is a snapshot of the rocket.
type State struct {
	Mass         float64
	Thrust       float64
	Fuel         float64
	Heading      float64
	Position     physics.Vector2D
	Velocity     physics.Vector2D
	Acceleration physics.Vector2D
	Liftoff      bool
	Glyph        rune
	Ticks        int
}

// Simulator steps one rocket. It is not safe for concurrent use.
type Simulator struct {
	settings Settings
	state    State
	final    *Outcome
	logger   *logging.Logger
}

// NewSimulator creates a grounded rocket at the origin. The caller must
// have validated r (mass > 0). A nil logger discards output.
func NewSimulator(r Rocket, settings Settings, logger *logging.Logger) *Simulator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Simulator{
		settings: settings,
		state: State{
			Mass:         r.Mass,
			Thrust:       r.Thrust,
			Fuel:         r.Fuel,
			Heading:      r.Heading,
			Acceleration: physics.Vector2D{Y: -settings.Gravity},
			Glyph:        settings.Glyphs.Vertical,
		},
		logger: logger,
	}
}

// State returns a copy of the current rocket state.
func (s *Simulator) State() State {
	return s.state
}

// Settings returns the settings the simulator was built with.
func (s *Simulator) Settings() Settings {
	return s.settings
}

// Tick advances the flight by one timestep and draws the result on field.
// Once a terminal outcome has been returned, further calls return it again
// without touching the state or the field.
func (s *Simulator) Tick(ctx context.Context, field Field) Outcome {
	if s.final != nil {
		return *s.final
	}

	st := &s.state
	prev := *st
	st.Acceleration = s.acceleration()
	st.Velocity = st.Velocity.Add(st.Acceleration)
	st.Fuel -= s.burnPerTick()
	s.move()
	st.Ticks++

	if !st.Position.IsFinite() || !st.Velocity.IsFinite() || !st.Acceleration.IsFinite() {
		// Keep the last finite state; gravity can never recover from Inf or NaN.
		prev.Ticks = st.Ticks
		*st = prev
		return s.finish(ctx, Outcome{Reason: LostTracking})
	}

	s.logger.Debug(ctx, "tick",
		"tick", st.Ticks,
		"x", st.Position.X,
		"y", st.Position.Y,
		"vx", st.Velocity.X,
		"vy", st.Velocity.Y,
		"heading", st.Heading,
		"fuel", st.Fuel,
	)

	switch {
	case st.Fuel <= 0 && !st.Liftoff:
		return s.finish(ctx, Outcome{Reason: OutOfFuelOnPad})
	case st.Position.X < 0:
		return s.finish(ctx, Outcome{Reason: CrashedLeftWall})
	case st.Position.Y < 0:
		field.Place(physics.Vector2D{X: st.Position.X}, s.settings.Glyphs.Crash)
		return s.finish(ctx, Outcome{Reason: CrashedFloor, Frame: field.Render()})
	case s.outOfRange():
		return s.finish(ctx, Outcome{Reason: LostTracking})
	}

	if st.Velocity.Y > 0 && !st.Liftoff {
		st.Liftoff = true
		s.logger.Info(ctx, "liftoff", "tick", st.Ticks, "fuel", st.Fuel)
	}
	field.Place(st.Position, st.Glyph)
	return Outcome{Reason: Continuing, Frame: field.Render()}
}

func (s *Simulator) finish(ctx context.Context, out Outcome) Outcome {
	s.final = &out
	s.logger.Info(ctx, "flight terminated",
		"reason", out.Reason.String(),
		"tick", s.state.Ticks,
		"x", s.state.Position.X,
		"y", s.state.Position.Y,
	)
	return out
}

// acceleration picks the formula for the current fuel and liftoff state.
func (s *Simulator) acceleration() physics.Vector2D {
	st := s.state
	g := s.settings.Gravity

	switch {
	case st.Fuel > 0 && st.Liftoff:
		a := physics.ThrustDirection(st.Heading).Scale(st.Thrust)
		return s.perTick(physics.Vector2D{
			X: a.X / st.Mass,
			Y: a.Y/st.Mass - g,
		})
	case st.Fuel > 0:
		// No lateral push on the pad, and the pad holds the rocket up.
		up := s.perTick(physics.Vector2D{Y: math.Cosh(st.Heading)*st.Thrust/st.Mass - g})
		if up.Y < 0 {
			return physics.Vector2D{}
		}
		return physics.Vector2D{Y: up.Y}
	case st.Liftoff:
		return s.perTick(physics.Vector2D{Y: -g})
	default:
		return physics.Vector2D{}
	}
}

func (s *Simulator) outOfRange() bool {
	r := s.settings.TrackingRange
	if r <= 0 {
		return false
	}
	return math.Abs(s.state.Position.X) > r || math.Abs(s.state.Position.Y) > r
}

func (s *Simulator) perTick(v physics.Vector2D) physics.Vector2D {
	if !s.settings.Scaled {
		return v
	}
	return physics.Vector2D{
		X: v.X / s.settings.FrameRate,
		Y: v.Y / s.settings.FrameRate,
	}
}

func (s *Simulator) burnPerTick() float64 {
	if !s.settings.Scaled {
		return 1
	}
	return 1 / s.settings.FrameRate
}

// move advances the position and, in slope-glyph mode, re-derives the glyph.
func (s *Simulator) move() {
	st := &s.state
	prev := st.Position
	next := prev.Add(s.perTick(st.Velocity))

	if s.settings.SlopeGlyphs && (next.X != 0 || prev.X != 0) {
		d := next.Sub(prev)
		slope := d.Y / d.X
		// A near-vertical step yields a slope whose thrust direction
		// overflows; keep flying on the previous heading instead.
		if s.settings.SteerBySlope && physics.ThrustDirection(slope).IsFinite() {
			st.Heading = slope
		}
		st.Glyph = GlyphForSlope(slope, s.settings.Glyphs)
	}
	st.Position = next
}
