package flight

import (
	"context"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/gunass/terminal-space-program/pkg/physics"
	"github.com/gunass/terminal-space-program/pkg/playfield"
)

const tolerance = 1e-9

// countingField records calls made by the simulator.
type countingField struct {
	*playfield.PlayField
	places  int
	renders int
	last    rune
}

func newCountingField() *countingField {
	return &countingField{PlayField: playfield.New(100, 30, '|')}
}

func (f *countingField) Place(pos physics.Vector2D, glyph rune) {
	f.places++
	f.last = glyph
	f.PlayField.Place(pos, glyph)
}

func (f *countingField) Render() []string {
	f.renders++
	return f.PlayField.Render()
}

func unscaled() Settings {
	return DefaultSettings()
}

func TestTick_FirstTickLiftsOff(t *testing.T) {
	sim := NewSimulator(Rocket{Mass: 10, Thrust: 400, Fuel: 5, Heading: 0.3}, unscaled(), nil)
	field := newCountingField()

	out := sim.Tick(context.Background(), field)

	if out.Terminated() {
		t.Fatalf("expected flight to continue, got %v", out.Reason)
	}
	st := sim.State()
	wantAy := math.Cosh(0.3)*400/10 - 9.8
	if st.Acceleration.X != 0 {
		t.Errorf("expected no lateral acceleration on the pad, got %v", st.Acceleration.X)
	}
	if !scalar.EqualWithinAbs(st.Acceleration.Y, wantAy, tolerance) {
		t.Errorf("expected ay %v, got %v", wantAy, st.Acceleration.Y)
	}
	if st.Velocity.Y <= 0 {
		t.Errorf("expected positive vertical velocity, got %v", st.Velocity.Y)
	}
	if !st.Liftoff {
		t.Error("expected liftoff on the first tick")
	}
	if st.Fuel != 4 {
		t.Errorf("expected one unit of fuel burned, got %v left", st.Fuel)
	}
	if field.places != 1 || field.renders != 1 {
		t.Errorf("expected one placement and one render, got %d and %d", field.places, field.renders)
	}
	if len(out.Frame) != 30 {
		t.Errorf("expected a 30 line frame, got %d", len(out.Frame))
	}
}

func TestTick_NoThrustRunsOutOfFuelOnPad(t *testing.T) {
	sim := NewSimulator(Rocket{Mass: 10, Thrust: 0, Fuel: 5, Heading: 0}, unscaled(), nil)
	field := newCountingField()
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		out := sim.Tick(ctx, field)
		if out.Terminated() {
			t.Fatalf("tick %d: unexpected termination %v", i, out.Reason)
		}
		st := sim.State()
		if st.Acceleration != (physics.Vector2D{}) {
			t.Errorf("tick %d: expected clamped acceleration, got %v", i, st.Acceleration)
		}
		if st.Liftoff {
			t.Fatalf("tick %d: rocket should never lift off", i)
		}
	}

	placesBefore, rendersBefore := field.places, field.renders
	out := sim.Tick(ctx, field)
	if out.Reason != OutOfFuelOnPad {
		t.Fatalf("expected OutOfFuelOnPad, got %v", out.Reason)
	}
	if out.Frame != nil {
		t.Error("expected no frame for OutOfFuelOnPad")
	}
	if field.places != placesBefore || field.renders != rendersBefore {
		t.Error("expected the field to be left alone on OutOfFuelOnPad")
	}
}

func TestTick_CrashIntoFloorEmitsOneCrashFrame(t *testing.T) {
	sim := NewSimulator(Rocket{Mass: 10, Thrust: 200, Fuel: 2, Heading: 0}, unscaled(), nil)
	field := newCountingField()
	ctx := context.Background()

	var out Outcome
	wasAirborne := false
	for i := 0; i < 50; i++ {
		placesBefore := field.places
		rendersBefore := field.renders
		before := sim.State()
		out = sim.Tick(ctx, field)
		st := sim.State()

		if wasAirborne && !st.Liftoff {
			t.Fatalf("tick %d: liftoff reverted", st.Ticks)
		}
		wasAirborne = st.Liftoff

		if before.Fuel <= 0 && before.Liftoff {
			if st.Acceleration != (physics.Vector2D{X: 0, Y: -9.8}) {
				t.Errorf("tick %d: expected pure gravity, got %v", st.Ticks, st.Acceleration)
			}
		}
		if out.Terminated() {
			if field.places-placesBefore != 1 || field.renders-rendersBefore != 1 {
				t.Errorf("expected exactly one crash placement and render")
			}
			break
		}
	}

	if out.Reason != CrashedFloor {
		t.Fatalf("expected CrashedFloor, got %v", out.Reason)
	}
	if field.last != '&' {
		t.Errorf("expected crash glyph, got %q", field.last)
	}
	bottom := out.Frame[29]
	if !strings.HasPrefix(bottom, "&") {
		t.Errorf("expected crash glyph at (0,0), got bottom row %q", bottom)
	}
	if sim.State().Position.Y >= 0 {
		t.Errorf("expected rocket below the floor, got y=%v", sim.State().Position.Y)
	}
}

func TestTick_CrashIntoLeftWall(t *testing.T) {
	sim := NewSimulator(Rocket{Mass: 10, Thrust: 200, Fuel: 3, Heading: -1}, unscaled(), nil)
	field := newCountingField()
	ctx := context.Background()

	out := sim.Tick(ctx, field)
	if out.Terminated() || !sim.State().Liftoff {
		t.Fatalf("expected liftoff on first tick, got %v", out.Reason)
	}

	out = sim.Tick(ctx, field)
	if out.Reason != CrashedLeftWall {
		t.Fatalf("expected CrashedLeftWall, got %v", out.Reason)
	}
	if out.Frame != nil {
		t.Error("expected no frame for CrashedLeftWall")
	}
	wantX := math.Sinh(-1) * 200 / 10
	if !scalar.EqualWithinAbs(sim.State().Position.X, wantX, tolerance) {
		t.Errorf("expected x %v, got %v", wantX, sim.State().Position.X)
	}
}

func TestTick_AfterTerminationIsInert(t *testing.T) {
	sim := NewSimulator(Rocket{Mass: 10, Thrust: 0, Fuel: 1}, unscaled(), nil)
	field := newCountingField()
	ctx := context.Background()

	first := sim.Tick(ctx, field)
	if first.Reason != OutOfFuelOnPad {
		t.Fatalf("expected OutOfFuelOnPad, got %v", first.Reason)
	}
	before := sim.State()

	again := sim.Tick(ctx, field)
	if again.Reason != first.Reason {
		t.Errorf("expected repeated outcome %v, got %v", first.Reason, again.Reason)
	}
	if sim.State() != before {
		t.Error("state changed after termination")
	}
}

func TestTick_ScaledPhysicsDividesByFrameRate(t *testing.T) {
	settings := unscaled()
	settings.Scaled = true
	sim := NewSimulator(Rocket{Mass: 10, Thrust: 400, Fuel: 5, Heading: 0.3}, settings, nil)

	sim.Tick(context.Background(), newCountingField())

	st := sim.State()
	wantAy := (math.Cosh(0.3)*400/10 - 9.8) / 5
	if !scalar.EqualWithinAbs(st.Acceleration.Y, wantAy, tolerance) {
		t.Errorf("expected ay %v, got %v", wantAy, st.Acceleration.Y)
	}
	if !scalar.EqualWithinAbs(st.Position.Y, wantAy/5, tolerance) {
		t.Errorf("expected y %v, got %v", wantAy/5, st.Position.Y)
	}
	if !scalar.EqualWithinAbs(st.Fuel, 4.8, tolerance) {
		t.Errorf("expected fuel 4.8, got %v", st.Fuel)
	}
}

func TestTick_GroundedNeverAcceleratesSideways(t *testing.T) {
	for _, heading := range []float64{-2, -0.5, 0, 0.5, 2} {
		settings := unscaled()
		settings.Gravity = 1000 // keep the rocket pinned
		sim := NewSimulator(Rocket{Mass: 1, Thrust: 10, Fuel: 3, Heading: heading}, settings, nil)
		field := newCountingField()

		for i := 0; i < 2; i++ {
			sim.Tick(context.Background(), field)
			if st := sim.State(); st.Acceleration.X != 0 || st.Acceleration.Y != 0 {
				t.Errorf("heading %v: expected zero acceleration on pad, got %v", heading, st.Acceleration)
			}
		}
	}
}

func TestTick_SlopeGlyphs(t *testing.T) {
	settings := unscaled()
	settings.SlopeGlyphs = true
	sim := NewSimulator(Rocket{Mass: 10, Thrust: 20, Fuel: 10, Heading: 3}, settings, nil)
	field := newCountingField()
	ctx := context.Background()

	sim.Tick(ctx, field)
	if sim.State().Glyph != '|' {
		t.Errorf("tick 1: expected vertical glyph on a straight climb, got %q", sim.State().Glyph)
	}

	sim.Tick(ctx, field)
	if sim.State().Glyph != '|' {
		t.Errorf("tick 2: expected vertical glyph, got %q", sim.State().Glyph)
	}

	sim.Tick(ctx, field)
	if sim.State().Glyph != '/' {
		t.Errorf("tick 3: expected rising glyph, got %q", sim.State().Glyph)
	}
	if sim.State().Heading != 3 {
		t.Errorf("expected heading untouched without steering, got %v", sim.State().Heading)
	}
}

func TestTick_SteerBySlopeOverwritesHeading(t *testing.T) {
	settings := unscaled()
	settings.SlopeGlyphs = true
	settings.SteerBySlope = true
	sim := NewSimulator(Rocket{Mass: 10, Thrust: 20, Fuel: 10, Heading: 3}, settings, nil)
	field := newCountingField()
	ctx := context.Background()

	sim.Tick(ctx, field)
	if sim.State().Heading != 3 {
		t.Fatalf("expected heading kept while x stays at 0, got %v", sim.State().Heading)
	}

	prev := sim.State().Position
	sim.Tick(ctx, field)
	st := sim.State()
	want := (st.Position.Y - prev.Y) / (st.Position.X - prev.X)
	if st.Heading != want {
		t.Errorf("expected heading %v from slope, got %v", want, st.Heading)
	}
}

func TestTick_IsDeterministic(t *testing.T) {
	run := func() []State {
		settings := unscaled()
		settings.Scaled = true
		settings.SlopeGlyphs = true
		settings.SteerBySlope = true
		sim := NewSimulator(Rocket{Mass: 10, Thrust: 110, Fuel: 1, Heading: 0.1}, settings, nil)
		field := newCountingField()
		var states []State
		for i := 0; i < 200; i++ {
			out := sim.Tick(context.Background(), field)
			states = append(states, sim.State())
			if out.Terminated() {
				break
			}
		}
		return states
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("runs diverged in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("runs diverged at tick %d", i+1)
		}
	}
}

// cliDefaults mirrors the settings the tsp command ships with.
func cliDefaults() Settings {
	settings := unscaled()
	settings.Scaled = true
	settings.SlopeGlyphs = true
	settings.SteerBySlope = true
	settings.TrackingRange = 1e6
	return settings
}

func TestTick_SteerBySlopeKeepsHeadingWhenSlopeOverflows(t *testing.T) {
	sim := NewSimulator(Rocket{Mass: 10, Thrust: 110, Fuel: 1, Heading: 0.0003}, cliDefaults(), nil)
	field := newCountingField()
	ctx := context.Background()

	sim.Tick(ctx, field)
	prev := sim.State().Position
	out := sim.Tick(ctx, field)
	if out.Terminated() {
		t.Fatalf("expected flight to continue, got %v", out.Reason)
	}

	st := sim.State()
	slope := (st.Position.Y - prev.Y) / (st.Position.X - prev.X)
	if !math.IsInf(math.Sinh(slope), 1) {
		t.Fatalf("expected a near-vertical step, got slope %v", slope)
	}
	if st.Heading != 0.0003 {
		t.Errorf("expected heading 0.0003 kept, got %v", st.Heading)
	}
	if st.Glyph != '|' {
		t.Errorf("expected vertical glyph, got %q", st.Glyph)
	}
}

func TestTick_SteeredFlightsStayFiniteAndEnd(t *testing.T) {
	tests := []struct {
		name    string
		heading float64
		want    Reason
	}{
		{"near vertical", 0.0003, LostTracking},
		{"shallow", 0.01, LostTracking},
		{"tilted", 0.1, CrashedFloor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := NewSimulator(Rocket{Mass: 10, Thrust: 110, Fuel: 1, Heading: tt.heading}, cliDefaults(), nil)
			field := newCountingField()

			var out Outcome
			for i := 1; i <= 1000; i++ {
				out = sim.Tick(context.Background(), field)
				st := sim.State()
				if !st.Position.IsFinite() || !st.Velocity.IsFinite() {
					t.Fatalf("tick %d: non-finite state %+v", i, st)
				}
				if math.IsNaN(st.Heading) || math.IsInf(st.Heading, 0) {
					t.Fatalf("tick %d: non-finite heading %v", i, st.Heading)
				}
				if out.Terminated() {
					break
				}
			}
			if out.Reason != tt.want {
				t.Errorf("expected %v within 1000 ticks, got %v after %d", tt.want, out.Reason, sim.State().Ticks)
			}
		})
	}
}

func TestTick_OverflowEndsFlightWithLastFiniteState(t *testing.T) {
	sim := NewSimulator(Rocket{Mass: 1, Thrust: 1e9, Fuel: 10, Heading: 700}, unscaled(), nil)
	field := newCountingField()

	out := sim.Tick(context.Background(), field)

	if out.Reason != LostTracking {
		t.Fatalf("expected LostTracking, got %v", out.Reason)
	}
	if out.Frame != nil {
		t.Errorf("expected no frame, got %d lines", len(out.Frame))
	}
	st := sim.State()
	if !st.Position.IsFinite() || !st.Velocity.IsFinite() || !st.Acceleration.IsFinite() {
		t.Errorf("expected the last finite state to be kept, got %+v", st)
	}
	if st.Ticks != 1 {
		t.Errorf("expected tick count 1, got %d", st.Ticks)
	}
	if field.places != 0 {
		t.Errorf("expected nothing drawn, got %d placements", field.places)
	}
	if again := sim.Tick(context.Background(), field); again.Reason != LostTracking {
		t.Errorf("expected repeated LostTracking, got %v", again.Reason)
	}
}

func TestTick_TrackingRange(t *testing.T) {
	settings := unscaled()
	settings.TrackingRange = 50
	sim := NewSimulator(Rocket{Mass: 10, Thrust: 400, Fuel: 100, Heading: 0}, settings, nil)
	field := newCountingField()

	var out Outcome
	for i := 0; i < 100 && !out.Terminated(); i++ {
		out = sim.Tick(context.Background(), field)
	}

	if out.Reason != LostTracking {
		t.Fatalf("expected LostTracking, got %v", out.Reason)
	}
	if y := sim.State().Position.Y; y <= 50 {
		t.Errorf("expected altitude past the range, got %v", y)
	}
}
