package flight

// Reason tells the driving loop whether a flight goes on and, if not, why.
type Reason int

// Flight outcomes
const (
	Continuing Reason = iota
	OutOfFuelOnPad
	CrashedLeftWall
	CrashedFloor
	// LostTracking ends a flight whose state left the representable range
	// or the configured tracking range.
	LostTracking
)

// String returns the stable name used in logs and metric labels.
func (r Reason) String() string {
	switch r {
	case Continuing:
		return "continuing"
	case OutOfFuelOnPad:
		return "out_of_fuel_on_pad"
	case CrashedLeftWall:
		return "crashed_left_wall"
	case CrashedFloor:
		return "crashed_floor"
	case LostTracking:
		return "lost_tracking"
	default:
		return "unknown"
	}
}

// Message returns the line shown to the pilot when the flight ends this way.
func (r Reason) Message() string {
	switch r {
	case OutOfFuelOnPad:
		return "You ran out of fuel on the launchpad!"
	case CrashedLeftWall:
		return "You crashed into the LEFT wall. How?"
	case CrashedFloor:
		return "You crashed into the floor."
	case LostTracking:
		return "You flew out of tracking range."
	default:
		return ""
	}
}

// Outcome is the result of a single tick.
type Outcome struct {
	Reason Reason
	// Frame is the field rendered after the tick. It is set while the
	// flight continues and for the crash frame of CrashedFloor; the other
	// terminal reasons carry no frame.
	Frame []string
}

// Terminated reports whether the flight is over.
func (o Outcome) Terminated() bool {
	return o.Reason != Continuing
}
