// pkg/physics/vector.go
package physics

import "math"

// Vector2D is a pair of reals used for position, velocity and acceleration.
type Vector2D struct {
	X float64
	Y float64
}

// Add returns the component-wise sum of two vectors
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{
		X: v.X + other.X,
		Y: v.Y + other.Y,
	}
}

// Sub returns the difference between two vectors
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{
		X: v.X - other.X,
		Y: v.Y - other.Y,
	}
}

// Scale multiplies the vector by a scalar value
func (v Vector2D) Scale(factor float64) Vector2D {
	return Vector2D{
		X: v.X * factor,
		Y: v.Y * factor,
	}
}

// IsFinite reports whether neither component is NaN or infinite.
func (v Vector2D) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// ThrustDirection returns the engine direction for a heading.
// Headings drive a hyperbolic, not circular, basis: (sinh h, cosh h).
func ThrustDirection(heading float64) Vector2D {
	return Vector2D{
		X: math.Sinh(heading),
		Y: math.Cosh(heading),
	}
}
