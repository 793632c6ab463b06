// Package validation checks launch parameters before a simulator is built.
package validation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gunass/terminal-space-program/pkg/flight"
)

// Upper bound on any single launch parameter
const MaxParameter = 1e9

// Launch parameter errors
var (
	ErrNotANumber      = errors.New("not a number")
	ErrNonPositiveMass = errors.New("mass must be positive")
	ErrNegativeThrust  = errors.New("thrust cannot be negative")
	ErrNegativeFuel    = errors.New("fuel cannot be negative")
	ErrOutOfRange      = errors.New("value out of range")
)

// ParseNumber parses a trimmed decimal input line.
func ParseNumber(input string) (float64, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, fmt.Errorf("empty input: %w", ErrNotANumber)
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", trimmed, ErrNotANumber)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q: %w", trimmed, ErrNotANumber)
	}
	if math.Abs(v) > MaxParameter {
		return 0, fmt.Errorf("%g exceeds %g: %w", v, MaxParameter, ErrOutOfRange)
	}
	return v, nil
}

// ValidateMass requires a strictly positive mass
func ValidateMass(mass float64) error {
	if !(mass > 0) {
		return fmt.Errorf("mass %g: %w", mass, ErrNonPositiveMass)
	}
	return nil
}

// ValidateThrust rejects negative thrust
func ValidateThrust(thrust float64) error {
	if thrust < 0 || math.IsNaN(thrust) {
		return fmt.Errorf("thrust %g: %w", thrust, ErrNegativeThrust)
	}
	return nil
}

// ValidateFuel rejects negative fuel
func ValidateFuel(fuel float64) error {
	if fuel < 0 || math.IsNaN(fuel) {
		return fmt.Errorf("fuel %g: %w", fuel, ErrNegativeFuel)
	}
	return nil
}

// ValidateHeading requires a finite heading
func ValidateHeading(heading float64) error {
	if math.IsNaN(heading) || math.IsInf(heading, 0) {
		return fmt.Errorf("heading %g: %w", heading, ErrNotANumber)
	}
	return nil
}

// ValidateRocket checks all four launch parameters.
func ValidateRocket(r flight.Rocket) error {
	return errors.Join(
		ValidateMass(r.Mass),
		ValidateThrust(r.Thrust),
		ValidateFuel(r.Fuel),
		ValidateHeading(r.Heading),
	)
}

// ParseRocket parses and validates the four launch inputs.
func ParseRocket(mass, thrust, fuel, heading string) (flight.Rocket, error) {
	var r flight.Rocket
	fields := []struct {
		name  string
		input string
		dst   *float64
	}{
		{"mass", mass, &r.Mass},
		{"thrust", thrust, &r.Thrust},
		{"fuel", fuel, &r.Fuel},
		{"heading", heading, &r.Heading},
	}
	for _, f := range fields {
		v, err := ParseNumber(f.input)
		if err != nil {
			return flight.Rocket{}, fmt.Errorf("invalid %s: %w", f.name, err)
		}
		*f.dst = v
	}
	if err := ValidateRocket(r); err != nil {
		return flight.Rocket{}, err
	}
	return r, nil
}
