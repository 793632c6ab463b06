package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/gunass/terminal-space-program/pkg/flight"
	"github.com/gunass/terminal-space-program/pkg/validation"
)

// prompter asks the pilot for launch parameters on a line-based terminal.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

// waitForEnter shows msg and blocks until a line is read.
func (p *prompter) waitForEnter(msg string) error {
	fmt.Fprint(p.out, msg)
	if !p.in.Scan() {
		return inputClosed(p.in.Err())
	}
	return nil
}

// askNumber repeats label until the answer parses and passes check.
func (p *prompter) askNumber(label string, check func(float64) error) (float64, error) {
	for {
		fmt.Fprint(p.out, label)
		if !p.in.Scan() {
			return 0, inputClosed(p.in.Err())
		}
		v, err := validation.ParseNumber(p.in.Text())
		if err == nil {
			err = check(v)
		}
		if err == nil {
			return v, nil
		}
		fmt.Fprintf(p.out, "  %v, try again\n", err)
	}
}

// askRocket collects the four launch parameters.
func (p *prompter) askRocket() (flight.Rocket, error) {
	var r flight.Rocket
	questions := []struct {
		label string
		check func(float64) error
		dst   *float64
	}{
		{"Rocket mass      > ", validation.ValidateMass, &r.Mass},
		{"Rocket thrust    > ", validation.ValidateThrust, &r.Thrust},
		{"Rocket fuel      > ", validation.ValidateFuel, &r.Fuel},
		{"Launch gradient  > ", validation.ValidateHeading, &r.Heading},
	}
	for _, q := range questions {
		v, err := p.askNumber(q.label, q.check)
		if err != nil {
			return flight.Rocket{}, err
		}
		*q.dst = v
	}
	return r, nil
}

func inputClosed(err error) error {
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return io.ErrUnexpectedEOF
}
