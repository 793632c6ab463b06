package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sony/gobreaker"

	"github.com/gunass/terminal-space-program/pkg/logging"
)

// ErrSinkTripped is returned once repeated write failures have opened the
// sink's circuit breaker.
var ErrSinkTripped = errors.New("terminal sink unavailable")

const clearScreen = "\033[H\033[2J"

// SinkOptions configures a TerminalSink.
type SinkOptions struct {
	ClearScreen bool
	// Separator is written before every frame after the first.
	Separator string
	// MaxConsecutiveFailures opens the breaker; zero means 3.
	MaxConsecutiveFailures uint32
	// Cooldown is how long the breaker stays open; zero means 5s.
	Cooldown time.Duration
}

// TerminalSink writes rendered frames and status lines to a terminal.
type TerminalSink struct {
	out     io.Writer
	opts    SinkOptions
	breaker *gobreaker.CircuitBreaker
	logger  *logging.Logger
	status  lipgloss.Style
}

// NewTerminalSink creates a sink writing to out.
func NewTerminalSink(out io.Writer, opts SinkOptions, logger *logging.Logger) *TerminalSink {
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.MaxConsecutiveFailures == 0 {
		opts.MaxConsecutiveFailures = 3
	}
	if opts.Cooldown == 0 {
		opts.Cooldown = 5 * time.Second
	}

	settings := gobreaker.Settings{
		Name:    "terminal-sink",
		Timeout: opts.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "sink breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &TerminalSink{
		out:     out,
		opts:    opts,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
		status:  lipgloss.NewRenderer(out).NewStyle().Bold(true),
	}
}

// Present writes one frame, clearing the screen first when configured.
func (s *TerminalSink) Present(ctx context.Context, frame []string) error {
	var b strings.Builder
	if s.opts.ClearScreen {
		b.WriteString(clearScreen)
	}
	for _, line := range frame {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return s.write(ctx, b.String())
}

// Separate writes the separator line between frames.
func (s *TerminalSink) Separate(ctx context.Context) error {
	if s.opts.Separator == "" || s.opts.ClearScreen {
		return nil
	}
	return s.write(ctx, s.opts.Separator+"\n")
}

// Status writes a highlighted message line.
func (s *TerminalSink) Status(ctx context.Context, line string) error {
	return s.write(ctx, s.status.Render(line)+"\n")
}

func (s *TerminalSink) write(ctx context.Context, text string) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		_, err := io.WriteString(s.out, text)
		return nil, err
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrSinkTripped, err)
	}
	s.logger.Error(ctx, "terminal write failed", err, "state", s.breaker.State().String())
	return fmt.Errorf("terminal write: %w", err)
}

// State returns the breaker state, for diagnostics.
func (s *TerminalSink) State() gobreaker.State {
	return s.breaker.State()
}
