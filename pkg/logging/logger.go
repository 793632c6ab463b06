// Package logging provides structured logging for the flight simulator.
// It wraps Go's standard slog package so every component logs the same way,
// tagging entries with the flight ID carried in the context.
package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelEnvVar names the environment variable that selects the log level.
const LevelEnvVar = "TSP_LOG_LEVEL"

// Logger wraps slog.Logger with flight-aware helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger writing JSON to stderr, leaving stdout to the
// rendered frames. The level comes from TSP_LOG_LEVEL and defaults to INFO.
func NewLogger() *Logger {
	return NewLoggerTo(os.Stderr)
}

// NewLoggerTo creates a Logger writing JSON entries to w.
func NewLoggerTo(w io.Writer) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: getLogLevelFromEnv()})
	return &Logger{slog.New(handler)}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return &Logger{slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// LogWithContext logs msg, appending the flight ID from ctx when present.
func (l *Logger) LogWithContext(ctx context.Context, level slog.Level, msg string, args ...any) {
	if flightID := GetFlightID(ctx); flightID != "" {
		args = append(args, "flight_id", flightID)
	}
	l.Log(ctx, level, msg, args...)
}

// Info logs an informational message.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelWarn, msg, args...)
}

// Error logs an error message with the error text attached.
func (l *Logger) Error(ctx context.Context, msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	l.LogWithContext(ctx, slog.LevelError, msg, args...)
}

// Debug logs a debug message.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelDebug, msg, args...)
}

type flightIDKey struct{}

// WithFlightID stores a flight ID in the context, generating one when empty.
func WithFlightID(ctx context.Context, flightID string) context.Context {
	if flightID == "" {
		flightID = GenerateFlightID()
	}
	return context.WithValue(ctx, flightIDKey{}, flightID)
}

// GetFlightID returns the flight ID in ctx, or "" if there is none.
func GetFlightID(ctx context.Context) string {
	if id, ok := ctx.Value(flightIDKey{}).(string); ok {
		return id
	}
	return ""
}

// GenerateFlightID creates a random 16 hex character flight ID.
func GenerateFlightID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func getLogLevelFromEnv() slog.Level {
	switch strings.ToUpper(os.Getenv(LevelEnvVar)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WrapError wraps err with a (optionally formatted) context message.
func WrapError(err error, context string, args ...any) error {
	if err == nil {
		return nil
	}
	if len(args) > 0 {
		context = fmt.Sprintf(context, args...)
	}
	return fmt.Errorf("%s: %w", context, err)
}
