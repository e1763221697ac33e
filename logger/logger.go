// Package logger defines the structured logging interface used across go-maestro
// and a default implementation built on log/slog.
//
// Controllers, transports and servos accept a Logger through their options so
// applications can route driver output into their own logging stack. Messages
// carry key/value pairs:
//
//	l.Info("maestro: connection opened", "port", "/dev/ttyACM0", "baudRate", 9600)
//
// Levels, from most to least verbose:
//
//   - DebugLevel: individual frames and responses, hex encoded.
//   - InfoLevel: connection lifecycle.
//   - WarnLevel: failed operations that are reported to the caller.
//   - ErrorLevel: failures nobody else will see.
package logger

import (
	"fmt"
	"strings"
)

// Level is a logging severity.
type Level int8

const (
	DebugLevel Level = iota - 1
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the lower-case level name.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int8(l))
	}
}

// ParseLevel converts a level name such as "debug" or "WARN" into a Level.
// An empty string yields InfoLevel.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "", "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("logger: unknown level %q", s)
	}
}

// Logger is the logging interface consumed by go-maestro packages.
type Logger interface {
	// Debug logs at DebugLevel.
	Debug(msg string, keysAndValues ...any)
	// Info logs at InfoLevel.
	Info(msg string, keysAndValues ...any)
	// Warn logs at WarnLevel.
	Warn(msg string, keysAndValues ...any)
	// Error logs at ErrorLevel.
	Error(msg string, keysAndValues ...any)
	// With returns a child logger that adds keyValues to every record.
	// The parent is not modified.
	With(keyValues ...any) Logger
	// Level returns the minimum enabled level.
	Level() Level
	// SetLevel changes the minimum enabled level. Child loggers created by
	// With share the level with their parent.
	SetLevel(level Level)
}
