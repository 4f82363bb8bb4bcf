// Package logger provides the structured logging contract used across the service.
// Implementations are context aware so trace and request ids can be attached to every entry.
package logger

import (
	"context"
	"strings"
)

// Fields is a set of structured key/value pairs attached to a log entry
type Fields map[string]interface{}

// Logger defines the interface for structured logging
type Logger interface {
	// Debug logs a debug message
	Debug(ctx context.Context, msg string, fields ...Fields)

	// Info logs an informational message
	Info(ctx context.Context, msg string, fields ...Fields)

	// Warn logs a warning message
	Warn(ctx context.Context, msg string, fields ...Fields)

	// Error logs an error message
	Error(ctx context.Context, msg string, err error, fields ...Fields)

	// Fatal logs a fatal message and exits the application
	Fatal(ctx context.Context, msg string, err error, fields ...Fields)

	// WithFields creates a new logger with additional fields
	WithFields(fields Fields) Logger

	// WithComponent creates a new logger tagged with a component name
	WithComponent(component string) Logger
}

// LevelSetter is implemented by loggers whose level can change at runtime
type LevelSetter interface {
	SetLevel(level string) error
}

var sensitiveKeys = []string{
	"password",
	"secret",
	"token",
	"authorization",
	"cookie",
}

// Sanitize masks values whose keys look like credentials
func Sanitize(key string, value interface{}) interface{} {
	k := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return "***REDACTED***"
		}
	}
	return value
}
