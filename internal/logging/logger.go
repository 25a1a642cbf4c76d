// Package logging provides structured logging for the directory core.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Level represents the logging level.
type Level int

const (
	// LevelDebug is the most verbose level.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel parses a string into a Level.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Format represents the log output format.
type Format int

const (
	// FormatText outputs logs in human-readable text format.
	FormatText Format = iota
	// FormatJSON outputs logs in JSON format.
	FormatJSON
)

// ParseFormat parses a string into a Format.
func ParseFormat(s string) Format {
	switch s {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return FormatText
	}
}

// Logger is the interface for structured logging. It mirrors the shape
// of *slog.Logger closely enough that WithFields/WithRequestID compose
// the same way slog's With does, while keeping call sites independent
// of the concrete handler in use.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, keysAndValues ...interface{})
	// Info logs an info message with optional key-value pairs.
	Info(msg string, keysAndValues ...interface{})
	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, keysAndValues ...interface{})
	// Error logs an error message with optional key-value pairs.
	Error(msg string, keysAndValues ...interface{})
	// WithRequestID returns a new logger with the given request ID.
	WithRequestID(requestID string) Logger
	// WithFields returns a new logger with the given fields.
	WithFields(keysAndValues ...interface{}) Logger
	// Slog returns the underlying *slog.Logger, for call sites that
	// need to pass a Logger into a library that expects one directly
	// (e.g. an http.Server's ErrorLog bridge, or acl.NewManager).
	Slog() *slog.Logger
}

// logger is the default implementation of Logger, backed by log/slog.
type logger struct {
	base *slog.Logger
}

// Config holds the logger configuration.
type Config struct {
	Level  string
	Format string
	Output string
}

// New creates a new Logger with the given configuration.
func New(cfg Config) Logger {
	var output io.Writer
	switch cfg.Output {
	case "", "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			output = os.Stdout
		} else {
			output = f
		}
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level).slogLevel()}
	var handler slog.Handler
	if ParseFormat(cfg.Format) == FormatJSON {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	return &logger{base: slog.New(handler)}
}

// NewDefault creates a new Logger with default settings.
func NewDefault() Logger {
	return &logger{base: slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))}
}

// NewNop creates a no-op logger that discards all output.
func NewNop() Logger {
	return &logger{base: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// FromSlog wraps an existing *slog.Logger, so a component that already
// holds one (e.g. built via slog.Default(), or handed down from a
// caller) can satisfy Logger without reconstructing its handler.
func FromSlog(base *slog.Logger) Logger {
	if base == nil {
		base = slog.Default()
	}
	return &logger{base: base}
}

func (l *logger) Debug(msg string, keysAndValues ...interface{}) {
	l.base.Log(context.Background(), slog.LevelDebug, msg, keysAndValues...)
}

func (l *logger) Info(msg string, keysAndValues ...interface{}) {
	l.base.Log(context.Background(), slog.LevelInfo, msg, keysAndValues...)
}

func (l *logger) Warn(msg string, keysAndValues ...interface{}) {
	l.base.Log(context.Background(), slog.LevelWarn, msg, keysAndValues...)
}

func (l *logger) Error(msg string, keysAndValues ...interface{}) {
	l.base.Log(context.Background(), slog.LevelError, msg, keysAndValues...)
}

// WithRequestID returns a new logger with the given request ID attached
// as a structured field on every subsequent record.
func (l *logger) WithRequestID(requestID string) Logger {
	return &logger{base: l.base.With("request_id", requestID)}
}

// WithFields returns a new logger with the given fields attached.
func (l *logger) WithFields(keysAndValues ...interface{}) Logger {
	return &logger{base: l.base.With(keysAndValues...)}
}

func (l *logger) Slog() *slog.Logger { return l.base }
