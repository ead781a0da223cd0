// ============================================================================
// vozinv - Spanish voice inventory
// ============================================================================
//
// Package:     logging
// Description: Factory functions for service and component loggers
// Author:      vozinv maintainers
// Created:     2026-03-02
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"

	mdwlog "github.com/vozinv/vozinv/foundation/core/log"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Service or component name
	ServiceName string

	// Log level (trace, debug, info, warn, error)
	Level string

	// Output format: json, text, console or logfmt (default: json)
	Format string

	// Output defaults to stderr so stdout stays free for command output
	Output io.Writer

	// Additional outputs written alongside Output
	AdditionalOutputs []io.Writer

	// EnableCaller adds file:line to every entry
	EnableCaller bool
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "info",
		Format:      "json",
	}
}

// callerSkip is the number of wrapper frames above the foundation logger
func newFoundationLogger(cfg LoggerConfig, callerSkip int) *mdwlog.Logger {
	level, err := mdwlog.ParseLevel(cfg.Level)
	if err != nil {
		level = mdwlog.LevelInfo
	}
	format, err := mdwlog.ParseFormat(cfg.Format)
	if err != nil {
		format = mdwlog.FormatJSON
	}

	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}
	if len(cfg.AdditionalOutputs) > 0 {
		writers := append([]io.Writer{output}, cfg.AdditionalOutputs...)
		output = io.MultiWriter(writers...)
	}

	return mdwlog.NewWithConfig(mdwlog.Config{
		Level:            level,
		Format:           format,
		Output:           output,
		Name:             cfg.ServiceName,
		EnableCaller:     cfg.EnableCaller,
		CallerSkipFrames: callerSkip,
	})
}

// Logger wraps the foundation logger with key/value methods
type Logger struct {
	*mdwlog.Logger
	name string
}

// New creates a component logger with the default configuration
func New(name string) *Logger {
	return NewWithConfig(DefaultLoggerConfig(name))
}

// NewWithConfig creates a key/value logger from cfg
func NewWithConfig(cfg LoggerConfig) *Logger {
	return &Logger{
		Logger: newFoundationLogger(cfg, 1),
		name:   cfg.ServiceName,
	}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return NewWithConfig(LoggerConfig{ServiceName: "discard", Level: "fatal", Output: io.Discard})
}

// WithLevel returns a copy of the logger that logs at level
func (l *Logger) WithLevel(level Level) *Logger {
	return &Logger{Logger: l.Logger.WithLevel(level.foundation()), name: l.name}
}

// Named returns a child logger called parent.name
func (l *Logger) Named(name string) *Logger {
	full := name
	if l.name != "" {
		full = l.name + "." + name
	}
	return &Logger{Logger: l.Logger.WithName(full), name: full}
}

// With returns a logger that adds the key/value pairs to every entry
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{Logger: l.Logger.WithFields(toFields(keysAndValues...)), name: l.name}
}

// WithRequestID returns a logger tagged with a request ID
func (l *Logger) WithRequestID(id string) *Logger {
	return &Logger{Logger: l.Logger.WithRequestID(id), name: l.name}
}

// Debug logs a debug message with key-value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug(msg, toFields(keysAndValues...))
}

// Info logs an info message with key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Info(msg, toFields(keysAndValues...))
}

// Warn logs a warning message with key-value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.Logger.Warn(msg, toFields(keysAndValues...))
}

// Error logs an error message with key-value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.Logger.Error(msg, toFields(keysAndValues...))
}

// toFields converts key-value pairs to mdwlog.Fields.
// Non-string keys and a trailing key without value are dropped.
func toFields(keysAndValues ...interface{}) mdwlog.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}

	fields := make(mdwlog.Fields)
	for i := 0; i < len(keysAndValues)-1; i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
