// Package logger provides the logging interface used across sshfwd.
// Workers tag every message with their rule label, so the supervisor
// output stays readable when many tunnels log concurrently.
package logger

import (
	"fmt"
	"log"
	"os"
)

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// envLogger logs to stderr via the standard log package.
// Debug messages are only printed when SSHFWD_DEBUG is set.
type envLogger struct {
	prefix string
}

// NewEnvLogger creates a logger that respects the SSHFWD_DEBUG environment
// variable. The prefix is prepended to all messages (e.g. "[db:5432]").
func NewEnvLogger(prefix string) Logger {
	return &envLogger{prefix: prefix}
}

func (l *envLogger) Debug(format string, args ...interface{}) {
	if os.Getenv("SSHFWD_DEBUG") != "" {
		log.Printf(l.prefix+" "+format, args...)
	}
}

func (l *envLogger) Info(format string, args ...interface{}) {
	log.Printf(l.prefix+" "+format, args...)
}

func (l *envLogger) Warn(format string, args ...interface{}) {
	log.Printf(l.prefix+" WARN: "+format, args...)
}

func (l *envLogger) Error(format string, args ...interface{}) {
	log.Printf(l.prefix+" ERROR: "+format, args...)
}

// taggedLogger prepends a tag and delegates to a base logger.
type taggedLogger struct {
	base Logger
	tag  string
}

// Tagged returns a logger that prefixes every message with "[tag]" and
// writes through the base logger. A noop base stays silent, which is how
// the dashboard keeps workers off the terminal.
func Tagged(base Logger, tag string) Logger {
	return &taggedLogger{base: base, tag: "[" + tag + "]"}
}

func (l *taggedLogger) Debug(format string, args ...interface{}) {
	l.base.Debug(l.tag+" "+format, args...)
}

func (l *taggedLogger) Info(format string, args ...interface{}) {
	l.base.Info(l.tag+" "+format, args...)
}

func (l *taggedLogger) Warn(format string, args ...interface{}) {
	l.base.Warn(l.tag+" "+format, args...)
}

func (l *taggedLogger) Error(format string, args ...interface{}) {
	l.base.Error(l.tag+" "+format, args...)
}

// noopLogger discards all messages.
type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...interface{}) {}
func (l *noopLogger) Info(format string, args ...interface{})  {}
func (l *noopLogger) Warn(format string, args ...interface{})  {}
func (l *noopLogger) Error(format string, args ...interface{}) {}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for test assertions.
type BufferLogger struct {
	Messages []LogMessage
}

// NewBufferLogger creates a logger that records messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{Messages: make([]LogMessage, 0)}
}

func (l *BufferLogger) Debug(format string, args ...interface{}) { l.append("debug", format, args) }
func (l *BufferLogger) Info(format string, args ...interface{})  { l.append("info", format, args) }
func (l *BufferLogger) Warn(format string, args ...interface{})  { l.append("warn", format, args) }
func (l *BufferLogger) Error(format string, args ...interface{}) { l.append("error", format, args) }

func (l *BufferLogger) append(level, format string, args []interface{}) {
	l.Messages = append(l.Messages, LogMessage{Level: level, Message: fmt.Sprintf(format, args...)})
}

// Contains reports whether any captured message includes the substring.
func (l *BufferLogger) Contains(substr string) bool {
	for _, m := range l.Messages {
		if containsFold(m.Message, substr) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	if len(substr) == 0 {
		return true
	}
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

// defaultLogger is the package-level default.
var defaultLogger = NewEnvLogger("")

// Default returns the default logger for the package.
func Default() Logger {
	return defaultLogger
}

// SetDefault replaces the default logger. Useful in tests.
func SetDefault(l Logger) {
	defaultLogger = l
}
