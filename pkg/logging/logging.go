// Package logging provides the leveled logger used across postalkit.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Level represents the logging level.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string log level.
func ParseLevel(level string) (Level, error) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("invalid log level: %s", level)
	}
}

// Logger is a minimal leveled logger with a pluggable output.
type Logger struct {
	mu     sync.Mutex
	level  Level
	output io.Writer
	prefix string
}

// New creates a logger writing to output at the given level.
func New(level Level, output io.Writer) *Logger {
	return &Logger{level: level, output: output}
}

// Default returns a logger writing to stderr at INFO.
func Default() *Logger {
	return New(INFO, os.Stderr)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return New(ERROR+1, io.Discard)
}

// WithPrefix returns a logger that prepends a component prefix to messages.
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{level: l.level, output: l.output, prefix: prefix}
}

// SetLevel changes the minimum level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	message := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		fmt.Fprintf(l.output, "[%s] %s: %s\n", level, l.prefix, message)
		return
	}
	fmt.Fprintf(l.output, "[%s] %s\n", level, message)
}
