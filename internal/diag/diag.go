// Package diag provides the diagnostic sink used for recoverable simulation
// errors. Warnings and errors are logged through charmbracelet/log and counted,
// so a session can end a game whose diagnostics run away.
package diag

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Sink logs diagnostics and counts the ones that matter for the warning ceiling.
// Info and Debug messages are logged but not counted.
type Sink struct {
	logger *log.Logger
	count  int
}

// New creates a sink writing to stderr with the given prefix.
func New(prefix string) *Sink {
	return NewWithLogger(log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	}))
}

// NewWithLogger wraps an existing logger.
func NewWithLogger(logger *log.Logger) *Sink {
	return &Sink{logger: logger}
}

// Discard returns a sink that drops all output but still counts.
func Discard() *Sink {
	return NewWithLogger(log.New(io.Discard))
}

// Logger exposes the underlying logger for callers that need sub-loggers.
func (s *Sink) Logger() *log.Logger {
	return s.logger
}

// Warn logs a recoverable condition and increments the counter.
func (s *Sink) Warn(msg string, keyvals ...any) {
	s.count++
	s.logger.Warn(msg, keyvals...)
}

// Error logs an error and increments the counter.
func (s *Sink) Error(msg string, keyvals ...any) {
	s.count++
	s.logger.Error(msg, keyvals...)
}

// Info logs without counting.
func (s *Sink) Info(msg string, keyvals ...any) {
	s.logger.Info(msg, keyvals...)
}

// Debug logs without counting.
func (s *Sink) Debug(msg string, keyvals ...any) {
	s.logger.Debug(msg, keyvals...)
}

// Count returns the number of warnings and errors since the last Reset.
func (s *Sink) Count() int {
	return s.count
}

// Reset clears the counter.
func (s *Sink) Reset() {
	s.count = 0
}

// ParseLevel maps a level name to a log level, defaulting to info.
func ParseLevel(name string) log.Level {
	lvl, err := log.ParseLevel(name)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
