package internal

import (
	"log"
	"os"
)

// Logger is the scheduler's structured-logging surface: a minimal
// interface over the standard library's log.Logger. See DESIGN.md for why
// no third-party logging library is wired in here.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Errorf(string, ...any) {}

// NoopLogger discards everything; it is the Scheduler default.
var NoopLogger Logger = noopLogger{}

// stdLogger adapts the standard library's log.Logger to Logger.
type stdLogger struct {
	l *log.Logger
}

// NewStdLogger wraps a standard library logger writing to stderr, prefixed
// per level.
func NewStdLogger(prefix string) Logger {
	return &stdLogger{l: log.New(os.Stderr, prefix, log.LstdFlags)}
}

func (s *stdLogger) Debugf(format string, args ...any) { s.l.Printf("DEBUG "+format, args...) }
func (s *stdLogger) Infof(format string, args ...any)  { s.l.Printf("INFO "+format, args...) }
func (s *stdLogger) Errorf(format string, args ...any) { s.l.Printf("ERROR "+format, args...) }
