// Package log defines the leveled logging interface shared by every package
// in this module. Packages hold a package-level Logger defaulting to
// Disabled; callers wire a concrete implementation with UseLogger.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level describes the severity of a log record, lowest to highest.
type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelOff
)

// String returns the short, upper-cased level name used in log lines.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRC"
	case LevelDebug:
		return "DBG"
	case LevelInfo:
		return "INF"
	case LevelWarn:
		return "WRN"
	case LevelError:
		return "ERR"
	case LevelCritical:
		return "CRT"
	default:
		return "OFF"
	}
}

// LevelFromString parses a case-insensitive level name, defaulting to
// LevelInfo for unrecognized values.
func LevelFromString(s string) Level {
	switch strings.ToLower(s) {
	case "trace", "TRACE":
		return LevelTrace
	case "debug", "DEBUG":
		return LevelDebug
	case "info", "INFO":
		return LevelInfo
	case "warn", "WARN":
		return LevelWarn
	case "error", "ERROR":
		return LevelError
	case "critical", "CRITICAL":
		return LevelCritical
	case "off", "OFF":
		return LevelOff
	default:
		return LevelInfo
	}
}

// Logger is the interface every package depends on for its package-level
// `log` variable. Implementations need not be safe for the zero value; use
// Disabled or a Backend's Subsystem.
type Logger interface {
	Tracef(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Criticalf(format string, args ...interface{})
	Level() Level
	SetLevel(level Level)
}

// Disabled is a no-op Logger. It is the default for every package until
// UseLogger is called with a concrete implementation.
var Disabled Logger = &disabled{}

type disabled struct{}

func (disabled) Tracef(string, ...interface{})    {}
func (disabled) Debugf(string, ...interface{})    {}
func (disabled) Infof(string, ...interface{})     {}
func (disabled) Warnf(string, ...interface{})     {}
func (disabled) Errorf(string, ...interface{})    {}
func (disabled) Criticalf(string, ...interface{}) {}
func (disabled) Level() Level                     { return LevelOff }
func (disabled) SetLevel(Level)                   {}

// Backend writes leveled, tagged lines to an underlying writer. Multiple
// package-scoped Logger values can share one Backend via Subsystem.
type Backend struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewBackend creates a shared backend writing to w.
func NewBackend(w io.Writer) *Backend {
	return &Backend{w: w, now: time.Now}
}

// Subsystem returns a Logger tagged with the given subsystem name (e.g.
// "BLKC", "MEMP", "MINR"), writing through the shared backend.
func (b *Backend) Subsystem(tag string) Logger {
	return &subLogger{backend: b, tag: tag, level: LevelInfo}
}

type subLogger struct {
	backend *Backend
	tag     string
	level   Level
}

func (s *subLogger) Level() Level        { return s.level }
func (s *subLogger) SetLevel(l Level)    { s.level = l }

func (s *subLogger) write(lvl Level, format string, args ...interface{}) {
	if lvl < s.level {
		return
	}
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	ts := b.now().Format("2006-01-02 15:04:05.000")
	fmt.Fprintf(b.w, "%s [%s] %s %s\n", ts, lvl, s.tag, fmt.Sprintf(format, args...))
}

func (s *subLogger) Tracef(format string, args ...interface{})    { s.write(LevelTrace, format, args...) }
func (s *subLogger) Debugf(format string, args ...interface{})    { s.write(LevelDebug, format, args...) }
func (s *subLogger) Infof(format string, args ...interface{})     { s.write(LevelInfo, format, args...) }
func (s *subLogger) Warnf(format string, args ...interface{})     { s.write(LevelWarn, format, args...) }
func (s *subLogger) Errorf(format string, args ...interface{})    { s.write(LevelError, format, args...) }
func (s *subLogger) Criticalf(format string, args ...interface{}) { s.write(LevelCritical, format, args...) }

// NewDefaultBackend returns a backend writing to stderr, the typical choice
// for cmd/coinnoded before a rotating file sink is wired up.
func NewDefaultBackend() *Backend {
	return NewBackend(os.Stderr)
}
