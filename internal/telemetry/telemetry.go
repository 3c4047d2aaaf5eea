// Package telemetry is a thin leveled wrapper over log.Logger. No pack
// repo reaches for a structured-logging library — the teacher and its
// siblings log with plain fmt/log calls — so this module does the same
// rather than introducing a dependency the corpus never uses.
package telemetry

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Level selects which messages a Logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger wraps a standard log.Logger with a minimum level filter.
type Logger struct {
	out *log.Logger
	min Level
}

// New builds a Logger writing to w at or above min.
func New(w io.Writer, min Level) *Logger {
	return &Logger{out: log.New(w, "", log.LstdFlags), min: min}
}

// Default returns a Logger writing to stderr at LevelInfo, the level a
// process-initialization path (license check, session open) logs at when
// the caller hasn't configured anything more specific.
func Default() *Logger {
	return New(os.Stderr, LevelInfo)
}

func (l *Logger) log(level Level, format string, args ...any) {
	if level < l.min {
		return
	}
	l.out.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...any) { l.log(LevelError, format, args...) }
