package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger provides leveled logging tagged with the component that emitted it.
type Logger struct {
	zl zerolog.Logger
}

// New builds a JSON logger on stderr. In dev mode output is human readable
// and debug messages are enabled.
func New(dev bool) *Logger {
	return NewWithWriter(os.Stderr, dev)
}

func NewWithWriter(w io.Writer, dev bool) *Logger {
	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}

	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()

	if dev {
		zl = zl.Output(zerolog.ConsoleWriter{Out: w, FormatTimestamp: formatTimestamp})
	}

	return &Logger{zl: zl}
}

// formatTimestamp renders the event's own time field in the console layout.
func formatTimestamp(i any) string {
	s, ok := i.(string)
	if !ok {
		return fmt.Sprint(i)
	}
	ts, err := time.Parse(zerolog.TimeFieldFormat, s)
	if err != nil {
		return s
	}
	return ts.Format("2006-01-02 15:04:05")
}

// Nop discards everything. Used by tests and dry runs.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// Zerolog exposes the underlying logger for libraries that take one directly.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}

// SetLogLevel sets the minimum log level
func (l *Logger) SetLogLevel(level zerolog.Level) {
	l.zl = l.zl.Level(level)
}

func (l *Logger) log(ev *zerolog.Event, component, message string, args ...any) {
	if component != "" {
		ev = ev.Str("component", component)
	}
	ev.Msg(fmt.Sprintf(message, args...))
}

// Debug logs a debug message
func (l *Logger) Debug(component, message string, args ...any) {
	l.log(l.zl.Debug(), component, message, args...)
}

// Info logs an info message
func (l *Logger) Info(component, message string, args ...any) {
	l.log(l.zl.Info(), component, message, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(component, message string, args ...any) {
	l.log(l.zl.Warn(), component, message, args...)
}

// Error logs an error message
func (l *Logger) Error(component, message string, args ...any) {
	l.log(l.zl.Error(), component, message, args...)
}

// Fatal logs an error message and exits
func (l *Logger) Fatal(component, message string, args ...any) {
	l.log(l.zl.Error(), component, message, args...)
	os.Exit(1)
}
