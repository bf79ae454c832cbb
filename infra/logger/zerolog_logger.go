package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts rs/zerolog to the core logging interface. Every line
// carries the component that emitted it, so a run's planner, engine and sink
// output can be told apart downstream.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger builds a logger for the component, writing JSON to stdout.
// With APP_ENV=dev it switches to the human-readable console format instead.
func NewZerologLogger(component string) Logger {
	console := strings.ToLower(os.Getenv("APP_ENV")) == "dev"
	return newZerolog(component, os.Stdout, console)
}

// NewZerologLoggerWithWriter is NewZerologLogger writing JSON to w. Tests use
// it to capture output.
func NewZerologLoggerWithWriter(component string, w io.Writer) Logger {
	return newZerolog(component, w, false)
}

func newZerolog(component string, out io.Writer, console bool) Logger {
	if console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	z := zerolog.New(out).With().
		Timestamp().
		Str("component", component).
		Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

// Debugw attaches structured fields, used for per-hour allocation traces
// where format strings would be unreadable.
func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
