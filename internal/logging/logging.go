// Package logging provides the structured logger shared by every component
// of the debugging-control daemon. It replaces the ad hoc text logger the
// session-tracking tooling this project grew out of used to carry, in favor
// of a real structured logger so app.log is machine-parseable JSON.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog.Logger with the component-tagging convention used
// throughout the daemon: every subsystem gets its own named logger sharing
// one underlying set of writers.
type Logger struct {
	zl zerolog.Logger
}

// Config controls where log output goes and how verbose it is.
type Config struct {
	Level      string // debug|info|warn|error
	AppLogPath string // file receiving one JSON line per event; empty disables file output
	Console    bool   // also write a human-readable stream to stderr
}

// New builds the root Logger for the process. Component loggers are derived
// from it with Component() and WithSession().
func New(cfg Config) (*Logger, func() error, error) {
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	var writers []io.Writer
	closer := func() error { return nil }

	if cfg.AppLogPath != "" {
		f, err := os.OpenFile(cfg.AppLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, f)
		closer = f.Close
	}
	if cfg.Console || len(writers) == 0 {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	var out io.Writer
	if len(writers) == 1 {
		out = writers[0]
	} else {
		out = zerolog.MultiLevelWriter(writers...)
	}

	zl := zerolog.New(out).With().Timestamp().Logger().Level(level)
	return &Logger{zl: zl}, closer, nil
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Component returns a child logger tagged with the given subsystem name,
// e.g. logger.Component("session").
func (l *Logger) Component(name string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", name).Logger()}
}

// WithSession returns a child logger additionally tagged with a session id,
// the field every session-scoped log line carries.
func (l *Logger) WithSession(sessionID string) *Logger {
	return &Logger{zl: l.zl.With().Str("sessionId", sessionID).Logger()}
}

func (l *Logger) Debug(msg string, fields map[string]interface{}) { l.log(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields map[string]interface{})  { l.log(l.zl.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields map[string]interface{})  { l.log(l.zl.Warn(), msg, fields) }

// Error logs a failure, attaching err under the "error" field when present.
func (l *Logger) Error(msg string, err error, fields map[string]interface{}) {
	ev := l.zl.Error()
	if err != nil {
		ev = ev.Err(err)
	}
	l.log(ev, msg, fields)
}

func (l *Logger) log(ev *zerolog.Event, msg string, fields map[string]interface{}) {
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}
