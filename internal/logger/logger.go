// Package logger wraps zerolog for CLI and service diagnostics.
package logger

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger with application-specific helpers.
type Logger struct {
	zerolog.Logger
}

// New creates a Logger writing to w. format is "console" (or "text") for
// human-readable output, anything else for JSON lines. An unparseable level
// falls back to info.
func New(level, format string, w io.Writer) *Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	var zl zerolog.Logger
	if format == "console" || format == "text" {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
	} else {
		zl = zerolog.New(w)
	}

	return &Logger{Logger: zl.Level(lvl).With().Timestamp().Logger()}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// WithComponent returns a new logger with the component name attached.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.With().Str("component", component).Logger()}
}

// WithAccount returns a new logger with the account number attached.
func (l *Logger) WithAccount(accountNumber string) *Logger {
	return &Logger{Logger: l.With().Str("account", accountNumber).Logger()}
}
