// Package observability wires structured logging and Prometheus metrics.
package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogOptions configures the process logger
type LogOptions struct {
	Format  string // "console" or "json"; empty picks console on a terminal
	Verbose bool
	Out     io.Writer
}

// NewLogger returns a zerolog Logger. Console output is human-friendly and
// goes to stderr so stdout stays clean for command output.
func NewLogger(opts LogOptions) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	level := zerolog.WarnLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	var l zerolog.Logger
	if useConsole(opts.Format, out) {
		l = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	} else {
		l = zerolog.New(out).With().Timestamp().Logger()
	}
	return l.Level(level)
}

// SetupLogger builds the logger and installs it as the global logger
func SetupLogger(opts LogOptions) zerolog.Logger {
	l := NewLogger(opts)
	log.Logger = l
	return l
}

func useConsole(format string, out io.Writer) bool {
	switch strings.ToLower(format) {
	case "json":
		return false
	case "console", "text", "dev":
		return true
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
