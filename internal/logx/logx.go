// Package logx builds the structured stderr logger shared by the CLIs.
package logx

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options selects the logger level and format.
type Options struct {
	// Level is a zerolog level name ("debug", "info", "warn", "error", "disabled").
	Level string
	// Debug forces debug level; Quiet forces error level. Debug wins.
	Debug bool
	Quiet bool
	// Console renders human friendly lines instead of JSON.
	Console bool
}

// New returns a logger writing to w. Unknown level names are an error so a
// typo in -log-level does not silently hide output.
func New(w io.Writer, opts Options) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if s := strings.TrimSpace(opts.Level); s != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(s))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q", opts.Level)
		}
		level = l
	}
	if opts.Quiet {
		level = zerolog.ErrorLevel
	}
	if opts.Debug {
		level = zerolog.DebugLevel
	}
	if opts.Console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
