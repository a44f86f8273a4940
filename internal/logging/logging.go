// Package logging builds the process logger. Diagnostics go to stderr so
// result streams on stdout stay machine-readable.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Options selects the handler and level.
type Options struct {
	Verbose bool
	JSON    bool
}

// New returns a logger writing to w (stderr when nil). Verbose enables debug
// records; otherwise only warnings and errors are shown.
func New(w io.Writer, opts Options) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}
