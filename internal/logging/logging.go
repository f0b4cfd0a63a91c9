// Package logging builds the leveled console logger shared by commands,
// the task store, and the backends.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// Prefix is printed before every log line.
const Prefix = "livetask"

// Options holds configuration for console logging.
type Options struct {
	Debug           bool
	ReportTimestamp bool
}

// New creates a logger writing human-readable lines to w.
// Debug enables debug level; otherwise only warnings and errors are shown.
func New(w io.Writer, opts Options) *log.Logger {
	level := log.WarnLevel
	if opts.Debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       log.TextFormatter,
		ReportTimestamp: opts.ReportTimestamp,
		Prefix:          Prefix,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
