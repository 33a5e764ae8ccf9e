// Package logger provides charmbracelet/log loggers for the tagcomplete packages.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New creates a component logger that writes where the global logger does,
// at its current level. Call Setup first.
func New(prefix string) *log.Logger {
	return log.Default().WithPrefix(prefix)
}

// NewWithConfig creates a charm log with custom output and options.
func NewWithConfig(w io.Writer, prefix string, level log.Level, showTimestamp bool, fmt log.Formatter) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportTimestamp: showTimestamp,
		Formatter:       fmt,
	})
}

// Setup configures the global logger. debug selects DebugLevel, otherwise
// only warnings and errors are shown. Output goes to stderr, keeping stdout
// free for the IPC stream; a non-nil w redirects it, which the terminal UI
// uses to keep logs off its screen.
func Setup(debug bool, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	log.SetOutput(w)
	if debug {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}
}
