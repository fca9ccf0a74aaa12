// Package logger builds the charmbracelet/log loggers used across otot.
package logger

import (
	"os"

	"github.com/charmbracelet/log"
)

// New creates a logger with the given prefix at the process-wide level.
// Output goes to stderr so it never mixes with command results on stdout.
func New(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          prefix,
		ReportTimestamp: false,
		Level:           log.GetLevel(),
	})
}

// SetVerbose switches the process-wide level to debug.
func SetVerbose(verbose bool) {
	if verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}
}
