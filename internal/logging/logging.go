// Package logging provides shared logger construction for all ghostwriter
// subsystems. Each subsystem gets a prefixed logger so stream, cache, and
// request activity can be told apart in interleaved output.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// New creates a logger with the given subsystem prefix at the global level.
func New(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: false,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}

// SetLevel sets the global log level from a config string.
// Unrecognized names fall back to info.
func SetLevel(level string) {
	switch level {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}
