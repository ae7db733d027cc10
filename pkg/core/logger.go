package core

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// NewLogger returns the stderr logger used by every debpack component.
func NewLogger(debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "debpack",
		Level:  level,
	})
}

// DiscardLogger swallows everything; handy for tests and library callers.
func DiscardLogger() *log.Logger {
	return log.New(io.Discard)
}
