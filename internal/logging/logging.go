// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var level = new(slog.LevelVar)

// Configure installs a text handler on w as the default slog logger and
// returns it. The level comes from MODLENS_LOG_LEVEL (DEBUG, INFO, WARN,
// ERROR); verbose forces DEBUG.
func Configure(w io.Writer, verbose bool) *slog.Logger {
	level.Set(ParseLevel(os.Getenv("MODLENS_LOG_LEVEL")))
	if verbose {
		level.Set(slog.LevelDebug)
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a level name to a slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLevel changes the level of the logger built by Configure.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
