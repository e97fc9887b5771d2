// Package logging configures the process-wide slog logger for an
// evaluation run. Logs always go to stderr so the NDJSON results stream
// owns stdout.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs the default logger. resultsDest is the report
// destination from the configuration: when it names standard output the
// handler is JSON, keeping log lines machine-separable from the NDJSON
// records sharing the terminal; a file destination gets a human-readable
// text handler.
func Setup(resultsDest, level string) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var h slog.Handler
	if StdoutResults(resultsDest) {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// StdoutResults reports whether a report destination names standard
// output rather than a file.
func StdoutResults(dest string) bool {
	return dest == "stdout" || dest == "-"
}

// ParseLevel converts a configuration string ("debug", "info", "warn",
// "error") to slog.Level. Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
