// internal/logging/logging.go

package logging

import (
	"io"
	"log/slog"
	"strings"
)

// New builds a logger for the given level and format.
// Formats: "pretty" (default), "json" and "text".
func New(level, format string, w io.Writer) *slog.Logger {
	opts := slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		handler = slog.NewJSONHandler(w, &opts)
	case "text":
		handler = slog.NewTextHandler(w, &opts)
	default:
		handler = NewPrettyHandler(w, PrettyHandlerOptions{SlogOpts: opts})
	}

	return slog.New(handler)
}

// ParseLevel maps a level name to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
