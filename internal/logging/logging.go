// Package logging builds the process-wide structured logger: one JSON object
// per line, timestamps under "ts" in the configured location.
package logging

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// New returns a JSON slog.Logger writing to w at the given level name.
func New(w io.Writer, level string, loc *time.Location) *slog.Logger {
	if loc == nil {
		loc = time.UTC
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.String("ts", a.Value.Time().In(loc).Format(time.RFC3339Nano))
			}
			return a
		},
	})
	return slog.New(h)
}

// ParseLevel maps debug/info/warn/error to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// LoadLocation resolves a timezone name, falling back to UTC.
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
