package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLogLevel maps a level name to slog.Level. Unknown names mean info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger from the log section. Output goes to
// w, or stdout when w is nil. Source locations are added in development.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     ParseLogLevel(c.Log.Level),
		AddSource: c.IsDevelopment(),
	}

	var handler slog.Handler
	if c.Log.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler).With(slog.String("app", c.App.Name))
}
