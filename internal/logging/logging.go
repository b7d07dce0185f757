package logging

import (
	"io"
	"log/slog"
)

// LogFormat defines the logger output format.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// LevelCritical sits above slog.LevelError and maps the CRITICAL setting.
const LevelCritical = slog.LevelError + 4

// ParseLevel maps a configured level name to a slog.Level. Unknown names
// fall back to INFO; the flag layer restricts the accepted names.
func ParseLevel(name string) slog.Level {
	switch name {
	case "DEBUG":
		return slog.LevelDebug
	case "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	case "CRITICAL":
		return LevelCritical
	default:
		return slog.LevelInfo
	}
}

// SetupLogger configures a slog.Logger writing to w in the given format
// and installs it as the process default.
func SetupLogger(format LogFormat, level slog.Level, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case LogFormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}
