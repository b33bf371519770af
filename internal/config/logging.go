package config

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/jonathan/job-assistant/internal/apperr"
)

// ParseLogLevel maps a level name to a slog level. WARNING and CRITICAL are accepted
// as aliases for WARN and ERROR.
func ParseLogLevel(level string) (slog.Level, error) {
	switch level {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR", "CRITICAL":
		return slog.LevelError, nil
	default:
		return 0, &apperr.ConfigurationError{Message: fmt.Sprintf("unknown LOG_LEVEL: %q", level)}
	}
}

// NewLogger returns a structured logger writing to w in the configured format.
func (s *Settings) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := ParseLogLevel(s.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level, AddSource: s.Debug && level == slog.LevelDebug}

	var handler slog.Handler
	switch s.LogFormat {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text", "":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, &apperr.ConfigurationError{Message: fmt.Sprintf("LOG_FORMAT must be text or json, got: %q", s.LogFormat)}
	}

	return slog.New(handler).With("app", s.AppName, "version", s.AppVersion), nil
}
