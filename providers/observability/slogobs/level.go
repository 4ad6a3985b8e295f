package slogobs

import (
	"fmt"
	"log/slog"
	"strings"
)

// ParseLevel parses DEBUG, INFO, WARN (or WARNING) and ERROR, case-insensitively.
// An empty string is INFO.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// LevelFromEnv reads NEXTPRESS_LOG_LEVEL, then LOG_LEVEL. Unknown values
// fall back to INFO.
func LevelFromEnv() slog.Level {
	level, _ := ParseLevel(firstEnv("NEXTPRESS_LOG_LEVEL", "LOG_LEVEL"))
	return level
}

// levelString returns the fixed-width-friendly name of level.
func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}
