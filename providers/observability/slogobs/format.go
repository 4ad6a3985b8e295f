package slogobs

import (
	"os"
	"strings"
)

// Format represents the output format for logs.
type Format string

const (
	// FormatCompact is a single line with JSON attributes.
	// Example: 2026-10-19 10:40:35  INFO optimize finished {"duration":"1.2s"}
	FormatCompact Format = "compact"

	// FormatJSON is one JSON object per line.
	// Example: {"time":"2026-10-19T10:40:35Z","level":"INFO","msg":"optimize finished"}
	FormatJSON Format = "json"
)

// ParseFormat maps a format name to a Format. Unknown names yield FormatCompact.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatCompact
	}
}

// FormatFromEnv reads NEXTPRESS_LOG_FORMAT, then LOG_FORMAT.
func FormatFromEnv() Format {
	return ParseFormat(firstEnv("NEXTPRESS_LOG_FORMAT", "LOG_FORMAT"))
}

func (f Format) String() string {
	return string(f)
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}
