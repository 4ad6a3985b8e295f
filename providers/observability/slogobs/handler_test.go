package slogobs

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompactFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithOutput(&buf), WithFormat(FormatCompact), WithLevel(slog.LevelInfo))

	logger.Info("optimize finished", "status", "ok", "duration", 1500*time.Millisecond)

	line := buf.String()
	assert.True(t, strings.HasSuffix(line, "\n"))
	assert.Contains(t, line, " INFO optimize finished ")
	assert.Contains(t, line, `"status":"ok"`)
	assert.Contains(t, line, `"duration":"1.5s"`)
	assert.NotContains(t, line, "\033[")
}

func TestCompactFormatWithColors(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithOutput(&buf), WithFormat(FormatCompact), WithColors(true))

	logger.Error("boom")

	assert.Contains(t, buf.String(), colorRed)
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithOutput(&buf), WithFormat(FormatJSON), WithLevel(slog.LevelDebug))

	logger.Debug("calling model", "model", "gemini-2.0-flash", "err", errors.New("nope"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "DEBUG", record["level"])
	assert.Equal(t, "calling model", record["msg"])
	assert.Equal(t, "gemini-2.0-flash", record["model"])
	assert.Equal(t, "nope", record["err"])
	assert.NotEmpty(t, record["time"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithOutput(&buf), WithLevel(slog.LevelWarn))

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithOutput(&buf), WithFormat(FormatJSON)).
		With("request_id", "abc").
		WithGroup("llm").
		With("provider", "openai")

	logger.Info("sent", slog.Group("usage", "total", 42))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "abc", record["request_id"])
	assert.Equal(t, "openai", record["llm.provider"])
	assert.Equal(t, 42.0, record["llm.usage.total"])
}

func TestDerivedLoggersDoNotShareAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := New(WithOutput(&buf), WithFormat(FormatJSON))
	base.With("a", 1).Info("first")
	buf.Reset()

	base.Info("second")

	assert.NotContains(t, buf.String(), `"a"`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{" INFO ", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"Error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("NEXTPRESS_LOG_LEVEL", "")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("NEXTPRESS_LOG_FORMAT", "json")
	t.Setenv("LOG_FORMAT", "compact")

	assert.Equal(t, slog.LevelDebug, LevelFromEnv())
	assert.Equal(t, FormatJSON, FormatFromEnv())
}

func TestParseFormatDefaultsToCompact(t *testing.T) {
	assert.Equal(t, FormatCompact, ParseFormat("pretty"))
	assert.Equal(t, FormatJSON, ParseFormat(" JSON "))
}
