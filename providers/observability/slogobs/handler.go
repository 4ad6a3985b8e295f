package slogobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Handler is a slog.Handler writing either the compact or the JSON format.
// Handlers derived with WithAttrs and WithGroup share the parent's writer lock.
type Handler struct {
	format Format
	level  slog.Leveler
	output io.Writer
	colors bool
	mu     *sync.Mutex
	attrs  map[string]any
	prefix string
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	Format Format
	// Level is the minimum level; a *slog.LevelVar allows changing it at runtime.
	Level slog.Leveler
	// Output defaults to os.Stderr.
	Output io.Writer
	// Colors forces ANSI colors in the compact format. They are also enabled
	// when Output is a terminal.
	Colors bool
}

// NewHandler creates a Handler. A nil opts gives compact INFO output on stderr.
func NewHandler(opts *HandlerOptions) *Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}

	h := &Handler{
		format: opts.Format,
		level:  opts.Level,
		output: opts.Output,
		colors: opts.Colors,
		mu:     &sync.Mutex{},
		attrs:  map[string]any{},
	}
	if h.format == "" {
		h.format = FormatCompact
	}
	if h.level == nil {
		h.level = slog.LevelInfo
	}
	if h.output == nil {
		h.output = os.Stderr
	}
	if !h.colors && h.format == FormatCompact {
		if f, ok := h.output.(*os.File); ok {
			h.colors = isTerminal(f)
		}
	}
	return h
}

// Enabled reports whether level is at or above the configured minimum.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes r as one line.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for k, v := range h.attrs {
		attrs[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(attrs, h.prefix, a)
		return true
	})

	var line []byte
	var err error
	if h.format == FormatJSON {
		line, err = h.jsonLine(r, attrs)
	} else {
		line, err = h.compactLine(r, attrs)
	}
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.output.Write(line)
	return err
}

// WithAttrs returns a Handler that adds attrs to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	for _, a := range attrs {
		addAttr(clone.attrs, clone.prefix, a)
	}
	return clone
}

// WithGroup returns a Handler that qualifies later attribute keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	clone.prefix = h.prefix + name + "."
	return clone
}

func (h *Handler) clone() *Handler {
	attrs := make(map[string]any, len(h.attrs))
	for k, v := range h.attrs {
		attrs[k] = v
	}
	c := *h
	c.attrs = attrs
	return &c
}

func (h *Handler) compactLine(r slog.Record, attrs map[string]any) ([]byte, error) {
	var b strings.Builder
	b.WriteString(r.Time.Format(time.DateTime))
	b.WriteByte(' ')

	level := fmt.Sprintf("%5s", levelString(r.Level))
	if h.colors {
		b.WriteString(colorForLevel(r.Level))
		b.WriteString(level)
		b.WriteString(colorReset)
	} else {
		b.WriteString(level)
	}
	b.WriteByte(' ')
	b.WriteString(r.Message)

	if len(attrs) > 0 {
		encoded, err := json.Marshal(attrs)
		if err != nil {
			return nil, fmt.Errorf("failed to encode log attributes: %w", err)
		}
		b.WriteByte(' ')
		b.Write(encoded)
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func (h *Handler) jsonLine(r slog.Record, attrs map[string]any) ([]byte, error) {
	attrs[slog.TimeKey] = r.Time.Format(time.RFC3339)
	attrs[slog.LevelKey] = levelString(r.Level)
	attrs[slog.MessageKey] = r.Message

	encoded, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode log record: %w", err)
	}
	return append(encoded, '\n'), nil
}

// addAttr stores a under prefix+key. Group attrs are flattened with dots and
// errors are stored as their message.
func addAttr(dst map[string]any, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			addAttr(dst, inner, ga)
		}
		return
	}

	value := a.Value.Any()
	switch v := value.(type) {
	case error:
		value = v.Error()
	case time.Duration:
		value = v.String()
	}
	dst[prefix+a.Key] = value
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
)

func colorForLevel(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return colorBlue
	case level < slog.LevelWarn:
		return colorGreen
	case level < slog.LevelError:
		return colorYellow
	default:
		return colorRed
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
