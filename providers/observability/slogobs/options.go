package slogobs

import (
	"io"
	"log/slog"
	"os"
)

// Option configures [New].
type Option func(*config)

type config struct {
	format Format
	level  slog.Level
	output io.Writer
	colors bool
}

// WithFormat sets the log output format.
func WithFormat(format Format) Option {
	return func(c *config) {
		c.format = format
	}
}

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithOutput sets the writer logs go to. Defaults to os.Stderr.
func WithOutput(output io.Writer) Option {
	return func(c *config) {
		c.output = output
	}
}

// WithColors forces ANSI colors on the compact format.
func WithColors(enabled bool) Option {
	return func(c *config) {
		c.colors = enabled
	}
}

func applyOptions(opts ...Option) *config {
	cfg := &config{
		format: FormatFromEnv(),
		level:  LevelFromEnv(),
		output: os.Stderr,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// New returns a logger writing through a [Handler]. Without options the
// format and level come from the environment.
//
//	logger := slogobs.New(slogobs.WithFormat(slogobs.FormatJSON), slogobs.WithLevel(slog.LevelDebug))
//	slog.SetDefault(logger)
func New(opts ...Option) *slog.Logger {
	cfg := applyOptions(opts...)
	return slog.New(NewHandler(&HandlerOptions{
		Format: cfg.format,
		Level:  cfg.level,
		Output: cfg.output,
		Colors: cfg.colors,
	}))
}
