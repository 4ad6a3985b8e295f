package main

import (
	"fmt"
	"log/slog"

	"github.com/leofalp/nextpress/core/client"
	"github.com/leofalp/nextpress/core/client/middleware"
	"github.com/leofalp/nextpress/core/engagement"
	"github.com/leofalp/nextpress/core/overview"
	"github.com/leofalp/nextpress/core/structured"
	"github.com/leofalp/nextpress/internal/config"
	"github.com/leofalp/nextpress/internal/metrics"
	"github.com/leofalp/nextpress/providers/ai"
	"github.com/leofalp/nextpress/providers/ai/anthropic"
	"github.com/leofalp/nextpress/providers/ai/compat"
	"github.com/leofalp/nextpress/providers/ai/gemini"
	"github.com/leofalp/nextpress/providers/ai/openai"
)

// buildProvider returns the provider named in cfg. Empty fields keep the
// provider's own defaults, which come from its native environment variables.
func buildProvider(cfg config.ProviderConfig) (ai.Provider, error) {
	switch cfg.Name {
	case config.ProviderCompat:
		p := compat.New()
		if cfg.APIKey != "" {
			p = p.WithAPIKey(cfg.APIKey)
		}
		if cfg.BaseURL != "" {
			p = p.WithBaseURL(cfg.BaseURL)
		}
		if cfg.Model != "" {
			p = p.WithModel(cfg.Model)
		}
		return p, nil

	case config.ProviderOpenAI:
		p := openai.New()
		if cfg.APIKey != "" {
			p = p.WithAPIKey(cfg.APIKey)
		}
		if cfg.BaseURL != "" {
			p = p.WithBaseURL(cfg.BaseURL)
		}
		if cfg.Model != "" {
			p = p.WithModel(cfg.Model)
		}
		return p, nil

	case config.ProviderGemini:
		p := gemini.New()
		if cfg.APIKey != "" {
			p = p.WithAPIKey(cfg.APIKey)
		}
		if cfg.BaseURL != "" {
			p = p.WithBaseURL(cfg.BaseURL)
		}
		if cfg.Model != "" {
			p = p.WithModel(cfg.Model)
		}
		return p, nil

	case config.ProviderAnthropic:
		p := anthropic.New()
		if cfg.APIKey != "" {
			p = p.WithAPIKey(cfg.APIKey)
		}
		if cfg.BaseURL != "" {
			p = p.WithBaseURL(cfg.BaseURL)
		}
		if cfg.Model != "" {
			p = p.WithModel(cfg.Model)
		}
		return p, nil

	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Name)
	}
}

// newClient wires a provider into a client. The middleware order is logging,
// then usage recording, then metrics, then the per-call timeout, so logged durations include the
// time spent waiting for the deadline.
func newClient(cfg config.ProviderConfig, logger *slog.Logger, collector *metrics.Collector) (structured.Invoker, error) {
	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}

	middlewares := []client.Middleware{
		middleware.NewLoggingMiddleware(logger, middleware.ParseLogLevel(cfg.LogDetail)),
		overview.Middleware(),
	}
	if collector != nil {
		middlewares = append(middlewares, collector.ProviderMiddleware(provider.Name(), cfg.ModelCost()))
	}
	middlewares = append(middlewares, middleware.NewTimeoutMiddleware(cfg.Timeout))

	opts := []func(*client.ClientOptions){
		client.WithSystemPrompt(engagement.Role),
		client.WithSchemaName(engagement.SchemaName),
		client.WithMiddleware(middlewares...),
	}
	if cfg.Temperature > 0 || cfg.MaxOutputTokens > 0 {
		opts = append(opts, client.WithGenerationConfig(ai.GenerationConfig{
			Temperature:     float32(cfg.Temperature),
			MaxOutputTokens: cfg.MaxOutputTokens,
		}))
	}

	c, err := client.New(provider, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return c, nil
}
