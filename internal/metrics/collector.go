// Package metrics collects Prometheus metrics for the HTTP server, provider
// calls and optimization outcomes. Every Collector owns its registry, so
// several can coexist in one process (tests, embedded servers).
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leofalp/nextpress/core/client"
	"github.com/leofalp/nextpress/core/cost"
	"github.com/leofalp/nextpress/core/structured"
	"github.com/leofalp/nextpress/providers/ai"
)

// Collector holds the metric vectors.
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	llmRequestsTotal   *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec
	llmTokensUsed      *prometheus.CounterVec
	llmCostUSD         *prometheus.CounterVec

	optimizationsTotal *prometheus.CounterVec
}

// NewCollector registers all metrics under namespace on a fresh registry,
// together with the Go runtime and process collectors.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		llmRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_requests_total",
				Help:      "Total number of provider calls",
			},
			[]string{"provider", "model", "status"},
		),
		llmRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_request_duration_seconds",
				Help:      "Provider call duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider", "model"},
		),
		llmTokensUsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_tokens_used_total",
				Help:      "Total number of tokens reported by providers",
			},
			[]string{"provider", "model", "type"}, // type: prompt, completion
		),
		llmCostUSD: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_cost_usd_total",
				Help:      "Estimated provider spend in USD, from configured token prices",
			},
			[]string{"provider", "model"},
		),

		optimizationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "optimizations_total",
				Help:      "Optimization calls by outcome",
			},
			[]string{"outcome"}, // ok, validation, invocation, model_output
		),
	}
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordOptimization counts one optimization outcome; err is classified with
// structured.Kind.
func (c *Collector) RecordOptimization(err error) {
	outcome := "ok"
	if err != nil {
		outcome = structured.Kind(err)
		if outcome == "" {
			outcome = "other"
		}
	}
	c.optimizationsTotal.WithLabelValues(outcome).Inc()
}

// RecordLLMRequest records one provider call and the tokens it reported.
func (c *Collector) RecordLLMRequest(provider, model string, duration time.Duration, usage *ai.Usage, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.llmRequestsTotal.WithLabelValues(provider, model, status).Inc()
	c.llmRequestDuration.WithLabelValues(provider, model).Observe(duration.Seconds())

	if usage != nil {
		c.llmTokensUsed.WithLabelValues(provider, model, "prompt").Add(float64(usage.PromptTokens))
		c.llmTokensUsed.WithLabelValues(provider, model, "completion").Add(float64(usage.CompletionTokens))
	}
}

// RecordLLMCost adds the estimated spend of one call. Non-positive amounts
// are ignored.
func (c *Collector) RecordLLMCost(provider, model string, usd float64) {
	if usd > 0 {
		c.llmCostUSD.WithLabelValues(provider, model).Add(usd)
	}
}

// ProviderMiddleware returns a client middleware that records every provider
// call made through it, priced with price. provider labels the series; an
// empty request model is recorded as "default".
func (c *Collector) ProviderMiddleware(provider string, price cost.ModelCost) client.Middleware {
	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			start := time.Now()
			response, err := next(ctx, request)

			model := request.Model
			if response != nil && response.Model != "" {
				model = response.Model
			}
			if model == "" {
				model = "default"
			}

			var usage *ai.Usage
			if response != nil {
				usage = response.Usage
			}
			c.RecordLLMRequest(provider, model, time.Since(start), usage, err)
			c.RecordLLMCost(provider, model, price.Calculate(usage))
			return response, err
		}
	}
}
