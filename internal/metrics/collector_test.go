package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/nextpress/core/cost"
	"github.com/leofalp/nextpress/core/structured"
	"github.com/leofalp/nextpress/providers/ai"
)

func TestRecordHTTPRequest(t *testing.T) {
	c := NewCollector("test")

	c.RecordHTTPRequest("POST", "/api/v1/optimize", 200, 10*time.Millisecond)
	c.RecordHTTPRequest("POST", "/api/v1/optimize", 200, 20*time.Millisecond)
	c.RecordHTTPRequest("POST", "/api/v1/optimize", 400, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.httpRequestsTotal.WithLabelValues("POST", "/api/v1/optimize", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequestsTotal.WithLabelValues("POST", "/api/v1/optimize", "400")))
}

func TestRecordOptimizationOutcomes(t *testing.T) {
	c := NewCollector("test")

	c.RecordOptimization(nil)
	c.RecordOptimization(&structured.ValidationError{Call: "x", Err: errors.New("empty")})
	c.RecordOptimization(&structured.ModelOutputError{Call: "x", Err: errors.New("bad")})
	c.RecordOptimization(&structured.ModelOutputError{Call: "x", Err: errors.New("bad")})
	c.RecordOptimization(errors.New("unclassified"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.optimizationsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.optimizationsTotal.WithLabelValues("validation")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.optimizationsTotal.WithLabelValues("model_output")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.optimizationsTotal.WithLabelValues("other")))
}

func TestProviderMiddleware(t *testing.T) {
	c := NewCollector("test")
	mw := c.ProviderMiddleware("compat", cost.ModelCost{InputCostPerMillion: 1_000_000, OutputCostPerMillion: 2_000_000})

	ok := mw(func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
		return &ai.ChatResponse{Model: "m1", Content: "x", Usage: &ai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}}, nil
	})
	failing := mw(func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
		return nil, errors.New("down")
	})

	_, err := ok(context.Background(), ai.ChatRequest{})
	require.NoError(t, err)
	_, err = failing(context.Background(), ai.ChatRequest{Model: "m2"})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.llmRequestsTotal.WithLabelValues("compat", "m1", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.llmRequestsTotal.WithLabelValues("compat", "m2", "error")))
	assert.Equal(t, 10.0, testutil.ToFloat64(c.llmTokensUsed.WithLabelValues("compat", "m1", "prompt")))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.llmTokensUsed.WithLabelValues("compat", "m1", "completion")))
	assert.InDelta(t, 20.0, testutil.ToFloat64(c.llmCostUSD.WithLabelValues("compat", "m1")), 1e-9)
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector("nextpress")
	c.RecordOptimization(nil)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `nextpress_optimizations_total{outcome="ok"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewCollector("test")
	b := NewCollector("test")

	a.RecordOptimization(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.optimizationsTotal.WithLabelValues("ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.optimizationsTotal.WithLabelValues("ok")))
}
