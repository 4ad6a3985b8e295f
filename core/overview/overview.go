package overview

import (
	"context"
	"sync"
	"time"

	"github.com/leofalp/nextpress/core/client"
	"github.com/leofalp/nextpress/core/cost"
	"github.com/leofalp/nextpress/providers/ai"
)

type contextKey struct{}

// Overview aggregates the provider calls made under one context. It is safe
// for concurrent use.
type Overview struct {
	mu        sync.Mutex
	modelCost cost.ModelCost
	calls     int
	failures  int
	model     string
	usage     ai.Usage
	duration  time.Duration
}

// New returns an empty Overview that prices usage with modelCost.
func New(modelCost cost.ModelCost) *Overview {
	return &Overview{modelCost: modelCost}
}

// ToContext stores the Overview in ctx.
func (o *Overview) ToContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, o)
}

// FromContext returns the Overview stored in ctx, or nil.
func FromContext(ctx context.Context) *Overview {
	o, _ := ctx.Value(contextKey{}).(*Overview)
	return o
}

// Record adds one provider call. response may be nil when err is set.
func (o *Overview) Record(response *ai.ChatResponse, elapsed time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.calls++
	o.duration += elapsed
	if err != nil {
		o.failures++
		return
	}
	if response != nil {
		o.usage.Add(response.Usage)
		if response.Model != "" {
			o.model = response.Model
		}
	}
}

// Snapshot is a point-in-time copy of an Overview, shaped for JSON output.
type Snapshot struct {
	Calls    int           `json:"calls"`
	Failures int           `json:"failures,omitempty"`
	Model    string        `json:"model,omitempty"`
	Usage    ai.Usage      `json:"usage"`
	Duration time.Duration `json:"duration_ns"`
	Cost     *cost.Summary `json:"cost,omitempty"`
}

// Snapshot returns the totals so far. Cost is omitted when no price is
// configured.
func (o *Overview) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := Snapshot{
		Calls:    o.calls,
		Failures: o.failures,
		Model:    o.model,
		Usage:    o.usage,
		Duration: o.duration,
	}
	if !o.modelCost.IsZero() {
		summary := o.modelCost.Summarize(o.usage)
		s.Cost = &summary
	}
	return s
}

// Middleware records every provider call into the Overview found in the
// request context. Calls without one pass through untouched.
func Middleware() client.Middleware {
	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			o := FromContext(ctx)
			if o == nil {
				return next(ctx, request)
			}

			start := time.Now()
			response, err := next(ctx, request)
			o.Record(response, time.Since(start), err)
			return response, err
		}
	}
}
