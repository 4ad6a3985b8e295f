package engagement

import (
	"context"
	"log/slog"

	"github.com/leofalp/nextpress/core/structured"
	"github.com/leofalp/nextpress/internal/jsonschema"
)

// SchemaName labels the output schema in provider requests.
const SchemaName = "optimization_result"

var (
	ErrValidation  = structured.ErrValidation
	ErrInvocation  = structured.ErrInvocation
	ErrModelOutput = structured.ErrModelOutput
)

// OptimizerOptions configures NewOptimizer.
type OptimizerOptions struct {
	Logger *slog.Logger
}

// WithLogger sets the logger used for call-level events.
func WithLogger(logger *slog.Logger) func(*OptimizerOptions) {
	return func(o *OptimizerOptions) {
		o.Logger = logger
	}
}

// Optimizer runs content optimizations. It holds no per-call state and is
// safe for concurrent use.
type Optimizer struct {
	call *structured.Call[OptimizationRequest, OptimizationResult]
}

// NewOptimizer builds an Optimizer that sends every request through invoker.
func NewOptimizer(invoker structured.Invoker, opts ...func(*OptimizerOptions)) (*Optimizer, error) {
	options := OptimizerOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	call, err := structured.New[OptimizationRequest, OptimizationResult](invoker, structured.Config[OptimizationRequest]{
		Name:     "optimize_content_engagement",
		Template: Prompt,
		Defaults: applyDefaults,
		Logger:   options.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Optimizer{call: call}, nil
}

// Optimize validates req, applies defaults, makes one model call and returns
// the decoded result. Errors match ErrValidation, ErrInvocation or
// ErrModelOutput; the result is nil whenever the error is not.
func (o *Optimizer) Optimize(ctx context.Context, req OptimizationRequest) (*OptimizationResult, error) {
	return o.call.Execute(ctx, req)
}

// RenderPrompt returns the prompt Optimize would send for req, without
// calling the model.
func (o *Optimizer) RenderPrompt(req OptimizationRequest) (string, error) {
	return o.call.Render(req)
}

// Decode parses a raw model reply the way Optimize does.
func (o *Optimizer) Decode(raw string) (OptimizationResult, error) {
	return o.call.Decode(raw)
}

// OutputSchema returns the schema the model is asked to follow.
func (o *Optimizer) OutputSchema() *jsonschema.Schema {
	return o.call.OutputSchema()
}
