package structured

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leofalp/nextpress/core/parse"
	"github.com/leofalp/nextpress/core/prompt"
	"github.com/leofalp/nextpress/internal/jsonschema"
	"github.com/leofalp/nextpress/providers/ai"
)

// Invoker performs one model call: it sends a rendered prompt and the output
// schema and returns the raw reply text. *client.Client implements it.
type Invoker interface {
	Invoke(ctx context.Context, prompt string, schema *jsonschema.Schema) (string, error)
}

// Config describes a structured call over input type In.
type Config[In any] struct {
	// Name identifies the call in errors and logs.
	Name string
	// Template renders the instruction from a defaulted In.
	Template *prompt.Template
	// Defaults fills optional fields after validation. May be nil.
	Defaults func(*In)
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Call is a reusable structured prompt call from In to Out. It holds no
// mutable state and is safe for concurrent use.
type Call[In, Out any] struct {
	name         string
	invoker      Invoker
	template     *prompt.Template
	defaults     func(*In)
	inputSchema  *jsonschema.Schema
	outputSchema *jsonschema.Schema
	logger       *slog.Logger
}

// New builds a Call. Schemas are derived from In and Out, and the template is
// test-rendered against a defaulted zero In so field typos fail here rather
// than on the first request.
func New[In, Out any](invoker Invoker, cfg Config[In]) (*Call[In, Out], error) {
	if invoker == nil {
		return nil, errors.New("structured: invoker is required")
	}
	if cfg.Template == nil {
		return nil, errors.New("structured: template is required")
	}

	name := cfg.Name
	if name == "" {
		name = cfg.Template.Name()
	}

	inputSchema, err := jsonschema.GenerateJSONSchema[In]()
	if err != nil {
		return nil, fmt.Errorf("%s: input schema: %w", name, err)
	}
	outputSchema, err := jsonschema.GenerateJSONSchema[Out]()
	if err != nil {
		return nil, fmt.Errorf("%s: output schema: %w", name, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Call[In, Out]{
		name:         name,
		invoker:      invoker,
		template:     cfg.Template,
		defaults:     cfg.Defaults,
		inputSchema:  inputSchema,
		outputSchema: outputSchema,
		logger:       logger.With("call", name),
	}

	var zero In
	c.applyDefaults(&zero)
	if _, err := cfg.Template.Render(zero); err != nil {
		return nil, fmt.Errorf("%s: template does not fit input type: %w", name, err)
	}

	return c, nil
}

// Name returns the call name.
func (c *Call[In, Out]) Name() string { return c.name }

// InputSchema returns the schema requests are validated against.
func (c *Call[In, Out]) InputSchema() *jsonschema.Schema { return c.inputSchema }

// OutputSchema returns the schema sent to the model and enforced on replies.
func (c *Call[In, Out]) OutputSchema() *jsonschema.Schema { return c.outputSchema }

func (c *Call[In, Out]) applyDefaults(in *In) {
	if c.defaults != nil {
		c.defaults(in)
	}
}

// Render validates in, applies defaults to a copy and renders the prompt.
// It makes no external call.
func (c *Call[In, Out]) Render(in In) (string, error) {
	if err := jsonschema.ValidateValue(c.inputSchema, in); err != nil {
		return "", &ValidationError{Call: c.name, Err: err}
	}

	c.applyDefaults(&in)

	text, err := c.template.Render(in)
	if err != nil {
		return "", &ValidationError{Call: c.name, Err: err}
	}
	return text, nil
}

// Decode turns raw reply text into Out. The text may be wrapped in prose or a
// code fence, or carry minor syntax damage; the repaired JSON must still
// satisfy the output schema. Nothing missing is ever filled in.
func (c *Call[In, Out]) Decode(raw string) (Out, error) {
	var out Out

	canonical, err := parse.Canonicalize(raw)
	if err != nil {
		return out, &ModelOutputError{Call: c.name, Raw: raw, Err: err}
	}

	if err := jsonschema.ValidateJSON(c.outputSchema, []byte(canonical)); err != nil {
		unwrapped, unwrapErr := parse.UnwrapSchemaValues(canonical)
		if unwrapErr != nil || jsonschema.ValidateJSON(c.outputSchema, []byte(unwrapped)) != nil {
			return out, &ModelOutputError{Call: c.name, Raw: raw, Err: err}
		}
		canonical = unwrapped
	}

	if err := json.Unmarshal([]byte(canonical), &out); err != nil {
		return out, &ModelOutputError{Call: c.name, Raw: raw, Err: fmt.Errorf("failed to decode output: %w", err)}
	}
	return out, nil
}

// Execute runs the full call: Render, one model invocation, Decode. On error
// the result is nil; on success it is non-nil and schema-valid.
func (c *Call[In, Out]) Execute(ctx context.Context, in In) (*Out, error) {
	text, err := c.Render(in)
	if err != nil {
		c.logger.DebugContext(ctx, "structured call rejected input", slog.String("error", err.Error()))
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, &InvocationError{Call: c.name, Err: err}
	}

	start := time.Now()
	raw, err := c.invoker.Invoke(ctx, text, c.outputSchema)
	elapsed := time.Since(start)
	if err != nil {
		var refusal *ai.RefusalError
		if errors.Is(err, ai.ErrEmptyResponse) || errors.Is(err, ai.ErrTruncatedResponse) || errors.As(err, &refusal) {
			c.logger.WarnContext(ctx, "model returned no usable answer", slog.Duration("duration", elapsed), slog.String("error", err.Error()))
			return nil, &ModelOutputError{Call: c.name, Err: err}
		}
		c.logger.WarnContext(ctx, "model invocation failed", slog.Duration("duration", elapsed), slog.String("error", err.Error()))
		return nil, &InvocationError{Call: c.name, Err: err}
	}

	out, err := c.Decode(raw)
	if err != nil {
		c.logger.WarnContext(ctx, "model output rejected", slog.Duration("duration", elapsed), slog.String("error", err.Error()))
		return nil, err
	}

	c.logger.DebugContext(ctx, "structured call completed", slog.Duration("duration", elapsed))
	return &out, nil
}
