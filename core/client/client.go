package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leofalp/nextpress/internal/jsonschema"
	"github.com/leofalp/nextpress/providers/ai"
)

// ClientOptions holds the configuration applied by the With* option functions.
type ClientOptions struct {
	Model            string
	SystemPrompt     string
	SchemaName       string
	GenerationConfig *ai.GenerationConfig
	Middlewares      []Middleware
}

// WithModel sets the model identifier sent with every request. Empty means
// the provider default.
func WithModel(model string) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.Model = model
	}
}

// WithSystemPrompt sets the system prompt (the model's role description).
func WithSystemPrompt(prompt string) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.SystemPrompt = prompt
	}
}

// WithSchemaName labels the output schema for providers that require a name.
func WithSchemaName(name string) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.SchemaName = name
	}
}

// WithGenerationConfig sets sampling parameters.
func WithGenerationConfig(cfg ai.GenerationConfig) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.GenerationConfig = &cfg
	}
}

// WithMiddleware appends middlewares to the chain. The first one given is the
// outermost.
func WithMiddleware(middlewares ...Middleware) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.Middlewares = append(o.Middlewares, middlewares...)
	}
}

// Client sends single-turn structured requests through a provider.
type Client struct {
	provider ai.Provider
	options  ClientOptions
	send     SendFunc
}

// New builds a Client. It fails if provider is nil or a middleware is nil.
func New(provider ai.Provider, opts ...func(*ClientOptions)) (*Client, error) {
	if provider == nil {
		return nil, errors.New("provider is required")
	}

	options := ClientOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	for i, mw := range options.Middlewares {
		if mw == nil {
			return nil, fmt.Errorf("middleware at index %d is nil", i)
		}
	}

	return &Client{
		provider: provider,
		options:  options,
		send:     buildSendChain(provider, options.Middlewares),
	}, nil
}

// Provider returns the wrapped provider.
func (c *Client) Provider() ai.Provider {
	return c.provider
}

// Request builds the chat request Invoke would send for prompt and schema.
func (c *Client) Request(prompt string, schema *jsonschema.Schema) ai.ChatRequest {
	request := ai.ChatRequest{
		Model:            c.options.Model,
		SystemPrompt:     c.options.SystemPrompt,
		Messages:         []ai.Message{{Role: ai.RoleUser, Content: prompt}},
		GenerationConfig: c.options.GenerationConfig,
	}
	if schema != nil {
		request.ResponseFormat = &ai.ResponseFormat{
			OutputSchema: schema,
			Name:         c.options.SchemaName,
			Strict:       true,
		}
	}
	return request
}

// Invoke sends prompt as the single user message, asks for output matching
// schema and returns the reply text. It performs exactly one pass through the
// middleware chain. Provider errors are returned unchanged; a refusal, an
// empty reply or a reply cut off at the token limit is reported as
// *ai.RefusalError, ai.ErrEmptyResponse or ai.ErrTruncatedResponse.
func (c *Client) Invoke(ctx context.Context, prompt string, schema *jsonschema.Schema) (string, error) {
	response, err := c.send(ctx, c.Request(prompt, schema))
	if err != nil {
		return "", err
	}

	if response == nil {
		return "", ai.ErrEmptyResponse
	}
	if response.Refusal != "" {
		return "", &ai.RefusalError{Reason: response.Refusal}
	}
	if response.FinishReason == ai.FinishReasonLength {
		return "", ai.ErrTruncatedResponse
	}
	if strings.TrimSpace(response.Content) == "" {
		return "", ai.ErrEmptyResponse
	}

	return response.Content, nil
}
