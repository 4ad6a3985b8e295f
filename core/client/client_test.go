package client

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/leofalp/nextpress/internal/jsonschema"
	"github.com/leofalp/nextpress/providers/ai"
)

// mockProvider records every request and answers with a fixed response or error.
type mockProvider struct {
	mu       sync.Mutex
	requests []ai.ChatRequest
	response *ai.ChatResponse
	err      error
}

func (m *mockProvider) SendMessage(_ context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, request)
	if m.err != nil {
		return nil, m.err
	}
	if m.response != nil {
		return m.response, nil
	}
	return &ai.ChatResponse{Content: "test response"}, nil
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

type answer struct {
	Text string `json:"text" jsonschema:"required"`
}

func TestNew_RequiresProvider(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil provider")
	}
}

func TestNew_RejectsNilMiddleware(t *testing.T) {
	_, err := New(&mockProvider{}, WithMiddleware(nil))
	if err == nil {
		t.Fatal("expected error for nil middleware")
	}
}

// TestInvoke_BuildsRequest verifies that options and arguments end up in the
// single request sent to the provider.
func TestInvoke_BuildsRequest(t *testing.T) {
	provider := &mockProvider{}
	schema := jsonschema.MustGenerate[answer]()

	c, err := New(provider,
		WithModel("gpt-4o-mini"),
		WithSystemPrompt("You are helpful."),
		WithSchemaName("answer"),
		WithGenerationConfig(ai.GenerationConfig{Temperature: 0.2}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text, err := c.Invoke(context.Background(), "rendered prompt", schema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "test response" {
		t.Errorf("expected 'test response', got %q", text)
	}

	if provider.calls() != 1 {
		t.Fatalf("expected exactly one provider call, got %d", provider.calls())
	}
	req := provider.requests[0]
	if req.Model != "gpt-4o-mini" || req.SystemPrompt != "You are helpful." {
		t.Errorf("unexpected model/system prompt: %+v", req)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != ai.RoleUser || req.Messages[0].Content != "rendered prompt" {
		t.Errorf("expected a single user message with the prompt, got %+v", req.Messages)
	}
	if req.ResponseFormat == nil || req.ResponseFormat.OutputSchema != schema || !req.ResponseFormat.Strict {
		t.Errorf("expected strict response format with schema, got %+v", req.ResponseFormat)
	}
	if req.ResponseFormat.SchemaName() != "answer" {
		t.Errorf("expected schema name 'answer', got %q", req.ResponseFormat.SchemaName())
	}
	if req.GenerationConfig == nil || req.GenerationConfig.Temperature != 0.2 {
		t.Errorf("expected generation config, got %+v", req.GenerationConfig)
	}
}

func TestInvoke_NoSchema(t *testing.T) {
	provider := &mockProvider{}
	c, _ := New(provider)

	if _, err := c.Invoke(context.Background(), "hi", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.requests[0].ResponseFormat != nil {
		t.Errorf("expected no response format without schema")
	}
}

// TestInvoke_PassesProviderErrorsThrough verifies that provider errors are not
// wrapped or retried.
func TestInvoke_PassesProviderErrorsThrough(t *testing.T) {
	providerErr := &ai.ProviderError{Provider: "mock", StatusCode: 503}
	provider := &mockProvider{err: providerErr}
	c, _ := New(provider)

	_, err := c.Invoke(context.Background(), "hi", nil)
	if err != providerErr {
		t.Fatalf("expected provider error unchanged, got %v", err)
	}
	if provider.calls() != 1 {
		t.Errorf("expected one call, got %d", provider.calls())
	}
}

func TestInvoke_UnusableReplies(t *testing.T) {
	tests := []struct {
		name     string
		response *ai.ChatResponse
		check    func(error) bool
	}{
		{"empty content", &ai.ChatResponse{Content: "  \n"}, func(err error) bool { return errors.Is(err, ai.ErrEmptyResponse) }},
		{"token limit", &ai.ChatResponse{Content: `{"text":"cut`, FinishReason: ai.FinishReasonLength}, func(err error) bool { return errors.Is(err, ai.ErrTruncatedResponse) }},
		{"refusal", &ai.ChatResponse{Refusal: "policy"}, func(err error) bool {
			var refusal *ai.RefusalError
			return errors.As(err, &refusal) && refusal.Reason == "policy"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := New(&mockProvider{response: tt.response})
			_, err := c.Invoke(context.Background(), "hi", nil)
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestInvoke_NilResponse(t *testing.T) {
	nilResponder := func(SendFunc) SendFunc {
		return func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) { return nil, nil }
	}
	c, _ := New(&mockProvider{}, WithMiddleware(nilResponder))

	if _, err := c.Invoke(context.Background(), "hi", nil); !errors.Is(err, ai.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestRequest_DoesNotShareMessages(t *testing.T) {
	c, _ := New(&mockProvider{})

	a := c.Request("a", nil)
	b := c.Request("b", nil)
	a.Messages[0].Content = "changed"

	if b.Messages[0].Content != "b" {
		t.Errorf("requests share message storage")
	}
}
