package client

import (
	"context"
	"errors"
	"testing"

	"github.com/leofalp/nextpress/providers/ai"
)

// callRecorder appends its name to a shared order slice when invoked.
type callRecorder struct {
	order *[]string
	name  string
}

func (rec *callRecorder) middleware() Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			*rec.order = append(*rec.order, rec.name)
			return next(ctx, request)
		}
	}
}

// TestBuildSendChain_EmptyMiddlewares verifies that no middlewares results in a
// direct provider call.
func TestBuildSendChain_EmptyMiddlewares(t *testing.T) {
	chain := buildSendChain(&mockProvider{}, nil)

	resp, err := chain(context.Background(), ai.ChatRequest{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Content != "test response" {
		t.Errorf("expected 'test response', got %q", resp.Content)
	}
}

// TestBuildSendChain_Order verifies that the first middleware is outermost.
func TestBuildSendChain_Order(t *testing.T) {
	order := []string{}
	chain := buildSendChain(&mockProvider{}, []Middleware{
		(&callRecorder{order: &order, name: "first"}).middleware(),
		(&callRecorder{order: &order, name: "second"}).middleware(),
		(&callRecorder{order: &order, name: "third"}).middleware(),
	})

	if _, err := chain(context.Background(), ai.ChatRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], order[i])
		}
	}
}

// TestBuildSendChain_ShortCircuit verifies that a middleware can answer
// without reaching the provider.
func TestBuildSendChain_ShortCircuit(t *testing.T) {
	provider := &mockProvider{}
	blocked := errors.New("blocked")
	block := func(SendFunc) SendFunc {
		return func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) { return nil, blocked }
	}

	chain := buildSendChain(provider, []Middleware{block})
	if _, err := chain(context.Background(), ai.ChatRequest{}); !errors.Is(err, blocked) {
		t.Fatalf("expected blocked error, got %v", err)
	}
	if provider.calls() != 0 {
		t.Errorf("provider should not be called, got %d calls", provider.calls())
	}
}

// TestBuildSendChain_RequestRewrite verifies that middlewares can modify the request.
func TestBuildSendChain_RequestRewrite(t *testing.T) {
	provider := &mockProvider{}
	setModel := func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			request.Model = "rewritten"
			return next(ctx, request)
		}
	}

	chain := buildSendChain(provider, []Middleware{setModel})
	if _, err := chain(context.Background(), ai.ChatRequest{Model: "original"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.requests[0].Model != "rewritten" {
		t.Errorf("expected rewritten model, got %q", provider.requests[0].Model)
	}
}
