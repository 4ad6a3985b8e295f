package client

import (
	"context"

	"github.com/leofalp/nextpress/providers/ai"
)

// SendFunc is a function that sends a chat request to the provider and returns
// the completed response. It is the unit threaded through the middleware chain.
type SendFunc func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error)

// Middleware intercepts and optionally transforms provider calls. Each
// Middleware receives the next SendFunc in the chain and returns a new SendFunc
// that wraps it. The first middleware in a slice is the outermost wrapper.
//
// A middleware must call next at most once per request.
type Middleware func(next SendFunc) SendFunc

// buildSendChain wraps the provider call with middlewares, applied in reverse
// so that middlewares[0] runs first on an incoming request.
func buildSendChain(provider ai.Provider, middlewares []Middleware) SendFunc {
	var chain SendFunc = func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
		return provider.SendMessage(ctx, request)
	}

	for i := len(middlewares) - 1; i >= 0; i-- {
		chain = middlewares[i](chain)
	}

	return chain
}
