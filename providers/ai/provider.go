package ai

import (
	"context"
)

// Provider is implemented by every model backend.
type Provider interface {
	// SendMessage sends one chat request and returns the completed response.
	// It makes a single attempt: retrying is the caller's decision.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	// Name identifies the backend in logs and metrics ("openai", "gemini", ...).
	Name() string
}
