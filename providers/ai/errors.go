package ai

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingAPIKey is returned before any network call when no key is configured.
	ErrMissingAPIKey = errors.New("API key is not set")
	// ErrEmptyResponse is returned when the provider answers without any content.
	ErrEmptyResponse = errors.New("empty response from provider")
	// ErrTruncatedResponse is returned when the reply stopped at the output
	// token limit, so its content is incomplete.
	ErrTruncatedResponse = errors.New("response truncated at the output token limit")
)

// ProviderError is a non-2xx answer from a provider API.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, msg)
}

// Temporary reports whether the status suggests that a later attempt may succeed.
func (e *ProviderError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// RefusalError is returned when the model refuses to produce an answer.
type RefusalError struct {
	Reason string
}

func (e *RefusalError) Error() string {
	return "model refused to answer: " + e.Reason
}
