package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderErrorMessage(t *testing.T) {
	err := &ProviderError{Provider: "openai", StatusCode: http.StatusUnauthorized, Message: "invalid key"}
	assert.Equal(t, "openai: HTTP 401: invalid key", err.Error())

	bare := &ProviderError{Provider: "gemini", StatusCode: http.StatusBadGateway}
	assert.Equal(t, "gemini: HTTP 502: Bad Gateway", bare.Error())
}

func TestProviderErrorTemporary(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, (&ProviderError{StatusCode: tt.status}).Temporary())
		})
	}
}

func TestProviderErrorAs(t *testing.T) {
	wrapped := fmt.Errorf("send: %w", &ProviderError{Provider: "compat", StatusCode: 429})

	var perr *ProviderError
	require.True(t, errors.As(wrapped, &perr))
	assert.Equal(t, 429, perr.StatusCode)
}

func TestUsageAdd(t *testing.T) {
	total := Usage{}
	total.Add(&Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15})
	total.Add(&Usage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3})
	total.Add(nil)

	assert.Equal(t, Usage{PromptTokens: 11, CompletionTokens: 7, TotalTokens: 18}, total)
}

func TestSchemaName(t *testing.T) {
	var nilFormat *ResponseFormat
	assert.Equal(t, "response", nilFormat.SchemaName())
	assert.Equal(t, "response", (&ResponseFormat{}).SchemaName())
	assert.Equal(t, "optimization_result", (&ResponseFormat{Name: "optimization_result"}).SchemaName())
}

func TestChatRequestJSON(t *testing.T) {
	req := ChatRequest{
		Model:        "gpt-4o-mini",
		SystemPrompt: "be brief",
		Messages:     []Message{{Role: RoleUser, Content: "hi"}},
	}

	raw, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"model":"gpt-4o-mini","system_prompt":"be brief","messages":[{"role":"user","content":"hi"}]}`, string(raw))
}
