package compat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/leofalp/nextpress/internal/utils"
	"github.com/leofalp/nextpress/providers/ai"
)

const (
	providerName            = "compat"
	defaultBaseURL          = "https://openrouter.ai/api/v1"
	defaultModel            = "openai/gpt-4o-mini"
	chatCompletionsEndpoint = "/chat/completions"
)

// Provider talks to an OpenAI-compatible chat completions endpoint.
type Provider struct {
	apiKey       string
	baseURL      string
	model        string
	client       *http.Client
	authOptional bool
}

// New creates a provider with values from the environment:
//   - OPENROUTER_API_KEY: bearer token
//   - OPENROUTER_API_BASE_URL: base URL, defaults to OpenRouter
func New() *Provider {
	baseURL := os.Getenv("OPENROUTER_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Provider{
		apiKey:  os.Getenv("OPENROUTER_API_KEY"),
		baseURL: baseURL,
		model:   defaultModel,
		client:  &http.Client{},
	}
}

// WithAPIKey sets the API key for the provider
func (p *Provider) WithAPIKey(apiKey string) *Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API
func (p *Provider) WithBaseURL(baseURL string) *Provider {
	p.baseURL = strings.TrimRight(baseURL, "/")
	return p
}

// WithHttpClient sets a custom HTTP client
func (p *Provider) WithHttpClient(httpClient *http.Client) *Provider {
	p.client = httpClient
	return p
}

// WithModel sets the model used when a request does not name one.
func (p *Provider) WithModel(model string) *Provider {
	if model != "" {
		p.model = model
	}
	return p
}

// WithoutAuth allows requests with no API key, for local servers.
func (p *Provider) WithoutAuth() *Provider {
	p.authOptional = true
	return p
}

// Name implements ai.Provider.
func (p *Provider) Name() string { return providerName }

// SendMessage implements ai.Provider.
func (p *Provider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.apiKey == "" && !p.authOptional {
		return nil, fmt.Errorf("%s: %w", providerName, ai.ErrMissingAPIKey)
	}

	model := request.Model
	if model == "" {
		model = p.model
	}

	_, resp, err := utils.DoPostSync[chatCompletionResponse](ctx, p.client, p.baseURL+chatCompletionsEndpoint, p.apiKey, requestToChatCompletion(request, model))
	if err != nil {
		var statusErr *utils.StatusError
		if errors.As(err, &statusErr) {
			return nil, &ai.ProviderError{
				Provider:   providerName,
				StatusCode: statusErr.StatusCode,
				Message:    errorMessage(statusErr.Body),
			}
		}
		return nil, fmt.Errorf("%s: %w", providerName, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s: %w: no choices in response", providerName, ai.ErrEmptyResponse)
	}

	result := chatCompletionToGeneric(*resp)
	if result.Model == "" {
		result.Model = model
	}
	return result, nil
}

// errorMessage pulls error.message out of a JSON error body, falling back
// to the raw text.
func errorMessage(body string) string {
	var envelope errorEnvelope
	if json.Unmarshal([]byte(body), &envelope) == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return body
}
