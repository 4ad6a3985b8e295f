package anthropic

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
	providerName = "anthropic"

	// defaultBaseURL is the canonical base URL for Anthropic's Messages API.
	defaultBaseURL = "https://api.anthropic.com/v1"

	// messagesEndpoint is the path for the Messages API endpoint.
	messagesEndpoint = "/messages"

	// anthropicVersion is the required anthropic-version header value.
	anthropicVersion = "2023-06-01"

	defaultModel = "claude-3-5-haiku-latest"
)

// Provider implements [ai.Provider] for Anthropic's Messages API.
type Provider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// New returns a Provider initialized from environment variables:
//   - ANTHROPIC_API_KEY: sent as x-api-key
//   - ANTHROPIC_API_BASE_URL: defaults to https://api.anthropic.com/v1
func New() *Provider {
	baseURL := os.Getenv("ANTHROPIC_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Provider{
		apiKey:  os.Getenv("ANTHROPIC_API_KEY"),
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   defaultModel,
		client:  &http.Client{},
	}
}

// WithAPIKey sets the API key for the provider
func (p *Provider) WithAPIKey(apiKey string) *Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL overrides the API base URL, e.g. for a proxy.
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

// Name implements ai.Provider.
func (p *Provider) Name() string { return providerName }

// SendMessage implements ai.Provider.
func (p *Provider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%s: %w", providerName, ai.ErrMissingAPIKey)
	}

	model := request.Model
	if model == "" {
		model = p.model
	}

	// Anthropic authenticates with x-api-key, not a Bearer token.
	_, resp, err := utils.DoPostSync[anthropicResponse](ctx, p.client, p.baseURL+messagesEndpoint, "",
		requestToAnthropic(request, model),
		utils.HeaderOption{Key: "x-api-key", Value: p.apiKey},
		utils.HeaderOption{Key: "anthropic-version", Value: anthropicVersion},
	)
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

	if len(resp.Content) == 0 && resp.StopReason != "refusal" {
		return nil, fmt.Errorf("%s: %w: no content blocks in response", providerName, ai.ErrEmptyResponse)
	}

	result := anthropicToGeneric(*resp)
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
