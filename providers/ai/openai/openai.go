package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/leofalp/nextpress/providers/ai"
)

const (
	providerName   = "openai"
	defaultBaseURL = "https://api.openai.com/v1/"
	defaultModel   = "gpt-4o-mini"
)

// Provider implements ai.Provider for the OpenAI API.
type Provider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// New creates a provider with values from the environment:
//   - OPENAI_API_KEY: API key for authentication
//   - OPENAI_API_BASE_URL: base URL (optional, defaults to OpenAI's API)
func New() *Provider {
	p := &Provider{
		apiKey:  os.Getenv("OPENAI_API_KEY"),
		baseURL: defaultBaseURL,
		model:   defaultModel,
		client:  &http.Client{},
	}
	if baseURL := os.Getenv("OPENAI_API_BASE_URL"); baseURL != "" {
		p.WithBaseURL(baseURL)
	}
	return p
}

// WithAPIKey sets the API key for the provider
func (p *Provider) WithAPIKey(apiKey string) *Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API
func (p *Provider) WithBaseURL(baseURL string) *Provider {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	p.baseURL = baseURL
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

func (p *Provider) newClient() openai.Client {
	return openai.NewClient(
		option.WithAPIKey(p.apiKey),
		option.WithBaseURL(p.baseURL),
		option.WithHTTPClient(p.client),
		option.WithMaxRetries(0),
	)
}

// SendMessage implements ai.Provider.
func (p *Provider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%s: %w", providerName, ai.ErrMissingAPIKey)
	}

	model := request.Model
	if model == "" {
		model = p.model
	}

	params, err := requestToParams(request, model)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", providerName, err)
	}

	client := p.newClient()
	completion, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &ai.ProviderError{
				Provider:   providerName,
				StatusCode: apiErr.StatusCode,
				Message:    apiErr.Message,
			}
		}
		return nil, fmt.Errorf("%s: %w", providerName, err)
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%s: %w: no choices in response", providerName, ai.ErrEmptyResponse)
	}

	return completionToGeneric(completion, model), nil
}
