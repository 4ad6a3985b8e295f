package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/leofalp/nextpress/providers/ai"
)

const (
	providerName = "gemini"
	defaultModel = "gemini-2.0-flash-lite" // Most cost-effective model
)

// Provider implements ai.Provider for the Gemini API.
type Provider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// New creates a provider with values from the environment:
//   - GEMINI_API_KEY: API key for authentication
//   - GEMINI_API_BASE_URL: base URL (optional, the SDK default otherwise)
func New() *Provider {
	p := &Provider{
		apiKey: os.Getenv("GEMINI_API_KEY"),
		model:  defaultModel,
		client: &http.Client{},
	}
	if baseURL := os.Getenv("GEMINI_API_BASE_URL"); baseURL != "" {
		p.WithBaseURL(baseURL)
	}
	return p
}

// WithAPIKey sets the API key for the provider.
func (p *Provider) WithAPIKey(apiKey string) *Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API.
func (p *Provider) WithBaseURL(baseURL string) *Provider {
	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	p.baseURL = baseURL
	return p
}

// WithHttpClient sets a custom HTTP client.
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

func (p *Provider) newClient(ctx context.Context) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      p.apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  p.client,
		HTTPOptions: genai.HTTPOptions{BaseURL: p.baseURL},
	})
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

	client, err := p.newClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create client: %w", providerName, err)
	}

	config, err := buildConfig(request)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", providerName, err)
	}

	resp, err := client.Models.GenerateContent(ctx, model, buildContents(request.Messages), config)
	if err != nil {
		if providerErr := asProviderError(err); providerErr != nil {
			return nil, providerErr
		}
		return nil, fmt.Errorf("%s: %w", providerName, err)
	}

	result := geminiToGeneric(resp)
	if result.Model == "" {
		result.Model = model
	}
	if result.Content == "" && result.Refusal == "" && len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%s: %w: no candidates in response", providerName, ai.ErrEmptyResponse)
	}
	return result, nil
}

// asProviderError maps SDK API errors, which may arrive by value or by
// pointer, to *ai.ProviderError.
func asProviderError(err error) *ai.ProviderError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &ai.ProviderError{Provider: providerName, StatusCode: apiErr.Code, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &ai.ProviderError{Provider: providerName, StatusCode: apiErrPtr.Code, Message: apiErrPtr.Message}
	}
	return nil
}
