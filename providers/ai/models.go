package ai

import (
	"github.com/leofalp/nextpress/internal/jsonschema"
)

/*
	##### PROVIDER INPUT #####
*/

// ChatRequest represents a request to send a chat message
type ChatRequest struct {
	Model            string            `json:"model,omitempty"`             // Model name or identifier; empty means the provider default
	Messages         []Message         `json:"messages"`                    // Conversation messages except the system prompt
	SystemPrompt     string            `json:"system_prompt,omitempty"`     // Optional system prompt
	ResponseFormat   *ResponseFormat   `json:"response_format,omitempty"`   // Optional response format
	GenerationConfig *GenerationConfig `json:"generation_config,omitempty"` // Optional generation configuration
}

// Message represents a single message in a conversation
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content,omitempty"`
}

type GenerationConfig struct {
	MaxOutputTokens int     `json:"max_output_tokens,omitempty"`
	Temperature     float32 `json:"temperature,omitempty"` // Sampling temperature [0..2]. Higher => more random.
	TopP            float32 `json:"top_p,omitempty"`       // Nucleus sampling [0..1]
}

type ResponseFormat struct {
	OutputSchema *jsonschema.Schema `json:"output_schema,omitempty"` // Schema the reply must follow
	// Name labels the schema for providers that require one (OpenAI). Defaults to "response".
	Name   string `json:"name,omitempty"`
	Strict bool   `json:"strict,omitempty"` // Ask the provider to enforce the schema, if supported
}

// SchemaName returns Name, or "response" when it is empty.
func (f *ResponseFormat) SchemaName() string {
	if f == nil || f.Name == "" {
		return "response"
	}
	return f.Name
}

/*
	##### PROVIDER OUTPUT #####
*/

type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// Add accumulates other into u. A nil other is ignored.
func (u *Usage) Add(other *Usage) {
	if other == nil {
		return
	}
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// FinishReasonLength is the generic finish reason of a reply cut off at the
// output token limit.
const FinishReasonLength = "length"

// ChatResponse represents the response from a chat completion
type ChatResponse struct {
	Id           string `json:"id"`
	Model        string `json:"model"`
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`

	// Refusal is set when the model declines to answer (safety/policy)
	Refusal string `json:"refusal,omitempty"`
}

// MessageRole represents the role of a message; compatible with string
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // System instructions/configuration
	RoleUser      MessageRole = "user"      // End-user message
	RoleAssistant MessageRole = "assistant" // Model reply
)
