package gemini

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/leofalp/nextpress/providers/ai"
)

// buildContents converts messages to Gemini contents. Gemini has no system
// role inside contents; stray system messages are sent as user turns.
func buildContents(messages []ai.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		role := genai.Role(genai.RoleUser)
		if msg.Role == ai.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	return contents
}

func buildConfig(request ai.ChatRequest) (*genai.GenerateContentConfig, error) {
	config := &genai.GenerateContentConfig{}

	if request.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(request.SystemPrompt, genai.RoleUser)
	}

	if cfg := request.GenerationConfig; cfg != nil {
		if cfg.Temperature != 0 {
			config.Temperature = genai.Ptr(cfg.Temperature)
		}
		if cfg.TopP != 0 {
			config.TopP = genai.Ptr(cfg.TopP)
		}
		if cfg.MaxOutputTokens > 0 {
			config.MaxOutputTokens = int32(cfg.MaxOutputTokens)
		}
	}

	if format := request.ResponseFormat; format != nil && format.OutputSchema != nil {
		schema, err := format.OutputSchema.Map()
		if err != nil {
			return nil, fmt.Errorf("invalid output schema: %w", err)
		}
		config.ResponseMIMEType = "application/json"
		config.ResponseJsonSchema = schema
	}

	return config, nil
}

func geminiToGeneric(resp *genai.GenerateContentResponse) *ai.ChatResponse {
	result := &ai.ChatResponse{
		Id:    resp.ResponseID,
		Model: resp.ModelVersion,
	}

	if resp.UsageMetadata != nil {
		result.Usage = &ai.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			result.FinishReason = "content_filter"
			result.Refusal = string(resp.PromptFeedback.BlockReason)
		}
		return result
	}

	candidate := resp.Candidates[0]
	result.FinishReason = mapFinishReason(candidate.FinishReason)

	if candidate.Content != nil {
		var textParts []string
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought || part.Text == "" {
				continue
			}
			textParts = append(textParts, part.Text)
		}
		result.Content = strings.Join(textParts, "")
	}

	if result.Content == "" && result.FinishReason == "content_filter" {
		result.Refusal = string(candidate.FinishReason)
	}

	return result
}

// mapFinishReason converts a Gemini finish reason to the generic one.
func mapFinishReason(reason genai.FinishReason) string {
	switch reason {
	case genai.FinishReasonMaxTokens:
		return ai.FinishReasonLength
	case genai.FinishReasonSafety, genai.FinishReasonRecitation, genai.FinishReasonBlocklist,
		genai.FinishReasonProhibitedContent, genai.FinishReasonSPII:
		return "content_filter"
	default:
		return "stop"
	}
}
