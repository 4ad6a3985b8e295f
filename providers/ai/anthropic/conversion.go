package anthropic

import (
	"strings"

	"github.com/leofalp/nextpress/providers/ai"
)

// defaultMaxTokens is sent when the request sets no output limit; the
// Messages API rejects requests without one.
const defaultMaxTokens = 4096

// requestToAnthropic converts ai.ChatRequest to the Messages wire format.
// System-role messages are folded into the system prompt.
func requestToAnthropic(request ai.ChatRequest, model string) anthropicRequest {
	req := anthropicRequest{
		Model:     model,
		MaxTokens: defaultMaxTokens,
	}

	system := []string{}
	if request.SystemPrompt != "" {
		system = append(system, request.SystemPrompt)
	}
	for _, msg := range request.Messages {
		if msg.Role == ai.RoleSystem {
			system = append(system, msg.Content)
			continue
		}
		req.Messages = append(req.Messages, anthropicMessage{
			Role:    string(msg.Role),
			Content: []anthropicContentBlock{{Type: "text", Text: msg.Content}},
		})
	}
	req.System = strings.Join(system, "\n\n")

	if cfg := request.GenerationConfig; cfg != nil {
		if cfg.Temperature != 0 {
			// Anthropic accepts [0, 1]; the generic range is [0, 2]
			t := min(float64(cfg.Temperature), 1)
			req.Temperature = &t
		}
		if cfg.TopP != 0 {
			p := float64(cfg.TopP)
			req.TopP = &p
		}
		if cfg.MaxOutputTokens > 0 {
			req.MaxTokens = cfg.MaxOutputTokens
		}
	}

	if format := request.ResponseFormat; format != nil && format.OutputSchema != nil {
		name := format.SchemaName()
		req.Tools = []anthropicTool{{
			Name:        name,
			Description: "Return the answer in this exact structure.",
			InputSchema: format.OutputSchema,
		}}
		req.ToolChoice = &anthropicToolChoice{Type: "tool", Name: name}
	}

	return req
}

// anthropicToGeneric converts a Messages response. The input of the first
// tool_use block wins over text blocks, which are concatenated otherwise.
func anthropicToGeneric(resp anthropicResponse) *ai.ChatResponse {
	out := &ai.ChatResponse{
		Id:           resp.ID,
		Model:        resp.Model,
		FinishReason: mapStopReason(resp.StopReason),
		Usage: &ai.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}

	var text strings.Builder
	for _, block := range resp.Content {
		switch block.Type {
		case "tool_use":
			if out.Content == "" && len(block.Input) > 0 {
				out.Content = string(block.Input)
			}
		case "text":
			text.WriteString(block.Text)
		}
	}
	if out.Content == "" {
		out.Content = text.String()
	}

	if resp.StopReason == "refusal" {
		out.Refusal = strings.TrimSpace(text.String())
		if out.Refusal == "" {
			out.Refusal = "refused by the model"
		}
		out.Content = ""
	}
	return out
}

// mapStopReason maps Anthropic stop reasons to the OpenAI-style names used
// across providers.
func mapStopReason(reason string) string {
	switch reason {
	case "end_turn", "tool_use", "stop_sequence":
		return "stop"
	case "max_tokens":
		return ai.FinishReasonLength
	case "refusal":
		return "content_filter"
	default:
		return reason
	}
}
