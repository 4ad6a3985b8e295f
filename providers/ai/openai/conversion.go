package openai

import (
	"fmt"

	"github.com/openai/openai-go"

	"github.com/leofalp/nextpress/providers/ai"
)

// requestToParams converts ai.ChatRequest into SDK parameters.
func requestToParams(request ai.ChatRequest, model string) (openai.ChatCompletionNewParams, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
	}

	if request.SystemPrompt != "" {
		params.Messages = append(params.Messages, openai.SystemMessage(request.SystemPrompt))
	}
	for _, msg := range request.Messages {
		switch msg.Role {
		case ai.RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(msg.Content))
		case ai.RoleAssistant:
			params.Messages = append(params.Messages, openai.ChatCompletionMessageParamOfAssistant(msg.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(msg.Content))
		}
	}

	if cfg := request.GenerationConfig; cfg != nil {
		if cfg.Temperature != 0 {
			params.Temperature = openai.Float(float64(cfg.Temperature))
		}
		if cfg.TopP != 0 {
			params.TopP = openai.Float(float64(cfg.TopP))
		}
		if cfg.MaxOutputTokens > 0 {
			params.MaxCompletionTokens = openai.Int(int64(cfg.MaxOutputTokens))
		}
	}

	if format := request.ResponseFormat; format != nil && format.OutputSchema != nil {
		schema := format.OutputSchema
		if format.Strict {
			// strict mode rejects minLength and optional properties
			schema = schema.StrictCopy()
		}
		schemaMap, err := schema.Map()
		if err != nil {
			return params, fmt.Errorf("invalid output schema: %w", err)
		}

		jsonSchema := openai.ResponseFormatJSONSchemaJSONSchemaParam{
			Name:   format.SchemaName(),
			Schema: schemaMap,
			Strict: openai.Bool(format.Strict),
		}
		if schema.Description != "" {
			jsonSchema.Description = openai.String(schema.Description)
		}
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: jsonSchema},
		}
	}

	return params, nil
}

// completionToGeneric converts the first choice of completion.
func completionToGeneric(completion *openai.ChatCompletion, model string) *ai.ChatResponse {
	choice := completion.Choices[0]

	out := &ai.ChatResponse{
		Id:           completion.ID,
		Model:        completion.Model,
		Content:      choice.Message.Content,
		Refusal:      choice.Message.Refusal,
		FinishReason: string(choice.FinishReason),
	}
	if out.Model == "" {
		out.Model = model
	}

	if completion.Usage.TotalTokens > 0 {
		out.Usage = &ai.Usage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		}
	}

	return out
}
