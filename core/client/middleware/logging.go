package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/leofalp/nextpress/core/client"
	"github.com/leofalp/nextpress/internal/utils"
	"github.com/leofalp/nextpress/providers/ai"
)

// LogLevel controls how much detail the logging middleware emits per request.
type LogLevel int

const (
	// LogLevelMinimal logs the model, duration and token counts.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard adds whether a schema was sent, the prompt length and
	// the finish reason.
	LogLevelStandard

	// LogLevelVerbose adds the system prompt, the user prompt and the reply,
	// each truncated to 500 characters.
	//
	// WARNING: prompts carry user content. Do not use in production.
	LogLevelVerbose
)

// ParseLogLevel maps "minimal", "standard" and "verbose" to a LogLevel.
// Anything else is LogLevelStandard.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "minimal":
		return LogLevelMinimal
	case "verbose":
		return LogLevelVerbose
	default:
		return LogLevelStandard
	}
}

// truncateLen is the maximum content length included in verbose log output.
const truncateLen = 500

// NewLoggingMiddleware returns a middleware that logs every provider call at
// debug level on the way in and at info (or error) level on the way out. A
// nil logger uses slog.Default().
func NewLoggingMiddleware(logger *slog.Logger, level LogLevel) client.Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			logger.DebugContext(ctx, "llm send", buildRequestAttrs(request, level)...)

			start := time.Now()
			response, err := next(ctx, request)
			elapsed := time.Since(start)

			if err != nil {
				logger.ErrorContext(ctx, "llm send failed",
					slog.String("model", request.Model),
					slog.Duration("duration", elapsed),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			logger.InfoContext(ctx, "llm send completed", buildResponseAttrs(response, elapsed, level)...)
			return response, nil
		}
	}
}

func buildRequestAttrs(request ai.ChatRequest, level LogLevel) []any {
	attrs := []any{
		slog.String("model", request.Model),
	}

	if level >= LogLevelStandard {
		promptLen := 0
		for _, m := range request.Messages {
			promptLen += len(m.Content)
		}
		attrs = append(attrs,
			slog.Bool("structured", request.ResponseFormat != nil && request.ResponseFormat.OutputSchema != nil),
			slog.Int("prompt_bytes", promptLen),
		)
	}

	if level >= LogLevelVerbose {
		attrs = append(attrs, slog.String("system_prompt", utils.TruncateString(request.SystemPrompt, truncateLen)))
		if len(request.Messages) > 0 {
			attrs = append(attrs, slog.String("prompt", utils.TruncateString(request.Messages[0].Content, truncateLen)))
		}
	}

	return attrs
}

func buildResponseAttrs(response *ai.ChatResponse, elapsed time.Duration, level LogLevel) []any {
	if response == nil {
		return []any{slog.Duration("duration", elapsed), slog.Bool("empty", true)}
	}

	attrs := []any{
		slog.String("model", response.Model),
		slog.Duration("duration", elapsed),
	}

	if response.Usage != nil {
		attrs = append(attrs,
			slog.Int("prompt_tokens", response.Usage.PromptTokens),
			slog.Int("completion_tokens", response.Usage.CompletionTokens),
			slog.Int("total_tokens", response.Usage.TotalTokens),
		)
	}

	if level >= LogLevelStandard && response.FinishReason != "" {
		attrs = append(attrs, slog.String("finish_reason", response.FinishReason))
	}

	if level >= LogLevelVerbose && response.Content != "" {
		attrs = append(attrs, slog.String("response_content", utils.TruncateString(response.Content, truncateLen)))
	}

	return attrs
}
