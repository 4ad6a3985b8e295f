// Package compat implements [ai.Provider] for any server that speaks the
// OpenAI chat completions wire format (OpenRouter, vLLM, Ollama, LocalAI,
// Azure-style gateways).
//
// Requests are plain JSON over HTTP through [utils.DoPostSync]; no SDK is
// involved, so the package also works against partial implementations that
// the official client rejects. When the request carries an output schema it
// is sent as a json_schema response_format.
//
// [New] reads OPENROUTER_API_KEY and OPENROUTER_API_BASE_URL from the
// environment. Use the With* builders to point it anywhere else.
package compat
