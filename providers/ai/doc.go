// Package ai defines the provider-agnostic request and response types shared
// by every model backend (compat, openai, gemini).
//
// A backend implements [Provider]. Requests carry the system prompt, the
// conversation messages and an optional [ResponseFormat] with the JSON Schema
// the reply must follow; each backend maps that onto its own structured
// output feature. Non-2xx answers surface as [*ProviderError].
package ai
