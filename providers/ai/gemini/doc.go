// Package gemini implements [ai.Provider] for Google's Gemini API through
// the google.golang.org/genai SDK.
//
// An output schema is passed as ResponseJsonSchema with a JSON response MIME
// type, and the request's system prompt becomes the system instruction.
// Thought parts are never part of the returned content.
//
// [New] reads GEMINI_API_KEY and GEMINI_API_BASE_URL from the environment.
package gemini
