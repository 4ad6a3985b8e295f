// Package openai implements [ai.Provider] on top of the official openai-go
// SDK, using the chat completions API.
//
// When a request carries an output schema it is sent as a strict
// json_schema response format, so the API itself constrains the reply. The
// SDK's own retry loop is disabled: a SendMessage is exactly one HTTP
// request.
//
// [New] reads OPENAI_API_KEY and OPENAI_API_BASE_URL from the environment.
package openai
