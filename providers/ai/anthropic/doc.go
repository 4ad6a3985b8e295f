// Package anthropic implements [ai.Provider] for Anthropic's Messages API
// over plain HTTP.
//
// The Messages API has no JSON response mode, so a request with an output
// schema is sent as a single forced tool whose input schema is the output
// schema; the tool input the model produces becomes the reply content.
package anthropic
