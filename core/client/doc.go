// Package client is the model-invocation layer. A [Client] owns one
// [ai.Provider] and a middleware chain and turns a rendered prompt plus an
// output schema into the model's raw reply text.
//
// The primary entry point is [New], which accepts an [ai.Provider] and
// functional options such as [WithModel], [WithSystemPrompt] and
// [WithMiddleware]. A Client is immutable after construction and safe for
// concurrent use.
package client
