// Package structured implements a single structured prompt call: validate a
// typed input against its schema, apply defaults, render a fixed template,
// invoke the model once and validate the reply against the output schema.
//
// Every failure is one of three kinds, each matching a sentinel with
// errors.Is:
//
//   - [ValidationError] / [ErrValidation]: the input broke its schema. No model call was made.
//   - [InvocationError] / [ErrInvocation]: the model call itself failed (network, auth, quota, cancellation).
//   - [ModelOutputError] / [ErrModelOutput]: the model answered with something that does not fit the output schema.
//
// A [Call] never returns a partial result and never retries.
package structured
