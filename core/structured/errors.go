package structured

import (
	"errors"
	"fmt"
)

// Sentinels matched by the three error types; use errors.Is to classify.
var (
	ErrValidation  = errors.New("validation error")
	ErrInvocation  = errors.New("invocation error")
	ErrModelOutput = errors.New("model output error")
)

// ValidationError reports an input that does not satisfy the input schema.
type ValidationError struct {
	Call string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid input: %v", e.Call, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// InvocationError reports a failed model call.
type InvocationError struct {
	Call string
	Err  error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s: model invocation failed: %v", e.Call, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

func (e *InvocationError) Is(target error) bool { return target == ErrInvocation }

// ModelOutputError reports a reply that could not be parsed into the output
// type. Raw holds the reply text as received.
type ModelOutputError struct {
	Call string
	Raw  string
	Err  error
}

func (e *ModelOutputError) Error() string {
	return fmt.Sprintf("%s: unusable model output: %v", e.Call, e.Err)
}

func (e *ModelOutputError) Unwrap() error { return e.Err }

func (e *ModelOutputError) Is(target error) bool { return target == ErrModelOutput }

// Kind names the failure category of err: "validation", "invocation",
// "model_output", or "" for nil and unrelated errors.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrInvocation):
		return "invocation"
	case errors.Is(err, ErrModelOutput):
		return "model_output"
	default:
		return ""
	}
}
