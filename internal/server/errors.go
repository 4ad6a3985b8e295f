package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/leofalp/nextpress/core/structured"
)

// Error kinds returned besides "invocation" and "model_output". validation
// also covers request checks made before the optimizer runs.
const (
	kindValidation       = "validation"
	kindBadRequest       = "bad_request"
	kindTooLarge         = "too_large"
	kindRateLimited      = "rate_limited"
	kindMethodNotAllowed = "method_not_allowed"
	kindInternal         = "internal"
)

type errorBody struct {
	RequestID string      `json:"requestId"`
	Error     errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// classify maps an optimization error to an HTTP status and error kind.
func classify(err error) (int, string) {
	kind := structured.Kind(err)
	switch kind {
	case "validation":
		return http.StatusBadRequest, kind
	case "invocation":
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout, kind
		}
		return http.StatusBadGateway, kind
	case "model_output":
		return http.StatusBadGateway, kind
	default:
		return http.StatusInternalServerError, kindInternal
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, kind, message string) {
	writeJSON(w, status, errorBody{
		RequestID: RequestIDFromContext(r.Context()),
		Error:     errorDetail{Kind: kind, Message: message},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
