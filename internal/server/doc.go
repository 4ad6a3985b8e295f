// Package server exposes the optimizer over HTTP.
//
// Routes:
//
//	POST /api/v1/optimize   run one optimization
//	GET  /healthz           liveness
//	GET  /metrics           Prometheus metrics (when a collector is set)
//
// Every response carries X-Request-ID, echoed from the request or generated.
// Errors are JSON: {"requestId": "...", "error": {"kind": "...", "message": "..."}}.
package server
