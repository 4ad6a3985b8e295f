package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/leofalp/nextpress/core/engagement"
	"github.com/leofalp/nextpress/internal/markup"
	"github.com/leofalp/nextpress/internal/metrics"
)

// Optimizer is the part of *engagement.Optimizer the server needs.
type Optimizer interface {
	Optimize(ctx context.Context, req engagement.OptimizationRequest) (*engagement.OptimizationResult, error)
}

// Options configures New. Zero values take the defaults noted per field.
type Options struct {
	// RequestTimeout bounds one optimization. Default: 60s.
	RequestTimeout time.Duration
	// MaxBodyBytes caps the request body. Default: 1 MiB.
	MaxBodyBytes int64
	// RateLimit is requests per second per client IP; 0 disables limiting.
	RateLimit float64
	// RateBurst is the bucket size per client IP; values below 1 mean 1.
	RateBurst int
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Metrics is optional; without it /metrics is not served.
	Metrics *metrics.Collector
}

// Server serves the HTTP API.
type Server struct {
	optimizer Optimizer
	opts      Options
	logger    *slog.Logger
	handler   http.Handler
}

// New builds a Server around optimizer.
func New(optimizer Optimizer, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		optimizer: optimizer,
		opts:      opts,
		logger:    logger.With(slog.String("component", "server")),
	}

	var optimize http.Handler = http.HandlerFunc(s.handleOptimize)
	if opts.RateLimit > 0 {
		optimize = RateLimiter(opts.RateLimit, max(1, opts.RateBurst))(optimize)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/optimize", optimize)
	mux.HandleFunc("/healthz", s.handleHealth)
	if opts.Metrics != nil {
		mux.Handle("/metrics", opts.Metrics.Handler())
	}

	s.handler = Chain(mux,
		RequestID(),
		Recovery(s.logger),
		RequestLogger(s.logger, opts.Metrics),
	)
	return s
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully, waiting at most shutdownTimeout for in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener, shutdownTimeout)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener, shutdownTimeout time.Duration) error {
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		// the write deadline must outlive the optimization itself
		WriteTimeout: s.opts.RequestTimeout + 10*time.Second,
		IdleTimeout:  2 * time.Minute,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", slog.String("addr", listener.Addr().String()))
		errCh <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// optimizeRequest is the POST /api/v1/optimize body.
type optimizeRequest struct {
	Content          string `json:"content"`
	TargetAudience   string `json:"targetAudience,omitempty"`
	EngagementGoal   string `json:"engagementGoal,omitempty"`
	StylePreferences string `json:"stylePreferences,omitempty"`
	Format           string `json:"format,omitempty"`
}

type optimizeResponse struct {
	RequestID            string                         `json:"requestId"`
	Result               *engagement.OptimizationResult `json:"result"`
	OptimizedContentHTML string                         `json:"optimizedContentHtml,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, kindMethodNotAllowed, "use POST")
		return
	}

	var body optimizeRequest
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, kindTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, r, http.StatusBadRequest, kindBadRequest, "malformed JSON body: "+err.Error())
		return
	}

	format, err := markup.ParseFormat(body.Format)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, kindValidation, err.Error())
		return
	}
	content, err := markup.Normalize(body.Content, format)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestTimeout)
	defer cancel()

	result, err := s.optimizer.Optimize(ctx, engagement.OptimizationRequest{
		Content:          content,
		TargetAudience:   body.TargetAudience,
		EngagementGoal:   body.EngagementGoal,
		StylePreferences: body.StylePreferences,
	})
	if s.opts.Metrics != nil {
		s.opts.Metrics.RecordOptimization(err)
	}
	if err != nil {
		status, kind := classify(err)
		s.logger.WarnContext(r.Context(), "optimization failed",
			slog.String("kind", kind),
			slog.String("request_id", RequestIDFromContext(r.Context())),
			slog.String("error", err.Error()),
		)
		writeError(w, r, status, kind, err.Error())
		return
	}

	resp := optimizeResponse{
		RequestID: RequestIDFromContext(r.Context()),
		Result:    result,
	}
	if format == markup.FormatHTML {
		html, err := markup.ToHTML(result.OptimizedContent)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, kindInternal, err.Error())
			return
		}
		resp.OptimizedContentHTML = html
	}
	writeJSON(w, http.StatusOK, resp)
}
