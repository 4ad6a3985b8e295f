package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/leofalp/nextpress/core/engagement"
	"github.com/leofalp/nextpress/core/structured"
)

// State is the lifecycle state of a Session.
type State string

const (
	StateIdle          State = "idle"
	StateValidating    State = "validating"
	StateAwaitingModel State = "awaiting_model"
	StateSucceeded     State = "succeeded"
	StateFailed        State = "failed"
)

// MinContentLength is the shortest draft, in characters, the editor sends to
// the optimizer.
const MinContentLength = 10

var (
	ErrBusy            = errors.New("editor: an optimization is already in progress")
	ErrContentTooShort = errors.New("content too short")
	ErrNoSuggestion    = errors.New("editor: no suggestion to apply")
	ErrInvalidState    = errors.New("editor: invalid state for this action")
)

// Optimizer is the part of *engagement.Optimizer the session needs.
type Optimizer interface {
	Optimize(ctx context.Context, req engagement.OptimizationRequest) (*engagement.OptimizationResult, error)
}

// Draft is what the user is editing.
type Draft struct {
	Content          string
	TargetAudience   string
	EngagementGoal   string
	StylePreferences string
}

// request converts the draft, passing blank optional fields as absent so the
// optimizer's defaults apply.
func (d Draft) request() engagement.OptimizationRequest {
	return engagement.OptimizationRequest{
		Content:          d.Content,
		TargetAudience:   strings.TrimSpace(d.TargetAudience),
		EngagementGoal:   strings.TrimSpace(d.EngagementGoal),
		StylePreferences: strings.TrimSpace(d.StylePreferences),
	}
}

// Snapshot is a consistent copy of a session's state.
type Snapshot struct {
	State  State
	Draft  Draft
	Result *engagement.OptimizationResult
	Err    error
}

// Session is safe for concurrent use.
type Session struct {
	optimizer Optimizer
	logger    *slog.Logger

	mu     sync.Mutex
	state  State
	draft  Draft
	result *engagement.OptimizationResult
	err    error
}

// SessionOptions configures NewSession.
type SessionOptions struct {
	Logger *slog.Logger
}

// WithLogger sets the logger used for state transitions.
func WithLogger(logger *slog.Logger) func(*SessionOptions) {
	return func(o *SessionOptions) {
		o.Logger = logger
	}
}

// NewSession returns an Idle session with an empty draft.
func NewSession(optimizer Optimizer, opts ...func(*SessionOptions)) *Session {
	options := SessionOptions{Logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	return &Session{
		optimizer: optimizer,
		logger:    options.Logger,
		state:     StateIdle,
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns the current state, draft, last result and last error.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{State: s.state, Draft: s.draft, Result: s.result, Err: s.err}
}

// SetDraft replaces the draft. It is allowed in any state; an in-flight
// request keeps working on the draft it started with.
func (s *Session) SetDraft(d Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = d
}

// Draft returns the current draft.
func (s *Session) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Optimize runs one optimization of the current draft. On failure the draft
// is left untouched and the error is kept for FailureKind.
func (s *Session) Optimize(ctx context.Context) (*engagement.OptimizationResult, error) {
	s.mu.Lock()
	switch s.state {
	case StateValidating, StateAwaitingModel:
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.transition(StateValidating)
	s.result, s.err = nil, nil
	draft := s.draft

	if utf8.RuneCountInString(strings.TrimSpace(draft.Content)) < MinContentLength {
		err := &structured.ValidationError{Call: "editor", Err: ErrContentTooShort}
		s.fail(err)
		s.mu.Unlock()
		return nil, err
	}

	s.transition(StateAwaitingModel)
	s.mu.Unlock()

	result, err := s.optimizer.Optimize(ctx, draft.request())

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.fail(err)
		return nil, err
	}
	if result == nil {
		err = &structured.ModelOutputError{Call: "editor", Err: errors.New("optimizer returned no result")}
		s.fail(err)
		return nil, err
	}
	s.result = result
	s.transition(StateSucceeded)
	return result, nil
}

// ApplySuggestion replaces the draft content with the optimized content of
// the last successful result.
func (s *Session) ApplySuggestion() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSucceeded || s.result == nil {
		return ErrNoSuggestion
	}
	s.draft.Content = s.result.OptimizedContent
	return nil
}

// Reset returns a finished session to Idle, dropping the last result and
// error. The draft is kept.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateSucceeded, StateFailed:
	case StateIdle:
		return nil
	default:
		return fmt.Errorf("%w: cannot reset while %s", ErrInvalidState, s.state)
	}
	s.result, s.err = nil, nil
	s.transition(StateIdle)
	return nil
}

// Err returns the error of the last failed optimization, if the session is
// in Failed.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// FailureKind reports "validation", "invocation" or "model_output" for a
// Failed session, and "" otherwise.
func (s *Session) FailureKind() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateFailed {
		return ""
	}
	if kind := structured.Kind(s.err); kind != "" {
		return kind
	}
	// context cancellation and other errors that bypassed the optimizer
	return "invocation"
}

// fail and transition must be called with s.mu held.
func (s *Session) fail(err error) {
	s.err = err
	s.transition(StateFailed)
}

func (s *Session) transition(to State) {
	from := s.state
	s.state = to
	s.logger.Debug("editor state changed", slog.String("from", string(from)), slog.String("to", string(to)))
}
