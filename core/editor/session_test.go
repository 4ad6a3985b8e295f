package editor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/leofalp/nextpress/core/engagement"
	"github.com/leofalp/nextpress/core/structured"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubOptimizer struct {
	calls   atomic.Int32
	lastReq engagement.OptimizationRequest
	mu      sync.Mutex
	gate    chan struct{}
	entered chan struct{}
	result  *engagement.OptimizationResult
	err     error
}

func (s *stubOptimizer) Optimize(ctx context.Context, req engagement.OptimizationRequest) (*engagement.OptimizationResult, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.lastReq = req
	s.mu.Unlock()
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	return s.result, s.err
}

var suggestion = &engagement.OptimizationResult{
	OptimizedContent: "A much punchier launch post!",
	SuggestedStyles:  []string{"punchy"},
	Explanation:      "Shorter sentences.",
}

const longDraft = "Check out our new product launch!"

func TestSuccessfulOptimization(t *testing.T) {
	opt := &stubOptimizer{result: suggestion}
	s := NewSession(opt)
	s.SetDraft(Draft{Content: longDraft, TargetAudience: "Tech enthusiasts"})

	res, err := s.Optimize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, suggestion, res)
	assert.Equal(t, StateSucceeded, s.State())
	assert.Empty(t, s.FailureKind())

	// the draft only changes when the suggestion is applied
	assert.Equal(t, longDraft, s.Draft().Content)
	require.NoError(t, s.ApplySuggestion())
	assert.Equal(t, suggestion.OptimizedContent, s.Draft().Content)
	assert.Equal(t, "Tech enthusiasts", s.Draft().TargetAudience)
}

func TestShortContentFailsLocally(t *testing.T) {
	opt := &stubOptimizer{result: suggestion}
	s := NewSession(opt)
	s.SetDraft(Draft{Content: "  too shrt  "})

	res, err := s.Optimize(context.Background())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrContentTooShort)
	assert.ErrorIs(t, err, structured.ErrValidation)
	assert.Equal(t, StateFailed, s.State())
	assert.Equal(t, "validation", s.FailureKind())
	assert.Zero(t, opt.calls.Load())
}

func TestContentLengthCountsCharacters(t *testing.T) {
	opt := &stubOptimizer{result: suggestion}
	s := NewSession(opt)
	s.SetDraft(Draft{Content: "éééééééééé"})

	_, err := s.Optimize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), opt.calls.Load())
}

func TestFailureKeepsDraft(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind string
	}{
		{"validation", &structured.ValidationError{Call: "x", Err: errors.New("bad")}, "validation"},
		{"invocation", &structured.InvocationError{Call: "x", Err: errors.New("timeout")}, "invocation"},
		{"model output", &structured.ModelOutputError{Call: "x", Err: errors.New("no json")}, "model_output"},
		{"unclassified", context.Canceled, "invocation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(&stubOptimizer{err: tt.err})
			draft := Draft{Content: longDraft, EngagementGoal: "More shares"}
			s.SetDraft(draft)

			res, err := s.Optimize(context.Background())
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, StateFailed, s.State())
			assert.Equal(t, tt.kind, s.FailureKind())
			assert.Equal(t, draft, s.Draft())
			assert.ErrorIs(t, s.ApplySuggestion(), ErrNoSuggestion)
		})
	}
}

func TestBlankOptionalFieldsAreSentAsAbsent(t *testing.T) {
	opt := &stubOptimizer{result: suggestion}
	s := NewSession(opt)
	s.SetDraft(Draft{Content: longDraft, TargetAudience: "   ", EngagementGoal: "\t", StylePreferences: " Casual "})

	_, err := s.Optimize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, engagement.OptimizationRequest{Content: longDraft, StylePreferences: "Casual"}, opt.lastReq)
}

func TestOptimizeWhileInFlightIsBusy(t *testing.T) {
	opt := &stubOptimizer{result: suggestion, gate: make(chan struct{}), entered: make(chan struct{})}
	s := NewSession(opt)
	s.SetDraft(Draft{Content: longDraft})

	done := make(chan error)
	go func() {
		_, err := s.Optimize(context.Background())
		done <- err
	}()
	<-opt.entered

	// the lock is not held during the model call
	assert.Equal(t, StateAwaitingModel, s.State())
	_, err := s.Optimize(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, s.Reset(), ErrInvalidState)

	// edits during the call do not leak into the request
	s.SetDraft(Draft{Content: "edited while waiting"})

	close(opt.gate)
	require.NoError(t, <-done)
	assert.Equal(t, StateSucceeded, s.State())
	assert.Equal(t, int32(1), opt.calls.Load())
	assert.Equal(t, longDraft, opt.lastReq.Content)
}

func TestResetAndRetry(t *testing.T) {
	opt := &stubOptimizer{err: &structured.InvocationError{Call: "x", Err: errors.New("down")}}
	s := NewSession(opt)
	s.SetDraft(Draft{Content: longDraft})

	_, err := s.Optimize(context.Background())
	require.Error(t, err)
	require.Equal(t, StateFailed, s.State())

	require.NoError(t, s.Reset())
	snap := s.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.NoError(t, snap.Err)
	assert.Nil(t, snap.Result)
	assert.Equal(t, longDraft, snap.Draft.Content)

	// Failed can also go straight back to Optimize
	opt.err = errors.New("still down")
	_, err = s.Optimize(context.Background())
	require.Error(t, err)
	opt.err, opt.result = nil, suggestion
	_, err = s.Optimize(context.Background())
	require.NoError(t, err)

	// and Succeeded accepts another Optimize without a Reset
	_, err = s.Optimize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, s.State())
	assert.Equal(t, int32(4), opt.calls.Load())
}

func TestResetFromIdleIsNoop(t *testing.T) {
	s := NewSession(&stubOptimizer{})
	assert.NoError(t, s.Reset())
	assert.Equal(t, StateIdle, s.State())
}

func TestNilResultIsModelOutputFailure(t *testing.T) {
	s := NewSession(&stubOptimizer{})
	s.SetDraft(Draft{Content: longDraft})

	_, err := s.Optimize(context.Background())
	assert.ErrorIs(t, err, structured.ErrModelOutput)
	assert.Equal(t, "model_output", s.FailureKind())
}
