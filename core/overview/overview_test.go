package overview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/leofalp/nextpress/core/client"
	"github.com/leofalp/nextpress/core/cost"
	"github.com/leofalp/nextpress/providers/ai"
)

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Error("expected nil Overview on a bare context")
	}

	o := New(cost.ModelCost{})
	ctx := o.ToContext(context.Background())
	if FromContext(ctx) != o {
		t.Error("expected the stored Overview back")
	}
}

func TestRecordAccumulatesUsage(t *testing.T) {
	o := New(cost.ModelCost{InputCostPerMillion: 1, OutputCostPerMillion: 2})

	o.Record(&ai.ChatResponse{Model: "m-1", Usage: &ai.Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150}}, time.Second, nil)
	o.Record(nil, time.Second, errors.New("boom"))
	o.Record(&ai.ChatResponse{Usage: &ai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}}, time.Second, nil)

	s := o.Snapshot()
	if s.Calls != 3 || s.Failures != 1 {
		t.Errorf("expected 3 calls and 1 failure, got %d and %d", s.Calls, s.Failures)
	}
	if s.Model != "m-1" {
		t.Errorf("expected model m-1, got %q", s.Model)
	}
	if s.Usage.TotalTokens != 165 {
		t.Errorf("expected 165 total tokens, got %d", s.Usage.TotalTokens)
	}
	if s.Duration != 3*time.Second {
		t.Errorf("expected 3s, got %v", s.Duration)
	}
	if s.Cost == nil {
		t.Fatal("expected a cost summary")
	}
	want := 110.0/1e6 + 2*55.0/1e6
	if diff := s.Cost.TotalCost - want; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("expected total cost %g, got %g", want, s.Cost.TotalCost)
	}
}

func TestSnapshotWithoutPriceOmitsCost(t *testing.T) {
	o := New(cost.ModelCost{})
	o.Record(&ai.ChatResponse{Usage: &ai.Usage{PromptTokens: 1}}, 0, nil)

	if o.Snapshot().Cost != nil {
		t.Error("expected no cost summary without a configured price")
	}
}

func TestMiddleware(t *testing.T) {
	var send client.SendFunc = func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
		return &ai.ChatResponse{Model: "m", Usage: &ai.Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5}}, nil
	}
	wrapped := Middleware()(send)

	// without an Overview the call still goes through
	if _, err := wrapped(context.Background(), ai.ChatRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	o := New(cost.ModelCost{})
	ctx := o.ToContext(context.Background())

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = wrapped(ctx, ai.ChatRequest{})
		}()
	}
	wg.Wait()

	s := o.Snapshot()
	if s.Calls != 10 {
		t.Errorf("expected 10 calls, got %d", s.Calls)
	}
	if s.Usage.TotalTokens != 50 {
		t.Errorf("expected 50 total tokens, got %d", s.Usage.TotalTokens)
	}
}
