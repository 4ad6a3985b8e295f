package structured

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/nextpress/core/prompt"
	"github.com/leofalp/nextpress/internal/jsonschema"
	"github.com/leofalp/nextpress/providers/ai"
)

type summaryInput struct {
	Text string `json:"text" jsonschema:"required,minLength=1"`
	Tone string `json:"tone,omitempty"`
}

type summaryOutput struct {
	Summary  string   `json:"summary" jsonschema:"required,minLength=1"`
	Keywords []string `json:"keywords" jsonschema:"required"`
}

// stubInvoker counts calls and returns a canned reply.
type stubInvoker struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	schema  *jsonschema.Schema
	reply   string
	err     error
}

func (s *stubInvoker) Invoke(_ context.Context, prompt string, schema *jsonschema.Schema) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.prompts = append(s.prompts, prompt)
	s.schema = schema
	return s.reply, s.err
}

var summaryTemplate = prompt.Must("summary", "Summarize in a {{.Tone}} tone:\n{{.Text}}")

func newSummaryCall(t *testing.T, inv Invoker) *Call[summaryInput, summaryOutput] {
	t.Helper()
	call, err := New[summaryInput, summaryOutput](inv, Config[summaryInput]{
		Name:     "summary",
		Template: summaryTemplate,
		Defaults: func(in *summaryInput) {
			if in.Tone == "" {
				in.Tone = "neutral"
			}
		},
	})
	require.NoError(t, err)
	return call
}

func TestExecuteSuccess(t *testing.T) {
	inv := &stubInvoker{reply: `{"summary":"short","keywords":["a","b"]}`}
	call := newSummaryCall(t, inv)

	out, err := call.Execute(context.Background(), summaryInput{Text: "long text"})
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, summaryOutput{Summary: "short", Keywords: []string{"a", "b"}}, *out)

	assert.Equal(t, 1, inv.calls)
	assert.Equal(t, "Summarize in a neutral tone:\nlong text", inv.prompts[0])
	assert.Same(t, call.OutputSchema(), inv.schema)
}

func TestExecuteRejectsInvalidInputWithoutCalling(t *testing.T) {
	inv := &stubInvoker{reply: `{}`}
	call := newSummaryCall(t, inv)

	for _, text := range []string{"", "   ", "\n\t"} {
		out, err := call.Execute(context.Background(), summaryInput{Text: text})
		assert.Nil(t, out)
		assert.ErrorIs(t, err, ErrValidation)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "summary", verr.Call)
	}
	assert.Zero(t, inv.calls)
}

func TestExecuteInvocationError(t *testing.T) {
	cause := &ai.ProviderError{Provider: "stub", StatusCode: 503}
	inv := &stubInvoker{err: cause}
	call := newSummaryCall(t, inv)

	out, err := call.Execute(context.Background(), summaryInput{Text: "x"})
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrInvocation)
	assert.NotErrorIs(t, err, ErrModelOutput)

	var perr *ai.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 503, perr.StatusCode)
	assert.Equal(t, 1, inv.calls)
}

func TestExecuteCancelledContextMakesNoCall(t *testing.T) {
	inv := &stubInvoker{reply: `{"summary":"s","keywords":[]}`}
	call := newSummaryCall(t, inv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := call.Execute(ctx, summaryInput{Text: "x"})
	assert.ErrorIs(t, err, ErrInvocation)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, inv.calls)
}

func TestExecuteUnusableRepliesAreOutputErrors(t *testing.T) {
	for _, cause := range []error{ai.ErrEmptyResponse, ai.ErrTruncatedResponse, &ai.RefusalError{Reason: "no"}} {
		call := newSummaryCall(t, &stubInvoker{err: cause})

		_, err := call.Execute(context.Background(), summaryInput{Text: "x"})
		assert.ErrorIs(t, err, ErrModelOutput)
		assert.ErrorIs(t, err, cause)
	}
}

func TestDecode(t *testing.T) {
	call := newSummaryCall(t, &stubInvoker{})

	tests := []struct {
		name    string
		raw     string
		want    summaryOutput
		wantErr bool
	}{
		{"plain", `{"summary":"s","keywords":["k"]}`, summaryOutput{"s", []string{"k"}}, false},
		{"fenced", "```json\n{\"summary\":\"s\",\"keywords\":[]}\n```", summaryOutput{"s", []string{}}, false},
		{"prose and trailing comma", "Sure!\n{\"summary\": \"s\", \"keywords\": [\"k\",],}", summaryOutput{"s", []string{"k"}}, false},
		{"schema wrapped", `{"summary":{"type":"string","value":"s"},"keywords":{"type":"array","value":["k"]}}`, summaryOutput{"s", []string{"k"}}, false},
		{"extra keys ignored", `{"summary":"s","keywords":[],"confidence":0.9}`, summaryOutput{"s", []string{}}, false},
		{"not json", "I cannot help with that.", summaryOutput{}, true},
		{"missing keywords", `{"summary":"s"}`, summaryOutput{}, true},
		{"null keywords", `{"summary":"s","keywords":null}`, summaryOutput{}, true},
		{"empty summary", `{"summary":"","keywords":[]}`, summaryOutput{}, true},
		{"whitespace summary", `{"summary":"  ","keywords":[]}`, summaryOutput{}, true},
		{"wrong type", `{"summary":"s","keywords":"k"}`, summaryOutput{}, true},
		{"array root", `[{"summary":"s","keywords":[]}]`, summaryOutput{}, true},
		{"bracketed prose first", "Note [v2]:\n{\"summary\":\"s\",\"keywords\":[\"k\"]}", summaryOutput{"s", []string{"k"}}, false},
		{"truncated", `{"summary":"s","keywords":["a","b`, summaryOutput{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := call.Decode(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrModelOutput)
				var merr *ModelOutputError
				require.ErrorAs(t, err, &merr)
				assert.Equal(t, tt.raw, merr.Raw)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecuteNeverReturnsPartialResult(t *testing.T) {
	call := newSummaryCall(t, &stubInvoker{reply: `{"summary":"only this"}`})

	out, err := call.Execute(context.Background(), summaryInput{Text: "x"})
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrModelOutput)
}

func TestRenderKeepsCallerValueUntouched(t *testing.T) {
	call := newSummaryCall(t, &stubInvoker{})
	in := summaryInput{Text: "x"}

	_, err := call.Render(in)
	require.NoError(t, err)
	assert.Empty(t, in.Tone)
}

func TestRenderExplicitValueWins(t *testing.T) {
	call := newSummaryCall(t, &stubInvoker{})

	text, err := call.Render(summaryInput{Text: "x", Tone: "playful"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "Summarize in a playful tone"))
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New[summaryInput, summaryOutput](nil, Config[summaryInput]{Template: summaryTemplate})
	assert.Error(t, err)

	_, err = New[summaryInput, summaryOutput](&stubInvoker{}, Config[summaryInput]{})
	assert.Error(t, err)

	_, err = New[summaryInput, summaryOutput](&stubInvoker{}, Config[summaryInput]{Template: prompt.Must("typo", "{{.Txt}}")})
	assert.Error(t, err)
}

func TestNewDefaultsNameToTemplate(t *testing.T) {
	call, err := New[summaryInput, summaryOutput](&stubInvoker{}, Config[summaryInput]{Template: summaryTemplate})
	require.NoError(t, err)
	assert.Equal(t, "summary", call.Name())
	assert.Contains(t, call.InputSchema().Required, "text")
}

func TestKind(t *testing.T) {
	assert.Equal(t, "validation", Kind(&ValidationError{Err: errors.New("x")}))
	assert.Equal(t, "invocation", Kind(&InvocationError{Err: errors.New("x")}))
	assert.Equal(t, "model_output", Kind(&ModelOutputError{Err: errors.New("x")}))
	assert.Equal(t, "", Kind(errors.New("x")))
	assert.Equal(t, "", Kind(nil))
}

func TestErrorMessages(t *testing.T) {
	err := &InvocationError{Call: "summary", Err: errors.New("timeout")}
	assert.Equal(t, "summary: model invocation failed: timeout", err.Error())
}
