package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/chatgraph/pkg/chatgraph"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/llm"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/observability"
	"github.com/randalmurphal/chatgraph/pkg/agent/tool"
)

// stubTool is a test double for the tool catalog.
type stubTool struct {
	name string
	fn   func(args map[string]any) (string, error)
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub tool " + s.name }
func (s *stubTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}
func (s *stubTool) Execute(_ context.Context, args map[string]any) (string, error) {
	return s.fn(args)
}

// newTestNodes builds a node set over a mock gateway and optional tools.
func newTestNodes(client llm.Client, tools ...tool.Tool) (*nodes, chatgraph.Context) {
	registry := tool.NewRegistry()
	for _, t := range tools {
		registry.Register(t)
	}

	n := &nodes{
		history: NewChatHistory(),
		tools:   registry,
		metrics: observability.NoopMetrics{},
	}
	ctx := chatgraph.NewContext(context.Background(), chatgraph.WithLLM(client))
	return n, ctx
}

// decisionJSON renders a classifier decision as the model would emit it.
func decisionJSON(intent Intent, confidence float64, needsRewrite bool, reasoning string) string {
	return fmt.Sprintf(
		`{"intent":%q,"confidence":%g,"needs_rewrite":%t,"reasoning":%q}`,
		intent, confidence, needsRewrite, reasoning,
	)
}

// rewriteJSON renders a rewriter result as the model would emit it.
func rewriteJSON(message string, confidence float64) string {
	return fmt.Sprintf(
		`{"rewritten_message":%q,"clarifications_added":[],"confidence":%g}`,
		message, confidence,
	)
}

func TestClassify(t *testing.T) {
	client := llm.NewMockClient(decisionJSON(IntentToolRequired, 0.92, false, "user wants asset data"))
	n, ctx := newTestNodes(client)

	state, err := n.classify(ctx, TurnState{OriginalMessage: "show machines"})

	require.NoError(t, err)
	require.NotNil(t, state.Classification)
	assert.Equal(t, IntentToolRequired, state.Classification.Intent)
	assert.Equal(t, 0.92, state.Classification.Confidence)
	assert.False(t, state.Classification.NeedsRewrite)
	assert.Equal(t, "show machines", state.CurrentMessage)
	assert.Equal(t, 1, state.IterationCount)

	// The classifier call is schema-constrained.
	require.Equal(t, 1, client.CallCount())
	assert.NotNil(t, client.LastCall().ResponseSchema)
}

func TestClassify_PrefersCurrentMessage(t *testing.T) {
	client := llm.NewMockClient(decisionJSON(IntentToolRequired, 0.9, false, "ok"))
	n, ctx := newTestNodes(client)

	state, err := n.classify(ctx, TurnState{
		OriginalMessage: "check the sensor",
		CurrentMessage:  "check temperature on sensor pump-01",
		IterationCount:  1,
	})

	require.NoError(t, err)
	assert.Equal(t, "check temperature on sensor pump-01", state.CurrentMessage)
	assert.Equal(t, 2, state.IterationCount)

	last := client.LastCall()
	require.NotEmpty(t, last.Messages)
	assert.Equal(t, "check temperature on sensor pump-01", last.Messages[len(last.Messages)-1].Content)
}

func TestClassify_GatewayFailureDegrades(t *testing.T) {
	client := llm.NewMockClient("").WithError(errors.New("rate limited"))
	n, ctx := newTestNodes(client)

	state, err := n.classify(ctx, TurnState{OriginalMessage: "hello"})

	require.NoError(t, err)
	require.NotNil(t, state.Classification)
	assert.Equal(t, IntentError, state.Classification.Intent)
	assert.Equal(t, 0.0, state.Classification.Confidence)
	assert.False(t, state.Classification.NeedsRewrite)
	assert.Equal(t, "Error in supervisor: rate limited", state.Classification.Reasoning)
	assert.Equal(t, 1, state.IterationCount)
}

func TestClassify_MalformedOutputDegrades(t *testing.T) {
	client := llm.NewMockClient("this is not json")
	n, ctx := newTestNodes(client)

	state, err := n.classify(ctx, TurnState{OriginalMessage: "hello"})

	require.NoError(t, err)
	require.NotNil(t, state.Classification)
	assert.Equal(t, IntentError, state.Classification.Intent)
	assert.Contains(t, state.Classification.Reasoning, "Error in supervisor: ")
}

func TestClassify_NoClient(t *testing.T) {
	n, _ := newTestNodes(llm.NewMockClient(""))
	ctx := chatgraph.NewContext(context.Background())

	state, err := n.classify(ctx, TurnState{OriginalMessage: "hello"})

	require.NoError(t, err)
	assert.Equal(t, IntentError, state.Classification.Intent)
}

func TestRewrite(t *testing.T) {
	client := llm.NewMockClient(rewriteJSON("check temperature on sensor pump-01", 0.85))
	n, ctx := newTestNodes(client)

	state, err := n.rewrite(ctx, TurnState{
		OriginalMessage: "check the sensor",
		CurrentMessage:  "check the sensor",
		Classification: &Decision{
			Intent:       IntentUnclear,
			NeedsRewrite: true,
			Reasoning:    "which sensor is ambiguous",
		},
	})

	require.NoError(t, err)
	require.NotNil(t, state.Rewrite)
	assert.Equal(t, "check temperature on sensor pump-01", state.Rewrite.RewrittenMessage)
	assert.Equal(t, "check temperature on sensor pump-01", state.CurrentMessage)
	assert.Equal(t, "check the sensor", state.OriginalMessage)

	// The classifier's reasoning is handed to the rewriter as context.
	last := client.LastCall()
	require.GreaterOrEqual(t, len(last.Messages), 2)
	assert.Equal(t, "Supervisor reasoning: which sensor is ambiguous", last.Messages[len(last.Messages)-2].Content)
	assert.Equal(t, "check the sensor", last.Messages[len(last.Messages)-1].Content)
}

func TestRewrite_FailureRecordsEcho(t *testing.T) {
	client := llm.NewMockClient("").WithError(errors.New("gateway down"))
	n, ctx := newTestNodes(client)

	state, err := n.rewrite(ctx, TurnState{
		OriginalMessage: "check the sensor",
		CurrentMessage:  "check the sensor",
		Classification:  &Decision{Intent: IntentUnclear, NeedsRewrite: true},
	})

	require.NoError(t, err)

	// A rewrite is always recorded so the classify/rewrite cycle cannot
	// repeat. The echo keeps the message unchanged.
	require.NotNil(t, state.Rewrite)
	assert.Equal(t, "check the sensor", state.Rewrite.RewrittenMessage)
	assert.Equal(t, 0.0, state.Rewrite.Confidence)
	assert.Equal(t, "check the sensor", state.CurrentMessage)
	assert.Equal(t, nodeDispatch, route(TurnState{
		Classification: &Decision{Intent: IntentToolRequired, NeedsRewrite: true},
		Rewrite:        state.Rewrite,
	}))
}

func TestRewrite_MalformedOutputRecordsEcho(t *testing.T) {
	client := llm.NewMockClient("```\nnot json\n```")
	n, ctx := newTestNodes(client)

	state, err := n.rewrite(ctx, TurnState{
		OriginalMessage: "check the sensor",
		Classification:  &Decision{Intent: IntentUnclear, NeedsRewrite: true},
	})

	require.NoError(t, err)
	require.NotNil(t, state.Rewrite)
	assert.Equal(t, "check the sensor", state.Rewrite.RewrittenMessage)
}
