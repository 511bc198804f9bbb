package agent

import (
	"errors"
	"time"

	"github.com/randalmurphal/chatgraph/pkg/chatgraph"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/llm"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/observability"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/template"
	"github.com/randalmurphal/chatgraph/pkg/agent/tool"
)

// historyWindow is how many recent history messages the classifier,
// rewriter, and dispatcher include for context.
const historyWindow = 6

// responseHistoryWindow is the smaller window the responder uses when
// synthesizing an answer (one prior exchange).
const responseHistoryWindow = 2

// errNoModelClient is returned when a node runs without a configured gateway.
var errNoModelClient = errors.New("agent: no model client configured")

// nodes holds the per-session collaborators shared by the graph handlers.
type nodes struct {
	history History
	tools   *tool.Registry
	metrics observability.MetricsRecorder
}

// complete performs one gateway call with logging and token accounting.
func (n *nodes) complete(ctx chatgraph.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	client := ctx.LLM()
	if client == nil {
		return nil, errNoModelClient
	}

	start := time.Now()
	resp, err := client.Complete(ctx, req)
	durationMs := float64(time.Since(start).Milliseconds())

	var inputTokens, outputTokens int64
	if resp != nil {
		inputTokens = int64(resp.Usage.InputTokens)
		outputTokens = int64(resp.Usage.OutputTokens)
	}

	observability.LogLLMCall(ctx.Logger(), client.Model(), durationMs, inputTokens, outputTokens, err)
	if err == nil {
		n.metrics.RecordLLMTokens(ctx, client.Model(), inputTokens, outputTokens)
	}
	return resp, err
}

// classify asks the model for an intent decision on the current message.
//
// Gateway failures never propagate: the node degrades to an error-intent
// decision so the router still has something to act on.
func (n *nodes) classify(ctx chatgraph.Context, state TurnState) (TurnState, error) {
	message := state.CurrentMessage
	if message == "" {
		message = state.OriginalMessage
	}

	messages := append(n.history.Last(historyWindow), llm.Message{
		Role:    llm.RoleUser,
		Content: message,
	})

	decision, err := n.completeDecision(ctx, llm.CompletionRequest{
		SystemPrompt:   supervisorPrompt,
		Messages:       messages,
		ResponseSchema: decisionSchema(),
	})
	if err != nil {
		ctx.Logger().Error("classification failed", "error", err)
		decision = Decision{
			Intent:       IntentError,
			Confidence:   0,
			NeedsRewrite: false,
			Reasoning:    "Error in supervisor: " + err.Error(),
		}
	}

	state.Classification = &decision
	state.CurrentMessage = message
	state.IterationCount++

	ctx.Logger().Info("message classified",
		"intent", string(decision.Intent),
		"confidence", decision.Confidence,
		"needs_rewrite", decision.NeedsRewrite,
	)
	return state, nil
}

// completeDecision runs a schema-constrained call and decodes a Decision.
func (n *nodes) completeDecision(ctx chatgraph.Context, req llm.CompletionRequest) (Decision, error) {
	resp, err := n.complete(ctx, req)
	if err != nil {
		return Decision{}, err
	}

	var decision Decision
	if err := llm.DecodeStrict(resp.Content, &decision); err != nil {
		return Decision{}, err
	}
	return decision, nil
}

// rewrite clarifies an ambiguous message and loops the turn back to the
// classifier.
//
// The node always records a RewriteResult, even on failure: the router
// re-enters the rewriter only while Rewrite is unset, so an unrecorded
// failure would cycle classify/rewrite forever. A failed rewrite records
// an echo of the unmodified message instead.
func (n *nodes) rewrite(ctx chatgraph.Context, state TurnState) (TurnState, error) {
	messages := n.history.Last(historyWindow)

	if state.Classification != nil && state.Classification.Reasoning != "" {
		context := template.Expand(reasoningContextTemplate, map[string]any{
			"reasoning": state.Classification.Reasoning,
		})
		messages = append(messages, llm.Message{
			Role:    llm.RoleAssistant,
			Content: context,
		})
	}

	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: state.OriginalMessage,
	})

	result, err := n.completeRewrite(ctx, llm.CompletionRequest{
		SystemPrompt:   rewriterPrompt,
		Messages:       messages,
		ResponseSchema: rewriteSchema(),
	})
	if err != nil {
		ctx.Logger().Error("rewrite failed, keeping original message", "error", err)
		echo := state.CurrentMessage
		if echo == "" {
			echo = state.OriginalMessage
		}
		state.Rewrite = &RewriteResult{
			RewrittenMessage: echo,
			Confidence:       0,
		}
		return state, nil
	}

	state.Rewrite = &result
	state.CurrentMessage = result.RewrittenMessage

	ctx.Logger().Info("message rewritten", "rewritten_message", result.RewrittenMessage)
	return state, nil
}

// completeRewrite runs a schema-constrained call and decodes a RewriteResult.
func (n *nodes) completeRewrite(ctx chatgraph.Context, req llm.CompletionRequest) (RewriteResult, error) {
	resp, err := n.complete(ctx, req)
	if err != nil {
		return RewriteResult{}, err
	}

	var result RewriteResult
	if err := llm.DecodeStrict(resp.Content, &result); err != nil {
		return RewriteResult{}, err
	}
	return result, nil
}
