package agent

import (
	"github.com/randalmurphal/chatgraph/pkg/chatgraph"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/llm"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/template"
)

// synthesisFallback is returned when response synthesis fails or the
// model reply has an unexpected shape.
const synthesisFallback = "I apologize, but I couldn't generate a proper response. Please try again."

// respond finalizes the turn. Answer text is chosen by precedence:
//
//  1. the dispatch loop already produced a final answer (KeyFinalResponse)
//  2. the dispatch loop stored a user-facing error (KeyError)
//  3. synthesize a fresh response from the original message, recent
//     history, and a summary of tool results
//
// Whatever path is taken, the node appends the exchange to conversation
// history and populates the turn metadata.
func (n *nodes) respond(ctx chatgraph.Context, state TurnState) (TurnState, error) {
	switch {
	case state.ToolResults.Has(KeyFinalResponse):
		text, _ := state.ToolResults.Get(KeyFinalResponse)
		state.FinalResponse = text
		ctx.Logger().Debug("using final answer from dispatch loop")

	case state.ToolResults.Has(KeyError):
		text, _ := state.ToolResults.Get(KeyError)
		state.FinalResponse = text
		ctx.Logger().Debug("using error text from dispatch loop")

	default:
		state.FinalResponse = n.synthesize(ctx, state)
	}

	userMessage := state.CurrentMessage
	if userMessage == "" {
		userMessage = state.OriginalMessage
	}
	n.history.AppendUser(userMessage)
	n.history.AppendAssistant(state.FinalResponse)

	state.Metadata = turnMetadata(state)

	ctx.Logger().Info("turn completed",
		"response_len", len(state.FinalResponse),
		"iterations", state.IterationCount,
	)
	return state, nil
}

// synthesize asks the model for a fresh answer, falling back to a fixed
// apology when the call fails or returns nothing.
func (n *nodes) synthesize(ctx chatgraph.Context, state TurnState) string {
	messages := n.history.Last(responseHistoryWindow)

	if summary := state.ToolResults.Summary(); summary != "" {
		messages = append(messages, llm.Message{
			Role:    llm.RoleAssistant,
			Content: template.Expand(toolSummaryTemplate, map[string]any{"summary": summary}),
		})
	}

	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: state.OriginalMessage,
	})

	resp, err := n.complete(ctx, llm.CompletionRequest{
		SystemPrompt: responsePrompt,
		Messages:     messages,
	})
	if err != nil {
		ctx.Logger().Error("response synthesis failed", "error", err)
		return synthesisFallback
	}
	if resp.Content == "" {
		ctx.Logger().Warn("response synthesis returned empty content")
		return synthesisFallback
	}
	return resp.Content
}

// turnMetadata builds the diagnostic summary every completed turn carries.
func turnMetadata(state TurnState) map[string]any {
	intent := "unknown"
	confidence := 0.0
	if state.Classification != nil {
		intent = string(state.Classification.Intent)
		confidence = state.Classification.Confidence
	}

	toolsUsed := state.ToolResults.Keys()
	if toolsUsed == nil {
		toolsUsed = []string{}
	}

	return map[string]any{
		"intent":        intent,
		"confidence":    confidence,
		"tools_used":    toolsUsed,
		"iterations":    state.IterationCount,
		"was_rewritten": state.Rewrite != nil,
	}
}
