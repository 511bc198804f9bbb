package agent

import (
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/randalmurphal/chatgraph/pkg/chatgraph"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/llm"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/observability"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/template"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxDispatchIterations bounds the reactive tool loop. After this many
// model calls that each request tools, one final unconstrained call is
// forced to produce an answer.
const maxDispatchIterations = 5

// dispatch runs the reactive tool loop: the model sees the registered
// tools, may request invocations, observes their results, and repeats
// until it answers in plain text or the iteration budget runs out.
//
// Three termination paths:
//   - the model replies without tool calls: its text is stored under
//     KeyFinalResponse and the node exits immediately
//   - the budget is exhausted: one forced final call produces the answer
//   - the gateway itself fails: a user-facing error string is stored
//     under KeyError
//
// Individual tool failures never terminate the loop. They are surfaced
// to the model as observations so it can adapt.
func (n *nodes) dispatch(ctx chatgraph.Context, state TurnState) (TurnState, error) {
	results := NewToolResults()
	state.ToolResults = results

	messages := append(n.history.Last(historyWindow), llm.Message{
		Role:    llm.RoleUser,
		Content: state.CurrentMessage,
	})
	descriptors := n.tools.Descriptors()

	ctx.Logger().Debug("dispatch loop starting", "tools", n.tools.Names())

	for iteration := 0; iteration < maxDispatchIterations; iteration++ {
		resp, err := n.complete(ctx, llm.CompletionRequest{
			SystemPrompt: toolSelectorPrompt,
			Messages:     messages,
			Tools:        descriptors,
		})
		if err != nil {
			ctx.Logger().Error("dispatch gateway call failed", "error", err, "iteration", iteration+1)
			results.Set(KeyError, "I encountered an error while processing your request: "+err.Error())
			return state, nil
		}

		if len(resp.ToolCalls) == 0 {
			ctx.Logger().Info("model answered without tool calls", "iterations", iteration+1)
			results.Set(KeyFinalResponse, resp.Content)
			return state, nil
		}

		// Keep the model's tool-request message in the sequence so the
		// observations that follow stay correlated.
		messages = append(messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, call := range resp.ToolCalls {
			observation := n.executeToolCall(ctx, call, results)
			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				Content:    observation,
				ToolCallID: call.ID,
				Name:       call.Name,
			})
		}
	}

	// Budget exhausted: force a final answer from what was gathered.
	ctx.Logger().Warn("dispatch iteration budget exhausted, forcing final answer",
		"max_iterations", maxDispatchIterations)

	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: finalAnswerInstruction,
	})
	resp, err := n.complete(ctx, llm.CompletionRequest{
		SystemPrompt: toolSelectorPrompt,
		Messages:     messages,
	})
	if err != nil {
		ctx.Logger().Error("forced final answer failed", "error", err)
		results.Set(KeyError, "I encountered an error while processing your request: "+err.Error())
		return state, nil
	}

	results.Set(KeyFinalResponse, resp.Content)
	return state, nil
}

// executeToolCall runs one requested tool and returns the observation text
// the model will see. Failures and unknown tools produce error observations
// instead of terminating the loop.
func (n *nodes) executeToolCall(ctx chatgraph.Context, call llm.ToolCall, results *ToolResults) string {
	t, ok := n.tools.Get(call.Name)
	if !ok {
		ctx.Logger().Warn("unknown tool requested", "tool", call.Name)
		return template.Expand(toolNotFoundTemplate, map[string]any{"name": call.Name})
	}

	args, err := decodeToolArgs(call.Arguments)
	if err != nil {
		ctx.Logger().Warn("tool arguments malformed", "tool", call.Name, "error", err)
		return template.Expand(toolErrorTemplate, map[string]any{
			"name":   call.Name,
			"detail": "invalid arguments: " + err.Error(),
		})
	}

	start := time.Now()
	observation, err := t.Execute(ctx, args)
	elapsed := time.Since(start)

	observability.LogToolCall(ctx.Logger(), call.Name, float64(elapsed.Milliseconds()), err)
	n.metrics.RecordToolCall(ctx, call.Name, elapsed, err)

	if err != nil {
		return template.Expand(toolErrorTemplate, map[string]any{
			"name":   call.Name,
			"detail": err.Error(),
		})
	}

	results.Set(call.Name, observation)
	return observation
}

// decodeToolArgs parses the model-supplied argument payload.
func decodeToolArgs(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	return args, nil
}
