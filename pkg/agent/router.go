package agent

import "github.com/randalmurphal/chatgraph/pkg/chatgraph"

// Graph node identifiers.
const (
	nodeClassify = "classify"
	nodeRewrite  = "rewrite"
	nodeDispatch = "dispatch"
	nodeRespond  = "respond"
)

// route selects the node that follows the classifier. It is a pure
// function of turn state:
//
//  1. no classification: terminate (defensive, should not happen)
//  2. rewrite requested and none recorded yet: rewriter
//  3. intent needs tools: dispatcher
//  4. anything else: responder
//
// Rule 2 keys off the presence of a recorded rewrite, so the
// classify/rewrite cycle runs at most once per turn.
func route(state TurnState) string {
	if state.Classification == nil {
		return chatgraph.END
	}
	if state.Classification.NeedsRewrite && state.Rewrite == nil {
		return nodeRewrite
	}
	if state.Classification.Intent == IntentToolRequired {
		return nodeDispatch
	}
	return nodeRespond
}

// routeNode adapts route to the engine's router signature.
func routeNode(ctx chatgraph.Context, state TurnState) string {
	next := route(state)
	ctx.Logger().Debug("routing decision", "next", next)
	return next
}
