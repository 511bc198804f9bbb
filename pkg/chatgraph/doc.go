/*
Package chatgraph provides graph-based orchestration for conversational
LLM turns.

# Overview

chatgraph is a Go library for building and executing directed graphs
where nodes make decisions and edges are selected at runtime from those
decisions. It was built to drive one user message through a bounded
sequence of stages (classification, clarification, tool dispatch,
response synthesis), but the engine is generic over any state type.

The library is inspired by LangGraph but built for Go with:
  - Type-safe generics for state management
  - Compile-time validation of graph structure
  - Per-node state snapshots for post-hoc turn inspection
  - OpenTelemetry integration for observability

# Basic Usage

Create a graph with nodes and edges, then compile and run:

	type Turn struct {
	    Message string
	    Reply   string
	}

	func respond(ctx chatgraph.Context, t Turn) (Turn, error) {
	    t.Reply = "You said: " + t.Message
	    return t, nil
	}

	func main() {
	    graph := chatgraph.NewGraph[Turn]().
	        AddNode("respond", respond).
	        AddEdge("respond", chatgraph.END).
	        SetEntry("respond")

	    compiled, err := graph.Compile()
	    if err != nil {
	        log.Fatal(err)
	    }

	    ctx := chatgraph.NewContext(context.Background())
	    result, err := compiled.Run(ctx, Turn{Message: "hello"})
	    if err != nil {
	        log.Fatal(err)
	    }
	    fmt.Println(result.Reply)
	}

# Conditional Branching

Use conditional edges for decision points. The router is a pure function
of the current state and may return any node ID or END:

	graph.AddConditionalEdge("classify", func(ctx chatgraph.Context, t Turn) string {
	    if t.NeedsTools {
	        return "dispatch"
	    }
	    return "respond"
	})

Cycles are allowed; the executor bounds total node executions with
WithMaxIterations so a misbehaving router cannot loop forever.

# Services

The execution Context carries shared services into nodes: a structured
logger, an LLM client, and an optional checkpoint store. Configure them
with ContextOptions:

	ctx := chatgraph.NewContext(context.Background(),
	    chatgraph.WithLogger(logger),
	    chatgraph.WithLLM(client))

# Execution Guarantees

  - Nodes execute strictly sequentially; each node's output state is the
    next node's input.
  - A panicking node is recovered and surfaced as *PanicError.
  - Cancellation is checked before every node; a cancelled run returns
    *CancellationError with the state at the point of cancellation.
  - On error, Run returns the state as of the failure, which is useful
    for debugging a half-processed turn.
*/
package chatgraph
