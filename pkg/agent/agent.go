package agent

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/randalmurphal/chatgraph/pkg/chatgraph"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/checkpoint"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/llm"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/observability"
	"github.com/randalmurphal/chatgraph/pkg/agent/tool"
)

// graphFailureResponse is the fixed apology returned when the graph run
// itself fails. Node-level failures are contained inside the graph and
// never reach this path.
const graphFailureResponse = "I'm sorry, I encountered an error processing your request. Please try again."

// Response is the result of processing one turn.
type Response struct {
	// Text is the answer shown to the user.
	Text string `json:"text"`

	// Visualizations holds handles to charts produced for this turn.
	Visualizations []string `json:"visualizations,omitempty"`

	// Data holds an optional tabular result.
	Data any `json:"data,omitempty"`

	// Metadata is the turn's diagnostic summary.
	Metadata map[string]any `json:"metadata"`
}

// Session processes turns for one conversation. Construct once per
// conversation with NewSession and call ProcessMessage for each message.
//
// Turns are serialized internally: history updates from one turn complete
// before the next turn starts.
type Session struct {
	mu sync.Mutex

	graph       *chatgraph.CompiledGraph[TurnState]
	client      llm.Client
	history     History
	tools       *tool.Registry
	logger      *slog.Logger
	metrics     observability.MetricsRecorder
	checkpoints checkpoint.Store
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the logger for all turns in the session.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// WithSessionMetrics sets the metrics recorder.
func WithSessionMetrics(metrics observability.MetricsRecorder) SessionOption {
	return func(s *Session) { s.metrics = metrics }
}

// WithSessionHistory supplies an existing conversation log, for resuming
// a conversation.
func WithSessionHistory(history History) SessionOption {
	return func(s *Session) { s.history = history }
}

// WithCheckpointStore enables per-node turn snapshots in the given store.
func WithCheckpointStore(store checkpoint.Store) SessionOption {
	return func(s *Session) { s.checkpoints = store }
}

// NewSession creates a session over a model client and tool catalog.
func NewSession(client llm.Client, tools *tool.Registry, opts ...SessionOption) (*Session, error) {
	s := &Session{
		client:  client,
		tools:   tools,
		history: NewChatHistory(),
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}

	n := &nodes{
		history: s.history,
		tools:   s.tools,
		metrics: s.metrics,
	}

	graph, err := buildGraph(n)
	if err != nil {
		return nil, err
	}
	s.graph = graph
	return s, nil
}

// buildGraph wires the four turn nodes into a compiled graph.
func buildGraph(n *nodes) (*chatgraph.CompiledGraph[TurnState], error) {
	return chatgraph.NewGraph[TurnState]().
		AddNode(nodeClassify, n.classify).
		AddNode(nodeRewrite, n.rewrite).
		AddNode(nodeDispatch, n.dispatch).
		AddNode(nodeRespond, n.respond).
		SetEntry(nodeClassify).
		AddConditionalEdge(nodeClassify, routeNode).
		AddEdge(nodeRewrite, nodeClassify).
		AddEdge(nodeDispatch, nodeRespond).
		AddEdge(nodeRespond, chatgraph.END).
		Compile()
}

// ProcessMessage runs one turn through the graph and returns the result.
//
// ProcessMessage never returns an error: a failed graph run degrades to
// a fixed apology with error metadata, matching the containment the
// nodes themselves apply to gateway and tool failures.
func (s *Session) ProcessMessage(ctx context.Context, text string) Response {
	s.mu.Lock()
	defer s.mu.Unlock()

	turnID := uuid.New().String()

	runCtx := chatgraph.NewContext(ctx,
		chatgraph.WithLogger(s.logger),
		chatgraph.WithLLM(s.client),
		chatgraph.WithContextRunID(turnID),
	)

	runOpts := []chatgraph.RunOption{
		chatgraph.WithRunLogger(s.logger),
		chatgraph.WithMetrics(s.metrics),
	}
	if s.checkpoints != nil {
		runOpts = append(runOpts,
			chatgraph.WithCheckpointing(s.checkpoints),
			chatgraph.WithRunID(turnID),
		)
	}

	final, err := s.graph.Run(runCtx, TurnState{OriginalMessage: text}, runOpts...)
	if err != nil {
		s.logger.Error("graph execution failed", "error", err, "turn_id", turnID)
		return Response{
			Text: graphFailureResponse,
			Metadata: map[string]any{
				"error": err.Error(),
				"type":  "graph_execution_error",
			},
		}
	}

	return Response{
		Text:           final.FinalResponse,
		Visualizations: []string{},
		Metadata:       final.Metadata,
	}
}

// History returns the session's conversation log.
func (s *Session) History() History {
	return s.history
}
