package chatgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/randalmurphal/chatgraph/pkg/chatgraph/checkpoint"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/observability"
	"go.opentelemetry.io/otel/trace"
)

// Run executes the graph with the given initial state.
// Returns the final state and any error encountered.
//
// On success, returns the state after the last node executed before END.
// On error, returns the state at the point of failure (useful for debugging).
//
// Execution flow:
//  1. Start at the entry point node
//  2. Check for cancellation
//  3. Execute the current node
//  4. Determine the next node (via simple or conditional edge)
//  5. Repeat until END is reached or an error occurs
//
// Example:
//
//	ctx := chatgraph.NewContext(context.Background())
//	result, err := compiled.Run(ctx, initialState)
//	if err != nil {
//	    // result contains state at point of failure
//	}
func (cg *CompiledGraph[S]) Run(ctx Context, state S, opts ...RunOption) (result S, runErr error) {
	if ctx == nil {
		return state, ErrNilContext
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	// Validate checkpointing configuration
	if cfg.checkpointStore != nil && cfg.runID == "" {
		return state, ErrRunIDRequired
	}

	// Get run ID for observability (from config or context)
	runID := cfg.runID
	if runID == "" {
		runID = ctx.RunID()
	}

	startTime := time.Now()

	observability.LogRunStart(cfg.logger, runID)

	// Start run span if tracing enabled
	var execCtx context.Context = ctx
	var runSpan trace.Span
	if cfg.tracingEnabled {
		execCtx, runSpan = cfg.spans.StartRunSpan(ctx, "chatgraph", runID)
		defer func() {
			cfg.spans.EndSpanWithError(runSpan, runErr)
		}()
	}

	var nodeCount int
	result, nodeCount, runErr = cg.runWithObservability(execCtx, ctx, state, cg.entryPoint, &cfg)

	duration := time.Since(startTime)
	durationMs := float64(duration.Milliseconds())

	cfg.metrics.RecordGraphRun(ctx, runErr == nil, duration)

	if runErr != nil {
		// Get last node from error if available
		lastNode := ""
		if nodeErr, ok := runErr.(*NodeError); ok {
			lastNode = nodeErr.NodeID
		} else if maxErr, ok := runErr.(*MaxIterationsError); ok {
			lastNode = maxErr.LastNodeID
		} else if cancelErr, ok := runErr.(*CancellationError); ok {
			lastNode = cancelErr.NodeID
		}
		observability.LogRunError(cfg.logger, runID, runErr, durationMs, lastNode)
	} else {
		observability.LogRunComplete(cfg.logger, runID, durationMs, nodeCount)
	}

	return result, runErr
}

// runWithObservability executes the graph with full observability.
// tracingCtx carries span context; cgCtx is the chatgraph Context.
// Returns the final state, node count, and any error.
func (cg *CompiledGraph[S]) runWithObservability(tracingCtx context.Context, cgCtx Context, state S, startNode string, cfg *runConfig) (S, int, error) {
	current := startNode
	iterations := 0
	prevNode := ""
	nodeCount := 0

	for current != END {
		iterations++
		if iterations > cfg.maxIterations {
			return state, nodeCount, &MaxIterationsError{
				Max:        cfg.maxIterations,
				LastNodeID: current,
				State:      state,
			}
		}

		// Check for cancellation before executing node
		select {
		case <-cgCtx.Done():
			return state, nodeCount, &CancellationError{
				NodeID:       current,
				State:        state,
				Cause:        cgCtx.Err(),
				WasExecuting: false,
			}
		default:
		}

		observability.LogNodeStart(cfg.logger, current)

		// Start node span if tracing enabled
		nodeTracingCtx := tracingCtx
		var nodeSpan trace.Span
		if cfg.tracingEnabled {
			nodeTracingCtx, nodeSpan = cfg.spans.StartNodeSpan(tracingCtx, current)
		}

		nodeStart := time.Now()

		var nodeErr error
		state, nodeErr = cg.executeNode(cgCtx, current, state)

		nodeDuration := time.Since(nodeStart)
		nodeDurationMs := float64(nodeDuration.Milliseconds())

		cfg.metrics.RecordNodeExecution(nodeTracingCtx, current, nodeDuration, nodeErr)

		if cfg.tracingEnabled {
			cfg.spans.EndSpanWithError(nodeSpan, nodeErr)
		}

		if nodeErr != nil {
			observability.LogNodeError(cfg.logger, current, nodeErr)
			return state, nodeCount, nodeErr
		}
		observability.LogNodeComplete(cfg.logger, current, nodeDurationMs)
		nodeCount++

		// Determine next node
		next, err := cg.nextNode(cgCtx, state, current)
		if err != nil {
			return state, nodeCount, err
		}

		// Checkpoint after successful node execution
		if cfg.checkpointStore != nil {
			if err := cg.saveCheckpoint(cgCtx, cfg, current, prevNode, state, next); err != nil {
				return state, nodeCount, err
			}
		}

		prevNode = current
		current = next
	}

	return state, nodeCount, nil
}

// saveCheckpoint persists the current state after node execution.
func (cg *CompiledGraph[S]) saveCheckpoint(ctx Context, cfg *runConfig, nodeID, prevNodeID string, state S, nextNode string) error {
	// Serialize state
	stateBytes, err := json.Marshal(state)
	if err != nil {
		if cfg.checkpointFailureFatal {
			return &CheckpointError{
				NodeID: nodeID,
				Op:     "serialize",
				Err:    err,
			}
		}
		observability.LogCheckpointError(cfg.logger, nodeID, "serialize", err)
		return nil
	}

	cfg.sequence++
	cp := checkpoint.New(cfg.runID, nodeID, cfg.sequence, stateBytes, nextNode).
		WithPrevNode(prevNodeID)

	if ec, ok := ctx.(*executionContext); ok {
		cp = cp.WithAttempt(ec.attempt)
	}

	data, err := cp.Marshal()
	if err != nil {
		if cfg.checkpointFailureFatal {
			return &CheckpointError{
				NodeID: nodeID,
				Op:     "marshal",
				Err:    err,
			}
		}
		observability.LogCheckpointError(cfg.logger, nodeID, "marshal", err)
		return nil
	}

	if err := cfg.checkpointStore.Save(cfg.runID, nodeID, data); err != nil {
		if cfg.checkpointFailureFatal {
			return &CheckpointError{
				NodeID: nodeID,
				Op:     "save",
				Err:    err,
			}
		}
		observability.LogCheckpointError(cfg.logger, nodeID, "save", err)
		return nil
	}

	sizeBytes := len(data)
	observability.LogCheckpoint(cfg.logger, nodeID, sizeBytes)
	cfg.metrics.RecordCheckpoint(ctx, nodeID, int64(sizeBytes))

	return nil
}

// executeNode executes a single node with panic recovery.
// Returns the new state and any error (including wrapped panics).
func (cg *CompiledGraph[S]) executeNode(ctx Context, nodeID string, state S) (result S, err error) {
	fn, exists := cg.getNode(nodeID)
	if !exists {
		// This shouldn't happen if compilation was successful
		return state, &NodeError{
			NodeID: nodeID,
			Op:     "lookup",
			Err:    fmt.Errorf("node not found: %s", nodeID),
		}
	}

	// Create node-specific context with enriched logger
	nodeCtx := ctx
	if ec, ok := ctx.(*executionContext); ok {
		nodeCtx = ec.withNodeID(nodeID)
	}

	// Panic recovery
	defer func() {
		if r := recover(); r != nil {
			result = state
			err = &PanicError{
				NodeID: nodeID,
				Value:  r,
				Stack:  string(debug.Stack()),
			}
		}
	}()

	result, err = fn(nodeCtx, state)
	if err != nil {
		return result, &NodeError{
			NodeID: nodeID,
			Op:     "execute",
			Err:    err,
		}
	}

	return result, nil
}

// nextNode determines the next node to execute.
// Checks conditional edges first, then simple edges.
func (cg *CompiledGraph[S]) nextNode(ctx Context, state S, current string) (string, error) {
	// Check for conditional edge first
	if router, exists := cg.getRouter(current); exists {
		// Create node-specific context for the router
		routerCtx := ctx
		if ec, ok := ctx.(*executionContext); ok {
			routerCtx = ec.withNodeID(current)
		}

		next := router(routerCtx, state)

		// Validate router result
		if next == "" {
			return "", &RouterError{
				FromNode: current,
				Returned: next,
				Err:      ErrInvalidRouterResult,
			}
		}

		if next != END {
			if _, exists := cg.getNode(next); !exists {
				return "", &RouterError{
					FromNode: current,
					Returned: next,
					Err:      ErrRouterTargetNotFound,
				}
			}
		}

		return next, nil
	}

	// Use simple edges
	edges := cg.getEdges(current)
	if len(edges) == 0 {
		// No outgoing edges - this shouldn't happen if compilation was successful
		return "", &NodeError{
			NodeID: current,
			Op:     "routing",
			Err:    fmt.Errorf("no outgoing edge from node %s", current),
		}
	}

	// Sequential execution takes the first edge
	return edges[0], nil
}
