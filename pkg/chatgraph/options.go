package chatgraph

import (
	"log/slog"

	"github.com/randalmurphal/chatgraph/pkg/chatgraph/checkpoint"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/observability"
)

// runConfig holds configuration for graph execution.
type runConfig struct {
	maxIterations int

	// Observability
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool

	// Checkpointing
	checkpointStore        checkpoint.Store
	runID                  string
	checkpointFailureFatal bool
	sequence               int
}

// defaultRunConfig returns the default execution configuration.
func defaultRunConfig() runConfig {
	return runConfig{
		maxIterations: 1000,
		metrics:       observability.NoopMetrics{},
		spans:         observability.NoopSpanManager{},
	}
}

// RunOption configures execution behavior.
type RunOption func(*runConfig)

// WithMaxIterations sets the maximum number of node executions.
// Default: 1000
//
// This prevents infinite loops from hanging forever. If a graph
// exceeds this limit, Run returns ErrMaxIterations.
//
// Example:
//
//	result, err := compiled.Run(ctx, state, chatgraph.WithMaxIterations(100))
func WithMaxIterations(n int) RunOption {
	return func(c *runConfig) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// WithRunLogger sets the logger for run-level events.
// Node-level logging uses the Context logger; this logger covers
// run start/complete/error and checkpoint events.
func WithRunLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder for this run.
// Default: no-op recorder.
func WithMetrics(m observability.MetricsRecorder) RunOption {
	return func(c *runConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables distributed tracing for this run.
// Default: disabled.
func WithTracing(spans observability.SpanManager) RunOption {
	return func(c *runConfig) {
		if spans != nil {
			c.spans = spans
			c.tracingEnabled = true
		}
	}
}

// WithCheckpointing enables state persistence after each node.
// Requires WithRunID to identify the run.
func WithCheckpointing(store checkpoint.Store) RunOption {
	return func(c *runConfig) {
		c.checkpointStore = store
	}
}

// WithRunID sets the run identifier used to key checkpoints.
func WithRunID(id string) RunOption {
	return func(c *runConfig) {
		c.runID = id
	}
}

// WithCheckpointFailureFatal makes checkpoint failures abort the run.
// Default: checkpoint failures are logged and execution continues.
func WithCheckpointFailureFatal() RunOption {
	return func(c *runConfig) {
		c.checkpointFailureFatal = true
	}
}
