// Package llm defines the model gateway used by graph nodes: a provider-neutral
// completion interface plus request/response types, schema-constrained output
// helpers, and an OpenAI-backed implementation.
package llm

import "context"

// Client is the interface all model providers implement.
// Implementations must be safe for concurrent use.
type Client interface {
	// Complete performs a single completion call.
	// Blocks until the full response is available or ctx is done.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Model returns the default model identifier for this client.
	Model() string
}
