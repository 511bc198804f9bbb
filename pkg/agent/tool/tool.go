// Package tool defines the capabilities the dispatch loop can invoke on
// behalf of the model: a Tool interface, a thread-safe catalog, and the
// built-in telemetry tools.
package tool

import (
	"context"
	"sort"

	"github.com/randalmurphal/chatgraph/pkg/chatgraph/llm"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/registry"
)

// Tool is one named capability the model may request during dispatch.
// Implementations must be safe for concurrent use.
type Tool interface {
	// Name is the identifier the model uses to request this tool.
	Name() string

	// Description tells the model what the tool does and when to use it.
	Description() string

	// Parameters is the JSON Schema for the tool's arguments.
	Parameters() map[string]any

	// Execute runs the tool with the given arguments and returns the
	// observation text the model will see.
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// Registry is the catalog of available tools, keyed by name.
// Safe for concurrent use.
type Registry struct {
	entries *registry.Registry[string, Tool]
}

// NewRegistry creates an empty tool catalog.
func NewRegistry() *Registry {
	return &Registry{
		entries: registry.New[string, Tool](),
	}
}

// Register adds a tool to the catalog, replacing any tool with the same name.
func (r *Registry) Register(t Tool) {
	r.entries.Register(t.Name(), t)
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	return r.entries.Get(name)
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	names := r.entries.Keys()
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return r.entries.Len()
}

// Descriptors returns the tool definitions to bind to a completion request,
// in sorted name order for deterministic prompts.
func (r *Registry) Descriptors() []llm.Tool {
	names := r.Names()
	descriptors := make([]llm.Tool, 0, len(names))
	for _, name := range names {
		t, ok := r.entries.Get(name)
		if !ok {
			continue
		}
		descriptors = append(descriptors, llm.Tool{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return descriptors
}
