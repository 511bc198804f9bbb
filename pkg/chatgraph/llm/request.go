package llm

import (
	stdjson "encoding/json"
	"time"
)

// CompletionRequest configures a model completion call.
type CompletionRequest struct {
	// Prompt configuration
	SystemPrompt string    `json:"system_prompt,omitempty"`
	Messages     []Message `json:"messages"`

	// Model configuration
	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`

	// Tool use
	Tools []Tool `json:"tools,omitempty"`

	// ResponseSchema requests schema-constrained JSON output.
	// When set, providers that support structured output enforce it server-side;
	// callers should still validate with DecodeStrict.
	ResponseSchema *ResponseSchema `json:"response_schema,omitempty"`

	// Provider-specific options
	Options map[string]any `json:"options,omitempty"`
}

// Message is a single entry in the model conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// ToolCalls carries tool invocations on assistant messages.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a tool result message to the call that produced it.
	ToolCallID string `json:"tool_call_id,omitempty"`

	// Name is the tool name for tool result messages.
	Name string `json:"name,omitempty"`
}

// Role identifies the message sender.
type Role string

// Standard message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSystem    Role = "system"
)

// Tool defines an available tool for the model.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// CompletionResponse is the output of a completion call.
type CompletionResponse struct {
	Content      string        `json:"content"`
	ToolCalls    []ToolCall    `json:"tool_calls,omitempty"`
	Usage        TokenUsage    `json:"usage"`
	Model        string        `json:"model"`
	FinishReason string        `json:"finish_reason"`
	Duration     time.Duration `json:"duration"`
}

// ToolCall represents a tool invocation request from the model.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments stdjson.RawMessage `json:"arguments"`
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add calculates total tokens and adds to existing usage.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}
