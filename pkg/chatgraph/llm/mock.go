package llm

import (
	"context"
	"sync"
)

// MockClient is a scripted Client for tests. Responses are returned in
// order and cycle when exhausted. Every request is recorded in Calls.
//
// Safe for concurrent use.
type MockClient struct {
	mu        sync.Mutex
	responses []*CompletionResponse
	err       error
	index     int

	// Calls records every request, in order.
	Calls []CompletionRequest
}

// NewMockClient creates a mock that always returns the given text.
func NewMockClient(response string) *MockClient {
	return &MockClient{
		responses: []*CompletionResponse{textResponse(response)},
	}
}

// WithResponses replaces the script with the given texts, returned in
// order and cycling when exhausted.
func (m *MockClient) WithResponses(texts ...string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responses = make([]*CompletionResponse, len(texts))
	for i, text := range texts {
		m.responses[i] = textResponse(text)
	}
	m.index = 0
	return m
}

// WithScript replaces the script with full responses, allowing tool
// calls and usage to be scripted.
func (m *MockClient) WithScript(responses ...*CompletionResponse) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responses = responses
	m.index = 0
	return m
}

// WithError makes every Complete call fail with err.
func (m *MockClient) WithError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err
	return m
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return textResponse(""), nil
	}

	resp := m.responses[m.index%len(m.responses)]
	m.index++
	return resp, nil
}

// Model implements Client.
func (m *MockClient) Model() string {
	return "mock"
}

// CallCount returns the number of Complete calls made.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.Calls)
}

// LastCall returns the most recent request, or nil if none were made.
func (m *MockClient) LastCall() *CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Calls) == 0 {
		return nil
	}
	return &m.Calls[len(m.Calls)-1]
}

// Reset clears recorded calls and restarts the script.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = nil
	m.index = 0
}

// textResponse builds a plain completion response.
func textResponse(content string) *CompletionResponse {
	return &CompletionResponse{
		Content:      content,
		Model:        "mock",
		FinishReason: "stop",
	}
}

// ToolCallResponse builds a scripted response requesting one tool call.
// Convenience for dispatch-loop tests.
func ToolCallResponse(callID, name, arguments string) *CompletionResponse {
	return &CompletionResponse{
		Model:        "mock",
		FinishReason: "tool_calls",
		ToolCalls: []ToolCall{
			{ID: callID, Name: name, Arguments: []byte(arguments)},
		},
	}
}

// TextResponse builds a scripted plain-text response.
// Convenience for use with WithScript.
func TextResponse(content string) *CompletionResponse {
	return textResponse(content)
}
