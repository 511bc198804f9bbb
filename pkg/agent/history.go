package agent

import (
	"sync"

	"github.com/randalmurphal/chatgraph/pkg/chatgraph/llm"
)

// History is the conversation log the graph nodes read for context and
// the responder appends to after each turn.
type History interface {
	// AppendUser records a user message.
	AppendUser(text string)

	// AppendAssistant records an assistant reply.
	AppendAssistant(text string)

	// Last returns up to the n most recent messages, oldest first.
	Last(n int) []llm.Message
}

// ChatHistory is an in-memory History.
// Safe for concurrent use.
type ChatHistory struct {
	mu       sync.RWMutex
	messages []llm.Message
}

// NewChatHistory creates an empty conversation log.
func NewChatHistory() *ChatHistory {
	return &ChatHistory{
		messages: make([]llm.Message, 0),
	}
}

// AppendUser records a user message.
func (h *ChatHistory) AppendUser(text string) {
	h.append(llm.Message{Role: llm.RoleUser, Content: text})
}

// AppendAssistant records an assistant reply.
func (h *ChatHistory) AppendAssistant(text string) {
	h.append(llm.Message{Role: llm.RoleAssistant, Content: text})
}

func (h *ChatHistory) append(msg llm.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, msg)
}

// Last returns a copy of up to the n most recent messages, oldest first.
// Returns nil when n <= 0 or the log is empty.
func (h *ChatHistory) Last(n int) []llm.Message {
	if n <= 0 {
		return nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.messages) == 0 {
		return nil
	}
	if n > len(h.messages) {
		n = len(h.messages)
	}

	cp := make([]llm.Message, n)
	copy(cp, h.messages[len(h.messages)-n:])
	return cp
}

// Len returns the number of recorded messages.
func (h *ChatHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.messages)
}
