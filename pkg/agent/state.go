package agent

import (
	"bytes"
	stdjson "encoding/json"
	"fmt"
	"strings"
)

// Intent is the classifier's judgement of what the user wants.
type Intent string

// Recognized intents.
const (
	IntentToolRequired Intent = "tool_required"
	IntentConversation Intent = "conversation"
	IntentHelp         Intent = "help"
	IntentUnclear      Intent = "unclear"
	IntentError        Intent = "error"
)

// Sentinel keys stored in ToolResults alongside real tool names.
const (
	// KeyFinalResponse marks an answer the dispatch loop already finalized.
	KeyFinalResponse = "llm_final_response"

	// KeyError marks an unrecoverable dispatch failure, stored as
	// user-facing text.
	KeyError = "error"
)

// Decision is the classifier's structured output for one message.
type Decision struct {
	Intent       Intent  `json:"intent"`
	Confidence   float64 `json:"confidence"`
	NeedsRewrite bool    `json:"needs_rewrite"`
	Reasoning    string  `json:"reasoning"`
}

// RewriteResult is the rewriter's structured output.
type RewriteResult struct {
	RewrittenMessage    string   `json:"rewritten_message"`
	ClarificationsAdded []string `json:"clarifications_added"`
	Confidence          float64  `json:"confidence"`
}

// TurnState is the record that flows through the graph for one turn.
// It is owned by a single graph execution and never shared across turns.
type TurnState struct {
	// OriginalMessage is the user's verbatim input. Immutable once set.
	OriginalMessage string `json:"original_message"`

	// CurrentMessage starts equal to OriginalMessage and may be replaced
	// by the rewriter.
	CurrentMessage string `json:"current_message"`

	// Classification is set on each classifier visit. A rewrite loops the
	// turn back through the classifier, overwriting the earlier decision.
	Classification *Decision `json:"classification,omitempty"`

	// Rewrite is set at most once per turn. Its presence stops the router
	// from re-entering the rewriter.
	Rewrite *RewriteResult `json:"rewrite,omitempty"`

	// ToolResults records tool observations (and sentinel entries) in the
	// order they were produced. Nil until the dispatcher runs.
	ToolResults *ToolResults `json:"tool_results,omitempty"`

	// FinalResponse is the answer text. Empty until the responder completes.
	FinalResponse string `json:"final_response"`

	// Metadata is the diagnostic summary, always populated by the responder.
	Metadata map[string]any `json:"metadata,omitempty"`

	// IterationCount is incremented once per classifier visit.
	IterationCount int `json:"iteration_count"`
}

// ToolResults is an insertion-ordered mapping of tool name (or sentinel
// key) to observation text. The zero value is not usable; call
// NewToolResults.
type ToolResults struct {
	keys   []string
	values map[string]string
}

// NewToolResults creates an empty result set.
func NewToolResults() *ToolResults {
	return &ToolResults{
		values: make(map[string]string),
	}
}

// Set records an observation. A repeated name keeps its original position
// and takes the new value.
func (r *ToolResults) Set(name, observation string) {
	if _, exists := r.values[name]; !exists {
		r.keys = append(r.keys, name)
	}
	r.values[name] = observation
}

// Get returns the observation for a name.
func (r *ToolResults) Get(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	v, ok := r.values[name]
	return v, ok
}

// Has reports whether a name was recorded.
func (r *ToolResults) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Keys returns the recorded names in insertion order.
func (r *ToolResults) Keys() []string {
	if r == nil || len(r.keys) == 0 {
		return nil
	}
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Len returns the number of recorded entries.
func (r *ToolResults) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Summary renders all entries as "name: result" pairs joined by "; ",
// in insertion order. Used as model context by the responder.
func (r *ToolResults) Summary() string {
	if r.Len() == 0 {
		return ""
	}
	parts := make([]string, 0, len(r.keys))
	for _, name := range r.keys {
		parts = append(parts, fmt.Sprintf("%s: %s", name, r.values[name]))
	}
	return strings.Join(parts, "; ")
}

// MarshalJSON encodes the results as a JSON object with keys in
// insertion order.
func (r *ToolResults) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := stdjson.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := stdjson.Marshal(r.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving key order.
func (r *ToolResults) UnmarshalJSON(data []byte) error {
	r.keys = nil
	r.values = make(map[string]string)

	dec := stdjson.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(stdjson.Delim); !ok || delim != '{' {
		return fmt.Errorf("tool results: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("tool results: expected string key, got %v", keyTok)
		}

		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("tool results: value for %q: %w", key, err)
		}
		r.Set(key, value)
	}

	// Consume closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
