package llm

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ResponseSchema describes the JSON shape a completion must produce.
// Providers with structured-output support enforce it server-side.
type ResponseSchema struct {
	// Name identifies the schema (required by some providers).
	Name string `json:"name"`

	// Schema is the JSON Schema the output must satisfy.
	Schema map[string]any `json:"schema"`

	// Strict requests exact schema adherence where supported.
	Strict bool `json:"strict"`
}

// MalformedOutputError indicates model output that could not be decoded
// into the expected shape. The raw output is preserved for diagnostics.
type MalformedOutputError struct {
	// Raw is the model output that failed to decode.
	Raw string
	// Err is the underlying decode error.
	Err error
}

// Error implements the error interface.
func (e *MalformedOutputError) Error() string {
	raw := e.Raw
	if len(raw) > 200 {
		raw = raw[:200] + "..."
	}
	return fmt.Sprintf("malformed model output: %v (output: %s)", e.Err, raw)
}

// Unwrap returns the underlying decode error.
func (e *MalformedOutputError) Unwrap() error {
	return e.Err
}

// DecodeStrict unmarshals model output into v, returning MalformedOutputError
// on failure. It tolerates output wrapped in markdown code fences, which some
// models emit even when asked for bare JSON.
func DecodeStrict(content string, v any) error {
	cleaned := stripCodeFence(content)
	if err := json.UnmarshalFromString(cleaned, v); err != nil {
		return &MalformedOutputError{Raw: content, Err: err}
	}
	return nil
}

// stripCodeFence removes a surrounding markdown code fence if present.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop an optional language tag on the opening fence
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(trimmed[:idx])
		if firstLine == "json" || firstLine == "" {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
