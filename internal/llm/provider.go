package llm

import (
	"context"
	"encoding/json"
)

// Provider is the generative capability used by the hint workflow.
type Provider interface {
	// Generate sends a prompt to the model. When req.Schema is set the
	// provider uses its native structured output mechanism and the returned
	// Content is JSON validated against the schema. When req.Schema is nil
	// the call runs in free-text mode and Content holds the text encoded as
	// a JSON string (see Text).
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system prompt.
	System string

	// Messages is the conversation. Hint workflow calls are single-turn, so
	// this is usually one user message.
	Messages []Message

	// Schema is the JSON Schema the response must conform to. Nil selects
	// free-text mode.
	Schema *Schema

	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature controls randomness, 0.0 - 1.0. Zero leaves the provider
	// default in place.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies the schema, kebab-case, e.g. "attempt-evaluation".
	// It doubles as the compiled-schema cache key.
	Name string

	Description string

	// Definition is the JSON Schema document.
	Definition map[string]any
}

// Response holds the model output.
type Response struct {
	// Content is validated JSON in structured mode, or a JSON string in
	// free-text mode.
	Content json.RawMessage

	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// finishContent turns raw provider text into Response content for the
// requested mode: schema-validated JSON, or a JSON-encoded string.
func finishContent(schema *Schema, text string) (json.RawMessage, error) {
	if schema == nil {
		encoded, err := json.Marshal(text)
		if err != nil {
			return nil, &ErrInvalidResponse{Content: json.RawMessage(text), Err: err}
		}
		return encoded, nil
	}
	raw := json.RawMessage(stripCodeFence(text))
	if err := validateResponse(schema, raw); err != nil {
		return nil, err
	}
	return raw, nil
}
