package llm

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"gemini-flash", "gemini-2.5-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, geminiModels); got != tt.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"success":      map[string]any{"type": "boolean"},
			"safety_score": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
			"category":     map[string]any{"type": "string", "enum": []string{"a", "b"}},
			"edge_cases": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"success", "safety_score"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != genai.TypeObject {
		t.Fatalf("got %s, want OBJECT", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("got %d properties, want 4", len(schema.Properties))
	}
	if schema.Properties["success"].Type != genai.TypeBoolean {
		t.Fatalf("success type = %s", schema.Properties["success"].Type)
	}
	score := schema.Properties["safety_score"]
	if score.Minimum == nil || *score.Minimum != 0 || score.Maximum == nil || *score.Maximum != 1 {
		t.Fatalf("score bounds not mapped: %+v", score)
	}
	if len(schema.Properties["category"].Enum) != 2 {
		t.Fatalf("got %d enum values, want 2", len(schema.Properties["category"].Enum))
	}
	if schema.Properties["edge_cases"].Items.Type != genai.TypeString {
		t.Fatalf("items type = %s", schema.Properties["edge_cases"].Items.Type)
	}
	if len(schema.Required) != 2 {
		t.Fatalf("got %d required fields, want 2", len(schema.Required))
	}
}

func TestMapGeminiError(t *testing.T) {
	rl := mapGeminiError(fmt.Errorf("wrapped: %w", &genai.APIError{Code: http.StatusTooManyRequests}))
	var rateErr *ErrRateLimit
	if !errors.As(rl, &rateErr) {
		t.Fatalf("expected ErrRateLimit, got %T", rl)
	}

	other := mapGeminiError(errors.New("dial tcp: refused"))
	var unavail *ErrProviderUnavailable
	if !errors.As(other, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %T", other)
	}
}
