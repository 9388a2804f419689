package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Decode unmarshals structured response content into T. A decode failure
// is reported as *ErrInvalidResponse carrying the raw content, so callers
// never see a half-populated value.
func Decode[T any](resp *Response) (T, error) {
	var out T
	if resp == nil {
		return out, &ErrInvalidResponse{Err: errors.New("nil response")}
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return out, &ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("decode: %w", err)}
	}
	return out, nil
}

// Text returns the trimmed text of a free-text response. Content that is
// not a JSON string (a provider or mock returning raw text) is used as is.
// Empty text is an invalid response.
func Text(resp *Response) (string, error) {
	if resp == nil {
		return "", &ErrInvalidResponse{Err: errors.New("nil response")}
	}
	text := string(resp.Content)
	var s string
	if err := json.Unmarshal(resp.Content, &s); err == nil {
		text = s
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ErrInvalidResponse{Content: resp.Content, Err: errors.New("empty text response")}
	}
	return text, nil
}

// stripCodeFence removes a surrounding markdown code fence, which some
// models emit around JSON even in structured mode.
func stripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}
