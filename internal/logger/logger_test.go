package logger

import "testing"

func TestSanitizeKVs_RedactsSecrets(t *testing.T) {
	got := sanitizeKVs([]any{"user_id", 7, "openrouter_api_key", "sk-123", "dangling"})
	if len(got) != 5 {
		t.Fatalf("got %d items, want 5", len(got))
	}
	if got[1] != 7 {
		t.Errorf("user_id = %v, want 7", got[1])
	}
	if got[3] != "[REDACTED]" {
		t.Errorf("api key = %v, want [REDACTED]", got[3])
	}
	if got[4] != "dangling" {
		t.Errorf("trailing key = %v, want dangling", got[4])
	}
}

func TestNew_Modes(t *testing.T) {
	for _, mode := range []string{"dev", "production"} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		l.With("component", "test").Debug("hello", "k", "v")
	}
}
