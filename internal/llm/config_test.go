package llm

import "testing"

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("HINTLY_LLM_PROVIDER", "gemini")
	t.Setenv("HINTLY_GEMINI_API_KEY", "g-key")
	t.Setenv("HINTLY_LLM_TIMEOUT", "15s")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != "gemini" || cfg.Gemini.APIKey != "g-key" {
		t.Fatalf("got %+v", cfg)
	}
	if cfg.Timeout.String() != "15s" {
		t.Fatalf("timeout = %s", cfg.Timeout)
	}
	if cfg.OpenRouter.Model != "deepseek/deepseek-r1-0528-qwen3-8b:free" {
		t.Fatalf("default openrouter model lost: %q", cfg.OpenRouter.Model)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestConfigFromEnv_BadTimeout(t *testing.T) {
	t.Setenv("HINTLY_LLM_TIMEOUT", "soon")
	if _, err := ConfigFromEnv(); err == nil {
		t.Fatal("expected error for bad timeout")
	}
}

func TestDiscoverConfig(t *testing.T) {
	for _, k := range []string{"OPENROUTER_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(k, "")
	}
	if _, ok := DiscoverConfig(); ok {
		t.Fatal("expected no provider without keys")
	}

	t.Setenv("OPENAI_API_KEY", "o-key")
	t.Setenv("ANTHROPIC_API_KEY", "a-key")
	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != "openai" || cfg.OpenAI.APIKey != "o-key" {
		t.Fatalf("got %+v, %v", cfg, ok)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"openrouter without key", Config{Provider: "openrouter"}, true},
		{"openrouter with key", Config{Provider: "openrouter", OpenRouter: OpenRouterConfig{APIKey: "k"}}, false},
		{"mock", Config{Provider: "mock"}, false},
		{"unknown", Config{Provider: "llama.cpp"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
