package llm

import (
	"errors"
	"testing"

	"portfolio/internal/config"
)

func baseConfig() *config.Config {
	return &config.Config{
		AnthropicModel:   "claude-haiku-4-5",
		OpenAIModel:      "gpt-4o",
		GeminiModel:      "gemini-2.0-flash-exp",
		OllamaModel:      "mistral:7b",
		OllamaBaseURL:    "http://localhost:11434/v1",
		FallbackProvider: "ollama",
	}
}

func TestSelect_PriorityOrder(t *testing.T) {
	cases := []struct {
		name  string
		setup func(*config.Config)
		want  Selection
	}{
		{
			name: "anthropic wins over everything",
			setup: func(c *config.Config) {
				c.AnthropicAPIKey, c.OpenAIAPIKey, c.GeminiAPIKey = "a", "o", "g"
			},
			want: Selection{Kind: KindAnthropic, Model: "claude-haiku-4-5"},
		},
		{
			name:  "openai before gemini",
			setup: func(c *config.Config) { c.OpenAIAPIKey, c.GeminiAPIKey = "o", "g" },
			want:  Selection{Kind: KindOpenAI, Model: "gpt-4o"},
		},
		{
			name:  "gemini alone",
			setup: func(c *config.Config) { c.GeminiAPIKey = "g" },
			want:  Selection{Kind: KindGemini, Model: "gemini-2.0-flash-exp"},
		},
		{
			name:  "yandex needs token and folder",
			setup: func(c *config.Config) { c.YandexOAuthToken = "t" },
			want:  Selection{Kind: KindOllama, Model: "mistral:7b", Fallback: true},
		},
		{
			name:  "no credentials falls back to ollama",
			setup: func(c *config.Config) {},
			want:  Selection{Kind: KindOllama, Model: "mistral:7b", Fallback: true},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := baseConfig()
			tc.setup(cfg)
			got, err := Select(cfg, Hint{})
			if err != nil {
				t.Fatalf("select: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v want %+v", got, tc.want)
			}
		})
	}
}

func TestSelect_HintOnlyAppliesToFallback(t *testing.T) {
	cfg := baseConfig()
	got, err := Select(cfg, Hint{Provider: "ollama", Model: "llama3.1:8b"})
	if err != nil || got.Model != "llama3.1:8b" {
		t.Fatalf("fallback should honour hint model: %+v, %v", got, err)
	}

	got, _ = Select(cfg, Hint{Model: "qwen2.5"})
	if got.Model != "qwen2.5" {
		t.Fatalf("hint without provider should apply to fallback: %+v", got)
	}

	got, _ = Select(cfg, Hint{Provider: "openai", Model: "gpt-4.1"})
	if got.Kind != KindOllama || got.Model != "mistral:7b" {
		t.Fatalf("hint for another provider must be ignored: %+v", got)
	}

	cfg.OpenAIAPIKey = "o"
	got, _ = Select(cfg, Hint{Provider: "ollama", Model: "llama3.1:8b"})
	if got.Kind != KindOpenAI || got.Model != "gpt-4o" {
		t.Fatalf("credentialed provider must ignore hint: %+v", got)
	}
}

func TestSelect_FallbackDisabled(t *testing.T) {
	cfg := baseConfig()
	cfg.FallbackProvider = "none"
	if _, err := Select(cfg, Hint{}); !errors.Is(err, ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}

	cfg.FallbackProvider = "openai"
	if _, err := Select(cfg, Hint{}); !errors.Is(err, ErrNoProvider) {
		t.Fatalf("uncredentialed fallback should fail with ErrNoProvider, got %v", err)
	}

	cfg.FallbackProvider = "skynet"
	if _, err := Select(cfg, Hint{}); err == nil {
		t.Fatalf("expected error for unknown fallback")
	}
}

func TestSelect_IsDeterministic(t *testing.T) {
	cfg := baseConfig()
	cfg.GeminiAPIKey = "g"
	first, _ := Select(cfg, Hint{})
	for i := 0; i < 10; i++ {
		if got, _ := Select(cfg, Hint{}); got != first {
			t.Fatalf("selection changed between calls: %+v vs %+v", got, first)
		}
	}
}
