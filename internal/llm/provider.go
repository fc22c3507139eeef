package llm

import (
	"errors"
	"fmt"
	"strings"

	"portfolio/internal/config"
)

type Kind string

const (
	KindAnthropic Kind = "anthropic"
	KindOpenAI    Kind = "openai"
	KindGemini    Kind = "gemini"
	KindYandex    Kind = "yandex"
	KindOllama    Kind = "ollama"
)

// ErrNoProvider is returned when no credential is configured and the
// offline fallback is disabled.
var ErrNoProvider = errors.New("no llm provider configured")

// priority is the order in which credentials are probed.
var priority = [...]Kind{KindAnthropic, KindOpenAI, KindGemini, KindYandex}

// ParseKind maps a provider name to its Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindAnthropic, KindOpenAI, KindGemini, KindYandex, KindOllama:
		return k, nil
	default:
		return "", fmt.Errorf("unknown llm provider: %s", s)
	}
}

// Configured reports whether cfg carries the credential k needs.
func (k Kind) Configured(cfg *config.Config) bool {
	switch k {
	case KindAnthropic:
		return cfg.AnthropicAPIKey != ""
	case KindOpenAI:
		return cfg.OpenAIAPIKey != ""
	case KindGemini:
		return cfg.GeminiAPIKey != ""
	case KindYandex:
		return cfg.YandexOAuthToken != "" && cfg.YandexFolderID != ""
	case KindOllama:
		return true
	default:
		return false
	}
}

// DefaultModel is the model used for k unless a request overrides it.
func (k Kind) DefaultModel(cfg *config.Config) string {
	switch k {
	case KindAnthropic:
		return cfg.AnthropicModel
	case KindOpenAI:
		return cfg.OpenAIModel
	case KindGemini:
		return cfg.GeminiModel
	case KindYandex:
		return yandexModel
	case KindOllama:
		return cfg.OllamaModel
	default:
		return ""
	}
}

// Hint is the optional provider/model pair a chat request may carry.
type Hint struct {
	Provider string
	Model    string
}

// Selection is the provider and model chosen for one request.
type Selection struct {
	Kind     Kind
	Model    string
	Fallback bool
}

// Select picks the first provider in priority order that has a credential,
// with its default model. When none has one, the configured fallback is
// used and the hint may choose its model. Select has no side effects.
func Select(cfg *config.Config, hint Hint) (Selection, error) {
	for _, k := range priority {
		if k.Configured(cfg) {
			return Selection{Kind: k, Model: k.DefaultModel(cfg)}, nil
		}
	}

	fb := strings.ToLower(strings.TrimSpace(cfg.FallbackProvider))
	if fb == "" || fb == "none" {
		return Selection{}, ErrNoProvider
	}
	kind, err := ParseKind(fb)
	if err != nil {
		return Selection{}, fmt.Errorf("fallback provider: %w", err)
	}
	if !kind.Configured(cfg) {
		return Selection{}, fmt.Errorf("fallback provider %s: %w", kind, ErrNoProvider)
	}

	model := kind.DefaultModel(cfg)
	if hint.Model != "" {
		if hk, err := ParseKind(hint.Provider); hint.Provider == "" || (err == nil && hk == kind) {
			model = hint.Model
		}
	}
	return Selection{Kind: kind, Model: model, Fallback: true}, nil
}
