package llm

import (
	"context"
	"fmt"

	"portfolio/internal/config"
)

// Factory creates LLM clients with consistent logic
type Factory struct {
	cfg *config.Config
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{cfg: cfg}
}

// Create builds the client for sel.
func (f *Factory) Create(ctx context.Context, sel Selection) (Client, error) {
	switch sel.Kind {
	case KindAnthropic:
		return NewAnthropic(f.cfg.AnthropicAPIKey, f.cfg.AnthropicBaseURL, sel.Model, nil), nil
	case KindOpenAI:
		return NewOpenAI(f.cfg.OpenAIAPIKey, f.cfg.OpenAIBaseURL, sel.Model, f.cfg.OpenRouterReferrer, f.cfg.OpenRouterTitle), nil
	case KindGemini:
		return NewGemini(ctx, f.cfg.GeminiAPIKey, sel.Model)
	case KindYandex:
		return NewYandex(f.cfg.YandexOAuthToken, f.cfg.YandexFolderID)
	case KindOllama:
		return NewOllama(f.cfg.OllamaBaseURL, sel.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", sel.Kind)
	}
}
