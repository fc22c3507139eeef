package config

import (
	"log"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Content
	ContentDir        string `env:"CONTENT_DIR" envDefault:"content"`
	ContentS3Bucket   string `env:"CONTENT_S3_BUCKET"`
	ContentS3Prefix   string `env:"CONTENT_S3_PREFIX"`
	ContentS3Endpoint string `env:"CONTENT_S3_ENDPOINT"`
	ContentS3Region   string `env:"CONTENT_S3_REGION" envDefault:"auto"`
	AWSAccessKeyID    string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey      string `env:"AWS_SECRET_ACCESS_KEY"`

	// LLM providers, probed in this order
	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`
	AnthropicBaseURL string `env:"ANTHROPIC_BASE_URL"`
	AnthropicModel   string `env:"ANTHROPIC_MODEL" envDefault:"claude-haiku-4-5"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string `env:"OPENAI_BASE_URL"`
	OpenAIModel      string `env:"OPENAI_MODEL" envDefault:"gpt-4o"`
	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	GeminiModel      string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash-exp"`
	YandexOAuthToken string `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string `env:"YANDEX_FOLDER_ID"`
	OllamaBaseURL    string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434/v1"`
	OllamaModel      string `env:"OLLAMA_MODEL" envDefault:"mistral:7b"`

	// FallbackProvider is used when no credential is configured.
	// "none" disables the fallback.
	FallbackProvider string `env:"LLM_FALLBACK_PROVIDER" envDefault:"ollama"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Chat. CHAT_MAX_ITERATIONS can only lower the cap of 5.
	MaxIterations    int    `env:"CHAT_MAX_ITERATIONS" envDefault:"5"`
	SystemPromptPath string `env:"SYSTEM_PROMPT_PATH"`

	// Storage
	LogFilePath      string `env:"LOG_FILE_PATH" envDefault:"logs/chat.jsonl"`
	LogRetentionDays int    `env:"LOG_RETENTION_DAYS" envDefault:"30"`
	ReportCron       string `env:"REPORT_CRON" envDefault:"0 21 * * *"`
}

func New() *Config {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

// Parse reads the configuration from the process environment.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
