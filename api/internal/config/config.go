package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string `env:"APP_ENV" envDefault:"local"`
	Port           string `env:"PORT" envDefault:"8000"`
	ServiceTitle   string `env:"SERVICE_TITLE" envDefault:"VOIZ Data Analysis API"`
	ServiceVersion string `env:"SERVICE_VERSION" envDefault:"1.0.0"`

	OpenAIAPIKey  string  `env:"OPENAI_API_KEY"`
	OpenAIModel   string  `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL string  `env:"OPENAI_BASE_URL"`
	OpenAIRPS     float64 `env:"OPENAI_RPS" envDefault:"2"`
	GeminiAPIKey  string  `env:"GEMINI_API_KEY"`
	GeminiModel   string  `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	DefaultLLM    string  `env:"DEFAULT_LLM" envDefault:"gpt"`

	// Google Cloud Vision / Translate
	GoogleAPIKey          string   `env:"GOOGLE_API_KEY"`
	GoogleCredentialsFile string   `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	OCREngine             string   `env:"OCR_ENGINE" envDefault:"google"`
	OCRLanguageHints      []string `env:"OCR_LANGUAGE_HINTS" envSeparator:"," envDefault:"ko,en"`
	OCRRPS                float64  `env:"OCR_RPS" envDefault:"5"`
	TranslateSourceLang   string   `env:"TRANSLATE_SOURCE_LANG" envDefault:"ko"`

	// Yandex Vision
	YCOAuthToken string `env:"YC_OAUTH_TOKEN"`
	YCFolderID   string `env:"YC_FOLDER_ID"`

	DatabaseURL    string        `env:"DATABASE_URL"`
	OCRCacheTTL    time.Duration `env:"OCR_CACHE_TTL" envDefault:"720h"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	TelegramBotToken   string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramWebhookURL string `env:"TELEGRAM_WEBHOOK_URL"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env is optional

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	c.OCREngine = strings.ToLower(strings.TrimSpace(c.OCREngine))
	switch c.OCREngine {
	case "google", "yandex":
	default:
		return fmt.Errorf("OCR_ENGINE must be google or yandex, got %q", c.OCREngine)
	}

	c.DefaultLLM = strings.ToLower(strings.TrimSpace(c.DefaultLLM))
	switch c.DefaultLLM {
	case "gpt", "openai", "gemini":
	default:
		return fmt.Errorf("DEFAULT_LLM must be gpt or gemini, got %q", c.DefaultLLM)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}

	// google client libraries pick the file up from the environment themselves
	if c.GoogleCredentialsFile != "" {
		if _, err := os.Stat(c.GoogleCredentialsFile); err != nil {
			return fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS: %w", err)
		}
	}

	return nil
}

// GoogleConfigured reports whether Vision/Translate clients can authenticate.
func (c *Config) GoogleConfigured() bool {
	return c.GoogleAPIKey != "" || c.GoogleCredentialsFile != ""
}
