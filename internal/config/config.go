package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// GitHubConfig holds GitHub App credentials and webhook settings
type GitHubConfig struct {
	WebhookSecret  string `env:"GITHUB_WEBHOOK_SECRET"`
	AppID          string `env:"GITHUB_APP_ID"`
	PrivateKeyPath string `env:"GITHUB_PRIVATE_KEY_PATH"`
	PrivateKey     string `env:"GITHUB_PRIVATE_KEY"`
}

// CompletionConfig holds the completion API settings
type CompletionConfig struct {
	Provider       string `env:"COMPLETION_PROVIDER, default=openai"`
	OpenAIKey      string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL  string `env:"OPENAI_BASE_URL, default=https://api.openai.com/v1"`
	Model          string `env:"DEFAULT_MODEL_NAME, default=gpt-4-turbo-preview"`
	AnthropicKey   string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel string `env:"ANTHROPIC_MODEL"`
}

// Config is the immutable configuration snapshot for the process lifetime.
// It is loaded once at startup and passed into each component's constructor.
type Config struct {
	Port       int `env:"PORT, default=8000"`
	GitHub     GitHubConfig
	Completion CompletionConfig
}

// Completion provider names
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Load reads the configuration from the environment and resolves the
// GitHub App private key material.
func Load(ctx context.Context) (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	key, err := resolvePrivateKey(cfg.GitHub.PrivateKeyPath, cfg.GitHub.PrivateKey)
	if err != nil {
		return nil, err
	}
	cfg.GitHub.PrivateKey = key

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolvePrivateKey loads the App private key from a file path if one is
// configured, falling back to inline PEM content with escaped newlines.
func resolvePrivateKey(path, inline string) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read private key file: %w", err)
		}
		return string(data), nil
	}
	if inline != "" {
		return strings.ReplaceAll(inline, `\n`, "\n"), nil
	}
	return "", fmt.Errorf("github private key not found: set GITHUB_PRIVATE_KEY_PATH or GITHUB_PRIVATE_KEY")
}

// validateConfig checks that the required configuration is present
func validateConfig(cfg *Config) error {
	if cfg.GitHub.WebhookSecret == "" {
		return fmt.Errorf("github webhook secret is required")
	}

	if cfg.GitHub.AppID == "" {
		return fmt.Errorf("github app id is required")
	}

	switch cfg.Completion.Provider {
	case ProviderOpenAI:
		if cfg.Completion.OpenAIKey == "" {
			return fmt.Errorf("openai api key is required")
		}
	case ProviderAnthropic:
		if cfg.Completion.AnthropicKey == "" {
			return fmt.Errorf("anthropic api key is required")
		}
	default:
		return fmt.Errorf("unknown completion provider: %q", cfg.Completion.Provider)
	}

	return nil
}
