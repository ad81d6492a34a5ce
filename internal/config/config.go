// Package config loads and validates the service configuration from the
// environment and an optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported AI model names.
const (
	ModelGemini     = "gemini"
	ModelPerplexity = "perplexity"
)

// Config holds the application's configuration values. Missing required
// values are a startup-fatal condition, never a per-request error.
type Config struct {
	ServerPort string
	LogLevel   slog.Level
	LogFormat  string

	GitHubToken         string
	GitHubRepoName      string
	GitHubWebhookSecret string

	GeminiAPIKey        string
	GeminiModelName     string
	PerplexityAPIKey    string
	PerplexityModelName string
	DefaultAIModel      string

	DatabasePath string

	GitHubTimeout   time.Duration
	ProviderTimeout time.Duration
	MaxDiffBytes    int
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates required fields. It uses the Viper
// library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("GEMINI_MODEL_NAME", "gemini-2.5-flash")
	viper.SetDefault("PERPLEXITY_MODEL_NAME", "sonar-pro")
	viper.SetDefault("DEFAULT_AI_MODEL", ModelGemini)
	viper.SetDefault("DATABASE_PATH", "data/pr-warden.db")
	viper.SetDefault("GITHUB_TIMEOUT_SECONDS", 30)
	viper.SetDefault("PROVIDER_TIMEOUT_SECONDS", 120)
	viper.SetDefault("MAX_DIFF_BYTES", 64*1024)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("failed to read .env file, relying on environment", "error", err)
		}
	}

	cfg := &Config{
		ServerPort:          viper.GetString("SERVER_PORT"),
		LogLevel:            parseLogLevel(viper.GetString("LOG_LEVEL")),
		LogFormat:           viper.GetString("LOG_FORMAT"),
		GitHubToken:         viper.GetString("GITHUB_TOKEN"),
		GitHubRepoName:      viper.GetString("GITHUB_REPO_NAME"),
		GitHubWebhookSecret: viper.GetString("GITHUB_WEBHOOK_SECRET"),
		GeminiAPIKey:        viper.GetString("GEMINI_API_KEY"),
		GeminiModelName:     viper.GetString("GEMINI_MODEL_NAME"),
		PerplexityAPIKey:    viper.GetString("PERPLEXITY_API_KEY"),
		PerplexityModelName: viper.GetString("PERPLEXITY_MODEL_NAME"),
		DefaultAIModel:      viper.GetString("DEFAULT_AI_MODEL"),
		DatabasePath:        viper.GetString("DATABASE_PATH"),
		GitHubTimeout:       time.Duration(viper.GetInt("GITHUB_TIMEOUT_SECONDS")) * time.Second,
		ProviderTimeout:     time.Duration(viper.GetInt("PROVIDER_TIMEOUT_SECONDS")) * time.Second,
		MaxDiffBytes:        viper.GetInt("MAX_DIFF_BYTES"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the required fields and cross-field constraints.
func (c *Config) Validate() error {
	if c.GitHubToken == "" {
		return fmt.Errorf("GITHUB_TOKEN must be set")
	}
	if c.GitHubRepoName == "" {
		return fmt.Errorf("GITHUB_REPO_NAME must be set")
	}
	if owner, repo, ok := strings.Cut(c.GitHubRepoName, "/"); !ok || owner == "" || repo == "" {
		return fmt.Errorf("GITHUB_REPO_NAME must be in owner/repo form, got %q", c.GitHubRepoName)
	}
	if c.GitHubWebhookSecret == "" {
		return fmt.Errorf("GITHUB_WEBHOOK_SECRET must be set")
	}

	if c.GeminiAPIKey == "" && c.PerplexityAPIKey == "" {
		return fmt.Errorf("at least one AI API key (GEMINI_API_KEY or PERPLEXITY_API_KEY) must be set")
	}

	switch c.DefaultAIModel {
	case ModelGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY must be set when DEFAULT_AI_MODEL is %q", ModelGemini)
		}
	case ModelPerplexity:
		if c.PerplexityAPIKey == "" {
			return fmt.Errorf("PERPLEXITY_API_KEY must be set when DEFAULT_AI_MODEL is %q", ModelPerplexity)
		}
	default:
		return fmt.Errorf("DEFAULT_AI_MODEL must be %q or %q, got %q", ModelGemini, ModelPerplexity, c.DefaultAIModel)
	}

	if c.GitHubTimeout <= 0 || c.ProviderTimeout <= 0 {
		return fmt.Errorf("outbound call timeouts must be positive")
	}
	return nil
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		return slog.LevelInfo
	default:
		slog.Warn("unrecognized log level, defaulting to info", "provided", s)
		return slog.LevelInfo
	}
}
