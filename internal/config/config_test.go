package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		ServerPort:          "8080",
		GitHubToken:         "ghp_token",
		GitHubRepoName:      "octocat/hello",
		GitHubWebhookSecret: "s3cr3t",
		GeminiAPIKey:        "gm-key",
		DefaultAIModel:      ModelGemini,
		GitHubTimeout:       30 * time.Second,
		ProviderTimeout:     2 * time.Minute,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing token",
			mutate:  func(c *Config) { c.GitHubToken = "" },
			wantErr: true,
		},
		{
			name:    "missing repo name",
			mutate:  func(c *Config) { c.GitHubRepoName = "" },
			wantErr: true,
		},
		{
			name:    "repo name without owner",
			mutate:  func(c *Config) { c.GitHubRepoName = "hello" },
			wantErr: true,
		},
		{
			name:    "missing webhook secret",
			mutate:  func(c *Config) { c.GitHubWebhookSecret = "" },
			wantErr: true,
		},
		{
			name: "no AI keys at all",
			mutate: func(c *Config) {
				c.GeminiAPIKey = ""
				c.PerplexityAPIKey = ""
			},
			wantErr: true,
		},
		{
			name: "default model without matching key",
			mutate: func(c *Config) {
				c.GeminiAPIKey = ""
				c.PerplexityAPIKey = "px-key"
			},
			wantErr: true,
		},
		{
			name: "perplexity default with perplexity key",
			mutate: func(c *Config) {
				c.GeminiAPIKey = ""
				c.PerplexityAPIKey = "px-key"
				c.DefaultAIModel = ModelPerplexity
			},
			wantErr: false,
		},
		{
			name:    "unknown default model",
			mutate:  func(c *Config) { c.DefaultAIModel = "claude" },
			wantErr: true,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.ProviderTimeout = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
