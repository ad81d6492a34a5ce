// Package app initializes and orchestrates the main components of the
// PR-Warden application. It wires together the configuration, GitHub
// gateway, AI providers, review pipeline and HTTP server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sevigo/pr-warden/internal/config"
	"github.com/sevigo/pr-warden/internal/db"
	"github.com/sevigo/pr-warden/internal/edit"
	"github.com/sevigo/pr-warden/internal/github"
	"github.com/sevigo/pr-warden/internal/llm"
	"github.com/sevigo/pr-warden/internal/review"
	"github.com/sevigo/pr-warden/internal/server"
	"github.com/sevigo/pr-warden/internal/server/handler"
	"github.com/sevigo/pr-warden/internal/storage"
)

// App holds the main application components.
type App struct {
	cfg       *config.Config
	server    *server.Server
	logger    *slog.Logger
	dbCleanup func()
}

// NewApp sets up the application with all its dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	logger.Info("initializing PR-Warden application",
		"repo", cfg.GitHubRepoName,
		"default_model", cfg.DefaultAIModel)

	dbConn, dbCleanup, err := db.NewDatabase(cfg.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	store := storage.NewStore(dbConn.DB)

	gateway, err := github.NewPATGateway(ctx, cfg.GitHubToken, cfg.GitHubRepoName, cfg.GitHubTimeout, logger)
	if err != nil {
		dbCleanup()
		return nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}

	registry, err := buildProviderRegistry(ctx, cfg, logger)
	if err != nil {
		dbCleanup()
		return nil, err
	}

	prompts, err := llm.NewPromptManager()
	if err != nil {
		dbCleanup()
		return nil, fmt.Errorf("failed to initialize prompt manager: %w", err)
	}

	orchestrator := review.NewOrchestrator(
		gateway, registry, prompts, store,
		cfg.MaxDiffBytes, cfg.ProviderTimeout, logger,
	)
	webhookProcessor := review.NewWebhookProcessor(cfg.GitHubWebhookSecret, cfg.GitHubRepoName, orchestrator, logger)
	session := edit.NewSession(gateway, logger)

	handlers := server.Handlers{
		Agent:   handler.NewAgentHandler(gateway, session, logger),
		Review:  handler.NewReviewHandler(orchestrator, registry, cfg.GitHubRepoName, logger),
		Webhook: handler.NewWebhookHandler(webhookProcessor, logger),
	}

	// One review may wait out the full provider timeout; give the request a
	// margin on top of it.
	requestTimeout := cfg.ProviderTimeout + cfg.GitHubTimeout
	httpServer := server.NewServer(cfg.ServerPort, handlers, requestTimeout, logger)

	logger.Info("PR-Warden application initialized successfully")
	return &App{
		cfg:       cfg,
		server:    httpServer,
		logger:    logger,
		dbCleanup: dbCleanup,
	}, nil
}

// Start runs the HTTP server and blocks until it stops.
func (a *App) Start() error {
	a.logger.Info("starting PR-Warden", "server_port", a.cfg.ServerPort)

	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the application cleanly.
func (a *App) Stop() error {
	a.logger.Info("shutting down PR-Warden services")

	serverErr := a.server.Stop()
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
		// Continue to release the remaining resources.
	}

	a.logger.Info("closing database connection")
	a.dbCleanup()

	if serverErr != nil {
		return serverErr
	}
	a.logger.Info("PR-Warden stopped successfully")
	return nil
}

// buildProviderRegistry constructs a provider per configured API key. Config
// validation already guarantees at least one key and a matching default.
func buildProviderRegistry(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*llm.Registry, error) {
	providers := make(map[string]llm.Provider)

	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModelName, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini provider: %w", err)
		}
		providers[config.ModelGemini] = gemini
		logger.Info("registered AI provider", "name", config.ModelGemini, "model", cfg.GeminiModelName)
	}

	if cfg.PerplexityAPIKey != "" {
		perplexity, err := llm.NewPerplexityProvider(
			cfg.PerplexityAPIKey, cfg.PerplexityModelName,
			&http.Client{Timeout: cfg.ProviderTimeout}, logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Perplexity provider: %w", err)
		}
		providers[config.ModelPerplexity] = perplexity
		logger.Info("registered AI provider", "name", config.ModelPerplexity, "model", cfg.PerplexityModelName)
	}

	registry, err := llm.NewRegistry(providers, cfg.DefaultAIModel)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider registry: %w", err)
	}
	return registry, nil
}
