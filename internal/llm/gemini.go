package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"google.golang.org/genai"

	"github.com/sevigo/pr-warden/internal/core"
)

// GeminiProvider generates text through the Google Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewGeminiProvider creates a provider for the given Gemini model.
func NewGeminiProvider(ctx context.Context, apiKey, model string, logger *slog.Logger) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: model, logger: logger}, nil
}

// Generate submits the prompt and returns the generated text. Vendor errors
// are normalized onto the core provider error kinds.
func (p *GeminiProvider) Generate(ctx context.Context, req ModelRequest) (ModelResponse, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.2)),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		p.logger.Error("gemini generation failed", "model", p.model, "error", err)
		return ModelResponse{}, normalizeGeminiError(err)
	}

	text := resp.Text()
	if text == "" {
		return ModelResponse{}, fmt.Errorf("%w: gemini returned an empty response", core.ErrProviderResponse)
	}
	return ModelResponse{Text: text}, nil
}

func normalizeGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", core.ErrProviderAuth, apiErr.Message)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", core.ErrProviderRateLimit, apiErr.Message)
		default:
			return fmt.Errorf("%w: %s", core.ErrProviderResponse, apiErr.Message)
		}
	}
	return fmt.Errorf("%w: %v", core.ErrProviderResponse, err)
}
