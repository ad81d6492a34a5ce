package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sevigo/pr-warden/internal/core"
)

const defaultPerplexityURL = "https://api.perplexity.ai/chat/completions"

// PerplexityProvider generates text through the Perplexity chat completions
// API, which follows the OpenAI wire format.
type PerplexityProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewPerplexityProvider creates a provider for the given Perplexity model.
// The httpClient controls the outbound timeout; nil falls back to
// http.DefaultClient.
func NewPerplexityProvider(apiKey, model string, httpClient *http.Client, logger *slog.Logger) (*PerplexityProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("perplexity API key is required")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &PerplexityProvider{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultPerplexityURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type perplexityRequest struct {
	Model       string              `json:"model"`
	Messages    []perplexityMessage `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature"`
}

type perplexityResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate submits the prompt and returns the generated text. HTTP statuses
// are normalized onto the core provider error kinds.
func (p *PerplexityProvider) Generate(ctx context.Context, req ModelRequest) (ModelResponse, error) {
	payload := perplexityRequest{
		Model: p.model,
		Messages: []perplexityMessage{
			{Role: "system", Content: "You are an expert code reviewer with deep knowledge of software engineering best practices, security, and performance optimization."},
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: 0.2,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return ModelResponse{}, fmt.Errorf("%w: failed to encode request: %v", core.ErrProviderResponse, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return ModelResponse{}, fmt.Errorf("%w: %v", core.ErrProviderResponse, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		p.logger.Error("perplexity request failed", "model", p.model, "error", err)
		return ModelResponse{}, fmt.Errorf("%w: %v", core.ErrProviderResponse, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return ModelResponse{}, fmt.Errorf("%w: failed to read response: %v", core.ErrProviderResponse, err)
	}

	if resp.StatusCode != http.StatusOK {
		p.logger.Error("perplexity returned non-OK status", "model", p.model, "status", resp.StatusCode)
		return ModelResponse{}, normalizePerplexityStatus(resp.StatusCode, respBody)
	}

	var parsed perplexityResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return ModelResponse{}, fmt.Errorf("%w: malformed response body: %v", core.ErrProviderResponse, err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return ModelResponse{}, fmt.Errorf("%w: perplexity returned no choices", core.ErrProviderResponse)
	}

	return ModelResponse{Text: parsed.Choices[0].Message.Content}, nil
}

func normalizePerplexityStatus(status int, body []byte) error {
	detail := string(body)
	var parsed perplexityResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil {
		detail = parsed.Error.Message
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: status %d: %s", core.ErrProviderAuth, status, detail)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d: %s", core.ErrProviderRateLimit, status, detail)
	default:
		return fmt.Errorf("%w: status %d: %s", core.ErrProviderResponse, status, detail)
	}
}
