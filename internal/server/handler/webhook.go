package handler

import (
	"log/slog"
	"net/http"

	"github.com/sevigo/pr-warden/internal/review"
)

// WebhookHandler receives GitHub webhook deliveries and translates processor
// outcomes into HTTP responses. Reviews run synchronously within the request;
// GitHub's delivery timeout is generous enough for a single provider call.
type WebhookHandler struct {
	processor *review.WebhookProcessor
	logger    *slog.Logger
}

// NewWebhookHandler creates the handler for POST /api/pr/webhook.
func NewWebhookHandler(processor *review.WebhookProcessor, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{processor: processor, logger: logger}
}

// Handle processes one webhook delivery.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	res, err := h.processor.Process(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	body := map[string]any{"status": string(res.Outcome), "message": res.Message}
	if res.Review != nil {
		body["pr_number"] = res.Review.Ref.Number
		body["head_sha"] = res.Review.Ref.HeadSHA
	}
	respondJSON(w, http.StatusOK, body)
}
