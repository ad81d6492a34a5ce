package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sevigo/pr-warden/internal/core"
	"github.com/sevigo/pr-warden/internal/llm"
	"github.com/sevigo/pr-warden/internal/review"
)

// ReviewHandler exposes the manual review endpoints. All reviews target the
// single configured repository; a mismatching repo_name is rejected before
// any GitHub call.
type ReviewHandler struct {
	orchestrator *review.Orchestrator
	registry     *llm.Registry
	repoFullName string
	logger       *slog.Logger
}

// NewReviewHandler creates the handler for the /api/pr endpoints.
func NewReviewHandler(orchestrator *review.Orchestrator, registry *llm.Registry, repoFullName string, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		orchestrator: orchestrator,
		registry:     registry,
		repoFullName: repoFullName,
		logger:       logger,
	}
}

// Models handles GET /api/pr/models.
func (h *ReviewHandler) Models(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"available_models": h.registry.Models(),
		"default_model":    h.registry.DefaultModel(),
	})
}

type reviewRequest struct {
	RepoName  string `json:"repo_name"`
	PRNumber  int    `json:"pr_number"`
	ModelName string `json:"model_name,omitempty"`
	Force     bool   `json:"force_review,omitempty"`
}

// Review handles POST /api/pr/review, triggering a review of one pull
// request on demand.
func (h *ReviewHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PRNumber <= 0 {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "pr_number must be a positive integer"})
		return
	}
	if !h.checkRepoName(w, req.RepoName) {
		return
	}

	ref := core.PullRequestRef{RepoFullName: h.repoFullName, Number: req.PRNumber}
	res, err := h.orchestrator.ReviewPullRequest(r.Context(), ref, req.ModelName, req.Force)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, reviewResponse(res))
}

type recentReviewRequest struct {
	RepoName  string `json:"repo_name,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	ModelName string `json:"model_name,omitempty"`
}

// ReviewRecent handles POST /api/pr/review/recent, reviewing the most
// recently updated open pull requests in one pass.
func (h *ReviewHandler) ReviewRecent(w http.ResponseWriter, r *http.Request) {
	var req recentReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.checkRepoName(w, req.RepoName) {
		return
	}
	if req.Limit <= 0 {
		req.Limit = 5
	}

	results, err := h.orchestrator.ReviewRecentPullRequests(r.Context(), req.Limit, req.ModelName)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	out := make([]map[string]any, 0, len(results))
	for _, res := range results {
		out = append(out, reviewResponse(res))
	}
	respondJSON(w, http.StatusOK, map[string]any{"count": len(out), "results": out})
}

// checkRepoName rejects requests naming a repository other than the one this
// instance monitors. An empty repo_name defaults to the configured one.
func (h *ReviewHandler) checkRepoName(w http.ResponseWriter, repoName string) bool {
	if repoName != "" && repoName != h.repoFullName {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("repository %s is not monitored by this instance", repoName),
		})
		return false
	}
	return true
}

func reviewResponse(res core.ReviewResult) map[string]any {
	return map[string]any{
		"repo_name":      res.Ref.RepoFullName,
		"pr_number":      res.Ref.Number,
		"head_sha":       res.Ref.HeadSHA,
		"success":        res.Success,
		"skipped":        res.Skipped,
		"message":        res.Message,
		"review_content": res.ReviewContent,
	}
}
