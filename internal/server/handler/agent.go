package handler

import (
	"log/slog"
	"net/http"

	"github.com/sevigo/pr-warden/internal/edit"
	"github.com/sevigo/pr-warden/internal/github"
)

// AgentHandler exposes the repository browsing and edit staging endpoints
// used by the chat client.
type AgentHandler struct {
	gateway github.Gateway
	session *edit.Session
	logger  *slog.Logger
}

// NewAgentHandler creates the handler for the /api/agent endpoints.
func NewAgentHandler(gateway github.Gateway, session *edit.Session, logger *slog.Logger) *AgentHandler {
	return &AgentHandler{gateway: gateway, session: session, logger: logger}
}

// ListFiles handles GET /api/agent/files.
func (h *AgentHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.gateway.ListFiles(r.Context(), "", true)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if files == nil {
		files = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"files": files})
}

// GetFile handles GET /api/agent/file?path=. It is the explicit read-only
// fetch; callers wanting current content should use this instead of posting
// an empty new_content to the diff endpoint.
func (h *AgentHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "path query parameter required"})
		return
	}

	content, sha, err := h.gateway.ReadFile(r.Context(), path)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"path": path, "content": content, "sha": sha})
}

type editRequest struct {
	Path       string `json:"path"`
	NewContent string `json:"new_content"`
	Goal       string `json:"goal,omitempty"`
}

// Diff handles POST /api/agent/diff. It computes the diff without staging
// anything. An empty new_content diffs against emptiness, which shows the
// whole current content as removed lines.
func (h *AgentHandler) Diff(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Path == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "path is required"})
		return
	}

	res, err := h.session.PreviewDiff(r.Context(), req.Path, req.NewContent)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"diff": res.Unified})
}

// Edit handles POST /api/agent/edit. The edit is staged locally; nothing is
// written to the repository until a push.
func (h *AgentHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Path == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "path is required"})
		return
	}

	res, err := h.session.ProposeEdit(r.Context(), req.Path, req.NewContent, req.Goal)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "edit is staged and ready to be pushed",
		"path":    req.Path,
		"diff":    res.Unified,
	})
}

type pushRequest struct {
	CommitMessage string `json:"commit_message"`
}

// Push handles POST /api/agent/push, applying the staged edit.
func (h *AgentHandler) Push(w http.ResponseWriter, r *http.Request) {
	var req pushRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	newSHA, err := h.session.ApplyPendingEdit(r.Context(), req.CommitMessage)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "staged edit has been pushed to the repository",
		"sha":     newSHA,
	})
}

// AbandonEdit handles DELETE /api/agent/edit, discarding the staged edit.
func (h *AgentHandler) AbandonEdit(w http.ResponseWriter, _ *http.Request) {
	cleared := h.session.Abandon()
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "cleared": cleared})
}
