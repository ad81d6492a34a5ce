// Package handler provides the HTTP handlers for the PR-Warden API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sevigo/pr-warden/internal/core"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError maps a typed error onto an HTTP status and a JSON {error}
// body. The error kind stays visible in the message; stack traces and raw
// upstream payloads never leave the process.
func respondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, core.ErrSignatureInvalid):
		status = http.StatusUnauthorized
	case errors.Is(err, core.ErrUnsupportedModel), errors.Is(err, core.ErrNoPendingEdit):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, core.ErrFileNotFound),
		errors.Is(err, core.ErrPathNotFound),
		errors.Is(err, core.ErrRepoNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrProviderRateLimit):
		status = http.StatusTooManyRequests
	case errors.Is(err, core.ErrProviderAuth), errors.Is(err, core.ErrProviderResponse):
		status = http.StatusBadGateway
	default:
		var accessErr *core.RepoAccessError
		if errors.As(err, &accessErr) {
			status = http.StatusBadGateway
		}
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON payload"})
		return false
	}
	return true
}
