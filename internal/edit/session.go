// Package edit implements the two-phase file edit workflow: a proposed change
// is staged together with its diff, and only an explicit apply commits it to
// the repository.
package edit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sevigo/pr-warden/internal/core"
	"github.com/sevigo/pr-warden/internal/diff"
	"github.com/sevigo/pr-warden/internal/github"
)

// Session holds the single pending edit slot. Entry points are serialized
// with a mutex so concurrent HTTP requests cannot race the slot; staging a
// new edit always replaces the previous one.
type Session struct {
	mu      sync.Mutex
	gateway github.Gateway
	pending *core.PendingEdit
	logger  *slog.Logger
}

// NewSession creates an edit session against the configured repository.
func NewSession(gw github.Gateway, logger *slog.Logger) *Session {
	return &Session{gateway: gw, logger: logger}
}

// PreviewDiff computes the diff between the current remote content of path
// and newContent without staging anything. A missing file is treated as an
// empty baseline.
func (s *Session) PreviewDiff(ctx context.Context, path, newContent string) (diff.Result, error) {
	current, _, err := s.readBaseline(ctx, path)
	if err != nil {
		return diff.Result{}, err
	}
	return diff.Compute(path, current, newContent), nil
}

// ProposeEdit stages newContent for path and returns the diff against the
// current remote content. The remote blob SHA is remembered so the later
// apply detects concurrent remote edits. Only one edit is in flight; a second
// proposal overwrites the first.
func (s *Session) ProposeEdit(ctx context.Context, path, newContent, goal string) (diff.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, baseSHA, err := s.readBaseline(ctx, path)
	if err != nil {
		return diff.Result{}, err
	}

	result := diff.Compute(path, current, newContent)

	if s.pending != nil {
		s.logger.Info("replacing pending edit", "previous", s.pending.Path, "path", path)
	}
	s.pending = &core.PendingEdit{
		Path:       path,
		NewContent: newContent,
		BaseSHA:    baseSHA,
		Goal:       goal,
		CreatedAt:  time.Now().UTC(),
	}

	s.logger.Info("edit staged", "path", path, "base_sha", baseSHA)
	return result, nil
}

// ApplyPendingEdit commits the staged edit and clears the slot. With nothing
// staged it fails with core.ErrNoPendingEdit. On a gateway failure, including
// a base SHA conflict, the pending edit is left intact so the caller may
// re-stage or retry.
func (s *Session) ApplyPendingEdit(ctx context.Context, commitMessage string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return "", core.ErrNoPendingEdit
	}
	if commitMessage == "" {
		commitMessage = "AI agent code update"
	}

	newSHA, err := s.gateway.WriteFile(ctx, s.pending.Path, s.pending.NewContent, s.pending.BaseSHA, commitMessage)
	if err != nil {
		s.logger.Error("failed to apply pending edit", "path", s.pending.Path, "error", err)
		return "", fmt.Errorf("failed to apply pending edit: %w", err)
	}

	s.logger.Info("pending edit applied", "path", s.pending.Path, "new_sha", newSHA)
	s.pending = nil
	return newSHA, nil
}

// Abandon discards the staged edit, if any. It reports whether an edit was
// pending.
func (s *Session) Abandon() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	had := s.pending != nil
	s.pending = nil
	return had
}

// Pending returns a copy of the staged edit, or nil when nothing is staged.
func (s *Session) Pending() *core.PendingEdit {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return nil
	}
	copied := *s.pending
	return &copied
}

// readBaseline fetches the current content and blob SHA of path, treating a
// missing file as an empty baseline for a new file.
func (s *Session) readBaseline(ctx context.Context, path string) (string, string, error) {
	content, sha, err := s.gateway.ReadFile(ctx, path)
	if err != nil {
		if errors.Is(err, core.ErrFileNotFound) {
			return "", "", nil
		}
		return "", "", err
	}
	return content, sha, nil
}
