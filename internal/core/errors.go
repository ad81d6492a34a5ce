package core

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the application's error taxonomy. Callers branch on
// these with errors.Is and never on vendor-specific failures.
var (
	// ErrSignatureInvalid is returned when a webhook payload fails HMAC
	// verification.
	ErrSignatureInvalid = errors.New("webhook signature invalid")

	// ErrUnsupportedModel is returned when a model name is not present in the
	// provider registry.
	ErrUnsupportedModel = errors.New("unsupported model")

	// Normalized provider failures. Every backend maps its vendor-specific
	// errors onto exactly one of these.
	ErrProviderAuth      = errors.New("provider authentication failed")
	ErrProviderRateLimit = errors.New("provider rate limit exceeded")
	ErrProviderResponse  = errors.New("provider response failed")

	// Repository access failure subtypes, always carried inside a
	// *RepoAccessError.
	ErrRepoNotFound = errors.New("repository not found")
	ErrPathNotFound = errors.New("path not found")
	ErrFileNotFound = errors.New("file not found")
	ErrConflict     = errors.New("remote content changed since base revision")

	// ErrNoPendingEdit is returned when an apply is requested with nothing
	// staged.
	ErrNoPendingEdit = errors.New("no pending edit staged")
)

// RepoAccessError wraps a failure from the hosting API, preserving the
// upstream HTTP status for diagnostics. It wraps one of the repository
// sentinel errors above when the failure has a recognized subtype.
type RepoAccessError struct {
	Op         string
	Path       string
	StatusCode int
	Err        error
}

func (e *RepoAccessError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("repo access: %s %q (status %d): %v", e.Op, e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("repo access: %s (status %d): %v", e.Op, e.StatusCode, e.Err)
}

func (e *RepoAccessError) Unwrap() error {
	return e.Err
}
