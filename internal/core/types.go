// Package core defines the essential data structures and error taxonomy shared
// by the review and edit pipelines. These types are deliberately free of
// transport or vendor concerns so the orchestration logic stays decoupled from
// the GitHub API and the individual LLM backends.
package core

import (
	"fmt"
	"time"
)

// PullRequestRef identifies a pull request within the configured repository.
// Identity for deduplication purposes is (RepoFullName, Number); HeadSHA pins
// the exact revision a review applies to.
type PullRequestRef struct {
	RepoFullName string
	Number       int
	HeadSHA      string
}

func (r PullRequestRef) String() string {
	return fmt.Sprintf("%s#%d", r.RepoFullName, r.Number)
}

// PullRequestInfo carries the listing metadata returned alongside a ref when
// enumerating recent pull requests.
type PullRequestInfo struct {
	Ref       PullRequestRef
	Title     string
	Author    string
	Draft     bool
	UpdatedAt time.Time
}

// ReviewRecord marks that a given PR revision has already received a review.
// Records are append-only; a new head SHA on the same PR produces a new record.
type ReviewRecord struct {
	ID            int64
	RepoFullName  string
	PRNumber      int
	HeadSHA       string
	ReviewContent string
	CreatedAt     time.Time
}

// PendingEdit is a staged, not-yet-committed file modification awaiting
// explicit approval. At most one exists per session. BaseSHA is the blob SHA
// the proposal was computed against; empty means the file did not exist.
type PendingEdit struct {
	Path       string
	NewContent string
	BaseSHA    string
	Goal       string
	CreatedAt  time.Time
}

// ReviewResult is the outcome of a single review attempt, surfaced both to
// HTTP callers and to the webhook processor.
type ReviewResult struct {
	Ref           PullRequestRef
	Success       bool
	Skipped       bool
	Message       string
	ReviewContent string
}
