package review

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/pr-warden/internal/core"
)

// Outcome classifies how a webhook delivery was handled.
type Outcome string

const (
	// OutcomeIgnored means the event type or action does not trigger a
	// review. Not an error.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeSkipped means the revision was already reviewed.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeCompleted means a review was generated and posted.
	OutcomeCompleted Outcome = "completed"
)

// WebhookResult is the terminal state of processing one delivery.
type WebhookResult struct {
	Outcome Outcome
	Message string
	Review  *core.ReviewResult
}

// reviewRunner is the slice of the orchestrator the webhook processor needs.
type reviewRunner interface {
	ReviewPullRequest(ctx context.Context, ref core.PullRequestRef, modelName string, force bool) (core.ReviewResult, error)
}

// WebhookProcessor authenticates inbound webhook deliveries and hands
// eligible pull request events to the orchestrator. Verification happens
// before any parsing of the event body: a payload with a bad signature is
// rejected without being looked at.
type WebhookProcessor struct {
	secret       []byte
	repoFullName string
	runner       reviewRunner
	logger       *slog.Logger
}

// NewWebhookProcessor creates a processor bound to the configured repository
// and shared webhook secret.
func NewWebhookProcessor(secret, repoFullName string, runner reviewRunner, logger *slog.Logger) *WebhookProcessor {
	return &WebhookProcessor{
		secret:       []byte(secret),
		repoFullName: repoFullName,
		runner:       runner,
		logger:       logger,
	}
}

// Process runs the delivery through verification, filtering, deduplication
// and review. A signature mismatch returns core.ErrSignatureInvalid; events
// that simply do not warrant a review return an ignored result, not an
// error.
func (p *WebhookProcessor) Process(r *http.Request) (WebhookResult, error) {
	// ValidatePayload performs a constant-time HMAC comparison of the
	// signature header against the shared secret.
	payload, err := github.ValidatePayload(r, p.secret)
	if err != nil {
		p.logger.Warn("rejecting webhook with invalid signature", "error", err)
		return WebhookResult{}, fmt.Errorf("%w: %v", core.ErrSignatureInvalid, err)
	}

	eventType := github.WebHookType(r)
	if eventType == "ping" {
		return WebhookResult{Outcome: OutcomeIgnored, Message: "webhook received successfully"}, nil
	}

	event, err := github.ParseWebHook(eventType, payload)
	if err != nil {
		return WebhookResult{}, fmt.Errorf("could not parse webhook payload: %w", err)
	}

	prEvent, ok := event.(*github.PullRequestEvent)
	if !ok {
		p.logger.Debug("ignoring webhook event type", "type", eventType)
		return WebhookResult{Outcome: OutcomeIgnored, Message: fmt.Sprintf("event type %s ignored", eventType)}, nil
	}

	ref, reviewable, err := core.EventFromPullRequest(prEvent)
	if err != nil {
		return WebhookResult{}, fmt.Errorf("invalid pull request event: %w", err)
	}
	if !reviewable {
		return WebhookResult{
			Outcome: OutcomeIgnored,
			Message: fmt.Sprintf("pull request action %s ignored", prEvent.GetAction()),
		}, nil
	}

	if ref.RepoFullName != p.repoFullName {
		p.logger.Warn("ignoring event for unconfigured repository", "repo", ref.RepoFullName)
		return WebhookResult{
			Outcome: OutcomeIgnored,
			Message: fmt.Sprintf("repository %s is not monitored", ref.RepoFullName),
		}, nil
	}

	res, err := p.runner.ReviewPullRequest(r.Context(), ref, "", false)
	if err != nil {
		return WebhookResult{}, err
	}
	if res.Skipped {
		return WebhookResult{Outcome: OutcomeSkipped, Message: res.Message, Review: &res}, nil
	}
	return WebhookResult{Outcome: OutcomeCompleted, Message: res.Message, Review: &res}, nil
}
