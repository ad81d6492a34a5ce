// Package review drives the pull request review pipeline: deduplication
// against recorded reviews, prompt construction, provider invocation and
// posting the result back to the pull request.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sevigo/pr-warden/internal/core"
	"github.com/sevigo/pr-warden/internal/github"
	"github.com/sevigo/pr-warden/internal/llm"
	"github.com/sevigo/pr-warden/internal/storage"
)

// Orchestrator owns the review pipeline for the configured repository. Entry
// points are serialized with a mutex: the host may accept concurrent HTTP
// requests, but reviews run one at a time so the review record set sees at
// most one write per revision.
type Orchestrator struct {
	mu sync.Mutex

	gateway      github.Gateway
	registry     *llm.Registry
	prompts      *llm.PromptManager
	store        storage.Store
	maxDiffBytes int
	callTimeout  time.Duration
	logger       *slog.Logger
}

// NewOrchestrator creates a review orchestrator. maxDiffBytes bounds the diff
// embedded into prompts; callTimeout bounds each provider invocation.
func NewOrchestrator(
	gw github.Gateway,
	registry *llm.Registry,
	prompts *llm.PromptManager,
	store storage.Store,
	maxDiffBytes int,
	callTimeout time.Duration,
	logger *slog.Logger,
) *Orchestrator {
	if maxDiffBytes <= 0 {
		maxDiffBytes = 64 * 1024
	}
	if callTimeout <= 0 {
		callTimeout = 2 * time.Minute
	}
	return &Orchestrator{
		gateway:      gw,
		registry:     registry,
		prompts:      prompts,
		store:        store,
		maxDiffBytes: maxDiffBytes,
		callTimeout:  callTimeout,
		logger:       logger,
	}
}

// ReviewPullRequest runs the full pipeline for one pull request. A review of
// an already-reviewed revision is skipped unless force is set; force still
// refreshes the review record on success. A failure after generation but
// before posting is reported distinctly so the caller may retry just the
// post.
func (o *Orchestrator) ReviewPullRequest(ctx context.Context, ref core.PullRequestRef, modelName string, force bool) (core.ReviewResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.logger.Info("starting review", "pr", ref.String(), "model", modelName, "force", force)

	// Manual requests arrive without a head SHA; resolve it first so
	// deduplication always compares revisions.
	if ref.HeadSHA == "" {
		info, err := o.gateway.GetPullRequest(ctx, ref.Number)
		if err != nil {
			return core.ReviewResult{Ref: ref}, err
		}
		ref.HeadSHA = info.Ref.HeadSHA
		if info.Draft && !force {
			return o.skip(ref, "skipped draft pull request"), nil
		}
	}

	if !force {
		record, err := o.store.GetLatestReviewForPR(ctx, ref.RepoFullName, ref.Number)
		if err != nil && !errors.Is(err, storage.ErrNoReview) {
			return core.ReviewResult{Ref: ref}, fmt.Errorf("failed to look up review record: %w", err)
		}
		if record != nil && record.HeadSHA == ref.HeadSHA {
			o.logger.Info("revision already reviewed, skipping", "pr", ref.String(), "head_sha", ref.HeadSHA)
			return o.skip(ref, "already reviewed"), nil
		}
	}

	diff, err := o.gateway.GetPullRequestDiff(ctx, ref.Number)
	if err != nil {
		return core.ReviewResult{Ref: ref}, err
	}
	if strings.TrimSpace(diff) == "" {
		return o.skip(ref, "no changes"), nil
	}
	if len(diff) > o.maxDiffBytes {
		diff = truncateDiff(diff, o.maxDiffBytes)
	}

	provider, err := o.registry.Get(modelName)
	if err != nil {
		return core.ReviewResult{Ref: ref}, err
	}
	effectiveModel := modelName
	if effectiveModel == "" {
		effectiveModel = o.registry.DefaultModel()
	}

	prompt, err := o.prompts.Render(llm.CodeReviewPrompt, llm.ModelProvider(effectiveModel), llm.ReviewPromptData{
		RepoFullName: ref.RepoFullName,
		PRNumber:     ref.Number,
		Diff:         diff,
	})
	if err != nil {
		return core.ReviewResult{Ref: ref}, fmt.Errorf("failed to render review prompt: %w", err)
	}

	genCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	resp, err := provider.Generate(genCtx, llm.ModelRequest{Prompt: prompt, MaxTokens: 4000})
	if err != nil {
		o.logger.Error("review generation failed", "pr", ref.String(), "model", effectiveModel, "error", err)
		return core.ReviewResult{Ref: ref, Message: "review generation failed"}, err
	}

	body := resp.Text + reviewFooter(effectiveModel)
	if err := o.gateway.PostPullRequestComment(ctx, ref.Number, body); err != nil {
		o.logger.Error("review generated but posting failed", "pr", ref.String(), "error", err)
		return core.ReviewResult{
			Ref:           ref,
			ReviewContent: resp.Text,
			Message:       "review generated but posting failed",
		}, fmt.Errorf("review generated but posting failed: %w", err)
	}

	record := &core.ReviewRecord{
		RepoFullName:  ref.RepoFullName,
		PRNumber:      ref.Number,
		HeadSHA:       ref.HeadSHA,
		ReviewContent: resp.Text,
	}
	if err := o.store.SaveReview(ctx, record); err != nil {
		// The review is already posted; losing the record only risks a
		// duplicate review later.
		o.logger.Warn("failed to save review record", "pr", ref.String(), "error", err)
	}

	o.logger.Info("review posted", "pr", ref.String(), "model", effectiveModel)
	return core.ReviewResult{
		Ref:           ref,
		Success:       true,
		Message:       "review posted successfully",
		ReviewContent: resp.Text,
	}, nil
}

// ReviewRecentPullRequests reviews up to limit open pull requests, newest
// first, sequentially. Individual failures do not stop the run.
func (o *Orchestrator) ReviewRecentPullRequests(ctx context.Context, limit int, modelName string) ([]core.ReviewResult, error) {
	infos, err := o.gateway.ListRecentPullRequests(ctx, limit)
	if err != nil {
		return nil, err
	}

	results := make([]core.ReviewResult, 0, len(infos))
	for _, info := range infos {
		res, err := o.ReviewPullRequest(ctx, info.Ref, modelName, false)
		if err != nil {
			res.Ref = info.Ref
			res.Success = false
			if res.Message == "" {
				res.Message = err.Error()
			}
		}
		results = append(results, res)
	}
	return results, nil
}

func (o *Orchestrator) skip(ref core.PullRequestRef, reason string) core.ReviewResult {
	return core.ReviewResult{Ref: ref, Success: true, Skipped: true, Message: reason}
}

// truncateDiff cuts diff down to at most maxBytes, backing up to a rune
// boundary so the prompt never carries a torn multi-byte sequence.
func truncateDiff(diff string, maxBytes int) string {
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(diff[cut]) {
		cut--
	}
	return diff[:cut] + "\n... (diff truncated)\n"
}

func reviewFooter(model string) string {
	return fmt.Sprintf(
		"\n\n---\n*This review was generated by AI using the %s model on %s.*\n*Please use your judgment and consider the suggestions carefully.*\n",
		model, time.Now().UTC().Format("2006-01-02 15:04:05 UTC"))
}
