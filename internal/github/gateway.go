// Package github wraps the hosting API for the single configured repository.
// All remote file, pull request and comment operations go through the Gateway
// interface so the orchestration layers never touch the vendor client
// directly.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/sevigo/pr-warden/internal/core"
)

// Gateway defines the repository operations needed by the review and edit
// pipelines. Every call is scoped to the one repository the service is
// configured for.
type Gateway interface {
	// ListFiles returns the paths under the given directory ("" for the
	// repository root), recursing into subdirectories when recursive is set.
	ListFiles(ctx context.Context, path string, recursive bool) ([]string, error)

	// ReadFile returns the decoded content of a file and its blob SHA.
	ReadFile(ctx context.Context, path string) (content, sha string, err error)

	// WriteFile creates or updates a file and returns the new blob SHA.
	// A non-empty baseSHA enables optimistic concurrency: the write fails
	// with core.ErrConflict if the remote blob no longer matches. An empty
	// baseSHA creates the file.
	WriteFile(ctx context.Context, path, content, baseSHA, message string) (newSHA string, err error)

	// GetPullRequest returns metadata for one pull request, including its
	// current head SHA.
	GetPullRequest(ctx context.Context, number int) (core.PullRequestInfo, error)

	// ListRecentPullRequests returns up to limit open pull requests, newest
	// first.
	ListRecentPullRequests(ctx context.Context, limit int) ([]core.PullRequestInfo, error)

	// GetPullRequestDiff returns the raw unified diff of a pull request.
	GetPullRequestDiff(ctx context.Context, number int) (string, error)

	// PostPullRequestComment posts a comment on a pull request.
	PostPullRequestComment(ctx context.Context, number int, body string) error
}

type gateway struct {
	client   *github.Client
	owner    string
	repo     string
	fullName string
	logger   *slog.Logger
}

// NewGateway wraps an existing go-github client for the given "owner/repo"
// repository.
func NewGateway(client *github.Client, repoFullName string, logger *slog.Logger) (Gateway, error) {
	owner, repo, ok := strings.Cut(repoFullName, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("repository name must be in owner/repo form, got %q", repoFullName)
	}
	return &gateway{
		client:   client,
		owner:    owner,
		repo:     repo,
		fullName: repoFullName,
		logger:   logger,
	}, nil
}

// NewPATGateway creates a Gateway authenticated with a Personal Access Token.
// Every remote call is bounded by the given timeout; a timed-out call surfaces
// as a RepoAccessError like any other hosting API failure.
func NewPATGateway(ctx context.Context, token, repoFullName string, timeout time.Duration, logger *slog.Logger) (Gateway, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = timeout
	return NewGateway(github.NewClient(tc), repoFullName, logger)
}

func (g *gateway) ListFiles(ctx context.Context, path string, recursive bool) ([]string, error) {
	var files []string
	pending := []string{path}

	for len(pending) > 0 {
		dir := pending[0]
		pending = pending[1:]

		_, entries, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.repo, dir, nil)
		if err != nil {
			return nil, g.accessError("list files", dir, err)
		}

		for _, entry := range entries {
			switch entry.GetType() {
			case "dir":
				if recursive {
					pending = append(pending, entry.GetPath())
				}
			default:
				files = append(files, entry.GetPath())
			}
		}
	}
	return files, nil
}

func (g *gateway) ReadFile(ctx context.Context, path string) (string, string, error) {
	file, _, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.repo, path, nil)
	if err != nil {
		return "", "", g.accessError("read file", path, err)
	}
	if file == nil {
		return "", "", &core.RepoAccessError{
			Op:   "read file",
			Path: path,
			Err:  fmt.Errorf("%w: %q is a directory", core.ErrFileNotFound, path),
		}
	}

	content, err := file.GetContent()
	if err != nil {
		return "", "", &core.RepoAccessError{Op: "read file", Path: path, Err: err}
	}
	return content, file.GetSHA(), nil
}

func (g *gateway) WriteFile(ctx context.Context, path, content, baseSHA, message string) (string, error) {
	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(message),
		Content: []byte(content),
	}

	var (
		resp *github.RepositoryContentResponse
		err  error
	)
	if baseSHA == "" {
		resp, _, err = g.client.Repositories.CreateFile(ctx, g.owner, g.repo, path, opts)
	} else {
		opts.SHA = github.Ptr(baseSHA)
		resp, _, err = g.client.Repositories.UpdateFile(ctx, g.owner, g.repo, path, opts)
	}
	if err != nil {
		g.logger.Error("failed to write file", "repo", g.fullName, "path", path, "error", err)
		return "", g.accessError("write file", path, err)
	}

	g.logger.Info("committed file", "repo", g.fullName, "path", path, "sha", resp.Content.GetSHA())
	return resp.Content.GetSHA(), nil
}

func (g *gateway) GetPullRequest(ctx context.Context, number int) (core.PullRequestInfo, error) {
	pr, _, err := g.client.PullRequests.Get(ctx, g.owner, g.repo, number)
	if err != nil {
		return core.PullRequestInfo{}, g.accessError(fmt.Sprintf("get pull request #%d", number), "", err)
	}
	return g.infoFromPullRequest(pr), nil
}

func (g *gateway) ListRecentPullRequests(ctx context.Context, limit int) ([]core.PullRequestInfo, error) {
	if limit <= 0 {
		limit = 10
	}
	opts := &github.PullRequestListOptions{
		State:       "open",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: limit},
	}

	prs, _, err := g.client.PullRequests.List(ctx, g.owner, g.repo, opts)
	if err != nil {
		return nil, g.accessError("list pull requests", "", err)
	}

	infos := make([]core.PullRequestInfo, 0, len(prs))
	for _, pr := range prs {
		infos = append(infos, g.infoFromPullRequest(pr))
		if len(infos) == limit {
			break
		}
	}
	return infos, nil
}

func (g *gateway) GetPullRequestDiff(ctx context.Context, number int) (string, error) {
	diff, _, err := g.client.PullRequests.GetRaw(ctx, g.owner, g.repo, number, github.RawOptions{
		Type: github.Diff,
	})
	if err != nil {
		return "", g.accessError(fmt.Sprintf("get diff for pull request #%d", number), "", err)
	}
	return diff, nil
}

func (g *gateway) PostPullRequestComment(ctx context.Context, number int, body string) error {
	comment := &github.IssueComment{Body: github.Ptr(body)}
	_, _, err := g.client.Issues.CreateComment(ctx, g.owner, g.repo, number, comment)
	if err != nil {
		g.logger.Error("failed to create comment", "repo", g.fullName, "pr", number, "error", err)
		return g.accessError(fmt.Sprintf("post comment on pull request #%d", number), "", err)
	}
	return nil
}

func (g *gateway) infoFromPullRequest(pr *github.PullRequest) core.PullRequestInfo {
	return core.PullRequestInfo{
		Ref: core.PullRequestRef{
			RepoFullName: g.fullName,
			Number:       pr.GetNumber(),
			HeadSHA:      pr.GetHead().GetSHA(),
		},
		Title:     pr.GetTitle(),
		Author:    pr.GetUser().GetLogin(),
		Draft:     pr.GetDraft(),
		UpdatedAt: pr.GetUpdatedAt().Time,
	}
}

// accessError converts a go-github failure into a *core.RepoAccessError,
// classifying the well-known statuses onto the taxonomy sentinels and keeping
// the upstream status code for diagnostics.
func (g *gateway) accessError(op, path string, err error) error {
	status := 0
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		status = ghErr.Response.StatusCode
	}

	wrapped := err
	switch status {
	case http.StatusNotFound:
		switch {
		case path != "" && strings.HasPrefix(op, "read"):
			wrapped = fmt.Errorf("%w: %q: %v", core.ErrFileNotFound, path, err)
		case path != "":
			wrapped = fmt.Errorf("%w: %q: %v", core.ErrPathNotFound, path, err)
		default:
			wrapped = fmt.Errorf("%w: %q: %v", core.ErrRepoNotFound, g.fullName, err)
		}
	case http.StatusConflict:
		wrapped = fmt.Errorf("%w: %v", core.ErrConflict, err)
	case http.StatusUnprocessableEntity:
		// The contents API reports a stale base SHA as 422.
		if strings.HasPrefix(op, "write") {
			wrapped = fmt.Errorf("%w: %v", core.ErrConflict, err)
		}
	}

	return &core.RepoAccessError{Op: op, Path: path, StatusCode: status, Err: wrapped}
}
