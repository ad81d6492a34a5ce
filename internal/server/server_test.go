package server

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/pr-warden/internal/core"
	"github.com/sevigo/pr-warden/internal/edit"
	"github.com/sevigo/pr-warden/internal/llm"
	"github.com/sevigo/pr-warden/internal/review"
	"github.com/sevigo/pr-warden/internal/server/handler"
	"github.com/sevigo/pr-warden/internal/storage"
)

const (
	testRepo   = "octocat/hello"
	testSecret = "s3cr3t"
)

// fakeGateway is an in-memory Gateway double backing the whole API surface.
type fakeGateway struct {
	files      map[string]fakeFile
	diff       string
	prInfo     core.PullRequestInfo
	postedBody string
}

type fakeFile struct {
	content string
	sha     string
}

func (f *fakeGateway) ListFiles(context.Context, string, bool) ([]string, error) {
	paths := make([]string, 0, len(f.files))
	for p := range f.files {
		paths = append(paths, p)
	}
	return paths, nil
}

func (f *fakeGateway) ReadFile(_ context.Context, path string) (string, string, error) {
	file, ok := f.files[path]
	if !ok {
		return "", "", &core.RepoAccessError{
			Op: "read file", Path: path, StatusCode: 404, Err: core.ErrFileNotFound,
		}
	}
	return file.content, file.sha, nil
}

func (f *fakeGateway) WriteFile(_ context.Context, path, content, baseSHA, _ string) (string, error) {
	existing, ok := f.files[path]
	if ok && baseSHA != existing.sha {
		return "", &core.RepoAccessError{
			Op: "write file", Path: path, StatusCode: 409, Err: core.ErrConflict,
		}
	}
	f.files[path] = fakeFile{content: content, sha: existing.sha + "+1"}
	return f.files[path].sha, nil
}

func (f *fakeGateway) GetPullRequest(context.Context, int) (core.PullRequestInfo, error) {
	return f.prInfo, nil
}

func (f *fakeGateway) ListRecentPullRequests(context.Context, int) ([]core.PullRequestInfo, error) {
	return []core.PullRequestInfo{f.prInfo}, nil
}

func (f *fakeGateway) GetPullRequestDiff(context.Context, int) (string, error) {
	return f.diff, nil
}

func (f *fakeGateway) PostPullRequestComment(_ context.Context, _ int, body string) error {
	f.postedBody = body
	return nil
}

type stubProvider struct{ text string }

func (s stubProvider) Generate(context.Context, llm.ModelRequest) (llm.ModelResponse, error) {
	return llm.ModelResponse{Text: s.text}, nil
}

func newTestServer(t *testing.T, gw *fakeGateway) http.Handler {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	registry, err := llm.NewRegistry(map[string]llm.Provider{
		"gemini": stubProvider{text: "looks good"},
	}, "gemini")
	require.NoError(t, err)

	prompts, err := llm.NewPromptManager()
	require.NoError(t, err)

	orchestrator := review.NewOrchestrator(gw, registry, prompts, storage.NewMemoryStore(), 0, time.Minute, logger)
	processor := review.NewWebhookProcessor(testSecret, testRepo, orchestrator, logger)
	session := edit.NewSession(gw, logger)

	return NewRouter(Handlers{
		Agent:   handler.NewAgentHandler(gw, session, logger),
		Review:  handler.NewReviewHandler(orchestrator, registry, testRepo, logger),
		Webhook: handler.NewWebhookHandler(processor, logger),
	}, time.Minute)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reqBody).Encode(body))
	}
	req := httptest.NewRequest(method, path, &reqBody)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(t, &fakeGateway{files: map[string]fakeFile{}})

	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestModelsEndpoint(t *testing.T) {
	h := newTestServer(t, &fakeGateway{files: map[string]fakeFile{}})

	rec := doJSON(t, h, http.MethodGet, "/api/pr/models", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "gemini", body["default_model"])
	assert.Equal(t, []any{"gemini"}, body["available_models"])
}

func TestGetFileRequiresPath(t *testing.T) {
	h := newTestServer(t, &fakeGateway{files: map[string]fakeFile{}})

	rec := doJSON(t, h, http.MethodGet, "/api/agent/file", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetFileNotFound(t *testing.T) {
	h := newTestServer(t, &fakeGateway{files: map[string]fakeFile{}})

	rec := doJSON(t, h, http.MethodGet, "/api/agent/file?path=missing.go", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "not found")
}

func TestEditThenPushFlow(t *testing.T) {
	gw := &fakeGateway{files: map[string]fakeFile{
		"main.go": {content: "package main\n", sha: "sha1"},
	}}
	h := newTestServer(t, gw)

	rec := doJSON(t, h, http.MethodPost, "/api/agent/edit", map[string]string{
		"path":        "main.go",
		"new_content": "package main\n\nfunc main() {}\n",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["diff"], "+func main() {}")

	rec = doJSON(t, h, http.MethodPost, "/api/agent/push", map[string]string{
		"commit_message": "add main",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "package main\n\nfunc main() {}\n", gw.files["main.go"].content)
}

func TestPushWithoutStagedEdit(t *testing.T) {
	h := newTestServer(t, &fakeGateway{files: map[string]fakeFile{}})

	rec := doJSON(t, h, http.MethodPost, "/api/agent/push", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPushConflictReturns409(t *testing.T) {
	gw := &fakeGateway{files: map[string]fakeFile{
		"a.txt": {content: "old\n", sha: "sha1"},
	}}
	h := newTestServer(t, gw)

	rec := doJSON(t, h, http.MethodPost, "/api/agent/edit", map[string]string{
		"path": "a.txt", "new_content": "new\n",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// The remote file moves underneath the staged edit.
	gw.files["a.txt"] = fakeFile{content: "theirs\n", sha: "sha2"}

	rec = doJSON(t, h, http.MethodPost, "/api/agent/push", map[string]string{})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The staged edit survives the conflict and can be abandoned.
	rec = doJSON(t, h, http.MethodDelete, "/api/agent/edit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["cleared"])
}

func TestManualReviewRejectsOtherRepo(t *testing.T) {
	h := newTestServer(t, &fakeGateway{files: map[string]fakeFile{}})

	rec := doJSON(t, h, http.MethodPost, "/api/pr/review", map[string]any{
		"repo_name": "someone/else",
		"pr_number": 1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "not monitored")
}

func TestManualReviewPostsComment(t *testing.T) {
	gw := &fakeGateway{
		files: map[string]fakeFile{},
		diff:  "diff --git a/main.go b/main.go\n+println()\n",
		prInfo: core.PullRequestInfo{
			Ref: core.PullRequestRef{RepoFullName: testRepo, Number: 7, HeadSHA: "abc123"},
		},
	}
	h := newTestServer(t, gw)

	rec := doJSON(t, h, http.MethodPost, "/api/pr/review", map[string]any{
		"pr_number": 7,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "looks good", body["review_content"])
	assert.Contains(t, gw.postedBody, "looks good")
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	h := newTestServer(t, &fakeGateway{files: map[string]fakeFile{}})

	req := httptest.NewRequest(http.MethodPost, "/api/pr/webhook", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", "pull_request")
	req.Header.Set("X-Hub-Signature-256", "sha256=deadbeef")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookReviewsSignedPullRequestEvent(t *testing.T) {
	gw := &fakeGateway{
		files: map[string]fakeFile{},
		diff:  "diff --git a/main.go b/main.go\n+println()\n",
	}
	h := newTestServer(t, gw)

	payload := fmt.Appendf(nil, `{
		"action": "opened",
		"number": 7,
		"pull_request": {"number": 7, "head": {"sha": "abc123"}},
		"repository": {"full_name": %q}
	}`, testRepo)

	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(payload)
	sig := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/api/pr/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", "pull_request")
	req.Header.Set("X-Hub-Signature-256", sig)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "completed", body["status"])
	assert.Contains(t, gw.postedBody, "looks good")
}
