package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/pr-warden/internal/core"
)

type stubProvider struct {
	text string
	err  error
}

func (s *stubProvider) Generate(_ context.Context, _ ModelRequest) (ModelResponse, error) {
	if s.err != nil {
		return ModelResponse{}, s.err
	}
	return ModelResponse{Text: s.text}, nil
}

func TestNewRegistry_Validation(t *testing.T) {
	_, err := NewRegistry(nil, "gemini")
	assert.Error(t, err, "empty provider set must be rejected")

	_, err = NewRegistry(map[string]Provider{"gemini": &stubProvider{}}, "perplexity")
	assert.Error(t, err, "default model without a provider must be rejected")
}

func TestRegistry_Get(t *testing.T) {
	reg, err := NewRegistry(map[string]Provider{
		"gemini":     &stubProvider{text: "from gemini"},
		"perplexity": &stubProvider{text: "from perplexity"},
	}, "gemini")
	require.NoError(t, err)

	t.Run("known model", func(t *testing.T) {
		p, err := reg.Get("perplexity")
		require.NoError(t, err)
		resp, err := p.Generate(context.Background(), ModelRequest{Prompt: "hi"})
		require.NoError(t, err)
		assert.Equal(t, "from perplexity", resp.Text)
	})

	t.Run("empty name selects the default", func(t *testing.T) {
		p, err := reg.Get("")
		require.NoError(t, err)
		resp, err := p.Generate(context.Background(), ModelRequest{Prompt: "hi"})
		require.NoError(t, err)
		assert.Equal(t, "from gemini", resp.Text)
	})

	t.Run("unknown model", func(t *testing.T) {
		_, err := reg.Get("claude")
		assert.ErrorIs(t, err, core.ErrUnsupportedModel)
	})
}

func TestRegistry_Models(t *testing.T) {
	reg, err := NewRegistry(map[string]Provider{
		"perplexity": &stubProvider{},
		"gemini":     &stubProvider{},
	}, "perplexity")
	require.NoError(t, err)

	assert.Equal(t, []string{"gemini", "perplexity"}, reg.Models())
	assert.Equal(t, "perplexity", reg.DefaultModel())
}

func TestPromptManager_RenderCodeReview(t *testing.T) {
	pm, err := NewPromptManager()
	require.NoError(t, err)

	data := ReviewPromptData{
		RepoFullName: "octocat/hello",
		PRNumber:     7,
		Diff:         "--- a.txt\n+++ a.txt\n@@ -1 +1 @@\n-old\n+new\n",
	}

	t.Run("provider specific template", func(t *testing.T) {
		out, err := pm.Render(CodeReviewPrompt, "perplexity", data)
		require.NoError(t, err)
		assert.Contains(t, out, "octocat/hello#7")
		assert.Contains(t, out, "+new")
	})

	t.Run("unknown provider falls back to default", func(t *testing.T) {
		out, err := pm.Render(CodeReviewPrompt, "gemini", data)
		require.NoError(t, err)
		assert.Contains(t, out, "octocat/hello#7")
	})

	t.Run("unknown key fails", func(t *testing.T) {
		_, err := pm.Render("no_such_prompt", DefaultProvider, data)
		assert.Error(t, err)
	})
}
