// Package llm provides a uniform capability interface over the supported LLM
// backends. Callers select a concrete provider by model name through a closed
// registry and branch only on the normalized error kinds defined in core,
// never on vendor identity.
package llm

import (
	"context"
	"fmt"
	"sort"

	"github.com/sevigo/pr-warden/internal/core"
)

// ModelRequest is a single stateless generation request.
type ModelRequest struct {
	Prompt    string
	MaxTokens int
}

// ModelResponse carries the generated text of a successful request.
type ModelResponse struct {
	Text string
}

// Provider is the capability contract every backend implements. Generate
// performs exactly one outbound call; retry policy belongs to the caller.
// Implementations normalize vendor failures onto core.ErrProviderAuth,
// core.ErrProviderRateLimit or core.ErrProviderResponse.
type Provider interface {
	Generate(ctx context.Context, req ModelRequest) (ModelResponse, error)
}

// Registry maps model names to their providers. The set of providers is fixed
// at construction time; an unknown name fails with core.ErrUnsupportedModel.
type Registry struct {
	providers    map[string]Provider
	defaultModel string
}

// NewRegistry builds a registry from the given providers. defaultModel is
// used when a caller passes an empty model name and must be present in the
// map.
func NewRegistry(providers map[string]Provider, defaultModel string) (*Registry, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one provider must be configured")
	}
	if _, ok := providers[defaultModel]; !ok {
		return nil, fmt.Errorf("default model %q has no configured provider", defaultModel)
	}
	return &Registry{providers: providers, defaultModel: defaultModel}, nil
}

// Get resolves a model name to its provider. An empty name selects the
// default model.
func (r *Registry) Get(modelName string) (Provider, error) {
	if modelName == "" {
		modelName = r.defaultModel
	}
	p, ok := r.providers[modelName]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", core.ErrUnsupportedModel, modelName, r.Models())
	}
	return p, nil
}

// Models returns the registered model names in sorted order.
func (r *Registry) Models() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultModel returns the name used when callers do not pick a model.
func (r *Registry) DefaultModel() string {
	return r.defaultModel
}
