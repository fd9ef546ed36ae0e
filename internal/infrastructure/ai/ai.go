// Package ai provides the analysis client factory and its backends.
//
// Three backends are available, selected by the model's Backend field:
//   - gemini: Google's Gemini API through the genai SDK (the default)
//   - anthropic: the Anthropic Messages API through its SDK
//   - http: a configuration-driven JSON client for OpenAI-compatible services (OpenAI, Ollama, ...)
//
// Every client makes exactly one attempt per call and reports failures as *domain.AnalysisError.
package ai

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/doeshing/bugsqa/internal/domain"
	"github.com/doeshing/bugsqa/internal/ports"
)

// Factory creates analysis clients based on model definitions.
// It maintains a single HTTP client shared across the http backend.
type Factory struct {
	httpClient *http.Client
	getenv     func(string) string
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithHTTPClient replaces the HTTP client used by the http backend.
func WithHTTPClient(c *http.Client) FactoryOption {
	return func(f *Factory) {
		if c != nil {
			f.httpClient = c
		}
	}
}

// WithGetenv replaces the environment lookup used to resolve credentials.
func WithGetenv(getenv func(string) string) FactoryOption {
	return func(f *Factory) {
		if getenv != nil {
			f.getenv = getenv
		}
	}
}

// NewFactory creates a new client factory.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		httpClient: &http.Client{Timeout: domain.DefaultHTTPClientTimeout},
		getenv:     os.Getenv,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ForModel builds the client for model. A missing credential is domain.ErrConfiguration.
func (f *Factory) ForModel(ctx context.Context, model domain.ModelDefinition) (ports.AnalysisClient, error) {
	switch model.Backend {
	case domain.BackendGemini, "":
		key, err := f.requireKey(model, domain.DefaultAPIKeyEnvVar)
		if err != nil {
			return nil, err
		}
		return newGeminiClient(ctx, model, key)
	case domain.BackendAnthropic:
		key, err := f.requireKey(model, "ANTHROPIC_API_KEY")
		if err != nil {
			return nil, err
		}
		return newAnthropicClient(model, key), nil
	case domain.BackendHTTP:
		if model.Endpoint == "" {
			return nil, fmt.Errorf("%w: model %s has no endpoint", domain.ErrConfiguration, model.Name)
		}
		// Local services such as Ollama need no key; only a declared variable is mandatory.
		var key string
		if model.AuthEnvVar != "" {
			var err error
			if key, err = f.requireKey(model, ""); err != nil {
				return nil, err
			}
		}
		return newHTTPClient(model, key, f.getenv(model.OrgEnvVar), f.httpClient), nil
	default:
		return nil, fmt.Errorf("%w: unsupported backend %q for model %s", domain.ErrConfiguration, model.Backend, model.Name)
	}
}

func (f *Factory) requireKey(model domain.ModelDefinition, fallback string) (string, error) {
	envVar := valueOrDefault(model.AuthEnvVar, fallback)
	if key := resolveAuth(f.getenv, envVar, fallback); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%w: %s is not set (required by model %s)", domain.ErrConfiguration, envVar, model.Name)
}

var _ ports.ClientFactory = (*Factory)(nil)
