package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"
)

// ErrNotConfigured is returned by Route for a backend that has no client.
var ErrNotConfigured = errors.New("llm provider not configured")

// Router holds the configured providers by name. A provider missing from the
// router is "not configured".
type Router struct {
	providers map[string]LLMProvider
}

// NewRouter creates a Router from an initial set of providers. Nil entries are skipped.
func NewRouter(providers map[string]LLMProvider) *Router {
	ps := make(map[string]LLMProvider, len(providers))
	for k, v := range providers {
		if v != nil {
			ps[k] = v
		}
	}
	return &Router{providers: ps}
}

// Register adds (or replaces) a provider under the given key.
func (r *Router) Register(key string, p LLMProvider) {
	if p == nil {
		delete(r.providers, key)
		return
	}
	r.providers[key] = p
}

// Route returns the provider registered under key.
func (r *Router) Route(key string) (LLMProvider, error) {
	p, ok := r.providers[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q (configured: %v)", ErrNotConfigured, key, r.Configured())
	}
	return p, nil
}

// Configured returns the registered provider names, sorted.
func (r *Router) Configured() []string {
	out := make([]string, 0, len(r.providers))
	for k := range r.providers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Settings are the inputs needed to build every vendor client.
type Settings struct {
	OpenAI  OpenAIConfig
	Gemini  GeminiConfig
	Timeout time.Duration
}

// NewRouterFromSettings builds a client for each vendor whose API key is set.
// Vendors without a key are left unregistered.
func NewRouterFromSettings(ctx context.Context, s Settings) (*Router, error) {
	var httpClient *http.Client
	if s.Timeout > 0 {
		httpClient = &http.Client{Timeout: s.Timeout}
	}

	r := NewRouter(nil)
	if s.OpenAI.APIKey != "" {
		cfg := s.OpenAI
		cfg.HTTPClient = httpClient
		p, err := NewOpenAIProvider(cfg)
		if err != nil {
			return nil, err
		}
		r.Register(ProviderOpenAI, p)
	}
	if s.Gemini.APIKey != "" {
		cfg := s.Gemini
		cfg.Timeout = s.Timeout
		p, err := NewGeminiProvider(ctx, cfg)
		if err != nil {
			return nil, err
		}
		r.Register(ProviderGemini, p)
	}
	return r, nil
}
