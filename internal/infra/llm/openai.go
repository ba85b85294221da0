package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ProviderOpenAI is the registry key and error label for OpenAI.
const ProviderOpenAI = "openai"

// OpenAIConfig configures the OpenAI chat client.
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string // optional, for proxies and tests
	Model          string
	AlternateModel string
	HTTPClient     *http.Client
}

// OpenAIProvider sends system and user turns to the chat completions API.
type OpenAIProvider struct {
	client    contentGenerator
	model     string
	alternate string
}

// NewOpenAIProvider builds an OpenAI provider. The API key is required.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, openai.WithHTTPClient(cfg.HTTPClient))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("openai: build client: %w", err)
	}
	return newOpenAIProvider(client, cfg.Model, cfg.AlternateModel), nil
}

func newOpenAIProvider(client contentGenerator, model, alternate string) *OpenAIProvider {
	return &OpenAIProvider{client: client, model: model, alternate: alternate}
}

// ChatCompletion maps each message onto its chat role.
func (p *OpenAIProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	msgs := make([]llms.MessageContent, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := llms.ChatMessageTypeHuman
		if m.Role == RoleSystem {
			role = llms.ChatMessageTypeSystem
		}
		msgs = append(msgs, llms.TextParts(role, m.Content))
	}
	return generate(ctx, p.client, ProviderOpenAI, resolveModel(req, p.model), msgs, req, classifyOpenAIError)
}

// ModelInfo returns the configured models.
func (p *OpenAIProvider) ModelInfo() ModelMeta {
	return ModelMeta{Provider: ProviderOpenAI, DefaultModel: p.model, AlternateModel: p.alternate}
}

var openAIKeywords = []keywordRule{
	{KindModelNotFound, containsAny("model_not_found", "does not exist")},
	{KindAuthInvalid, containsAny("invalid_api_key", "incorrect api key", "invalid api key")},
	{KindQuotaExceeded, containsAny("insufficient_quota", "rate limit", "quota")},
	{KindPermissionDenied, containsAny("permission", "not allowed")},
	{KindUnavailable, containsAny("overloaded", "service unavailable")},
}

// classifyOpenAIError reads the HTTP status from the client error text and
// falls back to message keywords.
func classifyOpenAIError(err error) (ErrorKind, int) {
	msg := err.Error()
	status := statusFromMessage(msg)
	if kind, ok := kindFromStatus(status); ok {
		return kind, status
	}
	return kindFromKeywords(msg, openAIKeywords), status
}
