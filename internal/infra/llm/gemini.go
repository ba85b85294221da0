package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ProviderGemini is the registry key and error label for Gemini.
const ProviderGemini = "gemini"

// GeminiConfig configures the Gemini client.
type GeminiConfig struct {
	APIKey         string
	Model          string
	AlternateModel string
	// Timeout bounds each call with a context deadline; the Google client
	// keeps its own transport.
	Timeout time.Duration
}

// GeminiProvider sends the whole prompt as a single user turn.
type GeminiProvider struct {
	client    contentGenerator
	model     string
	alternate string
	timeout   time.Duration
}

// NewGeminiProvider builds a Gemini provider. The API key is required.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	client, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini: build client: %w", err)
	}
	p := newGeminiProvider(client, cfg.Model, cfg.AlternateModel)
	p.timeout = cfg.Timeout
	return p, nil
}

func newGeminiProvider(client contentGenerator, model, alternate string) *GeminiProvider {
	return &GeminiProvider{client: client, model: model, alternate: alternate}
}

// ChatCompletion joins all messages, blank-line separated, into one text part.
func (p *GeminiProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	parts := make([]string, 0, len(req.Messages))
	for _, m := range req.Messages {
		parts = append(parts, m.Content)
	}
	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, strings.Join(parts, "\n\n")),
	}
	return generate(ctx, p.client, ProviderGemini, resolveModel(req, p.model), msgs, req, classifyGeminiError)
}

// ModelInfo returns the configured models.
func (p *GeminiProvider) ModelInfo() ModelMeta {
	return ModelMeta{Provider: ProviderGemini, DefaultModel: p.model, AlternateModel: p.alternate}
}

var geminiKeywords = []keywordRule{
	{KindModelNotFound, containsAll("model", "not found")},
	{KindModelNotFound, containsAny("is not found for api version")},
	{KindAuthInvalid, containsAny("api_key", "api key not valid", "api key expired")},
	{KindQuotaExceeded, containsAny("quota", "resource has been exhausted", "rate limit")},
	{KindPermissionDenied, containsAny("permission")},
	{KindUnavailable, containsAny("overloaded", "unavailable")},
}

// httpCoder is implemented by googleapi/apierror values returned by the REST transport.
type httpCoder interface {
	HTTPCode() int
}

// classifyGeminiError prefers the gRPC status code, then an HTTP code, then
// message keywords.
func classifyGeminiError(err error) (ErrorKind, int) {
	httpStatus := 0
	var hc httpCoder
	if errors.As(err, &hc) {
		httpStatus = hc.HTTPCode()
	}
	if httpStatus <= 0 {
		httpStatus = statusFromMessage(err.Error())
	}

	if st, ok := status.FromError(err); ok {
		if kind, matched := kindFromCode(st.Code(), st.Message()); matched {
			return kind, httpStatus
		}
	}
	if kind, ok := kindFromStatus(httpStatus); ok {
		return kind, httpStatus
	}
	return kindFromKeywords(err.Error(), geminiKeywords), httpStatus
}

func kindFromCode(code codes.Code, msg string) (ErrorKind, bool) {
	switch code {
	case codes.NotFound:
		return KindModelNotFound, true
	case codes.Unauthenticated:
		return KindAuthInvalid, true
	case codes.ResourceExhausted:
		return KindQuotaExceeded, true
	case codes.PermissionDenied:
		return KindPermissionDenied, true
	case codes.Unavailable:
		return KindUnavailable, true
	case codes.InvalidArgument:
		if strings.Contains(strings.ToLower(msg), "api key") {
			return KindAuthInvalid, true
		}
	}
	return "", false
}
