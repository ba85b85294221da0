package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// contentGenerator is the subset of llms.Model used here. Tests substitute
// a fake; production uses the langchaingo vendor clients.
type contentGenerator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// classifier turns a raw vendor error into (kind, status).
type classifier func(err error) (ErrorKind, int)

// generate runs one completion against gen and wraps any failure in *Error.
func generate(ctx context.Context, gen contentGenerator, provider, model string, msgs []llms.MessageContent, req ChatRequest, classify classifier) (*ChatResponse, error) {
	opts := []llms.CallOption{llms.WithModel(model)}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(req.Temperature))
	}

	resp, err := gen.GenerateContent(ctx, msgs, opts...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s %s: %w", provider, model, ctxErr)
		}
		kind, status := classify(err)
		return nil, &Error{Provider: provider, Model: model, Kind: kind, StatusCode: status, Err: err}
	}

	if resp == nil || len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return nil, &Error{Provider: provider, Model: model, Kind: KindUnknown, Err: ErrEmptyResponse}
	}

	choice := resp.Choices[0]
	return &ChatResponse{Content: choice.Content, Model: model, StopReason: choice.StopReason}, nil
}

func resolveModel(req ChatRequest, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	return fallback
}
