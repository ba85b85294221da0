package llm

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tmc/langchaingo/llms"
)

// Compile-time interface checks.
var (
	_ LLMProvider = (*OpenAIProvider)(nil)
	_ LLMProvider = (*GeminiProvider)(nil)
)

// fakeGenerator records every call and answers from a per-model table.
type fakeGenerator struct {
	mu      sync.Mutex
	calls   []fakeCall
	replies map[string]fakeReply
}

type fakeCall struct {
	model    string
	messages []llms.MessageContent
	opts     llms.CallOptions
}

type fakeReply struct {
	content string
	err     error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var opts llms.CallOptions
	for _, o := range options {
		o(&opts)
	}

	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{model: opts.Model, messages: messages, opts: opts})
	reply, ok := f.replies[opts.Model]
	f.mu.Unlock()

	if !ok {
		return nil, errors.New("fake: no reply for model " + opts.Model)
	}
	if reply.err != nil {
		return nil, reply.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: reply.content, StopReason: "stop"}}}, nil
}

func textOf(t *testing.T, m llms.MessageContent) string {
	t.Helper()
	if len(m.Parts) != 1 {
		t.Fatalf("expected one part, got %d", len(m.Parts))
	}
	part, ok := m.Parts[0].(llms.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", m.Parts[0])
	}
	return part.Text
}

var sampleRequest = ChatRequest{
	Messages: []Message{
		{Role: RoleSystem, Content: "sistema"},
		{Role: RoleUser, Content: "usuario"},
	},
	MaxTokens:   800,
	Temperature: 0.7,
}

func TestOpenAIProvider_ChatCompletion_MapsRolesAndOptions(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{replies: map[string]fakeReply{"gpt-3.5-turbo": {content: "<p>hola</p>"}}}
	p := newOpenAIProvider(gen, "gpt-3.5-turbo", "")

	resp, err := p.ChatCompletion(context.Background(), sampleRequest)
	if err != nil {
		t.Fatalf("ChatCompletion: %v", err)
	}
	if resp.Content != "<p>hola</p>" || resp.Model != "gpt-3.5-turbo" {
		t.Errorf("unexpected response %+v", resp)
	}

	call := gen.calls[0]
	if len(call.messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(call.messages))
	}
	if call.messages[0].Role != llms.ChatMessageTypeSystem || call.messages[1].Role != llms.ChatMessageTypeHuman {
		t.Errorf("unexpected roles %q / %q", call.messages[0].Role, call.messages[1].Role)
	}
	if call.opts.MaxTokens != 800 || call.opts.Temperature != 0.7 {
		t.Errorf("unexpected call options %+v", call.opts)
	}
}

func TestOpenAIProvider_ChatCompletion_ModelOverride(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{replies: map[string]fakeReply{"gpt-4o-mini": {content: "ok"}}}
	p := newOpenAIProvider(gen, "gpt-3.5-turbo", "gpt-4o-mini")

	req := sampleRequest
	req.Model = "gpt-4o-mini"
	if _, err := p.ChatCompletion(context.Background(), req); err != nil {
		t.Fatalf("ChatCompletion: %v", err)
	}
	if gen.calls[0].model != "gpt-4o-mini" {
		t.Errorf("expected override model, got %q", gen.calls[0].model)
	}
}

func TestOpenAIProvider_ChatCompletion_ClassifiesError(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{replies: map[string]fakeReply{
		"gpt-3.5-turbo": {err: errors.New("API returned unexpected status code: 401: Incorrect API key provided")},
	}}
	p := newOpenAIProvider(gen, "gpt-3.5-turbo", "")

	_, err := p.ChatCompletion(context.Background(), sampleRequest)
	if KindOf(err) != KindAuthInvalid {
		t.Fatalf("expected auth_invalid, got %v", err)
	}
	if StatusOf(err) != 401 {
		t.Errorf("expected status 401, got %d", StatusOf(err))
	}
}

func TestProvider_EmptyResponse(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{replies: map[string]fakeReply{"m": {content: "   "}}}
	p := newOpenAIProvider(gen, "m", "")

	_, err := p.ChatCompletion(context.Background(), sampleRequest)
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	if KindOf(err) != KindUnknown {
		t.Errorf("expected unknown kind, got %q", KindOf(err))
	}
}

func TestProvider_CancelledContext_IsNotClassified(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{replies: map[string]fakeReply{"m": {err: errors.New("API returned unexpected status code: 404")}}}
	p := newOpenAIProvider(gen, "m", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.ChatCompletion(ctx, sampleRequest)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var classified *Error
	if errors.As(err, &classified) {
		t.Errorf("cancellation must not be classified as a vendor error: %v", classified)
	}
}

func TestGeminiProvider_ChatCompletion_SingleCombinedTurn(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{replies: map[string]fakeReply{"models/gemini-1.5-flash": {content: "texto"}}}
	p := newGeminiProvider(gen, "models/gemini-1.5-flash", "gemini-1.5-flash-latest")

	if _, err := p.ChatCompletion(context.Background(), sampleRequest); err != nil {
		t.Fatalf("ChatCompletion: %v", err)
	}

	call := gen.calls[0]
	if len(call.messages) != 1 || call.messages[0].Role != llms.ChatMessageTypeHuman {
		t.Fatalf("expected one human message, got %+v", call.messages)
	}
	if got := textOf(t, call.messages[0]); got != "sistema\n\nusuario" {
		t.Errorf("unexpected combined prompt %q", got)
	}

	meta := p.ModelInfo()
	if meta.Provider != ProviderGemini || meta.AlternateModel != "gemini-1.5-flash-latest" {
		t.Errorf("unexpected model info %+v", meta)
	}
}

func TestNewProviders_RequireAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := NewOpenAIProvider(OpenAIConfig{Model: "gpt-3.5-turbo"}); err == nil {
		t.Error("expected error for missing OpenAI key")
	}
	if _, err := NewGeminiProvider(context.Background(), GeminiConfig{Model: "models/gemini-1.5-flash"}); err == nil {
		t.Error("expected error for missing Gemini key")
	}
}
