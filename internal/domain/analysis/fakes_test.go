package analysis

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/matiasleandrokruk/groundedgrowth/internal/infra/llm"
)

// scriptedClient answers per model and records every request.
type scriptedClient struct {
	name      string
	primary   string
	alternate string

	mu       sync.Mutex
	requests []llm.ChatRequest
	replies  map[string]scriptedReply
	panicMsg string
}

type scriptedReply struct {
	content string
	err     error
}

func newScriptedClient(name, primary, alternate string) *scriptedClient {
	return &scriptedClient{name: name, primary: primary, alternate: alternate, replies: map[string]scriptedReply{}}
}

func (c *scriptedClient) reply(model, content string) *scriptedClient {
	c.replies[model] = scriptedReply{content: content}
	return c
}

func (c *scriptedClient) fail(model string, kind llm.ErrorKind, status int) *scriptedClient {
	c.replies[model] = scriptedReply{err: &llm.Error{
		Provider:   c.name,
		Model:      model,
		Kind:       kind,
		StatusCode: status,
		Err:        errors.New("scripted failure"),
	}}
	return c
}

func (c *scriptedClient) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	r, ok := c.replies[req.Model]
	p := c.panicMsg
	c.mu.Unlock()

	if p != "" {
		panic(p)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ok {
		return nil, &llm.Error{Provider: c.name, Model: req.Model, Kind: llm.KindUnknown, Err: errors.New("no script")}
	}
	if r.err != nil {
		return nil, r.err
	}
	return &llm.ChatResponse{Content: r.content, Model: req.Model}, nil
}

func (c *scriptedClient) ModelInfo() llm.ModelMeta {
	return llm.ModelMeta{Provider: c.name, DefaultModel: c.primary, AlternateModel: c.alternate}
}

func (c *scriptedClient) models() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.requests))
	for _, r := range c.requests {
		out = append(out, r.Model)
	}
	return out
}

func (c *scriptedClient) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

// recordingObserver keeps every observation in order.
type recordingObserver struct {
	mu       sync.Mutex
	analyses []string
	attempts []string
	errors   []string
}

func (r *recordingObserver) ObserveAnalysis(providerUsed string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses = append(r.analyses, providerUsed)
}

func (r *recordingObserver) ObserveAttempt(provider, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, provider+":"+outcome)
}

func (r *recordingObserver) ObserveBackendError(provider, kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, provider+":"+kind)
}

const (
	openAIPrimary   = "gpt-3.5-turbo"
	openAIAlternate = "gpt-4o-mini"
	geminiPrimary   = "models/gemini-1.5-flash"
	geminiAlternate = "gemini-1.5-flash-latest"
)

func openAIAdapter(c *scriptedClient, obs Observer) *Adapter {
	cfg := AdapterConfig{Provider: ProviderOpenAI, Observer: obs}
	if c != nil {
		cfg.Client = c
	}
	return NewAdapter(cfg)
}

func geminiAdapter(c *scriptedClient, obs Observer) *Adapter {
	cfg := AdapterConfig{Provider: ProviderGemini, Observer: obs}
	if c != nil {
		cfg.Client = c
	}
	return NewAdapter(cfg)
}
