package analysis

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Request is one analysis call. A zero ProviderOverride defers to the stored
// preference.
type Request struct {
	EntryText        string
	Goals            []string
	ProviderOverride Provider
}

// Result is always populated. ProviderUsed is openai, gemini or local.
type Result struct {
	Content      string
	ProviderUsed Provider
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the orchestrator logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver sets the metrics sink.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// Orchestrator selects backends for each request and falls back to the
// local generator when none produced content.
type Orchestrator struct {
	openai   *Adapter
	gemini   *Adapter
	pref     *Preference
	logger   *zap.Logger
	observer Observer
}

// NewOrchestrator wires both adapters and the shared preference. A nil
// adapter behaves as an unconfigured backend; a nil preference reads as auto.
func NewOrchestrator(openai, gemini *Adapter, pref *Preference, opts ...Option) *Orchestrator {
	if openai == nil {
		openai = NewAdapter(AdapterConfig{Provider: ProviderOpenAI})
	}
	if gemini == nil {
		gemini = NewAdapter(AdapterConfig{Provider: ProviderGemini})
	}
	if pref == nil {
		pref = &Preference{}
	}
	o := &Orchestrator{
		openai:   openai,
		gemini:   gemini,
		pref:     pref,
		logger:   zap.NewNop(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Preference returns the shared provider preference.
func (o *Orchestrator) Preference() *Preference { return o.pref }

// Analyze returns an analysis for req. It never fails: when no backend
// produces content, or anything downstream panics, the result comes from
// the local generator.
func (o *Orchestrator) Analyze(ctx context.Context, req Request) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("analysis panicked, using local fallback", zap.Any("panic", r))
			res = o.local(req.Goals)
		}
		o.observer.ObserveAnalysis(res.ProviderUsed.String(), time.Since(start))
	}()

	selected := o.selection(req.ProviderOverride)
	prompt := BuildPrompt(req.EntryText, req.Goals)

	if selected.IsBackend() {
		return o.single(ctx, selected, prompt, req.Goals)
	}
	return o.cascade(ctx, prompt, req.Goals)
}

// selection resolves the tier to use: an explicit backend override, else the
// stored preference.
func (o *Orchestrator) selection(override Provider) Provider {
	if override.IsBackend() {
		return override
	}
	if override != "" && override != ProviderAuto {
		o.logger.Debug("ignoring unknown provider override", zap.String("override", override.String()))
	}
	return o.pref.Get()
}

// single calls one backend; any non-success goes straight to local.
func (o *Orchestrator) single(ctx context.Context, p Provider, prompt Prompt, goals []string) Result {
	out := o.adapter(p).Invoke(ctx, prompt, goals)
	if out.OK() {
		return Result{Content: FormatResponse(out.Content), ProviderUsed: p}
	}
	o.logger.Info("selected backend did not answer, using local fallback",
		zap.String("provider", p.String()),
		zap.String("outcome", out.Status.String()),
		zap.String("reason", out.Reason),
	)
	return o.local(goals)
}

// cascade tries OpenAI, then Gemini, then local, strictly in that order.
func (o *Orchestrator) cascade(ctx context.Context, prompt Prompt, goals []string) Result {
	for _, a := range []*Adapter{o.openai, o.gemini} {
		out := a.Invoke(ctx, prompt, goals)
		if out.OK() {
			return Result{Content: FormatResponse(out.Content), ProviderUsed: a.Provider()}
		}
		o.logger.Info("escalating past backend",
			zap.String("provider", a.Provider().String()),
			zap.String("outcome", out.Status.String()),
			zap.String("reason", out.Reason),
		)
	}
	return o.local(goals)
}

func (o *Orchestrator) adapter(p Provider) *Adapter {
	if p == ProviderGemini {
		return o.gemini
	}
	return o.openai
}

func (o *Orchestrator) local(goals []string) Result {
	return Result{Content: LocalFallback(goals), ProviderUsed: ProviderLocal}
}
