package analysis

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/matiasleandrokruk/groundedgrowth/internal/infra/llm"
)

// AdapterConfig describes one backend. A nil Client means no API key was
// configured; the adapter still answers, with a placeholder.
type AdapterConfig struct {
	Provider       Provider // ProviderOpenAI or ProviderGemini
	Client         llm.LLMProvider
	PrimaryModel   string
	AlternateModel string
	MaxTokens      int
	Temperature    float64
	Logger         *zap.Logger
	Observer       Observer
}

// Adapter wraps one backend client. Its state is fixed at construction.
type Adapter struct {
	provider    Provider
	client      llm.LLMProvider
	primary     string
	alternate   string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
	observer    Observer
}

// NewAdapter builds an adapter. Models left empty are taken from the client.
func NewAdapter(cfg AdapterConfig) *Adapter {
	a := &Adapter{
		provider:    cfg.Provider,
		client:      cfg.Client,
		primary:     cfg.PrimaryModel,
		alternate:   cfg.AlternateModel,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      cfg.Logger,
		observer:    cfg.Observer,
	}
	if a.client != nil {
		meta := a.client.ModelInfo()
		if a.primary == "" {
			a.primary = meta.DefaultModel
		}
		if a.alternate == "" {
			a.alternate = meta.AlternateModel
		}
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if a.observer == nil {
		a.observer = nopObserver{}
	}
	return a
}

// Provider returns the backend this adapter wraps.
func (a *Adapter) Provider() Provider { return a.provider }

// Configured reports whether an API key was present at construction.
func (a *Adapter) Configured() bool { return a.client != nil }

// Invoke runs the prompt against the primary model. A missing model is
// retried exactly once against the alternate; every other failure is
// terminal. Invoke never panics.
func (a *Adapter) Invoke(ctx context.Context, prompt Prompt, goals []string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("backend client panicked",
				zap.String("provider", a.provider.String()),
				zap.Any("panic", r),
			)
			out = Failed(fmt.Sprintf("error interno en %s", a.provider.displayName()))
		}
		a.observer.ObserveAttempt(a.provider.String(), out.Status.String())
	}()

	if !a.Configured() {
		reason := reasonNotConfigured(a.provider)
		a.logger.Debug("backend not configured", zap.String("provider", a.provider.String()))
		return Degraded(placeholder(a.provider, goals, reason), reason, "")
	}

	content, err := a.call(ctx, a.primary, prompt)
	if err == nil {
		return Success(content)
	}
	if ctx.Err() != nil {
		return a.cancelled(ctx)
	}

	kind, status := llm.KindOf(err), llm.StatusOf(err)
	a.logFailure(a.primary, err)
	retried := false

	if kind == llm.KindModelNotFound && a.alternate != "" && a.alternate != a.primary {
		retried = true
		a.logger.Info("retrying with alternate model",
			zap.String("provider", a.provider.String()),
			zap.String("model", a.alternate),
		)
		content, err = a.call(ctx, a.alternate, prompt)
		if err == nil {
			return Success(content)
		}
		if ctx.Err() != nil {
			return a.cancelled(ctx)
		}
		kind, status = llm.KindOf(err), llm.StatusOf(err)
		a.logFailure(a.alternate, err)
	}

	reason := reasonFor(a.provider, kind, status, retried)
	return Degraded(placeholder(a.provider, goals, reason), reason, kind)
}

func (a *Adapter) call(ctx context.Context, model string, prompt Prompt) (string, error) {
	resp, err := a.client.ChatCompletion(ctx, llm.ChatRequest{
		Model:       model,
		Messages:    a.messages(prompt),
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// messages sends chat backends a system and a user turn, and Gemini a
// single combined text.
func (a *Adapter) messages(prompt Prompt) []llm.Message {
	if a.provider == ProviderGemini {
		return []llm.Message{{Role: llm.RoleUser, Content: prompt.Combined()}}
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: prompt.System},
		{Role: llm.RoleUser, Content: prompt.User},
	}
}

func (a *Adapter) cancelled(ctx context.Context) Outcome {
	a.logger.Info("backend call abandoned",
		zap.String("provider", a.provider.String()),
		zap.Error(ctx.Err()),
	)
	return Failed(fmt.Sprintf("solicitud a %s cancelada", a.provider.displayName()))
}

func (a *Adapter) logFailure(model string, err error) {
	kind := llm.KindOf(err)
	a.observer.ObserveBackendError(a.provider.String(), string(kind))
	a.logger.Warn("backend call failed",
		zap.String("provider", a.provider.String()),
		zap.String("model", model),
		zap.String("kind", string(kind)),
		zap.Int("status", llm.StatusOf(err)),
		zap.Error(err),
	)
}

func reasonNotConfigured(p Provider) string {
	if p == ProviderOpenAI {
		return "No hay API key de OpenAI configurada"
	}
	return "No hay API key configurada"
}

// reasonFor names the terminal failure in the backend's own wording.
func reasonFor(p Provider, kind llm.ErrorKind, status int, retried bool) string {
	if p == ProviderOpenAI {
		switch kind {
		case llm.KindModelNotFound:
			if retried {
				return "Ningún modelo de OpenAI está disponible"
			}
			return "Modelo de OpenAI no disponible"
		case llm.KindAuthInvalid:
			return "API Key de OpenAI inválida"
		case llm.KindQuotaExceeded:
			if status == 402 {
				return "Créditos de OpenAI agotados"
			}
			return "Límite de uso de OpenAI excedido"
		case llm.KindPermissionDenied:
			return "Acceso denegado por OpenAI"
		case llm.KindUnavailable:
			return "Servicio de OpenAI temporalmente no disponible"
		default:
			return "Error de conexión con OpenAI"
		}
	}

	switch kind {
	case llm.KindModelNotFound:
		if retried {
			return "Ambos modelos de Gemini no están disponibles"
		}
		return "Modelo de Gemini no disponible"
	case llm.KindAuthInvalid:
		return "API Key inválida o no configurada"
	case llm.KindQuotaExceeded:
		return "Cuota de API gratuita excedida"
	case llm.KindPermissionDenied:
		return "Plan gratuito - modelo no disponible"
	case llm.KindUnavailable:
		return "Servicio de Gemini temporalmente no disponible"
	default:
		return "Error de conexión con Gemini"
	}
}
