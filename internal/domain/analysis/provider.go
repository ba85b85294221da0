// Package analysis turns a journal entry plus the user's goals into a
// reflective HTML analysis. It picks a generative backend, builds the prompt,
// classifies backend failures, retries once on a missing model, escalates
// across backends and, as a last resort, produces a deterministic local text.
// Analyze never fails.
package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// Provider names a backend or the automatic selection mode.
type Provider string

const (
	ProviderAuto   Provider = "auto"
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
	ProviderLocal  Provider = "local"
)

// ErrInvalidProvider is returned when a selection is outside {auto, openai, gemini}.
var ErrInvalidProvider = errors.New("invalid AI provider")

// ParseProvider accepts "auto", "openai" or "gemini" (case-insensitive).
// "local" is a result tag, never a selection.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case ProviderAuto, ProviderOpenAI, ProviderGemini:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q (use auto, openai or gemini)", ErrInvalidProvider, s)
	}
}

// IsBackend reports whether p names a remote backend.
func (p Provider) IsBackend() bool {
	return p == ProviderOpenAI || p == ProviderGemini
}

func (p Provider) String() string { return string(p) }

// displayName is the vendor name used in user-facing texts.
func (p Provider) displayName() string {
	switch p {
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderGemini:
		return "Gemini"
	default:
		return string(p)
	}
}
