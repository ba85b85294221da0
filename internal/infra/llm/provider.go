package llm

import "context"

// LLMProvider is the vendor-neutral completion interface. Implementations
// return *Error for every vendor failure so callers can branch on Kind.
type LLMProvider interface {
	// ChatCompletion performs a non-streaming completion.
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// ModelInfo returns static metadata about the provider/models.
	ModelInfo() ModelMeta
}
