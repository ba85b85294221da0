// Package llm wraps the vendor text-generation clients behind one
// model-agnostic interface and classifies their failures.
package llm

// Role is the author of a message turn.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message represents a single turn in a conversation (role + content).
type Message struct {
	Role    Role
	Content string
}

// ChatRequest is the input for a non-streaming completion.
type ChatRequest struct {
	// Model overrides the provider default when non-empty.
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// ChatResponse is the output from a non-streaming completion.
type ChatResponse struct {
	Content    string // The assistant message text.
	Model      string // The model that produced Content.
	StopReason string
}

// ModelMeta describes the provider identity and its configured models.
type ModelMeta struct {
	Provider       string // "openai" | "gemini"
	DefaultModel   string
	AlternateModel string // empty when no alternate is configured
}
