package llm

import (
	"context"

	"github.com/Conceptual-Machines/studybuddy-api/internal/models"
)

// Provider defines the interface for LLM providers.
// Implementations must not retry internally; the orchestrator owns fallback.
type Provider interface {
	// Generate sends a prepared prompt bundle and returns the answer text
	Generate(ctx context.Context, bundle *PromptBundle) (*Completion, error)

	// Capabilities describes which prompt features the provider accepts
	Capabilities() Capabilities

	// Name returns the provider name (e.g., "openai", "gemini")
	Name() string
}

// Capabilities drives how the prompt builder shapes a bundle for a provider
type Capabilities struct {
	SupportsImage      bool
	SupportsSystemRole bool
}

// PromptBundle is everything a provider needs for one generation call
type PromptBundle struct {
	System   string // empty when folded into the first user message
	Messages []models.Message
	Image    *ImagePayload
	Params   GenerationParams
}

// ImagePayload is an inline image sent alongside the last user message
type ImagePayload struct {
	MIMEType string
	Data     []byte
}

// GenerationParams bounds a single generation call
type GenerationParams struct {
	Model       string // provider default when empty
	MaxTokens   int
	Temperature float64
	Thinking    bool
}

// Usage holds token counts reported by the provider
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Completion is a successful provider answer
type Completion struct {
	Text  string
	Model string
	Usage Usage
}
