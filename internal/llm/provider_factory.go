package llm

import (
	"context"
	"fmt"

	"github.com/Conceptual-Machines/studybuddy-api/internal/config"
)

// ProviderFactory builds the ordered provider chain from configuration
type ProviderFactory struct {
	cfg *config.Config
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg *config.Config) *ProviderFactory {
	return &ProviderFactory{cfg: cfg}
}

// Ordered returns providers in priority order: Gemini then OpenAI by default,
// swapped when AI_PROVIDER_PRIORITY=openai. Providers without credentials are
// still returned; they fail fast so the chain shape never depends on secrets.
func (f *ProviderFactory) Ordered(ctx context.Context) ([]Provider, error) {
	gemini, err := NewGeminiProvider(ctx, f.cfg.GeminiAPIKey, f.cfg.GeminiModel,
		WithGeminiThinkingBudget(f.cfg.ThinkingBudget))
	if err != nil {
		return nil, fmt.Errorf("gemini provider: %w", err)
	}
	openaiProvider := NewOpenAIProvider(f.cfg.OpenAIAPIKey, f.cfg.OpenAIModel)

	if f.cfg.OpenAIFirst() {
		return []Provider{openaiProvider, gemini}, nil
	}
	return []Provider{gemini, openaiProvider}, nil
}

// Configured reports which providers have a usable credential
func (f *ProviderFactory) Configured() map[string]bool {
	return map[string]bool{
		providerNameGemini: hasCredential(f.cfg.GeminiAPIKey),
		providerNameOpenAI: hasCredential(f.cfg.OpenAIAPIKey),
	}
}

func hasCredential(apiKey string) bool {
	return !config.IsPlaceholder(apiKey)
}
