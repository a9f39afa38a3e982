package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Conceptual-Machines/studybuddy-api/internal/models"
	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"
)

const (
	providerNameGemini = "gemini"
	defaultGeminiModel = "gemini-2.5-flash"
	geminiUserRole     = "user"
	geminiModelRole    = "model"
)

// GeminiProvider implements the Provider interface using Google's Gemini API
type GeminiProvider struct {
	client         *genai.Client
	model          string
	thinkingBudget int32
}

// GeminiOption customizes a GeminiProvider
type GeminiOption func(*genai.ClientConfig, *GeminiProvider)

// WithGeminiBaseURL points the client at a different endpoint (used in tests)
func WithGeminiBaseURL(baseURL string) GeminiOption {
	return func(cc *genai.ClientConfig, _ *GeminiProvider) {
		cc.HTTPOptions.BaseURL = baseURL
	}
}

// WithGeminiThinkingBudget sets the thinking token budget used in thinking mode
func WithGeminiThinkingBudget(budget int) GeminiOption {
	return func(_ *genai.ClientConfig, p *GeminiProvider) {
		p.thinkingBudget = int32(budget)
	}
}

// NewGeminiProvider creates a new Gemini provider.
// A missing or placeholder key yields a provider whose every call fails with
// ErrCredentialMissing so the fallback chain moves on without a network call.
func NewGeminiProvider(ctx context.Context, apiKey, model string, opts ...GeminiOption) (*GeminiProvider, error) {
	if model == "" {
		model = defaultGeminiModel
	}
	p := &GeminiProvider{model: model}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cc, p)
	}

	if !hasCredential(apiKey) {
		log.Printf("⚠️  Gemini API key not configured, provider will be skipped")
		return p, nil
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	p.client = client

	return p, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

// Capabilities reports Gemini's prompt features
func (p *GeminiProvider) Capabilities() Capabilities {
	return Capabilities{SupportsImage: true, SupportsSystemRole: true}
}

// Generate implements generation using Gemini's GenerateContent API
func (p *GeminiProvider) Generate(ctx context.Context, bundle *PromptBundle) (*Completion, error) {
	if p.client == nil {
		return nil, &ProviderError{Provider: providerNameGemini, Kind: KindCredentialMissing, Err: ErrCredentialMissing}
	}

	startTime := time.Now()
	model := p.model
	if bundle.Params.Model != "" {
		model = bundle.Params.Model
	}
	log.Printf("🎓 GEMINI GENERATION REQUEST STARTED (Model: %s)", model)

	transaction := sentry.StartTransaction(ctx, "gemini.generate")
	defer transaction.Finish()

	transaction.SetTag("model", model)
	transaction.SetTag("provider", providerNameGemini)

	contents := p.buildGeminiContents(bundle)
	config := p.buildConfig(bundle)

	span := transaction.StartChild("gemini.api_call")
	result, err := p.client.Models.GenerateContent(transaction.Context(), model, contents, config)
	apiDuration := time.Since(startTime)
	span.Finish()

	if err != nil {
		log.Printf("❌ GEMINI REQUEST FAILED after %v: %v", apiDuration, err)
		transaction.SetTag("success", "false")
		return nil, NewProviderError(providerNameGemini, fmt.Errorf("gemini request failed: %w", err))
	}

	completion, err := p.processGeminiResponse(result, model)
	if err != nil {
		transaction.SetTag("success", "false")
		return nil, err
	}

	log.Printf("✅ GEMINI GENERATION COMPLETED in %v (output: %d chars)", time.Since(startTime), len(completion.Text))
	transaction.SetTag("success", "true")
	return completion, nil
}

// buildGeminiContents converts the bundle's messages to Gemini Content format.
// The image, if any, rides on the final user turn.
func (p *GeminiProvider) buildGeminiContents(bundle *PromptBundle) []*genai.Content {
	contents := make([]*genai.Content, 0, len(bundle.Messages))

	for _, msg := range bundle.Messages {
		if strings.TrimSpace(msg.Content) == "" {
			log.Printf("⚠️  Skipping empty %s message", msg.Role)
			continue
		}

		contents = append(contents, &genai.Content{
			Role:  geminiRoleFor(msg),
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}

	if bundle.Image != nil && len(contents) > 0 {
		last := contents[len(contents)-1]
		if last.Role == geminiUserRole {
			last.Parts = append(last.Parts, &genai.Part{
				InlineData: &genai.Blob{MIMEType: bundle.Image.MIMEType, Data: bundle.Image.Data},
			})
		}
	}

	return contents
}

func (p *GeminiProvider) buildConfig(bundle *PromptBundle) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(bundle.Params.Temperature)),
	}
	if bundle.Params.MaxTokens > 0 {
		config.MaxOutputTokens = int32(bundle.Params.MaxTokens)
	}
	if bundle.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: bundle.System}},
		}
	}
	if bundle.Params.Thinking && p.thinkingBudget > 0 {
		config.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(p.thinkingBudget),
		}
	}
	return config
}

// processGeminiResponse converts a Gemini response to a Completion
func (p *GeminiProvider) processGeminiResponse(result *genai.GenerateContentResponse, model string) (*Completion, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, &ProviderError{Provider: providerNameGemini, Kind: KindMalformedResponse,
			Err: fmt.Errorf("no candidates in Gemini response")}
	}

	text := strings.TrimSpace(result.Text())
	log.Printf("📥 GEMINI RESPONSE: output_length=%d", len(text))
	if text == "" {
		return nil, &ProviderError{Provider: providerNameGemini, Kind: KindMalformedResponse, Err: ErrEmptyResponse}
	}

	completion := &Completion{Text: text, Model: model}
	if result.UsageMetadata != nil {
		completion.Usage = Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
		}
		log.Printf("📊 GEMINI USAGE: input=%d, output=%d, total=%d",
			completion.Usage.InputTokens, completion.Usage.OutputTokens, completion.Usage.TotalTokens)
	}

	return completion, nil
}

var _ Provider = (*GeminiProvider)(nil)

// geminiRoleFor maps history roles onto Gemini's user/model pair
func geminiRoleFor(msg models.Message) string {
	if msg.IsAssistant() {
		return geminiModelRole
	}
	return geminiUserRole
}
