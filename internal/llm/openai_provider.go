package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Conceptual-Machines/studybuddy-api/internal/models"
	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

const (
	providerNameOpenAI = "openai"
	defaultOpenAIModel = "gpt-4o-mini"
)

// Reasoning models reject temperature and accept a reasoning effort instead
var modelsWithReasoning = map[string]bool{
	"o3":         true,
	"o3-mini":    true,
	"o4-mini":    true,
	"gpt-5":      true,
	"gpt-5-mini": true,
	"gpt-5-nano": true,
}

// OpenAIProvider implements the Provider interface using OpenAI's Responses API
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a new OpenAI provider.
// Extra request options (base URL, HTTP client) are passed through to the SDK.
func NewOpenAIProvider(apiKey, model string, opts ...option.RequestOption) *OpenAIProvider {
	if model == "" {
		model = defaultOpenAIModel
	}
	p := &OpenAIProvider{model: model}

	if !hasCredential(apiKey) {
		log.Printf("⚠️  OpenAI API key not configured, provider will be skipped")
		return p
	}

	// The fallback chain owns retries
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	client := openai.NewClient(opts...)
	p.client = &client
	return p
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// Capabilities reports OpenAI's prompt features
func (p *OpenAIProvider) Capabilities() Capabilities {
	return Capabilities{SupportsImage: true, SupportsSystemRole: true}
}

// Generate implements non-streaming generation using OpenAI's Responses API
func (p *OpenAIProvider) Generate(ctx context.Context, bundle *PromptBundle) (*Completion, error) {
	if p.client == nil {
		return nil, &ProviderError{Provider: providerNameOpenAI, Kind: KindCredentialMissing, Err: ErrCredentialMissing}
	}

	startTime := time.Now()
	params := p.buildRequestParams(bundle)
	log.Printf("🎓 OPENAI GENERATION REQUEST STARTED (Model: %s)", params.Model)

	transaction := sentry.StartTransaction(ctx, "openai.generate")
	defer transaction.Finish()

	transaction.SetTag("model", params.Model)
	transaction.SetTag("provider", providerNameOpenAI)

	span := transaction.StartChild("openai.api_call")
	resp, err := p.client.Responses.New(transaction.Context(), params)
	apiDuration := time.Since(startTime)
	span.Finish()

	if err != nil {
		log.Printf("❌ OPENAI REQUEST FAILED after %v: %v", apiDuration, err)
		transaction.SetTag("success", "false")
		return nil, NewProviderError(providerNameOpenAI, fmt.Errorf("openai request failed: %w", err))
	}

	log.Printf("⏱️  OPENAI API CALL COMPLETED in %v", apiDuration)

	completion, err := p.processResponse(resp, params.Model)
	if err != nil {
		transaction.SetTag("success", "false")
		return nil, err
	}

	transaction.SetTag("success", "true")
	return completion, nil
}

// buildRequestParams converts a PromptBundle to OpenAI-specific ResponseNewParams
func (p *OpenAIProvider) buildRequestParams(bundle *PromptBundle) responses.ResponseNewParams {
	model := p.model
	if bundle.Params.Model != "" {
		model = bundle.Params.Model
	}

	inputItems := responses.ResponseInputParam{}
	lastUser := lastUserIndex(bundle.Messages)

	for i, msg := range bundle.Messages {
		if strings.TrimSpace(msg.Content) == "" {
			log.Printf("⚠️  Skipping empty %s message", msg.Role)
			continue
		}

		if msg.IsAssistant() {
			inputItems = append(inputItems,
				responses.ResponseInputItemParamOfMessage(msg.Content, responses.EasyInputMessageRoleAssistant))
			continue
		}

		if i == lastUser && bundle.Image != nil {
			inputItems = append(inputItems,
				responses.ResponseInputItemParamOfMessage(imageContent(msg.Content, bundle.Image), responses.EasyInputMessageRoleUser))
			continue
		}

		inputItems = append(inputItems,
			responses.ResponseInputItemParamOfMessage(msg.Content, responses.EasyInputMessageRoleUser))
	}

	params := responses.ResponseNewParams{
		Model: model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: inputItems,
		},
	}

	if bundle.System != "" {
		params.Instructions = openai.String(bundle.System)
	}
	if bundle.Params.MaxTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(bundle.Params.MaxTokens))
	}

	if modelsWithReasoning[model] {
		effort := responses.ReasoningEffortLow
		if bundle.Params.Thinking {
			effort = responses.ReasoningEffortHigh
		}
		params.Reasoning = shared.ReasoningParam{Effort: effort}
	} else {
		params.Temperature = openai.Float(bundle.Params.Temperature)
	}

	return params
}

// imageContent builds a text + input_image content list for the user turn
func imageContent(text string, image *ImagePayload) responses.ResponseInputMessageContentListParam {
	dataURL := fmt.Sprintf("data:%s;base64,%s", image.MIMEType, base64.StdEncoding.EncodeToString(image.Data))
	return responses.ResponseInputMessageContentListParam{
		{OfInputText: &responses.ResponseInputTextParam{Text: text}},
		{OfInputImage: &responses.ResponseInputImageParam{
			Detail:   responses.ResponseInputImageDetailAuto,
			ImageURL: openai.String(dataURL),
		}},
	}
}

// processResponse extracts the output text and usage
func (p *OpenAIProvider) processResponse(resp *responses.Response, model string) (*Completion, error) {
	if resp == nil {
		return nil, &ProviderError{Provider: providerNameOpenAI, Kind: KindMalformedResponse,
			Err: fmt.Errorf("nil response")}
	}

	text := strings.TrimSpace(resp.OutputText())
	log.Printf("📥 OPENAI RESPONSE: output_length=%d", len(text))
	if text == "" {
		return nil, &ProviderError{Provider: providerNameOpenAI, Kind: KindMalformedResponse, Err: ErrEmptyResponse}
	}

	usage := Usage{
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
		TotalTokens:  int(resp.Usage.TotalTokens),
	}
	log.Printf("📊 OPENAI USAGE: input=%d, output=%d, total=%d", usage.InputTokens, usage.OutputTokens, usage.TotalTokens)

	return &Completion{Text: text, Model: model, Usage: usage}, nil
}

func lastUserIndex(messages []models.Message) int {
	for i := len(messages) - 1; i >= 0; i-- {
		if !messages[i].IsAssistant() {
			return i
		}
	}
	return -1
}

var _ Provider = (*OpenAIProvider)(nil)
