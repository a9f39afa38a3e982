package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Conceptual-Machines/studybuddy-api/internal/llm"
	"github.com/Conceptual-Machines/studybuddy-api/internal/logger"
	"github.com/Conceptual-Machines/studybuddy-api/internal/metrics"
	"github.com/Conceptual-Machines/studybuddy-api/internal/models"
	"github.com/Conceptual-Machines/studybuddy-api/internal/observability"
	"github.com/Conceptual-Machines/studybuddy-api/internal/prompt"
	"github.com/Conceptual-Machines/studybuddy-api/internal/scrape"
	"github.com/Conceptual-Machines/studybuddy-api/internal/search"
	"golang.org/x/time/rate"
)

const traceName = "study-assistant.generate"

// Orchestrator answers a request through an ordered list of providers,
// falling back to the next one on any failure and finally to a canned answer.
// It holds no per-call state and is safe for concurrent use.
type Orchestrator struct {
	providers  []llm.Provider
	search     search.Provider
	scraper    scrape.PageScraper
	classifier AutoSearchClassifier
	limiter    *rate.Limiter
	builder    *prompt.Builder
	recorder   metrics.Recorder
	tracer     *observability.LangfuseClient
	params     Params

	providerTimeout time.Duration
	searchTimeout   time.Duration
	scrapeTimeout   time.Duration
	maxScrapeURLs   int
	searchLimit     int
}

// New creates an orchestrator trying providers in the given order
func New(providers []llm.Provider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		providers:       providers,
		classifier:      ShouldAutoSearch,
		limiter:         rate.NewLimiter(rate.Every(time.Second), 1),
		builder:         prompt.NewPromptBuilder(),
		recorder:        metrics.Nop{},
		tracer:          observability.GetClient(),
		params:          DefaultParams(),
		providerTimeout: defaultProviderTimeout,
		searchTimeout:   defaultSearchTimeout,
		scrapeTimeout:   defaultScrapeTimeout,
		maxScrapeURLs:   defaultMaxScrapeURLs,
		searchLimit:     search.DefaultLimit,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate always returns exactly one result. Provider, search and scrape
// failures are absorbed here and never reach the caller.
func (o *Orchestrator) Generate(ctx context.Context, req *models.GenerationRequest) (result *models.GenerationResult) {
	start := time.Now()
	if req == nil {
		req = &models.GenerationRequest{}
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Generation panicked", fmt.Errorf("%v", r), logger.Fields{"question_len": len(req.Question)})
			result = fallbackResult(req)
		}
		o.recorder.RecordGeneration(ctx, string(result.Provider), time.Since(start))
	}()

	if strings.TrimSpace(req.Question) == "" {
		logger.Warn("Empty question, returning canned answer", nil)
		return fallbackResult(req)
	}

	trace := o.tracer.StartTrace(ctx, traceName, map[string]interface{}{
		"search_request": req.Flags.IsSearchRequest,
		"thinking_mode":  req.Flags.ThinkingMode,
		"has_image":      req.HasImage(),
		"history_turns":  len(req.ConversationHistory),
	})
	defer trace.Finish()

	enriched := o.enrich(ctx, req)
	params := o.generationParams(req)

	for i, provider := range o.providers {
		bundle := o.builder.Build(req, provider.Capabilities(), enriched.Enrichment, params)

		completion, attempt := o.attempt(ctx, trace, provider, bundle)
		o.recordAttempt(ctx, attempt)
		if !attempt.Succeeded {
			continue
		}
		o.recorder.RecordTokenUsage(ctx, completion.Model, completion.Usage.InputTokens,
			completion.Usage.OutputTokens, completion.Usage.TotalTokens)

		result = &models.GenerationResult{
			Answer:          completion.Text,
			Provider:        models.TierForIndex(i),
			ProviderName:    provider.Name(),
			Sources:         enriched.Sources,
			IsSearchRequest: req.Flags.IsSearchRequest,
		}
		o.postProcess(ctx, req, result)

		logger.Info("Generation completed", logger.Fields{
			"provider": provider.Name(),
			"tier":     string(result.Provider),
			"sources":  len(result.Sources),
			"duration": time.Since(start).String(),
		})
		return result
	}

	logger.Warn("All providers failed, returning canned answer", logger.Fields{
		"providers": len(o.providers),
		"duration":  time.Since(start).String(),
	})
	return fallbackResult(req)
}

func (o *Orchestrator) generationParams(req *models.GenerationRequest) llm.GenerationParams {
	maxTokens := o.params.MaxTokens
	if req.Flags.ThinkingMode && o.params.ThinkingMaxTokens > 0 {
		maxTokens = o.params.ThinkingMaxTokens
	}
	return llm.GenerationParams{
		MaxTokens:   maxTokens,
		Temperature: o.params.Temperature,
		Thinking:    req.Flags.ThinkingMode,
	}
}

type callResult struct {
	completion *llm.Completion
	err        error
}

// attempt makes one bounded call to a provider. A provider that ignores its
// context is abandoned once the timeout fires.
func (o *Orchestrator) attempt(
	ctx context.Context,
	trace *observability.Trace,
	provider llm.Provider,
	bundle *llm.PromptBundle,
) (*llm.Completion, models.ProviderAttempt) {
	attemptCtx, cancel := context.WithTimeout(ctx, o.providerTimeout)
	defer cancel()

	generation := trace.Generation(provider.Name(), map[string]interface{}{
		"messages":     len(bundle.Messages),
		"has_image":    bundle.Image != nil,
		"input_chars":  bundleSize(bundle),
		"thinking":     bundle.Params.Thinking,
		"max_tokens":   bundle.Params.MaxTokens,
		"temperature":  bundle.Params.Temperature,
		"system_split": bundle.System != "",
	})
	generation.Input(bundle.Messages)
	defer generation.Finish()

	start := time.Now()
	done := make(chan callResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- callResult{err: fmt.Errorf("provider panicked: %v", r)}
			}
		}()
		completion, err := provider.Generate(attemptCtx, bundle)
		done <- callResult{completion: completion, err: err}
	}()

	var res callResult
	select {
	case res = <-done:
	case <-attemptCtx.Done():
		res = callResult{err: attemptCtx.Err()}
	}

	if res.err == nil && (res.completion == nil || strings.TrimSpace(res.completion.Text) == "") {
		res.err = llm.ErrEmptyResponse
	}

	attempt := models.ProviderAttempt{
		ProviderID: provider.Name(),
		Succeeded:  res.err == nil,
		Duration:   time.Since(start),
	}
	if res.err != nil {
		perr := llm.NewProviderError(provider.Name(), res.err)
		attempt.ErrorKind = string(perr.Kind)
		attempt.ErrorReason = perr.Error()
		generation.LogFailure(bundle.Params.Model, perr.Kind, perr)
		return nil, attempt
	}

	generation.LogCompletion(bundle.Params.Model, res.completion)
	return res.completion, attempt
}

func (o *Orchestrator) recordAttempt(ctx context.Context, attempt models.ProviderAttempt) {
	o.recorder.RecordProviderAttempt(ctx, attempt.ProviderID, attempt.Succeeded, attempt.Duration)

	fields := logger.Fields{
		"provider": attempt.ProviderID,
		"duration": attempt.Duration.String(),
	}
	if attempt.Succeeded {
		logger.Info("Provider attempt succeeded", fields)
		return
	}
	fields["error_kind"] = attempt.ErrorKind
	fields["error"] = attempt.ErrorReason
	logger.Warn("Provider attempt failed", fields)
}

func bundleSize(bundle *llm.PromptBundle) int {
	n := len(bundle.System)
	for _, m := range bundle.Messages {
		n += len(m.Content)
	}
	return n
}
