package orchestrator

import (
	"time"

	"github.com/Conceptual-Machines/studybuddy-api/internal/metrics"
	"github.com/Conceptual-Machines/studybuddy-api/internal/observability"
	"github.com/Conceptual-Machines/studybuddy-api/internal/prompt"
	"github.com/Conceptual-Machines/studybuddy-api/internal/scrape"
	"github.com/Conceptual-Machines/studybuddy-api/internal/search"
	"golang.org/x/time/rate"
)

const (
	defaultProviderTimeout = 30 * time.Second
	defaultSearchTimeout   = 10 * time.Second
	defaultScrapeTimeout   = 15 * time.Second
	defaultMaxScrapeURLs   = 3
)

// Params bounds every provider call made by the orchestrator
type Params struct {
	MaxTokens         int
	ThinkingMaxTokens int
	Temperature       float64
}

// DefaultParams mirrors the configuration defaults
func DefaultParams() Params {
	return Params{
		MaxTokens:         2048,
		ThinkingMaxTokens: 8192,
		Temperature:       0.7,
	}
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithSearch sets the web search provider used for enrichment and re-search
func WithSearch(provider search.Provider) Option {
	return func(o *Orchestrator) {
		o.search = provider
	}
}

// WithScraper sets the page scraper for URLs found in the question
func WithScraper(scraper scrape.PageScraper) Option {
	return func(o *Orchestrator) {
		o.scraper = scraper
	}
}

// WithClassifier replaces the auto re-search heuristic
func WithClassifier(classifier AutoSearchClassifier) Option {
	return func(o *Orchestrator) {
		if classifier != nil {
			o.classifier = classifier
		}
	}
}

// WithSearchLimiter throttles outbound search calls across all requests
func WithSearchLimiter(limiter *rate.Limiter) Option {
	return func(o *Orchestrator) {
		if limiter != nil {
			o.limiter = limiter
		}
	}
}

// WithProviderTimeout bounds each provider attempt
func WithProviderTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.providerTimeout = d
		}
	}
}

// WithSearchTimeout bounds each search call, including the limiter wait
func WithSearchTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.searchTimeout = d
		}
	}
}

// WithScrapeTimeout bounds the whole scrape fan-out
func WithScrapeTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.scrapeTimeout = d
		}
	}
}

func WithRecorder(recorder metrics.Recorder) Option {
	return func(o *Orchestrator) {
		if recorder != nil {
			o.recorder = recorder
		}
	}
}

func WithTracer(tracer *observability.LangfuseClient) Option {
	return func(o *Orchestrator) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

func WithParams(params Params) Option {
	return func(o *Orchestrator) {
		o.params = params
	}
}

func WithPromptBuilder(builder *prompt.Builder) Option {
	return func(o *Orchestrator) {
		if builder != nil {
			o.builder = builder
		}
	}
}

// WithMaxScrapeURLs caps how many URLs from the question are fetched
func WithMaxScrapeURLs(n int) Option {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.maxScrapeURLs = n
		}
	}
}

// WithSearchLimit sets the number of results requested per search
func WithSearchLimit(n int) Option {
	return func(o *Orchestrator) {
		o.searchLimit = search.ClampLimit(n)
	}
}
