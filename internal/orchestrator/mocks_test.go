package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Conceptual-Machines/studybuddy-api/internal/llm"
	"github.com/Conceptual-Machines/studybuddy-api/internal/models"
	"github.com/Conceptual-Machines/studybuddy-api/internal/scrape"
)

// MockProvider is a scripted llm.Provider for tests
type MockProvider struct {
	name  string
	caps  llm.Capabilities
	text  string
	err   error
	panic bool
	delay time.Duration
	echo  bool

	calls      atomic.Int32
	mu         sync.Mutex
	lastBundle *llm.PromptBundle
}

func newMockProvider(name, text string) *MockProvider {
	return &MockProvider{name: name, text: text, caps: llm.Capabilities{SupportsImage: true, SupportsSystemRole: true}}
}

func failingProvider(name string, err error) *MockProvider {
	return &MockProvider{name: name, err: err, caps: llm.Capabilities{SupportsSystemRole: true}}
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Capabilities() llm.Capabilities {
	return m.caps
}

func (m *MockProvider) Generate(ctx context.Context, bundle *llm.PromptBundle) (*llm.Completion, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.lastBundle = bundle
	m.mu.Unlock()

	if m.panic {
		panic("provider exploded")
	}
	if m.delay > 0 {
		// Deliberately ignores ctx to simulate a stuck SDK call
		time.Sleep(m.delay)
	}
	if m.err != nil {
		return nil, m.err
	}

	text := m.text
	if m.echo {
		text = "echo: " + lastUserContent(bundle)
	}
	return &llm.Completion{
		Text:  text,
		Model: m.name + "-model",
		Usage: llm.Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}, nil
}

func (m *MockProvider) bundle() *llm.PromptBundle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastBundle
}

func lastUserContent(bundle *llm.PromptBundle) string {
	if bundle == nil || len(bundle.Messages) == 0 {
		return ""
	}
	return bundle.Messages[len(bundle.Messages)-1].Content
}

// MockSearch returns canned results and counts calls
type MockSearch struct {
	results []models.Source
	err     error

	calls   atomic.Int32
	mu      sync.Mutex
	queries []string
}

func (m *MockSearch) Search(_ context.Context, query string, _ int) ([]models.Source, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

// MockScraper fails for the configured URLs
type MockScraper struct {
	failing map[string]bool
	calls   atomic.Int32
}

func (m *MockScraper) Scrape(_ context.Context, rawURL string, _ scrape.Mode) (*scrape.Page, error) {
	m.calls.Add(1)
	if m.failing[rawURL] {
		return nil, errors.New("dial tcp: connection refused")
	}
	return &scrape.Page{URL: rawURL, Title: "Page " + rawURL, Content: "summary of " + strings.TrimPrefix(rawURL, "https://")}, nil
}

// countingRecorder captures metrics calls
type countingRecorder struct {
	mu       sync.Mutex
	attempts []string
	failures []string
	tiers    []string
}

func (r *countingRecorder) RecordProviderAttempt(_ context.Context, provider string, success bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, provider)
	if !success {
		r.failures = append(r.failures, provider)
	}
}

func (r *countingRecorder) RecordGeneration(_ context.Context, tier string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tiers = append(r.tiers, tier)
}

func (r *countingRecorder) RecordTokenUsage(context.Context, string, int, int, int) {}

func (r *countingRecorder) RecordAPIRequest(context.Context, string, int, time.Duration) {}
