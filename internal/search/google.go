package search

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Conceptual-Machines/studybuddy-api/internal/config"
	"github.com/Conceptual-Machines/studybuddy-api/internal/models"
	"github.com/getsentry/sentry-go"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// GoogleSearch queries a Programmable Search Engine through the Custom Search JSON API
type GoogleSearch struct {
	service  *customsearch.Service
	engineID string
}

// NewGoogleSearch creates a Custom Search client.
// Placeholder credentials produce a client whose searches fail with ErrNotConfigured.
func NewGoogleSearch(ctx context.Context, apiKey, engineID string, opts ...option.ClientOption) (*GoogleSearch, error) {
	g := &GoogleSearch{engineID: engineID}
	if config.IsPlaceholder(apiKey) || config.IsPlaceholder(engineID) {
		log.Printf("⚠️  Google search not configured, search enrichment disabled")
		return g, nil
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create custom search service: %w", err)
	}
	g.service = service
	return g, nil
}

// Configured reports whether searches can reach the API
func (g *GoogleSearch) Configured() bool {
	return g.service != nil
}

// Search returns up to limit results for query, in ranking order
func (g *GoogleSearch) Search(ctx context.Context, query string, limit int) ([]models.Source, error) {
	if g.service == nil {
		return nil, ErrNotConfigured
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}

	span := sentry.StartSpan(ctx, "search.google")
	defer span.Finish()
	span.SetData("limit", limit)

	start := time.Now()
	res, err := g.service.Cse.List().
		Cx(g.engineID).
		Q(query).
		Num(int64(ClampLimit(limit))).
		Context(span.Context()).
		Do()
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("google search failed: %w", err)
	}

	results := make([]models.Source, 0, len(res.Items))
	for _, item := range res.Items {
		if item == nil || item.Link == "" {
			continue
		}
		results = append(results, models.Source{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Snippet: strings.TrimSpace(strings.ReplaceAll(item.Snippet, "\n", " ")),
		})
	}

	log.Printf("🔎 GOOGLE SEARCH: %d results in %v", len(results), time.Since(start))
	span.Status = sentry.SpanStatusOK
	return results, nil
}

var _ Provider = (*GoogleSearch)(nil)
