package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Conceptual-Machines/studybuddy-api/internal/llm"
	"github.com/Conceptual-Machines/studybuddy-api/internal/logger"
	"github.com/Conceptual-Machines/studybuddy-api/internal/models"
	"github.com/Conceptual-Machines/studybuddy-api/internal/prompt"
	"github.com/Conceptual-Machines/studybuddy-api/internal/scrape"
	"github.com/Conceptual-Machines/studybuddy-api/internal/search"
)

// enrichment is the optional context gathered before the provider loop
type enrichment struct {
	prompt.Enrichment
	Sources []models.Source
}

// enrich runs search and scraping concurrently. Neither can fail the request:
// a failed search leaves a notice in the prompt, failed pages are left out.
func (o *Orchestrator) enrich(ctx context.Context, req *models.GenerationRequest) enrichment {
	var out enrichment
	var wg sync.WaitGroup
	var searchDuration, scrapeDuration time.Duration

	if req.Flags.IsSearchRequest {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer recoverEnrichment("search")
			start := time.Now()
			out.SearchBlock, out.Sources = o.searchBlock(ctx, req.Question)
			searchDuration = time.Since(start)
		}()
	}

	urls := scrape.ExtractURLs(req.Question, o.maxScrapeURLs)
	if len(urls) > 0 && o.scraper != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer recoverEnrichment("scrape")
			start := time.Now()
			scrapeCtx, cancel := context.WithTimeout(ctx, o.scrapeTimeout)
			defer cancel()

			pages := scrape.ScrapeAll(scrapeCtx, o.scraper, urls)
			out.ScrapeBlock = scrape.FormatPages(pages)
			scrapeDuration = time.Since(start)
			log.Printf("🔗 Scraped %d/%d linked pages in %v", len(pages), len(urls), scrapeDuration)
		}()
	}

	wg.Wait()

	if req.Flags.IsSearchRequest || len(urls) > 0 {
		log.Printf("⏱️ Enrichment timing: search=%v, scrape=%v", searchDuration, scrapeDuration)
	}
	return out
}

// searchBlock returns the prompt block and sources for a search, or the
// failure notice when the search could not be made
func (o *Orchestrator) searchBlock(ctx context.Context, query string) (string, []models.Source) {
	results, err := o.runSearch(ctx, query)
	if err != nil {
		logger.Warn("Web search failed, continuing without results", logger.Fields{
			"error":      err.Error(),
			"error_kind": string(llm.KindEnrichment),
		})
		return search.FailureNotice(query), nil
	}
	if len(results) == 0 {
		logger.Info("Web search returned no results", nil)
		return search.FailureNotice(query), nil
	}
	return search.FormatResults(query, results), results
}

// runSearch waits for the shared limiter and performs one bounded search
func (o *Orchestrator) runSearch(ctx context.Context, query string) ([]models.Source, error) {
	if o.search == nil {
		return nil, search.ErrNotConfigured
	}

	searchCtx, cancel := context.WithTimeout(ctx, o.searchTimeout)
	defer cancel()

	if err := o.limiter.Wait(searchCtx); err != nil {
		return nil, fmt.Errorf("search rate limit wait: %w", err)
	}
	return o.search.Search(searchCtx, query, o.searchLimit)
}

func recoverEnrichment(step string) {
	if r := recover(); r != nil {
		logger.Error("Enrichment step panicked", fmt.Errorf("%v", r), logger.Fields{
			"step":       step,
			"error_kind": string(llm.KindEnrichment),
		})
	}
}
