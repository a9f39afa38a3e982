package scrape

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"
	"sync"
)

// Mode selects how a page is fetched
type Mode string

const (
	ModeLightweight Mode = "lightweight"
	ModeRender      Mode = "render"
)

// Page is the bounded text excerpt of a fetched URL
type Page struct {
	URL     string
	Title   string
	Content string
}

// PageScraper fetches and summarizes a single URL
type PageScraper interface {
	Scrape(ctx context.Context, rawURL string, mode Mode) (*Page, error)
}

// Sites that render their content client-side and return an empty shell to plain GETs
var jsHeavyDomains = []string{
	"twitter.com",
	"x.com",
	"instagram.com",
	"facebook.com",
	"linkedin.com",
	"tiktok.com",
	"reddit.com",
	"youtube.com",
	"notion.so",
	"notion.site",
	"medium.com",
	"quizlet.com",
	"docs.google.com",
	"canva.com",
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"'\x60]+`)

// ModeFor picks the render-capable fetch for known JavaScript-heavy domains
func ModeFor(rawURL string) Mode {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ModeLightweight
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for _, domain := range jsHeavyDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return ModeRender
		}
	}
	return ModeLightweight
}

// ExtractURLs returns distinct http(s) URLs in order of appearance, at most limit
func ExtractURLs(text string, limit int) []string {
	if limit <= 0 {
		return nil
	}

	seen := make(map[string]bool)
	var urls []string
	for _, match := range urlPattern.FindAllString(text, -1) {
		candidate := trimURL(match)
		if seen[candidate] {
			continue
		}
		if u, err := url.Parse(candidate); err != nil || u.Host == "" {
			continue
		}
		seen[candidate] = true
		urls = append(urls, candidate)
		if len(urls) == limit {
			break
		}
	}
	return urls
}

// trimURL strips sentence punctuation and unbalanced closing brackets
func trimURL(raw string) string {
	u := strings.TrimRight(raw, ".,;:!?")
	for _, pair := range [][2]string{{"(", ")"}, {"[", "]"}} {
		for strings.HasSuffix(u, pair[1]) && strings.Count(u, pair[0]) < strings.Count(u, pair[1]) {
			u = strings.TrimSuffix(u, pair[1])
		}
	}
	return strings.TrimRight(u, ".,;:!?")
}

// ScrapeAll fetches urls concurrently. Failed pages are dropped; the
// returned pages keep the input order.
func ScrapeAll(ctx context.Context, scraper PageScraper, urls []string) []Page {
	if scraper == nil || len(urls) == 0 {
		return nil
	}

	results := make([]*Page, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("⚠️  Scrape of %s panicked: %v", u, r)
				}
			}()

			mode := ModeFor(u)
			page, err := scraper.Scrape(ctx, u, mode)
			if err != nil {
				log.Printf("⚠️  Scrape failed (%s, %s): %v", u, mode, err)
				return
			}
			if page == nil || strings.TrimSpace(page.Content) == "" {
				log.Printf("⚠️  Scrape returned no content (%s)", u)
				return
			}
			results[i] = page
		}(i, u)
	}
	wg.Wait()

	pages := make([]Page, 0, len(urls))
	for _, p := range results {
		if p != nil {
			pages = append(pages, *p)
		}
	}
	return pages
}

// FormatPages renders scraped pages as a prompt block
func FormatPages(pages []Page) string {
	if len(pages) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("CONTENT FROM LINKED PAGES:")
	for i, p := range pages {
		title := p.Title
		if title == "" {
			title = p.URL
		}
		fmt.Fprintf(&b, "\n\n[Page %d] %s (%s)\n%s", i+1, title, p.URL, p.Content)
	}
	return b.String()
}
