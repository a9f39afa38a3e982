package scrape

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"golang.org/x/net/html"
)

const (
	DefaultMaxChars       = 2000
	DefaultRenderEndpoint = "https://r.jina.ai/"
	maxBodyBytes          = 2 << 20
	defaultUserAgent      = "Mozilla/5.0 (compatible; StudyBuddyBot/1.0)"
	renderTitlePrefix     = "Title:"
)

// Elements whose text is never page content
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"nav":      true,
	"header":   true,
	"footer":   true,
	"svg":      true,
	"iframe":   true,
	"form":     true,
	"template": true,
}

// HTTPScraper fetches pages directly (lightweight) or through a reader
// endpoint that executes JavaScript before returning text (render).
type HTTPScraper struct {
	client         *http.Client
	renderEndpoint string
	maxChars       int
}

// NewHTTPScraper creates a scraper. Zero values fall back to defaults.
func NewHTTPScraper(client *http.Client, renderEndpoint string, maxChars int) *HTTPScraper {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if renderEndpoint == "" {
		renderEndpoint = DefaultRenderEndpoint
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &HTTPScraper{client: client, renderEndpoint: renderEndpoint, maxChars: maxChars}
}

// Scrape fetches rawURL in the given mode and returns a bounded excerpt
func (s *HTTPScraper) Scrape(ctx context.Context, rawURL string, mode Mode) (*Page, error) {
	span := sentry.StartSpan(ctx, "scrape."+string(mode))
	defer span.Finish()
	span.SetData("url", rawURL)

	var page *Page
	var err error
	if mode == ModeRender {
		page, err = s.fetchRendered(span.Context(), rawURL)
	} else {
		page, err = s.fetchLightweight(span.Context(), rawURL)
	}
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, err
	}

	page.Title = collapseWhitespace(page.Title)
	page.Content = bound(collapseWhitespace(page.Content), s.maxChars)
	span.Status = sentry.SpanStatusOK
	return page, nil
}

func (s *HTTPScraper) fetchLightweight(ctx context.Context, rawURL string) (*Page, error) {
	body, contentType, err := s.get(ctx, rawURL, "text/html,application/xhtml+xml,text/plain;q=0.9")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "text/plain" {
		text, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", rawURL, err)
		}
		return &Page{URL: rawURL, Content: string(text)}, nil
	}

	doc, err := html.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", rawURL, err)
	}
	title, text := extractText(doc)
	return &Page{URL: rawURL, Title: title, Content: text}, nil
}

// fetchRendered reads the reader endpoint's plain-text rendering. A leading
// "Title: ..." line, when present, becomes the page title.
func (s *HTTPScraper) fetchRendered(ctx context.Context, rawURL string) (*Page, error) {
	body, _, err := s.get(ctx, s.renderEndpoint+rawURL, "text/plain")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	page := &Page{URL: rawURL}
	var content strings.Builder
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxBodyBytes)
	for scanner.Scan() {
		line := scanner.Text()
		if page.Title == "" && content.Len() == 0 && strings.HasPrefix(line, renderTitlePrefix) {
			page.Title = strings.TrimSpace(strings.TrimPrefix(line, renderTitlePrefix))
			continue
		}
		content.WriteString(line)
		content.WriteString("\n")
		if content.Len() > s.maxChars*4 {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rendered %s: %w", rawURL, err)
	}
	page.Content = content.String()
	return page, nil
}

func (s *HTTPScraper) get(ctx context.Context, target, accept string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("invalid url %s: %w", target, err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", accept)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", target, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_ = resp.Body.Close()
		return nil, "", fmt.Errorf("fetch %s: status %d", target, resp.StatusCode)
	}

	return &limitedBody{Reader: io.LimitReader(resp.Body, maxBodyBytes), Closer: resp.Body}, resp.Header.Get("Content-Type"), nil
}

type limitedBody struct {
	io.Reader
	io.Closer
}

// extractText walks the parsed document collecting the title and visible text
func extractText(doc *html.Node) (string, string) {
	var title string
	var b strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.Data == "title" && title == "" && n.FirstChild != nil {
				title = n.FirstChild.Data
				return
			}
			if skippedElements[n.Data] {
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				b.WriteString(text)
				b.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return title, b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func bound(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars]) + "…"
}

var _ PageScraper = (*HTTPScraper)(nil)
