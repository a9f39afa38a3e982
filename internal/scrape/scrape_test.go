package scrape

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScraper struct {
	failing map[string]bool
	calls   atomic.Int32
	modes   map[string]Mode
}

func (f *fakeScraper) Scrape(_ context.Context, rawURL string, mode Mode) (*Page, error) {
	f.calls.Add(1)
	if f.failing[rawURL] {
		return nil, errors.New("connection refused")
	}
	return &Page{URL: rawURL, Title: "Title " + rawURL, Content: "content of " + rawURL + " " + string(mode)}, nil
}

func TestModeFor(t *testing.T) {
	tests := []struct {
		url  string
		want Mode
	}{
		{"https://en.wikipedia.org/wiki/Photosynthesis", ModeLightweight},
		{"https://twitter.com/nasa/status/1", ModeRender},
		{"https://www.reddit.com/r/learnmath", ModeRender},
		{"https://old.reddit.com/r/learnmath", ModeRender},
		{"https://docs.google.com/document/d/abc", ModeRender},
		{"https://x.com/someone", ModeRender},
		{"https://notx.com/page", ModeLightweight},
		{"https://drive.google.com/file", ModeLightweight},
		{"://bad", ModeLightweight},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, ModeFor(tt.url))
		})
	}
}

func TestExtractURLs(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{
			name:  "no urls",
			text:  "what is the derivative of x^2?",
			limit: 3,
			want:  nil,
		},
		{
			name:  "trailing punctuation",
			text:  "Summarize https://example.org/article. Also see https://example.org/other?",
			limit: 3,
			want:  []string{"https://example.org/article", "https://example.org/other"},
		},
		{
			name:  "dedupe",
			text:  "https://a.com/x and https://a.com/x again",
			limit: 3,
			want:  []string{"https://a.com/x"},
		},
		{
			name:  "parenthesized",
			text:  "(see https://en.wikipedia.org/wiki/Go_(programming_language))",
			limit: 3,
			want:  []string{"https://en.wikipedia.org/wiki/Go_(programming_language)"},
		},
		{
			name:  "capped",
			text:  "http://one.com http://two.com http://three.com http://four.com",
			limit: 3,
			want:  []string{"http://one.com", "http://two.com", "http://three.com"},
		},
		{
			name:  "zero limit",
			text:  "http://one.com",
			limit: 0,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractURLs(tt.text, tt.limit))
		})
	}
}

func TestScrapeAll_DropsFailuresAndKeepsOrder(t *testing.T) {
	urls := []string{"https://a.com", "https://b.com", "https://twitter.com/c"}
	scraper := &fakeScraper{failing: map[string]bool{"https://b.com": true}}

	pages := ScrapeAll(context.Background(), scraper, urls)

	require.Len(t, pages, 2)
	assert.Equal(t, "https://a.com", pages[0].URL)
	assert.Equal(t, "https://twitter.com/c", pages[1].URL)
	assert.Contains(t, pages[0].Content, string(ModeLightweight))
	assert.Contains(t, pages[1].Content, string(ModeRender))
	assert.Equal(t, int32(3), scraper.calls.Load())
}

func TestScrapeAll_Empty(t *testing.T) {
	assert.Empty(t, ScrapeAll(context.Background(), &fakeScraper{}, nil))
	assert.Empty(t, ScrapeAll(context.Background(), nil, []string{"https://a.com"}))
}

func TestFormatPages(t *testing.T) {
	assert.Equal(t, "", FormatPages(nil))

	block := FormatPages([]Page{
		{URL: "https://a.com", Title: "Alpha", Content: "first"},
		{URL: "https://b.com", Content: "second"},
	})

	assert.True(t, strings.HasPrefix(block, "CONTENT FROM LINKED PAGES:"))
	assert.Contains(t, block, "[Page 1] Alpha (https://a.com)\nfirst")
	assert.Contains(t, block, "[Page 2] https://b.com (https://b.com)\nsecond")
}
