package search

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/studybuddy-api/internal/models"
)

const minInformativeSnippet = 30

// Snippets containing these are boilerplate rather than content
var genericSnippetMarkers = []string{
	"javascript is disabled",
	"enable javascript",
	"enable cookies",
	"access denied",
	"page not found",
	"sign in to continue",
	"log in to continue",
	"we would like to show you a description here",
}

// FormatResults renders results as a numbered prompt block
func FormatResults(query string, results []models.Source) string {
	if len(results) == 0 {
		return fmt.Sprintf("WEB SEARCH RESULTS for %q: no results were found.", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "WEB SEARCH RESULTS for %q (cite as [n]):", query)
	for i, r := range results {
		fmt.Fprintf(&b, "\n[%d] %s\n%s", i+1, r.Title, r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&b, "\n%s", r.Snippet)
		}
	}
	return b.String()
}

// FailureNotice is appended to the prompt when the search step fails
func FailureNotice(query string) string {
	return fmt.Sprintf("WEB SEARCH: the live search for %q failed. Answer from your own knowledge "+
		"and mention that current web results were unavailable.", query)
}

// Informative reports whether results carry real content worth showing the student
func Informative(results []models.Source) bool {
	for _, r := range results {
		if isInformativeSnippet(r.Snippet) {
			return true
		}
	}
	return false
}

func isInformativeSnippet(snippet string) bool {
	s := strings.ToLower(strings.TrimSpace(snippet))
	if len(s) < minInformativeSnippet {
		return false
	}
	for _, marker := range genericSnippetMarkers {
		if strings.Contains(s, marker) {
			return false
		}
	}
	return true
}

// FormatLatestInfo renders re-search results appended after a hedged answer
func FormatLatestInfo(results []models.Source) string {
	var b strings.Builder
	b.WriteString("\n\n---\n**Latest information from the web:**")
	n := 0
	for _, r := range results {
		if !isInformativeSnippet(r.Snippet) {
			continue
		}
		n++
		fmt.Fprintf(&b, "\n%d. **%s**: %s ([source](%s))", n, r.Title, r.Snippet, r.URL)
	}
	return b.String()
}

// FormatCitations appends a numbered Sources section for sources the answer
// does not already link. Numbers match the [n] markers given in the prompt.
func FormatCitations(answer string, sources []models.Source) string {
	var lines []string
	for i, s := range sources {
		if s.URL == "" || strings.Contains(answer, s.URL) {
			continue
		}
		title := s.Title
		if title == "" {
			title = s.URL
		}
		lines = append(lines, fmt.Sprintf("%d. [%s](%s)", i+1, title, s.URL))
	}
	if len(lines) == 0 {
		return answer
	}
	return answer + "\n\n**Sources:**\n" + strings.Join(lines, "\n")
}
