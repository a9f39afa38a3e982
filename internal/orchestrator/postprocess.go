package orchestrator

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Conceptual-Machines/studybuddy-api/internal/logger"
	"github.com/Conceptual-Machines/studybuddy-api/internal/models"
	"github.com/Conceptual-Machines/studybuddy-api/internal/search"
)

// AutoSearchDecision says whether an answer should be followed by a fresh search
type AutoSearchDecision struct {
	Trigger bool
	Query   string
}

// AutoSearchClassifier inspects a question and the provider's answer
type AutoSearchClassifier func(question, answer string) AutoSearchDecision

// Phrases models use when they know their answer may be out of date
var hedgingPhrases = []string{
	"i don't have current information",
	"i don't have real-time",
	"i do not have real-time",
	"i don't have access to real-time",
	"i do not have access to real-time",
	"i can't browse",
	"i cannot browse",
	"as of my last update",
	"as of my last training",
	"as of my knowledge cutoff",
	"my knowledge cutoff",
	"my training data",
	"i'm not able to access current",
	"i am not able to access current",
	"i don't have the latest",
	"i'm not sure about the latest",
	"may have changed since",
	"check the latest",
}

var timeSensitivePattern = regexp.MustCompile(
	`\b(latest|current|currently|today|tonight|now|recent|recently|this (week|month|year)|news|` +
		`upcoming|right now|price|score|winner|election|released?|update[ds]?|20[2-9][0-9])\b`)

var apostropheReplacer = strings.NewReplacer("’", "'", "‘", "'")

// ShouldAutoSearch triggers when the answer hedges about recency and the
// question asks about something time-sensitive
func ShouldAutoSearch(question, answer string) AutoSearchDecision {
	a := apostropheReplacer.Replace(strings.ToLower(answer))
	hedged := false
	for _, phrase := range hedgingPhrases {
		if strings.Contains(a, phrase) {
			hedged = true
			break
		}
	}
	if !hedged {
		return AutoSearchDecision{}
	}

	q := strings.ToLower(question)
	if !timeSensitivePattern.MatchString(q) {
		return AutoSearchDecision{}
	}
	return AutoSearchDecision{Trigger: true, Query: strings.TrimSpace(question)}
}

// postProcess appends fresh results to hedged answers and formats citations.
// The provider's answer is only ever extended, never replaced. Work happens on
// a copy so a panic in any step leaves result exactly as the provider returned it.
func (o *Orchestrator) postProcess(ctx context.Context, req *models.GenerationRequest, result *models.GenerationResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Post-processing panicked, keeping provider answer", fmt.Errorf("%v", r), logger.Fields{
				"provider": result.ProviderName,
			})
		}
	}()

	processed := *result
	decision := o.classifier(req.Question, processed.Answer)
	if decision.Trigger && o.search != nil {
		query := decision.Query
		if query == "" {
			query = req.Question
		}
		o.autoSearch(ctx, query, &processed)
	}

	if processed.IsSearchRequest {
		processed.Answer = search.FormatCitations(processed.Answer, processed.Sources)
	}
	*result = processed
}

func (o *Orchestrator) autoSearch(ctx context.Context, query string, result *models.GenerationResult) {
	results, err := o.runSearch(ctx, query)
	if err != nil {
		logger.Warn("Auto re-search failed", logger.Fields{"error": err.Error()})
		return
	}
	if !search.Informative(results) {
		logger.Debug("Auto re-search found nothing informative", logger.Fields{"results": len(results)})
		return
	}

	result.Answer += search.FormatLatestInfo(results)
	result.Sources = mergeSources(result.Sources, results)
	result.AutoSearched = true
	logger.Info("Hedged answer extended with fresh search results", logger.Fields{"results": len(results)})
}

// mergeSources appends extra sources whose URL is not already present
func mergeSources(existing, extra []models.Source) []models.Source {
	seen := make(map[string]bool, len(existing))
	merged := make([]models.Source, 0, len(existing)+len(extra))
	for _, s := range existing {
		seen[s.URL] = true
		merged = append(merged, s)
	}
	for _, s := range extra {
		if seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		merged = append(merged, s)
	}
	return merged
}
