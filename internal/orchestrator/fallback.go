package orchestrator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Conceptual-Machines/studybuddy-api/internal/logger"
	"github.com/Conceptual-Machines/studybuddy-api/internal/models"
)

type cannedRule struct {
	topic   string
	pattern *regexp.Regexp
	answer  string
}

// Rules are checked in order; the first match wins
var cannedRules = []cannedRule{
	{
		topic:   "calculus",
		pattern: regexp.MustCompile(`\b(derivatives?|integrals?|integration|limits?|calculus|differentiat\w*)\b`),
		answer: "Calculus questions are some of my favorites! I can't reach my tutoring engine right now, " +
			"but here's a tip while you wait: for derivatives, start with the power rule " +
			"(d/dx of x^n is n·x^(n-1)), and for integrals, reverse it and remember the + C. " +
			"Try asking again in a moment and we'll work through your problem step by step.",
	},
	{
		topic:   "math",
		pattern: regexp.MustCompile(`\b(math\w*|algebra|equations?|geometry|trigonometry|fractions?|arithmetic|statistics|probability|solve)\b`),
		answer: "I'd love to help with this math problem! I'm having trouble connecting right now. " +
			"In the meantime, try writing down what you know and what you need to find, then look for " +
			"a formula that links them. Ask me again shortly and we'll solve it together.",
	},
	{
		topic:   "science",
		pattern: regexp.MustCompile(`\b(science|physics|chemistry|biology|atoms?|molecules?|cells?|photosynthesis|newton|gravity|energy|reactions?|evolution)\b`),
		answer: "Great science question! I can't reach my tutoring engine at the moment. " +
			"A good first step is to identify the key concept involved and recall its definition. " +
			"Please try again in a little while and I'll explain it in detail.",
	},
	{
		topic:   "writing",
		pattern: regexp.MustCompile(`\b(essays?|writing|thesis|paragraphs?|grammar|outline|introduction|conclusion)\b`),
		answer: "Writing help is on the way! I'm temporarily unable to connect. While you wait, " +
			"try jotting down your main argument in one sentence. That becomes your thesis, " +
			"and every paragraph should support it. Ask me again soon and we'll build it out.",
	},
	{
		topic:   "programming",
		pattern: regexp.MustCompile(`\b(code|coding|programming|python|javascript|java|typescript|algorithms?|debug\w*|compile\w*|loops?|arrays?)\b`),
		answer: "Happy to help with your code! I'm having connection trouble right now. " +
			"Meanwhile, try reading the error message carefully and printing the values of your " +
			"variables just before the failing line. Try again shortly and we'll debug it together.",
	},
	{
		topic:   "history",
		pattern: regexp.MustCompile(`\b(history|historical|war|revolution|empire|century|ancient|civilizations?|dynasty)\b`),
		answer: "History is full of great stories! I can't connect to my tutoring engine right now. " +
			"A useful habit while you wait: place the event on a timeline and ask what caused it " +
			"and what changed because of it. Ask me again in a moment for the full picture.",
	},
}

const defaultCannedAnswer = "I'm StudyBuddy, your AI study assistant. I'm having trouble connecting " +
	"right now, but I'll be back shortly. I can help with math, science, writing, programming, " +
	"history and more. Please try your question again in a moment."

var defaultRule = cannedRule{topic: "default", answer: defaultCannedAnswer}

func matchRule(question string) cannedRule {
	q := strings.ToLower(question)
	for _, rule := range cannedRules {
		if rule.pattern.MatchString(q) {
			return rule
		}
	}
	return defaultRule
}

// CannedResponse picks a deterministic local answer for when every provider failed
func CannedResponse(question string, p models.Personalization) string {
	return greeting(p.UserName) + matchRule(question).answer
}

// CannedTopic names the rule CannedResponse would use for question
func CannedTopic(question string) string {
	return matchRule(question).topic
}

func greeting(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Hi there! "
	}
	return fmt.Sprintf("Hi %s! ", name)
}

func fallbackResult(req *models.GenerationRequest) *models.GenerationResult {
	logger.Debug("Using canned answer", logger.Fields{"topic": CannedTopic(req.Question)})
	return &models.GenerationResult{
		Answer:          CannedResponse(req.Question, req.Personalization),
		Provider:        models.TierFallback,
		IsSearchRequest: req.Flags.IsSearchRequest,
	}
}
