package orchestrator

import (
	"testing"

	"github.com/Conceptual-Machines/studybuddy-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestShouldAutoSearch(t *testing.T) {
	tests := []struct {
		name     string
		question string
		answer   string
		want     bool
	}{
		{
			name:     "hedged and time sensitive",
			question: "What is the latest iPhone?",
			answer:   "As of my last update, the newest model was the iPhone 15.",
			want:     true,
		},
		{
			name:     "curly apostrophe",
			question: "Who is the current prime minister?",
			answer:   "I don’t have real-time information, but it was...",
			want:     true,
		},
		{
			name:     "year in question",
			question: "Who won the 2026 World Cup?",
			answer:   "My training data does not cover that event.",
			want:     true,
		},
		{
			name:     "hedged but timeless question",
			question: "What is the Pythagorean theorem?",
			answer:   "As of my last update, a^2 + b^2 = c^2.",
			want:     false,
		},
		{
			name:     "time sensitive but confident",
			question: "What is the latest iPhone?",
			answer:   "The newest model is the iPhone 17.",
			want:     false,
		},
		{
			name:     "empty answer",
			question: "latest news",
			answer:   "",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := ShouldAutoSearch(tt.question, tt.answer)
			assert.Equal(t, tt.want, decision.Trigger)
			if tt.want {
				assert.Equal(t, tt.question, decision.Query)
			}
		})
	}
}

func TestMergeSources(t *testing.T) {
	existing := []models.Source{{Title: "A", URL: "https://a"}}
	extra := []models.Source{{Title: "A again", URL: "https://a"}, {Title: "B", URL: "https://b"}}

	merged := mergeSources(existing, extra)

	assert.Equal(t, []models.Source{{Title: "A", URL: "https://a"}, {Title: "B", URL: "https://b"}}, merged)
	assert.Len(t, existing, 1)
}
