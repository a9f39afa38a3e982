package orchestrator

import (
	"testing"

	"github.com/Conceptual-Machines/studybuddy-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCannedTopic(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{"What is the derivative of sin(x)?", "calculus"},
		{"How do I evaluate this integral?", "calculus"},
		{"Find the limit as x approaches 0", "calculus"},
		{"Help me with my algebra homework", "math"},
		{"Solve 2x + 3 = 7", "math"},
		{"Explain photosynthesis", "science"},
		{"What is Newton's second law in physics?", "science"},
		{"How do I start my essay?", "writing"},
		{"Fix my Python code", "programming"},
		{"What caused World War I?", "history"},
		{"Hello!", "default"},
		{"", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, CannedTopic(tt.question))
		})
	}
}

func TestCannedResponse_CalculusBeforeMath(t *testing.T) {
	// "math" also appears, calculus must still win
	assert.Equal(t, "calculus", CannedTopic("math question: derivative of x^2"))
}

func TestCannedResponse_Deterministic(t *testing.T) {
	p := models.Personalization{UserName: "Ana"}
	first := CannedResponse("integral of 1/x", p)
	second := CannedResponse("integral of 1/x", p)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "Hi Ana!")
}

func TestCannedResponse_Greeting(t *testing.T) {
	assert.Contains(t, CannedResponse("hello", models.Personalization{}), "Hi there!")
	assert.Contains(t, CannedResponse("hello", models.Personalization{UserName: "  "}), "Hi there!")
	assert.Contains(t, CannedResponse("hello", models.Personalization{}), "StudyBuddy")
}
