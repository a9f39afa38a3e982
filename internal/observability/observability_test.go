package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/Conceptual-Machines/studybuddy-api/internal/config"
	"github.com/Conceptual-Machines/studybuddy-api/internal/llm"
	"github.com/stretchr/testify/assert"
)

func TestCalculateCost(t *testing.T) {
	tests := []struct {
		name  string
		model string
		usage llm.Usage
		want  float64
	}{
		{
			name:  "gemini flash",
			model: "gemini-2.5-flash",
			usage: llm.Usage{InputTokens: 1000, OutputTokens: 1000},
			want:  gemini25FlashInputPrice + gemini25FlashOutputPrice,
		},
		{
			name:  "gpt-4o-mini",
			model: "gpt-4o-mini",
			usage: llm.Usage{InputTokens: 2000, OutputTokens: 0},
			want:  2 * gpt4oMiniInputPrice,
		},
		{
			name:  "unknown gemini model uses flash pricing",
			model: "gemini-3-experimental",
			usage: llm.Usage{OutputTokens: 1000},
			want:  gemini25FlashOutputPrice,
		},
		{
			name:  "unknown model uses openai default",
			model: "o4-mini",
			usage: llm.Usage{InputTokens: 1000},
			want:  gpt4oMiniInputPrice,
		},
		{
			name:  "no usage",
			model: "gpt-4o",
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CalculateCost(tt.model, tt.usage), 1e-12)
		})
	}
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.000150", FormatCost(0.00015))
	assert.Equal(t, "$0.000000", FormatCost(0))
}

func TestDisabledClientIsNoop(t *testing.T) {
	client := InitializeLangfuse(context.Background(), &config.Config{LangfuseEnabled: false})
	assert.False(t, client.IsEnabled())
	assert.Same(t, client, GetClient())

	trace := client.StartTrace(context.Background(), "generate", map[string]interface{}{"k": "v"})
	gen := trace.Generation("gemini", nil)

	assert.NotPanics(t, func() {
		gen.Input("prompt")
		gen.LogCompletion("gemini-2.5-flash", &llm.Completion{Text: "answer"})
		gen.LogFailure("gpt-4o-mini", llm.KindNetworkTimeout, errors.New("deadline exceeded"))
		gen.Finish()
		trace.Finish()
	})
}

func TestNilClientIsDisabled(t *testing.T) {
	var client *LangfuseClient
	assert.False(t, client.IsEnabled())
}
