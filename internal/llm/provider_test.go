package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/Conceptual-Machines/studybuddy-api/internal/config"
	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ""},
		{"credential", fmt.Errorf("wrap: %w", ErrCredentialMissing), KindCredentialMissing},
		{"empty response", ErrEmptyResponse, KindMalformedResponse},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), KindNetworkTimeout},
		{"net timeout", &net.OpError{Op: "dial", Err: timeoutErr{}}, KindNetworkTimeout},
		{"gemini api error", fmt.Errorf("gemini request failed: %w", genai.APIError{Code: 503, Message: "overloaded"}), KindUpstreamHTTP},
		{"openai api error", fmt.Errorf("openai request failed: %w", &openai.Error{StatusCode: 429}), KindUpstreamHTTP},
		{"already classified", &ProviderError{Provider: "x", Kind: KindMalformedResponse, Err: errors.New("bad")}, KindMalformedResponse},
		{"unknown", errors.New("weird"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestNewProviderError_StatusCode(t *testing.T) {
	pe := NewProviderError("gemini", fmt.Errorf("failed: %w", genai.APIError{Code: 500}))
	assert.Equal(t, KindUpstreamHTTP, pe.Kind)
	assert.Equal(t, 500, pe.StatusCode)
	assert.Contains(t, pe.Error(), "status 500")

	pe = NewProviderError("openai", &openai.Error{StatusCode: 401})
	assert.Equal(t, 401, pe.StatusCode)
}

func TestNewProviderError_KeepsExisting(t *testing.T) {
	orig := &ProviderError{Provider: "openai", Kind: KindCredentialMissing, Err: ErrCredentialMissing}
	pe := NewProviderError("gemini", fmt.Errorf("wrapped: %w", orig))
	assert.Same(t, orig, pe)
	assert.ErrorIs(t, pe, ErrCredentialMissing)
}

func TestProviderFactory_Order(t *testing.T) {
	tests := []struct {
		name     string
		priority string
		want     []string
	}{
		{"default gemini first", "", []string{"gemini", "openai"}},
		{"explicit gemini", config.ProviderGemini, []string{"gemini", "openai"}},
		{"openai first", config.ProviderOpenAI, []string{"openai", "gemini"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := NewProviderFactory(&config.Config{ProviderPriority: tt.priority})
			providers, err := factory.Ordered(context.Background())
			require.NoError(t, err)
			require.Len(t, providers, 2)

			names := []string{providers[0].Name(), providers[1].Name()}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestProviderFactory_MissingCredentialsFailFast(t *testing.T) {
	factory := NewProviderFactory(&config.Config{GeminiAPIKey: "your_gemini_key_here"})
	providers, err := factory.Ordered(context.Background())
	require.NoError(t, err)

	for _, p := range providers {
		_, err := p.Generate(context.Background(), &PromptBundle{})
		require.Error(t, err)
		assert.Equal(t, KindCredentialMissing, Classify(err), p.Name())
		assert.ErrorIs(t, err, ErrCredentialMissing)
	}
}

func TestProviderFactory_Configured(t *testing.T) {
	factory := NewProviderFactory(&config.Config{OpenAIAPIKey: "sk-proj-realistic-key-123"})
	assert.Equal(t, map[string]bool{"gemini": false, "openai": true}, factory.Configured())
}
