package llm

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/openai/openai-go"
	"google.golang.org/genai"
)

// ErrorKind classifies why a provider or enrichment did not contribute
type ErrorKind string

const (
	KindCredentialMissing ErrorKind = "credential-missing"
	KindUpstreamHTTP      ErrorKind = "upstream-http-error"
	KindNetworkTimeout    ErrorKind = "network-timeout"
	KindMalformedResponse ErrorKind = "malformed-upstream-response"
	KindEnrichment        ErrorKind = "enrichment-failure"
	KindUnknown           ErrorKind = "unknown"
)

// ErrCredentialMissing is returned when a provider has no usable API key
var ErrCredentialMissing = errors.New("api credential missing or placeholder")

// ErrEmptyResponse is returned when a provider answers with no text
var ErrEmptyResponse = errors.New("provider returned no output text")

// ProviderError wraps a failed provider call with its classification
type ProviderError struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError classifies err and tags it with the provider name
func NewProviderError(provider string, err error) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return &ProviderError{
		Provider:   provider,
		Kind:       Classify(err),
		StatusCode: statusCode(err),
		Err:        err,
	}
}

// Classify maps an error from an SDK or the network into the failure taxonomy
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}

	switch {
	case errors.Is(err, ErrCredentialMissing):
		return KindCredentialMissing
	case errors.Is(err, ErrEmptyResponse):
		return KindMalformedResponse
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return KindNetworkTimeout
	}

	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return KindUpstreamHTTP
	}
	var genaiErrPtr *genai.APIError
	if errors.As(err, &genaiErrPtr) {
		return KindUpstreamHTTP
	}
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return KindUpstreamHTTP
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetworkTimeout
	}

	return KindUnknown
}

func statusCode(err error) int {
	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return genaiErr.Code
	}
	var genaiErrPtr *genai.APIError
	if errors.As(err, &genaiErrPtr) {
		return genaiErrPtr.Code
	}
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return openaiErr.StatusCode
	}
	return 0
}
