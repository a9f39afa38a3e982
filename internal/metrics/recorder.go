package metrics

import (
	"context"
	"time"
)

// Recorder receives generation metrics. Implementations must not block the caller.
type Recorder interface {
	RecordProviderAttempt(ctx context.Context, provider string, success bool, duration time.Duration)
	RecordGeneration(ctx context.Context, tier string, duration time.Duration)
	RecordTokenUsage(ctx context.Context, model string, inputTokens, outputTokens, totalTokens int)
	RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration)
}

// Multi fans every call out to each recorder
type Multi []Recorder

func (m Multi) RecordProviderAttempt(ctx context.Context, provider string, success bool, duration time.Duration) {
	for _, r := range m {
		r.RecordProviderAttempt(ctx, provider, success, duration)
	}
}

func (m Multi) RecordGeneration(ctx context.Context, tier string, duration time.Duration) {
	for _, r := range m {
		r.RecordGeneration(ctx, tier, duration)
	}
}

func (m Multi) RecordTokenUsage(ctx context.Context, model string, inputTokens, outputTokens, totalTokens int) {
	for _, r := range m {
		r.RecordTokenUsage(ctx, model, inputTokens, outputTokens, totalTokens)
	}
}

func (m Multi) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	for _, r := range m {
		r.RecordAPIRequest(ctx, endpoint, statusCode, duration)
	}
}

// Nop discards everything
type Nop struct{}

func (Nop) RecordProviderAttempt(context.Context, string, bool, time.Duration) {}
func (Nop) RecordGeneration(context.Context, string, time.Duration)            {}
func (Nop) RecordTokenUsage(context.Context, string, int, int, int)            {}
func (Nop) RecordAPIRequest(context.Context, string, int, time.Duration)       {}

var (
	_ Recorder = Multi(nil)
	_ Recorder = Nop{}
	_ Recorder = (*SentryMetrics)(nil)
	_ Recorder = (*Client)(nil)
)
