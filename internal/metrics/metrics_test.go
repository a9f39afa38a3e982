package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	inputs chan *cloudwatch.PutMetricDataInput
}

func (f *fakePutter) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs <- params
	return &cloudwatch.PutMetricDataOutput{}, nil
}

type countingRecorder struct {
	mu       sync.Mutex
	attempts []string
	tiers    []string
	tokens   int
	requests int
}

func (c *countingRecorder) RecordProviderAttempt(_ context.Context, provider string, _ bool, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts = append(c.attempts, provider)
}

func (c *countingRecorder) RecordGeneration(_ context.Context, tier string, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tiers = append(c.tiers, tier)
}

func (c *countingRecorder) RecordTokenUsage(_ context.Context, _ string, _, _, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens += total
}

func (c *countingRecorder) RecordAPIRequest(context.Context, string, int, time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests++
}

func TestMulti_FansOut(t *testing.T) {
	a, b := &countingRecorder{}, &countingRecorder{}
	multi := Multi{a, b}

	ctx := context.Background()
	multi.RecordProviderAttempt(ctx, "gemini", false, time.Second)
	multi.RecordGeneration(ctx, "secondary", time.Second)
	multi.RecordTokenUsage(ctx, "gpt-4o-mini", 10, 20, 30)
	multi.RecordAPIRequest(ctx, "/api/v1/chat", 200, time.Second)

	for _, r := range []*countingRecorder{a, b} {
		assert.Equal(t, []string{"gemini"}, r.attempts)
		assert.Equal(t, []string{"secondary"}, r.tiers)
		assert.Equal(t, 30, r.tokens)
		assert.Equal(t, 1, r.requests)
	}
}

func TestNewClient_DisabledOutsideProduction(t *testing.T) {
	client, err := NewClient(context.Background(), "development")
	require.NoError(t, err)
	assert.False(t, client.enabled)

	// Disabled clients never touch AWS
	client.RecordGeneration(context.Background(), "primary", time.Second)
}

func TestClient_RecordProviderAttempt(t *testing.T) {
	putter := &fakePutter{inputs: make(chan *cloudwatch.PutMetricDataInput, 1)}
	client := newClientWith(putter, "production")

	client.RecordProviderAttempt(context.Background(), "openai", false, 1500*time.Millisecond)

	select {
	case input := <-putter.inputs:
		assert.Equal(t, namespace, aws.ToString(input.Namespace))
		require.Len(t, input.MetricData, 2)
		assert.Equal(t, "ProviderFailure", aws.ToString(input.MetricData[0].MetricName))
		assert.Equal(t, "ProviderLatency", aws.ToString(input.MetricData[1].MetricName))
		assert.Equal(t, 1500.0, aws.ToFloat64(input.MetricData[1].Value))

		dims := input.MetricData[0].Dimensions
		require.Len(t, dims, 2)
		assert.Equal(t, "Provider", aws.ToString(dims[0].Name))
		assert.Equal(t, "openai", aws.ToString(dims[0].Value))
		assert.Equal(t, "production", aws.ToString(dims[1].Value))
	case <-time.After(2 * time.Second):
		t.Fatal("expected metrics to be published")
	}
}

func TestClient_RecordAPIRequest_ServerError(t *testing.T) {
	putter := &fakePutter{inputs: make(chan *cloudwatch.PutMetricDataInput, 1)}
	client := newClientWith(putter, "production")

	client.RecordAPIRequest(context.Background(), "/api/v1/chat", 502, time.Millisecond)

	select {
	case input := <-putter.inputs:
		assert.Equal(t, "APIErrors", aws.ToString(input.MetricData[0].MetricName))
	case <-time.After(2 * time.Second):
		t.Fatal("expected metrics to be published")
	}
}

func TestSentryMetrics_NoHub(t *testing.T) {
	m := NewSentryMetrics()
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordProviderAttempt(ctx, "gemini", true, time.Second)
		m.RecordGeneration(ctx, "fallback", time.Second)
		m.RecordTokenUsage(ctx, "gemini-2.5-flash", 1, 2, 3)
		m.RecordAPIRequest(ctx, "/health", 200, time.Millisecond)
	})
}

func TestCounters_Snapshot(t *testing.T) {
	c := NewCounters()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordProviderAttempt(ctx, "gemini", false, time.Millisecond)
			c.RecordProviderAttempt(ctx, "openai", true, time.Millisecond)
			c.RecordGeneration(ctx, "secondary", time.Millisecond)
			c.RecordTokenUsage(ctx, "gpt-4o-mini", 10, 5, 15)
		}()
	}
	wg.Wait()
	c.RecordGeneration(ctx, "fallback", time.Millisecond)

	snap := c.Snapshot()
	assert.Equal(t, ProviderStats{Failures: 10}, snap.Providers["gemini"])
	assert.Equal(t, ProviderStats{Successes: 10}, snap.Providers["openai"])
	assert.Equal(t, int64(10), snap.Generations["secondary"])
	assert.Equal(t, int64(1), snap.Generations["fallback"])
	assert.Equal(t, int64(150), snap.TotalTokens)

	snap.Generations["secondary"] = 0
	assert.Equal(t, int64(10), c.Snapshot().Generations["secondary"])
}
