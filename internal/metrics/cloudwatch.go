package metrics

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	namespace                = "StudyBuddy/API"
	httpStatusServerError    = 500
	cloudwatchTimeoutSeconds = 5
)

// metricPutter is the subset of the CloudWatch client the recorder needs
type metricPutter interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Client wraps CloudWatch client for custom metrics
type Client struct {
	client      metricPutter
	enabled     bool
	environment string
}

// NewClient creates a new CloudWatch metrics client
func NewClient(ctx context.Context, environment string) (*Client, error) {
	// Only enable in production
	if environment != "production" {
		log.Printf("📊 CloudWatch Metrics: DISABLED (environment: %s)", environment)
		return &Client{
			enabled:     false,
			environment: environment,
		}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("⚠️  Failed to load AWS config for CloudWatch: %v", err)
		return &Client{enabled: false, environment: environment}, nil
	}

	log.Printf("📊 CloudWatch Metrics: ✅ ENABLED (namespace: %s)", namespace)
	return newClientWith(cloudwatch.NewFromConfig(cfg), environment), nil
}

func newClientWith(putter metricPutter, environment string) *Client {
	return &Client{client: putter, enabled: true, environment: environment}
}

// RecordAPIRequest records an API request metric
func (m *Client) RecordAPIRequest(_ context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	metricName := "APIRequests"
	if statusCode >= httpStatusServerError {
		metricName = "APIErrors"
	}

	m.send(
		m.dimensions("Endpoint", endpoint),
		datum(metricName, 1, types.StandardUnitCount),
		datum("APILatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds),
	)
}

// RecordProviderAttempt records attempt counts and latency per provider
func (m *Client) RecordProviderAttempt(_ context.Context, provider string, success bool, duration time.Duration) {
	if !m.enabled {
		return
	}

	metricName := "ProviderSuccess"
	if !success {
		metricName = "ProviderFailure"
	}

	m.send(
		m.dimensions("Provider", provider),
		datum(metricName, 1, types.StandardUnitCount),
		datum("ProviderLatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds),
	)
}

// RecordGeneration records generation duration by answering tier
func (m *Client) RecordGeneration(_ context.Context, tier string, duration time.Duration) {
	if !m.enabled {
		return
	}

	m.send(
		m.dimensions("Tier", tier),
		datum("Generations", 1, types.StandardUnitCount),
		datum("GenerationDuration", float64(duration.Milliseconds()), types.StandardUnitMilliseconds),
	)
}

// RecordTokenUsage records token usage per model
func (m *Client) RecordTokenUsage(_ context.Context, model string, inputTokens, outputTokens, totalTokens int) {
	if !m.enabled {
		return
	}

	m.send(
		m.dimensions("Model", model),
		datum("LLMTokens/Input", float64(inputTokens), types.StandardUnitCount),
		datum("LLMTokens/Output", float64(outputTokens), types.StandardUnitCount),
		datum("LLMTokens/Total", float64(totalTokens), types.StandardUnitCount),
	)
}

func (m *Client) dimensions(name, value string) []types.Dimension {
	return []types.Dimension{
		{
			Name:  aws.String(name),
			Value: aws.String(value),
		},
		{
			Name:  aws.String("Environment"),
			Value: aws.String(m.environment),
		},
	}
}

func datum(name string, value float64, unit types.StandardUnit) types.MetricDatum {
	return types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       unit,
	}
}

// send publishes data in the background so request latency is unaffected
func (m *Client) send(dimensions []types.Dimension, data ...types.MetricDatum) {
	go func() {
		if err := m.putMetrics(dimensions, data); err != nil {
			log.Printf("Failed to record %s metrics: %v", aws.ToString(data[0].MetricName), err)
		}
	}()
}

// putMetrics sends metric data to CloudWatch in one call
func (m *Client) putMetrics(dimensions []types.Dimension, data []types.MetricDatum) error {
	if !m.enabled || m.client == nil {
		return nil
	}

	timeout := time.Duration(cloudwatchTimeoutSeconds) * time.Second
	cwCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	now := time.Now()
	for i := range data {
		data[i].Dimensions = dimensions
		data[i].Timestamp = aws.Time(now)
	}

	_, err := m.client.PutMetricData(cwCtx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(namespace),
		MetricData: data,
	})
	return err
}
