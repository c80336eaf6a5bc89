package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumFor(t *testing.T, data metricdata.Aggregation, key, value string) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", data)
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestGraphQLMetrics_Requests(t *testing.T) {
	reader, provider := newTestMeter(t)
	m, err := NewGraphQLMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.IncrementActiveRequests(ctx)
	m.RecordRequest(ctx, 12*time.Millisecond, false, "query")
	m.RecordRequest(ctx, 3*time.Millisecond, true, "mutation")
	m.RecordQueryDepth(ctx, 4, "query")
	m.DecrementActiveRequests(ctx)

	data := collect(t, reader)
	assert.Equal(t, int64(1), sumFor(t, data["graphql.requests.total"], "operation_type", "query"))
	assert.Equal(t, int64(1), sumFor(t, data["graphql.errors.total"], "operation_type", "mutation"))
	assert.Equal(t, int64(0), sumFor(t, data["graphql.errors.total"], "operation_type", "query"))

	depth, ok := data["graphql.query.depth"].(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, depth.DataPoints, 1)
	assert.Equal(t, int64(4), depth.DataPoints[0].Sum)
}

func TestGraphQLMetrics_LoaderObserver(t *testing.T) {
	reader, provider := newTestMeter(t)
	m, err := NewGraphQLMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordBatch(ctx, "category", 5)
	m.RecordBatch(ctx, "category", 1)
	m.RecordCacheHit(ctx, "category")
	m.RecordCacheMiss(ctx, "breed")
	m.RecordCacheMiss(ctx, "breed")

	data := collect(t, reader)
	assert.Equal(t, int64(4), sumFor(t, data["graphql.loader.queries_saved"], "loader", "category"))
	assert.Equal(t, int64(1), sumFor(t, data["graphql.loader.cache_hits"], "loader", "category"))
	assert.Equal(t, int64(2), sumFor(t, data["graphql.loader.cache_misses"], "loader", "breed"))

	batches, ok := data["graphql.loader.batch_size"].(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, batches.DataPoints, 1)
	assert.Equal(t, uint64(2), batches.DataPoints[0].Count)
	assert.Equal(t, int64(6), batches.DataPoints[0].Sum)
}

func TestSecurityMetrics_RateLimited(t *testing.T) {
	reader, provider := newTestMeter(t)
	m, err := NewSecurityMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordRateLimited(ctx, "mutation")
	m.RecordRateLimited(ctx, "mutation")
	m.RecordAuthFailure(ctx, "/graphql", "missing_token")

	data := collect(t, reader)
	assert.Equal(t, int64(2), sumFor(t, data["security.ratelimit.rejections.total"], "budget", "mutation"))
	assert.Equal(t, int64(1), sumFor(t, data["security.auth.failures.total"], "reason", "missing_token"))
}

func TestContextWithGraphQLMetrics(t *testing.T) {
	_, provider := newTestMeter(t)
	m, err := NewGraphQLMetrics(provider.Meter("test"))
	require.NoError(t, err)

	assert.Nil(t, GraphQLMetricsFromContext(context.Background()))
	assert.Same(t, m, GraphQLMetricsFromContext(ContextWithGraphQLMetrics(context.Background(), m)))
}
