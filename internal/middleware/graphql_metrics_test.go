package middleware

import (
	"context"
	"net/http"
	"testing"

	"dogbreeds-graphql/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func jsonHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
}

func setupGraphQLMetrics(t *testing.T, next http.Handler) (http.Handler, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := observability.NewGraphQLMetrics(provider.Meter("test"))
	require.NoError(t, err)
	chain := GraphQLRequestAnalysisMiddleware(AnalysisConfig{})(GraphQLMetricsMiddleware(metrics)(next))
	return chain, reader
}

// requestCount sums graphql.requests.total points for an operation type and outcome.
func requestCount(t *testing.T, reader *sdkmetric.ManualReader, name, opType string, hasErrors *bool) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if m.Name != name || !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				if v, _ := dp.Attributes.Value("operation_type"); v.AsString() != opType {
					continue
				}
				if hasErrors != nil {
					if v, _ := dp.Attributes.Value(attribute.Key("has_errors")); v.AsBool() != *hasErrors {
						continue
					}
				}
				total += dp.Value
			}
		}
	}
	return total
}

func flag(v bool) *bool { return &v }

func TestGraphQLMetricsMiddleware_Mutation(t *testing.T) {
	h, reader := setupGraphQLMetrics(t, jsonHandler(`{"data":{"deleteBreed":{"success":true}}}`))
	serve(h, gqlPost(deleteMutation, "10.0.0.1:1"))

	assert.Equal(t, int64(1), requestCount(t, reader, "graphql.requests.total", "mutation", flag(false)))
}

func TestGraphQLMetricsMiddleware_ErrorsInOKResponse(t *testing.T) {
	h, reader := setupGraphQLMetrics(t, jsonHandler(`{"data":null,"errors":[{"message":"Breed with ID '1' not found"}]}`))
	serve(h, gqlPost(listQuery, "10.0.0.1:1"))

	assert.Equal(t, int64(1), requestCount(t, reader, "graphql.requests.total", "query", flag(true)))
	assert.Equal(t, int64(1), requestCount(t, reader, "graphql.errors.total", "query", nil))
}

func TestGraphQLMetricsMiddleware_UnparsedIsUnknown(t *testing.T) {
	h, reader := setupGraphQLMetrics(t, jsonHandler(`{"errors":[{"message":"Syntax Error"}]}`))
	serve(h, gqlPost(brokenDocument, "10.0.0.1:1"))

	assert.Equal(t, int64(1), requestCount(t, reader, "graphql.requests.total", "unknown", flag(true)))
}

func TestGraphQLMetricsMiddleware_SkipsGet(t *testing.T) {
	h, reader := setupGraphQLMetrics(t, okHandler())
	req := gqlPost(listQuery, "10.0.0.1:1")
	req.Method = http.MethodGet
	serve(h, req)

	assert.Zero(t, requestCount(t, reader, "graphql.requests.total", "unknown", nil))
	assert.Zero(t, requestCount(t, reader, "graphql.requests.total", "query", nil))
}

func TestResponseHasGraphQLErrors(t *testing.T) {
	assert.True(t, responseHasGraphQLErrors([]byte(`{"errors":[{"message":"x"}]}`)))
	assert.False(t, responseHasGraphQLErrors([]byte(`{"data":{},"errors":[]}`)))
	assert.False(t, responseHasGraphQLErrors([]byte(`{"data":{},"errors":null}`)))
	assert.False(t, responseHasGraphQLErrors([]byte(`not json`)))
	assert.False(t, responseHasGraphQLErrors(nil))
}
