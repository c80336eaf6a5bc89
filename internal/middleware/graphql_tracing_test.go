package middleware

import (
	"bytes"
	"net/http"
	"testing"

	"dogbreeds-graphql/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphQLTracingMiddleware_StartsExecuteSpan(t *testing.T) {
	recorder, _ := installSpanRecorder(t)

	var buf bytes.Buffer
	logger := logging.NewLogger(logging.Config{Level: "info", Format: "json", Output: &buf})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context()).Info("executing")
		w.WriteHeader(http.StatusOK)
	})
	h := LoggingMiddleware(logger)(GraphQLRequestAnalysisMiddleware(AnalysisConfig{})(GraphQLTracingMiddleware()(next)))

	serve(h, gqlPost(`{"query":"query ListBreeds { breeds { totalCount } }"}`, "10.0.0.1:1"))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "graphql.execute", span.Name())

	attrs := attrMap(span)
	assert.Equal(t, "query", attrs["graphql.operation.type"])
	assert.Equal(t, "ListBreeds", attrs["graphql.operation.name"])
	assert.Equal(t, int64(2), attrs["graphql.query.depth"])
	assert.NotEmpty(t, attrs["graphql.operation.hash"])

	assert.Contains(t, buf.String(), `"trace_id":"`+span.SpanContext().TraceID().String()+`"`)
	assert.Contains(t, buf.String(), `"span_id":"`+span.SpanContext().SpanID().String()+`"`)
}

func TestGraphQLTracingMiddleware_SkipsEmptyQuery(t *testing.T) {
	recorder, _ := installSpanRecorder(t)
	h := GraphQLRequestAnalysisMiddleware(AnalysisConfig{})(GraphQLTracingMiddleware()(okHandler()))

	req := gqlPost("", "10.0.0.1:1")
	req.Method = http.MethodGet
	rr := serve(h, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, recorder.Ended())
}

func TestGraphQLTracingMiddleware_WithoutAnalysis(t *testing.T) {
	recorder, _ := installSpanRecorder(t)
	rr := serve(GraphQLTracingMiddleware()(okHandler()), gqlPost(listQuery, "10.0.0.1:1"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, recorder.Ended())
}
