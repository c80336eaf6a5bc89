package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"dogbreeds-graphql/internal/logging"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestLoggingMiddleware_GeneratesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(logging.Config{Level: "info", Format: "json", Output: &buf})

	var fromCtx string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = logging.GetRequestID(r.Context())
	})
	rr := serve(LoggingMiddleware(logger)(next), gqlPost(listQuery, "10.0.0.1:1"))

	id := rr.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, fromCtx)

	entry := lastLogLine(t, &buf)
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, id, entry["request_id"])
	assert.Equal(t, float64(http.StatusOK), entry["status"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestLoggingMiddleware_PropagatesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(logging.Config{Level: "info", Format: "json", Output: &buf})

	req := gqlPost(listQuery, "10.0.0.1:1")
	req.Header.Set(RequestIDHeader, "abc-123")
	rr := serve(LoggingMiddleware(logger)(okHandler()), req)

	assert.Equal(t, "abc-123", rr.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", lastLogLine(t, &buf)["request_id"])
}

func TestLoggingMiddleware_LevelFollowsStatus(t *testing.T) {
	cases := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusTooManyRequests, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		logger := logging.NewLogger(logging.Config{Level: "info", Format: "json", Output: &buf})
		next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(tc.status) })

		serve(LoggingMiddleware(logger)(next), gqlPost(listQuery, "10.0.0.1:1"))
		assert.Equal(t, tc.level, lastLogLine(t, &buf)["level"], "status %d", tc.status)
	}
}
