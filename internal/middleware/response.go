package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"

	"dogbreeds-graphql/internal/apperr"
)

// statusRecorder remembers the status code written through it and, when
// captureBody is set, a copy of the body.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	captureBody bool
	body        bytes.Buffer
}

func newStatusRecorder(w http.ResponseWriter, captureBody bool) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK, captureBody: captureBody}
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.status = status
	r.wroteHeader = true
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	if r.captureBody {
		_, _ = r.body.Write(b)
	}
	return r.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

type errorBody struct {
	Errors []errorEntry `json:"errors"`
}

type errorEntry struct {
	Message    string                 `json:"message"`
	Extensions map[string]interface{} `json:"extensions"`
}

// writeGraphQLError rejects a request before execution with a GraphQL-shaped
// error body, so clients see the same envelope as for resolver errors.
func writeGraphQLError(w http.ResponseWriter, err *apperr.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status)
	_ = json.NewEncoder(w).Encode(errorBody{Errors: []errorEntry{{
		Message:    err.Message,
		Extensions: err.Extensions(),
	}}})
}

// responseHasGraphQLErrors reports whether a JSON response carries a non-empty
// top-level errors array.
func responseHasGraphQLErrors(body []byte) bool {
	var payload struct {
		Errors []json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(body), &payload); err != nil {
		return false
	}
	return len(payload.Errors) > 0
}
