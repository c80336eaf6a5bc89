package gqlrequest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

// DefaultMaxBodyBytes bounds how much of a POST body is buffered for analysis.
const DefaultMaxBodyBytes int64 = 1 << 20

// ErrBodyTooLarge is returned when a POST body exceeds the configured limit.
var ErrBodyTooLarge = errors.New("request body too large")

// Envelope is the transport-independent part of a GraphQL HTTP request.
type Envelope struct {
	Method        string
	Query         string
	OperationName string
	Variables     map[string]interface{}
}

type payload struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// DecodeEnvelope reads the GraphQL payload from a GET query string, an
// application/json body or an application/graphql body. POST bodies are
// rewound so the GraphQL handler can read them again.
func DecodeEnvelope(r *http.Request, maxBodyBytes int64) (Envelope, error) {
	if r == nil {
		return Envelope{}, errors.New("request is nil")
	}
	env := Envelope{Method: r.Method}

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		env.Query = q.Get("query")
		env.OperationName = q.Get("operationName")
		if raw := q.Get("variables"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &env.Variables); err != nil {
				return env, fmt.Errorf("decode variables: %w", err)
			}
		}
		return env, nil
	case http.MethodPost:
	default:
		return env, nil
	}
	if r.Body == nil {
		return env, nil
	}

	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return env, err
	}
	if int64(len(body)) > maxBodyBytes {
		return env, ErrBodyTooLarge
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = strings.TrimSpace(r.Header.Get("Content-Type"))
	}
	if mediaType == "application/graphql" {
		env.Query = string(body)
		return env, nil
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return env, nil
	}
	var p payload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return env, fmt.Errorf("decode request body: %w", err)
	}
	env.Query = p.Query
	env.OperationName = p.OperationName
	env.Variables = p.Variables
	return env, nil
}
