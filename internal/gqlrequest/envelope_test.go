package gqlrequest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope_GET(t *testing.T) {
	q := url.Values{}
	q.Set("query", `query Names { breeds { totalCount } }`)
	q.Set("operationName", "Names")
	q.Set("variables", `{"first":5}`)
	req := httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil)

	env, err := DecodeEnvelope(req, 0)
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, env.Method)
	assert.Equal(t, `query Names { breeds { totalCount } }`, env.Query)
	assert.Equal(t, "Names", env.OperationName)
	assert.Equal(t, map[string]interface{}{"first": float64(5)}, env.Variables)
}

func TestDecodeEnvelope_GETBadVariables(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/graphql?query=%7Bbreeds%7BtotalCount%7D%7D&variables=%7B", nil)
	_, err := DecodeEnvelope(req, 0)
	assert.Error(t, err)
}

func TestDecodeEnvelope_PostApplicationGraphQL_RewindsBody(t *testing.T) {
	body := `{ categories { totalCount } }`
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/graphql; charset=utf-8")

	env, err := DecodeEnvelope(req, 0)
	require.NoError(t, err)
	assert.Equal(t, body, env.Query)

	rewound, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(rewound))
}

func TestDecodeEnvelope_PostJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(
		`{"query":"query One($id: ID!) { breed(id: $id) { name } }","operationName":"One","variables":{"id":"7"}}`))
	req.Header.Set("Content-Type", "application/json")

	env, err := DecodeEnvelope(req, 0)
	require.NoError(t, err)
	assert.Equal(t, "One", env.OperationName)
	assert.Equal(t, map[string]interface{}{"id": "7"}, env.Variables)
	assert.Contains(t, env.Query, "breed(id: $id)")
}

func TestDecodeEnvelope_PostMalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":`))
	req.Header.Set("Content-Type", "application/json")

	_, err := DecodeEnvelope(req, 0)
	assert.Error(t, err)
}

func TestDecodeEnvelope_BodyLimit(t *testing.T) {
	body := `{"query":"{ breeds { totalCount } }"}`
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	_, err := DecodeEnvelope(req, 10)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestDecodeEnvelope_OtherMethodsIgnored(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/graphql", nil)
	env, err := DecodeEnvelope(req, 0)
	require.NoError(t, err)
	assert.Empty(t, env.Query)
}
