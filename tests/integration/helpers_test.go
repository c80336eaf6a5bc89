//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dogbreeds-graphql/internal/config"
	"dogbreeds-graphql/internal/logging"
	"dogbreeds-graphql/internal/migrations"
	"dogbreeds-graphql/internal/serverapp"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func requireIntegrationEnv(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// startPostgres runs a throwaway PostgreSQL container and returns its DSN.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("dogbreeds_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func openDB(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.PingContext(context.Background()))
	require.NoError(t, migrations.Up(db, config.DriverPostgres))
	return db
}

func testConfig(dsn string) *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{
			Driver:           config.DriverPostgres,
			ConnectionString: dsn,
			Pool: config.PoolConfig{
				MaxOpen:     5,
				MaxIdle:     2,
				MaxLifetime: time.Minute,
			},
			ConnectionTimeout:       10 * time.Second,
			ConnectionRetryInterval: 200 * time.Millisecond,
			AutoMigrate:             true,
		},
		Server: config.ServerConfig{
			Port:                   0,
			Environment:            "development",
			GraphQLMaxDepth:        10,
			GraphQLDefaultPageSize: 10,
			GraphQLMaxPageSize:     100,
			GraphQLMaxBatchSize:    100,
			MaxBodyBytes:           1 << 20,
			RateLimit: config.RateLimitConfig{
				Enabled:     true,
				Window:      time.Minute,
				QueryMax:    1000,
				MutationMax: 1000,
			},
			ReadTimeout:        5 * time.Second,
			WriteTimeout:       5 * time.Second,
			IdleTimeout:        5 * time.Second,
			ShutdownTimeout:    5 * time.Second,
			HealthCheckTimeout: 2 * time.Second,
		},
		Observability: config.ObservabilityConfig{
			ServiceName: "dogbreeds-graphql-test",
			Logging:     config.LoggingConfig{Level: "warn", Format: "text"},
		},
	}
}

// startServer initializes the full application against dsn and serves it
// from an httptest server.
func startServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	logger := logging.NewLogger(logging.Config{Level: "warn", Format: "text", Output: io.Discard})
	app, err := serverapp.New(cfg, logger)
	require.NoError(t, err)
	require.NoError(t, app.Init(context.Background()))
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)
	return srv
}

type gqlError struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions"`
}

type gqlResponse struct {
	Data   map[string]any `json:"data"`
	Errors []gqlError     `json:"errors"`
}

func (r gqlResponse) code() string {
	if len(r.Errors) == 0 {
		return ""
	}
	code, _ := r.Errors[0].Extensions["code"].(string)
	return code
}

func execute(t *testing.T, srv *httptest.Server, query string, variables map[string]any) (gqlResponse, int) {
	t.Helper()
	body, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/graphql", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out gqlResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out, resp.StatusCode
}

func mustExecute(t *testing.T, srv *httptest.Server, query string, variables map[string]any) map[string]any {
	t.Helper()
	out, status := execute(t, srv, query, variables)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, out.Errors, "unexpected errors: %+v", out.Errors)
	return out.Data
}

func path(t *testing.T, v any, keys ...string) any {
	t.Helper()
	for _, k := range keys {
		m, ok := v.(map[string]any)
		require.True(t, ok, "expected object at %q", k)
		v = m[k]
	}
	return v
}

func breedInput(name, categoryID string, height float64) map[string]any {
	return map[string]any{
		"name":                  name,
		"description":           "A friendly dog bred for companionship.",
		"history":               "Developed over several centuries by breeders.",
		"health":                "Generally healthy with regular checkups.",
		"origin":                "Germany",
		"colors":                []string{"black", "tan"},
		"averageHeight":         height,
		"averageWeight":         25.5,
		"averageLifeExpectancy": 12,
		"exerciseRequired":      4,
		"easeOfTraining":        4,
		"affection":             5,
		"playfulness":           3,
		"goodWithChildren":      5,
		"goodWithDogs":          3,
		"groomingRequired":      2,
		"categoryId":            categoryID,
	}
}
