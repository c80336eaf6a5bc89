package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error with context.
type ValidationError struct {
	Field   string
	Message string
	Hint    string
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (hint: %s)", e.Field, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
	Hint    string
}

// ValidationResult contains the results of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error returns a combined error message if there are validation errors.
func (r *ValidationResult) Error() string {
	if !r.HasErrors() {
		return ""
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func (r *ValidationResult) fail(field, hint, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Hint: hint})
}

func (r *ValidationResult) warn(field, hint, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationWarning{Field: field, Message: fmt.Sprintf(format, args...), Hint: hint})
}

// Validate checks the configuration and returns errors (fatal) and warnings.
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}
	c.Database.validate(result)
	c.Server.validate(result)
	c.Observability.validate(result)
	return result
}

var validSSLModes = map[string]bool{
	"": true, "disable": true, "allow": true, "prefer": true,
	"require": true, "verify-ca": true, "verify-full": true,
}

func (d *DatabaseConfig) validate(result *ValidationResult) {
	switch strings.ToLower(d.Driver) {
	case DriverPostgres, DriverMySQL:
	default:
		result.fail("database.driver", "valid values are: postgres, mysql", "unsupported database driver %q", d.Driver)
	}

	if d.ConnectionString == "" {
		if d.Port < 1 || d.Port > 65535 {
			result.fail("database.port", "", "port %d is out of valid range (1-65535)", d.Port)
		}
		if strings.TrimSpace(d.Database) == "" {
			result.fail("database.database", "set database.database or database.dsn", "database name is required")
		}
	} else if _, err := d.DSN(); err != nil {
		result.fail("database.dsn", "use the go-sql-driver/mysql DSN format", "%v", err)
	}

	if !validSSLModes[d.SSLMode] {
		result.fail("database.sslmode", "valid values are: disable, allow, prefer, require, verify-ca, verify-full", "invalid sslmode %q", d.SSLMode)
	}

	if d.Pool.MaxOpen < 0 {
		result.fail("database.pool.max_open", "", "max_open cannot be negative")
	}
	if d.Pool.MaxIdle < 0 {
		result.fail("database.pool.max_idle", "", "max_idle cannot be negative")
	}
	if d.Pool.MaxIdle > d.Pool.MaxOpen && d.Pool.MaxOpen > 0 {
		result.warn("database.pool.max_idle", "idle connections will be limited to max_open", "max_idle is greater than max_open")
	}

	if d.ConnectionTimeout < 0 {
		result.fail("database.connection_timeout", "", "connection_timeout cannot be negative")
	}
	if d.ConnectionRetryInterval < 0 {
		result.fail("database.connection_retry_interval", "", "connection_retry_interval cannot be negative")
	}
	if d.ConnectionTimeout > 0 && d.ConnectionRetryInterval == 0 {
		result.fail("database.connection_retry_interval",
			"set a retry interval such as 2s, or set connection_timeout to 0 to disable retries",
			"connection_retry_interval must be greater than 0 when connection_timeout is set")
	}
	if d.ConnectionTimeout > 0 && d.ConnectionRetryInterval > d.ConnectionTimeout {
		result.warn("database.connection_retry_interval", "only one connection attempt will be made",
			"connection_retry_interval is greater than connection_timeout")
	}
}

func (s *ServerConfig) validate(result *ValidationResult) {
	if s.Port < 1 || s.Port > 65535 {
		result.fail("server.port", "", "port %d is out of valid range (1-65535)", s.Port)
	}
	switch s.Environment {
	case "development", "production":
	default:
		result.fail("server.environment", "valid values are: development, production", "invalid environment %q", s.Environment)
	}

	if s.GraphQLMaxDepth < 0 {
		result.fail("server.graphql_max_depth", "", "graphql_max_depth cannot be negative")
	}
	if s.GraphQLDefaultPageSize < 1 {
		result.fail("server.graphql_default_page_size", "", "graphql_default_page_size must be at least 1")
	}
	if s.GraphQLMaxPageSize < 1 {
		result.fail("server.graphql_max_page_size", "", "graphql_max_page_size must be at least 1")
	}
	if s.GraphQLDefaultPageSize > s.GraphQLMaxPageSize && s.GraphQLMaxPageSize > 0 {
		result.fail("server.graphql_default_page_size", "lower the default or raise graphql_max_page_size",
			"graphql_default_page_size %d exceeds graphql_max_page_size %d", s.GraphQLDefaultPageSize, s.GraphQLMaxPageSize)
	}
	if s.GraphQLMaxBatchSize < 0 {
		result.fail("server.graphql_max_batch_size", "", "graphql_max_batch_size cannot be negative")
	}
	if s.MaxBodyBytes < 0 {
		result.fail("server.max_body_bytes", "", "max_body_bytes cannot be negative")
	}
	if s.GraphiQLEnabled && s.IsProduction() {
		result.warn("server.graphiql_enabled", "disable GraphiQL in production", "GraphiQL is enabled in production")
	}

	s.RateLimit.validate(result)
	s.Auth.validate(result)
	s.validateCORS(result)
}

func (r *RateLimitConfig) validate(result *ValidationResult) {
	if !r.Enabled {
		return
	}
	if r.Window <= 0 {
		result.fail("server.rate_limit.window", "use a duration such as 15m", "window must be greater than 0 when rate limiting is enabled")
	}
	if r.QueryMax < 0 {
		result.fail("server.rate_limit.query_max", "", "query_max cannot be negative")
	}
	if r.MutationMax < 0 {
		result.fail("server.rate_limit.mutation_max", "", "mutation_max cannot be negative")
	}
	if r.MaxClients < 0 {
		result.fail("server.rate_limit.max_clients", "", "max_clients cannot be negative")
	}
	if r.TrustForwardedFor {
		result.warn("server.rate_limit.trust_forwarded_for", "enable only behind a proxy that sets X-Forwarded-For",
			"clients are keyed by the X-Forwarded-For header")
	}
}

func (a *AuthConfig) validate(result *ValidationResult) {
	switch a.Scope {
	case "all", "mutations":
	default:
		result.fail("server.auth.scope", "valid values are: all, mutations", "invalid auth scope %q", a.Scope)
	}
	if !a.OIDCEnabled {
		return
	}
	if a.OIDCIssuerURL == "" {
		result.fail("server.auth.oidc_issuer_url", "", "issuer URL is required when OIDC is enabled")
	} else if u, err := url.Parse(a.OIDCIssuerURL); err != nil || u.Scheme != "https" || u.Host == "" {
		result.fail("server.auth.oidc_issuer_url", "use an https:// issuer URL", "invalid issuer URL %q", a.OIDCIssuerURL)
	}
	if a.OIDCAudience == "" {
		result.fail("server.auth.oidc_audience", "", "audience is required when OIDC is enabled")
	}
	if a.OIDCClockSkew < 0 {
		result.fail("server.auth.oidc_clock_skew", "", "oidc_clock_skew cannot be negative")
	}
	if a.OIDCSkipTLSVerify {
		result.warn("server.auth.oidc_skip_tls_verify", "use oidc_ca_file for private CAs", "OIDC provider certificates are not verified")
	}
}

func (s *ServerConfig) validateCORS(result *ValidationResult) {
	if !s.CORSEnabled {
		return
	}
	if len(s.CORSAllowedOrigins) == 0 {
		result.fail("server.cors_allowed_origins", "set cors_allowed_origins or disable CORS", "CORS enabled but no allowed origins configured")
	}
	for _, origin := range s.CORSAllowedOrigins {
		if strings.TrimSpace(origin) != "*" {
			continue
		}
		if s.CORSAllowCredentials {
			result.fail("server.cors_allowed_origins", "use specific origins with credentials, or wildcard without credentials",
				"wildcard origin (*) cannot be used with credentials")
		}
		result.warn("server.cors_allowed_origins", "use specific origins in production", "CORS wildcard origin enabled")
		break
	}
	if s.CORSMaxAge < 0 {
		result.fail("server.cors_max_age", "", "cors_max_age cannot be negative")
	}
}

func (o *ObservabilityConfig) validate(result *ValidationResult) {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[o.Logging.Level] {
		result.fail("observability.logging.level", "valid values are: debug, info, warn, error", "invalid log level %q", o.Logging.Level)
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[o.Logging.Format] {
		result.fail("observability.logging.format", "valid values are: json, text", "invalid log format %q", o.Logging.Format)
	}
	if o.TraceSampleRatio < 0 || o.TraceSampleRatio > 1 {
		result.fail("observability.trace_sample_ratio", "use a value between 0 and 1", "trace_sample_ratio %v is out of range", o.TraceSampleRatio)
	}

	o.OTLP.validate("observability.otlp", result)
	if o.Traces != nil {
		o.Traces.validate("observability.traces", result)
	}
	if o.Logs != nil {
		o.Logs.validate("observability.logs", result)
	}
}

func (o *OTLPConfig) validate(prefix string, result *ValidationResult) {
	validProtocols := map[string]bool{"": true, "grpc": true, "http/protobuf": true}
	if !validProtocols[o.Protocol] {
		result.fail(prefix+".protocol", "valid values are: grpc, http/protobuf", "invalid OTLP protocol %q", o.Protocol)
	}
	if o.Protocol == "http/protobuf" && !validOTLPEndpoint(o.Endpoint) {
		result.fail(prefix+".endpoint", "use host:port or a full URL", "invalid OTLP endpoint %q for http/protobuf", o.Endpoint)
	}
	validCompressions := map[string]bool{"": true, "none": true, "gzip": true}
	if !validCompressions[o.Compression] {
		result.fail(prefix+".compression", "valid values are: none, gzip", "invalid OTLP compression %q", o.Compression)
	}
	if o.RetryMaxAttempts < 0 {
		result.fail(prefix+".retry_max_attempts", "", "retry_max_attempts cannot be negative")
	}
}

func validOTLPEndpoint(endpoint string) bool {
	if endpoint == "" {
		return false
	}
	if strings.Contains(endpoint, "://") {
		parsed, err := url.Parse(endpoint)
		if err != nil {
			return false
		}
		return parsed.Host != ""
	}
	_, _, err := net.SplitHostPort(endpoint)
	return err == nil
}
