package middleware

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"dogbreeds-graphql/internal/apperr"
	"dogbreeds-graphql/internal/gqlrequest"
	"dogbreeds-graphql/internal/logging"
	"dogbreeds-graphql/internal/observability"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

// Auth scopes.
const (
	// AuthScopeAll requires a token on every GraphQL request.
	AuthScopeAll = "all"
	// AuthScopeMutations lets anonymous clients read; only mutations need a token.
	AuthScopeMutations = "mutations"
)

const defaultClockSkew = 2 * time.Minute

// OIDCAuthConfig controls bearer token validation against an OIDC issuer.
type OIDCAuthConfig struct {
	Enabled       bool
	IssuerURL     string
	Audience      string
	Scope         string
	ClockSkew     time.Duration
	CAFile        string
	SkipTLSVerify bool
}

type authContextKey struct{}

// AuthContext carries the validated token's identity.
type AuthContext struct {
	Subject  string
	Issuer   string
	Audience []string
	Claims   map[string]interface{}
}

// AuthFromContext returns the identity stored by the auth middleware.
func AuthFromContext(ctx context.Context) (AuthContext, bool) {
	auth, ok := ctx.Value(authContextKey{}).(AuthContext)
	return auth, ok
}

type tokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

// OIDCAuthMiddleware discovers the issuer's keys and validates bearer tokens.
// metrics may be nil.
func OIDCAuthMiddleware(cfg OIDCAuthConfig, logger *logging.Logger, metrics *observability.SecurityMetrics) (func(http.Handler) http.Handler, error) {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }, nil
	}
	if cfg.IssuerURL == "" || cfg.Audience == "" {
		return nil, errors.New("oidc auth enabled but issuer/audience not configured")
	}
	issuer, err := url.Parse(cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid oidc issuer url: %w", err)
	}
	if issuer.Scheme != "https" {
		return nil, errors.New("oidc issuer url must use https")
	}
	if cfg.SkipTLSVerify && logger != nil {
		logger.Warn("oidc tls verification is disabled; enable only for local development", "issuer", cfg.IssuerURL)
	}

	client, err := newOIDCHTTPClient(cfg)
	if err != nil {
		return nil, err
	}
	provider, err := oidc.NewProvider(context.WithValue(context.Background(), oauth2.HTTPClient, client), cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize oidc provider: %w", err)
	}
	return bearerAuth(provider.Verifier(verifierConfig(cfg)), cfg, metrics), nil
}

// verifierConfig leaves expiry to validateTimeClaims so ClockSkew applies.
func verifierConfig(cfg OIDCAuthConfig) *oidc.Config {
	return &oidc.Config{ClientID: cfg.Audience, SkipExpiryCheck: true}
}

func newOIDCHTTPClient(cfg OIDCAuthConfig) (*http.Client, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12, InsecureSkipVerify: cfg.SkipTLSVerify} //nolint:gosec // opt-in for local issuers
	if cfg.CAFile != "" {
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read oidc CA file: %w", err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.New("oidc CA file contains no certificates")
		}
		tlsConfig.RootCAs = pool
	}
	return &http.Client{
		Transport: &http.Transport{TLSClientConfig: tlsConfig},
		Timeout:   10 * time.Second,
	}, nil
}

func bearerAuth(verifier tokenVerifier, cfg OIDCAuthConfig, metrics *observability.SecurityMetrics) func(http.Handler) http.Handler {
	skew := cfg.ClockSkew
	if skew == 0 {
		skew = defaultClockSkew
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			endpoint := r.URL.Path
			reject := func(reason, message string, err error) {
				if metrics != nil {
					metrics.RecordAuthFailure(ctx, endpoint, reason)
				}
				fields := []any{slog.String("reason", reason), slog.String("remote_addr", r.RemoteAddr)}
				if err != nil {
					fields = append(fields, slog.String("error", err.Error()))
				}
				logging.FromContext(ctx).Warn("authentication failed", fields...)
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeGraphQLError(w, apperr.Unauthenticated(message))
			}

			raw := bearerToken(r.Header.Get("Authorization"))
			if raw == "" {
				if !requiresAuth(cfg.Scope, gqlrequest.FromContext(ctx)) {
					next.ServeHTTP(w, r)
					return
				}
				reject("missing_token", "Missing bearer token", nil)
				return
			}

			if metrics != nil {
				metrics.RecordAuthAttempt(ctx, endpoint)
			}
			idToken, err := verifier.Verify(ctx, raw)
			if err != nil {
				reject("verification_failed", "Invalid token", err)
				return
			}
			claims := map[string]interface{}{}
			if err := idToken.Claims(&claims); err != nil {
				reject("claims_parse_failed", "Invalid token claims", err)
				return
			}
			if err := validateTimeClaims(claims, skew, time.Now()); err != nil {
				reject("time_validation_failed", "Invalid token", err)
				return
			}

			auth := AuthContext{
				Subject:  idToken.Subject,
				Issuer:   idToken.Issuer,
				Audience: idToken.Audience,
				Claims:   claims,
			}
			if metrics != nil {
				metrics.RecordAuthSuccess(ctx, endpoint, auth.Issuer)
			}
			if span := trace.SpanFromContext(ctx); span.IsRecording() {
				span.SetAttributes(
					attribute.String("auth.subject", auth.Subject),
					attribute.String("auth.issuer", auth.Issuer),
					attribute.Bool("auth.authenticated", true),
				)
			}
			ctx = context.WithValue(ctx, authContextKey{}, auth)
			ctx = logging.WithLogger(ctx, logging.FromContext(ctx).WithFields(slog.String("subject", auth.Subject)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requiresAuth decides whether an anonymous request may proceed. Documents
// that cannot be analyzed are treated as mutations.
func requiresAuth(scope string, a *gqlrequest.Analysis) bool {
	if scope != AuthScopeMutations {
		return true
	}
	return !a.Parsed() || a.IsMutation()
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func validateTimeClaims(claims map[string]interface{}, skew time.Duration, now time.Time) error {
	exp, ok := numericDate(claims["exp"])
	if !ok {
		return errors.New("token has no expiry")
	}
	if now.After(exp.Add(skew)) {
		return errors.New("token expired")
	}
	if nbf, ok := numericDate(claims["nbf"]); ok && now.Add(skew).Before(nbf) {
		return errors.New("token not valid yet")
	}
	return nil
}

func numericDate(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case float64:
		return time.Unix(int64(v), 0), true
	case int64:
		return time.Unix(v, 0), true
	case json.Number:
		n, err := v.Int64()
		return time.Unix(n, 0), err == nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return time.Unix(n, 0), err == nil
	default:
		return time.Time{}, false
	}
}
