package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SecurityMetrics counts authentication outcomes and rate-limit rejections.
type SecurityMetrics struct {
	authAttempts   metric.Int64Counter
	authFailures   metric.Int64Counter
	authSuccesses  metric.Int64Counter
	rateLimited    metric.Int64Counter
	trackedClients metric.Int64UpDownCounter
}

// InitSecurityMetrics registers the instruments on the global meter provider.
func InitSecurityMetrics() (*SecurityMetrics, error) {
	return NewSecurityMetrics(otel.Meter(MeterName + "/security"))
}

// NewSecurityMetrics registers the instruments on meter.
func NewSecurityMetrics(meter metric.Meter) (*SecurityMetrics, error) {
	in := &instruments{meter: meter}
	clients, err := meter.Int64UpDownCounter("security.ratelimit.clients",
		metric.WithDescription("Clients currently tracked by the rate limiter"),
	)
	if err != nil {
		in.errs = append(in.errs, err)
	}

	m := &SecurityMetrics{
		authAttempts:   in.counter("security.auth.attempts.total", "Bearer token checks"),
		authFailures:   in.counter("security.auth.failures.total", "Rejected bearer tokens"),
		authSuccesses:  in.counter("security.auth.successes.total", "Accepted bearer tokens"),
		rateLimited:    in.counter("security.ratelimit.rejections.total", "Requests rejected by the rate limiter"),
		trackedClients: clients,
	}
	if err := in.err(); err != nil {
		return nil, fmt.Errorf("create security metrics: %w", err)
	}
	return m, nil
}

func (m *SecurityMetrics) RecordAuthAttempt(ctx context.Context, endpoint string) {
	m.authAttempts.Add(ctx, 1, metric.WithAttributes(attribute.String("endpoint", endpoint)))
}

// RecordAuthFailure counts a rejected token; reason is a short fixed label.
func (m *SecurityMetrics) RecordAuthFailure(ctx context.Context, endpoint, reason string) {
	m.authFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("reason", reason),
	))
}

func (m *SecurityMetrics) RecordAuthSuccess(ctx context.Context, endpoint, issuer string) {
	m.authSuccesses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("issuer", issuer),
	))
}

// RecordRateLimited counts a 429 for the given budget (query or mutation).
func (m *SecurityMetrics) RecordRateLimited(ctx context.Context, budget string) {
	m.rateLimited.Add(ctx, 1, metric.WithAttributes(attribute.String("budget", budget)))
}

// ClientTracked adjusts the tracked-client gauge by delta.
func (m *SecurityMetrics) ClientTracked(ctx context.Context, delta int64) {
	m.trackedClients.Add(ctx, delta)
}
