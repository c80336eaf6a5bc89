package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName scopes every instrument the service registers.
const MeterName = "dogbreeds-graphql"

// instruments collects creation errors so constructors can check once.
type instruments struct {
	meter metric.Meter
	errs  []error
}

func (in *instruments) counter(name, desc string) metric.Int64Counter {
	c, err := in.meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		in.errs = append(in.errs, fmt.Errorf("%s: %w", name, err))
	}
	return c
}

func (in *instruments) histogram(name, desc string) metric.Int64Histogram {
	h, err := in.meter.Int64Histogram(name, metric.WithDescription(desc))
	if err != nil {
		in.errs = append(in.errs, fmt.Errorf("%s: %w", name, err))
	}
	return h
}

func (in *instruments) err() error {
	return errors.Join(in.errs...)
}

// GraphQLMetrics holds the request and loader instruments.
type GraphQLMetrics struct {
	requestDuration metric.Float64Histogram
	requestCounter  metric.Int64Counter
	errorCounter    metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
	queryDepth      metric.Int64Histogram

	loaderBatchSize    metric.Int64Histogram
	loaderCacheHits    metric.Int64Counter
	loaderCacheMisses  metric.Int64Counter
	loaderQueriesSaved metric.Int64Counter
}

// InitGraphQLMetrics registers the instruments on the global meter provider.
func InitGraphQLMetrics() (*GraphQLMetrics, error) {
	return NewGraphQLMetrics(otel.Meter(MeterName))
}

// NewGraphQLMetrics registers the instruments on meter.
func NewGraphQLMetrics(meter metric.Meter) (*GraphQLMetrics, error) {
	in := &instruments{meter: meter}

	duration, err := meter.Float64Histogram("graphql.request.duration",
		metric.WithDescription("Duration of GraphQL requests in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		in.errs = append(in.errs, err)
	}
	active, err := meter.Int64UpDownCounter("graphql.requests.active",
		metric.WithDescription("GraphQL requests in flight"),
	)
	if err != nil {
		in.errs = append(in.errs, err)
	}

	m := &GraphQLMetrics{
		requestDuration: duration,
		activeRequests:  active,
		requestCounter:  in.counter("graphql.requests.total", "GraphQL requests served"),
		errorCounter:    in.counter("graphql.errors.total", "GraphQL requests that returned errors"),
		queryDepth:      in.histogram("graphql.query.depth", "Selection depth of GraphQL operations"),

		loaderBatchSize:    in.histogram("graphql.loader.batch_size", "Keys sent to the database in one loader batch"),
		loaderCacheHits:    in.counter("graphql.loader.cache_hits", "Loader lookups served from the request cache"),
		loaderCacheMisses:  in.counter("graphql.loader.cache_misses", "Loader lookups that had to be queued"),
		loaderQueriesSaved: in.counter("graphql.loader.queries_saved", "Queries avoided by batching loader keys"),
	}
	if err := in.err(); err != nil {
		return nil, fmt.Errorf("create GraphQL metrics: %w", err)
	}
	return m, nil
}

// RecordRequest records one finished GraphQL request.
func (m *GraphQLMetrics) RecordRequest(ctx context.Context, duration time.Duration, hasErrors bool, operationType string) {
	attrs := metric.WithAttributes(
		attribute.String("operation_type", operationType),
		attribute.Bool("has_errors", hasErrors),
	)
	m.requestDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	m.requestCounter.Add(ctx, 1, attrs)
	if hasErrors {
		m.errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation_type", operationType)))
	}
}

// RecordQueryDepth records the selection depth of a parsed operation.
func (m *GraphQLMetrics) RecordQueryDepth(ctx context.Context, depth int, operationType string) {
	m.queryDepth.Record(ctx, int64(depth), metric.WithAttributes(attribute.String("operation_type", operationType)))
}

func (m *GraphQLMetrics) IncrementActiveRequests(ctx context.Context) {
	m.activeRequests.Add(ctx, 1)
}

func (m *GraphQLMetrics) DecrementActiveRequests(ctx context.Context) {
	m.activeRequests.Add(ctx, -1)
}

// RecordBatch implements loader.Observer. A batch of n keys replaces n-1 queries.
func (m *GraphQLMetrics) RecordBatch(ctx context.Context, loader string, keys int) {
	attrs := metric.WithAttributes(attribute.String("loader", loader))
	m.loaderBatchSize.Record(ctx, int64(keys), attrs)
	if keys > 1 {
		m.loaderQueriesSaved.Add(ctx, int64(keys-1), attrs)
	}
}

// RecordCacheHit implements loader.Observer.
func (m *GraphQLMetrics) RecordCacheHit(ctx context.Context, loader string) {
	m.loaderCacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("loader", loader)))
}

// RecordCacheMiss implements loader.Observer.
func (m *GraphQLMetrics) RecordCacheMiss(ctx context.Context, loader string) {
	m.loaderCacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("loader", loader)))
}

type graphQLMetricsKey struct{}

// ContextWithGraphQLMetrics stores m in ctx.
func ContextWithGraphQLMetrics(ctx context.Context, m *GraphQLMetrics) context.Context {
	return context.WithValue(ctx, graphQLMetricsKey{}, m)
}

// GraphQLMetricsFromContext returns the metrics stored in ctx, or nil.
func GraphQLMetricsFromContext(ctx context.Context) *GraphQLMetrics {
	if ctx == nil {
		return nil
	}
	m, _ := ctx.Value(graphQLMetricsKey{}).(*GraphQLMetrics)
	return m
}
