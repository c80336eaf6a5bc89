package resolver

import (
	"context"

	"dogbreeds-graphql/internal/apperr"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "dogbreeds-graphql/resolver"

func startResolverSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, name)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

// finishResolverSpan records the outcome and, for domain errors, the error code.
func finishResolverSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err == nil {
		span.SetAttributes(attribute.String("graphql.resolver.outcome", "success"))
		return
	}

	outcome := "error"
	if appErr, ok := apperr.As(err); ok {
		span.SetAttributes(attribute.String("graphql.resolver.error_code", string(appErr.Code)))
		if appErr.Status < 500 {
			outcome = "rejected"
		}
	}
	span.SetAttributes(attribute.String("graphql.resolver.outcome", outcome))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func setConnectionAttributes(span trace.Span, rows, totalCount int) {
	span.SetAttributes(
		attribute.Int("graphql.connection.rows", rows),
		attribute.Int("graphql.connection.total_count", totalCount),
	)
}
