package observability

import (
	"context"
	"log/slog"

	"dogbreeds-graphql/internal/gqlrequest"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// GraphQLSpanAttributes describes the analyzed operation for the execute span.
func GraphQLSpanAttributes(a *gqlrequest.Analysis) []attribute.KeyValue {
	if a == nil {
		return nil
	}
	attrs := []attribute.KeyValue{
		attribute.String("graphql.operation.type", a.OperationType),
		attribute.Int("graphql.document.size_bytes", len(a.Envelope.Query)),
	}
	if !a.Parsed() {
		return attrs
	}
	return append(attrs,
		attribute.String("graphql.operation.name", a.OperationName),
		attribute.String("graphql.operation.hash", a.Hash),
		attribute.Int("graphql.query.field_count", a.FieldCount),
		attribute.Int("graphql.query.depth", a.Depth),
		attribute.Int("graphql.query.variable_count", a.VariableCount),
	)
}

// GraphQLLogFields builds the structured log fields for an operation.
func GraphQLLogFields(ctx context.Context, a *gqlrequest.Analysis) []any {
	var fields []any
	if a.Parsed() {
		fields = append(fields,
			slog.String("operation_name", a.OperationName),
			slog.String("operation_type", a.OperationType),
			slog.String("operation_hash", a.Hash),
		)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields, slog.String("trace_id", sc.TraceID().String()))
	}
	return fields
}
