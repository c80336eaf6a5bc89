package middleware

import (
	"log/slog"
	"net/http"

	"dogbreeds-graphql/internal/gqlrequest"
	"dogbreeds-graphql/internal/logging"
	"dogbreeds-graphql/internal/observability"

	"go.opentelemetry.io/otel"
)

const tracerName = "dogbreeds-graphql/graphql"

// GraphQLTracingMiddleware opens the graphql.execute span around the handler
// and adds trace and span ids to the request logger.
func GraphQLTracingMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a := gqlrequest.FromContext(r.Context())
			if a == nil || a.Envelope.Query == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx, span := otel.Tracer(tracerName).Start(r.Context(), "graphql.execute")
			defer span.End()

			if sc := span.SpanContext(); sc.IsValid() {
				ctx = logging.WithLogger(ctx, logging.FromContext(ctx).WithFields(
					slog.String("trace_id", sc.TraceID().String()),
					slog.String("span_id", sc.SpanID().String()),
				))
			}
			if span.IsRecording() {
				span.SetAttributes(observability.GraphQLSpanAttributes(a)...)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
