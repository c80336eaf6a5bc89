package middleware

import (
	"net/http"
	"time"

	"dogbreeds-graphql/internal/gqlrequest"
	"dogbreeds-graphql/internal/observability"
)

// GraphQLMetricsMiddleware records duration, outcome and depth for every
// GraphQL POST. A 200 response whose body carries errors counts as failed.
func GraphQLMetricsMiddleware(metrics *observability.GraphQLMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if metrics == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// GraphiQL page loads are not operations.
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ctx := observability.ContextWithGraphQLMetrics(r.Context(), metrics)
			metrics.IncrementActiveRequests(ctx)
			defer metrics.DecrementActiveRequests(ctx)

			opType := gqlrequest.OperationType(ctx)
			if a := gqlrequest.FromContext(ctx); a.Parsed() {
				metrics.RecordQueryDepth(ctx, a.Depth, opType)
			}

			start := time.Now()
			rec := newStatusRecorder(w, true)
			next.ServeHTTP(rec, r.WithContext(ctx))

			failed := rec.status >= 400 || responseHasGraphQLErrors(rec.body.Bytes())
			metrics.RecordRequest(ctx, time.Since(start), failed, opType)
		})
	}
}
