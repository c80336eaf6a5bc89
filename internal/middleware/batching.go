package middleware

import (
	"net/http"

	"dogbreeds-graphql/internal/loader"
	"dogbreeds-graphql/internal/logging"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BatchingMiddleware gives every request its own loader set so that cached
// rows never outlive the request that read them. Loader totals are added to
// the active span once the handler returns.
func BatchingMiddleware(newLoaders func() *loader.Loaders) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := newLoaders()
			ctx := loader.WithLoaders(r.Context(), l)
			next.ServeHTTP(w, r.WithContext(ctx))

			stats := l.Stats()
			if stats.Hits+stats.Misses == 0 {
				return
			}
			if span := trace.SpanFromContext(ctx); span.IsRecording() {
				span.SetAttributes(
					attribute.Int64("graphql.loader.cache_hits", stats.Hits),
					attribute.Int64("graphql.loader.cache_misses", stats.Misses),
					attribute.Int64("graphql.loader.batches", stats.Batches),
					attribute.Int64("graphql.loader.keys", stats.Keys),
					attribute.Float64("graphql.loader.cache_hit_ratio", float64(stats.Hits)/float64(stats.Hits+stats.Misses)),
				)
			}
			logging.FromContext(ctx).Debug("loader activity",
				"hits", stats.Hits,
				"misses", stats.Misses,
				"batches", stats.Batches,
			)
		})
	}
}
