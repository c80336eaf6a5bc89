package middleware

import (
	"errors"
	"net/http"

	"dogbreeds-graphql/internal/apperr"
	"dogbreeds-graphql/internal/gqlrequest"
	"dogbreeds-graphql/internal/logging"
	"dogbreeds-graphql/internal/observability"
)

// AnalysisConfig bounds what the API accepts before execution.
type AnalysisConfig struct {
	MaxDepth     int
	MaxBodyBytes int64
}

// GraphQLRequestAnalysisMiddleware parses the GraphQL document once, stores the
// analysis in the context and enriches the request logger with the operation.
// Oversized bodies and documents nested deeper than MaxDepth are rejected here.
// Other parse problems are left to the GraphQL handler to report.
func GraphQLRequestAnalysisMiddleware(cfg AnalysisConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			a := gqlrequest.FromContext(ctx)
			if a == nil {
				a = gqlrequest.Analyze(r, cfg.MaxBodyBytes)
				ctx = gqlrequest.WithAnalysis(ctx, a)
			}

			if fields := observability.GraphQLLogFields(ctx, a); len(fields) > 0 {
				ctx = logging.WithLogger(ctx, logging.FromContext(ctx).WithFields(fields...))
			}

			if errors.Is(a.Err, gqlrequest.ErrBodyTooLarge) {
				appErr := apperr.Validation("Request body is too large")
				appErr.Status = http.StatusRequestEntityTooLarge
				writeGraphQLError(w, appErr)
				return
			}
			if err := a.CheckDepth(cfg.MaxDepth); err != nil {
				logging.FromContext(ctx).Warn("query rejected", "error", err.Error(), "depth", a.Depth)
				if appErr, ok := apperr.As(err); ok {
					writeGraphQLError(w, appErr)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
