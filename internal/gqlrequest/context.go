package gqlrequest

import "context"

type analysisKey struct{}

// WithAnalysis stores a request's analysis in ctx.
func WithAnalysis(ctx context.Context, a *Analysis) context.Context {
	return context.WithValue(ctx, analysisKey{}, a)
}

// FromContext returns the analysis stored by WithAnalysis, or nil.
func FromContext(ctx context.Context) *Analysis {
	if ctx == nil {
		return nil
	}
	a, _ := ctx.Value(analysisKey{}).(*Analysis)
	return a
}

// OperationType returns the analyzed operation type, or OperationUnknown.
func OperationType(ctx context.Context) string {
	if a := FromContext(ctx); a.Parsed() {
		return a.OperationType
	}
	return OperationUnknown
}
