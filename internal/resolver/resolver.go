// Package resolver builds the GraphQL schema for breeds and categories and
// resolves its fields against the store.
//
// List fields combine the filter builder, the cursor pagination planner and a
// count query into a connection. Relationship fields go through the request's
// loaders so that every Breed.category (or Category.breeds) in one response
// level is fetched with a single query.
package resolver

import (
	"context"
	"errors"

	"dogbreeds-graphql/internal/apperr"
	"dogbreeds-graphql/internal/loader"
	"dogbreeds-graphql/internal/logging"
	"dogbreeds-graphql/internal/pagination"
	"dogbreeds-graphql/internal/store"
	"dogbreeds-graphql/internal/validation"

	"github.com/graphql-go/graphql"
)

// Resolver resolves the GraphQL schema against a breed and a category store.
type Resolver struct {
	breeds          store.BreedStore
	categories      store.CategoryStore
	validator       *validation.Validator
	defaultPageSize int
	maxPageSize     int
	loaderOpts      []loader.Option
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPageSizes sets the default and maximum page size of connection fields.
// A zero max disables the limit.
func WithPageSizes(defaultSize, maxSize int) Option {
	return func(r *Resolver) {
		if defaultSize > 0 {
			r.defaultPageSize = defaultSize
		}
		if maxSize >= 0 {
			r.maxPageSize = maxSize
		}
	}
}

// WithLoaderOptions applies opts to loaders the resolver creates for requests
// that arrive without a loader set.
func WithLoaderOptions(opts ...loader.Option) Option {
	return func(r *Resolver) {
		r.loaderOpts = append(r.loaderOpts, opts...)
	}
}

// New creates a resolver.
func New(breeds store.BreedStore, categories store.CategoryStore, opts ...Option) *Resolver {
	r := &Resolver{
		breeds:          breeds,
		categories:      categories,
		validator:       validation.New(),
		defaultPageSize: pagination.DefaultPageSize,
		maxPageSize:     pagination.MaxPageSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewLoaders builds a fresh loader set over the resolver's stores.
func (r *Resolver) NewLoaders(opts ...loader.Option) *loader.Loaders {
	return loader.NewLoaders(r.breeds, r.categories, append(append([]loader.Option{}, r.loaderOpts...), opts...)...)
}

// BuildSchema constructs the executable schema.
func (r *Resolver) BuildSchema() (graphql.Schema, error) {
	t := newTypes(r)
	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    t.query(),
		Mutation: t.mutation(),
	})
}

// loaders returns the request's loader set: the one the batching middleware
// put in the context, or one kept on a map root value for the duration of a
// single execution. ok is false when neither is available.
func (r *Resolver) loaders(p graphql.ResolveParams) (l *loader.Loaders, ok bool) {
	if l, ok := loader.FromContext(p.Context); ok {
		return l, true
	}
	// graphql.Params.RootObject left unset arrives as a nil map.
	root, isMap := p.Info.RootValue.(map[string]interface{})
	if !isMap || root == nil {
		return nil, false
	}
	if l, ok := root[rootLoadersKey].(*loader.Loaders); ok {
		return l, true
	}
	l = r.NewLoaders()
	root[rootLoadersKey] = l
	return l, true
}

// errNoLoaders is returned by relationship fields executed without a loader set.
func errNoLoaders() error {
	return apperr.Internal(errors.New("no request loaders attached; execute through the batching middleware or pass a map root value"))
}

const rootLoadersKey = "loaders"

// fail logs a resolver error and returns it normalized to a domain error.
func fail(ctx context.Context, field string, err error) error {
	appErr := apperr.Normalize(err)
	logger := logging.FromContext(ctx)
	if appErr.Status >= 500 {
		logger.Error("resolver failed", "field", field, "code", appErr.Code, "error", err)
	} else {
		logger.Warn("resolver rejected request", "field", field, "code", appErr.Code, "error", err)
	}
	return appErr
}
