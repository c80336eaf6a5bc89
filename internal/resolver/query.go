package resolver

import (
	"context"

	"dogbreeds-graphql/internal/cursor"
	"dogbreeds-graphql/internal/filter"
	"dogbreeds-graphql/internal/model"
	"dogbreeds-graphql/internal/pagination"
	"dogbreeds-graphql/internal/store"

	"github.com/graphql-go/graphql"
	"go.opentelemetry.io/otel/attribute"
)

// pageSource is the part of a store a connection field reads from.
type pageSource[T any] interface {
	FindMany(ctx context.Context, params store.FindManyParams) ([]T, error)
	Count(ctx context.Context, where filter.Where) (int, error)
}

// page runs the count and page queries for one connection field.
func page[T any](ctx context.Context, src pageSource[T], where filter.Where, sort store.OrderBy, pargs pagination.Args, window pagination.Window, idOf func(T) string, encode cursor.Encoder) (*pagination.Connection[T], error) {
	total, err := src.Count(ctx, where)
	if err != nil {
		return nil, err
	}

	take := window.Take
	rows, err := src.FindMany(ctx, store.FindManyParams{
		Where:    where,
		OrderBy:  sort,
		CursorID: window.CursorID,
		Skip:     window.Skip,
		Take:     &take,
	})
	if err != nil {
		return nil, err
	}
	return pagination.Build(rows, pargs, window, total, idOf, encode), nil
}

func breedID(b *model.Breed) string       { return b.ID }
func categoryID(c *model.Category) string { return c.ID }

func (r *Resolver) queryBreeds(p graphql.ResolveParams) (result interface{}, err error) {
	a := args(p.Args)
	sort := orderBy(a)
	ctx, span := startResolverSpan(p.Context, "graphql.query.breeds",
		attribute.String("graphql.sort.field", sort.Field),
		attribute.Bool("graphql.sort.desc", sort.Desc),
	)
	defer func() {
		finishResolverSpan(span, err)
		span.End()
	}()

	f := breedFilterArgs(a)
	if err = r.validator.BreedFilter(f); err != nil {
		return nil, fail(ctx, "breeds", err)
	}
	pargs := paginationArgs(a)
	window, err := pagination.Plan(pargs, r.defaultPageSize, r.maxPageSize)
	if err != nil {
		return nil, fail(ctx, "breeds", err)
	}

	conn, err := page[*model.Breed](ctx, r.breeds, filter.BuildBreedWhere(f), sort, pargs, window, breedID, cursor.EncodePrefixed)
	if err != nil {
		return nil, fail(ctx, "breeds", err)
	}

	if l, ok := r.loaders(p); ok {
		for _, edge := range conn.Edges {
			l.Breed.Prime(edge.Node.ID, edge.Node)
		}
	}
	setConnectionAttributes(span, len(conn.Edges), conn.TotalCount)
	return conn, nil
}

func (r *Resolver) queryCategories(p graphql.ResolveParams) (result interface{}, err error) {
	a := args(p.Args)
	sort := orderBy(a)
	ctx, span := startResolverSpan(p.Context, "graphql.query.categories",
		attribute.String("graphql.sort.field", sort.Field),
		attribute.Bool("graphql.sort.desc", sort.Desc),
	)
	defer func() {
		finishResolverSpan(span, err)
		span.End()
	}()

	pargs := paginationArgs(a)
	window, err := pagination.Plan(pargs, r.defaultPageSize, r.maxPageSize)
	if err != nil {
		return nil, fail(ctx, "categories", err)
	}

	where := filter.BuildCategoryWhere(categoryFilterArgs(a))
	conn, err := page[*model.Category](ctx, r.categories, where, sort, pargs, window, categoryID, cursor.Encode)
	if err != nil {
		return nil, fail(ctx, "categories", err)
	}

	if l, ok := r.loaders(p); ok {
		for _, edge := range conn.Edges {
			l.Category.Prime(edge.Node.ID, edge.Node)
		}
	}
	setConnectionAttributes(span, len(conn.Edges), conn.TotalCount)
	return conn, nil
}

func (r *Resolver) queryBreed(p graphql.ResolveParams) (interface{}, error) {
	id := args(p.Args).str("id")
	b, err := r.breeds.FindUnique(p.Context, id)
	if err != nil {
		return nil, fail(p.Context, "breed", err)
	}
	if b == nil {
		return nil, nil
	}
	if l, ok := r.loaders(p); ok {
		l.Breed.Prime(b.ID, b)
	}
	return b, nil
}

func (r *Resolver) queryCategory(p graphql.ResolveParams) (interface{}, error) {
	id := args(p.Args).str("id")
	c, err := r.categories.FindUnique(p.Context, id)
	if err != nil {
		return nil, fail(p.Context, "category", err)
	}
	if c == nil {
		return nil, nil
	}
	if l, ok := r.loaders(p); ok {
		l.Category.Prime(c.ID, c)
	}
	return c, nil
}

// breedCategory resolves Breed.category through the category loader. The
// returned thunk is forced by graphql-go after every sibling has queued its key.
func (r *Resolver) breedCategory(p graphql.ResolveParams) (interface{}, error) {
	b, ok := p.Source.(*model.Breed)
	if !ok || b == nil {
		return nil, nil
	}
	ctx := p.Context
	l, ok := r.loaders(p)
	if !ok {
		return nil, fail(ctx, "Breed.category", errNoLoaders())
	}
	thunk := l.Category.Load(ctx, b.CategoryID)
	return func() (interface{}, error) {
		c, err := thunk()
		if err != nil {
			return nil, fail(ctx, "Breed.category", err)
		}
		if c == nil {
			return nil, nil
		}
		return c, nil
	}, nil
}

// categoryBreeds resolves Category.breeds through the breeds-by-category loader.
func (r *Resolver) categoryBreeds(p graphql.ResolveParams) (interface{}, error) {
	c, ok := p.Source.(*model.Category)
	if !ok || c == nil {
		return nil, nil
	}
	ctx := p.Context
	l, ok := r.loaders(p)
	if !ok {
		return nil, fail(ctx, "Category.breeds", errNoLoaders())
	}
	thunk := l.BreedsByCategory.Load(ctx, c.ID)
	return func() (interface{}, error) {
		breeds, err := thunk()
		if err != nil {
			return nil, fail(ctx, "Category.breeds", err)
		}
		l.PrimeBreeds(breeds)
		return breeds, nil
	}, nil
}
