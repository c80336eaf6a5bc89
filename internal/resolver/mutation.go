package resolver

import (
	"context"

	"dogbreeds-graphql/internal/model"

	"github.com/graphql-go/graphql"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// mutate wraps one mutation in a span and logs its failure.
func mutate(p graphql.ResolveParams, field string, fn func(ctx context.Context, span trace.Span) (interface{}, error)) (interface{}, error) {
	ctx, span := startResolverSpan(p.Context, "graphql.mutation."+field,
		attribute.String("graphql.mutation.field", field),
	)
	defer span.End()

	result, err := fn(ctx, span)
	if err != nil {
		err = fail(ctx, field, err)
	}
	finishResolverSpan(span, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Resolver) createBreed(p graphql.ResolveParams) (interface{}, error) {
	return mutate(p, "createBreed", func(ctx context.Context, span trace.Span) (interface{}, error) {
		in := breedInput(args(p.Args).object("input"))
		if err := r.validator.BreedInput(in); err != nil {
			return nil, err
		}
		b, err := r.breeds.Create(ctx, in)
		if err != nil {
			return nil, err
		}
		span.SetAttributes(attribute.String("graphql.mutation.id", b.ID))

		if l, ok := r.loaders(p); ok {
			l.ClearBreed(b.ID)
			l.Breed.Prime(b.ID, b)
		}
		return b, nil
	})
}

func (r *Resolver) updateBreed(p graphql.ResolveParams) (interface{}, error) {
	return mutate(p, "updateBreed", func(ctx context.Context, span trace.Span) (interface{}, error) {
		a := args(p.Args)
		id := a.str("id")
		span.SetAttributes(attribute.String("graphql.mutation.id", id))

		patch := breedPatch(a.object("input"))
		if err := r.validator.BreedPatch(patch); err != nil {
			return nil, err
		}
		b, err := r.breeds.Update(ctx, id, patch)
		if err != nil {
			return nil, err
		}

		if l, ok := r.loaders(p); ok {
			l.ClearBreed(id)
			l.Breed.Prime(b.ID, b)
		}
		return b, nil
	})
}

func (r *Resolver) deleteBreed(p graphql.ResolveParams) (interface{}, error) {
	return mutate(p, "deleteBreed", func(ctx context.Context, span trace.Span) (interface{}, error) {
		id := args(p.Args).str("id")
		span.SetAttributes(attribute.String("graphql.mutation.id", id))

		if err := r.breeds.Delete(ctx, id); err != nil {
			return nil, err
		}
		if l, ok := r.loaders(p); ok {
			l.ClearBreed(id)
		}
		return &model.DeleteResult{ID: id, Success: true}, nil
	})
}

func (r *Resolver) createCategory(p graphql.ResolveParams) (interface{}, error) {
	return mutate(p, "createCategory", func(ctx context.Context, span trace.Span) (interface{}, error) {
		in := categoryInput(args(p.Args).object("input"))
		if err := r.validator.CategoryInput(in); err != nil {
			return nil, err
		}
		c, err := r.categories.Create(ctx, in)
		if err != nil {
			return nil, err
		}
		span.SetAttributes(attribute.String("graphql.mutation.id", c.ID))

		if l, ok := r.loaders(p); ok {
			l.ClearCategory(c.ID)
			l.Category.Prime(c.ID, c)
		}
		return c, nil
	})
}

func (r *Resolver) updateCategory(p graphql.ResolveParams) (interface{}, error) {
	return mutate(p, "updateCategory", func(ctx context.Context, span trace.Span) (interface{}, error) {
		a := args(p.Args)
		id := a.str("id")
		span.SetAttributes(attribute.String("graphql.mutation.id", id))

		patch := categoryPatch(a.object("input"))
		if err := r.validator.CategoryPatch(patch); err != nil {
			return nil, err
		}
		c, err := r.categories.Update(ctx, id, patch)
		if err != nil {
			return nil, err
		}

		if l, ok := r.loaders(p); ok {
			l.ClearCategory(id)
			l.Category.Prime(c.ID, c)
		}
		return c, nil
	})
}

func (r *Resolver) deleteCategory(p graphql.ResolveParams) (interface{}, error) {
	return mutate(p, "deleteCategory", func(ctx context.Context, span trace.Span) (interface{}, error) {
		id := args(p.Args).str("id")
		span.SetAttributes(attribute.String("graphql.mutation.id", id))

		if err := r.categories.Delete(ctx, id); err != nil {
			return nil, err
		}
		if l, ok := r.loaders(p); ok {
			l.ClearCategory(id)
		}
		return &model.DeleteResult{ID: id, Success: true}, nil
	})
}
