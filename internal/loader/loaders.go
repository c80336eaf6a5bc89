package loader

import (
	"context"

	"dogbreeds-graphql/internal/model"
)

// Loader names, also used as the metric attribute value.
const (
	BreedLoaderName            = "breed"
	CategoryLoaderName         = "category"
	BreedsByCategoryLoaderName = "breedsByCategory"
)

// BreedSource is the store surface the breed loaders read from.
type BreedSource interface {
	FindByIDs(ctx context.Context, ids []string) ([]*model.Breed, error)
	FindByCategoryIDs(ctx context.Context, categoryIDs []string) ([]*model.Breed, error)
}

// CategorySource is the store surface the category loader reads from.
type CategorySource interface {
	FindByIDs(ctx context.Context, ids []string) ([]*model.Category, error)
}

// Loaders is the set of loaders for one request.
type Loaders struct {
	Breed            *Loader[string, *model.Breed]
	Category         *Loader[string, *model.Category]
	BreedsByCategory *Loader[string, []*model.Breed]
}

// NewLoaders builds a fresh loader set. It must not be shared across requests.
func NewLoaders(breeds BreedSource, categories CategorySource, opts ...Option) *Loaders {
	return &Loaders{
		Breed: New[string, *model.Breed](BreedLoaderName, func(ctx context.Context, ids []string) ([]*model.Breed, error) {
			rows, err := breeds.FindByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			return OrderByKeys(ids, rows, breedID), nil
		}, opts...),
		Category: New[string, *model.Category](CategoryLoaderName, func(ctx context.Context, ids []string) ([]*model.Category, error) {
			rows, err := categories.FindByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			return OrderByKeys(ids, rows, func(c *model.Category) string { return c.ID }), nil
		}, opts...),
		BreedsByCategory: New[string, []*model.Breed](BreedsByCategoryLoaderName, func(ctx context.Context, ids []string) ([][]*model.Breed, error) {
			rows, err := breeds.FindByCategoryIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			return GroupByKeys(ids, rows, func(b *model.Breed) string { return b.CategoryID }), nil
		}, opts...),
	}
}

func breedID(b *model.Breed) string { return b.ID }

// PrimeBreeds seeds the breed loader with rows already fetched.
func (l *Loaders) PrimeBreeds(rows []*model.Breed) {
	for _, b := range rows {
		l.Breed.Prime(b.ID, b)
	}
}

// PrimeCategories seeds the category loader with rows already fetched.
func (l *Loaders) PrimeCategories(rows []*model.Category) {
	for _, c := range rows {
		l.Category.Prime(c.ID, c)
	}
}

// ClearBreed evicts a breed after it changed. Every cached category list is
// evicted too, since the breed may have moved between categories.
func (l *Loaders) ClearBreed(id string) {
	l.Breed.Clear(id)
	l.BreedsByCategory.ClearAll()
}

// ClearCategory evicts a category after it changed.
func (l *Loaders) ClearCategory(id string) {
	l.Category.Clear(id)
	l.BreedsByCategory.Clear(id)
}

// Stats sums the counters of every loader in the set.
func (l *Loaders) Stats() Stats {
	var total Stats
	for _, s := range []Stats{l.Breed.Stats(), l.Category.Stats(), l.BreedsByCategory.Stats()} {
		total.Hits += s.Hits
		total.Misses += s.Misses
		total.Batches += s.Batches
		total.Keys += s.Keys
	}
	return total
}

type loadersKey struct{}

// WithLoaders stores a loader set in the context.
func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey{}, l)
}

// FromContext returns the loader set stored in ctx.
func FromContext(ctx context.Context) (*Loaders, bool) {
	if ctx == nil {
		return nil, false
	}
	l, ok := ctx.Value(loadersKey{}).(*Loaders)
	return l, ok && l != nil
}
