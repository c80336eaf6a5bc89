// Package store persists breeds and categories in PostgreSQL or MySQL/TiDB.
//
// Queries are built with squirrel against a dbexec.QueryExecutor. Filters arrive
// as filter.Where values keyed by domain field names and are translated to SQL
// through per-table column maps, so no caller-supplied name reaches the SQL text.
package store

import (
	"context"
	"fmt"
	"time"

	"dogbreeds-graphql/internal/dbexec"
	"dogbreeds-graphql/internal/filter"
	"dogbreeds-graphql/internal/model"
)

// Table names.
const (
	BreedsTable     = "breeds"
	CategoriesTable = "categories"
)

// OrderBy sorts on one domain field. Ties are broken by id in the same direction.
type OrderBy struct {
	Field string
	Desc  bool
}

// FindManyParams selects one page of rows.
//
// When CursorID is set the page starts at the cursor row (inclusive) and Skip
// rows are dropped first, so Skip = 1 starts right after the cursor. A negative
// Take reads the |Take| rows before the cursor, nearest-first. A nil Take is
// unbounded.
type FindManyParams struct {
	Where    filter.Where
	OrderBy  OrderBy
	CursorID *string
	Skip     int
	Take     *int
}

// BreedStore is the persistence contract for breeds.
type BreedStore interface {
	FindMany(ctx context.Context, params FindManyParams) ([]*model.Breed, error)
	Count(ctx context.Context, where filter.Where) (int, error)
	FindUnique(ctx context.Context, id string) (*model.Breed, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Breed, error)
	FindByCategoryIDs(ctx context.Context, categoryIDs []string) ([]*model.Breed, error)
	Create(ctx context.Context, input model.BreedInput) (*model.Breed, error)
	Update(ctx context.Context, id string, patch model.BreedPatch) (*model.Breed, error)
	Delete(ctx context.Context, id string) error
}

// CategoryStore is the persistence contract for categories.
type CategoryStore interface {
	FindMany(ctx context.Context, params FindManyParams) ([]*model.Category, error)
	Count(ctx context.Context, where filter.Where) (int, error)
	FindUnique(ctx context.Context, id string) (*model.Category, error)
	FindByName(ctx context.Context, name string) (*model.Category, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Category, error)
	Create(ctx context.Context, input model.CategoryInput) (*model.Category, error)
	Update(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error)
	Delete(ctx context.Context, id string) error
}

// Clock supplies row timestamps.
type Clock func() time.Time

// Store bundles the per-entity stores over one executor.
type Store struct {
	Breeds     *Breeds
	Categories *Categories
}

// Option configures a Store.
type Option func(*base)

// WithClock overrides the timestamp source.
func WithClock(clock Clock) Option {
	return func(b *base) {
		if clock != nil {
			b.now = clock
		}
	}
}

// WithIDGenerator overrides the id source.
func WithIDGenerator(gen func() string) Option {
	return func(b *base) {
		if gen != nil {
			b.newID = gen
		}
	}
}

// New creates the stores for dialect over exec.
func New(exec dbexec.QueryExecutor, dialect Dialect, opts ...Option) *Store {
	b := newBase(exec, dialect, opts...)
	return &Store{
		Breeds:     &Breeds{base: b},
		Categories: &Categories{base: b},
	}
}

// WithExecutor returns a copy of the store that runs on exec, typically a
// transaction.
func (s *Store) WithExecutor(exec dbexec.QueryExecutor) *Store {
	b := *s.Breeds.base
	b.exec = exec
	return &Store{
		Breeds:     &Breeds{base: &b},
		Categories: &Categories{base: &b},
	}
}

// table describes how domain fields map onto one table.
type table struct {
	name    string
	columns map[string]string
	// relations maps a relation field to an EXISTS subquery builder.
	relations map[string]func(d Dialect) string
}

func (t table) column(field string) (string, error) {
	col, ok := t.columns[field]
	if !ok {
		return "", fmt.Errorf("unknown field %q on %s", field, t.name)
	}
	return col, nil
}

var breedTable = table{
	name: BreedsTable,
	columns: map[string]string{
		"id":                    "id",
		"name":                  "name",
		"commonNames":           "common_names",
		"description":           "description",
		"history":               "history",
		"funFact":               "fun_fact",
		"health":                "health",
		"origin":                "origin",
		"colors":                "colors",
		"averageHeight":         "average_height",
		"averageWeight":         "average_weight",
		"averageLifeExpectancy": "average_life_expectancy",
		"exerciseRequired":      "exercise_required",
		"easeOfTraining":        "ease_of_training",
		"affection":             "affection",
		"playfulness":           "playfulness",
		"goodWithChildren":      "good_with_children",
		"goodWithDogs":          "good_with_dogs",
		"groomingRequired":      "grooming_required",
		"categoryId":            "category_id",
		"createdAt":             "created_at",
		"updatedAt":             "updated_at",
	},
}

var categoryTable = table{
	name: CategoriesTable,
	columns: map[string]string{
		"id":          "id",
		"name":        "name",
		"description": "description",
		"createdAt":   "created_at",
		"updatedAt":   "updated_at",
	},
	relations: map[string]func(d Dialect) string{
		"breeds": func(d Dialect) string {
			return fmt.Sprintf("SELECT 1 FROM %s b WHERE b.%s = %s.%s",
				d.Quote(BreedsTable), d.Quote("category_id"), d.Quote(CategoriesTable), d.Quote("id"))
		},
	},
}

// breedColumns is the select list, in scan order.
var breedColumns = []string{
	"id", "name", "common_names", "description", "history", "fun_fact", "health", "origin",
	"colors", "average_height", "average_weight", "average_life_expectancy",
	"exercise_required", "ease_of_training", "affection", "playfulness",
	"good_with_children", "good_with_dogs", "grooming_required", "category_id",
	"created_at", "updated_at",
}

var categoryColumns = []string{"id", "name", "description", "created_at", "updated_at"}
