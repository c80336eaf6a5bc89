package resolver

import (
	"context"
	"sync"
	"testing"
	"time"

	"dogbreeds-graphql/internal/apperr"
	"dogbreeds-graphql/internal/filter"
	"dogbreeds-graphql/internal/model"
	"dogbreeds-graphql/internal/store"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

const (
	houndID   = "11111111-1111-4111-8111-111111111111"
	herdingID = "22222222-2222-4222-8222-222222222222"
)

type fakeBreeds struct {
	mu sync.Mutex

	page  []*model.Breed
	total int
	all   map[string]*model.Breed

	findManyCalls   []store.FindManyParams
	countCalls      []filter.Where
	byIDsCalls      [][]string
	byCategoryCalls [][]string
	created         []model.BreedInput
	patches         []model.BreedPatch
	deleted         []string
	err             error
}

func newFakeBreeds(rows ...*model.Breed) *fakeBreeds {
	f := &fakeBreeds{page: rows, total: len(rows), all: map[string]*model.Breed{}}
	for _, b := range rows {
		f.all[b.ID] = b
	}
	return f
}

func (f *fakeBreeds) FindMany(_ context.Context, params store.FindManyParams) ([]*model.Breed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findManyCalls = append(f.findManyCalls, params)
	if f.err != nil {
		return nil, f.err
	}
	return append([]*model.Breed(nil), f.page...), nil
}

func (f *fakeBreeds) Count(_ context.Context, where filter.Where) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls = append(f.countCalls, where)
	if f.err != nil {
		return 0, f.err
	}
	return f.total, nil
}

func (f *fakeBreeds) FindUnique(_ context.Context, id string) (*model.Breed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.all[id], f.err
}

func (f *fakeBreeds) FindByIDs(_ context.Context, ids []string) ([]*model.Breed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byIDsCalls = append(f.byIDsCalls, ids)
	var out []*model.Breed
	for _, id := range ids {
		if b, ok := f.all[id]; ok {
			out = append(out, b)
		}
	}
	return out, f.err
}

func (f *fakeBreeds) FindByCategoryIDs(_ context.Context, categoryIDs []string) ([]*model.Breed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byCategoryCalls = append(f.byCategoryCalls, categoryIDs)
	want := map[string]bool{}
	for _, id := range categoryIDs {
		want[id] = true
	}
	var out []*model.Breed
	for _, b := range f.page {
		if want[b.CategoryID] {
			out = append(out, b)
		}
	}
	return out, f.err
}

func (f *fakeBreeds) Create(_ context.Context, in model.BreedInput) (*model.Breed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, in)
	b := &model.Breed{
		ID:          "33333333-3333-4333-8333-333333333333",
		Name:        in.Name,
		CommonNames: nonNilStrings(in.CommonNames),
		Description: in.Description,
		Colors:      nonNilStrings(in.Colors),
		CategoryID:  in.CategoryID,
		CreatedAt:   testTime,
		UpdatedAt:   testTime,
	}
	f.all[b.ID] = b
	return b, nil
}

func (f *fakeBreeds) Update(_ context.Context, id string, patch model.BreedPatch) (*model.Breed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, patch)
	b, ok := f.all[id]
	if !ok {
		return nil, apperr.NotFound("Breed", id)
	}
	updated := *b
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Affection != nil {
		updated.Affection = *patch.Affection
	}
	f.all[id] = &updated
	return &updated, nil
}

func (f *fakeBreeds) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.all[id]; !ok {
		return apperr.NotFound("Breed", id)
	}
	delete(f.all, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeCategories struct {
	mu sync.Mutex

	page  []*model.Category
	total int
	all   map[string]*model.Category

	findManyCalls []store.FindManyParams
	countCalls    []filter.Where
	byIDsCalls    [][]string
	deleteErr     error
}

func newFakeCategories(rows ...*model.Category) *fakeCategories {
	f := &fakeCategories{page: rows, total: len(rows), all: map[string]*model.Category{}}
	for _, c := range rows {
		f.all[c.ID] = c
	}
	return f
}

func (f *fakeCategories) FindMany(_ context.Context, params store.FindManyParams) ([]*model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findManyCalls = append(f.findManyCalls, params)
	return append([]*model.Category(nil), f.page...), nil
}

func (f *fakeCategories) Count(_ context.Context, where filter.Where) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls = append(f.countCalls, where)
	return f.total, nil
}

func (f *fakeCategories) FindUnique(_ context.Context, id string) (*model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.all[id], nil
}

func (f *fakeCategories) FindByName(_ context.Context, name string) (*model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.all {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCategories) FindByIDs(_ context.Context, ids []string) ([]*model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byIDsCalls = append(f.byIDsCalls, ids)
	var out []*model.Category
	for _, id := range ids {
		if c, ok := f.all[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategories) Create(_ context.Context, in model.CategoryInput) (*model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &model.Category{
		ID:          "44444444-4444-4444-8444-444444444444",
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   testTime,
		UpdatedAt:   testTime,
	}
	f.all[c.ID] = c
	return c, nil
}

func (f *fakeCategories) Update(_ context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.all[id]
	if !ok {
		return nil, apperr.NotFound("Category", id)
	}
	updated := *c
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Description != nil {
		updated.Description = patch.Description
	}
	f.all[id] = &updated
	return &updated, nil
}

func (f *fakeCategories) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.all[id]; !ok {
		return apperr.NotFound("Category", id)
	}
	delete(f.all, id)
	return nil
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func testBreed(id, name, categoryID string) *model.Breed {
	return &model.Breed{
		ID:                    id,
		Name:                  name,
		CommonNames:           []string{},
		Description:           name + " description",
		History:               name + " history",
		Health:                name + " health",
		Origin:                "England",
		Colors:                []string{"black", "tan"},
		AverageHeight:         38,
		AverageWeight:         10,
		AverageLifeExpectancy: 13,
		ExerciseRequired:      4,
		EaseOfTraining:        3,
		Affection:             5,
		Playfulness:           4,
		GoodWithChildren:      5,
		GoodWithDogs:          5,
		GroomingRequired:      2,
		CategoryID:            categoryID,
		CreatedAt:             testTime,
		UpdatedAt:             testTime,
	}
}

func testCategory(id, name string) *model.Category {
	return &model.Category{ID: id, Name: name, CreatedAt: testTime, UpdatedAt: testTime}
}

func execute(t *testing.T, r *Resolver, ctx context.Context, query string, vars map[string]interface{}) *graphql.Result {
	t.Helper()
	schema, err := r.BuildSchema()
	require.NoError(t, err)
	if ctx == nil {
		ctx = context.Background()
	}
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  query,
		VariableValues: vars,
		Context:        ctx,
		RootObject:     map[string]interface{}{},
	})
}

func requireNoErrors(t *testing.T, result *graphql.Result) {
	t.Helper()
	require.Empty(t, result.Errors, "unexpected errors: %v", result.Errors)
}

func errorCode(t *testing.T, result *graphql.Result) string {
	t.Helper()
	require.NotEmpty(t, result.Errors)
	code, _ := result.Errors[0].Extensions["code"].(string)
	return code
}

// path walks a result map along keys.
func path(t *testing.T, data interface{}, keys ...interface{}) interface{} {
	t.Helper()
	cur := data
	for _, k := range keys {
		switch key := k.(type) {
		case string:
			m, ok := cur.(map[string]interface{})
			require.True(t, ok, "expected object at %v, got %T", key, cur)
			cur = m[key]
		case int:
			list, ok := cur.([]interface{})
			require.True(t, ok, "expected list at %d, got %T", key, cur)
			require.Greater(t, len(list), key)
			cur = list[key]
		}
	}
	return cur
}
