package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestBuildBreedWhere_Nil(t *testing.T) {
	assert.Equal(t, Where{}, BuildBreedWhere(nil))
	assert.Equal(t, Where{}, BuildBreedWhere(&BreedFilter{}))
}

func TestBuildBreedWhere_RangePair(t *testing.T) {
	w := BuildBreedWhere(&BreedFilter{
		MinAverageHeight: ptr(20.0),
		MaxAverageHeight: ptr(30.0),
	})
	assert.Equal(t, Where{"averageHeight": {Gte: 20.0, Lte: 30.0}}, w)
}

func TestBuildBreedWhere_SingleBound(t *testing.T) {
	w := BuildBreedWhere(&BreedFilter{MaxAffection: ptr(3)})
	assert.Equal(t, Where{"affection": {Lte: 3}}, w)

	w = BuildBreedWhere(&BreedFilter{MinGroomingRequired: ptr(2)})
	assert.Equal(t, Where{"groomingRequired": {Gte: 2}}, w)
}

func TestBuildBreedWhere_ZeroBoundIsHonoured(t *testing.T) {
	w := BuildBreedWhere(&BreedFilter{MinAverageWeight: ptr(0.0)})
	assert.Equal(t, Where{"averageWeight": {Gte: 0.0}}, w)
}

func TestBuildBreedWhere_CategoryIDsReplaceCategoryID(t *testing.T) {
	w := BuildBreedWhere(&BreedFilter{CategoryIDs: []string{"a", "b"}})
	assert.Equal(t, Where{"categoryId": {In: []string{"a", "b"}}}, w)

	w = BuildBreedWhere(&BreedFilter{CategoryID: ptr("x"), CategoryIDs: []string{"a"}})
	assert.Equal(t, Where{"categoryId": {In: []string{"a"}}}, w)

	w = BuildBreedWhere(&BreedFilter{CategoryID: ptr("x"), CategoryIDs: []string{}})
	assert.Equal(t, Where{"categoryId": {Equals: "x"}}, w)
}

func TestBuildBreedWhere_TextFilters(t *testing.T) {
	w := BuildBreedWhere(&BreedFilter{
		Name:                ptr("Beagle"),
		NameContains:        ptr("bea"),
		DescriptionContains: ptr("friendly"),
		HistoryContains:     ptr("england"),
		OriginContains:      ptr("uk"),
	})

	assert.Equal(t, []string{"description", "history", "name", "origin"}, w.Fields())
	assert.Equal(t, "bea", *w["name"].Contains)
	assert.Nil(t, w["name"].Equals)
	assert.Equal(t, "friendly", *w["description"].Contains)
}

func TestBuildBreedWhere_Colors(t *testing.T) {
	w := BuildBreedWhere(&BreedFilter{Colors: []string{"black", "tan"}})
	assert.Equal(t, Where{"colors": {HasSome: []string{"black", "tan"}}}, w)

	assert.Empty(t, BuildBreedWhere(&BreedFilter{Colors: []string{}}))
}

func TestBuildBreedWhere_KeysMatchSuppliedFields(t *testing.T) {
	w := BuildBreedWhere(&BreedFilter{
		Name:                     ptr("Pug"),
		CategoryID:               ptr("c1"),
		MinAverageLifeExpectancy: ptr(10.0),
		MaxExerciseRequired:      ptr(4),
		MinEaseOfTraining:        ptr(1),
		MinPlayfulness:           ptr(2),
		MaxGoodWithChildren:      ptr(5),
		MinGoodWithDogs:          ptr(3),
	})

	assert.Equal(t, []string{
		"averageLifeExpectancy",
		"categoryId",
		"easeOfTraining",
		"exerciseRequired",
		"goodWithChildren",
		"goodWithDogs",
		"name",
		"playfulness",
	}, w.Fields())
	for _, field := range w.Fields() {
		assert.False(t, w[field].IsZero(), field)
	}
}

func TestBuildCategoryWhere(t *testing.T) {
	assert.Equal(t, Where{}, BuildCategoryWhere(nil))

	w := BuildCategoryWhere(&CategoryFilter{HasBreeds: ptr(true)})
	assert.Equal(t, Where{"breeds": {Some: true}}, w)

	w = BuildCategoryWhere(&CategoryFilter{HasBreeds: ptr(false)})
	assert.Equal(t, Where{"breeds": {None: true}}, w)

	w = BuildCategoryWhere(&CategoryFilter{
		Description:         ptr("exact"),
		DescriptionContains: ptr("herd"),
		Name:                ptr("Herding"),
	})
	assert.Equal(t, "herd", *w["description"].Contains)
	assert.Equal(t, "Herding", w["name"].Equals)
}

func TestWhereHelpers(t *testing.T) {
	assert.Equal(t, Where{"id": {In: []string{"1", "2"}}}, IDIn([]string{"1", "2"}))
	assert.Equal(t, Where{"categoryId": {In: []string{"c"}}}, FieldIn("categoryId", []string{"c"}))
	assert.True(t, Condition{}.IsZero())
}
