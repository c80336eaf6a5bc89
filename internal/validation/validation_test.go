package validation

import (
	"testing"

	"dogbreeds-graphql/internal/apperr"
	"dogbreeds-graphql/internal/filter"
	"dogbreeds-graphql/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func validBreed() model.BreedInput {
	return model.BreedInput{
		Name:                  "Beagle",
		CommonNames:           []string{"English Beagle"},
		Description:           "A small scent hound.",
		History:               "Developed in England for hunting hare.",
		Health:                "Generally healthy, prone to obesity.",
		Origin:                "England",
		Colors:                []string{"tricolor"},
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
		CategoryID:            "7f0c5a7e-8d7c-4f43-9d5c-0f6a6b1d2e3f",
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	appErr, ok := apperr.As(err)
	require.True(t, ok, "expected apperr, got %T", err)
	assert.Equal(t, apperr.CodeValidation, appErr.Code)
	return appErr.Fields
}

func TestGraphQLName(t *testing.T) {
	assert.Equal(t, "categoryId", graphQLName("CategoryID"))
	assert.Equal(t, "id", graphQLName("ID"))
	assert.Equal(t, "averageLifeExpectancy", graphQLName("AverageLifeExpectancy"))
	assert.Equal(t, "name", graphQLName("Name"))
}

func TestBreedInput_Valid(t *testing.T) {
	assert.NoError(t, New().BreedInput(validBreed()))
}

func TestBreedInput_ReportsEveryField(t *testing.T) {
	in := validBreed()
	in.Name = "B"
	in.Affection = 6
	in.AverageHeight = 0
	in.CategoryID = "not-a-uuid"

	err := New().BreedInput(in)
	require.Error(t, err)
	fields := fieldsOf(t, err)
	assert.Equal(t, map[string]string{
		"name":          "must be at least 2 characters",
		"affection":     "must be at most 5",
		"averageHeight": "must be greater than 0",
		"categoryId":    "must be a valid UUID",
	}, fields)
	assert.Contains(t, err.Error(), "affection must be at most 5; averageHeight")
}

func TestBreedInput_EmptyListEntry(t *testing.T) {
	in := validBreed()
	in.Colors = []string{"black", ""}
	fields := fieldsOf(t, New().BreedInput(in))
	assert.Equal(t, "is required", fields["colors[1]"])
}

func TestBreedPatch(t *testing.T) {
	v := New()

	err := v.BreedPatch(model.BreedPatch{})
	require.Error(t, err)
	assert.Equal(t, "At least one field must be provided for update", err.Error())

	assert.NoError(t, v.BreedPatch(model.BreedPatch{FunFact: ptr("Loves food")}))
	assert.NoError(t, v.BreedPatch(model.BreedPatch{Affection: ptr(1)}))

	fields := fieldsOf(t, v.BreedPatch(model.BreedPatch{
		Playfulness: ptr(0),
		CategoryID:  ptr("nope"),
	}))
	assert.Equal(t, "must be at least 1", fields["playfulness"])
	assert.Equal(t, "must be a valid UUID", fields["categoryId"])
}

func TestCategoryInput(t *testing.T) {
	v := New()
	assert.NoError(t, v.CategoryInput(model.CategoryInput{Name: "Hound"}))

	fields := fieldsOf(t, v.CategoryInput(model.CategoryInput{}))
	assert.Equal(t, map[string]string{"name": "is required"}, fields)
}

func TestCategoryPatch(t *testing.T) {
	v := New()
	assert.Error(t, v.CategoryPatch(model.CategoryPatch{}))
	assert.NoError(t, v.CategoryPatch(model.CategoryPatch{Description: ptr("")}))

	fields := fieldsOf(t, v.CategoryPatch(model.CategoryPatch{Name: ptr("x")}))
	assert.Equal(t, "must be at least 2 characters", fields["name"])
}

func TestBreedFilter(t *testing.T) {
	v := New()
	assert.NoError(t, v.BreedFilter(nil))
	assert.NoError(t, v.BreedFilter(&filter.BreedFilter{
		CategoryID:  ptr("7f0c5a7e-8d7c-4f43-9d5c-0f6a6b1d2e3f"),
		CategoryIDs: []string{"7f0c5a7e-8d7c-4f43-9d5c-0f6a6b1d2e3f"},
	}))

	fields := fieldsOf(t, v.BreedFilter(&filter.BreedFilter{
		CategoryID:  ptr("x"),
		CategoryIDs: []string{"7f0c5a7e-8d7c-4f43-9d5c-0f6a6b1d2e3f", "y"},
	}))
	assert.Equal(t, map[string]string{
		"categoryId":     "must be a valid UUID",
		"categoryIds[1]": "must be a valid UUID",
	}, fields)
}
