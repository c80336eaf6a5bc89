package resolver

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"dogbreeds-graphql/internal/apperr"
	"dogbreeds-graphql/internal/filter"
	"dogbreeds-graphql/internal/loader"
	"dogbreeds-graphql/internal/store"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b64(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func TestBuildSchema_EnumsAndRoots(t *testing.T) {
	r := New(newFakeBreeds(), newFakeCategories())
	schema, err := r.BuildSchema()
	require.NoError(t, err)

	for _, name := range []string{"breeds", "breed", "categories", "category"} {
		assert.NotNil(t, schema.QueryType().Fields()[name], name)
	}
	for _, name := range []string{"createBreed", "updateBreed", "deleteBreed", "createCategory", "updateCategory", "deleteCategory"} {
		assert.NotNil(t, schema.MutationType().Fields()[name], name)
	}

	sortField := schema.Type("BreedSortField")
	require.NotNil(t, sortField)
	assert.Equal(t, "averageLifeExpectancy", sortField.(interface {
		ParseValue(interface{}) interface{}
	}).ParseValue("AVERAGE_LIFE_EXPECTANCY"))
}

func TestCategories_Defaults(t *testing.T) {
	cats := newFakeCategories(testCategory(houndID, "Hound"))
	r := New(newFakeBreeds(), cats)

	result := execute(t, r, nil, `{ categories { totalCount edges { cursor node { id name } } } }`, nil)
	requireNoErrors(t, result)

	require.Len(t, cats.findManyCalls, 1)
	params := cats.findManyCalls[0]
	require.NotNil(t, params.Take)
	assert.Equal(t, 10, *params.Take)
	assert.Equal(t, store.OrderBy{Field: "name"}, params.OrderBy)
	assert.Equal(t, filter.Where{}, params.Where)
	assert.Nil(t, params.CursorID)
	assert.Equal(t, 0, params.Skip)
	assert.Equal(t, []filter.Where{{}}, cats.countCalls)

	assert.Equal(t, 1, path(t, result.Data, "categories", "totalCount"))
	assert.Equal(t, b64(houndID), path(t, result.Data, "categories", "edges", 0, "cursor"))
}

func TestCategories_FilterAndSort(t *testing.T) {
	cats := newFakeCategories()
	r := New(newFakeBreeds(), cats)

	result := execute(t, r, nil, `{
		categories(filter: {nameContains: "her", hasBreeds: true}, sort: {field: CREATED_AT, direction: DESC}) { totalCount }
	}`, nil)
	requireNoErrors(t, result)

	require.Len(t, cats.findManyCalls, 1)
	params := cats.findManyCalls[0]
	assert.Equal(t, store.OrderBy{Field: "createdAt", Desc: true}, params.OrderBy)
	assert.Equal(t, []string{"breeds", "name"}, params.Where.Fields())
	assert.True(t, params.Where["breeds"].Some)
	assert.Equal(t, "her", *params.Where["name"].Contains)
}

func TestBreeds_FilterTranslation(t *testing.T) {
	breeds := newFakeBreeds()
	r := New(breeds, newFakeCategories())

	result := execute(t, r, nil, `query($ids: [ID!]) {
		breeds(filter: {categoryIds: $ids, minAverageHeight: 0, maxAffection: 3}, sort: {field: AVERAGE_HEIGHT}) { totalCount }
	}`, map[string]interface{}{"ids": []interface{}{houndID, herdingID}})
	requireNoErrors(t, result)

	require.Len(t, breeds.countCalls, 1)
	where := breeds.countCalls[0]
	assert.Equal(t, filter.Condition{In: []string{houndID, herdingID}}, where["categoryId"])
	assert.Equal(t, 0.0, where["averageHeight"].Gte)
	assert.Equal(t, 3, where["affection"].Lte)
	assert.Equal(t, store.OrderBy{Field: "averageHeight"}, breeds.findManyCalls[0].OrderBy)
}

func TestBreeds_InvalidCategoryFilter(t *testing.T) {
	breeds := newFakeBreeds()
	r := New(breeds, newFakeCategories())

	result := execute(t, r, nil, `{ breeds(filter: {categoryId: "nope"}) { totalCount } }`, nil)
	assert.Equal(t, string(apperr.CodeValidation), errorCode(t, result))
	assert.Empty(t, breeds.countCalls)
}

func TestBreeds_ForwardCursor(t *testing.T) {
	breeds := newFakeBreeds(
		testBreed("2", "Beagle", houndID),
		testBreed("3", "Collie", herdingID),
	)
	breeds.total = 5
	r := New(breeds, newFakeCategories())

	result := execute(t, r, nil, `query($after: String) {
		breeds(pagination: {first: 2, after: $after}) {
			edges { cursor node { name } }
			pageInfo { hasNextPage hasPreviousPage startCursor endCursor }
		}
	}`, map[string]interface{}{"after": b64("1")})
	requireNoErrors(t, result)

	params := breeds.findManyCalls[0]
	require.NotNil(t, params.CursorID)
	assert.Equal(t, "1", *params.CursorID)
	assert.Equal(t, 1, params.Skip)
	assert.Equal(t, 2, *params.Take)

	info := path(t, result.Data, "breeds", "pageInfo").(map[string]interface{})
	assert.Equal(t, true, info["hasNextPage"])
	assert.Equal(t, false, info["hasPreviousPage"])
	assert.Equal(t, b64("cursor:2"), info["startCursor"])
	assert.Equal(t, b64("cursor:3"), info["endCursor"])
}

func TestBreeds_BackwardCursorReversesRows(t *testing.T) {
	// The store returns backward pages nearest-first.
	breeds := newFakeBreeds(
		testBreed("4", "Dachshund", houndID),
		testBreed("3", "Collie", herdingID),
	)
	r := New(breeds, newFakeCategories())

	result := execute(t, r, nil, `query($before: String) {
		breeds(pagination: {last: 2, before: $before}) {
			edges { node { id } }
			pageInfo { hasPreviousPage hasNextPage }
		}
	}`, map[string]interface{}{"before": b64("5")})
	requireNoErrors(t, result)

	params := breeds.findManyCalls[0]
	assert.Equal(t, "5", *params.CursorID)
	assert.Equal(t, 1, params.Skip)
	assert.Equal(t, -2, *params.Take)

	assert.Equal(t, "3", path(t, result.Data, "breeds", "edges", 0, "node", "id"))
	assert.Equal(t, "4", path(t, result.Data, "breeds", "edges", 1, "node", "id"))
	assert.Equal(t, true, path(t, result.Data, "breeds", "pageInfo", "hasPreviousPage"))
	assert.Equal(t, false, path(t, result.Data, "breeds", "pageInfo", "hasNextPage"))
}

func TestBreeds_PaginationErrors(t *testing.T) {
	r := New(newFakeBreeds(), newFakeCategories(), WithPageSizes(10, 50))

	cases := map[string]string{
		"negative first": `{ breeds(pagination: {first: -1}) { totalCount } }`,
		"above max":      `{ breeds(pagination: {first: 51}) { totalCount } }`,
		"bad cursor":     `{ breeds(pagination: {after: "%%%"}) { totalCount } }`,
	}
	for name, query := range cases {
		t.Run(name, func(t *testing.T) {
			result := execute(t, r, nil, query, nil)
			assert.Equal(t, string(apperr.CodeValidation), errorCode(t, result))
		})
	}
}

func TestBreeds_EmptyPage(t *testing.T) {
	r := New(newFakeBreeds(), newFakeCategories())
	result := execute(t, r, nil, `{ breeds { totalCount edges { cursor } pageInfo { startCursor endCursor hasNextPage } } }`, nil)
	requireNoErrors(t, result)

	assert.Equal(t, 0, path(t, result.Data, "breeds", "totalCount"))
	assert.Equal(t, []interface{}{}, path(t, result.Data, "breeds", "edges"))
	assert.Nil(t, path(t, result.Data, "breeds", "pageInfo", "startCursor"))
	assert.Equal(t, false, path(t, result.Data, "breeds", "pageInfo", "hasNextPage"))
}

func TestBreeds_StoreErrorIsDatabaseError(t *testing.T) {
	breeds := newFakeBreeds()
	breeds.err = errors.New("connection reset")
	r := New(breeds, newFakeCategories())

	result := execute(t, r, nil, `{ breeds { totalCount } }`, nil)
	assert.Equal(t, string(apperr.CodeDatabase), errorCode(t, result))
}

func TestBreedCategory_IsBatched(t *testing.T) {
	breeds := newFakeBreeds(
		testBreed("1", "Beagle", houndID),
		testBreed("2", "Basset", houndID),
		testBreed("3", "Collie", herdingID),
	)
	cats := newFakeCategories(testCategory(houndID, "Hound"), testCategory(herdingID, "Herding"))
	r := New(breeds, cats)

	result := execute(t, r, nil, `{ breeds { edges { node { name category { name } } } } }`, nil)
	requireNoErrors(t, result)

	require.Len(t, cats.byIDsCalls, 1)
	assert.ElementsMatch(t, []string{houndID, herdingID}, cats.byIDsCalls[0])
	assert.Equal(t, "Hound", path(t, result.Data, "breeds", "edges", 1, "node", "category", "name"))
	assert.Equal(t, "Herding", path(t, result.Data, "breeds", "edges", 2, "node", "category", "name"))
}

func TestCategoryBreeds_BatchedAndEmpty(t *testing.T) {
	const emptyID = "55555555-5555-4555-8555-555555555555"
	breeds := newFakeBreeds(
		testBreed("1", "Beagle", houndID),
		testBreed("3", "Collie", herdingID),
	)
	cats := newFakeCategories(
		testCategory(houndID, "Hound"),
		testCategory(herdingID, "Herding"),
		testCategory(emptyID, "Toy"),
	)
	r := New(breeds, cats)

	result := execute(t, r, nil, `{ categories { edges { node { name breeds { name } } } } }`, nil)
	requireNoErrors(t, result)

	require.Len(t, breeds.byCategoryCalls, 1)
	assert.Equal(t, []string{houndID, herdingID, emptyID}, breeds.byCategoryCalls[0])
	assert.Equal(t, "Beagle", path(t, result.Data, "categories", "edges", 0, "node", "breeds", 0, "name"))
	assert.Equal(t, []interface{}{}, path(t, result.Data, "categories", "edges", 2, "node", "breeds"))
}

func TestBreedAndCategory_Singular(t *testing.T) {
	fun := "Loves food"
	beagle := testBreed("1", "Beagle", houndID)
	beagle.FunFact = &fun
	r := New(newFakeBreeds(beagle), newFakeCategories(testCategory(houndID, "Hound")))

	result := execute(t, r, nil, `{
		breed(id: "1") { name funFact colors commonNames createdAt category { id } }
		missing: breed(id: "9") { name }
		category(id: "`+houndID+`") { name description updatedAt }
	}`, nil)
	requireNoErrors(t, result)

	assert.Equal(t, "Loves food", path(t, result.Data, "breed", "funFact"))
	assert.Equal(t, []interface{}{"black", "tan"}, path(t, result.Data, "breed", "colors"))
	assert.Equal(t, []interface{}{}, path(t, result.Data, "breed", "commonNames"))
	assert.Equal(t, "2024-05-01T12:30:00.000Z", path(t, result.Data, "breed", "createdAt"))
	assert.Equal(t, houndID, path(t, result.Data, "breed", "category", "id"))
	assert.Nil(t, path(t, result.Data, "missing"))
	assert.Nil(t, path(t, result.Data, "category", "description"))
	assert.Equal(t, "2024-05-01T12:30:00.000Z", path(t, result.Data, "category", "updatedAt"))
}

const createBreedMutation = `mutation($input: CreateBreedInput!) {
	createBreed(input: $input) { id name commonNames colors category { name } }
}`

func validCreateInput() map[string]interface{} {
	return map[string]interface{}{
		"name":                  "Whippet",
		"description":           "A medium sighthound.",
		"history":               "Descended from greyhounds in England.",
		"health":                "Generally healthy and long lived.",
		"origin":                "England",
		"averageHeight":         47.5,
		"averageWeight":         12.0,
		"averageLifeExpectancy": 13.0,
		"exerciseRequired":      4,
		"easeOfTraining":        3,
		"affection":             5,
		"playfulness":           4,
		"goodWithChildren":      5,
		"goodWithDogs":          5,
		"groomingRequired":      1,
		"categoryId":            houndID,
	}
}

func TestCreateBreed(t *testing.T) {
	breeds := newFakeBreeds()
	r := New(breeds, newFakeCategories(testCategory(houndID, "Hound")))

	result := execute(t, r, nil, createBreedMutation, map[string]interface{}{"input": validCreateInput()})
	requireNoErrors(t, result)

	require.Len(t, breeds.created, 1)
	assert.Nil(t, breeds.created[0].CommonNames)
	assert.Nil(t, breeds.created[0].FunFact)
	assert.Equal(t, 47.5, breeds.created[0].AverageHeight)
	assert.Equal(t, []interface{}{}, path(t, result.Data, "createBreed", "colors"))
	assert.Equal(t, "Hound", path(t, result.Data, "createBreed", "category", "name"))
}

func TestCreateBreed_ValidationListsFields(t *testing.T) {
	breeds := newFakeBreeds()
	r := New(breeds, newFakeCategories())

	input := validCreateInput()
	input["name"] = "W"
	input["affection"] = 9

	result := execute(t, r, nil, createBreedMutation, map[string]interface{}{"input": input})
	assert.Equal(t, string(apperr.CodeValidation), errorCode(t, result))
	fields, ok := result.Errors[0].Extensions["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "affection")
	assert.Empty(t, breeds.created)
}

func TestUpdateBreed_OnlyProvidedKeys(t *testing.T) {
	breeds := newFakeBreeds(testBreed("1", "Beagle", houndID))
	r := New(breeds, newFakeCategories())

	result := execute(t, r, nil, `mutation {
		updateBreed(id: "1", input: {affection: 2, colors: []}) { affection name }
	}`, nil)
	requireNoErrors(t, result)

	require.Len(t, breeds.patches, 1)
	patch := breeds.patches[0]
	require.NotNil(t, patch.Affection)
	assert.Equal(t, 2, *patch.Affection)
	require.NotNil(t, patch.Colors)
	assert.Equal(t, []string{}, *patch.Colors)
	assert.Nil(t, patch.Name)
	assert.Nil(t, patch.CommonNames)
	assert.Equal(t, 2, path(t, result.Data, "updateBreed", "affection"))
}

func TestUpdateBreed_EmptyInput(t *testing.T) {
	breeds := newFakeBreeds(testBreed("1", "Beagle", houndID))
	r := New(breeds, newFakeCategories())

	result := execute(t, r, nil, `mutation { updateBreed(id: "1", input: {}) { id } }`, nil)
	assert.Equal(t, string(apperr.CodeValidation), errorCode(t, result))
	assert.Empty(t, breeds.patches)
}

func TestUpdateBreed_RefreshesLoaderCache(t *testing.T) {
	breeds := newFakeBreeds(testBreed("1", "Beagle", houndID))
	r := New(breeds, newFakeCategories())
	l := r.NewLoaders()
	ctx := loader.WithLoaders(context.Background(), l)

	stale, err := l.Breed.Load(ctx, "1")()
	require.NoError(t, err)
	assert.Equal(t, "Beagle", stale.Name)

	result := execute(t, r, ctx, `mutation { updateBreed(id: "1", input: {name: "English Beagle"}) { name } }`, nil)
	requireNoErrors(t, result)

	fresh, err := l.Breed.Load(ctx, "1")()
	require.NoError(t, err)
	assert.Equal(t, "English Beagle", fresh.Name)
	assert.Len(t, breeds.byIDsCalls, 1)
}

func TestDeleteBreed(t *testing.T) {
	breeds := newFakeBreeds(testBreed("1", "Beagle", houndID))
	r := New(breeds, newFakeCategories())

	result := execute(t, r, nil, `mutation { deleteBreed(id: "1") { id success } }`, nil)
	requireNoErrors(t, result)
	assert.Equal(t, map[string]interface{}{"id": "1", "success": true}, path(t, result.Data, "deleteBreed"))

	result = execute(t, r, nil, `mutation { deleteBreed(id: "1") { id success } }`, nil)
	assert.Equal(t, string(apperr.CodeNotFound), errorCode(t, result))
	assert.Equal(t, "Breed with ID '1' not found", result.Errors[0].Message)
}

func TestCategoryMutations(t *testing.T) {
	cats := newFakeCategories(testCategory(houndID, "Hound"))
	r := New(newFakeBreeds(), cats)

	result := execute(t, r, nil, `mutation {
		createCategory(input: {name: "Toy", description: "Small companions"}) { name description }
	}`, nil)
	requireNoErrors(t, result)
	assert.Equal(t, "Small companions", path(t, result.Data, "createCategory", "description"))

	result = execute(t, r, nil, `mutation { createCategory(input: {name: "T"}) { id } }`, nil)
	assert.Equal(t, string(apperr.CodeValidation), errorCode(t, result))

	result = execute(t, r, nil, `mutation { updateCategory(id: "`+houndID+`", input: {name: "Hounds"}) { name } }`, nil)
	requireNoErrors(t, result)
	assert.Equal(t, "Hounds", path(t, result.Data, "updateCategory", "name"))

	cats.deleteErr = apperr.ForeignKey("category still has breeds", nil)
	result = execute(t, r, nil, `mutation { deleteCategory(id: "`+houndID+`") { success } }`, nil)
	assert.Equal(t, string(apperr.CodeForeignKey), errorCode(t, result))

	cats.deleteErr = nil
	result = execute(t, r, nil, `mutation { deleteCategory(id: "`+houndID+`") { id success } }`, nil)
	requireNoErrors(t, result)
	assert.Equal(t, true, path(t, result.Data, "deleteCategory", "success"))
}

func TestLoaders_SharedThroughRootWithoutMiddleware(t *testing.T) {
	breeds := newFakeBreeds(testBreed("1", "Beagle", houndID), testBreed("2", "Basset", houndID))
	cats := newFakeCategories(testCategory(houndID, "Hound"))
	r := New(breeds, cats)

	result := execute(t, r, nil, `{
		a: breed(id: "1") { category { name } }
		b: breed(id: "2") { category { name } }
	}`, nil)
	requireNoErrors(t, result)
	assert.Len(t, cats.byIDsCalls, 1)
	assert.Equal(t, "Hound", path(t, result.Data, "b", "category", "name"))
}

func TestLoaders_MissingLoaderSetFailsRelationshipFields(t *testing.T) {
	breeds := newFakeBreeds(testBreed("1", "Beagle", houndID))
	cats := newFakeCategories(testCategory(houndID, "Hound"))
	r := New(breeds, cats)
	schema, err := r.BuildSchema()
	require.NoError(t, err)

	run := func(query string) *graphql.Result {
		return graphql.Do(graphql.Params{
			Schema:        schema,
			RequestString: query,
			Context:       context.Background(),
		})
	}

	// Fields that only prime the cache still resolve.
	plain := run(`{ breed(id: "1") { name } categories { totalCount } }`)
	requireNoErrors(t, plain)
	assert.Equal(t, "Beagle", path(t, plain.Data, "breed", "name"))

	nested := run(`{ breed(id: "1") { name category { name } } }`)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", errorCode(t, nested))
	assert.Nil(t, path(t, nested.Data, "breed"))
	assert.Empty(t, cats.byIDsCalls)

	byCategory := run(`{ category(id: "` + houndID + `") { name breeds { name } } }`)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", errorCode(t, byCategory))
	assert.Equal(t, "Hound", path(t, byCategory.Data, "category", "name"))
}
