package resolver

import (
	"time"

	"dogbreeds-graphql/internal/model"

	"github.com/graphql-go/graphql"
)

// timestampLayout renders timestamps as UTC RFC 3339 with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Sort direction enum values.
const (
	sortAsc  = "asc"
	sortDesc = "desc"
)

// types holds the schema's named types. Breed and Category refer to each
// other, so their fields are declared through thunks.
type types struct {
	r *Resolver

	sortDirection     *graphql.Enum
	breedSortField    *graphql.Enum
	categorySortField *graphql.Enum
	pageInfo          *graphql.Object
	paginationInput   *graphql.InputObject

	breed              *graphql.Object
	breedEdge          *graphql.Object
	breedConnection    *graphql.Object
	breedFilter        *graphql.InputObject
	breedSort          *graphql.InputObject
	createBreedInput   *graphql.InputObject
	updateBreedInput   *graphql.InputObject
	deleteBreedPayload *graphql.Object

	category              *graphql.Object
	categoryEdge          *graphql.Object
	categoryConnection    *graphql.Object
	categoryFilter        *graphql.InputObject
	categorySort          *graphql.InputObject
	createCategoryInput   *graphql.InputObject
	updateCategoryInput   *graphql.InputObject
	deleteCategoryPayload *graphql.Object
}

func newTypes(r *Resolver) *types {
	t := &types{r: r}

	t.sortDirection = graphql.NewEnum(graphql.EnumConfig{
		Name: "SortDirection",
		Values: graphql.EnumValueConfigMap{
			"ASC":  &graphql.EnumValueConfig{Value: sortAsc},
			"DESC": &graphql.EnumValueConfig{Value: sortDesc},
		},
	})
	t.breedSortField = graphql.NewEnum(graphql.EnumConfig{
		Name: "BreedSortField",
		Values: graphql.EnumValueConfigMap{
			"NAME":                    &graphql.EnumValueConfig{Value: "name"},
			"AVERAGE_HEIGHT":          &graphql.EnumValueConfig{Value: "averageHeight"},
			"AVERAGE_WEIGHT":          &graphql.EnumValueConfig{Value: "averageWeight"},
			"AVERAGE_LIFE_EXPECTANCY": &graphql.EnumValueConfig{Value: "averageLifeExpectancy"},
			"EXERCISE_REQUIRED":       &graphql.EnumValueConfig{Value: "exerciseRequired"},
			"EASE_OF_TRAINING":        &graphql.EnumValueConfig{Value: "easeOfTraining"},
			"AFFECTION":               &graphql.EnumValueConfig{Value: "affection"},
			"PLAYFULNESS":             &graphql.EnumValueConfig{Value: "playfulness"},
			"GOOD_WITH_CHILDREN":      &graphql.EnumValueConfig{Value: "goodWithChildren"},
			"GOOD_WITH_DOGS":          &graphql.EnumValueConfig{Value: "goodWithDogs"},
			"GROOMING_REQUIRED":       &graphql.EnumValueConfig{Value: "groomingRequired"},
			"CATEGORY_ID":             &graphql.EnumValueConfig{Value: "categoryId"},
		},
	})
	t.categorySortField = graphql.NewEnum(graphql.EnumConfig{
		Name: "CategorySortField",
		Values: graphql.EnumValueConfigMap{
			"NAME":       &graphql.EnumValueConfig{Value: "name"},
			"CREATED_AT": &graphql.EnumValueConfig{Value: "createdAt"},
			"UPDATED_AT": &graphql.EnumValueConfig{Value: "updatedAt"},
		},
	})

	t.pageInfo = graphql.NewObject(graphql.ObjectConfig{
		Name: "PageInfo",
		Fields: graphql.Fields{
			"hasNextPage":     &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"hasPreviousPage": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"startCursor":     &graphql.Field{Type: graphql.String},
			"endCursor":       &graphql.Field{Type: graphql.String},
		},
	})
	t.paginationInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "PaginationInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"first":  &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"after":  &graphql.InputObjectFieldConfig{Type: graphql.String},
			"last":   &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"before": &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	t.buildBreedTypes()
	t.buildCategoryTypes()
	return t
}

func (t *types) buildBreedTypes() {
	t.breed = graphql.NewObject(graphql.ObjectConfig{
		Name: "Breed",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":                    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
				"name":                  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"commonNames":           &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
				"description":           &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"history":               &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"funFact":               &graphql.Field{Type: graphql.String},
				"health":                &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"origin":                &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"colors":                &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
				"averageHeight":         &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
				"averageWeight":         &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
				"averageLifeExpectancy": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
				"exerciseRequired":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"easeOfTraining":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"affection":             &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"playfulness":           &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"goodWithChildren":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"goodWithDogs":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"groomingRequired":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"category": &graphql.Field{
					Type:    graphql.NewNonNull(t.category),
					Resolve: t.r.breedCategory,
				},
				"createdAt": &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: resolveCreatedAt},
				"updatedAt": &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: resolveUpdatedAt},
			}
		}),
	})
	t.breedEdge = graphql.NewObject(graphql.ObjectConfig{
		Name: "BreedEdge",
		Fields: graphql.Fields{
			"node":   &graphql.Field{Type: graphql.NewNonNull(t.breed)},
			"cursor": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})
	t.breedConnection = connectionObject("BreedConnection", t.breedEdge, t.pageInfo)

	t.breedFilter = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "BreedFilter",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":                     &graphql.InputObjectFieldConfig{Type: graphql.String},
			"nameContains":             &graphql.InputObjectFieldConfig{Type: graphql.String},
			"descriptionContains":      &graphql.InputObjectFieldConfig{Type: graphql.String},
			"historyContains":          &graphql.InputObjectFieldConfig{Type: graphql.String},
			"originContains":           &graphql.InputObjectFieldConfig{Type: graphql.String},
			"categoryId":               &graphql.InputObjectFieldConfig{Type: graphql.ID},
			"categoryIds":              &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.ID))},
			"colors":                   &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
			"minAverageHeight":         &graphql.InputObjectFieldConfig{Type: graphql.Float},
			"maxAverageHeight":         &graphql.InputObjectFieldConfig{Type: graphql.Float},
			"minAverageWeight":         &graphql.InputObjectFieldConfig{Type: graphql.Float},
			"maxAverageWeight":         &graphql.InputObjectFieldConfig{Type: graphql.Float},
			"minAverageLifeExpectancy": &graphql.InputObjectFieldConfig{Type: graphql.Float},
			"maxAverageLifeExpectancy": &graphql.InputObjectFieldConfig{Type: graphql.Float},
			"minExerciseRequired":      &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"maxExerciseRequired":      &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"minEaseOfTraining":        &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"maxEaseOfTraining":        &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"minAffection":             &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"maxAffection":             &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"minPlayfulness":           &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"maxPlayfulness":           &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"minGoodWithChildren":      &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"maxGoodWithChildren":      &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"minGoodWithDogs":          &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"maxGoodWithDogs":          &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"minGroomingRequired":      &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"maxGroomingRequired":      &graphql.InputObjectFieldConfig{Type: graphql.Int},
		},
	})
	t.breedSort = sortInput("BreedSort", t.breedSortField, t.sortDirection)

	t.createBreedInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   "CreateBreedInput",
		Fields: breedInputFields(true),
	})
	t.updateBreedInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   "UpdateBreedInput",
		Fields: breedInputFields(false),
	})
	t.deleteBreedPayload = deletePayload("DeleteBreedResponse")
}

// breedInputFields declares the breed input fields. On create the required
// scalars are non-null; on update everything is optional.
func breedInputFields(create bool) graphql.InputObjectConfigFieldMap {
	req := func(typ graphql.Input) graphql.Input {
		if create {
			return graphql.NewNonNull(typ)
		}
		return typ
	}
	stringList := graphql.NewList(graphql.NewNonNull(graphql.String))
	return graphql.InputObjectConfigFieldMap{
		"name":                  &graphql.InputObjectFieldConfig{Type: req(graphql.String)},
		"commonNames":           &graphql.InputObjectFieldConfig{Type: stringList},
		"description":           &graphql.InputObjectFieldConfig{Type: req(graphql.String)},
		"history":               &graphql.InputObjectFieldConfig{Type: req(graphql.String)},
		"funFact":               &graphql.InputObjectFieldConfig{Type: graphql.String},
		"health":                &graphql.InputObjectFieldConfig{Type: req(graphql.String)},
		"origin":                &graphql.InputObjectFieldConfig{Type: req(graphql.String)},
		"colors":                &graphql.InputObjectFieldConfig{Type: stringList},
		"averageHeight":         &graphql.InputObjectFieldConfig{Type: req(graphql.Float)},
		"averageWeight":         &graphql.InputObjectFieldConfig{Type: req(graphql.Float)},
		"averageLifeExpectancy": &graphql.InputObjectFieldConfig{Type: req(graphql.Float)},
		"exerciseRequired":      &graphql.InputObjectFieldConfig{Type: req(graphql.Int)},
		"easeOfTraining":        &graphql.InputObjectFieldConfig{Type: req(graphql.Int)},
		"affection":             &graphql.InputObjectFieldConfig{Type: req(graphql.Int)},
		"playfulness":           &graphql.InputObjectFieldConfig{Type: req(graphql.Int)},
		"goodWithChildren":      &graphql.InputObjectFieldConfig{Type: req(graphql.Int)},
		"goodWithDogs":          &graphql.InputObjectFieldConfig{Type: req(graphql.Int)},
		"groomingRequired":      &graphql.InputObjectFieldConfig{Type: req(graphql.Int)},
		"categoryId":            &graphql.InputObjectFieldConfig{Type: req(graphql.ID)},
	}
}

func (t *types) buildCategoryTypes() {
	t.category = graphql.NewObject(graphql.ObjectConfig{
		Name: "Category",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
				"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"description": &graphql.Field{Type: graphql.String},
				"breeds": &graphql.Field{
					Type:    graphql.NewList(graphql.NewNonNull(t.breed)),
					Resolve: t.r.categoryBreeds,
				},
				"createdAt": &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: resolveCreatedAt},
				"updatedAt": &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: resolveUpdatedAt},
			}
		}),
	})
	t.categoryEdge = graphql.NewObject(graphql.ObjectConfig{
		Name: "CategoryEdge",
		Fields: graphql.Fields{
			"node":   &graphql.Field{Type: graphql.NewNonNull(t.category)},
			"cursor": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})
	t.categoryConnection = connectionObject("CategoryConnection", t.categoryEdge, t.pageInfo)

	t.categoryFilter = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CategoryFilter",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":                &graphql.InputObjectFieldConfig{Type: graphql.String},
			"nameContains":        &graphql.InputObjectFieldConfig{Type: graphql.String},
			"description":         &graphql.InputObjectFieldConfig{Type: graphql.String},
			"descriptionContains": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"hasBreeds":           &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
		},
	})
	t.categorySort = sortInput("CategorySort", t.categorySortField, t.sortDirection)

	t.createCategoryInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreateCategoryInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"description": &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})
	t.updateCategoryInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UpdateCategoryInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":        &graphql.InputObjectFieldConfig{Type: graphql.String},
			"description": &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})
	t.deleteCategoryPayload = deletePayload("DeleteCategoryResponse")
}

func connectionObject(name string, edge, pageInfo *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: name,
		Fields: graphql.Fields{
			"edges":      &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(edge)))},
			"pageInfo":   &graphql.Field{Type: graphql.NewNonNull(pageInfo)},
			"totalCount": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})
}

func sortInput(name string, field, direction *graphql.Enum) *graphql.InputObject {
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name: name,
		Fields: graphql.InputObjectConfigFieldMap{
			"field":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(field)},
			"direction": &graphql.InputObjectFieldConfig{Type: direction},
		},
	})
}

func deletePayload(name string) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: name,
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"success": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		},
	})
}

func (t *types) query() *graphql.Object {
	listArgs := func(filter, sort *graphql.InputObject) graphql.FieldConfigArgument {
		return graphql.FieldConfigArgument{
			"filter":     &graphql.ArgumentConfig{Type: filter},
			"sort":       &graphql.ArgumentConfig{Type: sort},
			"pagination": &graphql.ArgumentConfig{Type: t.paginationInput},
		}
	}
	idArg := graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"breeds": &graphql.Field{
				Type:    graphql.NewNonNull(t.breedConnection),
				Args:    listArgs(t.breedFilter, t.breedSort),
				Resolve: t.r.queryBreeds,
			},
			"breed": &graphql.Field{
				Type:    t.breed,
				Args:    idArg,
				Resolve: t.r.queryBreed,
			},
			"categories": &graphql.Field{
				Type:    graphql.NewNonNull(t.categoryConnection),
				Args:    listArgs(t.categoryFilter, t.categorySort),
				Resolve: t.r.queryCategories,
			},
			"category": &graphql.Field{
				Type:    t.category,
				Args:    idArg,
				Resolve: t.r.queryCategory,
			},
		},
	})
}

func (t *types) mutation() *graphql.Object {
	id := &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}
	input := func(typ *graphql.InputObject) *graphql.ArgumentConfig {
		return &graphql.ArgumentConfig{Type: graphql.NewNonNull(typ)}
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createBreed": &graphql.Field{
				Type:    graphql.NewNonNull(t.breed),
				Args:    graphql.FieldConfigArgument{"input": input(t.createBreedInput)},
				Resolve: t.r.createBreed,
			},
			"updateBreed": &graphql.Field{
				Type:    graphql.NewNonNull(t.breed),
				Args:    graphql.FieldConfigArgument{"id": id, "input": input(t.updateBreedInput)},
				Resolve: t.r.updateBreed,
			},
			"deleteBreed": &graphql.Field{
				Type:    graphql.NewNonNull(t.deleteBreedPayload),
				Args:    graphql.FieldConfigArgument{"id": id},
				Resolve: t.r.deleteBreed,
			},
			"createCategory": &graphql.Field{
				Type:    graphql.NewNonNull(t.category),
				Args:    graphql.FieldConfigArgument{"input": input(t.createCategoryInput)},
				Resolve: t.r.createCategory,
			},
			"updateCategory": &graphql.Field{
				Type:    graphql.NewNonNull(t.category),
				Args:    graphql.FieldConfigArgument{"id": id, "input": input(t.updateCategoryInput)},
				Resolve: t.r.updateCategory,
			},
			"deleteCategory": &graphql.Field{
				Type:    graphql.NewNonNull(t.deleteCategoryPayload),
				Args:    graphql.FieldConfigArgument{"id": id},
				Resolve: t.r.deleteCategory,
			},
		},
	})
}

func resolveCreatedAt(p graphql.ResolveParams) (interface{}, error) {
	switch src := p.Source.(type) {
	case *model.Breed:
		return formatTimestamp(src.CreatedAt), nil
	case *model.Category:
		return formatTimestamp(src.CreatedAt), nil
	}
	return nil, nil
}

func resolveUpdatedAt(p graphql.ResolveParams) (interface{}, error) {
	switch src := p.Source.(type) {
	case *model.Breed:
		return formatTimestamp(src.UpdatedAt), nil
	case *model.Category:
		return formatTimestamp(src.UpdatedAt), nil
	}
	return nil, nil
}

func formatTimestamp(ts time.Time) string {
	return ts.UTC().Format(timestampLayout)
}
