package resolver

import (
	"dogbreeds-graphql/internal/filter"
	"dogbreeds-graphql/internal/model"
	"dogbreeds-graphql/internal/pagination"
	"dogbreeds-graphql/internal/store"
)

// args is a graphql-go argument map, already coerced to the declared input
// types: ints arrive as int, floats as float64, lists as []interface{} and
// enums as their configured values. Absent keys were not supplied; a key
// holding nil is treated the same way.
type args map[string]interface{}

func (a args) object(key string) args {
	if m, ok := a[key].(map[string]interface{}); ok {
		return args(m)
	}
	return nil
}

func (a args) has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

func (a args) str(key string) string {
	s, _ := a[key].(string)
	return s
}

func (a args) strPtr(key string) *string {
	if s, ok := a[key].(string); ok {
		return &s
	}
	return nil
}

func (a args) intPtr(key string) *int {
	if n, ok := a[key].(int); ok {
		return &n
	}
	return nil
}

func (a args) integer(key string) int {
	n, _ := a[key].(int)
	return n
}

func (a args) floatPtr(key string) *float64 {
	switch n := a[key].(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	}
	return nil
}

func (a args) float(key string) float64 {
	if f := a.floatPtr(key); f != nil {
		return *f
	}
	return 0
}

func (a args) boolPtr(key string) *bool {
	if b, ok := a[key].(bool); ok {
		return &b
	}
	return nil
}

// list returns a string list, or nil when the key is absent.
func (a args) list(key string) []string {
	raw, ok := a[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (a args) listPtr(key string) *[]string {
	if !a.has(key) {
		return nil
	}
	list := a.list(key)
	if list == nil {
		list = []string{}
	}
	return &list
}

func paginationArgs(a args) pagination.Args {
	p := a.object("pagination")
	if p == nil {
		return pagination.Args{}
	}
	return pagination.Args{
		First:  p.intPtr("first"),
		After:  p.strPtr("after"),
		Last:   p.intPtr("last"),
		Before: p.strPtr("before"),
	}
}

// orderBy reads the sort argument. Without one the list is sorted by name
// ascending; a sort without direction is ascending.
func orderBy(a args) store.OrderBy {
	s := a.object("sort")
	if s == nil || s.str("field") == "" {
		return store.OrderBy{Field: "name"}
	}
	return store.OrderBy{Field: s.str("field"), Desc: s.str("direction") == sortDesc}
}

func breedFilterArgs(a args) *filter.BreedFilter {
	f := a.object("filter")
	if f == nil {
		return nil
	}
	return &filter.BreedFilter{
		Name:                     f.strPtr("name"),
		NameContains:             f.strPtr("nameContains"),
		DescriptionContains:      f.strPtr("descriptionContains"),
		HistoryContains:          f.strPtr("historyContains"),
		OriginContains:           f.strPtr("originContains"),
		CategoryID:               f.strPtr("categoryId"),
		CategoryIDs:              f.list("categoryIds"),
		Colors:                   f.list("colors"),
		MinAverageHeight:         f.floatPtr("minAverageHeight"),
		MaxAverageHeight:         f.floatPtr("maxAverageHeight"),
		MinAverageWeight:         f.floatPtr("minAverageWeight"),
		MaxAverageWeight:         f.floatPtr("maxAverageWeight"),
		MinAverageLifeExpectancy: f.floatPtr("minAverageLifeExpectancy"),
		MaxAverageLifeExpectancy: f.floatPtr("maxAverageLifeExpectancy"),
		MinExerciseRequired:      f.intPtr("minExerciseRequired"),
		MaxExerciseRequired:      f.intPtr("maxExerciseRequired"),
		MinEaseOfTraining:        f.intPtr("minEaseOfTraining"),
		MaxEaseOfTraining:        f.intPtr("maxEaseOfTraining"),
		MinAffection:             f.intPtr("minAffection"),
		MaxAffection:             f.intPtr("maxAffection"),
		MinPlayfulness:           f.intPtr("minPlayfulness"),
		MaxPlayfulness:           f.intPtr("maxPlayfulness"),
		MinGoodWithChildren:      f.intPtr("minGoodWithChildren"),
		MaxGoodWithChildren:      f.intPtr("maxGoodWithChildren"),
		MinGoodWithDogs:          f.intPtr("minGoodWithDogs"),
		MaxGoodWithDogs:          f.intPtr("maxGoodWithDogs"),
		MinGroomingRequired:      f.intPtr("minGroomingRequired"),
		MaxGroomingRequired:      f.intPtr("maxGroomingRequired"),
	}
}

func categoryFilterArgs(a args) *filter.CategoryFilter {
	f := a.object("filter")
	if f == nil {
		return nil
	}
	return &filter.CategoryFilter{
		Name:                f.strPtr("name"),
		NameContains:        f.strPtr("nameContains"),
		Description:         f.strPtr("description"),
		DescriptionContains: f.strPtr("descriptionContains"),
		HasBreeds:           f.boolPtr("hasBreeds"),
	}
}

func breedInput(in args) model.BreedInput {
	return model.BreedInput{
		Name:                  in.str("name"),
		CommonNames:           in.list("commonNames"),
		Description:           in.str("description"),
		History:               in.str("history"),
		FunFact:               in.strPtr("funFact"),
		Health:                in.str("health"),
		Origin:                in.str("origin"),
		Colors:                in.list("colors"),
		AverageHeight:         in.float("averageHeight"),
		AverageWeight:         in.float("averageWeight"),
		AverageLifeExpectancy: in.float("averageLifeExpectancy"),
		ExerciseRequired:      in.integer("exerciseRequired"),
		EaseOfTraining:        in.integer("easeOfTraining"),
		Affection:             in.integer("affection"),
		Playfulness:           in.integer("playfulness"),
		GoodWithChildren:      in.integer("goodWithChildren"),
		GoodWithDogs:          in.integer("goodWithDogs"),
		GroomingRequired:      in.integer("groomingRequired"),
		CategoryID:            in.str("categoryId"),
	}
}

func breedPatch(in args) model.BreedPatch {
	return model.BreedPatch{
		Name:                  in.strPtr("name"),
		CommonNames:           in.listPtr("commonNames"),
		Description:           in.strPtr("description"),
		History:               in.strPtr("history"),
		FunFact:               in.strPtr("funFact"),
		Health:                in.strPtr("health"),
		Origin:                in.strPtr("origin"),
		Colors:                in.listPtr("colors"),
		AverageHeight:         in.floatPtr("averageHeight"),
		AverageWeight:         in.floatPtr("averageWeight"),
		AverageLifeExpectancy: in.floatPtr("averageLifeExpectancy"),
		ExerciseRequired:      in.intPtr("exerciseRequired"),
		EaseOfTraining:        in.intPtr("easeOfTraining"),
		Affection:             in.intPtr("affection"),
		Playfulness:           in.intPtr("playfulness"),
		GoodWithChildren:      in.intPtr("goodWithChildren"),
		GoodWithDogs:          in.intPtr("goodWithDogs"),
		GroomingRequired:      in.intPtr("groomingRequired"),
		CategoryID:            in.strPtr("categoryId"),
	}
}

func categoryInput(in args) model.CategoryInput {
	return model.CategoryInput{
		Name:        in.str("name"),
		Description: in.strPtr("description"),
	}
}

func categoryPatch(in args) model.CategoryPatch {
	return model.CategoryPatch{
		Name:        in.strPtr("name"),
		Description: in.strPtr("description"),
	}
}
