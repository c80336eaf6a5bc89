package filter

// BreedFilter mirrors the BreedFilter GraphQL input. Nil means not supplied.
type BreedFilter struct {
	Name                     *string
	NameContains             *string
	DescriptionContains      *string
	HistoryContains          *string
	OriginContains           *string
	CategoryID               *string
	CategoryIDs              []string
	Colors                   []string
	MinAverageHeight         *float64
	MaxAverageHeight         *float64
	MinAverageWeight         *float64
	MaxAverageWeight         *float64
	MinAverageLifeExpectancy *float64
	MaxAverageLifeExpectancy *float64
	MinExerciseRequired      *int
	MaxExerciseRequired      *int
	MinEaseOfTraining        *int
	MaxEaseOfTraining        *int
	MinAffection             *int
	MaxAffection             *int
	MinPlayfulness           *int
	MaxPlayfulness           *int
	MinGoodWithChildren      *int
	MaxGoodWithChildren      *int
	MinGoodWithDogs          *int
	MaxGoodWithDogs          *int
	MinGroomingRequired      *int
	MaxGroomingRequired      *int
}

// BuildBreedWhere translates a breed filter. A contains filter replaces an exact
// match on the same field, and a non-empty categoryIds replaces categoryId.
func BuildBreedWhere(f *BreedFilter) Where {
	w := Where{}
	if f == nil {
		return w
	}

	if f.Name != nil {
		w.setEquals("name", *f.Name)
	}
	if f.NameContains != nil {
		w.setContains("name", *f.NameContains)
	}
	if f.DescriptionContains != nil {
		w.setContains("description", *f.DescriptionContains)
	}
	if f.HistoryContains != nil {
		w.setContains("history", *f.HistoryContains)
	}
	if f.OriginContains != nil {
		w.setContains("origin", *f.OriginContains)
	}

	if f.CategoryID != nil {
		w.setEquals("categoryId", *f.CategoryID)
	}
	if len(f.CategoryIDs) > 0 {
		w["categoryId"] = Condition{In: append([]string(nil), f.CategoryIDs...)}
	}

	if len(f.Colors) > 0 {
		w["colors"] = Condition{HasSome: append([]string(nil), f.Colors...)}
	}

	setRange(w, "averageHeight", f.MinAverageHeight, f.MaxAverageHeight)
	setRange(w, "averageWeight", f.MinAverageWeight, f.MaxAverageWeight)
	setRange(w, "averageLifeExpectancy", f.MinAverageLifeExpectancy, f.MaxAverageLifeExpectancy)
	setRange(w, "exerciseRequired", f.MinExerciseRequired, f.MaxExerciseRequired)
	setRange(w, "easeOfTraining", f.MinEaseOfTraining, f.MaxEaseOfTraining)
	setRange(w, "affection", f.MinAffection, f.MaxAffection)
	setRange(w, "playfulness", f.MinPlayfulness, f.MaxPlayfulness)
	setRange(w, "goodWithChildren", f.MinGoodWithChildren, f.MaxGoodWithChildren)
	setRange(w, "goodWithDogs", f.MinGoodWithDogs, f.MaxGoodWithDogs)
	setRange(w, "groomingRequired", f.MinGroomingRequired, f.MaxGroomingRequired)

	return w
}
