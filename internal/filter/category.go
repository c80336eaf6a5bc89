package filter

// CategoryFilter mirrors the CategoryFilter GraphQL input.
type CategoryFilter struct {
	Name                *string
	NameContains        *string
	Description         *string
	DescriptionContains *string
	HasBreeds           *bool
}

// BuildCategoryWhere translates a category filter. hasBreeds becomes an
// existence condition on the breeds relation.
func BuildCategoryWhere(f *CategoryFilter) Where {
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
	if f.Description != nil {
		w.setEquals("description", *f.Description)
	}
	if f.DescriptionContains != nil {
		w.setContains("description", *f.DescriptionContains)
	}
	if f.HasBreeds != nil {
		if *f.HasBreeds {
			w["breeds"] = Condition{Some: true}
		} else {
			w["breeds"] = Condition{None: true}
		}
	}
	return w
}
