// Package model holds the domain records shared by the store, loaders and resolvers.
package model

import "time"

// Category groups breeds.
type Category struct {
	ID          string
	Name        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Breed is a dog breed. Ratings are integers on a 1-5 scale.
type Breed struct {
	ID                    string
	Name                  string
	CommonNames           []string
	Description           string
	History               string
	FunFact               *string
	Health                string
	Origin                string
	Colors                []string
	AverageHeight         float64
	AverageWeight         float64
	AverageLifeExpectancy float64
	ExerciseRequired      int
	EaseOfTraining        int
	Affection             int
	Playfulness           int
	GoodWithChildren      int
	GoodWithDogs          int
	GroomingRequired      int
	CategoryID            string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// BreedInput carries the fields of a new breed.
type BreedInput struct {
	Name                  string   `validate:"required,min=2,max=100"`
	CommonNames           []string `validate:"omitempty,dive,required"`
	Description           string   `validate:"required,min=10"`
	History               string   `validate:"required,min=10"`
	FunFact               *string
	Health                string   `validate:"required,min=10"`
	Origin                string   `validate:"required,min=2"`
	Colors                []string `validate:"omitempty,dive,required"`
	AverageHeight         float64  `validate:"gt=0"`
	AverageWeight         float64  `validate:"gt=0"`
	AverageLifeExpectancy float64  `validate:"gt=0"`
	ExerciseRequired      int      `validate:"min=1,max=5"`
	EaseOfTraining        int      `validate:"min=1,max=5"`
	Affection             int      `validate:"min=1,max=5"`
	Playfulness           int      `validate:"min=1,max=5"`
	GoodWithChildren      int      `validate:"min=1,max=5"`
	GoodWithDogs          int      `validate:"min=1,max=5"`
	GroomingRequired      int      `validate:"min=1,max=5"`
	CategoryID            string   `validate:"required,uuid"`
}

// BreedPatch carries a partial update. A nil field is left untouched.
type BreedPatch struct {
	Name                  *string   `validate:"omitempty,min=2,max=100"`
	CommonNames           *[]string `validate:"omitempty"`
	Description           *string   `validate:"omitempty,min=10"`
	History               *string   `validate:"omitempty,min=10"`
	FunFact               *string
	Health                *string   `validate:"omitempty,min=10"`
	Origin                *string   `validate:"omitempty,min=2"`
	Colors                *[]string `validate:"omitempty"`
	AverageHeight         *float64  `validate:"omitempty,gt=0"`
	AverageWeight         *float64  `validate:"omitempty,gt=0"`
	AverageLifeExpectancy *float64  `validate:"omitempty,gt=0"`
	ExerciseRequired      *int      `validate:"omitempty,min=1,max=5"`
	EaseOfTraining        *int      `validate:"omitempty,min=1,max=5"`
	Affection             *int      `validate:"omitempty,min=1,max=5"`
	Playfulness           *int      `validate:"omitempty,min=1,max=5"`
	GoodWithChildren      *int      `validate:"omitempty,min=1,max=5"`
	GoodWithDogs          *int      `validate:"omitempty,min=1,max=5"`
	GroomingRequired      *int      `validate:"omitempty,min=1,max=5"`
	CategoryID            *string   `validate:"omitempty,uuid"`
}

// IsEmpty reports whether no field was provided.
func (p BreedPatch) IsEmpty() bool {
	return p.Name == nil && p.CommonNames == nil && p.Description == nil &&
		p.History == nil && p.FunFact == nil && p.Health == nil && p.Origin == nil &&
		p.Colors == nil && p.AverageHeight == nil && p.AverageWeight == nil &&
		p.AverageLifeExpectancy == nil && p.ExerciseRequired == nil &&
		p.EaseOfTraining == nil && p.Affection == nil && p.Playfulness == nil &&
		p.GoodWithChildren == nil && p.GoodWithDogs == nil && p.GroomingRequired == nil &&
		p.CategoryID == nil
}

// CategoryInput carries the fields of a new category.
type CategoryInput struct {
	Name        string `validate:"required,min=2,max=100"`
	Description *string
}

// CategoryPatch carries a partial update. A nil field is left untouched.
type CategoryPatch struct {
	Name        *string `validate:"omitempty,min=2,max=100"`
	Description *string
}

// IsEmpty reports whether no field was provided.
func (p CategoryPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil
}

// DeleteResult is returned by delete mutations.
type DeleteResult struct {
	ID      string
	Success bool
}
