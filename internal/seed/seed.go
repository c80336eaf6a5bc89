package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dogbreeds-graphql/internal/apperr"
	"dogbreeds-graphql/internal/dbexec"
	"dogbreeds-graphql/internal/filter"
	"dogbreeds-graphql/internal/logging"
	"dogbreeds-graphql/internal/model"
	"dogbreeds-graphql/internal/store"
	"dogbreeds-graphql/internal/validation"
)

// Report counts what a seeding run did.
type Report struct {
	CategoriesCreated int
	CategoriesSkipped int
	BreedsCreated     int
	BreedsSkipped     int
	BreedsInvalid     int
	BreedsUnmatched   int
}

// Seeder writes fixtures through the store contracts.
type Seeder struct {
	validator *validation.Validator
	logger    *logging.Logger
}

// New creates a Seeder.
func New(logger *logging.Logger) *Seeder {
	return &Seeder{validator: validation.New(), logger: logger}
}

// Run applies data inside a single transaction on exec. Nothing is written
// when any insert fails.
func (s *Seeder) Run(ctx context.Context, exec *dbexec.StandardExecutor, st *store.Store, data *Data) (Report, error) {
	var report Report
	err := exec.InTx(ctx, func(tx dbexec.QueryExecutor) error {
		txStore := st.WithExecutor(tx)
		var err error
		report, err = s.Apply(ctx, txStore.Breeds, txStore.Categories, data)
		return err
	})
	return report, err
}

// Apply creates every category and breed that does not exist yet, matched by
// name. Invalid breeds and breeds whose category is unknown are logged and
// skipped.
func (s *Seeder) Apply(ctx context.Context, breeds store.BreedStore, categories store.CategoryStore, data *Data) (Report, error) {
	var report Report
	ids := make(map[string]string, len(data.Categories))

	for _, rec := range data.Categories {
		existing, err := categories.FindByName(ctx, rec.Name)
		if err != nil {
			return report, fmt.Errorf("look up category %q: %w", rec.Name, err)
		}
		if existing != nil {
			ids[strings.ToLower(existing.Name)] = existing.ID
			report.CategoriesSkipped++
			continue
		}

		in := model.CategoryInput{Name: rec.Name, Description: rec.Description}
		if err := s.validator.CategoryInput(in); err != nil {
			return report, fmt.Errorf("category %q: %w", rec.Name, err)
		}
		created, err := categories.Create(ctx, in)
		if err != nil {
			return report, fmt.Errorf("create category %q: %w", rec.Name, err)
		}
		ids[strings.ToLower(created.Name)] = created.ID
		report.CategoriesCreated++
	}
	s.logger.Info("categories seeded",
		"created", report.CategoriesCreated,
		"skipped", report.CategoriesSkipped,
	)

	for _, rec := range data.Breeds {
		categoryID, ok := ids[strings.ToLower(rec.CategoryName)]
		if !ok {
			s.logger.Warn("no category for breed", "breed", rec.Name, "category", rec.CategoryName)
			report.BreedsUnmatched++
			continue
		}

		in := breedInput(rec, categoryID)
		if err := s.validateBreed(in); err != nil {
			s.logger.Warn("invalid breed", "breed", rec.Name, "error", err.Error())
			report.BreedsInvalid++
			continue
		}

		name := rec.Name
		n, err := breeds.Count(ctx, filter.BuildBreedWhere(&filter.BreedFilter{Name: &name}))
		if err != nil {
			return report, fmt.Errorf("look up breed %q: %w", rec.Name, err)
		}
		if n > 0 {
			report.BreedsSkipped++
			continue
		}

		if _, err := breeds.Create(ctx, in); err != nil {
			return report, fmt.Errorf("create breed %q: %w", rec.Name, err)
		}
		report.BreedsCreated++
	}
	s.logger.Info("breeds seeded",
		"created", report.BreedsCreated,
		"skipped", report.BreedsSkipped,
		"invalid", report.BreedsInvalid,
		"unmatched", report.BreedsUnmatched,
	)
	return report, nil
}

// validateBreed applies the API rules plus the fixture rule that every breed
// lists at least one color.
func (s *Seeder) validateBreed(in model.BreedInput) error {
	var errs []error
	if err := s.validator.BreedInput(in); err != nil {
		errs = append(errs, err)
	}
	if len(in.Colors) == 0 {
		errs = append(errs, apperr.Validation("colors must contain at least one color"))
	}
	return errors.Join(errs...)
}

func breedInput(rec BreedRecord, categoryID string) model.BreedInput {
	return model.BreedInput{
		Name:                  rec.Name,
		CommonNames:           rec.CommonNames,
		Description:           rec.Description,
		History:               rec.History,
		FunFact:               rec.FunFact,
		Health:                rec.Health,
		Origin:                rec.Origin,
		Colors:                rec.Colors,
		AverageHeight:         rec.AverageHeight,
		AverageWeight:         rec.AverageWeight,
		AverageLifeExpectancy: rec.AverageLifeExpectancy,
		ExerciseRequired:      rec.ExerciseRequired,
		EaseOfTraining:        rec.EaseOfTraining,
		Affection:             rec.Affection,
		Playfulness:           rec.Playfulness,
		GoodWithChildren:      rec.GoodWithChildren,
		GoodWithDogs:          rec.GoodWithDogs,
		GroomingRequired:      rec.GroomingRequired,
		CategoryID:            categoryID,
	}
}
