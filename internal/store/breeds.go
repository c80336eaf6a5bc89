package store

import (
	"context"
	"database/sql"

	"dogbreeds-graphql/internal/apperr"
	"dogbreeds-graphql/internal/dbexec"
	"dogbreeds-graphql/internal/filter"
	"dogbreeds-graphql/internal/model"

	sq "github.com/Masterminds/squirrel"
)

// Breeds implements BreedStore.
type Breeds struct {
	*base
}

var _ BreedStore = (*Breeds)(nil)

func (s *Breeds) selectBreeds() sq.SelectBuilder {
	return s.sb.Select(s.columns(breedColumns)...).From(s.q(BreedsTable))
}

func (s *Breeds) scan(rows dbexec.Rows) (*model.Breed, error) {
	var (
		b       model.Breed
		funFact sql.NullString
	)
	err := rows.Scan(
		&b.ID, &b.Name, s.dialect.ArrayScanner(&b.CommonNames), &b.Description, &b.History,
		&funFact, &b.Health, &b.Origin, s.dialect.ArrayScanner(&b.Colors),
		&b.AverageHeight, &b.AverageWeight, &b.AverageLifeExpectancy,
		&b.ExerciseRequired, &b.EaseOfTraining, &b.Affection, &b.Playfulness,
		&b.GoodWithChildren, &b.GoodWithDogs, &b.GroomingRequired, &b.CategoryID,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.FunFact = stringPtr(funFact)
	if b.CommonNames == nil {
		b.CommonNames = []string{}
	}
	if b.Colors == nil {
		b.Colors = []string{}
	}
	return &b, nil
}

// FindMany returns one page of breeds. See FindManyParams for cursor semantics.
func (s *Breeds) FindMany(ctx context.Context, params FindManyParams) ([]*model.Breed, error) {
	query, err := s.filtered(breedTable, s.selectBreeds(), params.Where)
	if err != nil {
		return nil, err
	}
	query, err = s.pageQuery(breedTable, query, params)
	if err != nil {
		return nil, err
	}
	return scanAll(ctx, s.base, query, s.scan)
}

// Count returns the number of breeds matching where.
func (s *Breeds) Count(ctx context.Context, where filter.Where) (int, error) {
	return s.count(ctx, breedTable, where)
}

// FindUnique returns the breed with id, or nil when there is none.
func (s *Breeds) FindUnique(ctx context.Context, id string) (*model.Breed, error) {
	rows, err := scanAll(ctx, s.base, s.selectBreeds().Where(sq.Eq{s.q("id"): id}).Limit(1), s.scan)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// FindByIDs returns the breeds whose id is in ids, in no particular order.
func (s *Breeds) FindByIDs(ctx context.Context, ids []string) ([]*model.Breed, error) {
	if len(ids) == 0 {
		return []*model.Breed{}, nil
	}
	return scanAll(ctx, s.base, s.selectBreeds().Where(sq.Eq{s.q("id"): ids}), s.scan)
}

// FindByCategoryIDs returns the breeds of every category in categoryIDs,
// ordered by name.
func (s *Breeds) FindByCategoryIDs(ctx context.Context, categoryIDs []string) ([]*model.Breed, error) {
	if len(categoryIDs) == 0 {
		return []*model.Breed{}, nil
	}
	query := s.selectBreeds().
		Where(sq.Eq{s.q("category_id"): categoryIDs}).
		OrderBy(s.q("name")+" ASC", s.q("id")+" ASC")
	return scanAll(ctx, s.base, query, s.scan)
}

// Create inserts a breed. Missing lists are stored empty.
func (s *Breeds) Create(ctx context.Context, in model.BreedInput) (*model.Breed, error) {
	now := s.now()
	b := &model.Breed{
		ID:                    s.newID(),
		Name:                  in.Name,
		CommonNames:           nonNil(in.CommonNames),
		Description:           in.Description,
		History:               in.History,
		FunFact:               in.FunFact,
		Health:                in.Health,
		Origin:                in.Origin,
		Colors:                nonNil(in.Colors),
		AverageHeight:         in.AverageHeight,
		AverageWeight:         in.AverageWeight,
		AverageLifeExpectancy: in.AverageLifeExpectancy,
		ExerciseRequired:      in.ExerciseRequired,
		EaseOfTraining:        in.EaseOfTraining,
		Affection:             in.Affection,
		Playfulness:           in.Playfulness,
		GoodWithChildren:      in.GoodWithChildren,
		GoodWithDogs:          in.GoodWithDogs,
		GroomingRequired:      in.GroomingRequired,
		CategoryID:            in.CategoryID,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	stmt := s.sb.Insert(s.q(BreedsTable)).
		Columns(s.columns(breedColumns)...).
		Values(
			b.ID, b.Name, s.dialect.ArrayValue(b.CommonNames), b.Description, b.History,
			nullString(b.FunFact), b.Health, b.Origin, s.dialect.ArrayValue(b.Colors),
			b.AverageHeight, b.AverageWeight, b.AverageLifeExpectancy,
			b.ExerciseRequired, b.EaseOfTraining, b.Affection, b.Playfulness,
			b.GoodWithChildren, b.GoodWithDogs, b.GroomingRequired, b.CategoryID,
			b.CreatedAt, b.UpdatedAt,
		)
	if err := s.execStmt(ctx, stmt); err != nil {
		return nil, err
	}
	return b, nil
}

// Update applies the fields present in patch and returns the stored row.
func (s *Breeds) Update(ctx context.Context, id string, patch model.BreedPatch) (*model.Breed, error) {
	set := s.patchColumns(patch)
	set[s.q("updated_at")] = s.now()

	stmt := s.sb.Update(s.q(BreedsTable)).SetMap(set).Where(sq.Eq{s.q("id"): id})
	if err := s.execAffecting(ctx, stmt); err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound("Breed", id)
		}
		return nil, err
	}

	b, err := s.FindUnique(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, apperr.NotFound("Breed", id)
	}
	return b, nil
}

func (s *Breeds) patchColumns(p model.BreedPatch) map[string]interface{} {
	set := map[string]interface{}{}
	put := func(col string, v interface{}) { set[s.q(col)] = v }

	if p.Name != nil {
		put("name", *p.Name)
	}
	if p.CommonNames != nil {
		put("common_names", s.dialect.ArrayValue(*p.CommonNames))
	}
	if p.Description != nil {
		put("description", *p.Description)
	}
	if p.History != nil {
		put("history", *p.History)
	}
	if p.FunFact != nil {
		put("fun_fact", *p.FunFact)
	}
	if p.Health != nil {
		put("health", *p.Health)
	}
	if p.Origin != nil {
		put("origin", *p.Origin)
	}
	if p.Colors != nil {
		put("colors", s.dialect.ArrayValue(*p.Colors))
	}
	if p.AverageHeight != nil {
		put("average_height", *p.AverageHeight)
	}
	if p.AverageWeight != nil {
		put("average_weight", *p.AverageWeight)
	}
	if p.AverageLifeExpectancy != nil {
		put("average_life_expectancy", *p.AverageLifeExpectancy)
	}
	if p.ExerciseRequired != nil {
		put("exercise_required", *p.ExerciseRequired)
	}
	if p.EaseOfTraining != nil {
		put("ease_of_training", *p.EaseOfTraining)
	}
	if p.Affection != nil {
		put("affection", *p.Affection)
	}
	if p.Playfulness != nil {
		put("playfulness", *p.Playfulness)
	}
	if p.GoodWithChildren != nil {
		put("good_with_children", *p.GoodWithChildren)
	}
	if p.GoodWithDogs != nil {
		put("good_with_dogs", *p.GoodWithDogs)
	}
	if p.GroomingRequired != nil {
		put("grooming_required", *p.GroomingRequired)
	}
	if p.CategoryID != nil {
		put("category_id", *p.CategoryID)
	}
	return set
}

// Delete removes the breed with id.
func (s *Breeds) Delete(ctx context.Context, id string) error {
	stmt := s.sb.Delete(s.q(BreedsTable)).Where(sq.Eq{s.q("id"): id})
	if err := s.execAffecting(ctx, stmt); err != nil {
		if isNoRows(err) {
			return apperr.NotFound("Breed", id)
		}
		return err
	}
	return nil
}

func nonNil(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
