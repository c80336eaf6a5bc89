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

// Categories implements CategoryStore.
type Categories struct {
	*base
}

var _ CategoryStore = (*Categories)(nil)

func (s *Categories) selectCategories() sq.SelectBuilder {
	return s.sb.Select(s.columns(categoryColumns)...).From(s.q(CategoriesTable))
}

func (s *Categories) scan(rows dbexec.Rows) (*model.Category, error) {
	var (
		c           model.Category
		description sql.NullString
	)
	if err := rows.Scan(&c.ID, &c.Name, &description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Description = stringPtr(description)
	return &c, nil
}

// FindMany returns one page of categories. See FindManyParams for cursor semantics.
func (s *Categories) FindMany(ctx context.Context, params FindManyParams) ([]*model.Category, error) {
	query, err := s.filtered(categoryTable, s.selectCategories(), params.Where)
	if err != nil {
		return nil, err
	}
	query, err = s.pageQuery(categoryTable, query, params)
	if err != nil {
		return nil, err
	}
	return scanAll(ctx, s.base, query, s.scan)
}

// Count returns the number of categories matching where.
func (s *Categories) Count(ctx context.Context, where filter.Where) (int, error) {
	return s.count(ctx, categoryTable, where)
}

// FindUnique returns the category with id, or nil when there is none.
func (s *Categories) FindUnique(ctx context.Context, id string) (*model.Category, error) {
	return s.findOne(ctx, sq.Eq{s.q("id"): id})
}

// FindByName returns the category called name, or nil when there is none.
func (s *Categories) FindByName(ctx context.Context, name string) (*model.Category, error) {
	return s.findOne(ctx, sq.Eq{s.q("name"): name})
}

func (s *Categories) findOne(ctx context.Context, where sq.Sqlizer) (*model.Category, error) {
	rows, err := scanAll(ctx, s.base, s.selectCategories().Where(where).Limit(1), s.scan)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// FindByIDs returns the categories whose id is in ids, in no particular order.
func (s *Categories) FindByIDs(ctx context.Context, ids []string) ([]*model.Category, error) {
	if len(ids) == 0 {
		return []*model.Category{}, nil
	}
	return scanAll(ctx, s.base, s.selectCategories().Where(sq.Eq{s.q("id"): ids}), s.scan)
}

// Create inserts a category.
func (s *Categories) Create(ctx context.Context, in model.CategoryInput) (*model.Category, error) {
	now := s.now()
	c := &model.Category{
		ID:          s.newID(),
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	stmt := s.sb.Insert(s.q(CategoriesTable)).
		Columns(s.columns(categoryColumns)...).
		Values(c.ID, c.Name, nullString(c.Description), c.CreatedAt, c.UpdatedAt)
	if err := s.execStmt(ctx, stmt); err != nil {
		return nil, err
	}
	return c, nil
}

// Update applies the fields present in patch and returns the stored row.
func (s *Categories) Update(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	set := map[string]interface{}{s.q("updated_at"): s.now()}
	if patch.Name != nil {
		set[s.q("name")] = *patch.Name
	}
	if patch.Description != nil {
		set[s.q("description")] = *patch.Description
	}

	stmt := s.sb.Update(s.q(CategoriesTable)).SetMap(set).Where(sq.Eq{s.q("id"): id})
	if err := s.execAffecting(ctx, stmt); err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound("Category", id)
		}
		return nil, err
	}

	c, err := s.FindUnique(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("Category", id)
	}
	return c, nil
}

// Delete removes the category with id. Categories that still own breeds are
// rejected by the foreign key.
func (s *Categories) Delete(ctx context.Context, id string) error {
	stmt := s.sb.Delete(s.q(CategoriesTable)).Where(sq.Eq{s.q("id"): id})
	if err := s.execAffecting(ctx, stmt); err != nil {
		if isNoRows(err) {
			return apperr.NotFound("Category", id)
		}
		return err
	}
	return nil
}
