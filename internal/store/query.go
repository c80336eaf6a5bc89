package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dogbreeds-graphql/internal/dbexec"
	"dogbreeds-graphql/internal/filter"
	"dogbreeds-graphql/internal/uuidutil"

	sq "github.com/Masterminds/squirrel"
)

type base struct {
	exec    dbexec.QueryExecutor
	dialect Dialect
	sb      sq.StatementBuilderType
	now     Clock
	newID   func() string
}

func newBase(exec dbexec.QueryExecutor, dialect Dialect, opts ...Option) *base {
	b := &base{
		exec:    exec,
		dialect: dialect,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
		newID: uuidutil.NewID,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.sb = sq.StatementBuilder.PlaceholderFormat(dialect.Placeholder())
	return b
}

func (b *base) q(ident string) string {
	return b.dialect.Quote(ident)
}

func (b *base) columns(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = b.q(n)
	}
	return out
}

// whereSQL translates a filter into a SQL condition. Fields are visited in
// sorted order so identical filters produce identical SQL.
func (b *base) whereSQL(t table, where filter.Where) (sq.And, error) {
	conds := sq.And{}
	for _, field := range where.Fields() {
		cond := where[field]
		if cond.IsZero() {
			continue
		}

		if rel, ok := t.relations[field]; ok {
			sub := rel(b.dialect)
			if cond.Some {
				conds = append(conds, sq.Expr("EXISTS ("+sub+")"))
			}
			if cond.None {
				conds = append(conds, sq.Expr("NOT EXISTS ("+sub+")"))
			}
			continue
		}

		if cond.Some || cond.None {
			return nil, fmt.Errorf("field %q on %s is not a relation", field, t.name)
		}
		name, err := t.column(field)
		if err != nil {
			return nil, err
		}
		col := b.q(name)

		switch {
		case cond.Contains != nil:
			conds = append(conds, b.dialect.ContainsFold(col, *cond.Contains))
		case cond.In != nil:
			conds = append(conds, sq.Eq{col: cond.In})
		case cond.Equals != nil:
			conds = append(conds, sq.Eq{col: cond.Equals})
		}
		if len(cond.HasSome) > 0 {
			conds = append(conds, b.dialect.HasSome(col, cond.HasSome))
		}
		if cond.Gte != nil {
			conds = append(conds, sq.GtOrEq{col: cond.Gte})
		}
		if cond.Lte != nil {
			conds = append(conds, sq.LtOrEq{col: cond.Lte})
		}
	}
	return conds, nil
}

// filtered adds the filter conditions to query, if any.
func (b *base) filtered(t table, query sq.SelectBuilder, where filter.Where) (sq.SelectBuilder, error) {
	conds, err := b.whereSQL(t, where)
	if err != nil {
		return query, err
	}
	if len(conds) > 0 {
		query = query.Where(conds)
	}
	return query, nil
}

// pageQuery applies ordering, the cursor seek and skip/take to a select.
func (b *base) pageQuery(t table, query sq.SelectBuilder, params FindManyParams) (sq.SelectBuilder, error) {
	field := params.OrderBy.Field
	if field == "" {
		field = "name"
	}
	name, err := t.column(field)
	if err != nil {
		return query, err
	}
	sortCol := b.q(name)
	idCol := b.q("id")

	desc := params.OrderBy.Desc
	limit := -1
	if params.Take != nil {
		limit = *params.Take
		if limit < 0 {
			desc = !desc
			limit = -limit
		}
	}

	dir := "ASC"
	cmp, tieCmp := ">", ">="
	if desc {
		dir = "DESC"
		cmp, tieCmp = "<", "<="
	}

	if params.CursorID != nil {
		sub := fmt.Sprintf("(SELECT %s FROM %s WHERE %s = ?)", sortCol, b.q(t.name), idCol)
		query = query.Where(sq.Or{
			sq.Expr(fmt.Sprintf("%s %s %s", sortCol, cmp, sub), *params.CursorID),
			sq.And{
				sq.Expr(fmt.Sprintf("%s = %s", sortCol, sub), *params.CursorID),
				sq.Expr(fmt.Sprintf("%s %s ?", idCol, tieCmp), *params.CursorID),
			},
		})
	}

	query = query.OrderBy(sortCol+" "+dir, idCol+" "+dir)
	if limit >= 0 {
		query = query.Limit(uint64(limit))
	}
	if params.Skip > 0 {
		if limit < 0 && b.dialect.Name() == "mysql" {
			// MySQL has no OFFSET without LIMIT.
			query = query.Limit(uint64(1<<63 - 1))
		}
		query = query.Offset(uint64(params.Skip))
	}
	return query, nil
}

func (b *base) count(ctx context.Context, t table, where filter.Where) (int, error) {
	sel, err := b.filtered(t, b.sb.Select("COUNT(*)").From(b.q(t.name)), where)
	if err != nil {
		return 0, err
	}
	query, args, err := sel.ToSql()
	if err != nil {
		return 0, err
	}

	rows, err := b.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, b.dialect.Classify(err)
	}
	defer func() { _ = rows.Close() }()

	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, b.dialect.Classify(err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, b.dialect.Classify(err)
	}
	return n, nil
}

// execAffecting runs a statement and reports sql.ErrNoRows when it touched nothing.
func (b *base) execAffecting(ctx context.Context, stmt sq.Sqlizer) error {
	query, args, err := stmt.ToSql()
	if err != nil {
		return err
	}
	res, err := b.exec.ExecContext(ctx, query, args...)
	if err != nil {
		return b.dialect.Classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return b.dialect.Classify(err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (b *base) execStmt(ctx context.Context, stmt sq.Sqlizer) error {
	query, args, err := stmt.ToSql()
	if err != nil {
		return err
	}
	if _, err := b.exec.ExecContext(ctx, query, args...); err != nil {
		return b.dialect.Classify(err)
	}
	return nil
}

// scanAll runs query and scans each row with scan.
func scanAll[T any](ctx context.Context, b *base, query sq.Sqlizer, scan func(dbexec.Rows) (T, error)) ([]T, error) {
	sqlText, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := b.exec.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, b.dialect.Classify(err)
	}
	defer func() { _ = rows.Close() }()

	out := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, b.dialect.Classify(err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, b.dialect.Classify(err)
	}
	return out, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
