// Package filter turns GraphQL filter inputs into backend-neutral predicates.
//
// A Where maps a domain field name (averageHeight, categoryId, breeds, ...) to the
// condition on that field. Only fields supplied by the caller appear as keys, so an
// empty Where matches every row.
package filter

import "sort"

// Condition constrains one field. Unset members do not contribute.
type Condition struct {
	Equals   any
	In       []string
	Contains *string // case-insensitive substring
	HasSome  []string
	Gte      any
	Lte      any
	Some     bool // relation has at least one row
	None     bool // relation has no rows
}

// IsZero reports whether the condition constrains nothing.
func (c Condition) IsZero() bool {
	return c.Equals == nil && c.In == nil && c.Contains == nil && c.HasSome == nil &&
		c.Gte == nil && c.Lte == nil && !c.Some && !c.None
}

// Where is a conjunction of per-field conditions.
type Where map[string]Condition

// Fields returns the constrained field names in sorted order.
func (w Where) Fields() []string {
	fields := make([]string, 0, len(w))
	for field := range w {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// IDIn matches rows whose id is one of ids.
func IDIn(ids []string) Where {
	return Where{"id": {In: ids}}
}

// FieldIn matches rows whose field is one of values.
func FieldIn(field string, values []string) Where {
	return Where{field: {In: values}}
}

func (w Where) setEquals(field string, value any) {
	w[field] = Condition{Equals: value}
}

func (w Where) setContains(field, value string) {
	v := value
	w[field] = Condition{Contains: &v}
}

// setRange adds gte/lte bounds when either is supplied.
func setRange[T int | float64](w Where, field string, lo, hi *T) {
	if lo == nil && hi == nil {
		return
	}
	cond := Condition{}
	if lo != nil {
		cond.Gte = *lo
	}
	if hi != nil {
		cond.Lte = *hi
	}
	w[field] = cond
}
