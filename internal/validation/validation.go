// Package validation checks mutation and filter inputs before they reach the store.
package validation

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"dogbreeds-graphql/internal/apperr"
	"dogbreeds-graphql/internal/filter"
	"dogbreeds-graphql/internal/model"
	"dogbreeds-graphql/internal/uuidutil"

	"github.com/go-playground/validator/v10"
)

// Validator wraps a configured go-playground validator.
type Validator struct {
	v *validator.Validate
}

// New returns a validator that reports fields by their GraphQL names.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return graphQLName(f.Name)
	})
	return &Validator{v: v}
}

// graphQLName converts a Go field name to its lowerCamel GraphQL name
// (CategoryID -> categoryId, AverageHeight -> averageHeight).
func graphQLName(name string) string {
	if name == "ID" {
		return "id"
	}
	if strings.HasSuffix(name, "ID") {
		name = strings.TrimSuffix(name, "ID") + "Id"
	}
	runes := []rune(name)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// BreedInput validates a new breed.
func (v *Validator) BreedInput(in model.BreedInput) error {
	return v.check(in, "Invalid breed input")
}

// BreedPatch validates a breed update. At least one field is required.
func (v *Validator) BreedPatch(p model.BreedPatch) error {
	if p.IsEmpty() {
		return apperr.Validation("At least one field must be provided for update")
	}
	return v.check(p, "Invalid breed input")
}

// CategoryInput validates a new category.
func (v *Validator) CategoryInput(in model.CategoryInput) error {
	return v.check(in, "Invalid category input")
}

// CategoryPatch validates a category update. At least one field is required.
func (v *Validator) CategoryPatch(p model.CategoryPatch) error {
	if p.IsEmpty() {
		return apperr.Validation("At least one field must be provided for update")
	}
	return v.check(p, "Invalid category input")
}

// BreedFilter checks that category references are UUIDs.
func (v *Validator) BreedFilter(f *filter.BreedFilter) error {
	if f == nil {
		return nil
	}
	fields := map[string]string{}
	if f.CategoryID != nil && !uuidutil.Valid(*f.CategoryID) {
		fields["categoryId"] = "must be a valid UUID"
	}
	for i, id := range f.CategoryIDs {
		if !uuidutil.Valid(id) {
			fields[fmt.Sprintf("categoryIds[%d]", i)] = "must be a valid UUID"
		}
	}
	if len(fields) > 0 {
		return apperr.ValidationFields(summary("Invalid breed filter", fields), fields)
	}
	return nil
}

func (v *Validator) check(value interface{}, prefix string) error {
	err := v.v.Struct(value)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !asValidationErrors(err, &verrs) {
		return apperr.Validation(fmt.Sprintf("%s: %v", prefix, err))
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = message(fe)
	}
	return apperr.ValidationFields(summary(prefix, fields), fields)
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

// fieldPath strips the struct name from the namespace (BreedInput.colors[0] -> colors[0]).
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if isNumeric(fe.Kind()) {
			return "must be at least " + fe.Param()
		}
		return "must be at least " + fe.Param() + " characters"
	case "max":
		if isNumeric(fe.Kind()) {
			return "must be at most " + fe.Param()
		}
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "uuid":
		return "must be a valid UUID"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// summary renders the field errors in a stable order.
func summary(prefix string, fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + " " + fields[name]
	}
	return prefix + ": " + strings.Join(parts, "; ")
}
