// Package pagination plans Relay cursor windows and assembles connection results.
package pagination

import (
	"fmt"

	"dogbreeds-graphql/internal/apperr"
	"dogbreeds-graphql/internal/cursor"
)

const (
	// DefaultPageSize is used when neither first nor last is supplied.
	DefaultPageSize = 10
	// MaxPageSize caps first/last unless the server configures another limit.
	MaxPageSize = 100
)

// Args are the PaginationInput arguments of a connection field.
type Args struct {
	First  *int
	After  *string
	Last   *int
	Before *string
}

// Backward reports whether the page is read towards the start of the ordering.
// before selects backward mode, as does last without first or after.
func (a Args) Backward() bool {
	if a.Before != nil {
		return true
	}
	return a.Last != nil && a.First == nil && a.After == nil
}

// Window is what the store needs to fetch one page.
//
// Take is signed: a negative value asks for the |Take| rows preceding the
// cursor, returned nearest-first.
type Window struct {
	CursorID *string
	Skip     int
	Take     int
}

// Backward reports whether the window reads before its cursor.
func (w Window) Backward() bool {
	return w.Take < 0
}

// Limit is the absolute page size.
func (w Window) Limit() int {
	if w.Take < 0 {
		return -w.Take
	}
	return w.Take
}

// Plan converts pagination arguments into a store window. Page sizes fall back
// to defaultSize and may not exceed maxSize (0 disables the check).
func Plan(args Args, defaultSize, maxSize int) (Window, error) {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	if err := checkSize("first", args.First, maxSize); err != nil {
		return Window{}, err
	}
	if err := checkSize("last", args.Last, maxSize); err != nil {
		return Window{}, err
	}

	window := Window{Take: defaultSize}
	raw := args.After
	if args.Backward() {
		raw = args.Before
		window.Take = -defaultSize
		if args.Last != nil {
			window.Take = -*args.Last
		}
	} else if args.First != nil {
		window.Take = *args.First
	}

	if raw != nil {
		id, err := cursor.Decode(*raw)
		if err != nil {
			return Window{}, apperr.Validation(err.Error())
		}
		window.CursorID = &id
		window.Skip = 1
	}
	return window, nil
}

func checkSize(name string, value *int, maxSize int) error {
	if value == nil {
		return nil
	}
	if *value < 0 {
		return apperr.ValidationFields(fmt.Sprintf("%s must not be negative", name), map[string]string{
			name: "must not be negative",
		})
	}
	if maxSize > 0 && *value > maxSize {
		return apperr.ValidationFields(fmt.Sprintf("%s must not exceed %d", name, maxSize), map[string]string{
			name: fmt.Sprintf("must not exceed %d", maxSize),
		})
	}
	return nil
}
