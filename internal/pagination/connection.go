package pagination

import "dogbreeds-graphql/internal/cursor"

// Edge pairs a node with its cursor.
type Edge[T any] struct {
	Node   T
	Cursor string
}

// PageInfo is the Relay page info object.
type PageInfo struct {
	HasNextPage     bool
	HasPreviousPage bool
	StartCursor     *string
	EndCursor       *string
}

// Connection is a page of nodes plus the total size of the filtered set.
type Connection[T any] struct {
	Edges      []Edge[T]
	PageInfo   PageInfo
	TotalCount int
}

// Build assembles a connection from the rows fetched for window.
//
// Rows fetched backward arrive nearest-first and are reversed into display
// order. The edges are cut to first when it is set, then to the trailing last
// when it is set, whichever direction the window was read in. hasNextPage is true when first was requested and
// exactly first edges came back; an exact-fit final page therefore still
// reports a next page. hasPreviousPage mirrors this for last.
func Build[T any](rows []T, args Args, window Window, totalCount int, idOf func(T) string, encode cursor.Encoder) *Connection[T] {
	ordered := rows
	if window.Backward() {
		ordered = make([]T, len(rows))
		for i, row := range rows {
			ordered[len(rows)-1-i] = row
		}
	}

	edges := make([]Edge[T], 0, len(ordered))
	for _, row := range ordered {
		edges = append(edges, Edge[T]{Node: row, Cursor: encode(idOf(row))})
	}

	if args.First != nil && len(edges) > *args.First {
		edges = edges[:*args.First]
	}
	if args.Last != nil && len(edges) > *args.Last {
		edges = edges[len(edges)-*args.Last:]
	}

	info := PageInfo{
		HasNextPage:     args.First != nil && *args.First > 0 && len(edges) == *args.First,
		HasPreviousPage: args.Last != nil && *args.Last > 0 && len(edges) == *args.Last,
	}
	if len(edges) > 0 {
		start := edges[0].Cursor
		end := edges[len(edges)-1].Cursor
		info.StartCursor = &start
		info.EndCursor = &end
	}

	return &Connection[T]{
		Edges:      edges,
		PageInfo:   info,
		TotalCount: totalCount,
	}
}
