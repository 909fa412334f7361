package query

import "slices"

type Edge[T any] struct {
	Cursor string
	Node   T
}

type PageInfo struct {
	HasNextPage     bool
	HasPreviousPage bool
	StartCursor     *string
	EndCursor       *string
}

type Connection[T any] struct {
	Edges      []Edge[T]
	PageInfo   PageInfo
	TotalCount int
}

// Nodes returns the page's records in order.
func (c Connection[T]) Nodes() []T {
	nodes := make([]T, len(c.Edges))
	for i, e := range c.Edges {
		nodes[i] = e.Node
	}
	return nodes
}

// Page is the raw result of a keyset fetch.
type Page[T any] struct {
	// Rows holds up to Size+1 records in fetch order; reversed for
	// backward pages.
	Rows []T
	// Beyond reports whether records exist on the far side of the request
	// cursor, found by a separate existence probe.
	Beyond     bool
	TotalCount int
}

// NewConnection trims the look-ahead row, restores sort order for backward
// pages and derives the page info.
func NewConnection[T any](p Params, page Page[T], cursorOf func(T) Cursor) Connection[T] {
	rows := page.Rows
	more := len(rows) > p.Size
	if more {
		rows = rows[:p.Size]
	}
	if p.Backward() {
		rows = slices.Clone(rows)
		slices.Reverse(rows)
	}

	conn := Connection[T]{
		Edges:      make([]Edge[T], len(rows)),
		TotalCount: page.TotalCount,
	}
	for i, r := range rows {
		conn.Edges[i] = Edge[T]{Cursor: cursorOf(r).Encode(), Node: r}
	}

	if p.Backward() {
		conn.PageInfo.HasPreviousPage = more
		conn.PageInfo.HasNextPage = p.Cursor != nil && page.Beyond
	} else {
		conn.PageInfo.HasNextPage = more
		conn.PageInfo.HasPreviousPage = p.Cursor != nil && page.Beyond
	}
	if n := len(conn.Edges); n > 0 {
		start, end := conn.Edges[0].Cursor, conn.Edges[n-1].Cursor
		conn.PageInfo.StartCursor = &start
		conn.PageInfo.EndCursor = &end
	}
	return conn
}
