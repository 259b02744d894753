package catalog

import (
	"context"

	"github.com/mlavergne/stratify/pkg/pagination"
)

// Row is one published KPI record.
type Row map[string]any

// Filter is an optional single-field equality constraint on row queries.
type Filter struct {
	Field string
	Value string
}

// System defines the public contract for published-table queries.
type System interface {
	Handler() *Handler

	// List returns every published collection name, ascending.
	List(ctx context.Context) ([]string, error)
	// Rows returns a window of a collection's rows, optionally filtered.
	// Returns ErrNotFound for collections that were never published.
	Rows(ctx context.Context, name string, page pagination.PageRequest, filter *Filter) (*pagination.PageResult[Row], error)
	// Count returns the number of published rows in a collection.
	Count(ctx context.Context, name string) (int, error)
	// Freshness resolves the collection's ingestion freshness.
	Freshness(ctx context.Context, name string) (*Freshness, error)
}
