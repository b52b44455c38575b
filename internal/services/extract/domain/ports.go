// Package domain declares the extract ports
package domain

import (
	"context"

	"reviewpipe/internal/core/records"
)

// Source is one open relational connection
type Source interface {
	QuerySet(ctx context.Context, sql string, args ...any) (records.Set, error)
	Close() error
}

// SourceOpener opens a fresh Source; extraction opens and closes one per call
type SourceOpener func(ctx context.Context) (Source, error)

// API fetches review rows from the remote endpoint
type API interface {
	Fetch(ctx context.Context) (records.Set, error)
}

// ExtractorPort is the external port of the extract module
type ExtractorPort interface {
	// ExtractSQL runs a read-only query; any error means "no data"
	ExtractSQL(ctx context.Context, query string) (records.Set, error)
	// ExtractAPI fetches the fixed endpoint; any error means "no data"
	ExtractAPI(ctx context.Context) (records.Set, error)
	// SaveCSV writes the hand-off file
	SaveCSV(ctx context.Context, set records.Set, path string) error
}
