// Package store provides a unified read interface over the relational review sources
package store

import (
	"context"
	"errors"

	"reviewpipe/internal/core/records"
	"reviewpipe/internal/platform/logger"
)

// Store is the facade over one configured SQL source
// zero value is safe but does nothing
type Store struct {
	// Log is the logger used by subclients
	// zero means a no op zerolog logger
	Log logger.Logger

	// SQL is the query seam, nil until Open succeeds
	SQL Querier

	// Driver names the backend behind SQL
	Driver string
}

// Rows exposes the minimal iteration and scan for a result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// Querier is the read surface extraction needs
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Ping(ctx context.Context) error
	Close() error
}

// Open constructs a Store for the configured driver and verifies connectivity
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	// defaults for zero logger to avoid nil checks
	s.Log = s.Log.With().Logger()

	q, err := openDriver(ctx, cfg, s)
	if err != nil {
		return nil, err
	}
	if err := guard(ctx, cfg, q, s); err != nil {
		_ = q.Close()
		return nil, err
	}
	s.SQL = q
	s.Driver = cfg.Driver
	return s, nil
}

// QuerySet runs a read-only query and materializes every row
func (s *Store) QuerySet(ctx context.Context, sql string, args ...any) (records.Set, error) {
	if s == nil || s.SQL == nil {
		return records.Set{}, errors.New("store: not open")
	}
	rows, err := s.SQL.Query(ctx, sql, args...)
	if err != nil {
		return records.Set{}, err
	}
	defer rows.Close()
	return Collect(rows)
}

// Close closes the backend; nil stores are ignored
func (s *Store) Close() error {
	if s == nil || s.SQL == nil {
		return nil
	}
	err := s.SQL.Close()
	s.SQL = nil
	return err
}
