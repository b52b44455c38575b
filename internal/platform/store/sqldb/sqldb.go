// Package sqldb opens database/sql pools for drivers that ship as database/sql drivers
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// pure-Go sqlite driver, registered as "sqlite"
	_ "modernc.org/sqlite"
)

// Config configures a database/sql pool
type Config struct {
	Driver   string // database/sql driver name, e.g. "sqlite"
	DSN      string
	MaxConns int
}

var sqlOpen = sql.Open

// Open opens a pool and applies connection limits; it does not ping
func Open(_ context.Context, cfg Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqldb: empty dsn for driver %q", cfg.Driver)
	}
	db, err := sqlOpen(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqldb: open %s: %w", cfg.Driver, err)
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
		db.SetMaxIdleConns(cfg.MaxConns)
	}
	return db, nil
}
