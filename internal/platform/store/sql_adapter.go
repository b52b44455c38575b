package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"reviewpipe/internal/platform/store/pg"
	"reviewpipe/internal/platform/store/trace"

	"github.com/jackc/pgx/v5"
)

// pgAdapter wraps pg.PG and implements Querier
// it also emits query trace events when a tracer is configured on pg.PG
type pgAdapter struct {
	p *pg.PG
}

func newPGAdapter(p *pg.PG) *pgAdapter { return &pgAdapter{p: p} }

func (a *pgAdapter) Ping(ctx context.Context) error {
	if a == nil || a.p == nil || a.p.Pool == nil {
		return errors.New("pg: nil adapter")
	}
	return a.p.Pool.Ping(ctx) // no SQL trace line for health checks
}

func (a *pgAdapter) Close() error { a.p.Close(); return nil }

func (a *pgAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := a.p.Pool.Query(ctx, sql, args...)
	a.emit(ctx, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return pgRows{r: rs}, nil
}

// emit sends a query event to the configured tracer
func (a *pgAdapter) emit(ctx context.Context, sql string, args []any, start time.Time, err error) {
	if a.p.Tracer == nil {
		return
	}
	elapsedUS := time.Since(start).Microseconds()
	a.p.Tracer.OnQuery(ctx, trace.QueryEvent{
		Driver:    DriverPG,
		SQL:       sql,
		Args:      args,
		ElapsedUS: elapsedUS,
		Err:       err,
		Slow:      trace.IsSlow(elapsedUS, a.p.SlowMs),
	})
}

type pgRows struct{ r pgx.Rows }

func (x pgRows) Next() bool            { return x.r.Next() }
func (x pgRows) Scan(dst ...any) error { return x.r.Scan(dst...) }
func (x pgRows) Err() error            { return x.r.Err() }
func (x pgRows) Close()                { x.r.Close() }
func (x pgRows) Columns() []string {
	f := x.r.FieldDescriptions()
	out := make([]string, len(f))
	for i := range f {
		out[i] = f[i].Name
	}
	return out
}

// sqlAdapter wraps a database/sql pool (sqlite, clickhouse) and implements Querier
type sqlAdapter struct {
	db     *sql.DB
	driver string
	tracer trace.QueryTracer
	slowMs int
}

func newSQLAdapter(db *sql.DB, driver string, tracer trace.QueryTracer, slowMs int) *sqlAdapter {
	return &sqlAdapter{db: db, driver: driver, tracer: tracer, slowMs: slowMs}
}

func (a *sqlAdapter) Ping(ctx context.Context) error {
	if a == nil || a.db == nil {
		return errors.New("sql: nil adapter")
	}
	return a.db.PingContext(ctx)
}

func (a *sqlAdapter) Close() error { return a.db.Close() }

func (a *sqlAdapter) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := a.db.QueryContext(ctx, query, args...)
	if a.tracer != nil {
		elapsedUS := time.Since(start).Microseconds()
		a.tracer.OnQuery(ctx, trace.QueryEvent{
			Driver:    a.driver,
			SQL:       query,
			Args:      args,
			ElapsedUS: elapsedUS,
			Err:       err,
			Slow:      trace.IsSlow(elapsedUS, a.slowMs),
		})
	}
	if err != nil {
		return nil, err
	}
	cols, err := rs.Columns()
	if err != nil {
		_ = rs.Close()
		return nil, err
	}
	return &sqlRows{r: rs, cols: cols}, nil
}

type sqlRows struct {
	r    *sql.Rows
	cols []string
}

func (x *sqlRows) Next() bool            { return x.r.Next() }
func (x *sqlRows) Scan(dst ...any) error { return x.r.Scan(dst...) }
func (x *sqlRows) Err() error            { return x.r.Err() }
func (x *sqlRows) Close()                { _ = x.r.Close() }
func (x *sqlRows) Columns() []string     { return x.cols }
