package store

import (
	"context"
	"fmt"
	"time"

	perr "reviewpipe/internal/platform/errors"
	chx "reviewpipe/internal/platform/store/ch"
	"reviewpipe/internal/platform/store/pg"
	"reviewpipe/internal/platform/store/sqldb"
	"reviewpipe/internal/platform/store/trace"
)

var sleep = time.Sleep

// openDriver builds the driver-specific client without touching the network
func openDriver(ctx context.Context, cfg Config, s *Store) (Querier, error) {
	var tracer trace.QueryTracer
	if cfg.LogSQL {
		tracer = trace.Logger(s.Log)
	}

	switch cfg.Driver {
	case DriverPG:
		p, err := pg.Open(ctx, pg.Config{
			URL:      cfg.DSN,
			MaxConns: cfg.MaxConns,
			SlowMs:   cfg.SlowQueryMs,
			AppName:  cfg.AppName,
		}, tracer, nil)
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "pg config")
		}
		return newPGAdapter(p), nil

	case DriverSQLite:
		db, err := sqldb.Open(ctx, sqldb.Config{Driver: "sqlite", DSN: cfg.DSN, MaxConns: int(cfg.MaxConns)})
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "sqlite config")
		}
		return newSQLAdapter(db, DriverSQLite, tracer, cfg.SlowQueryMs), nil

	case DriverClickHouse:
		db, err := chx.Open(ctx, chx.Config{DSN: cfg.DSN, Role: cfg.AppName, MaxConns: int(cfg.MaxConns)})
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "clickhouse config")
		}
		return newSQLAdapter(db, DriverClickHouse, tracer, cfg.SlowQueryMs), nil
	}
	return nil, perr.InvalidArgf("store: unsupported driver %q", cfg.Driver)
}

func ping(ctx context.Context, q Querier, timeout time.Duration) error {
	if timeout <= 0 {
		return q.Ping(ctx)
	}
	toCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return q.Ping(toCtx)
}

// guard pings with bounded retry/backoff before the client is published
func guard(ctx context.Context, cfg Config, q Querier, s *Store) error {
	const (
		backoffStart   = 150 * time.Millisecond
		backoffCeiling = 2 * time.Second
	)

	attempts := cfg.retries()
	var lastErr error
	backoff := backoffStart
	for i := 0; i < attempts; i++ {
		lastErr = ping(ctx, q, cfg.PingTimeout)

		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return perr.Wrap(ctx.Err(), perr.ErrorCodeUnavailable, "store: connect canceled")
		}
		s.Log.Debug().Err(lastErr).Str("driver", cfg.Driver).Int("attempt", i+1).Msg("store ping failed")
		if i == attempts-1 {
			break
		}
		sleep(backoff)
		if backoff < backoffCeiling {
			backoff *= 2
			if backoff > backoffCeiling {
				backoff = backoffCeiling
			}
		}
	}
	return perr.Wrap(lastErr, perr.ErrorCodeUnavailable,
		fmt.Sprintf("store: %s ping failed after %d attempts", cfg.Driver, attempts))
}
