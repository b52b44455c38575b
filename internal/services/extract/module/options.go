package module

import (
	"strconv"

	"reviewpipe/internal/adapters/ingest/reviewsapi"
	"reviewpipe/internal/platform/config"
	"reviewpipe/internal/platform/store"
	"reviewpipe/internal/platform/store/pg"
)

// Options holds configuration settings for the extract module
type Options struct {
	SQL store.Config
	API reviewsapi.Options
}

// SQLConfigured reports whether a relational source is set
func (o Options) SQLConfigured() bool { return o.SQL.DSN != "" }

// APIConfigured reports whether the reviews endpoint is set
func (o Options) APIConfigured() bool { return o.API.BaseURL != "" }

// FromConfig extracts Options from the SOURCE_ namespace.
// SOURCE_SQL_DSN wins; for pg a DSN is composed from HOST/PORT/USER/PASSWORD/DATABASE when HOST is set
func FromConfig(cfg config.Conf) Options {
	sq := cfg.Prefix("SOURCE_SQL_")
	api := cfg.Prefix("SOURCE_API_")

	driver := sq.MayEnum("DRIVER", store.DriverPG, store.DriverPG, store.DriverSQLite, store.DriverClickHouse)
	dsn := sq.MayString("DSN", "")
	if dsn == "" && driver == store.DriverPG {
		if host := sq.MayString("HOST", ""); host != "" {
			port, _ := strconv.Atoi(sq.MayString("PORT", "5432"))
			dsn = pg.BuildURL(host, port, sq.MayString("USER", ""), sq.MayString("PASSWORD", ""), sq.MayString("DATABASE", ""))
		}
	}

	return Options{
		SQL: store.Config{
			AppName:        cfg.MayString("APP_NAME", "reviewpipe"),
			Driver:         driver,
			DSN:            dsn,
			MaxConns:       1,
			LogSQL:         sq.MayBool("LOG_SQL", false),
			SlowQueryMs:    sq.MayInt("SLOW_MS", 500),
			ConnectRetries: sq.MayInt("CONNECT_RETRIES", 1),
			PingTimeout:    sq.MayDuration("PING_TIMEOUT", 0),
		},
		API: reviewsapi.Options{
			BaseURL:    api.MayString("URL", ""),
			Path:       api.MayString("PATH", ""),
			Token:      api.MayString("KEY", ""),
			Timeout:    api.MayDuration("TIMEOUT", 0),
			MaxRetries: api.MayInt("MAX_RETRIES", 0),
			RetryBase:  api.MayDuration("RETRY_BASE", 0),
		},
	}
}
