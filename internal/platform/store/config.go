package store

import "time"

// Supported drivers
const (
	DriverPG         = "pg"
	DriverSQLite     = "sqlite"
	DriverClickHouse = "clickhouse"
)

// Config configures the relational source
type Config struct {
	AppName string

	Driver      string
	DSN         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// Guard/boot knobs
	ConnectRetries int           // connect attempts; <=0 means a single attempt
	PingTimeout    time.Duration // per-ping bound; 0 leaves the ping to ctx
}

func (c Config) retries() int {
	if c.ConnectRetries > 0 {
		return c.ConnectRetries
	}
	return 1
}
