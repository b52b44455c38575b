// Package trace carries SQL query events from the store drivers to a logger
package trace

import (
	"context"

	"reviewpipe/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one statement round-trip
type QueryEvent struct {
	Driver    string
	SQL       string
	Args      any
	ElapsedUS int64
	Rows      int
	Err       error
	Slow      bool
}

// QueryTracer receives query events
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Logger returns a tracer that ALWAYS prints SQL when tracing is enabled,
// independent of the process-wide root level
func Logger(root logger.Logger) QueryTracer {
	ll := root.Level(zerolog.DebugLevel).With().Str("component", "store").Logger()
	return &zlTracer{log: ll}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(ctx context.Context, ev QueryEvent) {
	evt := z.log.Info()
	if ev.Slow {
		evt = z.log.Warn()
	}
	if ev.Err != nil {
		evt = z.log.Error().Err(ev.Err)
	}
	if id := logger.RunID(ctx); id != "" {
		evt = evt.Str("run_id", id)
	}
	evt.Str("driver", ev.Driver).
		Float64("elapsed_ms", float64(ev.ElapsedUS)/1000.0).
		Bool("slow", ev.Slow).
		Str("sql", Compact(ev.SQL)).
		Interface("args", ev.Args).
		Msg("sql query")
}

// Compact collapses runs of whitespace so multi-line SQL logs on one line
func Compact(s string) string {
	out := make([]rune, 0, len(s))
	space := false
	for _, r := range s {
		if r == '\n' || r == '\t' || r == '\r' || r == ' ' {
			if !space {
				out = append(out, ' ')
				space = true
			}
			continue
		}
		space = false
		out = append(out, r)
	}
	return string(out)
}

// IsSlow reports whether elapsed microseconds crossed the slow threshold; slowMs < 0 disables
func IsSlow(elapsedUS int64, slowMs int) bool {
	return slowMs >= 0 && elapsedUS >= int64(slowMs)*1000
}
