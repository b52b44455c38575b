package trace

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"reviewpipe/internal/platform/logger"
	kit "reviewpipe/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestCompact(t *testing.T) {
	in := "SELECT *\n\tFROM customer_reviews\r\n   WHERE rating > 3"
	if got := Compact(in); got != "SELECT * FROM customer_reviews WHERE rating > 3" {
		t.Fatalf("Compact = %q", got)
	}
}

func TestIsSlow(t *testing.T) {
	cases := []struct {
		us   int64
		ms   int
		want bool
	}{
		{999, 1, false},
		{1000, 1, true},
		{5_000_000, -1, false},
		{0, 0, true},
	}
	for _, c := range cases {
		if got := IsSlow(c.us, c.ms); got != c.want {
			t.Fatalf("IsSlow(%d,%d) = %v", c.us, c.ms, got)
		}
	}
}

func TestLoggerTracer(t *testing.T) {
	var buf bytes.Buffer
	root := zerolog.New(&buf).Level(zerolog.ErrorLevel)
	tr := Logger(root)

	ctx := logger.WithRun(context.Background(), "run-9")
	tr.OnQuery(ctx, QueryEvent{Driver: "sqlite", SQL: "SELECT 1\n", ElapsedUS: 1500})
	tr.OnQuery(ctx, QueryEvent{Driver: "pg", SQL: "SELECT nope", Err: errors.New("syntax")})

	out := buf.String()
	kit.MustContain(t, out, `"sql":"SELECT 1 "`)
	kit.MustContain(t, out, `"run_id":"run-9"`)
	kit.MustContain(t, out, `"driver":"pg"`)
	kit.MustContain(t, out, `"error":"syntax"`)
}
