package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	perr "reviewpipe/internal/platform/errors"
	"reviewpipe/internal/platform/testkit"
)

func seedSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reviews.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open seed db: %v", err)
	}
	defer db.Close()
	stmts := []string{
		`CREATE TABLE customer_reviews (id INTEGER PRIMARY KEY, review_text TEXT, rating REAL, review_date TEXT)`,
		`INSERT INTO customer_reviews VALUES (1, 'Loved the fast delivery', 5, '2024-03-01')`,
		`INSERT INTO customer_reviews VALUES (2, NULL, 2.5, '2024-03-02')`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("seed %q: %v", s, err)
		}
	}
	return path
}

func TestOpen_SQLite_QuerySet(t *testing.T) {
	path := seedSQLite(t)
	s, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: path, MaxConns: 1, LogSQL: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	set, err := s.QuerySet(context.Background(), `SELECT id, review_text, rating FROM customer_reviews ORDER BY id`)
	if err != nil {
		t.Fatalf("QuerySet: %v", err)
	}
	if got := set.Columns; len(got) != 3 || got[0] != "id" || got[2] != "rating" {
		t.Fatalf("columns = %v", got)
	}
	if set.Len() != 2 {
		t.Fatalf("rows = %d", set.Len())
	}
	if v, ok := set.Rows[0]["id"].(int64); !ok || v != 1 {
		t.Fatalf("id = %#v", set.Rows[0]["id"])
	}
	if v := set.Rows[0]["review_text"]; v != "Loved the fast delivery" {
		t.Fatalf("review_text = %#v", v)
	}
	if v := set.Rows[1]["review_text"]; v != nil {
		t.Fatalf("NULL should collect as nil, got %#v", v)
	}
	if v, ok := set.Rows[1]["rating"].(float64); !ok || v != 2.5 {
		t.Fatalf("rating = %#v", set.Rows[1]["rating"])
	}
}

func TestQuerySet_Empty(t *testing.T) {
	s, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: seedSQLite(t)})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	set, err := s.QuerySet(context.Background(), `SELECT * FROM customer_reviews WHERE rating > 10`)
	if err != nil {
		t.Fatalf("QuerySet: %v", err)
	}
	if !set.Empty() || set.Rows == nil || len(set.Columns) != 4 {
		t.Fatalf("expected empty non-nil set with columns, got %+v", set)
	}
}

func TestQuerySet_BadSQL(t *testing.T) {
	s, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: seedSQLite(t)})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if _, err := s.QuerySet(context.Background(), `SELECT * FROM nope`); err == nil {
		t.Fatal("expected query error")
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle", DSN: "x"})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("want InvalidArgument, got %v", err)
	}
}

func TestOpen_PGUnreachable(t *testing.T) {
	testkit.Serial(t)
	var sleeps int
	testkit.Swap(t, &sleep, func(time.Duration) { sleeps++ })

	cfg := Config{
		Driver:         DriverPG,
		DSN:            "postgres://u:p@127.0.0.1:1/db?sslmode=disable&connect_timeout=1",
		MaxConns:       1,
		ConnectRetries: 2,
		PingTimeout:    time.Second,
	}
	s, err := Open(context.Background(), cfg)
	if err == nil {
		_ = s.Close()
		t.Fatal("expected connect error")
	}
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("want Unavailable, got %v (%v)", perr.CodeOf(err), err)
	}
	if sleeps != 1 {
		t.Fatalf("expected 1 backoff sleep between 2 attempts, got %d", sleeps)
	}
}

func TestOpen_PGBadURL(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: DriverPG, DSN: "://bad"})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("want InvalidArgument, got %v", err)
	}
}

type fakePinger struct {
	fails int
	calls int
}

func (f *fakePinger) Ping(context.Context) error {
	f.calls++
	if f.calls <= f.fails {
		return errors.New("not yet")
	}
	return nil
}
func (f *fakePinger) Query(context.Context, string, ...any) (Rows, error) { return nil, nil }
func (f *fakePinger) Close() error                                        { return nil }

func TestGuard_RecoversAfterRetries(t *testing.T) {
	testkit.Serial(t)
	testkit.Swap(t, &sleep, func(time.Duration) {})

	q := &fakePinger{fails: 2}
	if err := guard(context.Background(), Config{Driver: "fake", ConnectRetries: 3}, q, &Store{}); err != nil {
		t.Fatalf("guard: %v", err)
	}
	if q.calls != 3 {
		t.Fatalf("calls = %d", q.calls)
	}
}

func TestGuard_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := guard(ctx, Config{Driver: "fake"}, &fakePinger{fails: 99}, &Store{})
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) || !errors.Is(err, context.Canceled) {
		t.Fatalf("want canceled Unavailable, got %v", err)
	}
}

func TestClose_NilSafe(t *testing.T) {
	var s *Store
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := (&Store{}).Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := (&Store{}).QuerySet(context.Background(), "SELECT 1"); err == nil {
		t.Fatal("QuerySet on closed store should error")
	}
}

func TestConfigDefaults(t *testing.T) {
	for _, n := range []int{0, -2} {
		if got := (Config{ConnectRetries: n}).retries(); got != 1 {
			t.Fatalf("retries(%d) = %d, want a single attempt", n, got)
		}
	}
}

func TestGuard_SingleAttemptByDefault(t *testing.T) {
	testkit.Serial(t)
	var sleeps int
	testkit.Swap(t, &sleep, func(time.Duration) { sleeps++ })

	for _, n := range []int{0, 1} {
		sleeps = 0
		q := &fakePinger{fails: 99}
		err := guard(context.Background(), Config{Driver: "fake", ConnectRetries: n}, q, &Store{})
		if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
			t.Fatalf("ConnectRetries=%d: want Unavailable, got %v", n, err)
		}
		if q.calls != 1 || sleeps != 0 {
			t.Fatalf("ConnectRetries=%d: calls=%d sleeps=%d, want 1 and 0", n, q.calls, sleeps)
		}
		testkit.MustContain(t, err.Error(), "after 1 attempts")
	}
}
