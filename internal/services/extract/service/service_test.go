package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"reviewpipe/internal/adapters/ingest/reviewsapi"
	"reviewpipe/internal/core/records"
	perr "reviewpipe/internal/platform/errors"
	"reviewpipe/internal/platform/store"
	"reviewpipe/internal/services/extract/domain"
)

type fakeSource struct {
	set    records.Set
	err    error
	closed *bool
	panics bool
}

func (f fakeSource) QuerySet(context.Context, string, ...any) (records.Set, error) {
	if f.panics {
		panic("driver exploded")
	}
	return f.set, f.err
}

func (f fakeSource) Close() error {
	if f.closed != nil {
		*f.closed = true
	}
	return nil
}

func opener(src domain.Source, err error) domain.SourceOpener {
	return func(context.Context) (domain.Source, error) { return src, err }
}

func seedSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reviews.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	stmts := []string{
		`CREATE TABLE reviews (review_id INTEGER, review_text TEXT, rating INTEGER, review_date TEXT)`,
		`INSERT INTO reviews VALUES (1, 'Great product', 5, '2026-10-10')`,
		`INSERT INTO reviews VALUES (2, NULL, 2, '2026-10-11')`,
		`INSERT INTO reviews VALUES (3, 'Meh', 3, '2026-09-01')`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("seed %q: %v", s, err)
		}
	}
	return path
}

func sqliteOpener(dsn string) domain.SourceOpener {
	return func(ctx context.Context) (domain.Source, error) {
		s, err := store.Open(ctx, store.Config{Driver: store.DriverSQLite, DSN: dsn, ConnectRetries: 1})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func TestExtractSQL_SQLite(t *testing.T) {
	svc := New(sqliteOpener(seedSQLite(t)), nil)
	set, err := svc.ExtractSQL(context.Background(), `SELECT review_id, review_text, rating FROM reviews WHERE review_date >= '2026-10-01' ORDER BY review_id`)
	if err != nil {
		t.Fatalf("ExtractSQL: %v", err)
	}
	if set.Len() != 2 {
		t.Fatalf("rows = %d", set.Len())
	}
	if len(set.Columns) != 3 || set.Columns[1] != "review_text" {
		t.Fatalf("columns = %v", set.Columns)
	}
	if set.Rows[0]["review_text"] != "Great product" || set.Rows[1]["review_text"] != nil {
		t.Fatalf("rows = %#v", set.Rows)
	}
}

func TestExtractSQL_EmptyResultIsNotNil(t *testing.T) {
	svc := New(sqliteOpener(seedSQLite(t)), nil)
	set, err := svc.ExtractSQL(context.Background(), `SELECT * FROM reviews WHERE rating > 100`)
	if err != nil {
		t.Fatal(err)
	}
	if set.Rows == nil || set.Len() != 0 {
		t.Fatalf("set = %#v", set)
	}
}

func TestExtractSQL_Failures(t *testing.T) {
	closed := false
	tests := []struct {
		name     string
		svc      *Service
		query    string
		wantCode perr.ErrorCode
	}{
		{name: "no source", svc: New(nil, nil), query: "SELECT 1", wantCode: perr.ErrorCodeInvalidArgument},
		{name: "blank query", svc: New(opener(fakeSource{}, nil), nil), query: "  ", wantCode: perr.ErrorCodeInvalidArgument},
		{name: "open fails", svc: New(opener(nil, perr.Unavailablef("down")), nil), query: "SELECT 1", wantCode: perr.ErrorCodeUnavailable},
		{name: "query fails", svc: New(opener(fakeSource{err: errors.New("no such table: nope"), closed: &closed}, nil), nil), query: "SELECT * FROM nope", wantCode: perr.ErrorCodeDB},
		{name: "panic recovered", svc: New(opener(fakeSource{panics: true}, nil), nil), query: "SELECT 1", wantCode: perr.ErrorCodePanic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := tt.svc.ExtractSQL(context.Background(), tt.query)
			if !perr.IsCode(err, tt.wantCode) {
				t.Fatalf("err = %v (code %s), want %s", err, perr.CodeOf(err), tt.wantCode)
			}
			if set.Len() != 0 {
				t.Fatal("failure must not return data")
			}
		})
	}
	if !closed {
		t.Fatal("source should be closed after a failed query")
	}
}

func TestExtractSQL_UnreachableHost(t *testing.T) {
	cfg := store.Config{
		Driver:         store.DriverPG,
		DSN:            "postgres://u:p@127.0.0.1:1/reviews?sslmode=disable&connect_timeout=1",
		ConnectRetries: 1,
		PingTimeout:    time.Second,
	}
	svc := New(func(ctx context.Context) (domain.Source, error) {
		s, err := store.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	}, nil)

	set, err := svc.ExtractSQL(context.Background(), "SELECT 1")
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if set.Len() != 0 {
		t.Fatal("expected no data")
	}
}

func TestExtractAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer k" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[{"review_text":"Love it","rating":5}]`))
	}))
	defer srv.Close()

	ok := New(nil, reviewsapi.New(reviewsapi.Options{BaseURL: srv.URL, Token: "k"}))
	set, err := ok.ExtractAPI(context.Background())
	if err != nil || set.Len() != 1 {
		t.Fatalf("set=%v err=%v", set, err)
	}

	bad := New(nil, reviewsapi.New(reviewsapi.Options{BaseURL: srv.URL, Token: "wrong"}))
	set, err = bad.ExtractAPI(context.Background())
	var se *reviewsapi.StatusError
	if !errors.As(err, &se) || se.Status != http.StatusUnauthorized {
		t.Fatalf("err = %v", err)
	}
	if set.Len() != 0 {
		t.Fatal("non-200 must return no data")
	}

	if _, err := New(nil, nil).ExtractAPI(context.Background()); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("unconfigured api err = %v", err)
	}
}

func TestSaveCSV(t *testing.T) {
	set := records.New("review_text", "rating")
	set.Append(records.Record{"review_text": "ok", "rating": int64(4)})
	path := filepath.Join(t.TempDir(), "data", "raw.csv")

	if err := New(nil, nil).SaveCSV(context.Background(), set, path); err != nil {
		t.Fatalf("SaveCSV: %v", err)
	}
	got, err := records.LoadCSV(path)
	if err != nil || got.Len() != 1 || got.Rows[0]["rating"] != "4" {
		t.Fatalf("reloaded %v, %v", got, err)
	}

	if err := New(nil, nil).SaveCSV(context.Background(), set, filepath.Join(path, "under-a-file.csv")); !perr.IsCode(err, perr.ErrorCodeIO) {
		t.Fatalf("err = %v", err)
	}
}
