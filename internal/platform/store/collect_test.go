package store

import (
	"errors"
	"testing"
	"time"
)

type fakeRows struct {
	cols    []string
	data    [][]any
	i       int
	scanErr error
	iterErr error
}

func (f *fakeRows) Next() bool {
	if f.i >= len(f.data) {
		return false
	}
	f.i++
	return true
}

func (f *fakeRows) Scan(dest ...any) error {
	if f.scanErr != nil {
		return f.scanErr
	}
	row := f.data[f.i-1]
	for i := range dest {
		*(dest[i].(*any)) = row[i]
	}
	return nil
}

func (f *fakeRows) Err() error        { return f.iterErr }
func (f *fakeRows) Close()            {}
func (f *fakeRows) Columns() []string { return f.cols }

func TestCollect_NormalizesValues(t *testing.T) {
	when := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := &fakeRows{
		cols: []string{"review_text", "rating", "review_date", "helpful"},
		data: [][]any{
			{[]byte("great"), int32(5), when, true},
			{nil, float32(1.5), nil, false},
		},
	}
	set, err := Collect(rows)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if set.Len() != 2 {
		t.Fatalf("rows = %d", set.Len())
	}
	r0 := set.Rows[0]
	if r0["review_text"] != "great" || r0["rating"] != int64(5) || r0["review_date"] != when || r0["helpful"] != true {
		t.Fatalf("row 0 = %#v", r0)
	}
	if set.Rows[1]["rating"] != 1.5 || set.Rows[1]["review_text"] != nil {
		t.Fatalf("row 1 = %#v", set.Rows[1])
	}
}

func TestCollect_Errors(t *testing.T) {
	if _, err := Collect(&fakeRows{cols: []string{"a"}, data: [][]any{{1}}, scanErr: errors.New("scan")}); err == nil {
		t.Fatal("expected scan error")
	}
	if _, err := Collect(&fakeRows{cols: []string{"a"}, iterErr: errors.New("iter")}); err == nil {
		t.Fatal("expected iteration error")
	}
}
