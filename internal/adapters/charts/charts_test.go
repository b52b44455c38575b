package charts

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"reviewpipe/internal/core/records"
	"reviewpipe/internal/platform/testkit"
)

func sample() records.Set {
	s := records.New("review_text", "rating", "sentiment", "review_date")
	day := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	rows := []records.Record{
		{"review_text": "great product great", "rating": int64(5), "sentiment": "positive", "review_date": day},
		{"review_text": "bad product", "rating": "1", "sentiment": "negative", "review_date": day.Add(2 * time.Hour)},
		{"review_text": "okay", "rating": 10.0, "sentiment": "neutral", "review_date": "2026-10-02"},
		{"review_text": nil, "rating": nil, "sentiment": "positive", "review_date": day.AddDate(0, 0, 1)},
		{"review_text": "great", "rating": int64(5), "sentiment": nil, "review_date": nil},
	}
	for _, r := range rows {
		s.Append(r)
	}
	return s
}

func TestLabelCounts_NumericOrder(t *testing.T) {
	got := LabelCounts(sample(), "rating")
	want := []Count{{"1", 1}, {"5", 2}, {"10", 1}}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestTermCounts(t *testing.T) {
	got := TermCounts(sample(), "review_text", 2)
	if len(got) != 2 || got[0] != (Count{"great", 3}) || got[1] != (Count{"product", 2}) {
		t.Fatalf("got %v", got)
	}
	if all := TermCounts(sample(), "review_text", 0); len(all) != 4 {
		t.Fatalf("unbounded = %v", all)
	}
}

func TestDailyCounts(t *testing.T) {
	got := DailyCounts(sample(), "review_date", "sentiment")
	if len(got) != 3 {
		t.Fatalf("series = %+v", got)
	}
	pos := got[2]
	if pos.Label != "positive" || len(pos.Days) != 2 || pos.Counts[0] != 1 || pos.Counts[1] != 1 {
		t.Fatalf("positive = %+v", pos)
	}
	if neg := got[0]; neg.Label != "negative" || neg.Counts[0] != 1 {
		t.Fatalf("negative = %+v", neg)
	}
}

func TestRender_WritesPNGs(t *testing.T) {
	dir := t.TempDir()
	s := sample()
	cases := map[string]func(string) error{
		"rating.png":    func(p string) error { return RatingDistribution(s, "rating", p) },
		"terms.png":     func(p string) error { return TopTerms(s, "review_text", 10, p) },
		"sentiment.png": func(p string) error { return SentimentDistribution(s, "sentiment", p) },
		"trends.png":    func(p string) error { return SentimentTrends(s, "review_date", "sentiment", p) },
	}
	for name, render := range cases {
		p := filepath.Join(dir, "nested", name)
		if err := render(p); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		testkit.MustNonEmptyFile(t, p)
	}
}

func TestRender_NoData(t *testing.T) {
	empty := records.New("rating")
	p := filepath.Join(t.TempDir(), "x.png")
	if err := RatingDistribution(empty, "rating", p); !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v", err)
	}
	if err := SentimentTrends(empty, "d", "s", p); !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v", err)
	}
}
