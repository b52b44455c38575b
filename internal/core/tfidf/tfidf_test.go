package tfidf

import (
	"bytes"
	"errors"
	"math"
	"slices"
	"testing"
)

func TestFit_VocabularyAndIDF(t *testing.T) {
	docs := []string{"great product great", "bad product", "great service"}
	v := New(0)
	if err := v.Fit(docs); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if got, want := v.Terms(), []string{"bad", "great", "product", "service"}; !slices.Equal(got, want) {
		t.Fatalf("Terms = %v, want %v", got, want)
	}
	// great appears in 2 of 3 docs
	want := math.Log(4.0/3.0) + 1
	if got := v.IDF[v.Vocab["great"]]; math.Abs(got-want) > 1e-12 {
		t.Fatalf("idf(great) = %v, want %v", got, want)
	}
}

func TestFit_MaxFeaturesKeepsMostFrequent(t *testing.T) {
	docs := []string{"aa aa aa bb bb cc dd", "aa bb"}
	v := New(2)
	if err := v.Fit(docs); err != nil {
		t.Fatal(err)
	}
	if got := v.Terms(); !slices.Equal(got, []string{"aa", "bb"}) {
		t.Fatalf("Terms = %v", got)
	}

	// cc and dd tie at 1; alphabetical wins
	v = New(3)
	_ = v.Fit(docs)
	if got := v.Terms(); !slices.Equal(got, []string{"aa", "bb", "cc"}) {
		t.Fatalf("tie-break Terms = %v", got)
	}
}

func TestTransform_NormalizedAndIgnoresUnknown(t *testing.T) {
	v := New(0)
	rows, err := v.FitTransform([]string{"good good value", "poor value"})
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range rows {
		sq := 0.0
		for _, x := range r.Val {
			sq += x * x
		}
		if math.Abs(sq-1) > 1e-9 {
			t.Fatalf("row %d norm^2 = %v", i, sq)
		}
		if !slices.IsSorted(r.Idx) {
			t.Fatalf("row %d idx not sorted: %v", i, r.Idx)
		}
	}

	out, err := v.Transform([]string{"unseen words", "", "a b c"})
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range out {
		if len(r.Idx) != 0 {
			t.Fatalf("row %d should be empty, got %v", i, r.Idx)
		}
	}
}

func TestFit_EmptyVocabulary(t *testing.T) {
	err := New(10).Fit([]string{"", "a b", "   "})
	if !errors.Is(err, ErrEmptyVocabulary) {
		t.Fatalf("err = %v", err)
	}
	if _, err := New(10).Transform([]string{"x"}); err == nil {
		t.Fatal("unfitted Transform should error")
	}
}

func TestSaveLoad(t *testing.T) {
	v := New(100)
	if err := v.Fit([]string{"fast shipping", "slow shipping"}); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := v.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	a, _ := v.Transform([]string{"fast shipping"})
	b, _ := got.Transform([]string{"fast shipping"})
	if !slices.Equal(a[0].Val, b[0].Val) || !slices.Equal(a[0].Idx, b[0].Idx) {
		t.Fatal("loaded vectorizer transforms differently")
	}
	if err := New(1).Save(&buf); err == nil {
		t.Fatal("saving unfitted should error")
	}
}
