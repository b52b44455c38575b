package service

import (
	"context"
	"strings"
	"testing"

	"reviewpipe/internal/core/normalize"
	"reviewpipe/internal/core/records"
	perr "reviewpipe/internal/platform/errors"
)

func reviews() records.Set {
	s := records.New("review_id", "review_text", "rating")
	texts := []any{
		"I LOVED this product!!", "Terrible. Broke after 2 days", nil, "Shipping was fast",
		"Café quality, great value", 42, "", "The the the", "Would buy again :)", "Meh",
	}
	for i, t := range texts {
		s.Append(records.Record{"review_id": int64(i + 1), "review_text": t, "rating": int64(i%5 + 1)})
	}
	return s
}

func TestPreprocess_PreservesShape(t *testing.T) {
	in := reviews()
	svc := New(normalize.New(normalize.DefaultOptions()))

	out, err := svc.Preprocess(context.Background(), in, "review_text")
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if out.Len() != in.Len() {
		t.Fatalf("rows %d -> %d", in.Len(), out.Len())
	}
	for i, r := range out.Rows {
		if r["review_id"] != in.Rows[i]["review_id"] || r["rating"] != in.Rows[i]["rating"] {
			t.Fatalf("row %d other columns changed: %v vs %v", i, r, in.Rows[i])
		}
		txt, ok := r["review_text"].(string)
		if !ok {
			t.Fatalf("row %d text is %T", i, r["review_text"])
		}
		if strings.TrimFunc(txt, func(c rune) bool { return c == ' ' || (c >= 'a' && c <= 'z') }) != "" {
			t.Fatalf("row %d has unexpected characters: %q", i, txt)
		}
	}
	if out.Rows[0]["review_text"] != "love product" {
		t.Fatalf("row 0 = %q", out.Rows[0]["review_text"])
	}
	for _, i := range []int{2, 5, 6, 7} {
		if out.Rows[i]["review_text"] != "" {
			t.Fatalf("row %d should be empty, got %q", i, out.Rows[i]["review_text"])
		}
	}
	// input untouched
	if in.Rows[0]["review_text"] != "I LOVED this product!!" {
		t.Fatal("input set was mutated")
	}
}

func TestPreprocess_MissingColumn(t *testing.T) {
	in := reviews()
	out, err := New(normalize.New(normalize.DefaultOptions())).Preprocess(context.Background(), in, "body")
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("err = %v", err)
	}
	if e, ok := perr.As(err); !ok || e.Field() != "body" {
		t.Fatalf("field not attached: %v", err)
	}
	if out.Len() != in.Len() || out.Rows[0]["review_text"] != in.Rows[0]["review_text"] {
		t.Fatal("original data should be returned on failure")
	}
}

type panicky struct{}

func (panicky) CleanText(any) string { panic("stemmer blew up") }

func TestPreprocess_PanicReturnsOriginal(t *testing.T) {
	in := reviews()
	out, err := New(panicky{}).Preprocess(context.Background(), in, "review_text")
	if !perr.IsCode(err, perr.ErrorCodePanic) {
		t.Fatalf("err = %v", err)
	}
	if out.Rows[0]["review_text"] != "I LOVED this product!!" {
		t.Fatal("original data should be returned after a panic")
	}
}
