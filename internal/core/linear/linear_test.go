package linear

import (
	"bytes"
	"math"
	"slices"
	"testing"

	"reviewpipe/internal/core/tfidf"
)

func corpus() ([]string, []string) {
	docs := []string{
		"love great product", "great quality love", "excel fast ship great", "love love amaz",
		"terribl broken refund", "broken bad wast", "bad terribl servic", "refund wast broken",
		"okay averag product", "averag fine okay", "fine okay servic", "averag averag fine",
	}
	labels := []string{
		"positive", "positive", "positive", "positive",
		"negative", "negative", "negative", "negative",
		"neutral", "neutral", "neutral", "neutral",
	}
	return docs, labels
}

func fit(t *testing.T, opt Options) (*Model, *tfidf.Vectorizer, []tfidf.Vector, []string) {
	t.Helper()
	docs, y := corpus()
	v := tfidf.New(0)
	x, err := v.FitTransform(docs)
	if err != nil {
		t.Fatal(err)
	}
	m, err := Fit(x, y, v.Dim(), opt)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	return m, v, x, y
}

func TestFit_SeparableCorpus(t *testing.T) {
	m, v, x, y := fit(t, DefaultOptions())

	if !slices.Equal(m.Classes, []string{"negative", "neutral", "positive"}) {
		t.Fatalf("classes = %v", m.Classes)
	}
	if got := m.PredictAll(x); !slices.Equal(got, y) {
		t.Fatalf("training predictions = %v, want %v", got, y)
	}

	q, _ := v.Transform([]string{"broken refund"})
	if got := m.Predict(q[0]); got != "negative" {
		t.Fatalf("Predict(broken refund) = %q", got)
	}
	p := m.PredictProba(q[0])
	sum := 0.0
	for _, v := range p {
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("probabilities sum to %v", sum)
	}
}

func TestFit_Deterministic(t *testing.T) {
	a, _, _, _ := fit(t, DefaultOptions())
	b, _, _, _ := fit(t, DefaultOptions())
	for c := range a.W {
		if !slices.Equal(a.W[c], b.W[c]) {
			t.Fatal("weights differ across identical fits")
		}
	}
}

func TestFit_SmallerCShrinksWeights(t *testing.T) {
	norm := func(m *Model) float64 {
		n := 0.0
		for _, w := range m.W {
			for _, v := range w {
				n += v * v
			}
		}
		return n
	}
	strong, _, _, _ := fit(t, Options{C: 0.5, MaxIter: 200, LearningRate: 1})
	weak, _, _, _ := fit(t, Options{C: 100, MaxIter: 200, LearningRate: 1})
	if norm(strong) >= norm(weak) {
		t.Fatalf("C=0.5 weight norm %v should be below C=100 norm %v", norm(strong), norm(weak))
	}
}

func TestFit_Errors(t *testing.T) {
	row := tfidf.Vector{Idx: []int{0}, Val: []float64{1}}
	tests := []struct {
		name string
		x    []tfidf.Vector
		y    []string
		dim  int
		opt  Options
	}{
		{name: "length mismatch", x: []tfidf.Vector{row}, y: nil, dim: 1, opt: DefaultOptions()},
		{name: "no rows", dim: 1, opt: DefaultOptions()},
		{name: "single class", x: []tfidf.Vector{row, row}, y: []string{"a", "a"}, dim: 1, opt: DefaultOptions()},
		{name: "zero dim", x: []tfidf.Vector{row, row}, y: []string{"a", "b"}, dim: 0, opt: DefaultOptions()},
		{name: "bad C", x: []tfidf.Vector{row, row}, y: []string{"a", "b"}, dim: 1, opt: Options{C: 0, MaxIter: 1, LearningRate: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Fit(tt.x, tt.y, tt.dim, tt.opt); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	m, _, x, _ := fit(t, Options{C: 1, MaxIter: 50, LearningRate: 1})
	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := Load(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got.PredictAll(x), m.PredictAll(x)) {
		t.Fatal("loaded model predicts differently")
	}
}
