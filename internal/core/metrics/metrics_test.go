package metrics

import (
	"math"
	"slices"
	"strings"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestReport_PerClass(t *testing.T) {
	yTrue := []string{"pos", "pos", "neg", "neg", "neu"}
	yPred := []string{"pos", "neg", "neg", "neg", "pos"}

	r, err := Report(yTrue, yPred)
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Labels(); !slices.Equal(got, []string{"neg", "neu", "pos"}) {
		t.Fatalf("labels = %v", got)
	}
	if !near(r.Accuracy, 0.6) {
		t.Fatalf("accuracy = %v", r.Accuracy)
	}

	want := map[string]ClassStats{
		"neg": {Precision: 2.0 / 3, Recall: 1, F1: 0.8, Support: 2},
		"neu": {Precision: 0, Recall: 0, F1: 0, Support: 1},
		"pos": {Precision: 0.5, Recall: 0.5, F1: 0.5, Support: 2},
	}
	for _, c := range r.Classes {
		w := want[c.Label]
		if !near(c.Precision, w.Precision) || !near(c.Recall, w.Recall) || !near(c.F1, w.F1) || c.Support != w.Support {
			t.Fatalf("%s = %+v, want %+v", c.Label, c, w)
		}
	}
	if !near(r.Macro.F1, (0.8+0+0.5)/3) {
		t.Fatalf("macro f1 = %v", r.Macro.F1)
	}
	if !near(r.Weighted.F1, (2*0.8+1*0+2*0.5)/5) {
		t.Fatalf("weighted f1 = %v", r.Weighted.F1)
	}
	s := r.Summary()
	if s.Accuracy != r.Accuracy || s.F1 != r.Weighted.F1 {
		t.Fatalf("summary = %+v", s)
	}
}

func TestReport_PredictedOnlyLabelIncluded(t *testing.T) {
	r, _ := Report([]string{"a", "a"}, []string{"a", "b"})
	if got := r.Labels(); !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("labels = %v", got)
	}
}

func TestReport_Errors(t *testing.T) {
	if _, err := Report([]string{"a"}, nil); err == nil {
		t.Fatal("length mismatch should error")
	}
	r, err := Report(nil, nil)
	if err != nil || r.Accuracy != 0 || len(r.Classes) != 0 {
		t.Fatalf("empty report = %+v, %v", r, err)
	}
}

func TestReport_String(t *testing.T) {
	r, _ := Report([]string{"positive", "negative"}, []string{"positive", "positive"})
	out := r.String()
	for _, needle := range []string{"precision", "positive", "negative", "accuracy", "macro avg", "weighted avg"} {
		if !strings.Contains(out, needle) {
			t.Fatalf("report missing %q:\n%s", needle, out)
		}
	}
}
