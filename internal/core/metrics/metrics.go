// Package metrics computes held-out classification reports
package metrics

import (
	"fmt"
	"sort"
	"strings"
)

// ClassStats is one row of a classification report
type ClassStats struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// ClassificationReport holds per-class and averaged scores
type ClassificationReport struct {
	Classes  []ClassStats `json:"classes"`
	Accuracy float64      `json:"accuracy"`
	Macro    ClassStats   `json:"macro_avg"`
	Weighted ClassStats   `json:"weighted_avg"`
	Total    int          `json:"total"`
}

// Summary is the four-number digest logged after training
type Summary struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Report scores yPred against yTrue over the union of labels seen in either, sorted.
// Undefined ratios (0/0) count as 0
func Report(yTrue, yPred []string) (ClassificationReport, error) {
	if len(yTrue) != len(yPred) {
		return ClassificationReport{}, fmt.Errorf("metrics: %d true labels but %d predictions", len(yTrue), len(yPred))
	}
	set := map[string]struct{}{}
	for _, ys := range [][]string{yTrue, yPred} {
		for _, y := range ys {
			set[y] = struct{}{}
		}
	}
	labels := make([]string, 0, len(set))
	for l := range set {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	tp := map[string]int{}
	predN := map[string]int{}
	trueN := map[string]int{}
	correct := 0
	for i := range yTrue {
		trueN[yTrue[i]]++
		predN[yPred[i]]++
		if yTrue[i] == yPred[i] {
			tp[yTrue[i]]++
			correct++
		}
	}

	rep := ClassificationReport{Total: len(yTrue), Macro: ClassStats{Label: "macro avg"}, Weighted: ClassStats{Label: "weighted avg"}}
	if len(yTrue) > 0 {
		rep.Accuracy = float64(correct) / float64(len(yTrue))
	}
	for _, l := range labels {
		cs := ClassStats{
			Label:     l,
			Precision: ratio(tp[l], predN[l]),
			Recall:    ratio(tp[l], trueN[l]),
			Support:   trueN[l],
		}
		if s := cs.Precision + cs.Recall; s > 0 {
			cs.F1 = 2 * cs.Precision * cs.Recall / s
		}
		rep.Classes = append(rep.Classes, cs)

		rep.Macro.Precision += cs.Precision
		rep.Macro.Recall += cs.Recall
		rep.Macro.F1 += cs.F1
		w := float64(cs.Support)
		rep.Weighted.Precision += w * cs.Precision
		rep.Weighted.Recall += w * cs.Recall
		rep.Weighted.F1 += w * cs.F1
	}
	if k := float64(len(labels)); k > 0 {
		rep.Macro.Precision /= k
		rep.Macro.Recall /= k
		rep.Macro.F1 /= k
	}
	if n := float64(len(yTrue)); n > 0 {
		rep.Weighted.Precision /= n
		rep.Weighted.Recall /= n
		rep.Weighted.F1 /= n
	}
	rep.Macro.Support = len(yTrue)
	rep.Weighted.Support = len(yTrue)
	return rep, nil
}

// Summary returns accuracy plus weighted precision, recall and F1
func (r ClassificationReport) Summary() Summary {
	return Summary{
		Accuracy:  r.Accuracy,
		Precision: r.Weighted.Precision,
		Recall:    r.Weighted.Recall,
		F1:        r.Weighted.F1,
	}
}

// Labels lists the classes covered by the report
func (r ClassificationReport) Labels() []string {
	out := make([]string, len(r.Classes))
	for i, c := range r.Classes {
		out[i] = c.Label
	}
	return out
}

// String renders the familiar fixed-width table
func (r ClassificationReport) String() string {
	width := len("weighted avg")
	for _, c := range r.Classes {
		width = max(width, len(c.Label))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%*s %9s %9s %9s %9s\n\n", width, "", "precision", "recall", "f1-score", "support")
	row := func(c ClassStats) {
		fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", width, c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}
	for _, c := range r.Classes {
		row(c)
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "%*s %9s %9s %9.2f %9d\n", width, "accuracy", "", "", r.Accuracy, r.Total)
	row(r.Macro)
	row(r.Weighted)
	return b.String()
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
