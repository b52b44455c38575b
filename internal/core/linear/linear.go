// Package linear is multinomial logistic regression over sparse tf-idf rows
package linear

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"reviewpipe/internal/core/tfidf"

	"gonum.org/v1/gonum/floats"
)

// Options tunes the optimizer
type Options struct {
	C            float64 // inverse L2 penalty strength; smaller C shrinks weights harder
	MaxIter      int
	LearningRate float64
	Tol          float64 // stop once the largest gradient component falls below Tol
}

// DefaultOptions is C=1 with a bounded full-batch descent
func DefaultOptions() Options {
	return Options{C: 1.0, MaxIter: 300, LearningRate: 1.0, Tol: 1e-4}
}

// Model is a fitted classifier. Exported fields exist for gob
type Model struct {
	Classes []string
	Dim     int
	W       [][]float64 // [class][feature]
	B       []float64
	Iters   int
}

// Fit trains on rows x with labels y. Needs at least two distinct classes
func Fit(x []tfidf.Vector, y []string, dim int, opt Options) (*Model, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("linear: %d rows but %d labels", len(x), len(y))
	}
	if len(x) == 0 {
		return nil, errors.New("linear: no training rows")
	}
	if dim <= 0 {
		return nil, errors.New("linear: feature dimension must be positive")
	}
	if opt.C <= 0 || opt.MaxIter <= 0 || opt.LearningRate <= 0 {
		return nil, fmt.Errorf("linear: invalid options %+v", opt)
	}

	classes := uniqueSorted(y)
	if len(classes) < 2 {
		return nil, fmt.Errorf("linear: need at least 2 classes, got %d", len(classes))
	}
	idx := make(map[string]int, len(classes))
	for i, c := range classes {
		idx[c] = i
	}

	k := len(classes)
	m := &Model{Classes: classes, Dim: dim, W: make([][]float64, k), B: make([]float64, k)}
	gW := make([][]float64, k)
	for c := range k {
		m.W[c] = make([]float64, dim)
		gW[c] = make([]float64, dim)
	}
	gB := make([]float64, k)
	p := make([]float64, k)
	n := float64(len(x))
	reg := 1 / (opt.C * n)

	for it := 1; it <= opt.MaxIter; it++ {
		for c := range k {
			floats.ScaleTo(gW[c], reg, m.W[c])
			gB[c] = 0
		}
		for r, row := range x {
			m.scores(row, p)
			softmax(p)
			p[idx[y[r]]] -= 1
			for c := range k {
				d := p[c] / n
				gB[c] += d
				for j, fi := range row.Idx {
					if fi < dim {
						gW[c][fi] += d * row.Val[j]
					}
				}
			}
		}

		maxG := floats.Norm(gB, math.Inf(1))
		for c := range k {
			maxG = math.Max(maxG, floats.Norm(gW[c], math.Inf(1)))
			floats.AddScaled(m.W[c], -opt.LearningRate, gW[c])
		}
		floats.AddScaled(m.B, -opt.LearningRate, gB)
		m.Iters = it
		if maxG < opt.Tol {
			break
		}
	}
	return m, nil
}

func (m *Model) scores(row tfidf.Vector, out []float64) {
	for c := range m.Classes {
		s := m.B[c]
		for j, fi := range row.Idx {
			if fi < m.Dim {
				s += m.W[c][fi] * row.Val[j]
			}
		}
		out[c] = s
	}
}

// PredictProba returns class probabilities aligned with m.Classes
func (m *Model) PredictProba(row tfidf.Vector) []float64 {
	p := make([]float64, len(m.Classes))
	m.scores(row, p)
	softmax(p)
	return p
}

// Predict returns the most probable class; ties go to the lower class index
func (m *Model) Predict(row tfidf.Vector) string {
	return m.Classes[floats.MaxIdx(m.PredictProba(row))]
}

// PredictAll predicts every row
func (m *Model) PredictAll(rows []tfidf.Vector) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = m.Predict(r)
	}
	return out
}

// Save writes the model as gob
func (m *Model) Save(w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(m); err != nil {
		return fmt.Errorf("linear: encode: %w", err)
	}
	return nil
}

// Load reads a model written by Save
func Load(r io.Reader) (*Model, error) {
	var m Model
	if err := gob.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("linear: decode: %w", err)
	}
	if len(m.W) != len(m.Classes) || len(m.B) != len(m.Classes) {
		return nil, errors.New("linear: corrupt model: class/weight mismatch")
	}
	return &m, nil
}

// softmax in place, shifted by log-sum-exp for stability
func softmax(v []float64) {
	lse := floats.LogSumExp(v)
	for i := range v {
		v[i] = math.Exp(v[i] - lse)
	}
}

func uniqueSorted(ys []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, y := range ys {
		if _, ok := seen[y]; !ok {
			seen[y] = struct{}{}
			out = append(out, y)
		}
	}
	sort.Strings(out)
	return out
}
