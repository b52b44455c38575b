// Package softmax is a dense classification head trained on frozen sentence embeddings
package softmax

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ErrTooManyLabels is returned when the data carries more classes than the head has outputs
var ErrTooManyLabels = errors.New("softmax: more distinct labels than NumLabels")

// Options tunes mini-batch training
type Options struct {
	NumLabels    int     `json:"num_labels"`
	Epochs       int     `json:"epochs"`
	BatchSize    int     `json:"batch_size"`
	LearningRate float64 `json:"learning_rate"`
	Seed         uint64  `json:"seed"`
}

// DefaultOptions matches a three-way sentiment head trained for three epochs in batches of eight
func DefaultOptions() Options {
	return Options{NumLabels: 3, Epochs: 3, BatchSize: 8, LearningRate: 0.5, Seed: 42}
}

// Head maps an embedding to NumLabels logits; Labels[i] names output i.
// Outputs past len(Labels) are reserved and never predicted
type Head struct {
	Labels    []string    `json:"labels"`
	NumLabels int         `json:"num_labels"`
	Dim       int         `json:"dim"`
	W         [][]float64 `json:"weights"`
	B         []float64   `json:"bias"`
	Steps     int         `json:"steps"`
}

// Fit trains a head on x (one embedding per row) with labels y
func Fit(x [][]float32, y []string, opt Options) (*Head, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("softmax: %d rows but %d labels", len(x), len(y))
	}
	if len(x) == 0 {
		return nil, errors.New("softmax: no training rows")
	}
	if opt.NumLabels < 2 || opt.Epochs <= 0 || opt.BatchSize <= 0 || opt.LearningRate <= 0 {
		return nil, fmt.Errorf("softmax: invalid options %+v", opt)
	}

	labels := uniqueSorted(y)
	if len(labels) > opt.NumLabels {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyLabels, len(labels), opt.NumLabels)
	}
	target := make(map[string]int, len(labels))
	for i, l := range labels {
		target[l] = i
	}

	dim := len(x[0])
	rows := make([][]float64, len(x))
	for i, v := range x {
		if len(v) != dim {
			return nil, fmt.Errorf("softmax: row %d has dimension %d, want %d", i, len(v), dim)
		}
		rows[i] = make([]float64, dim)
		for j, f := range v {
			rows[i][j] = float64(f)
		}
	}

	k := opt.NumLabels
	h := &Head{Labels: labels, NumLabels: k, Dim: dim, W: make([][]float64, k), B: make([]float64, k)}
	gW := make([][]float64, k)
	for c := range k {
		h.W[c] = make([]float64, dim)
		gW[c] = make([]float64, dim)
	}
	gB := make([]float64, k)
	p := make([]float64, k)

	rng := rand.New(rand.NewPCG(opt.Seed, opt.Seed^0x9e3779b97f4a7c15))
	for range opt.Epochs {
		order := rng.Perm(len(rows))
		for start := 0; start < len(order); start += opt.BatchSize {
			batch := order[start:min(start+opt.BatchSize, len(order))]
			for c := range k {
				floats.Scale(0, gW[c])
			}
			floats.Scale(0, gB)

			for _, r := range batch {
				h.logits(rows[r], p)
				softmax(p)
				p[target[y[r]]] -= 1
				for c := range k {
					floats.AddScaled(gW[c], p[c], rows[r])
					gB[c] += p[c]
				}
			}

			step := -opt.LearningRate / float64(len(batch))
			for c := range k {
				floats.AddScaled(h.W[c], step, gW[c])
			}
			floats.AddScaled(h.B, step, gB)
			h.Steps++
		}
	}
	return h, nil
}

func (h *Head) logits(x []float64, out []float64) {
	for c := range h.NumLabels {
		out[c] = floats.Dot(h.W[c], x) + h.B[c]
	}
}

// PredictProba returns probabilities over Labels
func (h *Head) PredictProba(x []float32) []float64 {
	v := make([]float64, len(x))
	for i, f := range x {
		v[i] = float64(f)
	}
	p := make([]float64, h.NumLabels)
	h.logits(v, p)
	p = p[:len(h.Labels)]
	softmax(p)
	return p
}

// Predict returns the most probable label
func (h *Head) Predict(x []float32) string {
	return h.Labels[floats.MaxIdx(h.PredictProba(x))]
}

// Save writes the head as indented JSON
func (h *Head) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(h); err != nil {
		return fmt.Errorf("softmax: encode: %w", err)
	}
	return nil
}

// Load reads a head written by Save
func Load(r io.Reader) (*Head, error) {
	var h Head
	if err := json.NewDecoder(r).Decode(&h); err != nil {
		return nil, fmt.Errorf("softmax: decode: %w", err)
	}
	if len(h.W) != h.NumLabels || len(h.B) != h.NumLabels || len(h.Labels) == 0 || len(h.Labels) > h.NumLabels {
		return nil, fmt.Errorf("softmax: corrupt head: %d labels, %d outputs", len(h.Labels), h.NumLabels)
	}
	return &h, nil
}

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
