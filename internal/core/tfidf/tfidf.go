// Package tfidf is a bounded-vocabulary TF-IDF transform over whitespace-cleaned text
package tfidf

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ErrEmptyVocabulary is returned when Fit sees no usable tokens
var ErrEmptyVocabulary = errors.New("tfidf: empty vocabulary; documents contain only stop words or are empty")

var tokenRe = regexp.MustCompile(`\b\w\w+\b`)

// Tokens splits doc into tokens of two or more word characters
func Tokens(doc string) []string { return tokenRe.FindAllString(doc, -1) }

// Vector is a sparse row; Idx ascending
type Vector struct {
	Idx []int
	Val []float64
}

// Dot returns v·w for a dense w
func (v Vector) Dot(w []float64) float64 {
	s := 0.0
	for k, i := range v.Idx {
		s += v.Val[k] * w[i]
	}
	return s
}

// Vectorizer learns a vocabulary and smoothed idf weights.
// Exported fields exist for gob; treat them as read-only after Fit
type Vectorizer struct {
	MaxFeatures int
	Vocab       map[string]int
	IDF         []float64
}

// New returns a Vectorizer keeping at most maxFeatures terms (0 = unbounded)
func New(maxFeatures int) *Vectorizer { return &Vectorizer{MaxFeatures: maxFeatures} }

// Fit learns the vocabulary and idf from docs
func (v *Vectorizer) Fit(docs []string) error {
	tf := map[string]int{}
	df := map[string]int{}
	for _, d := range docs {
		seen := map[string]struct{}{}
		for _, tok := range Tokens(d) {
			tf[tok]++
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				df[tok]++
			}
		}
	}
	if len(tf) == 0 {
		return ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(tf))
	for t := range tf {
		terms = append(terms, t)
	}
	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if tf[terms[i]] != tf[terms[j]] {
				return tf[terms[i]] > tf[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.MaxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v.Vocab = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	for i, t := range terms {
		v.Vocab[t] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return nil
}

// Fitted reports whether Fit has run
func (v *Vectorizer) Fitted() bool { return len(v.Vocab) > 0 }

// Dim is the vocabulary size
func (v *Vectorizer) Dim() int { return len(v.IDF) }

// Terms returns the vocabulary in index order
func (v *Vectorizer) Terms() []string {
	out := make([]string, len(v.Vocab))
	for t, i := range v.Vocab {
		out[i] = t
	}
	return out
}

// Transform maps docs to L2-normalized tf-idf rows. Out-of-vocabulary tokens are ignored
func (v *Vectorizer) Transform(docs []string) ([]Vector, error) {
	if !v.Fitted() {
		return nil, errors.New("tfidf: vectorizer is not fitted")
	}
	out := make([]Vector, len(docs))
	for r, d := range docs {
		counts := map[int]float64{}
		for _, tok := range Tokens(d) {
			if i, ok := v.Vocab[tok]; ok {
				counts[i]++
			}
		}
		vec := Vector{Idx: make([]int, 0, len(counts)), Val: make([]float64, 0, len(counts))}
		for i := range counts {
			vec.Idx = append(vec.Idx, i)
		}
		sort.Ints(vec.Idx)
		for _, i := range vec.Idx {
			vec.Val = append(vec.Val, counts[i]*v.IDF[i])
		}
		if norm := floats.Norm(vec.Val, 2); norm > 0 {
			floats.Scale(1/norm, vec.Val)
		}
		out[r] = vec
	}
	return out, nil
}

// FitTransform is Fit followed by Transform on the same docs
func (v *Vectorizer) FitTransform(docs []string) ([]Vector, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	return v.Transform(docs)
}

// Save writes the fitted vectorizer as gob
func (v *Vectorizer) Save(w io.Writer) error {
	if !v.Fitted() {
		return errors.New("tfidf: refusing to save an unfitted vectorizer")
	}
	if err := gob.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("tfidf: encode: %w", err)
	}
	return nil
}

// Load reads a vectorizer written by Save
func Load(r io.Reader) (*Vectorizer, error) {
	var v Vectorizer
	if err := gob.NewDecoder(r).Decode(&v); err != nil {
		return nil, fmt.Errorf("tfidf: decode: %w", err)
	}
	if len(v.Vocab) != len(v.IDF) {
		return nil, fmt.Errorf("tfidf: corrupt vectorizer: %d terms, %d idf weights", len(v.Vocab), len(v.IDF))
	}
	return &v, nil
}
