// Package encoder turns review text into fixed-size sentence embeddings with a pretrained transformer
package encoder

import (
	"context"
	"math"
)

// Embedder produces vector embeddings for text
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// Encoding is a padded model input of fixed length
type Encoding struct {
	InputIDs      []int64
	AttentionMask []int64
	TokenTypeIDs  []int64
}

// Tokenizer produces BERT-style inputs padded or truncated to maxLen
type Tokenizer interface {
	Encode(text string, maxLen int) Encoding
}

// NormalizeL2 scales x in place to unit L2 norm
func NormalizeL2(x []float32) {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(1 / math.Sqrt(sum))
	for i := range x {
		x[i] *= norm
	}
}

// embedEach is EmbedBatch for embedders without a batched path
func embedEach(ctx context.Context, e Embedder, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
