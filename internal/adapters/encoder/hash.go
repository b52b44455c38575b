package encoder

import (
	"context"
	"hash/fnv"
	"strings"
)

// bert-base-uncased ids for the specials, used by the hash tokenizer
const (
	hashPad   = 0
	hashCLS   = 101
	hashSEP   = 102
	hashVocab = 30522
	hashFirst = 1000 // skip the reserved and special range
)

// HashTokenizer maps whitespace words to stable ids without a vocabulary file
type HashTokenizer struct{}

// Encode implements Tokenizer
func (HashTokenizer) Encode(text string, maxLen int) Encoding {
	words := strings.Fields(strings.ToLower(text))
	ids := make([]int64, len(words))
	for i, w := range words {
		ids[i] = hashFirst + int64(hash32(w)%uint32(hashVocab-hashFirst))
	}
	return pack(ids, maxLen, hashCLS, hashSEP, hashPad)
}

// HashEmbedder is a deterministic bag-of-words embedder using signed feature hashing.
// Texts sharing words land near each other, which keeps fine-tuning meaningful in tests
// and on hosts without a model
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder returns an embedder of the given dimension (default 256)
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = 256
	}
	return &HashEmbedder{dim: dim}
}

// Embed implements Embedder
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, e.dim)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := hash32(w)
		sign := float32(1)
		if h&1 == 1 {
			sign = -1
		}
		v[(h>>1)%uint32(e.dim)] += sign
	}
	NormalizeL2(v)
	return v, nil
}

// EmbedBatch implements Embedder
func (e *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, e, texts)
}

// Dimensions implements Embedder
func (e *HashEmbedder) Dimensions() int { return e.dim }

// Close implements Embedder
func (e *HashEmbedder) Close() error { return nil }

func hash32(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
