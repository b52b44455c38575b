package encoder

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"

	"reviewpipe/internal/core/normalize"
)

// special tokens of the bert-base-uncased vocabulary
const (
	tokPad = "[PAD]"
	tokUnk = "[UNK]"
	tokCLS = "[CLS]"
	tokSEP = "[SEP]"

	maxWordRunes = 100
)

// WordPiece is an uncased BERT tokenizer over a vocab.txt vocabulary
type WordPiece struct {
	vocab              map[string]int64
	pad, unk, cls, sep int64
}

// LoadVocab reads a vocab.txt (one token per line, id = line number)
func LoadVocab(path string) (*WordPiece, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("encoder: open vocab: %w", err)
	}
	defer f.Close()

	vocab := map[string]int64{}
	sc := bufio.NewScanner(f)
	var id int64
	for sc.Scan() {
		tok := strings.TrimRight(sc.Text(), "\r")
		if tok != "" {
			vocab[tok] = id
		}
		id++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("encoder: read vocab: %w", err)
	}
	return NewWordPiece(vocab)
}

// NewWordPiece builds a tokenizer from an in-memory vocabulary; the four special tokens are required
func NewWordPiece(vocab map[string]int64) (*WordPiece, error) {
	wp := &WordPiece{vocab: vocab}
	for tok, dst := range map[string]*int64{tokPad: &wp.pad, tokUnk: &wp.unk, tokCLS: &wp.cls, tokSEP: &wp.sep} {
		id, ok := vocab[tok]
		if !ok {
			return nil, fmt.Errorf("encoder: vocab is missing %s", tok)
		}
		*dst = id
	}
	return wp, nil
}

// Tokens returns the word pieces of text without specials
func (wp *WordPiece) Tokens(text string) []string {
	var out []string
	for _, word := range basicSplit(text) {
		out = append(out, wp.pieces(word)...)
	}
	return out
}

// Encode implements Tokenizer
func (wp *WordPiece) Encode(text string, maxLen int) Encoding {
	pieces := wp.Tokens(text)
	ids := make([]int64, 0, len(pieces))
	for _, p := range pieces {
		if id, ok := wp.vocab[p]; ok {
			ids = append(ids, id)
		} else {
			ids = append(ids, wp.unk)
		}
	}
	return pack(ids, maxLen, wp.cls, wp.sep, wp.pad)
}

// pieces runs greedy longest-match-first over one word
func (wp *WordPiece) pieces(word string) []string {
	rs := []rune(word)
	if len(rs) > maxWordRunes {
		return []string{tokUnk}
	}
	var out []string
	for start := 0; start < len(rs); {
		end := len(rs)
		found := ""
		for ; end > start; end-- {
			sub := string(rs[start:end])
			if start > 0 {
				sub = "##" + sub
			}
			if _, ok := wp.vocab[sub]; ok {
				found = sub
				break
			}
		}
		if found == "" {
			return []string{tokUnk}
		}
		out = append(out, found)
		start = end
	}
	return out
}

// basicSplit folds case and accents, splits on whitespace and isolates punctuation
func basicSplit(text string) []string {
	text = normalize.Fold(text)
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case unicode.IsSpace(r) || unicode.IsControl(r):
			flush()
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush()
			words = append(words, string(r))
		default:
			cur.WriteRune(unicode.ToLower(r))
		}
	}
	flush()
	return words
}

// pack wraps ids in [CLS] ... [SEP], truncates to maxLen and pads the rest
func pack(ids []int64, maxLen int, cls, sep, pad int64) Encoding {
	if maxLen < 2 {
		maxLen = 2
	}
	if len(ids) > maxLen-2 {
		ids = ids[:maxLen-2]
	}
	enc := Encoding{
		InputIDs:      make([]int64, maxLen),
		AttentionMask: make([]int64, maxLen),
		TokenTypeIDs:  make([]int64, maxLen),
	}
	enc.InputIDs[0] = cls
	copy(enc.InputIDs[1:], ids)
	enc.InputIDs[len(ids)+1] = sep
	for i := 0; i < len(ids)+2; i++ {
		enc.AttentionMask[i] = 1
	}
	for i := len(ids) + 2; i < maxLen; i++ {
		enc.InputIDs[i] = pad
	}
	return enc
}
