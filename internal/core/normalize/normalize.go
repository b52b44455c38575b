// Package normalize turns raw review text into a stemmed token string
// Pipeline order
// 1 optional unicode fold: drop invalid bytes, decompose, strip marks, case fold, width fold
// 2 strip every rune outside ASCII letters and whitespace (didn't -> didnt)
// 3 lowercase and split on whitespace
// 4 drop stopwords
// 5 porter stem, drop tokens the stemmer empties or turns into a stopword
// 6 join with single spaces
package normalize

import (
	"strings"
	"sync"
	"unicode"

	porterstemmer "github.com/blevesearch/go-porterstemmer"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Options configures a Cleaner
type Options struct {
	// Stopwords replaces the default english list when non-nil
	Stopwords []string
	// ExtraStopwords are added on top of the base list
	ExtraStopwords []string
	// FoldUnicode maps accented and fullwidth letters to ASCII before stripping
	FoldUnicode bool
	// Stem enables porter stemming
	Stem bool
}

// DefaultOptions is the english stopword list with stemming and unicode folding on
func DefaultOptions() Options {
	return Options{FoldUnicode: true, Stem: true}
}

// Cleaner is immutable after New and safe for concurrent use
type Cleaner struct {
	stop map[string]struct{}
	fold bool
	stem bool
}

// New builds a Cleaner from opt
func New(opt Options) *Cleaner {
	base := opt.Stopwords
	if base == nil {
		base = English
	}
	stop := make(map[string]struct{}, len(base)+len(opt.ExtraStopwords))
	for _, list := range [][]string{base, opt.ExtraStopwords} {
		for _, w := range list {
			if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
				stop[w] = struct{}{}
			}
		}
	}
	return &Cleaner{stop: stop, fold: opt.FoldUnicode, stem: opt.Stem}
}

// IsStopword reports whether w (lowercase) is in the configured set
func (c *Cleaner) IsStopword(w string) bool {
	_, ok := c.stop[w]
	return ok
}

// CleanText normalizes raw. Anything that is not a string yields ""
func (c *Cleaner) CleanText(raw any) string {
	switch v := raw.(type) {
	case string:
		return c.Clean(v)
	case *string:
		if v == nil {
			return ""
		}
		return c.Clean(*v)
	case []byte:
		return c.Clean(string(v))
	default:
		return ""
	}
}

// Clean runs the pipeline described in the package doc over s
func (c *Cleaner) Clean(s string) string {
	if s == "" {
		return ""
	}
	if c.fold {
		s = Fold(s)
	}
	s = lettersOnly(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, tok := range strings.Fields(s) {
		if c.IsStopword(tok) {
			continue
		}
		if c.stem {
			tok = porterstemmer.StemString(tok)
		}
		if tok == "" || c.IsStopword(tok) {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok)
	}
	return b.String()
}

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKD,                          // decompose so accents become marks
			runes.Remove(runes.In(unicode.Mn)), // strip combining marks
			runes.Remove(runes.In(unicode.Cf)), // strip format chars ZWJ ZWNJ FEFF etc
			cases.Fold(),
			width.Fold,
			norm.NFC,
		)
	},
}

// Fold maps s toward plain ASCII letters where a sensible mapping exists (café -> cafe)
func Fold(s string) string {
	s = strings.ToValidUTF8(s, "")
	tr := chainPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		return s
	}
	return out
}

// lettersOnly lowercases ASCII letters, maps whitespace to a space and drops everything else
func lettersOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return b.String()
}
