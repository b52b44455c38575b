package module

import (
	"reviewpipe/internal/core/normalize"
	"reviewpipe/internal/platform/config"
)

// Options holds configuration settings for the clean module
type Options struct {
	TextColumn     string
	ExtraStopwords []string
	FoldUnicode    bool
	Stem           bool
}

// Cleaner builds the normalize.Cleaner described by o
func (o Options) Cleaner() *normalize.Cleaner {
	return normalize.New(normalize.Options{
		ExtraStopwords: o.ExtraStopwords,
		FoldUnicode:    o.FoldUnicode,
		Stem:           o.Stem,
	})
}

// FromConfig extracts Options from the CLEAN_ namespace
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CLEAN_")
	return Options{
		TextColumn:     c.MayString("TEXT_COLUMN", "review_text"),
		ExtraStopwords: c.MayCSV("EXTRA_STOPWORDS", nil),
		FoldUnicode:    c.MayBool("FOLD_UNICODE", true),
		Stem:           c.MayBool("STEM", true),
	}
}
