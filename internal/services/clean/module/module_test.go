package module

import (
	"context"
	"slices"
	"testing"

	"reviewpipe/internal/core/records"
	"reviewpipe/internal/modkit"
	"reviewpipe/internal/platform/config"
	"reviewpipe/internal/services/clean/domain"
)

func TestFromConfig(t *testing.T) {
	t.Setenv("CLEAN_TEXT_COLUMN", "body")
	t.Setenv("CLEAN_EXTRA_STOPWORDS", "meh, okay")
	t.Setenv("CLEAN_STEM", "false")

	o := FromConfig(config.New())
	if o.TextColumn != "body" || !slices.Equal(o.ExtraStopwords, []string{"meh", "okay"}) || o.Stem || !o.FoldUnicode {
		t.Fatalf("options = %+v", o)
	}
	if got := o.Cleaner().Clean("meh shipping"); got != "shipping" {
		t.Fatalf("cleaner = %q", got)
	}
}

type upper struct{}

func (upper) CleanText(any) string { return "X" }

func TestNew_CleanerOverride(t *testing.T) {
	m := New(modkit.Deps{Cfg: config.New()}, modkit.WithPorts[domain.TextCleaner](upper{}))
	s := records.New("review_text")
	s.Append(records.Record{"review_text": "anything"})

	out, err := modkit.MustPortsOf[Ports](m).Preprocessor.Preprocess(context.Background(), s, "review_text")
	if err != nil || out.Rows[0]["review_text"] != "X" {
		t.Fatalf("out=%v err=%v", out.Rows, err)
	}
}
