package module

import (
	"context"
	"errors"
	"testing"

	"reviewpipe/internal/adapters/encoder"
	"reviewpipe/internal/core/records"
	"reviewpipe/internal/modkit"
	"reviewpipe/internal/platform/config"
	"reviewpipe/internal/services/train/domain"
)

func TestFromConfig(t *testing.T) {
	t.Setenv("TRAIN_TEST_SIZE", "0.25")
	t.Setenv("TRAIN_SEED", "7")
	t.Setenv("TRANSFORMER_EPOCHS", "5")
	t.Setenv("MODEL_LOGISTIC_PATH", "/models/lr.gob")
	t.Setenv("REPORT_XLSX_PATH", "/reports/train.xlsx")

	o := FromConfig(config.New())
	s := o.Service
	if s.TestSize != 0.25 || s.Seed != 7 || s.Head.Seed != 7 || s.Head.Epochs != 5 || s.Head.BatchSize != 8 || s.Head.NumLabels != 3 {
		t.Fatalf("service config = %+v", s)
	}
	if s.MaxFeatures != 5000 || s.LogisticPath != "/models/lr.gob" || s.ReportPath != "/reports/train.xlsx" {
		t.Fatalf("paths = %+v", s)
	}
	if o.TransformerConfigured() || o.Opener() != nil {
		t.Fatal("transformer should be unconfigured without a model path")
	}
}

func TestFromConfig_HashEncoder(t *testing.T) {
	t.Setenv("TRANSFORMER_ENCODER", "hash")
	t.Setenv("TRANSFORMER_DIMENSIONS", "64")

	o := FromConfig(config.New())
	if !o.TransformerConfigured() {
		t.Fatal("hash encoder should count as configured")
	}
	e, err := o.Opener()()
	if err != nil || e.Dimensions() != 64 {
		t.Fatalf("opener err=%v", err)
	}
}

func TestNew_EncoderOverride(t *testing.T) {
	m := New(modkit.Deps{Cfg: config.New()})
	if m.TransformerConfigured() {
		t.Fatal("expected unconfigured transformer")
	}
	_, err := modkit.MustPortsOf[Ports](m).Trainer.FineTuneTransformer(context.Background(), labeled(), "text", "label")
	if !errors.Is(err, domain.ErrTransformerNotConfigured) {
		t.Fatalf("err = %v", err)
	}

	open := domain.EncoderOpener(func() (encoder.Embedder, error) { return encoder.NewHashEmbedder(16), nil })
	m = New(modkit.Deps{Cfg: config.New()}, modkit.WithPorts(open))
	if !m.TransformerConfigured() || m.Name() != "train" {
		t.Fatal("override not applied")
	}
	art, err := modkit.MustPortsOf[Ports](m).Trainer.FineTuneTransformer(context.Background(), labeled(), "text", "label")
	if err != nil {
		t.Fatalf("FineTuneTransformer: %v", err)
	}
	defer art.Close()
}

func labeled() records.Set {
	s := records.New("text", "label")
	for i := range 8 {
		s.Append(records.Record{"text": []string{"love it", "hate it"}[i%2], "label": []string{"pos", "neg"}[i%2]})
	}
	return s
}
