// Package service trains the two sentiment classifiers
package service

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"reviewpipe/internal/adapters/report"
	"reviewpipe/internal/core/linear"
	"reviewpipe/internal/core/metrics"
	"reviewpipe/internal/core/records"
	"reviewpipe/internal/core/softmax"
	"reviewpipe/internal/core/split"
	"reviewpipe/internal/core/tfidf"
	perr "reviewpipe/internal/platform/errors"
	"reviewpipe/internal/platform/logger"
	"reviewpipe/internal/services/train/domain"
)

// Config for the train service; empty paths skip persistence
type Config struct {
	TestSize    float64
	Seed        uint64
	MaxFeatures int
	Linear      linear.Options
	Head        softmax.Options

	LogisticPath   string
	VectorizerPath string
	TransformerDir string
	ReportPath     string

	// recorded in the transformer config.json
	EncoderModel string
	MaxLen       int
}

// TransformerConfig is written next to head.json
type TransformerConfig struct {
	Encoder    string          `json:"encoder,omitempty"`
	MaxLen     int             `json:"max_len"`
	Dimensions int             `json:"dimensions"`
	Labels     []string        `json:"labels"`
	Training   softmax.Options `json:"training"`
	Rows       int             `json:"rows"`
}

// Service implements domain.TrainerPort
type Service struct {
	cfg  Config
	open domain.EncoderOpener

	mu     sync.Mutex
	sheets map[string]report.Sheet
}

// New constructs the train service; open may be nil when no encoder is configured
func New(cfg Config, open domain.EncoderOpener) *Service {
	if cfg.TestSize == 0 {
		cfg.TestSize = 0.2
	}
	if cfg.Linear == (linear.Options{}) {
		cfg.Linear = linear.DefaultOptions()
	}
	if cfg.Head == (softmax.Options{}) {
		cfg.Head = softmax.DefaultOptions()
	}
	return &Service{cfg: cfg, open: open, sheets: map[string]report.Sheet{}}
}

// TrainLinear fits the vectorizer on the training split only, then scores the test split
func (s *Service) TrainLinear(ctx context.Context, set records.Set, textColumn, labelColumn string) (art *domain.LinearArtifact, err error) {
	log := logger.C(ctx)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("linear training panicked")
			art, err = nil, perr.PanicErrf("train linear: %v", r)
		}
	}()

	texts, labels, err := labeled(ctx, set, textColumn, labelColumn)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	trainIdx, testIdx, err := split.TrainTestSplit(len(texts), s.cfg.TestSize, s.cfg.Seed)
	if err != nil {
		return nil, fitErr(ctx, err, "train linear: split")
	}
	vec := tfidf.New(s.cfg.MaxFeatures)
	xTrain, err := vec.FitTransform(split.Take(texts, trainIdx))
	if err != nil {
		return nil, fitErr(ctx, err, "train linear: vectorize")
	}
	model, err := linear.Fit(xTrain, split.Take(labels, trainIdx), vec.Dim(), s.cfg.Linear)
	if err != nil {
		return nil, fitErr(ctx, err, "train linear: fit")
	}
	xTest, err := vec.Transform(split.Take(texts, testIdx))
	if err != nil {
		return nil, fitErr(ctx, err, "train linear: transform test split")
	}
	rep, err := metrics.Report(split.Take(labels, testIdx), model.PredictAll(xTest))
	if err != nil {
		return nil, fitErr(ctx, err, "train linear: score")
	}

	art = &domain.LinearArtifact{
		Model:      model,
		Vectorizer: vec,
		Report:     rep,
		TrainRows:  len(trainIdx),
		TestRows:   len(testIdx),
	}
	logReport(log, "logistic regression", rep)
	log.Info().
		Int("train_rows", art.TrainRows).
		Int("test_rows", art.TestRows).
		Int("features", vec.Dim()).
		Int("iterations", model.Iters).
		Dur("elapsed", time.Since(start)).
		Msg("linear model trained")

	if err := s.saveLinear(art); err != nil {
		log.Error().Err(err).Msg("persist linear model")
		return nil, err
	}
	if err := s.writeReport("logistic_regression", rep); err != nil {
		log.Warn().Err(err).Str("path", s.cfg.ReportPath).Msg("training report not written")
	}
	return art, nil
}

// FineTuneTransformer embeds every labeled row with the pretrained encoder and fits the head.
// The report is computed on the training rows
func (s *Service) FineTuneTransformer(ctx context.Context, set records.Set, textColumn, labelColumn string) (art *domain.TransformerArtifact, err error) {
	log := logger.C(ctx)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("transformer training panicked")
			art, err = nil, perr.PanicErrf("train transformer: %v", r)
		}
	}()

	if s.open == nil {
		return nil, domain.ErrTransformerNotConfigured
	}
	texts, labels, err := labeled(ctx, set, textColumn, labelColumn)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	enc, err := s.open()
	if err != nil {
		err = perr.Wrap(err, perr.ErrorCodeUnavailable, "train transformer: open encoder")
		log.Error().Err(err).Msg("encoder unavailable")
		return nil, err
	}
	defer func() {
		if art == nil {
			if cerr := enc.Close(); cerr != nil {
				log.Warn().Err(cerr).Msg("close encoder")
			}
		}
	}()

	emb, err := enc.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fitErr(ctx, err, "train transformer: encode")
	}
	head, err := softmax.Fit(emb, labels, s.cfg.Head)
	if err != nil {
		return nil, fitErr(ctx, err, "train transformer: fit head")
	}
	pred := make([]string, len(emb))
	for i, v := range emb {
		pred[i] = head.Predict(v)
	}
	rep, err := metrics.Report(labels, pred)
	if err != nil {
		return nil, fitErr(ctx, err, "train transformer: score")
	}

	logReport(log, "transformer", rep)
	log.Info().
		Int("rows", len(texts)).
		Int("dimensions", enc.Dimensions()).
		Int("steps", head.Steps).
		Dur("elapsed", time.Since(start)).
		Msg("transformer head trained")

	if err := s.saveTransformer(head, enc.Dimensions(), len(texts)); err != nil {
		log.Error().Err(err).Msg("persist transformer model")
		return nil, err
	}
	if err := s.writeReport("transformer", rep); err != nil {
		log.Warn().Err(err).Str("path", s.cfg.ReportPath).Msg("training report not written")
	}
	return &domain.TransformerArtifact{Head: head, Encoder: enc, Report: rep, Rows: len(texts)}, nil
}

// labeled returns text/label pairs for rows with a label; missing text becomes ""
func labeled(ctx context.Context, set records.Set, textColumn, labelColumn string) (texts, labels []string, err error) {
	for _, c := range []string{textColumn, labelColumn} {
		if !set.HasColumn(c) {
			return nil, nil, perr.WithField(perr.Validationf("train: column %q not found", c), c)
		}
	}
	dropped := 0
	for _, r := range set.Rows {
		l, ok := records.Label(r[labelColumn])
		if !ok {
			dropped++
			continue
		}
		texts = append(texts, records.Text(r[textColumn]))
		labels = append(labels, l)
	}
	if dropped > 0 {
		logger.C(ctx).Warn().Int("dropped", dropped).Str("column", labelColumn).Msg("rows without a label excluded")
	}
	return texts, labels, nil
}

func fitErr(ctx context.Context, err error, msg string) error {
	err = perr.Wrap(err, perr.ErrorCodeModelFit, msg)
	logger.C(ctx).Error().Err(err).Msg("model fitting failed")
	return err
}

func logReport(log *logger.Logger, model string, rep metrics.ClassificationReport) {
	sum := rep.Summary()
	log.Info().
		Str("model", model).
		Float64("accuracy", sum.Accuracy).
		Float64("precision", sum.Precision).
		Float64("recall", sum.Recall).
		Float64("f1", sum.F1).
		Msg("classification report\n" + rep.String())
}

func (s *Service) saveLinear(a *domain.LinearArtifact) error {
	if s.cfg.LogisticPath != "" {
		if err := writeFile(s.cfg.LogisticPath, a.Model.Save); err != nil {
			return err
		}
	}
	if s.cfg.VectorizerPath != "" {
		if err := writeFile(s.cfg.VectorizerPath, a.Vectorizer.Save); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) saveTransformer(h *softmax.Head, dim, rows int) error {
	if s.cfg.TransformerDir == "" {
		return nil
	}
	if err := writeFile(filepath.Join(s.cfg.TransformerDir, "head.json"), h.Save); err != nil {
		return err
	}
	meta := TransformerConfig{
		Encoder:    s.cfg.EncoderModel,
		MaxLen:     s.cfg.MaxLen,
		Dimensions: dim,
		Labels:     h.Labels,
		Training:   s.cfg.Head,
		Rows:       rows,
	}
	return writeFile(filepath.Join(s.cfg.TransformerDir, "config.json"), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	})
}

// writeReport rewrites the workbook with every report produced so far by this service
func (s *Service) writeReport(name string, rep metrics.ClassificationReport) error {
	if s.cfg.ReportPath == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[name] = report.ClassificationSheet(name, rep)

	var sheets []report.Sheet
	for _, n := range []string{"logistic_regression", "transformer"} {
		if sh, ok := s.sheets[n]; ok {
			sheets = append(sheets, sh)
		}
	}
	if err := report.WriteXLSX(s.cfg.ReportPath, sheets...); err != nil {
		return perr.Wrap(err, perr.ErrorCodeIO, "write training report")
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "create %s", filepath.Dir(path))
	}
	f, err := os.Create(path)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = perr.Wrapf(cerr, perr.ErrorCodeIO, "close %s", path)
		}
	}()
	if err := write(f); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "write %s", path)
	}
	return nil
}
