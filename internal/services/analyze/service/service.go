// Package service implements exploratory analysis charts
package service

import (
	"context"
	"errors"
	"path/filepath"

	"reviewpipe/internal/adapters/charts"
	"reviewpipe/internal/core/records"
	perr "reviewpipe/internal/platform/errors"
	"reviewpipe/internal/platform/logger"
	"reviewpipe/internal/services/analyze/domain"
)

// Config for the analyze service
type Config struct {
	OutputDir    string
	RatingColumn string
	TopTerms     int
}

// Service implements domain.AnalyzerPort
type Service struct {
	cfg Config
}

// New constructs the analyze service
func New(cfg Config) *Service {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "eda"
	}
	if cfg.RatingColumn == "" {
		cfg.RatingColumn = "rating"
	}
	if cfg.TopTerms <= 0 {
		cfg.TopTerms = 30
	}
	return &Service{cfg: cfg}
}

type chart struct {
	name   string
	needs  []string
	render func(path string) error
}

// Analyze renders rating_distribution.png and top_terms.png
func (s *Service) Analyze(ctx context.Context, set records.Set, textColumn string) (domain.Artifacts, error) {
	return s.run(ctx, set, []chart{
		{
			name:   "rating_distribution.png",
			needs:  []string{s.cfg.RatingColumn},
			render: func(p string) error { return charts.RatingDistribution(set, s.cfg.RatingColumn, p) },
		},
		{
			name:   "top_terms.png",
			needs:  []string{textColumn},
			render: func(p string) error { return charts.TopTerms(set, textColumn, s.cfg.TopTerms, p) },
		},
	})
}

// AnalyzePredictions renders sentiment_distribution.png and sentiment_trends.png
func (s *Service) AnalyzePredictions(ctx context.Context, set records.Set, dateColumn, sentimentColumn string) (domain.Artifacts, error) {
	return s.run(ctx, set, []chart{
		{
			name:   "sentiment_distribution.png",
			needs:  []string{sentimentColumn},
			render: func(p string) error { return charts.SentimentDistribution(set, sentimentColumn, p) },
		},
		{
			name:   "sentiment_trends.png",
			needs:  []string{dateColumn, sentimentColumn},
			render: func(p string) error { return charts.SentimentTrends(set, dateColumn, sentimentColumn, p) },
		},
	})
}

// run renders what it can; a chart with a missing column or no data is skipped.
// It fails when nothing was rendered or a render hits an IO problem
func (s *Service) run(ctx context.Context, set records.Set, cs []chart) (domain.Artifacts, error) {
	log := logger.C(ctx)
	var out domain.Artifacts
	for _, c := range cs {
		if missing := firstMissing(set, c.needs); missing != "" {
			log.Warn().Str("chart", c.name).Str("column", missing).Msg("column missing; chart skipped")
			out.Skipped = append(out.Skipped, c.name)
			continue
		}
		path := filepath.Join(s.cfg.OutputDir, c.name)
		if err := c.render(path); err != nil {
			if errors.Is(err, charts.ErrNoData) {
				log.Warn().Str("chart", c.name).Msg("no data; chart skipped")
				out.Skipped = append(out.Skipped, c.name)
				continue
			}
			err = perr.Wrapf(err, perr.ErrorCodeIO, "render %s", c.name)
			log.Error().Err(err).Msg("chart render failed")
			return out, err
		}
		log.Info().Str("path", path).Msg("chart written")
		out.Files = append(out.Files, path)
	}
	if len(out.Files) == 0 {
		return out, perr.Validationf("analyze: nothing to plot (skipped %v)", out.Skipped)
	}
	return out, nil
}

func firstMissing(set records.Set, cols []string) string {
	for _, c := range cols {
		if !set.HasColumn(c) {
			return c
		}
	}
	return ""
}
