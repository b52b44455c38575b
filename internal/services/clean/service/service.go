// Package service implements text preprocessing over record sets
package service

import (
	"context"
	"time"

	"reviewpipe/internal/core/records"
	perr "reviewpipe/internal/platform/errors"
	"reviewpipe/internal/platform/logger"
	"reviewpipe/internal/services/clean/domain"
)

// Service implements domain.PreprocessorPort
type Service struct {
	cleaner domain.TextCleaner
}

// New constructs the clean service
func New(c domain.TextCleaner) *Service { return &Service{cleaner: c} }

// Preprocess cleans column in every row. Row order, row count and all other columns are preserved
func (s *Service) Preprocess(ctx context.Context, set records.Set, column string) (out records.Set, err error) {
	log := logger.C(ctx)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("column", column).Msg("preprocess panicked; returning original data")
			out, err = set, perr.PanicErrf("preprocess: %v", r)
		}
	}()

	if !set.HasColumn(column) {
		err := perr.WithField(perr.Validationf("preprocess: column %q not found", column), column)
		log.Error().Err(err).Strs("columns", set.Columns).Msg("preprocess failed; returning original data")
		return set, err
	}

	start := time.Now()
	out = set.Clone()
	emptied := 0
	for _, r := range out.Rows {
		cleaned := s.cleaner.CleanText(r[column])
		if cleaned == "" {
			emptied++
		}
		r[column] = cleaned
	}
	log.Info().
		Str("column", column).
		Int("rows", out.Len()).
		Int("empty_after_clean", emptied).
		Dur("elapsed", time.Since(start)).
		Msg("preprocess done")
	return out, nil
}
