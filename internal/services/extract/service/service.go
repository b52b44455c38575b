// Package service implements extraction from the SQL source and the reviews API
package service

import (
	"context"
	"strings"
	"time"

	"reviewpipe/internal/core/records"
	perr "reviewpipe/internal/platform/errors"
	"reviewpipe/internal/platform/logger"
	"reviewpipe/internal/services/extract/domain"
)

// Service implements domain.ExtractorPort
type Service struct {
	open domain.SourceOpener
	api  domain.API
}

// New constructs the extract service; either collaborator may be nil when that source is not configured
func New(open domain.SourceOpener, api domain.API) *Service {
	return &Service{open: open, api: api}
}

// ExtractSQL opens the source, runs query, and closes the source before returning
func (s *Service) ExtractSQL(ctx context.Context, query string) (set records.Set, err error) {
	log := logger.C(ctx)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("sql extraction panicked")
			set, err = records.Set{}, perr.PanicErrf("extract sql: %v", r)
		}
	}()

	if strings.TrimSpace(query) == "" {
		return records.Set{}, perr.InvalidArgf("extract sql: empty query")
	}
	if s.open == nil {
		return records.Set{}, perr.InvalidArgf("extract sql: no sql source configured")
	}

	start := time.Now()
	src, err := s.open(ctx)
	if err != nil {
		err = perr.WithOp(err, "extract.sql.open")
		log.Error().Err(err).Msg("sql source unavailable")
		return records.Set{}, err
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("close sql source")
		}
	}()

	set, err = src.QuerySet(ctx, query)
	if err != nil {
		err = perr.WithOp(perr.AttachFieldFromPg(perr.FromPostgres(err, "extract sql: query failed")), "extract.sql.query")
		log.Error().Err(err).Msg("sql query failed")
		return records.Set{}, err
	}
	if set.Rows == nil {
		set.Rows = []records.Record{}
	}
	log.Info().Int("rows", set.Len()).Strs("columns", set.Columns).Dur("elapsed", time.Since(start)).Msg("sql extraction done")
	return set, nil
}

// ExtractAPI fetches the configured endpoint
func (s *Service) ExtractAPI(ctx context.Context) (records.Set, error) {
	log := logger.C(ctx)
	if s.api == nil {
		return records.Set{}, perr.InvalidArgf("extract api: no api source configured")
	}
	start := time.Now()
	set, err := s.api.Fetch(ctx)
	if err != nil {
		err = perr.WithOp(err, "extract.api")
		log.Error().Err(err).Msg("api extraction failed")
		return records.Set{}, err
	}
	if set.Rows == nil {
		set.Rows = []records.Record{}
	}
	log.Info().Int("rows", set.Len()).Dur("elapsed", time.Since(start)).Msg("api extraction done")
	return set, nil
}

// SaveCSV writes set to path, creating parent directories
func (s *Service) SaveCSV(ctx context.Context, set records.Set, path string) error {
	if err := records.SaveCSV(path, set); err != nil {
		err = perr.Wrapf(err, perr.ErrorCodeIO, "save %s", path)
		logger.C(ctx).Error().Err(err).Msg("save csv failed")
		return err
	}
	logger.C(ctx).Info().Str("path", path).Int("rows", set.Len()).Msg("data saved")
	return nil
}
