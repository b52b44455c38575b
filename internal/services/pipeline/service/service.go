// Package service sequences extract, clean, analyze and the two training stages
package service

import (
	"context"
	"path/filepath"
	"time"

	"reviewpipe/internal/core/records"
	perr "reviewpipe/internal/platform/errors"
	"reviewpipe/internal/platform/logger"
	"reviewpipe/internal/services/pipeline/domain"
	traindom "reviewpipe/internal/services/train/domain"

	"github.com/google/uuid"
)

// Config for the pipeline service
type Config struct {
	TextColumn  string
	LabelColumn string
	DateColumn  string

	// SnapshotDir receives <run id>/raw.csv and <run id>/cleaned.csv when set
	SnapshotDir string
	// ContinueOnError keeps running later stages after a non-extract failure
	ContinueOnError bool
	// IncludeAPI appends the reviews API rows to the SQL rows during extraction
	IncludeAPI bool
	// PredictionCharts renders sentiment charts from the linear model's predictions
	PredictionCharts bool
}

// PredictedColumn holds linear-model predictions when PredictionCharts is set
const PredictedColumn = "predicted_sentiment"

// Service implements domain.RunnerPort
type Service struct {
	ports domain.Ports
	cfg   Config

	newID func() string
	now   func() time.Time
}

// New constructs the pipeline service
func New(ports domain.Ports, cfg Config) *Service {
	if cfg.TextColumn == "" {
		cfg.TextColumn = "review_text"
	}
	if cfg.LabelColumn == "" {
		cfg.LabelColumn = "sentiment"
	}
	if cfg.DateColumn == "" {
		cfg.DateColumn = "review_date"
	}
	return &Service{ports: ports, cfg: cfg, newID: uuid.NewString, now: time.Now}
}

// outcome is what a stage body hands back to the runner
type outcome struct {
	rows      int
	artifacts []string
	note      string
	empty     bool
}

type step struct {
	name     string
	disabled string
	run      func(ctx context.Context) (outcome, error)
}

// Run executes the stages in order. Extraction failure or an empty extraction always ends the run;
// other failures end it unless ContinueOnError is set. Stages not reached are recorded as skipped
func (s *Service) Run(ctx context.Context, query string) (rep domain.Report, err error) {
	id := s.newID()
	ctx = logger.WithRun(ctx, id)
	log := logger.C(ctx)

	rep = domain.Report{RunID: id, Query: query, StartedAt: s.now()}
	defer func() {
		rep.FinishedAt = s.now()
		if err != nil {
			w := perr.WireFrom(err)
			rep.Error = &w
		}
	}()
	log.Info().Str("query", query).Msg("pipeline run started")

	var raw, cleaned records.Set
	steps := []step{
		{name: domain.StageExtract, run: func(ctx context.Context) (outcome, error) {
			set, err := s.extract(ctx, query)
			if err != nil {
				return outcome{}, err
			}
			raw = set
			out := outcome{rows: set.Len(), empty: set.Empty()}
			if out.empty {
				out.note = "no rows extracted"
				return out, nil
			}
			out.artifacts = s.snapshot(ctx, id, "raw.csv", set)
			return out, nil
		}},
		{name: domain.StageClean, run: func(ctx context.Context) (outcome, error) {
			set, err := s.ports.Preprocessor.Preprocess(ctx, raw, s.cfg.TextColumn)
			cleaned = set
			if err != nil {
				return outcome{rows: set.Len()}, err
			}
			return outcome{rows: set.Len(), artifacts: s.snapshot(ctx, id, "cleaned.csv", set)}, nil
		}},
		{name: domain.StageAnalyze, run: func(ctx context.Context) (outcome, error) {
			art, err := s.ports.Analyzer.Analyze(ctx, cleaned, s.cfg.TextColumn)
			return outcome{rows: cleaned.Len(), artifacts: art.Files}, err
		}},
		{name: domain.StageTrainLinear, run: func(ctx context.Context) (outcome, error) {
			art, err := s.ports.Trainer.TrainLinear(ctx, cleaned, s.cfg.TextColumn, s.cfg.LabelColumn)
			if err != nil {
				return outcome{}, err
			}
			out := outcome{rows: art.TrainRows + art.TestRows}
			if s.cfg.PredictionCharts {
				out.artifacts = s.predictionCharts(ctx, cleaned, art)
			}
			return out, nil
		}},
		{name: domain.StageTrainTransformer, disabled: s.transformerDisabled(), run: func(ctx context.Context) (outcome, error) {
			art, err := s.ports.Trainer.FineTuneTransformer(ctx, cleaned, s.cfg.TextColumn, s.cfg.LabelColumn)
			if err != nil {
				return outcome{}, err
			}
			if cerr := art.Close(); cerr != nil {
				logger.C(ctx).Warn().Err(cerr).Msg("close encoder")
			}
			return outcome{rows: art.Rows}, nil
		}},
	}

	var firstErr error
	for i, st := range steps {
		if st.disabled != "" {
			rep.Stages = append(rep.Stages, skipped(st.name, st.disabled))
			continue
		}
		res := s.stage(ctx, st)
		rep.Stages = append(rep.Stages, res)

		switch {
		case res.Status == domain.StatusEmpty:
			skipRest(&rep, steps[i+1:], "nothing to process")
			log.Warn().Str("stage", st.name).Msg("pipeline ended early: empty result")
			return rep, nil
		case res.Err == nil:
			continue
		case i == 0 || !s.cfg.ContinueOnError:
			skipRest(&rep, steps[i+1:], "aborted after "+st.name+" failure")
			log.Error().Err(res.Err).Str("failed_stage", st.name).Msg("pipeline aborted")
			return rep, res.Err
		default:
			if firstErr == nil {
				firstErr = res.Err
			}
			log.Warn().Err(res.Err).Str("failed_stage", st.name).Msg("stage failed; continuing")
		}
	}

	log.Info().
		Bool("failed", rep.Failed()).
		Dur("elapsed", s.now().Sub(rep.StartedAt)).
		Msg("pipeline run finished")
	if firstErr != nil {
		w := perr.WireFrom(firstErr)
		rep.Error = &w
	}
	return rep, nil
}

// stage runs one step with panic recovery and timing
func (s *Service) stage(ctx context.Context, st step) (res domain.StageResult) {
	ctx = logger.WithStage(ctx, st.name)
	log := logger.C(ctx)
	start := s.now()
	res.Name = st.name

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("stage panicked")
			res.Err = perr.PanicErrf("%s: %v", st.name, r)
		}
		res.Duration = s.now().Sub(start)
		res.Millis = res.Duration.Milliseconds()
		switch {
		case res.Err != nil:
			res.Status = domain.StatusFailed
			w := perr.WireFrom(res.Err)
			res.Error = &w
			log.Error().Err(res.Err).Dur("elapsed", res.Duration).Msg("stage failed")
		case res.Status == domain.StatusEmpty:
			log.Warn().Dur("elapsed", res.Duration).Msg("stage produced no rows")
		default:
			res.Status = domain.StatusOK
			log.Info().Int("rows", res.Rows).Dur("elapsed", res.Duration).Msg("stage complete")
		}
	}()

	out, err := st.run(ctx)
	res.Rows, res.Artifacts, res.Note, res.Err = out.rows, out.artifacts, out.note, err
	if out.empty {
		res.Status = domain.StatusEmpty
	}
	return res
}

// extract reads the SQL source and, when enabled, appends the API rows
func (s *Service) extract(ctx context.Context, query string) (records.Set, error) {
	set, err := s.ports.Extractor.ExtractSQL(ctx, query)
	if err != nil {
		return records.Set{}, err
	}
	if !s.cfg.IncludeAPI {
		return set, nil
	}
	api, err := s.ports.Extractor.ExtractAPI(ctx)
	if err != nil {
		return records.Set{}, err
	}
	for _, r := range api.Rows {
		set.Append(r, api.Columns...)
	}
	logger.C(ctx).Info().Int("sql_rows", set.Len()-api.Len()).Int("api_rows", api.Len()).Msg("sources merged")
	return set, nil
}

// snapshot writes a CSV copy when SnapshotDir is set; failures are logged and ignored
func (s *Service) snapshot(ctx context.Context, runID, name string, set records.Set) []string {
	if s.cfg.SnapshotDir == "" {
		return nil
	}
	path := filepath.Join(s.cfg.SnapshotDir, runID, name)
	if err := s.ports.Extractor.SaveCSV(ctx, set, path); err != nil {
		logger.C(ctx).Warn().Err(err).Str("path", path).Msg("snapshot not written")
		return nil
	}
	return []string{path}
}

// predictionCharts labels every cleaned row with the linear model and renders the sentiment charts
func (s *Service) predictionCharts(ctx context.Context, set records.Set, art *traindom.LinearArtifact) []string {
	scored := set.Clone()
	if !scored.HasColumn(PredictedColumn) {
		scored.Columns = append(scored.Columns, PredictedColumn)
	}
	for _, r := range scored.Rows {
		r[PredictedColumn] = art.Predict(records.Text(r[s.cfg.TextColumn]))
	}
	charts, err := s.ports.Analyzer.AnalyzePredictions(ctx, scored, s.cfg.DateColumn, PredictedColumn)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Msg("prediction charts not rendered")
	}
	return charts.Files
}

func (s *Service) transformerDisabled() string {
	if s.ports.TransformerEnabled {
		return ""
	}
	return "transformer encoder not configured"
}

func skipped(name, note string) domain.StageResult {
	return domain.StageResult{Name: name, Status: domain.StatusSkipped, Note: note}
}

func skipRest(rep *domain.Report, rest []step, note string) {
	for _, st := range rest {
		rep.Stages = append(rep.Stages, skipped(st.name, note))
	}
}
