// Package domain declares the pipeline ports and run report
package domain

import (
	"context"
	"time"

	perr "reviewpipe/internal/platform/errors"
	analyzedom "reviewpipe/internal/services/analyze/domain"
	cleandom "reviewpipe/internal/services/clean/domain"
	extractdom "reviewpipe/internal/services/extract/domain"
	traindom "reviewpipe/internal/services/train/domain"
)

// Stage names in execution order
const (
	StageExtract          = "extract"
	StageClean            = "clean"
	StageAnalyze          = "analyze"
	StageTrainLinear      = "train_linear"
	StageTrainTransformer = "train_transformer"
)

// Stages lists every stage in order
var Stages = []string{StageExtract, StageClean, StageAnalyze, StageTrainLinear, StageTrainTransformer}

// Status of one stage
type Status string

// Stage statuses
const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusEmpty   Status = "empty"
)

// StageResult records what one stage did
type StageResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Rows      int           `json:"rows"`
	Duration  time.Duration `json:"-"`
	Millis    int64         `json:"duration_ms"`
	Artifacts []string      `json:"artifacts,omitempty"`
	Note      string        `json:"note,omitempty"`
	Error     *perr.Wire    `json:"error,omitempty"`
	Err       error         `json:"-"`
}

// Report is the outcome of one pipeline run
type Report struct {
	RunID      string        `json:"run_id"`
	Query      string        `json:"query"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Stages     []StageResult `json:"stages"`
	Error      *perr.Wire    `json:"error,omitempty"`
}

// Stage returns the result recorded for name
func (r Report) Stage(name string) (StageResult, bool) {
	for _, s := range r.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageResult{}, false
}

// Failed reports whether any stage failed
func (r Report) Failed() bool {
	for _, s := range r.Stages {
		if s.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Ports the pipeline needs from the stage modules
type Ports struct {
	Extractor    extractdom.ExtractorPort
	Preprocessor cleandom.PreprocessorPort
	Analyzer     analyzedom.AnalyzerPort
	Trainer      traindom.TrainerPort

	// TransformerEnabled is false when no encoder is configured; the stage is then skipped
	TransformerEnabled bool
}

// RunnerPort runs the pipeline once
type RunnerPort interface {
	Run(ctx context.Context, query string) (Report, error)
}
