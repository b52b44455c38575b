// Package domain declares the analyze ports
package domain

import (
	"context"

	"reviewpipe/internal/core/records"
)

// Artifacts lists the files one analysis produced
type Artifacts struct {
	Files   []string `json:"files"`
	Skipped []string `json:"skipped,omitempty"`
}

// AnalyzerPort is the external port of the analyze module
type AnalyzerPort interface {
	// Analyze renders the rating distribution and top terms of textColumn
	Analyze(ctx context.Context, set records.Set, textColumn string) (Artifacts, error)
	// AnalyzePredictions renders sentiment distribution and daily trends
	AnalyzePredictions(ctx context.Context, set records.Set, dateColumn, sentimentColumn string) (Artifacts, error)
}
