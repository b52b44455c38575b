// Package domain declares the clean ports
package domain

import (
	"context"

	"reviewpipe/internal/core/records"
)

// TextCleaner normalizes one raw value into a token string
type TextCleaner interface {
	CleanText(raw any) string
}

// PreprocessorPort is the external port of the clean module
type PreprocessorPort interface {
	// Preprocess replaces column with its cleaned text on a copy of set.
	// On failure the original set is returned alongside the error
	Preprocess(ctx context.Context, set records.Set, column string) (records.Set, error)
}
