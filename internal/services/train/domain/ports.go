// Package domain declares the train ports and model artifacts
package domain

import (
	"context"

	"reviewpipe/internal/adapters/encoder"
	"reviewpipe/internal/core/linear"
	"reviewpipe/internal/core/metrics"
	"reviewpipe/internal/core/records"
	"reviewpipe/internal/core/softmax"
	"reviewpipe/internal/core/tfidf"
	perr "reviewpipe/internal/platform/errors"
)

// ErrTransformerNotConfigured is returned by FineTuneTransformer when no encoder is available
var ErrTransformerNotConfigured = perr.New(perr.ErrorCodeInvalidArgument, "train: transformer encoder not configured")

// EncoderOpener starts the pretrained encoder for one training call
type EncoderOpener func() (encoder.Embedder, error)

// LinearArtifact is a fitted TF-IDF + logistic regression classifier
type LinearArtifact struct {
	Model      *linear.Model
	Vectorizer *tfidf.Vectorizer
	Report     metrics.ClassificationReport
	TrainRows  int
	TestRows   int
}

// Predict classifies one cleaned text
func (a *LinearArtifact) Predict(text string) string {
	rows, err := a.Vectorizer.Transform([]string{text})
	if err != nil {
		return ""
	}
	return a.Model.Predict(rows[0])
}

// TransformerArtifact is a classification head over a pretrained encoder
type TransformerArtifact struct {
	Head    *softmax.Head
	Encoder encoder.Embedder
	Report  metrics.ClassificationReport
	Rows    int
}

// Predict classifies one text; "" when the encoder fails
func (a *TransformerArtifact) Predict(text string) string {
	v, err := a.Encoder.Embed(context.Background(), text)
	if err != nil {
		return ""
	}
	return a.Head.Predict(v)
}

// Close releases the encoder
func (a *TransformerArtifact) Close() error {
	if a == nil || a.Encoder == nil {
		return nil
	}
	return a.Encoder.Close()
}

// TrainerPort is the external port of the train module
type TrainerPort interface {
	// TrainLinear fits TF-IDF + logistic regression on an 80/20 split and scores the held-out side
	TrainLinear(ctx context.Context, set records.Set, textColumn, labelColumn string) (*LinearArtifact, error)
	// FineTuneTransformer fits a softmax head on encoder embeddings of every labeled row
	FineTuneTransformer(ctx context.Context, set records.Set, textColumn, labelColumn string) (*TransformerArtifact, error)
}
