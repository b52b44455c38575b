//go:build !cgo

package encoder

import (
	"context"
	"errors"
)

// ErrNoCGO is returned by NewONNX in builds without cgo
var ErrNoCGO = errors.New("encoder: onnx runtime requires cgo; build with CGO_ENABLED=1 and onnxruntime installed")

// ONNX stub type when built without cgo (see onnx.go)
type ONNX struct{}

// NewONNX returns ErrNoCGO
func NewONNX(Options) (*ONNX, error) { return nil, ErrNoCGO }

// Embed implements Embedder
func (*ONNX) Embed(context.Context, string) ([]float32, error) { return nil, ErrNoCGO }

// EmbedBatch implements Embedder
func (*ONNX) EmbedBatch(context.Context, []string) ([][]float32, error) { return nil, ErrNoCGO }

// Dimensions implements Embedder
func (*ONNX) Dimensions() int { return 0 }

// Close implements Embedder
func (*ONNX) Close() error { return nil }
