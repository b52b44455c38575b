//go:build cgo

package encoder

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	ortInit  sync.Mutex
	ortReady bool
)

// ONNX runs a sentence encoder exported to ONNX with inputs input_ids,
// attention_mask, token_type_ids and a pooled [1, dim] output.
// It needs cgo and the onnxruntime shared library
type ONNX struct {
	session    *ort.AdvancedSession
	tokenizer  Tokenizer
	dimensions int
	maxLen     int

	inputIDs      *ort.Tensor[int64]
	attentionMask *ort.Tensor[int64]
	tokenTypeIDs  *ort.Tensor[int64]
	output        *ort.Tensor[float32]
	mu            sync.Mutex
}

// NewONNX creates the session and its pre-allocated tensors
func NewONNX(o Options) (*ONNX, error) {
	o = o.withDefaults()
	if err := initRuntime(o.LibraryPath); err != nil {
		return nil, err
	}

	zero := make([]int64, o.MaxLen)
	shape := ort.NewShape(1, int64(o.MaxLen))
	var tensors []interface{ Destroy() error }
	cleanup := func() {
		for _, t := range tensors {
			_ = t.Destroy()
		}
	}

	ids, err := ort.NewTensor(shape, append([]int64(nil), zero...))
	if err != nil {
		return nil, fmt.Errorf("encoder: input_ids tensor: %w", err)
	}
	tensors = append(tensors, ids)
	mask, err := ort.NewTensor(shape, append([]int64(nil), zero...))
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("encoder: attention_mask tensor: %w", err)
	}
	tensors = append(tensors, mask)
	types, err := ort.NewTensor(shape, append([]int64(nil), zero...))
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("encoder: token_type_ids tensor: %w", err)
	}
	tensors = append(tensors, types)
	out, err := ort.NewTensor(ort.NewShape(1, int64(o.Dimensions)), make([]float32, o.Dimensions))
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("encoder: output tensor: %w", err)
	}
	tensors = append(tensors, out)

	session, err := ort.NewAdvancedSession(
		o.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{o.OutputName},
		[]ort.ArbitraryTensor{ids, mask, types},
		[]ort.ArbitraryTensor{out},
		nil,
	)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("encoder: create session: %w", err)
	}

	return &ONNX{
		session:       session,
		tokenizer:     o.Tokenizer,
		dimensions:    o.Dimensions,
		maxLen:        o.MaxLen,
		inputIDs:      ids,
		attentionMask: mask,
		tokenTypeIDs:  types,
		output:        out,
	}, nil
}

func initRuntime(lib string) error {
	ortInit.Lock()
	defer ortInit.Unlock()
	if ortReady {
		return nil
	}
	if lib != "" {
		ort.SetSharedLibraryPath(lib)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("encoder: initialize onnx runtime: %w", err)
	}
	ortReady = true
	return nil
}

// Embed runs one forward pass and returns the L2-normalized pooled output
func (e *ONNX) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	enc := e.tokenizer.Encode(text, e.maxLen)

	e.mu.Lock()
	defer e.mu.Unlock()
	copy(e.inputIDs.GetData(), enc.InputIDs)
	copy(e.attentionMask.GetData(), enc.AttentionMask)
	copy(e.tokenTypeIDs.GetData(), enc.TokenTypeIDs)

	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("encoder: inference: %w", err)
	}
	emb := make([]float32, e.dimensions)
	copy(emb, e.output.GetData()[:e.dimensions])
	NormalizeL2(emb)
	return emb, nil
}

// EmbedBatch calls Embed for each text
func (e *ONNX) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, e, texts)
}

// Dimensions returns the embedding size
func (e *ONNX) Dimensions() int { return e.dimensions }

// Close destroys the session and tensors
func (e *ONNX) Close() error {
	var err error
	if e.session != nil {
		err = e.session.Destroy()
		e.session = nil
	}
	for _, t := range []*ort.Tensor[int64]{e.inputIDs, e.attentionMask, e.tokenTypeIDs} {
		if t != nil {
			_ = t.Destroy()
		}
	}
	if e.output != nil {
		_ = e.output.Destroy()
	}
	e.inputIDs, e.attentionMask, e.tokenTypeIDs, e.output = nil, nil, nil, nil
	return err
}
