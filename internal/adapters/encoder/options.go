package encoder

import "fmt"

// Options configures Open and NewONNX
type Options struct {
	ModelPath   string // .onnx file
	VocabPath   string // vocab.txt; empty uses HashTokenizer
	LibraryPath string // onnxruntime shared library; empty uses the platform default
	OutputName  string // pooled output name, default "output"
	Dimensions  int    // default 768
	MaxLen      int    // default 128
	Tokenizer   Tokenizer
}

func (o Options) withDefaults() Options {
	if o.OutputName == "" {
		o.OutputName = "output"
	}
	if o.Dimensions <= 0 {
		o.Dimensions = 768
	}
	if o.MaxLen <= 0 {
		o.MaxLen = 128
	}
	if o.Tokenizer == nil {
		o.Tokenizer = HashTokenizer{}
	}
	return o
}

// Open loads the tokenizer named by o.VocabPath (if any) and starts an ONNX encoder
func Open(o Options) (Embedder, error) {
	if o.ModelPath == "" {
		return nil, fmt.Errorf("encoder: model path is required")
	}
	if o.Tokenizer == nil && o.VocabPath != "" {
		wp, err := LoadVocab(o.VocabPath)
		if err != nil {
			return nil, err
		}
		o.Tokenizer = wp
	}
	e, err := NewONNX(o)
	if err != nil {
		return nil, err
	}
	return e, nil
}
