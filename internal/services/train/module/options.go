package module

import (
	"reviewpipe/internal/adapters/encoder"
	"reviewpipe/internal/core/linear"
	"reviewpipe/internal/core/softmax"
	"reviewpipe/internal/platform/config"
	"reviewpipe/internal/services/train/service"
)

// Encoder backends
const (
	EncoderONNX = "onnx"
	EncoderHash = "hash"
)

// Options holds configuration settings for the train module
type Options struct {
	Service service.Config
	Encoder string
	ONNX    encoder.Options
}

// TransformerConfigured reports whether FineTuneTransformer has an encoder to run
func (o Options) TransformerConfigured() bool {
	return o.Encoder == EncoderHash || o.ONNX.ModelPath != ""
}

// FromConfig extracts Options from the TRAIN_, MODEL_, TRANSFORMER_ and REPORT_ namespaces
func FromConfig(cfg config.Conf) Options {
	tr := cfg.Prefix("TRAIN_")
	md := cfg.Prefix("MODEL_")
	tf := cfg.Prefix("TRANSFORMER_")

	lin := linear.DefaultOptions()
	lin.C = tr.MayFloat64("C", lin.C)
	lin.MaxIter = tr.MayInt("MAX_ITER", lin.MaxIter)
	lin.LearningRate = tr.MayFloat64("LEARNING_RATE", lin.LearningRate)

	head := softmax.DefaultOptions()
	head.NumLabels = tf.MayInt("NUM_LABELS", head.NumLabels)
	head.Epochs = tf.MayInt("EPOCHS", head.Epochs)
	head.BatchSize = tf.MayInt("BATCH_SIZE", head.BatchSize)
	head.LearningRate = tf.MayFloat64("LEARNING_RATE", head.LearningRate)

	seed := tr.MayUint64("SEED", 42)
	head.Seed = seed
	maxLen := tf.MayInt("MAX_LEN", 128)
	modelPath := tf.MayString("MODEL_PATH", "")

	return Options{
		Service: service.Config{
			TestSize:       tr.MayFloat64("TEST_SIZE", 0.2),
			Seed:           seed,
			MaxFeatures:    tr.MayInt("MAX_FEATURES", 5000),
			Linear:         lin,
			Head:           head,
			LogisticPath:   md.MayString("LOGISTIC_PATH", ""),
			VectorizerPath: md.MayString("VECTORIZER_PATH", ""),
			TransformerDir: md.MayString("TRANSFORMER_DIR", ""),
			ReportPath:     cfg.Prefix("REPORT_").MayString("XLSX_PATH", ""),
			EncoderModel:   modelPath,
			MaxLen:         maxLen,
		},
		Encoder: tf.MayEnum("ENCODER", EncoderONNX, EncoderONNX, EncoderHash),
		ONNX: encoder.Options{
			ModelPath:   modelPath,
			VocabPath:   tf.MayString("VOCAB_PATH", ""),
			LibraryPath: tf.MayString("ORT_LIBRARY", ""),
			OutputName:  tf.MayString("OUTPUT_NAME", "output"),
			Dimensions:  tf.MayInt("DIMENSIONS", 0),
			MaxLen:      maxLen,
		},
	}
}

// Opener returns the encoder factory for the configured backend, nil when none is configured
func (o Options) Opener() func() (encoder.Embedder, error) {
	switch {
	case o.Encoder == EncoderHash:
		dim := o.ONNX.Dimensions
		return func() (encoder.Embedder, error) { return encoder.NewHashEmbedder(dim), nil }
	case o.ONNX.ModelPath != "":
		onnx := o.ONNX
		return func() (encoder.Embedder, error) { return encoder.Open(onnx) }
	default:
		return nil
	}
}
