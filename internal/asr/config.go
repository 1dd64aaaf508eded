package asr

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the configuration for the offline recognizer.
//
// Two model layouts are supported: transducer models split into
// encoder/decoder/joiner graphs, and single-graph Paraformer models
// (model.onnx). NewConfig detects which layout a model directory uses.
type Config struct {
	ModelPath string // base directory for the model

	// Transducer graphs (empty when ParaformerPath is set)
	EncoderPath string
	DecoderPath string
	JoinerPath  string

	// Single-graph Paraformer model (empty for transducer layouts)
	ParaformerPath string

	TokensPath string
	NumThreads int
	SampleRate int

	// Decoding options
	DecodingMethod string // "greedy_search" or "modified_beam_search"
	MaxActivePaths int    // beam width for modified_beam_search

	// Hotword biasing (modified_beam_search only)
	HotwordsFile  string
	HotwordsScore float32

	// Optional LM fusion
	LMPath  string
	LMScale float32

	// Provider is the ONNX execution provider ("cpu" or "cuda").
	Provider string
}

// NewConfig creates a configuration from a model directory, detecting the
// model layout and preferring int8 quantized graphs where present.
func NewConfig(modelDir string) (*Config, error) {
	config := &Config{
		ModelPath:      modelDir,
		NumThreads:     2,
		SampleRate:     16000,
		DecodingMethod: "greedy_search",
		MaxActivePaths: 4,
		Provider:       "cpu",
	}

	tokensPath := findModelFile(modelDir, []string{"tokens.txt"})
	if tokensPath == "" {
		return nil, fmt.Errorf("tokens.txt not found in %s", modelDir)
	}
	config.TokensPath = tokensPath

	// Paraformer layout: one graph for the whole model.
	if paraformer := findModelFile(modelDir, []string{"model.int8.onnx", "model.onnx"}); paraformer != "" {
		config.ParaformerPath = paraformer
		return config, nil
	}

	encoderPath := findModelFile(modelDir, []string{
		"encoder-epoch-99-avg-1.int8.onnx",
		"encoder.int8.onnx",
		"encoder-epoch-99-avg-1.onnx",
		"encoder.onnx",
	})
	if encoderPath == "" {
		return nil, fmt.Errorf("no model graphs found in %s (want model.onnx or encoder/decoder/joiner)", modelDir)
	}
	config.EncoderPath = encoderPath

	decoderPath := findModelFile(modelDir, []string{
		"decoder-epoch-99-avg-1.onnx",
		"decoder.onnx",
	})
	if decoderPath == "" {
		return nil, fmt.Errorf("decoder model not found in %s", modelDir)
	}
	config.DecoderPath = decoderPath

	joinerPath := findModelFile(modelDir, []string{
		"joiner-epoch-99-avg-1.int8.onnx",
		"joiner.int8.onnx",
		"joiner-epoch-99-avg-1.onnx",
		"joiner.onnx",
	})
	if joinerPath == "" {
		return nil, fmt.Errorf("joiner model not found in %s", modelDir)
	}
	config.JoinerPath = joinerPath

	return config, nil
}

// Validate checks that all referenced model files exist.
func (c *Config) Validate() error {
	files := map[string]string{
		"tokens": c.TokensPath,
	}
	if c.ParaformerPath != "" {
		files["model"] = c.ParaformerPath
	} else {
		files["encoder"] = c.EncoderPath
		files["decoder"] = c.DecoderPath
		files["joiner"] = c.JoinerPath
	}
	if c.HotwordsFile != "" {
		files["hotwords"] = c.HotwordsFile
	}
	if c.LMPath != "" {
		files["lm"] = c.LMPath
	}

	for name, path := range files {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("%s file not found: %s", name, path)
		}
	}

	return nil
}

// findModelFile returns the first candidate that exists under dir, or "".
func findModelFile(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
