package asr

import (
	"fmt"
	"os"
	"time"

	sherpa "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"
)

// Recognizer wraps a sherpa-onnx offline recognizer.
type Recognizer struct {
	config     *Config
	recognizer *sherpa.OfflineRecognizer
}

// NewRecognizer creates a recognizer from the given configuration.
func NewRecognizer(config *Config) (*Recognizer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	modelConfig := sherpa.OfflineModelConfig{
		Tokens:     config.TokensPath,
		NumThreads: config.NumThreads,
		Provider:   config.Provider,
		Debug:      0,
	}
	if config.ParaformerPath != "" {
		modelConfig.Paraformer = sherpa.OfflineParaformerModelConfig{
			Model: config.ParaformerPath,
		}
	} else {
		modelConfig.Transducer = sherpa.OfflineTransducerModelConfig{
			Encoder: config.EncoderPath,
			Decoder: config.DecoderPath,
			Joiner:  config.JoinerPath,
		}
	}

	sherpaConfig := sherpa.OfflineRecognizerConfig{
		FeatConfig: sherpa.FeatureConfig{
			SampleRate: config.SampleRate,
			FeatureDim: 80,
		},
		ModelConfig:    modelConfig,
		DecodingMethod: config.DecodingMethod,
		MaxActivePaths: config.MaxActivePaths,
		HotwordsFile:   config.HotwordsFile,
		HotwordsScore:  config.HotwordsScore,
	}
	if config.LMPath != "" {
		sherpaConfig.LmConfig = sherpa.OfflineLMConfig{
			Model: config.LMPath,
			Scale: config.LMScale,
		}
	}

	recognizer := sherpa.NewOfflineRecognizer(&sherpaConfig)
	if recognizer == nil {
		return nil, fmt.Errorf("failed to create offline recognizer for %s", config.ModelPath)
	}

	return &Recognizer{
		config:     config,
		recognizer: recognizer,
	}, nil
}

// TranscribeFile transcribes a WAV file.
func (r *Recognizer) TranscribeFile(audioPath string) (*Result, error) {
	samples, err := r.readWavFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}
	return r.TranscribeSamples(samples, r.config.SampleRate)
}

// TranscribeSamples transcribes raw 16-bit mono audio samples.
func (r *Recognizer) TranscribeSamples(samples []float32, sampleRate int) (*Result, error) {
	startTime := time.Now()

	stream := sherpa.NewOfflineStream(r.recognizer)
	defer sherpa.DeleteOfflineStream(stream)

	stream.AcceptWaveform(sampleRate, samples)
	r.recognizer.Decode(stream)
	text := stream.GetResult().Text

	return &Result{
		Text:     text,
		Duration: time.Since(startTime).Seconds(),
	}, nil
}

// Close releases the underlying recognizer.
func (r *Recognizer) Close() error {
	if r.recognizer != nil {
		sherpa.DeleteOfflineRecognizer(r.recognizer)
		r.recognizer = nil
	}
	return nil
}

func (r *Recognizer) readWavFile(path string) ([]float32, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}

	samples := sherpa.ReadWave(path)
	if samples == nil || len(samples.Samples) == 0 {
		return nil, fmt.Errorf("failed to read WAV file or file is empty: %s", path)
	}

	return samples.Samples, nil
}
