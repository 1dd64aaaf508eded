// Package infer drives sharded batch decoding: one process per job,
// device selection from the output-dir suffix, corpus manifest in,
// recognition results out.
package infer

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"murmur/internal/manifest"
)

// ErrNotImplemented marks configuration that requests an unsupported
// feature. Such requests fail at startup instead of degrading silently.
var ErrNotImplemented = errors.New("not implemented")

// Options configures one batch decoding job. YAML keys mirror the flag
// names so a config file can pre-populate any of them.
type Options struct {
	OutputDir string `yaml:"output_dir"`

	// Device assignment
	NGPU      int    `yaml:"ngpu"`
	NJob      int    `yaml:"njob"`
	GPUIDList string `yaml:"gpuid_list"`

	// Model
	ModelDir   string `yaml:"model"`
	NumThreads int    `yaml:"threads"`

	// Input streams, each "path,name,type"
	Data []string `yaml:"data"`

	// Decoding
	BeamSize int     `yaml:"beam_size"`
	Hotword  string  `yaml:"hotword"` // file path, or words separated by spaces
	LMFile   string  `yaml:"lm_file"`
	LMWeight float64 `yaml:"lm_weight"`

	// Accepted for interface parity but not implemented; the recognizer
	// emits a single best hypothesis and has no CTC rescoring pass.
	// Requesting either is a startup error, as with WordLMFile.
	NBest     int     `yaml:"nbest"`
	CTCWeight float64 `yaml:"ctc_weight"`

	// Word-level LM fusion is accepted for interface parity but not
	// implemented; setting it is a startup error.
	WordLMFile string `yaml:"word_lm_file"`

	LogLevel string `yaml:"log_level"` // debug, info, warning or error
	Verbose  bool   `yaml:"verbose"`
}

// DefaultOptions returns the option defaults shared by flags and config
// files.
func DefaultOptions() Options {
	return Options{
		NJob:       1,
		NumThreads: 2,
		BeamSize:   1,
		NBest:      1,
		LMWeight:   1.0,
		LogLevel:   "info",
	}
}

// LoadConfig overlays a YAML config file onto opts. Flag values parsed
// after the overlay win over file values.
func LoadConfig(path string, opts *Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, opts); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// Validate fails fast on unusable options, before any device or model
// work happens.
func (o *Options) Validate() error {
	if o.OutputDir == "" {
		return fmt.Errorf("output dir is required")
	}
	if o.ModelDir == "" {
		return fmt.Errorf("model dir is required")
	}
	if len(o.Data) == 0 {
		return fmt.Errorf("at least one data argument (path,name,type) is required")
	}
	for _, d := range o.Data {
		if _, _, _, err := manifest.ParseTriple(d); err != nil {
			return err
		}
	}
	if o.NGPU > 1 {
		return fmt.Errorf("ngpu=%d: multi-GPU decoding is %w", o.NGPU, ErrNotImplemented)
	}
	if o.WordLMFile != "" {
		return fmt.Errorf("word LM fusion is %w", ErrNotImplemented)
	}
	if o.NBest > 1 {
		return fmt.Errorf("nbest=%d: n-best list output is %w", o.NBest, ErrNotImplemented)
	}
	if o.NBest < 1 {
		return fmt.Errorf("nbest must be >= 1, got %d", o.NBest)
	}
	if o.CTCWeight != 0 {
		return fmt.Errorf("ctc_weight=%g: ctc rescoring is %w", o.CTCWeight, ErrNotImplemented)
	}
	if o.NJob < 1 {
		return fmt.Errorf("njob must be >= 1, got %d", o.NJob)
	}
	switch o.LogLevel {
	case "", "debug", "info", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q (want debug, info, warning or error)", o.LogLevel)
	}
	return nil
}

// debugLogging reports whether per-clip progress should be logged.
func (o *Options) debugLogging() bool {
	return o.Verbose || o.LogLevel == "debug"
}

// AudioInput returns the manifest (or bare audio) path of the sound
// stream among the data arguments.
func (o *Options) AudioInput() (string, error) {
	for _, d := range o.Data {
		path, _, typ, err := manifest.ParseTriple(d)
		if err != nil {
			return "", err
		}
		if typ == "sound" {
			return path, nil
		}
	}
	return "", fmt.Errorf("no data argument of type \"sound\" given")
}
