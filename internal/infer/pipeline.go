package infer

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"murmur/internal/asr"
	"murmur/internal/device"
	"murmur/internal/manifest"
)

// resultDirName is the subdirectory of the output dir that receives the
// best-hypothesis transcripts.
const resultDirName = "1best_recog"

// Run executes one batch decoding job end to end: validate, pin the
// device, build the recognizer, then decode the corpus clip by clip.
// The transcript line for a clip is only written once that clip's
// decoding has fully completed.
func Run(opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	verbose := opts.debugLogging()

	// Device selection happens before the recognizer is built; the
	// runtime caches device visibility at first use.
	dctx, err := device.Select(opts.NGPU, opts.NJob, opts.GPUIDList, opts.OutputDir)
	if err != nil {
		return err
	}
	if err := dctx.Apply(); err != nil {
		return fmt.Errorf("failed to apply device context: %w", err)
	}
	if verbose {
		log.Printf("device: %s %s", dctx.Kind, dctx.GPUID)
	}

	audioIn, err := opts.AudioInput()
	if err != nil {
		return err
	}
	// The inference path reads the whole manifest; only export
	// calibration caps it.
	entries, err := manifest.Parse(audioIn, 0)
	if err != nil {
		return err
	}
	if verbose {
		log.Printf("corpus: %d clip(s) from %s", len(entries), audioIn)
	}

	resultDir := filepath.Join(opts.OutputDir, resultDirName)
	if err := os.MkdirAll(resultDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	config, err := buildConfig(opts, dctx, resultDir)
	if err != nil {
		return err
	}
	recognizer, err := asr.NewRecognizer(config)
	if err != nil {
		return err
	}
	defer recognizer.Close()

	textFile, err := os.Create(filepath.Join(resultDir, "text"))
	if err != nil {
		return fmt.Errorf("failed to create transcript file: %w", err)
	}
	defer textFile.Close()

	results := make([]*asr.Result, 0, len(entries))
	for _, entry := range entries {
		result, err := recognizer.TranscribeFile(entry.Path)
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", entry.Name, err)
		}
		result.Name = entry.Name
		if _, err := fmt.Fprintf(textFile, "%s %s\n", entry.Name, result.Text); err != nil {
			return fmt.Errorf("failed to write transcript: %w", err)
		}
		if verbose {
			log.Printf("%s: %s (%.2fs)", entry.Name, result.Text, result.Duration)
		}
		results = append(results, result)
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(filepath.Join(resultDir, "results.json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	return nil
}

// buildConfig maps driver options onto a recognizer configuration.
func buildConfig(opts Options, dctx device.Context, resultDir string) (*asr.Config, error) {
	config, err := asr.NewConfig(opts.ModelDir)
	if err != nil {
		return nil, err
	}
	config.Provider = dctx.Provider()
	config.NumThreads = opts.NumThreads
	if opts.BeamSize > 1 {
		config.DecodingMethod = "modified_beam_search"
		config.MaxActivePaths = opts.BeamSize
	}
	if opts.LMFile != "" {
		config.LMPath = opts.LMFile
		config.LMScale = float32(opts.LMWeight)
	}
	if opts.Hotword != "" {
		hotwordsFile, err := resolveHotwords(opts.Hotword, resultDir)
		if err != nil {
			return nil, err
		}
		config.HotwordsFile = hotwordsFile
		config.DecodingMethod = "modified_beam_search"
	}
	return config, nil
}

// resolveHotwords accepts either a hotword file path or space-separated
// hotwords. Inline words are written to a file under the result dir,
// one per line, since the recognizer only takes a file.
func resolveHotwords(hotword, resultDir string) (string, error) {
	if _, err := os.Stat(hotword); err == nil {
		return hotword, nil
	}
	path := filepath.Join(resultDir, "hotwords.txt")
	words := strings.Join(strings.Fields(hotword), "\n")
	if err := os.WriteFile(path, []byte(words+"\n"), 0644); err != nil {
		return "", fmt.Errorf("failed to write hotwords file: %w", err)
	}
	return path, nil
}
