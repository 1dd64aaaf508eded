package main

import (
	"flag"
	"fmt"
	"os"

	"murmur/internal/asr"
)

func main() {
	// Define flags
	var (
		inputFile  = flag.String("i", "", "Input audio file (WAV format)")
		outputFile = flag.String("o", "", "Output file (default: stdout)")
		format     = flag.String("format", "text", "Output format: text, json, srt")
		modelDir   = flag.String("model", "models/sherpa-onnx-paraformer-zh-2023-09-14", "Model directory path")
		method     = flag.String("method", "greedy_search", "Decoding method: greedy_search or modified_beam_search")
		beam       = flag.Int("beam", 4, "Max active paths for beam search")
		numThreads = flag.Int("threads", 2, "Number of threads for inference")
		chunkSec   = flag.Int("chunk", 0, "Chunk size in seconds for long audio (0 = decode whole file)")
		verbose    = flag.Bool("v", false, "Verbose output")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -i audio.wav\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -i audio.wav -o output.txt\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -i audio.mp3 -chunk 20 -format srt -o subtitles.srt\n", os.Args[0])
	}

	flag.Parse()

	if *inputFile == "" {
		fmt.Fprintf(os.Stderr, "Error: Input file is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	if _, err := os.Stat(*inputFile); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: Input file not found: %s\n", *inputFile)
		os.Exit(1)
	}

	if *format != "text" && *format != "json" && *format != "srt" {
		fmt.Fprintf(os.Stderr, "Error: Invalid format '%s'. Must be: text, json, or srt\n", *format)
		os.Exit(1)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "Loading model from: %s\n", *modelDir)
	}

	config, err := asr.NewConfig(*modelDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to load model config: %v\n", err)
		fmt.Fprintf(os.Stderr, "\nHint: Download a model first, e.g.:\n")
		fmt.Fprintf(os.Stderr, "  curl -SL -O https://github.com/k2-fsa/sherpa-onnx/releases/download/asr-models/sherpa-onnx-paraformer-zh-2023-09-14.tar.bz2\n")
		fmt.Fprintf(os.Stderr, "  tar xvf sherpa-onnx-paraformer-zh-2023-09-14.tar.bz2 -C models/\n")
		os.Exit(1)
	}
	config.NumThreads = *numThreads
	config.DecodingMethod = *method
	config.MaxActivePaths = *beam

	if *verbose {
		fmt.Fprintf(os.Stderr, "Creating recognizer...\n")
	}

	recognizer, err := asr.NewRecognizer(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to create recognizer: %v\n", err)
		os.Exit(1)
	}
	defer recognizer.Close()

	if *verbose {
		fmt.Fprintf(os.Stderr, "Transcribing: %s\n", *inputFile)
	}

	var result *asr.Result
	if *chunkSec > 0 {
		result, err = recognizer.TranscribeLong(*inputFile, *chunkSec)
	} else {
		result, err = recognizer.TranscribeFile(*inputFile)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Transcription failed: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "Transcription completed in %.2f seconds\n", result.Duration)
	}

	var output string
	switch *format {
	case "json":
		output, err = result.FormatAsJSON()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to format JSON: %v\n", err)
			os.Exit(1)
		}
	case "srt":
		output = result.FormatAsSRT()
	default: // text
		output = result.FormatAsText()
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(output), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to write output file: %v\n", err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Fprintf(os.Stderr, "Output written to: %s\n", *outputFile)
		}
	} else {
		fmt.Println(output)
	}
}
