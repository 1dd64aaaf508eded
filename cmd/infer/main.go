// Batch decoding driver: one process per job shard.
//
// A launcher starts N processes, each with an output dir ending in
// ".<job_index>"; njob consecutive shards share one GPU from -gpuid-list.
//
// Usage:
//
//	infer -output-dir exp/decode.3 -ngpu 1 -njob 2 -gpuid-list 0,1 \
//	      -model models/paraformer -data data/wav.scp,speech,sound
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"murmur/internal/infer"
)

// stringList collects repeatable flag values.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, " ") }

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func main() {
	defaults := infer.DefaultOptions()

	var data stringList
	var (
		configPath = flag.String("config", "", "YAML config file; flags override its values")
		outputDir  = flag.String("output-dir", defaults.OutputDir, "Output directory, ending in .<job_index> when GPUs are used")
		ngpu       = flag.Int("ngpu", defaults.NGPU, "Number of GPUs; 0 decodes on CPU")
		njob       = flag.Int("njob", defaults.NJob, "Number of jobs sharing each GPU")
		gpuidList  = flag.String("gpuid-list", defaults.GPUIDList, "Comma-separated visible GPU ids")
		modelDir   = flag.String("model", defaults.ModelDir, "Model directory path")
		threads    = flag.Int("threads", defaults.NumThreads, "Number of threads for inference")
		beamSize   = flag.Int("beam-size", defaults.BeamSize, "Beam size; 1 = greedy search")
		nbest      = flag.Int("nbest", defaults.NBest, "Number of hypotheses to output (only 1 is supported)")
		ctcWeight  = flag.Float64("ctc-weight", defaults.CTCWeight, "CTC rescoring weight (not implemented)")
		hotword    = flag.String("hotword", defaults.Hotword, "Hotword file path, or hotwords separated by spaces")
		lmFile     = flag.String("lm-file", defaults.LMFile, "LM model file for fusion")
		lmWeight   = flag.Float64("lm-weight", defaults.LMWeight, "LM fusion weight")
		wordLMFile = flag.String("word-lm-file", defaults.WordLMFile, "Word LM file (not implemented)")
		logLevel   = flag.String("log-level", defaults.LogLevel, "Log level: debug, info, warning or error")
		verbose    = flag.Bool("v", defaults.Verbose, "Verbose output (same as -log-level debug)")
	)
	flag.Var(&data, "data", "Input stream as path,name,type (repeatable)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	opts := defaults
	if *configPath != "" {
		if err := infer.LoadConfig(*configPath, &opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	// Explicitly set flags win over config file values.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output-dir":
			opts.OutputDir = *outputDir
		case "ngpu":
			opts.NGPU = *ngpu
		case "njob":
			opts.NJob = *njob
		case "gpuid-list":
			opts.GPUIDList = *gpuidList
		case "model":
			opts.ModelDir = *modelDir
		case "threads":
			opts.NumThreads = *threads
		case "beam-size":
			opts.BeamSize = *beamSize
		case "nbest":
			opts.NBest = *nbest
		case "ctc-weight":
			opts.CTCWeight = *ctcWeight
		case "hotword":
			opts.Hotword = *hotword
		case "lm-file":
			opts.LMFile = *lmFile
		case "lm-weight":
			opts.LMWeight = *lmWeight
		case "word-lm-file":
			opts.WordLMFile = *wordLMFile
		case "data":
			opts.Data = data
		case "log-level":
			opts.LogLevel = *logLevel
		case "v":
			opts.Verbose = *verbose
		}
	})

	if err := infer.Run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
