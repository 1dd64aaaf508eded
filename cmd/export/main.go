// Export driver: serializes trained model components to ONNX graphs.
//
// Usage:
//
//	export -model-dir exp/conformer -export-dir exp/conformer/onnx
//	export -model-dir exp/conformer -export-dir out -component encoder -quantize
//
// Re-running is cheap: components whose graph file already exists are
// skipped without touching the file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"murmur/internal/export"
)

func main() {
	var (
		modelDir   = flag.String("model-dir", "", "Trained model directory")
		exportDir  = flag.String("export-dir", "", "Directory for exported graphs")
		components = flag.String("component", "", "Comma-separated components to export (default: encoder,decoder,ctc)")
		quantize   = flag.Bool("quantize", false, "Also export int8 quantized graphs")
		audioIn    = flag.String("audio-in", "", "Calibration audio: wav file or wav.scp manifest")
		calibNum   = flag.Int("calib-num", export.DefaultCalibNum, "Max calibration clips read from a manifest")
		pythonBin  = flag.String("python-bin", "", "Python interpreter for the export helper (default: python3)")
		script     = flag.String("script", "tools/export_graph.py", "Export helper script path")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *modelDir == "" || *exportDir == "" {
		fmt.Fprintf(os.Stderr, "Error: -model-dir and -export-dir are required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	selected := export.AllComponents()
	if *components != "" {
		selected = selected[:0]
		for _, name := range strings.Split(*components, ",") {
			component, err := export.ParseComponent(strings.TrimSpace(name))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			selected = append(selected, component)
		}
	}

	exporter := &export.Exporter{
		ModelDir:  *modelDir,
		ExportDir: *exportDir,
		Quantize:  *quantize,
		AudioIn:   *audioIn,
		CalibNum:  *calibNum,
		Writer: &export.PythonGraphWriter{
			PythonBin: *pythonBin,
			Script:    *script,
			Stdout:    os.Stdout,
			Stderr:    os.Stderr,
		},
	}

	if err := exporter.Export(context.Background(), selected); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
