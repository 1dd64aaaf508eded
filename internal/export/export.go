// Package export serializes trained model components to ONNX graphs.
//
// The component set is a closed enumeration: each component carries its
// graph name and tensor naming metadata in a lookup table, and the actual
// graph serialization is delegated to a GraphWriter. Export is idempotent
// by file presence: a component whose target graph already exists on disk
// is skipped without touching the file.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"murmur/internal/manifest"
)

// Component identifies one exportable sub-model.
type Component int

const (
	ComponentEncoder Component = iota
	ComponentDecoder
	ComponentCTC
)

// DefaultCalibNum caps the calibration manifest read during export. The
// inference driver reads manifests uncapped; only export samples.
const DefaultCalibNum = 200

// opsetVersion is the ONNX opset the graphs are exported with.
const opsetVersion = 14

type componentSpec struct {
	name        string
	inputNames  []string
	outputNames []string
	// dynamicAxes maps tensor names to the axes that stay symbolic
	// (batch, time) in the exported graph.
	dynamicAxes map[string][]int
}

var componentSpecs = map[Component]componentSpec{
	ComponentEncoder: {
		name:        "encoder",
		inputNames:  []string{"speech", "speech_lengths"},
		outputNames: []string{"encoder_out", "encoder_out_lens"},
		dynamicAxes: map[string][]int{
			"speech":      {0, 1},
			"encoder_out": {0, 1},
		},
	},
	ComponentDecoder: {
		name:        "decoder",
		inputNames:  []string{"encoder_out", "encoder_out_lens", "ys_pad", "ys_pad_lens"},
		outputNames: []string{"logits"},
		dynamicAxes: map[string][]int{
			"encoder_out": {0, 1},
			"ys_pad":      {0, 1},
			"logits":      {0, 1},
		},
	},
	ComponentCTC: {
		name:        "ctc",
		inputNames:  []string{"encoder_out"},
		outputNames: []string{"ctc_logits"},
		dynamicAxes: map[string][]int{
			"encoder_out": {0, 1},
			"ctc_logits":  {0, 1},
		},
	},
}

func (c Component) String() string {
	spec, ok := componentSpecs[c]
	if !ok {
		return fmt.Sprintf("component(%d)", int(c))
	}
	return spec.name
}

// ParseComponent maps a component name from the CLI onto the enumeration.
func ParseComponent(name string) (Component, error) {
	for c, spec := range componentSpecs {
		if spec.name == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown component %q (want encoder, decoder or ctc)", name)
}

// GraphRequest describes one graph to serialize.
type GraphRequest struct {
	ModelDir    string            `json:"model_dir"`
	Component   string            `json:"component"`
	OutputPath  string            `json:"output_path"`
	Opset       int               `json:"opset"`
	Quantize    bool              `json:"quantize"`
	InputNames  []string          `json:"input_names"`
	OutputNames []string          `json:"output_names"`
	DynamicAxes map[string][]int  `json:"dynamic_axes"`
	CalibClips  []manifest.Entry  `json:"calib_clips,omitempty"`
}

// GraphWriter serializes one component graph to disk. The production
// implementation delegates to external tooling; tests substitute fakes.
type GraphWriter interface {
	WriteGraph(ctx context.Context, req GraphRequest) error
}

// Exporter exports model components into a target directory.
type Exporter struct {
	ModelDir  string
	ExportDir string
	Quantize  bool

	// AudioIn optionally names calibration audio: either a manifest
	// (.scp, capped at CalibNum) or a single audio file.
	AudioIn  string
	CalibNum int

	Writer GraphWriter
}

// Export serializes the given components. For each component the float
// graph is produced first and, when quantization is requested, an int8
// variant follows. A target file that already exists is left untouched
// and its component skipped.
func (e *Exporter) Export(ctx context.Context, components []Component) error {
	if err := os.MkdirAll(e.ExportDir, 0755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}

	clips, err := e.calibrationClips()
	if err != nil {
		return err
	}

	for _, component := range components {
		spec, ok := componentSpecs[component]
		if !ok {
			return fmt.Errorf("unknown component %d", int(component))
		}
		if err := e.exportOne(ctx, spec, clips, false); err != nil {
			return fmt.Errorf("failed to export %s: %w", spec.name, err)
		}
		if e.Quantize {
			if err := e.exportOne(ctx, spec, clips, true); err != nil {
				return fmt.Errorf("failed to export %s (int8): %w", spec.name, err)
			}
		}
	}
	return nil
}

func (e *Exporter) exportOne(ctx context.Context, spec componentSpec, clips []manifest.Entry, quantize bool) error {
	name := spec.name + ".onnx"
	if quantize {
		name = spec.name + ".int8.onnx"
	}
	outputPath := filepath.Join(e.ExportDir, name)

	// Idempotent by file presence: re-running an export never rewrites
	// an existing graph.
	if _, err := os.Stat(outputPath); err == nil {
		return nil
	}

	return e.Writer.WriteGraph(ctx, GraphRequest{
		ModelDir:    e.ModelDir,
		Component:   spec.name,
		OutputPath:  outputPath,
		Opset:       opsetVersion,
		Quantize:    quantize,
		InputNames:  spec.inputNames,
		OutputNames: spec.outputNames,
		DynamicAxes: spec.dynamicAxes,
		CalibClips:  clips,
	})
}

// calibrationClips reads the calibration corpus, capped at CalibNum
// entries (DefaultCalibNum when unset).
func (e *Exporter) calibrationClips() ([]manifest.Entry, error) {
	if e.AudioIn == "" {
		return nil, nil
	}
	calibNum := e.CalibNum
	if calibNum <= 0 {
		calibNum = DefaultCalibNum
	}
	return manifest.Parse(e.AudioIn, calibNum)
}

// AllComponents returns the full component set in export order.
func AllComponents() []Component {
	return []Component{ComponentEncoder, ComponentDecoder, ComponentCTC}
}
