package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
)

// PythonGraphWriter shells out to a Python helper that owns the actual
// torch.onnx.export call; graph tracing has no Go equivalent, so the
// serializer stays behind a subprocess boundary. The request is passed
// as JSON on stdin.
type PythonGraphWriter struct {
	// PythonBin is the interpreter to run, "python3" when empty.
	PythonBin string
	// Script is the export helper path.
	Script string

	Stdout io.Writer
	Stderr io.Writer
}

// WriteGraph runs the helper for one component graph.
func (w *PythonGraphWriter) WriteGraph(ctx context.Context, req GraphRequest) error {
	pythonBin := w.PythonBin
	if pythonBin == "" {
		pythonBin = "python3"
	}
	if _, err := exec.LookPath(pythonBin); err != nil {
		return fmt.Errorf("%s not found: graph export requires Python with torch/onnx installed", pythonBin)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode export request: %w", err)
	}

	cmd := exec.CommandContext(ctx, pythonBin, w.Script)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = w.Stdout
	cmd.Stderr = w.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("export helper failed for %s: %w", req.Component, err)
	}
	return nil
}
