package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// recordingWriter records requests instead of serializing graphs.
type recordingWriter struct {
	requests []GraphRequest
}

func (w *recordingWriter) WriteGraph(_ context.Context, req GraphRequest) error {
	w.requests = append(w.requests, req)
	// Simulate the helper producing the file.
	return os.WriteFile(req.OutputPath, []byte(req.Component), 0644)
}

func TestExportAllComponents(t *testing.T) {
	dir := t.TempDir()
	writer := &recordingWriter{}
	exporter := &Exporter{
		ModelDir:  "models/conformer",
		ExportDir: dir,
		Writer:    writer,
	}

	if err := exporter.Export(context.Background(), AllComponents()); err != nil {
		t.Fatalf("Export: %v", err)
	}

	if len(writer.requests) != 3 {
		t.Fatalf("got %d requests, want 3", len(writer.requests))
	}
	for i, name := range []string{"encoder", "decoder", "ctc"} {
		req := writer.requests[i]
		if req.Component != name {
			t.Errorf("request %d component = %q, want %q", i, req.Component, name)
		}
		if req.Opset != 14 {
			t.Errorf("request %d opset = %d, want 14", i, req.Opset)
		}
		if len(req.InputNames) == 0 || len(req.OutputNames) == 0 {
			t.Errorf("request %d missing tensor names: %+v", i, req)
		}
		want := filepath.Join(dir, name+".onnx")
		if req.OutputPath != want {
			t.Errorf("request %d output = %q, want %q", i, req.OutputPath, want)
		}
		if _, err := os.Stat(want); err != nil {
			t.Errorf("graph file %s not written: %v", want, err)
		}
	}
}

func TestExportSkipsExistingGraph(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "encoder.onnx")
	original := []byte("pre-existing graph bytes")
	if err := os.WriteFile(existing, original, 0644); err != nil {
		t.Fatalf("failed to seed graph file: %v", err)
	}

	writer := &recordingWriter{}
	exporter := &Exporter{ExportDir: dir, Writer: writer}

	if err := exporter.Export(context.Background(), AllComponents()); err != nil {
		t.Fatalf("Export: %v", err)
	}

	// The encoder was skipped; decoder and ctc were written.
	if len(writer.requests) != 2 {
		t.Fatalf("got %d requests, want 2: %+v", len(writer.requests), writer.requests)
	}
	for _, req := range writer.requests {
		if req.Component == "encoder" {
			t.Errorf("encoder exported despite existing graph")
		}
	}

	data, err := os.ReadFile(existing)
	if err != nil {
		t.Fatalf("failed to read graph file: %v", err)
	}
	if string(data) != string(original) {
		t.Errorf("existing graph bytes changed: %q", data)
	}
}

func TestExportQuantizedVariants(t *testing.T) {
	dir := t.TempDir()
	writer := &recordingWriter{}
	exporter := &Exporter{ExportDir: dir, Quantize: true, Writer: writer}

	if err := exporter.Export(context.Background(), []Component{ComponentCTC}); err != nil {
		t.Fatalf("Export: %v", err)
	}

	if len(writer.requests) != 2 {
		t.Fatalf("got %d requests, want 2", len(writer.requests))
	}
	if writer.requests[0].Quantize || !writer.requests[1].Quantize {
		t.Errorf("expected float graph then int8 graph: %+v", writer.requests)
	}
	if got := filepath.Base(writer.requests[1].OutputPath); got != "ctc.int8.onnx" {
		t.Errorf("int8 output = %q, want ctc.int8.onnx", got)
	}
}

func TestExportCalibrationCap(t *testing.T) {
	dir := t.TempDir()

	scp := filepath.Join(dir, "wav.scp")
	body := ""
	for i := 0; i < 300; i++ {
		body += "utt /a/clip.wav\n"
	}
	if err := os.WriteFile(scp, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	writer := &recordingWriter{}
	exporter := &Exporter{ExportDir: dir, AudioIn: scp, Writer: writer}

	if err := exporter.Export(context.Background(), []Component{ComponentEncoder}); err != nil {
		t.Fatalf("Export: %v", err)
	}

	if got := len(writer.requests[0].CalibClips); got != DefaultCalibNum {
		t.Errorf("calibration clips = %d, want %d", got, DefaultCalibNum)
	}
}

func TestParseComponent(t *testing.T) {
	for name, want := range map[string]Component{
		"encoder": ComponentEncoder,
		"decoder": ComponentDecoder,
		"ctc":     ComponentCTC,
	} {
		got, err := ParseComponent(name)
		if err != nil {
			t.Errorf("ParseComponent(%q): %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("ParseComponent(%q) = %v, want %v", name, got, want)
		}
	}

	if _, err := ParseComponent("joiner"); err == nil {
		t.Error("expected error for unknown component")
	}
}
