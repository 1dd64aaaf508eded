package device

import (
	"errors"
	"os"
	"testing"
)

func TestAssignGPU(t *testing.T) {
	gpus := []string{"0", "1", "2"}

	tests := []struct {
		jobIndex   int
		jobsPerGPU int
		want       string
	}{
		{1, 2, "0"},
		{2, 2, "0"},
		{3, 2, "1"},
		{4, 2, "1"},
		{5, 2, "2"},
		{6, 2, "2"},
		{1, 1, "0"},
		{3, 1, "2"},
	}

	for _, tt := range tests {
		got, err := AssignGPU(tt.jobIndex, tt.jobsPerGPU, gpus)
		if err != nil {
			t.Errorf("AssignGPU(%d, %d): unexpected error: %v", tt.jobIndex, tt.jobsPerGPU, err)
			continue
		}
		if got != tt.want {
			t.Errorf("AssignGPU(%d, %d) = %q, want %q", tt.jobIndex, tt.jobsPerGPU, got, tt.want)
		}
	}
}

func TestAssignGPUOutOfRange(t *testing.T) {
	// Job 7 with 2 jobs per GPU needs a fourth GPU; the list has three.
	_, err := AssignGPU(7, 2, []string{"0", "1", "2"})
	if !errors.Is(err, ErrGPUIndexOutOfRange) {
		t.Fatalf("expected ErrGPUIndexOutOfRange, got %v", err)
	}

	_, err = AssignGPU(4, 1, []string{"0", "1", "2"})
	if !errors.Is(err, ErrGPUIndexOutOfRange) {
		t.Fatalf("expected ErrGPUIndexOutOfRange, got %v", err)
	}
}

func TestAssignGPUBadInputs(t *testing.T) {
	if _, err := AssignGPU(0, 1, []string{"0"}); err == nil {
		t.Error("expected error for job index 0")
	}
	if _, err := AssignGPU(1, 0, []string{"0"}); err == nil {
		t.Error("expected error for jobs per gpu 0")
	}
}

func TestJobIndexFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    int
		wantErr bool
	}{
		{"exp/decode.3", 3, false},
		{"exp/decode.1", 1, false},
		{"decode.12", 12, false},
		{"exp/decode.asr.7", 7, false},
		{"exp/decode.3/", 3, false},
		{"exp/decode", 0, true},
		{"exp/decode.x", 0, true},
		{"exp/decode.0", 0, true},
	}

	for _, tt := range tests {
		got, err := JobIndexFromPath(tt.path)
		if tt.wantErr {
			if err == nil {
				t.Errorf("JobIndexFromPath(%q): expected error, got %d", tt.path, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("JobIndexFromPath(%q): unexpected error: %v", tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("JobIndexFromPath(%q) = %d, want %d", tt.path, got, tt.want)
		}
	}
}

func TestSelectCPU(t *testing.T) {
	t.Setenv("CUDA_VISIBLE_DEVICES", "")
	os.Unsetenv("CUDA_VISIBLE_DEVICES")

	ctx, err := Select(0, 1, "", "exp/decode")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if ctx.Kind != "cpu" {
		t.Errorf("ctx.Kind = %q, want cpu", ctx.Kind)
	}
	if err := ctx.Apply(); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if v, ok := os.LookupEnv("CUDA_VISIBLE_DEVICES"); ok {
		t.Errorf("CPU context must not set CUDA_VISIBLE_DEVICES, got %q", v)
	}
}

func TestSelectCUDA(t *testing.T) {
	t.Setenv("CUDA_DEVICE_ORDER", "")
	t.Setenv("CUDA_VISIBLE_DEVICES", "")

	ctx, err := Select(1, 2, "4,5,6", "exp/decode.3")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if ctx.Kind != "cuda" || ctx.GPUID != "5" {
		t.Fatalf("Select = %+v, want cuda gpu 5", ctx)
	}
	if err := ctx.Apply(); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := os.Getenv("CUDA_DEVICE_ORDER"); got != "PCI_BUS_ID" {
		t.Errorf("CUDA_DEVICE_ORDER = %q, want PCI_BUS_ID", got)
	}
	if got := os.Getenv("CUDA_VISIBLE_DEVICES"); got != "5" {
		t.Errorf("CUDA_VISIBLE_DEVICES = %q, want 5", got)
	}
}

func TestSelectMultiGPU(t *testing.T) {
	_, err := Select(2, 1, "0,1", "exp/decode.1")
	if !errors.Is(err, ErrMultiGPU) {
		t.Fatalf("expected ErrMultiGPU, got %v", err)
	}
}

func TestSelectBadSuffix(t *testing.T) {
	if _, err := Select(1, 1, "0", "exp/decode"); err == nil {
		t.Fatal("expected error for output dir without job suffix")
	}
}
