package infer

import (
	"errors"
	"os"
	"testing"

	"murmur/internal/device"
)

func TestRunRejectsMultiGPUBeforeDeviceWork(t *testing.T) {
	t.Setenv("CUDA_VISIBLE_DEVICES", "sentinel")

	opts := validOptions()
	opts.NGPU = 2
	opts.GPUIDList = "0,1"

	err := Run(opts)
	if !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
	if got := os.Getenv("CUDA_VISIBLE_DEVICES"); got != "sentinel" {
		t.Errorf("device visibility mutated before validation: %q", got)
	}
}

func TestRunBadJobSuffix(t *testing.T) {
	opts := validOptions()
	opts.NGPU = 1
	opts.GPUIDList = "0"
	opts.OutputDir = "exp/decode" // no .<job_index> suffix

	if err := Run(opts); err == nil {
		t.Fatal("expected error for output dir without job suffix")
	}
}

func TestRunGPUOutOfRange(t *testing.T) {
	opts := validOptions()
	opts.NGPU = 1
	opts.NJob = 2
	opts.GPUIDList = "0,1,2"
	opts.OutputDir = "exp/decode.7" // needs gpu group 3, only 3 ids

	err := Run(opts)
	if !errors.Is(err, device.ErrGPUIndexOutOfRange) {
		t.Fatalf("expected ErrGPUIndexOutOfRange, got %v", err)
	}
}
