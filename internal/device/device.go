// Package device maps batch job shards onto GPUs.
//
// Sharded batch decoding launches one process per job. The job index is
// encoded as the final dot-separated token of the output directory
// ("exp/decode.3" is job 3), and njob consecutive jobs share one GPU from
// the comma-separated gpuid list.
package device

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
)

// Environment variables consumed by the ONNX runtime's CUDA provider.
// CUDA_DEVICE_ORDER is pinned to PCI_BUS_ID so that ordinals are stable
// across processes on the same host.
const (
	envDeviceOrder    = "CUDA_DEVICE_ORDER"
	envVisibleDevices = "CUDA_VISIBLE_DEVICES"
	deviceOrderPCI    = "PCI_BUS_ID"
)

// ErrGPUIndexOutOfRange is returned when the job index implies a GPU group
// beyond the configured gpuid list. This is a launcher misconfiguration;
// wrapping around silently would double-book a GPU, so it is fatal.
var ErrGPUIndexOutOfRange = errors.New("gpu group index out of range")

// ErrMultiGPU is returned when more than one GPU is requested for a single
// worker process.
var ErrMultiGPU = errors.New("only single GPU decoding is supported")

// AssignGPU returns the GPU id for a 1-based job index, with jobsPerGPU
// consecutive jobs sharing each entry of gpuIDs.
func AssignGPU(jobIndex, jobsPerGPU int, gpuIDs []string) (string, error) {
	if jobIndex < 1 {
		return "", fmt.Errorf("job index must be >= 1, got %d", jobIndex)
	}
	if jobsPerGPU < 1 {
		return "", fmt.Errorf("jobs per gpu must be >= 1, got %d", jobsPerGPU)
	}
	group := (jobIndex - 1) / jobsPerGPU
	if group >= len(gpuIDs) {
		return "", fmt.Errorf("job %d needs gpu group %d but only %d gpu id(s) configured: %w",
			jobIndex, group, len(gpuIDs), ErrGPUIndexOutOfRange)
	}
	return gpuIDs[group], nil
}

// JobIndexFromPath parses the 1-based job index from an output directory
// whose final dot-separated token is the shard number ("exp/decode.3" -> 3).
func JobIndexFromPath(outputDir string) (int, error) {
	base := path.Base(strings.TrimRight(outputDir, "/"))
	parts := strings.Split(base, ".")
	idx, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0, fmt.Errorf("output dir %q has no numeric job suffix: %w", outputDir, err)
	}
	if idx < 1 {
		return 0, fmt.Errorf("output dir %q has job suffix %d, want >= 1", outputDir, idx)
	}
	return idx, nil
}

// Context is an explicit device selection passed through the pipeline
// instead of mutating the process environment at arbitrary points.
type Context struct {
	// Kind is "cpu" or "cuda".
	Kind string
	// GPUID is the visible device ordinal, set only for cuda.
	GPUID string
}

// CPU returns the default CPU context.
func CPU() Context {
	return Context{Kind: "cpu"}
}

// CUDA returns a context pinned to a single GPU.
func CUDA(gpuID string) Context {
	return Context{Kind: "cuda", GPUID: gpuID}
}

// Provider returns the sherpa-onnx provider name for this context.
func (c Context) Provider() string {
	return c.Kind
}

// Apply performs the environment side effect restricting the current
// process to the selected device. Must run before any model is loaded;
// the runtime caches device visibility at first use. CPU contexts apply
// nothing.
func (c Context) Apply() error {
	if c.Kind != "cuda" {
		return nil
	}
	if err := os.Setenv(envDeviceOrder, deviceOrderPCI); err != nil {
		return err
	}
	return os.Setenv(envVisibleDevices, c.GPUID)
}

// Select resolves the device context for one worker process. ngpu <= 0
// selects the CPU without touching the output dir. ngpu == 1 derives the
// job index from the output dir suffix and assigns a GPU from the
// comma-separated gpuidList. ngpu > 1 is rejected up front, before any
// assignment happens.
func Select(ngpu, njob int, gpuidList, outputDir string) (Context, error) {
	if ngpu <= 0 {
		return CPU(), nil
	}
	if ngpu > 1 {
		return Context{}, fmt.Errorf("ngpu=%d: %w", ngpu, ErrMultiGPU)
	}
	jobIndex, err := JobIndexFromPath(outputDir)
	if err != nil {
		return Context{}, err
	}
	gpuID, err := AssignGPU(jobIndex, njob, strings.Split(gpuidList, ","))
	if err != nil {
		return Context{}, err
	}
	return CUDA(gpuID), nil
}
