package asr

import (
	"encoding/binary"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// writeToneWav writes a 16kHz mono PCM WAV with a 440Hz tone of the
// given length.
func writeToneWav(t *testing.T, path string, seconds float64) {
	t.Helper()

	sampleRate := 16000
	n := int(float64(sampleRate) * seconds)
	data := make([]byte, 44+n*2)

	copy(data[0:4], "RIFF")
	binary.LittleEndian.PutUint32(data[4:], uint32(36+n*2))
	copy(data[8:12], "WAVE")
	copy(data[12:16], "fmt ")
	binary.LittleEndian.PutUint32(data[16:], 16)
	binary.LittleEndian.PutUint16(data[20:], 1) // PCM
	binary.LittleEndian.PutUint16(data[22:], 1) // mono
	binary.LittleEndian.PutUint32(data[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(data[28:], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(data[32:], 2)
	binary.LittleEndian.PutUint16(data[34:], 16)
	copy(data[36:40], "data")
	binary.LittleEndian.PutUint32(data[40:], uint32(n*2))

	for i := 0; i < n; i++ {
		sample := int16(8000 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
		binary.LittleEndian.PutUint16(data[44+i*2:], uint16(sample))
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write wav: %v", err)
	}
}

func TestConvertToWav(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "tone.wav")
	writeToneWav(t, src, 0.5)

	// Output dir does not exist yet; conversion creates it.
	dst := filepath.Join(dir, "out", "tone.wav")
	if err := ConvertToWav(src, dst); err != nil {
		t.Fatalf("ConvertToWav: %v", err)
	}

	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("converted file missing: %v", err)
	}
	if info.Size() <= 44 {
		t.Errorf("converted file has no audio data (%d bytes)", info.Size())
	}
}

func TestConvertToWavMissingInput(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}

	dir := t.TempDir()
	if err := ConvertToWav(filepath.Join(dir, "none.mp3"), filepath.Join(dir, "out.wav")); err == nil {
		t.Fatal("expected error for missing input file")
	}
}

func TestAudioDuration(t *testing.T) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not installed")
	}

	path := filepath.Join(t.TempDir(), "tone.wav")
	writeToneWav(t, path, 2.0)

	dur, err := AudioDuration(path)
	if err != nil {
		t.Fatalf("AudioDuration: %v", err)
	}
	if math.Abs(dur-2.0) > 0.1 {
		t.Errorf("AudioDuration = %v, want ~2.0", dur)
	}
}
