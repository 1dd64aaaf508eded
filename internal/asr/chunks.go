package asr

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// DefaultChunkSeconds is the chunk length used when transcribing long
// audio in fixed windows.
const DefaultChunkSeconds = 20

// TranscribeLong decodes an audio file of any supported format in fixed
// chunks, streaming 16kHz mono PCM out of ffmpeg so the whole file never
// sits in memory. Each chunk becomes one timestamped segment.
func (r *Recognizer) TranscribeLong(inputPath string, chunkSec int) (*Result, error) {
	if chunkSec <= 0 {
		chunkSec = DefaultChunkSeconds
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found: please install ffmpeg to decode audio")
	}

	cmd := exec.Command("ffmpeg",
		"-i", inputPath,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprintf("%d", r.config.SampleRate),
		"-ac", "1",
		"-loglevel", "error",
		"pipe:1",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open ffmpeg pipe: %w", err)
	}
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	reader := bufio.NewReader(stdout)
	chunkBytes := r.config.SampleRate * chunkSec * 2

	result := &Result{}
	chunkNum := 0
	for {
		buffer := make([]byte, chunkBytes)
		n, readErr := io.ReadFull(reader, buffer)
		if n > 0 {
			samples := bytesToFloat32(buffer[:n])
			chunk, err := r.TranscribeSamples(samples, r.config.SampleRate)
			if err != nil {
				cmd.Wait()
				return nil, err
			}
			startSec := float64(chunkNum * chunkSec)
			endSec := startSec + float64(len(samples))/float64(r.config.SampleRate)
			if chunk.Text != "" {
				result.Text += chunk.Text
				result.Segments = append(result.Segments, Segment{
					Text:      chunk.Text,
					StartTime: startSec,
					EndTime:   endSec,
				})
			}
			result.Duration += chunk.Duration
			chunkNum++
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			cmd.Wait()
			return nil, fmt.Errorf("failed to read audio stream: %w", readErr)
		}
	}

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w", err)
	}
	return result, nil
}

// bytesToFloat32 converts little-endian 16-bit PCM to normalized float32.
func bytesToFloat32(data []byte) []float32 {
	samples := make([]float32, len(data)/2)
	for i := 0; i < len(samples); i++ {
		sample := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(sample) / 32768.0
	}
	return samples
}
