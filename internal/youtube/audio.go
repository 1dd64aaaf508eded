package youtube

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ytdl "github.com/kkdai/youtube/v2"
)

// AudioFormat describes one downloadable audio-only stream.
type AudioFormat struct {
	ItagNo        int
	MimeType      string // "audio/mp4", "audio/webm"
	Bitrate       int    // bits per second
	ContentLength int64  // bytes
}

// Extension returns the file extension for the format's container.
func (f *AudioFormat) Extension() string {
	if strings.Contains(f.MimeType, "mp4") {
		return ".m4a"
	}
	if strings.Contains(f.MimeType, "webm") {
		return ".webm"
	}
	return ".audio"
}

// AudioFormats returns the audio-only formats of a video, best bitrate
// first.
func (c *Client) AudioFormats(videoURL string) (*ytdl.Video, []AudioFormat, error) {
	video, err := c.client.GetVideo(videoURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve video: %w", err)
	}

	var formats []AudioFormat
	for _, f := range video.Formats {
		if !strings.HasPrefix(f.MimeType, "audio/") {
			continue
		}
		formats = append(formats, AudioFormat{
			ItagNo:        f.ItagNo,
			MimeType:      f.MimeType,
			Bitrate:       f.Bitrate,
			ContentLength: f.ContentLength,
		})
	}
	if len(formats) == 0 {
		return nil, nil, fmt.Errorf("no audio formats available for %s", videoURL)
	}

	sort.Slice(formats, func(i, j int) bool {
		return formats[i].Bitrate > formats[j].Bitrate
	})

	return video, formats, nil
}

// DownloadAudio downloads the best audio-only stream of a video into
// outputDir and returns the saved file path.
func (c *Client) DownloadAudio(ctx context.Context, videoURL, outputDir string) (string, error) {
	video, formats, err := c.AudioFormats(videoURL)
	if err != nil {
		return "", err
	}
	best := formats[0]

	var format *ytdl.Format
	for i := range video.Formats {
		if video.Formats[i].ItagNo == best.ItagNo {
			format = &video.Formats[i]
			break
		}
	}
	if format == nil {
		return "", fmt.Errorf("selected format %d not found", best.ItagNo)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	stream, _, err := c.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return "", fmt.Errorf("failed to open stream: %w", err)
	}
	defer stream.Close()

	outputPath := filepath.Join(outputDir, video.ID+best.Extension())
	out, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, stream); err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("failed to download audio: %w", err)
	}

	return outputPath, nil
}
