// Package ingestion feeds audio into the transcription job queue and
// owns the handlers that turn queued jobs into stored transcripts.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"murmur/internal/asr"
	"murmur/internal/models"
	"murmur/internal/storage"
	"murmur/internal/worker"
	"murmur/internal/youtube"
)

// ErrUnsupportedFormat marks an upload whose extension is not a known
// audio format. The request is bad; nothing server-side went wrong.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// ErrMissingURL marks a video submission without a URL.
var ErrMissingURL = errors.New("video url is required")

// AudioIngester persists uploaded audio and queues transcription jobs.
type AudioIngester struct {
	jobRepo        *storage.JobRepository
	transcriptRepo *storage.TranscriptRepository
	asrConfig      *asr.Config
	dataDir        string
}

// NewAudioIngester creates a new AudioIngester.
func NewAudioIngester(
	jobRepo *storage.JobRepository,
	transcriptRepo *storage.TranscriptRepository,
	asrConfig *asr.Config,
	dataDir string,
) *AudioIngester {
	return &AudioIngester{
		jobRepo:        jobRepo,
		transcriptRepo: transcriptRepo,
		asrConfig:      asrConfig,
		dataDir:        dataDir,
	}
}

// AudioFile is an uploaded audio file.
type AudioFile struct {
	Filename string
	Reader   io.Reader
}

// IngestUpload saves an uploaded file and queues a transcribe job for it.
func (i *AudioIngester) IngestUpload(ctx context.Context, file AudioFile, priority int) (*models.ProcessingJob, error) {
	if !asr.IsSupportedFormat(file.Filename) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, file.Filename)
	}

	sourceDir := filepath.Join(i.dataDir, "sources", "audio", uuid.New().String())
	if err := os.MkdirAll(sourceDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create source directory: %w", err)
	}

	destPath := filepath.Join(sourceDir, filepath.Base(file.Filename))
	dest, err := os.Create(destPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(dest, file.Reader); err != nil {
		dest.Close()
		return nil, fmt.Errorf("failed to save file: %w", err)
	}
	if err := dest.Close(); err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	job := &models.ProcessingJob{
		Type:     models.JobTypeTranscribe,
		Input:    destPath,
		Priority: priority,
	}
	if err := i.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// IngestYouTube queues a download-and-transcribe job for a video URL.
func (i *AudioIngester) IngestYouTube(ctx context.Context, videoURL string, priority int) (*models.ProcessingJob, error) {
	if videoURL == "" {
		return nil, ErrMissingURL
	}
	job := &models.ProcessingJob{
		Type:     models.JobTypeYouTube,
		Input:    videoURL,
		Priority: priority,
	}
	if err := i.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// longClipSeconds is the cutoff above which non-WAV audio is decoded in
// streamed chunks instead of being converted to a WAV file first.
const longClipSeconds = 300

// TranscribeHandler returns the worker handler for transcribe jobs: the
// job input is an audio path, decoded either directly (WAV), via a WAV
// conversion (short clips), or through the chunked ffmpeg path (long
// clips), and stored as a transcript.
func (i *AudioIngester) TranscribeHandler() worker.JobHandler {
	return func(ctx context.Context, job *models.ProcessingJob) error {
		return i.transcribe(ctx, job, job.Input)
	}
}

// YouTubeHandler returns the worker handler for youtube jobs: download
// the audio stream, then transcribe it like any other clip.
func (i *AudioIngester) YouTubeHandler(client *youtube.Client) worker.JobHandler {
	return func(ctx context.Context, job *models.ProcessingJob) error {
		audioDir := filepath.Join(i.dataDir, "sources", "youtube", job.ID)
		audioPath, err := client.DownloadAudio(ctx, job.Input, audioDir)
		if err != nil {
			return err
		}
		_ = i.jobRepo.UpdateProgress(ctx, job.ID, 50)
		return i.transcribe(ctx, job, audioPath)
	}
}

func (i *AudioIngester) transcribe(ctx context.Context, job *models.ProcessingJob, audioPath string) error {
	recognizer, err := asr.NewRecognizer(i.asrConfig)
	if err != nil {
		return err
	}
	defer recognizer.Close()

	var result *asr.Result
	switch {
	case strings.EqualFold(filepath.Ext(audioPath), ".wav"):
		result, err = recognizer.TranscribeFile(audioPath)
	case clipDuration(audioPath) <= longClipSeconds:
		wavPath := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".wav"
		if cerr := asr.ConvertToWav(audioPath, wavPath); cerr != nil {
			return cerr
		}
		result, err = recognizer.TranscribeFile(wavPath)
	default:
		result, err = recognizer.TranscribeLong(audioPath, asr.DefaultChunkSeconds)
	}
	if err != nil {
		return err
	}

	return i.transcriptRepo.Create(ctx, &models.Transcript{
		JobID:    job.ID,
		ClipName: strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath)),
		Text:     result.Text,
		Duration: result.Duration,
	})
}

// clipDuration probes the clip length in seconds. When ffprobe is
// missing or fails, the clip is treated as long so it takes the
// streamed path, which never needs the whole file in memory.
func clipDuration(audioPath string) float64 {
	dur, err := asr.AudioDuration(audioPath)
	if err != nil {
		return longClipSeconds + 1
	}
	return dur
}
