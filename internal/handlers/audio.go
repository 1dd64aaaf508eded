package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"murmur/internal/ingestion"
	"murmur/internal/models"
)

// AudioHandler accepts new transcription work.
type AudioHandler struct {
	ingester *ingestion.AudioIngester
}

// NewAudioHandler creates a new AudioHandler.
func NewAudioHandler(ingester *ingestion.AudioIngester) *AudioHandler {
	return &AudioHandler{ingester: ingester}
}

// Upload accepts a multipart audio file and queues a transcribe job.
func (h *AudioHandler) Upload(c echo.Context) error {
	ctx := c.Request().Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file field is required"})
	}
	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	defer src.Close()

	job, err := h.ingester.IngestUpload(ctx, ingestion.AudioFile{
		Filename: fileHeader.Filename,
		Reader:   src,
	}, models.JobPriorityNormal)
	if err != nil {
		return c.JSON(ingestStatus(err), map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusAccepted, job)
}

// ingestStatus separates bad requests from server-side failures: a
// rejected input is the caller's fault, anything else (filesystem,
// database) is ours.
func ingestStatus(err error) int {
	if errors.Is(err, ingestion.ErrUnsupportedFormat) || errors.Is(err, ingestion.ErrMissingURL) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type youtubeRequest struct {
	URL string `json:"url"`
}

// SubmitYouTube queues a download-and-transcribe job for a video URL.
func (h *AudioHandler) SubmitYouTube(c echo.Context) error {
	ctx := c.Request().Context()

	var req youtubeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	job, err := h.ingester.IngestYouTube(ctx, req.URL, models.JobPriorityNormal)
	if err != nil {
		return c.JSON(ingestStatus(err), map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusAccepted, job)
}
