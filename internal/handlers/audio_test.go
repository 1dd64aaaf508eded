package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"murmur/internal/ingestion"
	"murmur/internal/storage"
)

func newTestAudioHandler(t *testing.T, dataDir string) *AudioHandler {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ingester := ingestion.NewAudioIngester(
		storage.NewJobRepository(db),
		storage.NewTranscriptRepository(db),
		nil,
		dataDir,
	)
	return NewAudioHandler(ingester)
}

func uploadRequest(t *testing.T, filename string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to build form: %v", err)
	}
	if _, err := part.Write([]byte("audio bytes")); err != nil {
		t.Fatalf("failed to build form: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/audio", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func TestUploadQueuesJob(t *testing.T) {
	h := newTestAudioHandler(t, t.TempDir())

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(uploadRequest(t, "clip.wav"), rec)
	if err := h.Upload(c); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want %d: %s", rec.Code, http.StatusAccepted, rec.Body)
	}
}

func TestUploadUnsupportedFormat(t *testing.T) {
	h := newTestAudioHandler(t, t.TempDir())

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(uploadRequest(t, "notes.txt"), rec)
	if err := h.Upload(c); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUploadServerError(t *testing.T) {
	// A data dir that is actually a file makes the save fail; that is
	// not the caller's fault and must not surface as a 400.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write blocker: %v", err)
	}
	h := newTestAudioHandler(t, blocker)

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(uploadRequest(t, "clip.wav"), rec)
	if err := h.Upload(c); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d: %s", rec.Code, http.StatusInternalServerError, rec.Body)
	}
}

func TestSubmitYouTubeMissingURL(t *testing.T) {
	h := newTestAudioHandler(t, t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "/api/youtube", strings.NewReader(`{"url": ""}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if err := h.SubmitYouTube(c); err != nil {
		t.Fatalf("SubmitYouTube: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
