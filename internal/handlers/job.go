package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"murmur/internal/storage"
)

// JobHandler serves the job API.
type JobHandler struct {
	jobRepo        *storage.JobRepository
	transcriptRepo *storage.TranscriptRepository
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobRepo *storage.JobRepository, transcriptRepo *storage.TranscriptRepository) *JobHandler {
	return &JobHandler{jobRepo: jobRepo, transcriptRepo: transcriptRepo}
}

// List returns recent jobs, optionally filtered by status.
func (h *JobHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	status := c.QueryParam("status")

	limit := 50
	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	var jobs interface{}
	var err error
	if status != "" {
		jobs, err = h.jobRepo.ListByStatus(ctx, status, limit)
	} else {
		jobs, err = h.jobRepo.ListRecent(ctx, limit)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, jobs)
}

// Get returns one job.
func (h *JobHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	job, err := h.jobRepo.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if job == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	return c.JSON(http.StatusOK, job)
}

// Transcripts returns the transcripts produced by one job.
func (h *JobHandler) Transcripts(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	job, err := h.jobRepo.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if job == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	transcripts, err := h.transcriptRepo.ListByJob(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, transcripts)
}

// Stats returns the number of jobs per status.
func (h *JobHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	counts, err := h.jobRepo.CountByStatus(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, counts)
}
