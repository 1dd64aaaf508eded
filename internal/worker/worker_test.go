package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"murmur/internal/models"
	"murmur/internal/storage"
)

func newTestWorker(t *testing.T) (*Worker, *storage.JobRepository) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "murmur.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := storage.NewJobRepository(db)
	return NewWorker(repo), repo
}

func TestProcessNextJobCompletes(t *testing.T) {
	ctx := context.Background()
	w, repo := newTestWorker(t)

	var handled *models.ProcessingJob
	w.RegisterHandler(models.JobTypeTranscribe, func(_ context.Context, job *models.ProcessingJob) error {
		handled = job
		return nil
	})

	job, err := w.SubmitJob(ctx, models.JobTypeTranscribe, "/data/a.wav", models.JobPriorityNormal)
	if err != nil {
		t.Fatalf("SubmitJob: %v", err)
	}

	w.processNextJob(ctx)

	if handled == nil || handled.ID != job.ID {
		t.Fatalf("handler not invoked for job %s", job.ID)
	}
	got, _ := repo.GetByID(ctx, job.ID)
	if got.Status != models.JobStatusCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}
}

func TestProcessNextJobRetriesThenFails(t *testing.T) {
	ctx := context.Background()
	w, repo := newTestWorker(t)

	attempts := 0
	w.RegisterHandler(models.JobTypeTranscribe, func(context.Context, *models.ProcessingJob) error {
		attempts++
		return errors.New("decode failed")
	})

	job, err := w.SubmitJob(ctx, models.JobTypeTranscribe, "/data/a.wav", models.JobPriorityNormal)
	if err != nil {
		t.Fatalf("SubmitJob: %v", err)
	}

	// Three failed attempts re-queue, the fourth fails for good.
	for i := 0; i < 4; i++ {
		w.processNextJob(ctx)
	}

	if attempts != 4 {
		t.Errorf("attempts = %d, want 4", attempts)
	}
	got, _ := repo.GetByID(ctx, job.ID)
	if got.Status != models.JobStatusFailed {
		t.Errorf("status = %q, want failed", got.Status)
	}
	if got.Error != "decode failed" {
		t.Errorf("error = %q", got.Error)
	}
	if got.RetryCount != 3 {
		t.Errorf("retry count = %d, want 3", got.RetryCount)
	}
}

func TestProcessNextJobNoHandler(t *testing.T) {
	ctx := context.Background()
	w, repo := newTestWorker(t)

	job, err := w.SubmitJob(ctx, "unknown-type", "x", models.JobPriorityNormal)
	if err != nil {
		t.Fatalf("SubmitJob: %v", err)
	}

	w.processNextJob(ctx)

	got, _ := repo.GetByID(ctx, job.ID)
	if got.Status != models.JobStatusFailed {
		t.Errorf("status = %q, want failed", got.Status)
	}
}
