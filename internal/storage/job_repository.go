package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"murmur/internal/models"
)

// JobRepository is the data access layer for jobs.
type JobRepository struct {
	db *DB
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(db *DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new job, filling in id, status and timestamps.
func (r *JobRepository) Create(ctx context.Context, job *models.ProcessingJob) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = models.JobStatusQueued
	}
	job.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (id, type, status, priority, input, progress, retry_count, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Type, job.Status, job.Priority, job.Input,
		job.Progress, job.RetryCount, job.Error, job.CreatedAt,
	)
	return err
}

// GetByID returns a job by id, or nil when it does not exist.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*models.ProcessingJob, error) {
	row := r.db.QueryRowContext(ctx, selectJob+` WHERE id = ?`, id)
	return scanJob(row)
}

// GetNextQueued returns the next queued job in priority order, or nil.
func (r *JobRepository) GetNextQueued(ctx context.Context) (*models.ProcessingJob, error) {
	row := r.db.QueryRowContext(ctx, selectJob+`
		WHERE status = ? ORDER BY priority ASC, created_at ASC LIMIT 1`,
		models.JobStatusQueued)
	return scanJob(row)
}

// ListRecent returns the most recently created jobs.
func (r *JobRepository) ListRecent(ctx context.Context, limit int) ([]*models.ProcessingJob, error) {
	rows, err := r.db.QueryContext(ctx, selectJob+` ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// ListByStatus returns jobs with the given status, newest first.
func (r *JobRepository) ListByStatus(ctx context.Context, status string, limit int) ([]*models.ProcessingJob, error) {
	rows, err := r.db.QueryContext(ctx, selectJob+`
		WHERE status = ? ORDER BY created_at DESC LIMIT ?`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// CountByStatus returns the number of jobs per status.
func (r *JobRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// Start marks a job running.
func (r *JobRepository) Start(ctx context.Context, id string) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, started_at = ? WHERE id = ?`,
		models.JobStatusRunning, now, id)
	return err
}

// UpdateProgress updates a job's progress percentage.
func (r *JobRepository) UpdateProgress(ctx context.Context, id string, progress int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET progress = ? WHERE id = ?`, progress, id)
	return err
}

// Complete marks a job completed.
func (r *JobRepository) Complete(ctx context.Context, id string) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, progress = 100, completed_at = ? WHERE id = ?`,
		models.JobStatusCompleted, now, id)
	return err
}

// Fail marks a job failed with an error message.
func (r *JobRepository) Fail(ctx context.Context, id string, errorMsg string) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, error = ?, completed_at = ? WHERE id = ?`,
		models.JobStatusFailed, errorMsg, now, id)
	return err
}

// Retry re-queues a failed attempt and bumps the retry counter.
func (r *JobRepository) Retry(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, retry_count = retry_count + 1, started_at = NULL WHERE id = ?`,
		models.JobStatusQueued, id)
	return err
}

const selectJob = `
	SELECT id, type, status, priority, input, progress, retry_count, error,
	       created_at, started_at, completed_at
	FROM jobs`

func scanJob(row *sql.Row) (*models.ProcessingJob, error) {
	var job models.ProcessingJob
	err := row.Scan(
		&job.ID, &job.Type, &job.Status, &job.Priority, &job.Input,
		&job.Progress, &job.RetryCount, &job.Error,
		&job.CreatedAt, &job.StartedAt, &job.CompletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func scanJobs(rows *sql.Rows) ([]*models.ProcessingJob, error) {
	var jobs []*models.ProcessingJob
	for rows.Next() {
		var job models.ProcessingJob
		err := rows.Scan(
			&job.ID, &job.Type, &job.Status, &job.Priority, &job.Input,
			&job.Progress, &job.RetryCount, &job.Error,
			&job.CreatedAt, &job.StartedAt, &job.CompletedAt,
		)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}
