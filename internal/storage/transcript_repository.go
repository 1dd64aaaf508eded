package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"murmur/internal/models"
)

// TranscriptRepository is the data access layer for transcripts.
type TranscriptRepository struct {
	db *DB
}

// NewTranscriptRepository creates a new TranscriptRepository.
func NewTranscriptRepository(db *DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

// Create inserts a transcript.
func (r *TranscriptRepository) Create(ctx context.Context, t *models.Transcript) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transcripts (id, job_id, clip_name, text, duration, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.JobID, t.ClipName, t.Text, t.Duration, t.CreatedAt,
	)
	return err
}

// ListByJob returns the transcripts produced by one job, in insertion
// order.
func (r *TranscriptRepository) ListByJob(ctx context.Context, jobID string) ([]*models.Transcript, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, job_id, clip_name, text, duration, created_at
		FROM transcripts WHERE job_id = ? ORDER BY created_at ASC, id ASC`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transcripts []*models.Transcript
	for rows.Next() {
		var t models.Transcript
		if err := rows.Scan(&t.ID, &t.JobID, &t.ClipName, &t.Text, &t.Duration, &t.CreatedAt); err != nil {
			return nil, err
		}
		transcripts = append(transcripts, &t)
	}
	return transcripts, rows.Err()
}
