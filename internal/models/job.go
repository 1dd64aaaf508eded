package models

import "time"

// ProcessingJob is one queued unit of asynchronous work.
type ProcessingJob struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	Priority    int        `json:"priority"`
	Input       string     `json:"input"` // audio path or source URL, per type
	Progress    int        `json:"progress"`
	RetryCount  int        `json:"retry_count"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Job types
const (
	JobTypeTranscribe = "transcribe"
	JobTypeYouTube    = "youtube"
)

// Job statuses
const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Job priorities
const (
	JobPriorityImmediate = 0 // interactive requests
	JobPriorityNormal    = 5
	JobPriorityBatch     = 9 // bulk corpus work
)
