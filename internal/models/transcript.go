package models

import "time"

// Transcript is the stored recognition output of one clip.
type Transcript struct {
	ID        string    `json:"id"`
	JobID     string    `json:"job_id"`
	ClipName  string    `json:"clip_name"`
	Text      string    `json:"text"`
	Duration  float64   `json:"duration"` // processing time in seconds
	CreatedAt time.Time `json:"created_at"`
}
