package model

import "time"

// TimeSession is one tracked stretch of work on a task.
// EndedAt is nil while the timer is still running.
// ProjectID is denormalized from the task join on read.
type TimeSession struct {
	ID           int64      `json:"id"`
	TaskID       int64      `json:"task_id"`
	ProjectID    int64      `json:"project_id"`
	UserID       int64      `json:"user_id"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	DurationSecs int64      `json:"duration_secs"`
}
