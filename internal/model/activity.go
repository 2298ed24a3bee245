package model

import "time"

// ActivityLog records one workspace event (task created, member joined, ...).
type ActivityLog struct {
	ID          int64     `json:"id"`
	WorkspaceID int64     `json:"workspace_id"`
	UserID      int64     `json:"user_id"`
	Action      string    `json:"action"`
	EntityType  string    `json:"entity_type"`
	EntityTitle string    `json:"entity_title"`
	CreatedAt   time.Time `json:"created_at"`
}
