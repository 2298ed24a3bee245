package model

import "time"

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
	ChatRoleSystem    ChatRole = "system"
	ChatRoleTool      ChatRole = "tool"
)

// ChatMessage is one turn in the visible assistant transcript.
// IsLoading and Status are transient UI state and are stripped before
// persistence and before the message enters model-visible history.
type ChatMessage struct {
	ID        int64         `json:"id"`
	Role      ChatRole      `json:"role"`
	Content   string        `json:"content"`
	Timestamp time.Time     `json:"timestamp"`
	IsLoading bool          `json:"is_loading,omitempty"`
	Status    string        `json:"status,omitempty"`
	Buttons   []SmartButton `json:"buttons,omitempty"`
}

// SmartButton is a suggested follow-up UI action embedded in a finalized
// assistant message.
type SmartButton struct {
	Label   string         `json:"label"`
	Action  string         `json:"action"`
	ID      string         `json:"id,omitempty"`
	Icon    string         `json:"icon,omitempty"`
	Variant string         `json:"variant,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}
