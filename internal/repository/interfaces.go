package repository

import (
	"context"
	"errors"
	"time"

	"taskdeck.app/assistant/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ProjectStore defines the contract for project data access
type ProjectStore interface {
	GetByID(ctx context.Context, id int64) (*model.Project, error)
	ListActive(ctx context.Context, workspaceID int64) ([]model.Project, error)
	Create(ctx context.Context, project *model.Project) error
	// CreateWithStatuses inserts the project and its workflow statuses in
	// one transaction; a half-seeded board is never visible.
	CreateWithStatuses(ctx context.Context, project *model.Project, statusNames []string) error
	Update(ctx context.Context, project *model.Project) error
}

// StatusStore defines the contract for project workflow statuses
type StatusStore interface {
	ListByProject(ctx context.Context, projectID int64) ([]model.ProjectStatus, error)
	Create(ctx context.Context, status *model.ProjectStatus) error
	Rename(ctx context.Context, projectID int64, from, to string) error
}

// TaskStore defines the contract for task data access.
// Workspace scoping is expressed through project ID sets: tasks belong to
// projects, projects belong to workspaces.
type TaskStore interface {
	GetByID(ctx context.Context, id int64) (*model.Task, error)
	SearchByTitle(ctx context.Context, projectIDs []int64, fragment string, limit int) ([]model.Task, error)
	ListByProjects(ctx context.Context, projectIDs []int64) ([]model.Task, error)
	CountByProjects(ctx context.Context, projectIDs []int64) (int, error)
	ListByAssignee(ctx context.Context, projectIDs []int64, userID int64) ([]model.Task, error)
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id int64) error
}

// MemberStore defines the contract for workspace membership and profiles
type MemberStore interface {
	ListByWorkspace(ctx context.Context, workspaceID int64) ([]model.Membership, error)
	GetProfiles(ctx context.Context, userIDs []int64) ([]model.Profile, error)
	FindProfileByEmail(ctx context.Context, email string) (*model.Profile, error)
	Add(ctx context.Context, membership *model.Membership) error
	UpdateRole(ctx context.Context, workspaceID, userID int64, role model.MemberRole) error
}

// InvitationStore defines the contract for pending workspace invitations
type InvitationStore interface {
	Create(ctx context.Context, inv *model.Invitation) error
	FindPending(ctx context.Context, workspaceID int64, email string) (*model.Invitation, error)
}

// TimeSessionStore defines the contract for time-tracking reads
type TimeSessionStore interface {
	ListCompletedSince(ctx context.Context, projectIDs []int64, since time.Time) ([]model.TimeSession, error)
}

// CommentStore defines the contract for task comments
type CommentStore interface {
	ListByTask(ctx context.Context, taskID int64, limit int) ([]model.Comment, error)
}

// ActivityStore defines the contract for workspace activity logs
type ActivityStore interface {
	ListRecent(ctx context.Context, workspaceID int64, limit int) ([]model.ActivityLog, error)
}
