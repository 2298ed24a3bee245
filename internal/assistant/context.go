package assistant

import (
	"context"
	"fmt"

	"taskdeck.app/assistant/internal/model"
	"taskdeck.app/assistant/internal/repository"
)

// WsContext is an ephemeral snapshot of a workspace, built once at the
// start of a user turn and threaded through every tool call in that turn.
// Tools read the snapshot's lists and maps instead of issuing their own
// "list all projects/members" queries; only entity-specific detail (task
// lookups, comments, time sessions) goes back to the store.
//
// The snapshot is never mutated: if a tool call renames a project mid-turn,
// later tool calls in the same turn still see the pre-rename name.
type WsContext struct {
	WorkspaceID int64
	Projects    []model.Project
	ProjectIDs  []int64
	ProjectName map[int64]string

	MemberIDs  []int64
	Profiles   []model.Profile
	MemberName map[int64]string
	MemberRole map[int64]model.MemberRole
}

// ContextBuilder builds WsContext snapshots from the store layer.
type ContextBuilder struct {
	projects repository.ProjectStore
	members  repository.MemberStore
}

func NewContextBuilder(projects repository.ProjectStore, members repository.MemberStore) *ContextBuilder {
	return &ContextBuilder{projects: projects, members: members}
}

// Build issues the three batched reads (active projects, memberships,
// profiles) and derives the O(1) lookup maps. Any read failure fails the
// whole turn; there is no partial-cache fallback.
func (b *ContextBuilder) Build(ctx context.Context, workspaceID int64) (*WsContext, error) {
	projects, err := b.projects.ListActive(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("loading projects: %w", err)
	}

	memberships, err := b.members.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("loading memberships: %w", err)
	}

	memberIDs := make([]int64, 0, len(memberships))
	roles := make(map[int64]model.MemberRole, len(memberships))
	for _, m := range memberships {
		memberIDs = append(memberIDs, m.UserID)
		roles[m.UserID] = m.Role
	}

	profiles, err := b.members.GetProfiles(ctx, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("loading profiles: %w", err)
	}

	wc := &WsContext{
		WorkspaceID: workspaceID,
		Projects:    projects,
		ProjectIDs:  make([]int64, 0, len(projects)),
		ProjectName: make(map[int64]string, len(projects)),
		MemberIDs:   memberIDs,
		Profiles:    profiles,
		MemberName:  make(map[int64]string, len(profiles)),
		MemberRole:  roles,
	}

	for _, p := range projects {
		wc.ProjectIDs = append(wc.ProjectIDs, p.ID)
		wc.ProjectName[p.ID] = p.Name
	}
	for _, p := range profiles {
		wc.MemberName[p.UserID] = p.FullName
	}

	return wc, nil
}

// MemberDisplayName resolves a user ID to a display name, falling back to
// "Unknown" for IDs outside the snapshot (e.g. departed members on old rows).
func (c *WsContext) MemberDisplayName(userID int64) string {
	if name, ok := c.MemberName[userID]; ok && name != "" {
		return name
	}
	return "Unknown"
}

// ProjectDisplayName resolves a project ID to its cached name.
func (c *WsContext) ProjectDisplayName(projectID int64) string {
	if name, ok := c.ProjectName[projectID]; ok && name != "" {
		return name
	}
	return "Unknown"
}
