package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"taskdeck.app/assistant/internal/model"
	"taskdeck.app/assistant/internal/repository"
)

// Write tools. Every write is a single, immediately durable change to
// shared workspace state: there is no staged apply and no cross-tool
// transaction. Bulk updates report the count of rows actually changed.

func (t *Tools) createTask(ctx context.Context, params CreateTaskParams, wc *WsContext) map[string]any {
	if strings.TrimSpace(params.Title) == "" {
		return errResult("title is required")
	}

	project := ResolveProject(wc, params.Project)
	if project == nil {
		return errResult("project not found")
	}

	task := &model.Task{
		ProjectID:   project.ID,
		Title:       strings.TrimSpace(params.Title),
		Description: params.Description,
		Status:      model.TaskStatusTodo,
		Priority:    model.TaskPriorityMedium,
	}

	if params.Priority != "" {
		priority := model.TaskPriority(params.Priority)
		if !priority.Valid() {
			return errResult("unknown priority: " + params.Priority)
		}
		task.Priority = priority
	}
	if params.EstimatedHours > 0 {
		task.EstimatedHours = &params.EstimatedHours
	}

	result := map[string]any{
		"success": true,
		"title":   task.Title,
		"project": project.Name,
	}

	if params.Assignee != "" {
		member := ResolveMember(wc, params.Assignee)
		if member == nil {
			return errResult("member not found")
		}
		task.AssigneeID = &member.UserID
		result["assignee"] = member.FullName
	}

	if params.DueDate != "" {
		due, err := time.Parse("2006-01-02", params.DueDate)
		if err != nil {
			return errResult("invalid due_date, expected YYYY-MM-DD")
		}
		task.DueDate = &due
		result["due_date"] = params.DueDate
	}

	if err := t.stores.Tasks.Create(ctx, task); err != nil {
		return errResult("creating task: " + err.Error())
	}
	return result
}

func (t *Tools) updateTask(ctx context.Context, params UpdateTaskParams, wc *WsContext) map[string]any {
	task, err := ResolveTask(ctx, t.stores.Tasks, wc, params.TaskTitle)
	if err != nil {
		return errResult("task lookup failed: " + err.Error())
	}
	if task == nil {
		return errResult("task not found")
	}

	applied, errMsg := t.applyTaskUpdates(task, params, wc)
	if errMsg != "" {
		return errResult(errMsg)
	}
	if len(applied) == 0 {
		return errResult("no updates given")
	}

	if err := t.stores.Tasks.Update(ctx, task); err != nil {
		return errResult("updating task: " + err.Error())
	}

	return map[string]any{
		"success":         true,
		"task_title":      task.Title,
		"updates_applied": applied,
	}
}

// applyTaskUpdates mutates the task in memory and returns the list of
// applied field names, or an error message when a referenced entity does
// not resolve.
func (t *Tools) applyTaskUpdates(task *model.Task, params UpdateTaskParams, wc *WsContext) ([]string, string) {
	var applied []string

	if params.NewTitle != "" {
		task.Title = params.NewTitle
		applied = append(applied, "title")
	}
	if params.NewDescription != "" {
		task.Description = params.NewDescription
		applied = append(applied, "description")
	}
	if params.NewStatus != "" {
		// The schema declares the enum, but arguments are untrusted; a
		// made-up status must never reach the store.
		status := model.TaskStatus(params.NewStatus)
		if !status.Valid() {
			return nil, "unknown status: " + params.NewStatus
		}
		task.Status = status
		applied = append(applied, "status")
		if task.Status == model.TaskStatusDone {
			now := t.now()
			task.CompletedAt = &now
			applied = append(applied, "completed_at")
		} else {
			task.CompletedAt = nil
		}
	}
	if params.NewPriority != "" {
		priority := model.TaskPriority(params.NewPriority)
		if !priority.Valid() {
			return nil, "unknown priority: " + params.NewPriority
		}
		task.Priority = priority
		applied = append(applied, "priority")
	}
	if params.NewAssignee != "" {
		member := ResolveMember(wc, params.NewAssignee)
		if member == nil {
			return nil, "member not found"
		}
		task.AssigneeID = &member.UserID
		applied = append(applied, "assignee")
	}
	if params.NewDueDate != "" {
		due, err := time.Parse("2006-01-02", params.NewDueDate)
		if err != nil {
			return nil, "invalid new_due_date, expected YYYY-MM-DD"
		}
		task.DueDate = &due
		applied = append(applied, "due_date")
	}

	return applied, ""
}

func (t *Tools) bulkUpdateTasks(ctx context.Context, params BulkUpdateTasksParams, wc *WsContext) map[string]any {
	if params.NewStatus == "" && params.NewPriority == "" && params.NewAssignee == "" {
		return errResult("no updates given")
	}
	if params.NewStatus != "" && !model.TaskStatus(params.NewStatus).Valid() {
		return errResult("unknown status: " + params.NewStatus)
	}
	if params.NewPriority != "" && !model.TaskPriority(params.NewPriority).Valid() {
		return errResult("unknown priority: " + params.NewPriority)
	}

	projectIDs := wc.ProjectIDs
	if params.Project != "" {
		project := ResolveProject(wc, params.Project)
		if project == nil {
			return errResult("project not found")
		}
		projectIDs = []int64{project.ID}
	}

	var filterAssignee, newAssignee *model.Profile
	if params.Assignee != "" {
		filterAssignee = ResolveMember(wc, params.Assignee)
		if filterAssignee == nil {
			return errResult("member not found")
		}
	}
	if params.NewAssignee != "" {
		newAssignee = ResolveMember(wc, params.NewAssignee)
		if newAssignee == nil {
			return errResult("member not found")
		}
	}

	tasks, err := t.stores.Tasks.ListByProjects(ctx, projectIDs)
	if err != nil {
		return errResult("loading tasks: " + err.Error())
	}

	updated := 0
	for i := range tasks {
		task := &tasks[i]
		if params.Status != "" && string(task.Status) != params.Status {
			continue
		}
		if filterAssignee != nil && (task.AssigneeID == nil || *task.AssigneeID != filterAssignee.UserID) {
			continue
		}

		if params.NewStatus != "" {
			task.Status = model.TaskStatus(params.NewStatus)
			if task.Status == model.TaskStatusDone {
				now := t.now()
				task.CompletedAt = &now
			} else {
				task.CompletedAt = nil
			}
		}
		if params.NewPriority != "" {
			task.Priority = model.TaskPriority(params.NewPriority)
		}
		if newAssignee != nil {
			task.AssigneeID = &newAssignee.UserID
		}

		// Each row is an independent write; a mid-batch failure leaves
		// earlier rows changed, and the count reflects that.
		if err := t.stores.Tasks.Update(ctx, task); err != nil {
			return map[string]any{
				"success":       false,
				"updated_count": updated,
				"error":         "update stopped: " + err.Error(),
			}
		}
		updated++
	}

	return map[string]any{
		"success":       true,
		"updated_count": updated,
	}
}

func (t *Tools) deleteTask(ctx context.Context, params TaskTitleParams, wc *WsContext) map[string]any {
	task, err := ResolveTask(ctx, t.stores.Tasks, wc, params.TaskTitle)
	if err != nil {
		return errResult("task lookup failed: " + err.Error())
	}
	if task == nil {
		return errResult("task not found")
	}

	if err := t.stores.Tasks.Delete(ctx, task.ID); err != nil {
		return errResult("deleting task: " + err.Error())
	}

	return map[string]any{
		"success":      true,
		"deleted_task": task.Title,
	}
}

func (t *Tools) createProject(ctx context.Context, params CreateProjectParams, wc *WsContext) map[string]any {
	if strings.TrimSpace(params.Name) == "" {
		return errResult("name is required")
	}

	project := &model.Project{
		WorkspaceID: wc.WorkspaceID,
		Name:        strings.TrimSpace(params.Name),
		Description: params.Description,
		Color:       params.Color,
	}

	// Every new project starts with the default workflow board; the project
	// row and its columns are committed together.
	if err := t.stores.Projects.CreateWithStatuses(ctx, project, model.DefaultStatusNames); err != nil {
		return errResult("creating project: " + err.Error())
	}

	return map[string]any{
		"success":  true,
		"project":  project.Name,
		"statuses": model.DefaultStatusNames,
	}
}

func (t *Tools) updateProject(ctx context.Context, params UpdateProjectParams, wc *WsContext) map[string]any {
	project := ResolveProject(wc, params.ProjectName)
	if project == nil {
		return errResult("project not found")
	}

	// The snapshot row is a copy; fetch the live row before writing.
	live, err := t.stores.Projects.GetByID(ctx, project.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errResult("project not found")
		}
		return errResult("loading project: " + err.Error())
	}

	var applied []string
	if params.NewName != "" {
		live.Name = params.NewName
		applied = append(applied, "name")
	}
	if params.NewDescription != "" {
		live.Description = params.NewDescription
		applied = append(applied, "description")
	}
	if params.NewColor != "" {
		live.Color = params.NewColor
		applied = append(applied, "color")
	}
	if params.Archive != nil {
		live.Archived = *params.Archive
		applied = append(applied, "archived")
	}
	if len(applied) == 0 {
		return errResult("no updates given")
	}

	if err := t.stores.Projects.Update(ctx, live); err != nil {
		return errResult("updating project: " + err.Error())
	}

	return map[string]any{
		"success":         true,
		"project":         live.Name,
		"updates_applied": applied,
	}
}

func (t *Tools) inviteMember(ctx context.Context, params InviteMemberParams, wc *WsContext, actingUserID int64) map[string]any {
	email := strings.TrimSpace(strings.ToLower(params.Email))
	if email == "" || !strings.Contains(email, "@") {
		return errResult("a valid email is required")
	}

	role := model.MemberRoleMember
	if params.Role == string(model.MemberRoleAdmin) {
		role = model.MemberRoleAdmin
	}

	// Existing account: add to the workspace directly.
	profile, err := t.stores.Members.FindProfileByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return errResult("looking up email: " + err.Error())
	}

	if profile != nil {
		if _, ok := wc.MemberRole[profile.UserID]; ok {
			return errResult("already a member of this workspace")
		}
		membership := &model.Membership{
			WorkspaceID: wc.WorkspaceID,
			UserID:      profile.UserID,
			Role:        role,
		}
		if err := t.stores.Members.Add(ctx, membership); err != nil {
			return errResult("adding member: " + err.Error())
		}
		return map[string]any{
			"success": true,
			"status":  "added",
			"member":  profile.FullName,
			"role":    string(role),
		}
	}

	// Unknown email: create a pending invitation.
	if _, err := t.stores.Invitations.FindPending(ctx, wc.WorkspaceID, email); err == nil {
		return errResult("a pending invitation already exists for this email")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return errResult("checking invitations: " + err.Error())
	}

	inv := &model.Invitation{
		WorkspaceID: wc.WorkspaceID,
		Email:       email,
		Role:        role,
		InvitedBy:   &actingUserID,
	}
	if err := t.stores.Invitations.Create(ctx, inv); err != nil {
		return errResult("creating invitation: " + err.Error())
	}

	return map[string]any{
		"success": true,
		"status":  "invited",
		"email":   email,
		"role":    string(role),
	}
}

func (t *Tools) reassignTask(ctx context.Context, params ReassignTaskParams, wc *WsContext) map[string]any {
	task, err := ResolveTask(ctx, t.stores.Tasks, wc, params.TaskTitle)
	if err != nil {
		return errResult("task lookup failed: " + err.Error())
	}
	if task == nil {
		return errResult("task not found")
	}

	member := ResolveMember(wc, params.NewAssignee)
	if member == nil {
		return errResult("member not found")
	}

	task.AssigneeID = &member.UserID
	if err := t.stores.Tasks.Update(ctx, task); err != nil {
		return errResult("updating task: " + err.Error())
	}

	return map[string]any{
		"success":    true,
		"task_title": task.Title,
		"assignee":   member.FullName,
	}
}

func (t *Tools) changeMemberRole(ctx context.Context, params ChangeMemberRoleParams, wc *WsContext) map[string]any {
	member := ResolveMember(wc, params.MemberName)
	if member == nil {
		return errResult("member not found")
	}

	if wc.MemberRole[member.UserID] == model.MemberRoleOwner {
		return errResult("the workspace owner's role cannot be changed")
	}

	role := model.MemberRole(params.NewRole)
	if role != model.MemberRoleAdmin && role != model.MemberRoleMember {
		return errResult("unknown role: " + params.NewRole)
	}

	if err := t.stores.Members.UpdateRole(ctx, wc.WorkspaceID, member.UserID, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errResult("member not found")
		}
		return errResult("updating role: " + err.Error())
	}

	return map[string]any{
		"success": true,
		"member":  member.FullName,
		"role":    string(role),
	}
}

func (t *Tools) manageProjectStatus(ctx context.Context, params ManageProjectStatusParams, wc *WsContext) map[string]any {
	project := ResolveProject(wc, params.ProjectName)
	if project == nil {
		return errResult("project not found")
	}
	if strings.TrimSpace(params.StatusName) == "" {
		return errResult("status_name is required")
	}

	switch params.Action {
	case "add":
		existing, err := t.stores.Statuses.ListByProject(ctx, project.ID)
		if err != nil {
			return errResult("loading statuses: " + err.Error())
		}
		for _, st := range existing {
			if strings.EqualFold(st.Name, params.StatusName) {
				return errResult("status already exists")
			}
		}
		status := &model.ProjectStatus{
			ProjectID: project.ID,
			Name:      params.StatusName,
			Position:  len(existing),
		}
		if err := t.stores.Statuses.Create(ctx, status); err != nil {
			return errResult("creating status: " + err.Error())
		}
		return map[string]any{
			"success": true,
			"project": project.Name,
			"added":   params.StatusName,
		}

	case "rename":
		if strings.TrimSpace(params.NewName) == "" {
			return errResult("new_name is required for rename")
		}
		if err := t.stores.Statuses.Rename(ctx, project.ID, params.StatusName, params.NewName); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return errResult("status not found")
			}
			return errResult("renaming status: " + err.Error())
		}
		return map[string]any{
			"success":  true,
			"project":  project.Name,
			"renamed":  params.StatusName,
			"new_name": params.NewName,
		}

	default:
		return errResult("unknown action: " + params.Action)
	}
}
