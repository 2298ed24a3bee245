package assistant

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"taskdeck.app/assistant/internal/model"
	"taskdeck.app/assistant/internal/repository"
)

// Read tools. Every result resolves foreign keys to names through the
// snapshot before returning; raw rows and IDs never reach the model.

func (t *Tools) searchTasks(ctx context.Context, params SearchTasksParams, wc *WsContext) map[string]any {
	projectIDs := wc.ProjectIDs
	if params.Project != "" {
		project := ResolveProject(wc, params.Project)
		if project == nil {
			return errResult("project not found")
		}
		projectIDs = []int64{project.ID}
	}

	var assignee *model.Profile
	if params.Assignee != "" {
		assignee = ResolveMember(wc, params.Assignee)
		if assignee == nil {
			return errResult("member not found")
		}
	}

	var tasks []model.Task
	var err error
	if params.Query != "" {
		tasks, err = t.stores.Tasks.SearchByTitle(ctx, projectIDs, params.Query, maxListResults)
	} else {
		tasks, err = t.stores.Tasks.ListByProjects(ctx, projectIDs)
	}
	if err != nil {
		return errResult("search failed: " + err.Error())
	}

	matches := make([]map[string]any, 0, maxListResults)
	for i := range tasks {
		task := &tasks[i]
		if params.Status != "" && string(task.Status) != params.Status {
			continue
		}
		if params.Priority != "" && string(task.Priority) != params.Priority {
			continue
		}
		if assignee != nil && (task.AssigneeID == nil || *task.AssigneeID != assignee.UserID) {
			continue
		}
		matches = append(matches, t.taskSummary(task, wc))
		if len(matches) >= maxListResults {
			break
		}
	}

	return map[string]any{
		"count": len(matches),
		"tasks": matches,
	}
}

func (t *Tools) getTaskDetails(ctx context.Context, params TaskTitleParams, wc *WsContext) map[string]any {
	task, err := ResolveTask(ctx, t.stores.Tasks, wc, params.TaskTitle)
	if err != nil {
		return errResult("task lookup failed: " + err.Error())
	}
	if task == nil {
		return errResult("task not found")
	}

	now := t.now()
	detail := t.taskSummary(task, wc)
	detail["description"] = task.Description
	detail["created_at"] = task.CreatedAt.Format("2006-01-02")
	if task.EstimatedHours != nil {
		detail["estimated_hours"] = *task.EstimatedHours
	}
	if task.IsOverdue(now) {
		detail["overdue"] = true
		detail["days_overdue"] = task.DaysOverdue(now)
	}
	if task.CompletedAt != nil {
		detail["completed_at"] = task.CompletedAt.Format("2006-01-02")
	}
	return detail
}

func (t *Tools) getProjectDetails(ctx context.Context, params ProjectNameParams, wc *WsContext) map[string]any {
	project := ResolveProject(wc, params.ProjectName)
	if project == nil {
		return errResult("project not found")
	}

	tasks, err := t.stores.Tasks.ListByProjects(ctx, []int64{project.ID})
	if err != nil {
		return errResult("loading project tasks: " + err.Error())
	}

	byStatus := map[string]int{}
	done := 0
	for i := range tasks {
		byStatus[string(tasks[i].Status)]++
		if tasks[i].IsDone() {
			done++
		}
	}

	completion := 0
	if len(tasks) > 0 {
		completion = int(math.Round(float64(done) / float64(len(tasks)) * 100))
	}

	return map[string]any{
		"name":            project.Name,
		"description":     project.Description,
		"total_tasks":     len(tasks),
		"tasks_by_status": byStatus,
		"completion_pct":  completion,
	}
}

func (t *Tools) listMembers(_ context.Context, wc *WsContext) map[string]any {
	members := make([]map[string]any, 0, len(wc.Profiles))
	for _, p := range wc.Profiles {
		members = append(members, map[string]any{
			"name":  p.FullName,
			"email": p.Email,
			"role":  string(wc.MemberRole[p.UserID]),
		})
	}
	return map[string]any{
		"count":   len(members),
		"members": members,
	}
}

func (t *Tools) getMemberWorkload(ctx context.Context, params MemberWorkloadParams, wc *WsContext) map[string]any {
	profiles := wc.Profiles
	if params.MemberName != "" {
		member := ResolveMember(wc, params.MemberName)
		if member == nil {
			return errResult("member not found")
		}
		profiles = []model.Profile{*member}
	}

	workloads := make([]map[string]any, 0, len(profiles))
	for _, p := range profiles {
		tasks, err := t.stores.Tasks.ListByAssignee(ctx, wc.ProjectIDs, p.UserID)
		if err != nil {
			return errResult("loading workload: " + err.Error())
		}

		active := 0
		overdue := 0
		now := t.now()
		for i := range tasks {
			if !tasks[i].IsDone() {
				active++
			}
			if tasks[i].IsOverdue(now) {
				overdue++
			}
		}

		workloads = append(workloads, map[string]any{
			"name":          p.FullName,
			"active_tasks":  active,
			"overdue_tasks": overdue,
			"level":         workloadLevel(active),
		})
	}

	return map[string]any{"workloads": workloads}
}

// workloadLevel buckets an active-task count. Thresholds are inclusive at
// the lower bound of each band.
func workloadLevel(active int) string {
	switch {
	case active < 2:
		return "light"
	case active <= 4:
		return "normal"
	case active <= 7:
		return "heavy"
	default:
		return "overloaded"
	}
}

func (t *Tools) getWorkspaceAnalytics(ctx context.Context, wc *WsContext) map[string]any {
	tasks, err := t.stores.Tasks.ListByProjects(ctx, wc.ProjectIDs)
	if err != nil {
		return errResult("loading tasks: " + err.Error())
	}

	now := t.now()
	byStatus := map[string]int{}
	overdue := 0
	done := 0
	var stuck []string

	for i := range tasks {
		task := &tasks[i]
		byStatus[string(task.Status)]++
		if task.IsDone() {
			done++
			continue
		}
		if task.IsOverdue(now) {
			overdue++
		}
		if now.Sub(task.UpdatedAt) >= stuckAfterDays*24*time.Hour && len(stuck) < maxListResults {
			stuck = append(stuck, task.Title)
		}
	}

	completion := 0
	if len(tasks) > 0 {
		completion = int(math.Round(float64(done) / float64(len(tasks)) * 100))
	}

	return map[string]any{
		"total_projects":  len(wc.Projects),
		"total_members":   len(wc.MemberIDs),
		"total_tasks":     len(tasks),
		"tasks_by_status": byStatus,
		"overdue_tasks":   overdue,
		"stuck_tasks":     stuck,
		"completion_pct":  completion,
	}
}

func (t *Tools) getTasksDue(ctx context.Context, params TasksDueParams, wc *WsContext) map[string]any {
	tasks, err := t.stores.Tasks.ListByProjects(ctx, wc.ProjectIDs)
	if err != nil {
		return errResult("loading tasks: " + err.Error())
	}

	now := t.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var from, to time.Time
	switch params.Range {
	case "today":
		from, to = startOfDay, startOfDay.AddDate(0, 0, 1)
	case "tomorrow":
		from, to = startOfDay.AddDate(0, 0, 1), startOfDay.AddDate(0, 0, 2)
	case "this_week":
		from, to = startOfDay, startOfDay.AddDate(0, 0, 7)
	case "next_week":
		from, to = startOfDay.AddDate(0, 0, 7), startOfDay.AddDate(0, 0, 14)
	case "overdue":
		// handled below
	default:
		return errResult("unknown range: " + params.Range)
	}

	matches := make([]map[string]any, 0, maxListResults)
	for i := range tasks {
		task := &tasks[i]
		if task.DueDate == nil || task.IsDone() {
			continue
		}

		var include bool
		if params.Range == "overdue" {
			include = task.IsOverdue(now)
		} else {
			include = !task.DueDate.Before(from) && task.DueDate.Before(to)
		}
		if !include {
			continue
		}

		summary := t.taskSummary(task, wc)
		if params.Range == "overdue" {
			summary["days_overdue"] = task.DaysOverdue(now)
		}
		matches = append(matches, summary)
		if len(matches) >= maxListResults {
			break
		}
	}

	return map[string]any{
		"range": params.Range,
		"count": len(matches),
		"tasks": matches,
	}
}

func (t *Tools) getTimeTrackingSummary(ctx context.Context, params TimeTrackingParams, wc *WsContext) map[string]any {
	now := t.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var since time.Time
	period := params.Period
	if period == "" {
		period = "this_week"
	}
	switch period {
	case "today":
		since = startOfDay
	case "this_week":
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Monday-start weeks
		}
		since = startOfDay.AddDate(0, 0, -(weekday - 1))
	case "this_month":
		since = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		return errResult("unknown period: " + period)
	}

	var scope *model.Profile
	if params.MemberName != "" {
		scope = ResolveMember(wc, params.MemberName)
		if scope == nil {
			return errResult("member not found")
		}
	}

	sessions, err := t.stores.TimeSessions.ListCompletedSince(ctx, wc.ProjectIDs, since)
	if err != nil {
		return errResult("loading time sessions: " + err.Error())
	}

	perMember := map[string]int64{}
	perProject := map[string]int64{}
	var totalSecs int64
	for _, s := range sessions {
		if scope != nil && s.UserID != scope.UserID {
			continue
		}
		perMember[wc.MemberDisplayName(s.UserID)] += s.DurationSecs
		perProject[wc.ProjectDisplayName(s.ProjectID)] += s.DurationSecs
		totalSecs += s.DurationSecs
	}

	hoursByMember := make(map[string]float64, len(perMember))
	for name, secs := range perMember {
		hoursByMember[name] = roundHours(secs)
	}
	hoursByProject := make(map[string]float64, len(perProject))
	for name, secs := range perProject {
		hoursByProject[name] = roundHours(secs)
	}

	return map[string]any{
		"period":           period,
		"total_hours":      roundHours(totalSecs),
		"hours_by_member":  hoursByMember,
		"hours_by_project": hoursByProject,
	}
}

func roundHours(secs int64) float64 {
	return math.Round(float64(secs)/3600*10) / 10
}

func (t *Tools) getTaskComments(ctx context.Context, params TaskCommentsParams, wc *WsContext) map[string]any {
	task, err := ResolveTask(ctx, t.stores.Tasks, wc, params.TaskTitle)
	if err != nil {
		return errResult("task lookup failed: " + err.Error())
	}
	if task == nil {
		return errResult("task not found")
	}

	limit := params.Limit
	if limit <= 0 || limit > maxCommentResults {
		limit = maxCommentResults
	}

	comments, err := t.stores.Comments.ListByTask(ctx, task.ID, limit)
	if err != nil {
		return errResult("loading comments: " + err.Error())
	}

	out := make([]map[string]any, 0, len(comments))
	for _, c := range comments {
		out = append(out, map[string]any{
			"author":  wc.MemberDisplayName(c.AuthorID),
			"content": c.Content,
			"at":      c.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	return map[string]any{
		"task_title": task.Title,
		"count":      len(out),
		"comments":   out,
	}
}

func (t *Tools) getActivityLog(ctx context.Context, params ActivityLogParams, wc *WsContext) map[string]any {
	limit := params.Limit
	if limit <= 0 || limit > maxListResults {
		limit = maxListResults
	}

	logs, err := t.stores.Activity.ListRecent(ctx, wc.WorkspaceID, limit)
	if err != nil {
		return errResult("loading activity: " + err.Error())
	}

	out := make([]map[string]any, 0, len(logs))
	for _, entry := range logs {
		out = append(out, map[string]any{
			"who":    wc.MemberDisplayName(entry.UserID),
			"action": entry.Action,
			"what":   fmt.Sprintf("%s %q", entry.EntityType, entry.EntityTitle),
			"at":     entry.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	return map[string]any{"activity": out}
}

func (t *Tools) listProjectStatuses(ctx context.Context, params ProjectNameParams, wc *WsContext) map[string]any {
	project := ResolveProject(wc, params.ProjectName)
	if project == nil {
		return errResult("project not found")
	}

	statuses, err := t.stores.Statuses.ListByProject(ctx, project.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errResult("project statuses not found")
		}
		return errResult("loading statuses: " + err.Error())
	}

	names := make([]string, 0, len(statuses))
	for _, st := range statuses {
		names = append(names, st.Name)
	}

	return map[string]any{
		"project":  project.Name,
		"statuses": names,
	}
}

// taskSummary is the compact, name-resolved shape shared by list results.
func (t *Tools) taskSummary(task *model.Task, wc *WsContext) map[string]any {
	summary := map[string]any{
		"title":    task.Title,
		"project":  wc.ProjectDisplayName(task.ProjectID),
		"status":   string(task.Status),
		"priority": string(task.Priority),
	}
	if task.AssigneeID != nil {
		summary["assignee"] = wc.MemberDisplayName(*task.AssigneeID)
	} else {
		summary["assignee"] = "Unassigned"
	}
	if task.DueDate != nil {
		summary["due_date"] = task.DueDate.Format("2006-01-02")
	}
	if strings.TrimSpace(task.Description) != "" {
		// Lists stay compact; details are fetched via get_task_details.
		summary["has_description"] = true
	}
	return summary
}
