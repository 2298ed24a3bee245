package assistant

import (
	"context"
	"log/slog"
	"time"

	"taskdeck.app/assistant/common/llm"
	"taskdeck.app/assistant/common/logger"
	"taskdeck.app/assistant/internal/repository"
)

const (
	maxListResults    = 15 // Cap result lists to bound payload size fed back to the model
	stuckAfterDays    = 5  // Not-done tasks unmodified this long are "stuck"
	maxCommentResults = 10
)

// Tool parameter structs. Arguments arrive as untrusted JSON from the
// model; the generated schemas declare required fields and disallow
// additional properties.

type SearchTasksParams struct {
	Query    string `json:"query,omitempty" jsonschema:"description=Substring to match against task titles"`
	Project  string `json:"project,omitempty" jsonschema:"description=Project name to scope the search"`
	Assignee string `json:"assignee,omitempty" jsonschema:"description=Member name to filter by assignee"`
	Status   string `json:"status,omitempty" jsonschema:"enum=todo,enum=in_progress,enum=review,enum=done,description=Status filter"`
	Priority string `json:"priority,omitempty" jsonschema:"enum=low,enum=medium,enum=high,enum=urgent,description=Priority filter"`
}

type TaskTitleParams struct {
	TaskTitle string `json:"task_title" jsonschema:"required,description=Title (or fragment) of the task"`
}

type ProjectNameParams struct {
	ProjectName string `json:"project_name" jsonschema:"required,description=Name (or fragment) of the project"`
}

type ListMembersParams struct{}

type MemberWorkloadParams struct {
	MemberName string `json:"member_name,omitempty" jsonschema:"description=Member name. Omit for a summary of every member."`
}

type WorkspaceAnalyticsParams struct{}

type TasksDueParams struct {
	Range string `json:"range" jsonschema:"required,enum=today,enum=tomorrow,enum=this_week,enum=next_week,enum=overdue,description=Named due-date range"`
}

type TimeTrackingParams struct {
	Period     string `json:"period,omitempty" jsonschema:"enum=today,enum=this_week,enum=this_month,description=Aggregation period (default this_week)"`
	MemberName string `json:"member_name,omitempty" jsonschema:"description=Member name to scope the summary"`
}

type TaskCommentsParams struct {
	TaskTitle string `json:"task_title" jsonschema:"required,description=Title (or fragment) of the task"`
	Limit     int    `json:"limit,omitempty" jsonschema:"description=Max comments to return (default 10)"`
}

type ActivityLogParams struct {
	Limit int `json:"limit,omitempty" jsonschema:"description=Max entries to return (default 15)"`
}

type CreateTaskParams struct {
	Title          string  `json:"title" jsonschema:"required,description=Task title"`
	Project        string  `json:"project" jsonschema:"required,description=Project name the task belongs to"`
	Description    string  `json:"description,omitempty"`
	Priority       string  `json:"priority,omitempty" jsonschema:"enum=low,enum=medium,enum=high,enum=urgent"`
	Assignee       string  `json:"assignee,omitempty" jsonschema:"description=Member name to assign"`
	DueDate        string  `json:"due_date,omitempty" jsonschema:"description=Due date in YYYY-MM-DD"`
	EstimatedHours float64 `json:"estimated_hours,omitempty"`
}

type UpdateTaskParams struct {
	TaskTitle      string `json:"task_title" jsonschema:"required,description=Title (or fragment) of the task to update"`
	NewTitle       string `json:"new_title,omitempty"`
	NewDescription string `json:"new_description,omitempty"`
	NewStatus      string `json:"new_status,omitempty" jsonschema:"enum=todo,enum=in_progress,enum=review,enum=done"`
	NewPriority    string `json:"new_priority,omitempty" jsonschema:"enum=low,enum=medium,enum=high,enum=urgent"`
	NewAssignee    string `json:"new_assignee,omitempty" jsonschema:"description=Member name of the new assignee"`
	NewDueDate     string `json:"new_due_date,omitempty" jsonschema:"description=New due date in YYYY-MM-DD"`
}

type BulkUpdateTasksParams struct {
	Project     string `json:"project,omitempty" jsonschema:"description=Only touch tasks in this project"`
	Status      string `json:"status,omitempty" jsonschema:"description=Only touch tasks currently in this status"`
	Assignee    string `json:"assignee,omitempty" jsonschema:"description=Only touch tasks assigned to this member"`
	NewStatus   string `json:"new_status,omitempty" jsonschema:"enum=todo,enum=in_progress,enum=review,enum=done"`
	NewPriority string `json:"new_priority,omitempty" jsonschema:"enum=low,enum=medium,enum=high,enum=urgent"`
	NewAssignee string `json:"new_assignee,omitempty" jsonschema:"description=Member name of the new assignee"`
}

type CreateProjectParams struct {
	Name        string `json:"name" jsonschema:"required,description=Project name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty" jsonschema:"description=Hex color for the project badge"`
}

type UpdateProjectParams struct {
	ProjectName    string `json:"project_name" jsonschema:"required,description=Name (or fragment) of the project to update"`
	NewName        string `json:"new_name,omitempty"`
	NewDescription string `json:"new_description,omitempty"`
	NewColor       string `json:"new_color,omitempty"`
	Archive        *bool  `json:"archive,omitempty" jsonschema:"description=Set true to archive, false to unarchive"`
}

type InviteMemberParams struct {
	Email string `json:"email" jsonschema:"required,description=Email address to invite"`
	Role  string `json:"role,omitempty" jsonschema:"enum=admin,enum=member,description=Role for the new member (default member)"`
}

type ReassignTaskParams struct {
	TaskTitle   string `json:"task_title" jsonschema:"required,description=Title (or fragment) of the task"`
	NewAssignee string `json:"new_assignee" jsonschema:"required,description=Member name of the new assignee"`
}

type ChangeMemberRoleParams struct {
	MemberName string `json:"member_name" jsonschema:"required,description=Member name"`
	NewRole    string `json:"new_role" jsonschema:"required,enum=admin,enum=member,description=New role"`
}

type ManageProjectStatusParams struct {
	ProjectName string `json:"project_name" jsonschema:"required,description=Project name"`
	Action      string `json:"action" jsonschema:"required,enum=add,enum=rename,description=Whether to add a new status or rename an existing one"`
	StatusName  string `json:"status_name" jsonschema:"required,description=Status to add, or the current name when renaming"`
	NewName     string `json:"new_name,omitempty" jsonschema:"description=New status name (rename only)"`
}

// Tools is the fixed catalog of operations the assistant can execute
// against a workspace. One instance serves all sessions; per-turn state
// (the WsContext snapshot, acting user) is passed into Execute.
type Tools struct {
	stores *repository.Stores
	now    func() time.Time
}

func NewTools(stores *repository.Stores) *Tools {
	return &Tools{
		stores: stores,
		now:    time.Now,
	}
}

// Definitions returns the tool catalog sent to the model on every round.
func (t *Tools) Definitions() []llm.Tool {
	return toolDefinitions
}

var toolDefinitions = []llm.Tool{
	{
		Name:        "search_tasks",
		Description: "Search workspace tasks by title substring, project, assignee, status, or priority. Returns up to 15 matches.",
		Parameters:  llm.GenerateSchemaFrom(SearchTasksParams{}),
	},
	{
		Name:        "get_task_details",
		Description: "Get full details of one task by its title: status, priority, assignee, project, due date, overdue state.",
		Parameters:  llm.GenerateSchemaFrom(TaskTitleParams{}),
	},
	{
		Name:        "get_project_details",
		Description: "Get details of one project by name: description, task counts by status, completion percentage.",
		Parameters:  llm.GenerateSchemaFrom(ProjectNameParams{}),
	},
	{
		Name:        "list_members",
		Description: "List workspace members with their names, emails, and roles.",
		Parameters:  llm.GenerateSchemaFrom(ListMembersParams{}),
	},
	{
		Name:        "get_member_workload",
		Description: "Show a member's active task load and workload level (light/normal/heavy/overloaded). Omit the name for all members.",
		Parameters:  llm.GenerateSchemaFrom(MemberWorkloadParams{}),
	},
	{
		Name:        "get_workspace_analytics",
		Description: "Workspace-wide health numbers: totals by status, overdue count, stuck tasks, completion rate.",
		Parameters:  llm.GenerateSchemaFrom(WorkspaceAnalyticsParams{}),
	},
	{
		Name:        "get_tasks_due",
		Description: "List tasks due in a named range: today, tomorrow, this_week, next_week, or overdue.",
		Parameters:  llm.GenerateSchemaFrom(TasksDueParams{}),
	},
	{
		Name:        "get_time_tracking_summary",
		Description: "Aggregate tracked time per member and per project for a period (today, this_week, this_month).",
		Parameters:  llm.GenerateSchemaFrom(TimeTrackingParams{}),
	},
	{
		Name:        "get_task_comments",
		Description: "Read the most recent comments on a task.",
		Parameters:  llm.GenerateSchemaFrom(TaskCommentsParams{}),
	},
	{
		Name:        "get_activity_log",
		Description: "Recent workspace activity: who did what, newest first.",
		Parameters:  llm.GenerateSchemaFrom(ActivityLogParams{}),
	},
	{
		Name:        "list_project_statuses",
		Description: "List the workflow statuses (board columns) of a project.",
		Parameters:  llm.GenerateSchemaFrom(ProjectNameParams{}),
	},
	{
		Name:        "create_task",
		Description: "Create a task in a project. Optionally set description, priority, assignee, due date, and estimated hours.",
		Parameters:  llm.GenerateSchemaFrom(CreateTaskParams{}),
	},
	{
		Name:        "update_task",
		Description: "Update a task found by title: status, priority, assignee, due date, title, or description. Setting status to done records completion.",
		Parameters:  llm.GenerateSchemaFrom(UpdateTaskParams{}),
	},
	{
		Name:        "bulk_update_tasks",
		Description: "Update every task matching a filter (project, status, assignee) with new status, priority, or assignee. Confirm with the user before calling this.",
		Parameters:  llm.GenerateSchemaFrom(BulkUpdateTasksParams{}),
	},
	{
		Name:        "delete_task",
		Description: "Permanently delete a task found by title. Confirm with the user before calling this.",
		Parameters:  llm.GenerateSchemaFrom(TaskTitleParams{}),
	},
	{
		Name:        "create_project",
		Description: "Create a project. Seeds the default To Do / In Progress / Done workflow statuses.",
		Parameters:  llm.GenerateSchemaFrom(CreateProjectParams{}),
	},
	{
		Name:        "update_project",
		Description: "Update a project's name, description, color, or archived state.",
		Parameters:  llm.GenerateSchemaFrom(UpdateProjectParams{}),
	},
	{
		Name:        "invite_member",
		Description: "Invite someone by email. Existing accounts are added to the workspace directly; unknown emails get a pending invitation.",
		Parameters:  llm.GenerateSchemaFrom(InviteMemberParams{}),
	},
	{
		Name:        "reassign_task",
		Description: "Move a task to a different assignee.",
		Parameters:  llm.GenerateSchemaFrom(ReassignTaskParams{}),
	},
	{
		Name:        "change_member_role",
		Description: "Change a workspace member's role. Confirm with the user before calling this.",
		Parameters:  llm.GenerateSchemaFrom(ChangeMemberRoleParams{}),
	},
	{
		Name:        "manage_project_status",
		Description: "Add a workflow status to a project, or rename an existing one.",
		Parameters:  llm.GenerateSchemaFrom(ManageProjectStatusParams{}),
	},
}

// statusLabels maps tool names to the progress caption shown while the
// tool runs.
var statusLabels = map[string]string{
	"search_tasks":              "🔍 Searching tasks",
	"get_task_details":          "🔍 Looking up task",
	"get_project_details":       "📁 Checking project",
	"list_members":              "👥 Listing members",
	"get_member_workload":       "📊 Checking workload",
	"get_workspace_analytics":   "📊 Crunching workspace numbers",
	"get_tasks_due":             "📅 Checking due dates",
	"get_time_tracking_summary": "⏱️ Summing tracked time",
	"get_task_comments":         "💬 Reading comments",
	"get_activity_log":          "📜 Reading activity",
	"list_project_statuses":     "📋 Listing statuses",
	"create_task":               "✏️ Creating task",
	"update_task":               "✏️ Updating task",
	"bulk_update_tasks":         "✏️ Updating tasks",
	"delete_task":               "🗑️ Deleting task",
	"create_project":            "📁 Creating project",
	"update_project":            "📁 Updating project",
	"invite_member":             "✉️ Inviting member",
	"reassign_task":             "🔁 Reassigning task",
	"change_member_role":        "👤 Changing role",
	"manage_project_status":     "📋 Updating statuses",
}

// StatusLabel returns the human-readable progress caption for a tool.
func StatusLabel(name string) string {
	if label, ok := statusLabels[name]; ok {
		return label
	}
	return "⚙️ Working"
}

// Execute runs one named tool against the turn's snapshot and returns a
// plain JSON-serializable result. Failures are data: not-found conditions
// and bad arguments come back as {"error": "..."} so the model can react
// conversationally instead of aborting the turn.
func (t *Tools) Execute(ctx context.Context, name, arguments string, wc *WsContext, actingUserID int64) map[string]any {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Tool: logger.Ptr(name)})
	slog.DebugContext(ctx, "executing tool", "args", logger.Truncate(arguments, 200))

	switch name {
	case "search_tasks":
		return t.searchTasks(ctx, parseArgs[SearchTasksParams](arguments), wc)
	case "get_task_details":
		return t.getTaskDetails(ctx, parseArgs[TaskTitleParams](arguments), wc)
	case "get_project_details":
		return t.getProjectDetails(ctx, parseArgs[ProjectNameParams](arguments), wc)
	case "list_members":
		return t.listMembers(ctx, wc)
	case "get_member_workload":
		return t.getMemberWorkload(ctx, parseArgs[MemberWorkloadParams](arguments), wc)
	case "get_workspace_analytics":
		return t.getWorkspaceAnalytics(ctx, wc)
	case "get_tasks_due":
		return t.getTasksDue(ctx, parseArgs[TasksDueParams](arguments), wc)
	case "get_time_tracking_summary":
		return t.getTimeTrackingSummary(ctx, parseArgs[TimeTrackingParams](arguments), wc)
	case "get_task_comments":
		return t.getTaskComments(ctx, parseArgs[TaskCommentsParams](arguments), wc)
	case "get_activity_log":
		return t.getActivityLog(ctx, parseArgs[ActivityLogParams](arguments), wc)
	case "list_project_statuses":
		return t.listProjectStatuses(ctx, parseArgs[ProjectNameParams](arguments), wc)
	case "create_task":
		return t.createTask(ctx, parseArgs[CreateTaskParams](arguments), wc)
	case "update_task":
		return t.updateTask(ctx, parseArgs[UpdateTaskParams](arguments), wc)
	case "bulk_update_tasks":
		return t.bulkUpdateTasks(ctx, parseArgs[BulkUpdateTasksParams](arguments), wc)
	case "delete_task":
		return t.deleteTask(ctx, parseArgs[TaskTitleParams](arguments), wc)
	case "create_project":
		return t.createProject(ctx, parseArgs[CreateProjectParams](arguments), wc)
	case "update_project":
		return t.updateProject(ctx, parseArgs[UpdateProjectParams](arguments), wc)
	case "invite_member":
		return t.inviteMember(ctx, parseArgs[InviteMemberParams](arguments), wc, actingUserID)
	case "reassign_task":
		return t.reassignTask(ctx, parseArgs[ReassignTaskParams](arguments), wc)
	case "change_member_role":
		return t.changeMemberRole(ctx, parseArgs[ChangeMemberRoleParams](arguments), wc)
	case "manage_project_status":
		return t.manageProjectStatus(ctx, parseArgs[ManageProjectStatusParams](arguments), wc)
	default:
		return errResult("unknown tool: " + name)
	}
}

// parseArgs decodes untrusted tool arguments. Invalid JSON degrades to the
// zero params value instead of failing the tool call.
func parseArgs[T any](arguments string) T {
	var zero T
	if arguments == "" {
		return zero
	}
	params, err := llm.ParseToolArguments[T](arguments)
	if err != nil {
		slog.Debug("malformed tool arguments, using defaults",
			"args", logger.Truncate(arguments, 200), "error", err)
		return zero
	}
	return params
}

func errResult(msg string) map[string]any {
	return map[string]any{"error": msg}
}
