package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskdeck.app/assistant/common/id"
	"taskdeck.app/assistant/internal/model"
)

type taskStore struct {
	pool *pgxpool.Pool
	ids  *id.Generator
}

const taskColumns = `id, project_id, title, description, status, priority,
	assignee_id, due_date, estimated_hours, completed_at, created_at, updated_at`

func (s *taskStore) GetByID(ctx context.Context, taskID int64) (*model.Task, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, taskID)

	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// likeEscaper neutralizes LIKE metacharacters so a search fragment always
// matches literally; "%" must not resolve to every task.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *taskStore) SearchByTitle(ctx context.Context, projectIDs []int64, fragment string, limit int) ([]model.Task, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE project_id = ANY($1) AND title ILIKE '%' || $2 || '%'
		 ORDER BY created_at LIMIT $3`,
		projectIDs, likeEscaper.Replace(fragment), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (s *taskStore) ListByProjects(ctx context.Context, projectIDs []int64) ([]model.Task, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = ANY($1) ORDER BY created_at`,
		projectIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (s *taskStore) CountByProjects(ctx context.Context, projectIDs []int64) (int, error) {
	if len(projectIDs) == 0 {
		return 0, nil
	}
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM tasks WHERE project_id = ANY($1)`, projectIDs).Scan(&count)
	return count, err
}

func (s *taskStore) ListByAssignee(ctx context.Context, projectIDs []int64, userID int64) ([]model.Task, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE project_id = ANY($1) AND assignee_id = $2 ORDER BY created_at`,
		projectIDs, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (s *taskStore) Create(ctx context.Context, task *model.Task) error {
	if task.ID == 0 {
		task.ID = s.ids.New()
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO tasks (id, project_id, title, description, status, priority,
		    assignee_id, due_date, estimated_hours, completed_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		task.ID, task.ProjectID, task.Title, task.Description, task.Status, task.Priority,
		task.AssigneeID, task.DueDate, task.EstimatedHours, task.CompletedAt,
		task.CreatedAt, task.UpdatedAt)
	return err
}

func (s *taskStore) Update(ctx context.Context, task *model.Task) error {
	task.UpdatedAt = time.Now()

	tag, err := s.pool.Exec(ctx,
		`UPDATE tasks SET project_id = $2, title = $3, description = $4, status = $5,
		    priority = $6, assignee_id = $7, due_date = $8, estimated_hours = $9,
		    completed_at = $10, updated_at = $11
		 WHERE id = $1`,
		task.ID, task.ProjectID, task.Title, task.Description, task.Status, task.Priority,
		task.AssigneeID, task.DueDate, task.EstimatedHours, task.CompletedAt, task.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *taskStore) Delete(ctx context.Context, taskID int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, taskID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var t model.Task
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.AssigneeID, &t.DueDate, &t.EstimatedHours, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTasks(rows pgx.Rows) ([]model.Task, error) {
	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}
