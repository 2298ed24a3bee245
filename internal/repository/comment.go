package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskdeck.app/assistant/internal/model"
)

type commentStore struct {
	pool *pgxpool.Pool
}

func (s *commentStore) ListByTask(ctx context.Context, taskID int64, limit int) ([]model.Comment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, task_id, author_id, content, created_at
		 FROM task_comments WHERE task_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		taskID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
